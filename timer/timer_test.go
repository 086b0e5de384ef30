package timer

import (
	"testing"
	"time"
)

func TestTimeoutFake(t *testing.T) {
	f := &Fake{}
	to := Start(f, 50*time.Millisecond)
	n := 0
	for !to.Elapsed() {
		f.Delay(10 * time.Microsecond)
		n++
	}
	if n != 5000 {
		t.Errorf("iterations got: %d, want: 5000", n)
	}
	if to.Since() != 50*time.Millisecond {
		t.Errorf("Since got: %v, want: 50ms", to.Since())
	}
	if f.Delayed() != 50*time.Millisecond {
		t.Errorf("Delayed got: %v, want: 50ms", f.Delayed())
	}
}

func TestFakeStep(t *testing.T) {
	f := &Fake{Step: time.Microsecond}
	a := f.Now()
	b := f.Now()
	if b-a != time.Microsecond {
		t.Errorf("step got: %v, want: 1µs", b-a)
	}
	if f.Elapsed() != b {
		t.Errorf("Elapsed got: %v, want: %v", f.Elapsed(), b)
	}
}

func TestSystemTimeout(t *testing.T) {
	s := System()
	to := Start(s, time.Millisecond)
	if to.Elapsed() {
		t.Errorf("timeout elapsed immediately")
	}
	s.Delay(2 * time.Millisecond)
	if !to.Elapsed() {
		t.Errorf("timeout not elapsed after %v", to.Since())
	}
}
