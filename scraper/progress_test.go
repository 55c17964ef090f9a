package scraper

import "testing"

func TestMonotonic_NeverDecreases(t *testing.T) {
	var seen []int
	report := Monotonic(func(_ string, percent int) {
		seen = append(seen, percent)
	})

	for _, p := range []int{5, 30, 10, 70, 70, 50, 100} {
		report("stage", p)
	}

	want := []int{5, 30, 30, 70, 70, 70, 100}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("update %d: got %d, want %d (full: %v)", i, seen[i], want[i], seen)
		}
	}
}

func TestMonotonic_ClampsRange(t *testing.T) {
	var last int
	report := Monotonic(func(_ string, percent int) { last = percent })

	report("over", 150)
	if last != 100 {
		t.Errorf("overshoot not clamped: %d", last)
	}

	report = Monotonic(func(_ string, percent int) { last = percent })
	report("under", -10)
	if last != 0 {
		t.Errorf("negative not clamped: %d", last)
	}
}

func TestMonotonic_NilSink(t *testing.T) {
	report := Monotonic(nil)
	report("no panic", 50)
}
