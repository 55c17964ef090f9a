package scraper

// ProgressFunc receives stage-boundary progress updates: a human-readable
// message and a percentage in [0,100]. The scraper calls it synchronously
// from the invocation's own goroutine.
type ProgressFunc func(message string, percent int)

// NopProgress discards updates.
func NopProgress(string, int) {}

// Monotonic wraps a ProgressFunc so the reported percent never decreases
// and never leaves [0,100], regardless of what the stages emit.
func Monotonic(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		fn = NopProgress
	}
	high := 0
	return func(message string, percent int) {
		if percent < high {
			percent = high
		}
		if percent > 100 {
			percent = 100
		}
		high = percent
		fn(message, percent)
	}
}
