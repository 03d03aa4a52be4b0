package advisor

import "time"

// Clock supplies the analyzer's notion of "now". The production clock is the
// wall clock; tests inject a manual clock so elapsed-time rules can be
// exercised without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock Clock.
func SystemClock() Clock { return systemClock{} }
