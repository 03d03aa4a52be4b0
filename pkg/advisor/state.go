package advisor

import "time"

// State is the complete mutable state of one tracking session's analyzer.
// It is owned exclusively by one Analyzer instance and must only be touched
// from the goroutine driving that session's sampling loop. The JSON tags
// exist so live snapshots can be persisted for the statistics view.
type State struct {
	// Cumulative counters. All *Seconds counters grow only in fixed
	// increments of the sampling period, and only while the corresponding
	// condition held during the tick.
	YawnCount          int `json:"yawnCount"`
	ClosedEyesCount    int `json:"closedEyesCount"`
	TooCloseSeconds    int `json:"tooCloseSeconds"`
	SlouchingSeconds   int `json:"slouchingSeconds"`
	GoodPostureSeconds int `json:"goodPostureSeconds"`
	TotalWorkSeconds   int `json:"totalWorkSeconds"`

	// Sliding windows of event timestamps, pruned to their trailing window
	// on every update.
	RecentYawns      []time.Time `json:"recentYawns"`
	RecentClosedEyes []time.Time `json:"recentClosedEyes"`

	// Debounce and cooldown timestamps.
	LastYawnTime   time.Time `json:"lastYawnTime"`
	LastAdviceTime time.Time `json:"lastAdviceTime"`
	LastBreakTime  time.Time `json:"lastBreakTime"`
	LastWaterTime  time.Time `json:"lastWaterTime"`
	LastWorkoutTime time.Time `json:"lastWorkoutTime"`

	// LastAdviceType suppresses back-to-back repetition of the same advice
	// type. A different type may fire as soon as the global cooldown allows.
	LastAdviceType string `json:"lastAdviceType,omitempty"`

	StartTime time.Time `json:"startTime"`
}

// newState returns a fresh session state anchored at now.
func newState(now time.Time) State {
	return State{
		StartTime:       now,
		LastBreakTime:   now,
		LastWaterTime:   now,
		LastWorkoutTime: now,
	}
}

// pruneWindows drops window entries older than their trailing windows
// relative to now.
func (s *State) pruneWindows(now time.Time, yawnWindow, eyesWindow time.Duration) {
	s.RecentYawns = pruneBefore(s.RecentYawns, now.Add(-yawnWindow))
	s.RecentClosedEyes = pruneBefore(s.RecentClosedEyes, now.Add(-eyesWindow))
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
