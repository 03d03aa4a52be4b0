// Package advisor accumulates combined per-tick verdicts into rolling
// session state and decides when to surface an actionable advice event.
// Advice emission is debounced by a global cooldown, gated per type so the
// same advice never fires back to back, and evaluated as a strict priority
// ladder where the first matching rule wins.
package advisor

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smardesk/smardesk-backend/pkg/classify"
)

// Tuning holds the analyzer's time thresholds. Zero fields are replaced with
// the defaults, so a partial override from the tuning file is safe.
type Tuning struct {
	// TickSeconds is the sampling period; every *Seconds counter grows in
	// increments of exactly this much.
	TickSeconds int `yaml:"tick_seconds"`

	// YawnDebounce keeps one long yawn from counting as several.
	YawnDebounce time.Duration `yaml:"yawn_debounce"`

	// Trailing windows for the yawn and closed-eye histories.
	YawnWindow       time.Duration `yaml:"yawn_window"`
	ClosedEyesWindow time.Duration `yaml:"closed_eyes_window"`

	// AdviceCooldown is the global minimum interval between any two advice
	// events, regardless of type.
	AdviceCooldown time.Duration `yaml:"advice_cooldown"`

	// Ladder thresholds.
	SevereFatigueYawns   int           `yaml:"severe_fatigue_yawns"`
	EyeDangerSeconds     int           `yaml:"eye_danger_seconds"`
	ChronicSlouchSeconds int           `yaml:"chronic_slouch_seconds"`
	FatigueYawnRecency   time.Duration `yaml:"fatigue_yawn_recency"`
	BreakInterval        time.Duration `yaml:"break_interval"`
	WaterInterval        time.Duration `yaml:"water_interval"`
	WorkoutInterval      time.Duration `yaml:"workout_interval"`
}

// DefaultTuning returns the production thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		TickSeconds:          2,
		YawnDebounce:         8 * time.Second,
		YawnWindow:           5 * time.Minute,
		ClosedEyesWindow:     3 * time.Minute,
		AdviceCooldown:       45 * time.Second,
		SevereFatigueYawns:   2,
		EyeDangerSeconds:     60,
		ChronicSlouchSeconds: 120,
		FatigueYawnRecency:   time.Minute,
		BreakInterval:        25 * time.Minute,
		WaterInterval:        60 * time.Minute,
		WorkoutInterval:      90 * time.Minute,
	}
}

func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.TickSeconds <= 0 {
		t.TickSeconds = def.TickSeconds
	}
	if t.YawnDebounce <= 0 {
		t.YawnDebounce = def.YawnDebounce
	}
	if t.YawnWindow <= 0 {
		t.YawnWindow = def.YawnWindow
	}
	if t.ClosedEyesWindow <= 0 {
		t.ClosedEyesWindow = def.ClosedEyesWindow
	}
	if t.AdviceCooldown <= 0 {
		t.AdviceCooldown = def.AdviceCooldown
	}
	if t.SevereFatigueYawns <= 0 {
		t.SevereFatigueYawns = def.SevereFatigueYawns
	}
	if t.EyeDangerSeconds <= 0 {
		t.EyeDangerSeconds = def.EyeDangerSeconds
	}
	if t.ChronicSlouchSeconds <= 0 {
		t.ChronicSlouchSeconds = def.ChronicSlouchSeconds
	}
	if t.FatigueYawnRecency <= 0 {
		t.FatigueYawnRecency = def.FatigueYawnRecency
	}
	if t.BreakInterval <= 0 {
		t.BreakInterval = def.BreakInterval
	}
	if t.WaterInterval <= 0 {
		t.WaterInterval = def.WaterInterval
	}
	if t.WorkoutInterval <= 0 {
		t.WorkoutInterval = def.WorkoutInterval
	}
	return t
}

// tuningYAML mirrors Tuning with durations as strings, so the tuning file
// can say "45s" instead of nanosecond integers.
type tuningYAML struct {
	TickSeconds          int    `yaml:"tick_seconds"`
	YawnDebounce         string `yaml:"yawn_debounce"`
	YawnWindow           string `yaml:"yawn_window"`
	ClosedEyesWindow     string `yaml:"closed_eyes_window"`
	AdviceCooldown       string `yaml:"advice_cooldown"`
	SevereFatigueYawns   int    `yaml:"severe_fatigue_yawns"`
	EyeDangerSeconds     int    `yaml:"eye_danger_seconds"`
	ChronicSlouchSeconds int    `yaml:"chronic_slouch_seconds"`
	FatigueYawnRecency   string `yaml:"fatigue_yawn_recency"`
	BreakInterval        string `yaml:"break_interval"`
	WaterInterval        string `yaml:"water_interval"`
	WorkoutInterval      string `yaml:"workout_interval"`
}

func (t *Tuning) UnmarshalYAML(value *yaml.Node) error {
	var raw tuningYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	t.TickSeconds = raw.TickSeconds
	t.SevereFatigueYawns = raw.SevereFatigueYawns
	t.EyeDangerSeconds = raw.EyeDangerSeconds
	t.ChronicSlouchSeconds = raw.ChronicSlouchSeconds

	durations := []struct {
		name string
		val  string
		dst  *time.Duration
	}{
		{"yawn_debounce", raw.YawnDebounce, &t.YawnDebounce},
		{"yawn_window", raw.YawnWindow, &t.YawnWindow},
		{"closed_eyes_window", raw.ClosedEyesWindow, &t.ClosedEyesWindow},
		{"advice_cooldown", raw.AdviceCooldown, &t.AdviceCooldown},
		{"fatigue_yawn_recency", raw.FatigueYawnRecency, &t.FatigueYawnRecency},
		{"break_interval", raw.BreakInterval, &t.BreakInterval},
		{"water_interval", raw.WaterInterval, &t.WaterInterval},
		{"workout_interval", raw.WorkoutInterval, &t.WorkoutInterval},
	}
	for _, f := range durations {
		if f.val == "" {
			continue
		}
		d, err := time.ParseDuration(f.val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = d
	}

	return nil
}

// Config configures an Analyzer. Zero values fall back to defaults.
type Config struct {
	Tuning  Tuning
	Catalog Catalog
	Clock   Clock
}

// Analyzer is the stateful behavior analyzer for one tracking session. It is
// not safe for concurrent use: exactly one goroutine (the session's sampling
// loop) may call its methods.
type Analyzer struct {
	tuning  Tuning
	catalog Catalog
	clock   Clock
	state   State
	rules   []adviceRule
}

// adviceRule is one rung of the advice ladder. matches is evaluated against
// the current state; text renders the advice body from pre-fire state; fire
// applies the rule's extra timer resets after it wins.
type adviceRule struct {
	adviceType string
	priority   string
	matches    func(s *State, now time.Time) bool
	text       func(s *State, now time.Time, tpl Template) string
	fire       func(s *State, now time.Time)
}

// New creates an analyzer with fresh state anchored at the clock's current
// time.
func New(cfg Config) *Analyzer {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	catalog := DefaultCatalog()
	if cfg.Catalog != nil {
		catalog = catalog.Merge(cfg.Catalog)
	}
	a := &Analyzer{
		tuning:  cfg.Tuning.withDefaults(),
		catalog: catalog,
		clock:   cfg.Clock,
	}
	a.state = newState(a.clock.Now())
	a.rules = a.buildLadder()
	return a
}

// buildLadder declares the advice rules in strict priority order. The order
// is the contract: critical fatigue and eye/posture danger first, then the
// fatigue warning, then the interval reminders.
func (a *Analyzer) buildLadder() []adviceRule {
	t := a.tuning
	return []adviceRule{
		{
			adviceType: TypeSevereFatigue,
			priority:   PriorityCritical,
			matches: func(s *State, now time.Time) bool {
				return len(s.RecentYawns) >= t.SevereFatigueYawns
			},
			text: func(s *State, now time.Time, tpl Template) string {
				return fmt.Sprintf(tpl.Text, s.YawnCount)
			},
			fire: func(s *State, now time.Time) {
				s.LastBreakTime = now
			},
		},
		{
			adviceType: TypeEyeDanger,
			priority:   PriorityCritical,
			matches: func(s *State, now time.Time) bool {
				return s.TooCloseSeconds > t.EyeDangerSeconds
			},
		},
		{
			adviceType: TypeChronicSlouch,
			priority:   PriorityCritical,
			matches: func(s *State, now time.Time) bool {
				return s.SlouchingSeconds > t.ChronicSlouchSeconds
			},
			text: func(s *State, now time.Time, tpl Template) string {
				return fmt.Sprintf(tpl.Text, s.SlouchingSeconds/60)
			},
			fire: func(s *State, now time.Time) {
				s.LastWorkoutTime = now
			},
		},
		{
			adviceType: TypeFatigue,
			priority:   PriorityHigh,
			matches: func(s *State, now time.Time) bool {
				return s.YawnCount >= 1 && now.Sub(s.LastYawnTime) < t.FatigueYawnRecency
			},
		},
		{
			adviceType: TypePomodoroBreak,
			priority:   PriorityMedium,
			matches: func(s *State, now time.Time) bool {
				return now.Sub(s.LastBreakTime) >= t.BreakInterval
			},
			text: func(s *State, now time.Time, tpl Template) string {
				return fmt.Sprintf(tpl.Text, int(now.Sub(s.LastBreakTime).Minutes()))
			},
			fire: func(s *State, now time.Time) {
				s.LastBreakTime = now
			},
		},
		{
			adviceType: TypeWaterReminder,
			priority:   PriorityMedium,
			matches: func(s *State, now time.Time) bool {
				return now.Sub(s.LastWaterTime) >= t.WaterInterval
			},
			fire: func(s *State, now time.Time) {
				s.LastWaterTime = now
			},
		},
		{
			adviceType: TypeWorkoutReminder,
			priority:   PriorityMedium,
			matches: func(s *State, now time.Time) bool {
				return now.Sub(s.LastWorkoutTime) >= t.WorkoutInterval
			},
			fire: func(s *State, now time.Time) {
				s.LastWorkoutTime = now
			},
		},
	}
}

// Update folds one combined verdict into the session state. Conditions are
// independent: one tick can advance several counters at once. A nil verdict
// (failed tick) leaves the state untouched.
func (a *Analyzer) Update(v *classify.Verdict) {
	if v == nil {
		return
	}
	now := a.clock.Now()
	s := &a.state

	s.TotalWorkSeconds += a.tuning.TickSeconds

	if v.Yawn && now.Sub(s.LastYawnTime) >= a.tuning.YawnDebounce {
		s.YawnCount++
		s.LastYawnTime = now
		s.RecentYawns = append(s.RecentYawns, now)
	}

	if v.EyesClosed {
		s.ClosedEyesCount++
		s.RecentClosedEyes = append(s.RecentClosedEyes, now)
	}

	if v.IsSlouch() {
		s.SlouchingSeconds += a.tuning.TickSeconds
	}

	if v.Severity == classify.SeverityGood {
		s.GoodPostureSeconds += a.tuning.TickSeconds
	}

	if v.TooClose {
		s.TooCloseSeconds += a.tuning.TickSeconds
	}

	s.pruneWindows(now, a.tuning.YawnWindow, a.tuning.ClosedEyesWindow)
}

// Advice evaluates the advice ladder against the current state and returns
// at most one advice event. The global cooldown applies across all types;
// the same-type guard only blocks immediate repetition of the last emitted
// type, so a different type may fire on the very next eligible call.
// LastAdviceTime advances if and only if an advice is returned.
func (a *Analyzer) Advice() *Advice {
	now := a.clock.Now()
	s := &a.state

	if !s.LastAdviceTime.IsZero() && now.Sub(s.LastAdviceTime) < a.tuning.AdviceCooldown {
		return nil
	}

	for _, rule := range a.rules {
		if rule.adviceType == s.LastAdviceType {
			continue
		}
		if !rule.matches(s, now) {
			continue
		}

		tpl := a.catalog[rule.adviceType]
		text := tpl.Text
		if rule.text != nil {
			text = rule.text(s, now, tpl)
		}

		s.LastAdviceTime = now
		s.LastAdviceType = rule.adviceType
		if rule.fire != nil {
			rule.fire(s, now)
		}

		return &Advice{
			Title:        tpl.Title,
			Text:         text,
			ActionText:   tpl.ActionText,
			Type:         rule.adviceType,
			Priority:     rule.priority,
			NeedsWorkout: tpl.NeedsWorkout,
		}
	}

	return nil
}

// Reset zeroes all counters, clears both sliding windows and the advice-type
// guard, and re-anchors the interval timers at now. Used when a new tracking
// session starts on an existing analyzer.
func (a *Analyzer) Reset() {
	a.state = newState(a.clock.Now())
}

// Snapshot returns a copy of the current session state. The windows are
// copied so the caller cannot alias the analyzer's internals.
func (a *Analyzer) Snapshot() State {
	snap := a.state
	snap.RecentYawns = append([]time.Time(nil), a.state.RecentYawns...)
	snap.RecentClosedEyes = append([]time.Time(nil), a.state.RecentClosedEyes...)
	return snap
}
