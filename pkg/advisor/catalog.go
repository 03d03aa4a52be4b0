package advisor

// Advice type tags, in ladder priority order.
const (
	TypeSevereFatigue   = "severe_fatigue"
	TypeEyeDanger       = "eye_danger"
	TypeChronicSlouch   = "chronic_slouch"
	TypeFatigue         = "fatigue"
	TypePomodoroBreak   = "pomodoro_break"
	TypeWaterReminder   = "water_reminder"
	TypeWorkoutReminder = "workout_reminder"
)

// Advice priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
)

// Advice is a throttled, prioritized actionable message surfaced to the
// user, distinct from the raw per-tick verdict. It is created transiently by
// the analyzer; the caller owns its display and persistence lifecycle.
type Advice struct {
	Title        string `json:"title"`
	Text         string `json:"text"`
	ActionText   string `json:"actionText"`
	Type         string `json:"type"`
	Priority     string `json:"priority"`
	NeedsWorkout bool   `json:"needsWorkout"`
}

// Template is the display copy for one advice type. Text may contain one
// fmt verb filled from session state (yawn count, slouch minutes, minutes
// since the last break).
type Template struct {
	Title        string `yaml:"title"`
	Text         string `yaml:"text"`
	ActionText   string `yaml:"action_text"`
	NeedsWorkout bool   `yaml:"needs_workout"`
}

// Catalog maps advice types to their display copy. Entries can be overridden
// from the tuning file; missing entries fall back to the defaults.
type Catalog map[string]Template

// DefaultCatalog returns the production advice copy.
func DefaultCatalog() Catalog {
	return Catalog{
		TypeSevereFatigue: {
			Title:        "You are very tired!",
			Text:         "You yawned %d times in the last 5 minutes. Take a break right now and go for a short walk.",
			ActionText:   "TAKE A BREAK",
			NeedsWorkout: true,
		},
		TypeEyeDanger: {
			Title:        "Danger to your eyesight!",
			Text:         "You have been sitting too close to the screen for too long. This can harm your eyes. Move back and do some eye exercises.",
			ActionText:   "EYE EXERCISES",
			NeedsWorkout: true,
		},
		TypeChronicSlouch: {
			Title:        "Dangerous slouching!",
			Text:         "You have been sitting with bad posture for %d minutes already. This can lead to back pain!",
			ActionText:   "BACK EXERCISES",
			NeedsWorkout: true,
		},
		TypeFatigue: {
			Title:        "Signs of fatigue",
			Text:         "You are starting to yawn. It might be time for a break or a glass of water.",
			ActionText:   "PAUSE FOR A BIT",
			NeedsWorkout: false,
		},
		TypePomodoroBreak: {
			Title:        "Break time!",
			Text:         "You have been working for %d minutes without a break. Per the Pomodoro technique it is time to rest for 5 minutes.",
			ActionText:   "5 MINUTE BREAK",
			NeedsWorkout: true,
		},
		TypeWaterReminder: {
			Title:        "Don't forget to drink water!",
			Text:         "An hour has passed since the last reminder. Drink a glass of water for your health and focus.",
			ActionText:   "DRINK WATER",
			NeedsWorkout: false,
		},
		TypeWorkoutReminder: {
			Title:        "Time to stretch!",
			Text:         "An hour and a half has passed. Do some back and neck exercises to avoid pain and fatigue.",
			ActionText:   "START EXERCISES",
			NeedsWorkout: true,
		},
	}
}

// KnownType reports whether adviceType is one of the ladder's types.
func KnownType(adviceType string) bool {
	switch adviceType {
	case TypeSevereFatigue, TypeEyeDanger, TypeChronicSlouch, TypeFatigue,
		TypePomodoroBreak, TypeWaterReminder, TypeWorkoutReminder:
		return true
	}
	return false
}

// Merge overlays non-empty fields from other onto the catalog, returning the
// merged copy. Used to apply tuning-file overrides on top of the defaults.
func (c Catalog) Merge(other Catalog) Catalog {
	merged := make(Catalog, len(c))
	for k, v := range c {
		merged[k] = v
	}
	for k, o := range other {
		base := merged[k]
		if o.Title != "" {
			base.Title = o.Title
		}
		if o.Text != "" {
			base.Text = o.Text
		}
		if o.ActionText != "" {
			base.ActionText = o.ActionText
		}
		if o.NeedsWorkout {
			base.NeedsWorkout = true
		}
		merged[k] = base
	}
	return merged
}
