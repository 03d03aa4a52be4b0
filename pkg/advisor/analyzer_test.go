package advisor

import (
	"strings"
	"testing"
	"time"

	"github.com/smardesk/smardesk-backend/pkg/classify"
)

// fakeClock is a manually advanced clock for driving the analyzer in tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestAnalyzer() (*Analyzer, *fakeClock) {
	clock := newFakeClock()
	a := New(Config{Clock: clock})
	return a, clock
}

var (
	goodVerdict = &classify.Verdict{
		Domain: classify.DomainPose, Status: classify.StatusPerfect, Severity: classify.SeverityGood,
	}
	slouchVerdict = &classify.Verdict{
		Domain: classify.DomainPose, Status: classify.StatusSlouching, Severity: classify.SeverityHigh,
	}
	yawnVerdict = &classify.Verdict{
		Domain: classify.DomainFace, Status: classify.StatusYawning, Severity: classify.SeverityHigh, Yawn: true,
	}
	tooCloseVerdict = &classify.Verdict{
		Domain: classify.DomainFace, Status: classify.StatusTooClose, Severity: classify.SeverityCritical, TooClose: true,
	}
	eyesClosedVerdict = &classify.Verdict{
		Domain: classify.DomainFace, Status: classify.StatusEyesClosed, Severity: classify.SeverityHigh, EyesClosed: true,
	}
)

// tick advances the clock by one sampling period and folds in a verdict.
func tick(a *Analyzer, clock *fakeClock, v *classify.Verdict) {
	clock.Advance(2 * time.Second)
	a.Update(v)
}

func TestAnalyzer_Counters(t *testing.T) {
	a, clock := newTestAnalyzer()

	tick(a, clock, goodVerdict)
	tick(a, clock, slouchVerdict)
	tick(a, clock, tooCloseVerdict)

	s := a.Snapshot()
	if s.TotalWorkSeconds != 6 {
		t.Errorf("TotalWorkSeconds = %d, expected 6", s.TotalWorkSeconds)
	}
	if s.GoodPostureSeconds != 2 {
		t.Errorf("GoodPostureSeconds = %d, expected 2", s.GoodPostureSeconds)
	}
	if s.SlouchingSeconds != 2 {
		t.Errorf("SlouchingSeconds = %d, expected 2", s.SlouchingSeconds)
	}
	if s.TooCloseSeconds != 2 {
		t.Errorf("TooCloseSeconds = %d, expected 2", s.TooCloseSeconds)
	}
}

func TestAnalyzer_UpdateNilVerdict(t *testing.T) {
	a, _ := newTestAnalyzer()

	a.Update(nil)

	if s := a.Snapshot(); s.TotalWorkSeconds != 0 {
		t.Errorf("TotalWorkSeconds = %d after nil verdict, expected 0", s.TotalWorkSeconds)
	}
}

func TestAnalyzer_YawnDebounce(t *testing.T) {
	a, clock := newTestAnalyzer()

	// Five consecutive yawn ticks 2s apart: the first counts, the next
	// three fall inside the 8s debounce, the fifth is 8s after the first.
	for i := 0; i < 5; i++ {
		tick(a, clock, yawnVerdict)
	}

	s := a.Snapshot()
	if s.YawnCount != 2 {
		t.Errorf("YawnCount = %d, expected 2 (debounced)", s.YawnCount)
	}
	if len(s.RecentYawns) != 2 {
		t.Errorf("RecentYawns has %d entries, expected 2", len(s.RecentYawns))
	}
}

func TestAnalyzer_WindowPruning(t *testing.T) {
	a, clock := newTestAnalyzer()

	tick(a, clock, yawnVerdict)
	tick(a, clock, eyesClosedVerdict)

	// Push both events past their trailing windows.
	clock.Advance(6 * time.Minute)
	a.Update(goodVerdict)

	s := a.Snapshot()
	if len(s.RecentYawns) != 0 {
		t.Errorf("RecentYawns has %d entries after window expiry, expected 0", len(s.RecentYawns))
	}
	if len(s.RecentClosedEyes) != 0 {
		t.Errorf("RecentClosedEyes has %d entries after window expiry, expected 0", len(s.RecentClosedEyes))
	}
	// Cumulative counters are unaffected by pruning.
	if s.YawnCount != 1 {
		t.Errorf("YawnCount = %d, expected 1", s.YawnCount)
	}
	if s.ClosedEyesCount != 1 {
		t.Errorf("ClosedEyesCount = %d, expected 1", s.ClosedEyesCount)
	}
}

func TestAnalyzer_ChronicSlouchAdvice(t *testing.T) {
	a, clock := newTestAnalyzer()

	// 61 slouching ticks = 122s of slouch, past the 120s threshold.
	for i := 0; i < 61; i++ {
		tick(a, clock, slouchVerdict)
	}

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected advice after chronic slouching")
	}
	if adv.Type != TypeChronicSlouch {
		t.Errorf("Type = %s, expected %s", adv.Type, TypeChronicSlouch)
	}
	if adv.Priority != PriorityCritical {
		t.Errorf("Priority = %s, expected %s", adv.Priority, PriorityCritical)
	}
	if !adv.NeedsWorkout {
		t.Error("expected NeedsWorkout on chronic slouch advice")
	}
	if strings.Contains(adv.Text, "%") {
		t.Errorf("Text not fully rendered: %q", adv.Text)
	}
}

func TestAnalyzer_AdviceCooldown(t *testing.T) {
	a, clock := newTestAnalyzer()

	for i := 0; i < 61; i++ {
		tick(a, clock, slouchVerdict)
	}

	if adv := a.Advice(); adv == nil {
		t.Fatal("expected first advice")
	}
	if adv := a.Advice(); adv != nil {
		t.Errorf("expected nil inside cooldown, got %s", adv.Type)
	}

	// Past the 45s cooldown the same type is still guarded and nothing
	// else matches yet.
	clock.Advance(46 * time.Second)
	if adv := a.Advice(); adv != nil {
		t.Errorf("expected nil from same-type guard, got %s", adv.Type)
	}
}

func TestAnalyzer_EyeDangerAdvice(t *testing.T) {
	a, clock := newTestAnalyzer()

	// 31 too-close ticks = 62s, past the 60s threshold.
	for i := 0; i < 31; i++ {
		tick(a, clock, tooCloseVerdict)
	}

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected advice after sustained screen proximity")
	}
	if adv.Type != TypeEyeDanger {
		t.Errorf("Type = %s, expected %s", adv.Type, TypeEyeDanger)
	}
	if adv.Priority != PriorityCritical {
		t.Errorf("Priority = %s, expected %s", adv.Priority, PriorityCritical)
	}
}

func TestAnalyzer_FatigueAdvice(t *testing.T) {
	a, clock := newTestAnalyzer()

	// One recent yawn: below the severe threshold, inside the recency
	// window for the fatigue warning.
	tick(a, clock, yawnVerdict)
	tick(a, clock, goodVerdict)

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected fatigue advice")
	}
	if adv.Type != TypeFatigue {
		t.Errorf("Type = %s, expected %s", adv.Type, TypeFatigue)
	}
	if adv.Priority != PriorityHigh {
		t.Errorf("Priority = %s, expected %s", adv.Priority, PriorityHigh)
	}
}

func TestAnalyzer_SevereFatigueAdvice(t *testing.T) {
	a, clock := newTestAnalyzer()

	// Three yawns spaced past the debounce, all within the 5m window.
	for i := 0; i < 3; i++ {
		tick(a, clock, yawnVerdict)
		clock.Advance(10 * time.Second)
		a.Update(goodVerdict)
	}

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected severe fatigue advice")
	}
	if adv.Type != TypeSevereFatigue {
		t.Errorf("Type = %s, expected %s", adv.Type, TypeSevereFatigue)
	}
	if adv.Priority != PriorityCritical {
		t.Errorf("Priority = %s, expected %s", adv.Priority, PriorityCritical)
	}

	// Firing resets the break anchor.
	s := a.Snapshot()
	if !s.LastBreakTime.Equal(clock.Now()) {
		t.Errorf("LastBreakTime = %v, expected reset to %v", s.LastBreakTime, clock.Now())
	}
}

func TestAnalyzer_SameTypeGuardAllowsOtherTypes(t *testing.T) {
	a, clock := newTestAnalyzer()

	// Build up both severe fatigue and chronic slouch.
	for i := 0; i < 3; i++ {
		tick(a, clock, yawnVerdict)
		clock.Advance(10 * time.Second)
		a.Update(slouchVerdict)
	}
	for i := 0; i < 61; i++ {
		tick(a, clock, slouchVerdict)
	}

	first := a.Advice()
	if first == nil || first.Type != TypeSevereFatigue {
		t.Fatalf("expected severe fatigue first, got %+v", first)
	}

	// After the cooldown, severe fatigue still matches but is guarded;
	// the ladder falls through to chronic slouch.
	clock.Advance(46 * time.Second)
	second := a.Advice()
	if second == nil {
		t.Fatal("expected a second advice")
	}
	if second.Type != TypeChronicSlouch {
		t.Errorf("Type = %s, expected %s", second.Type, TypeChronicSlouch)
	}
}

func TestAnalyzer_IntervalReminders(t *testing.T) {
	a, clock := newTestAnalyzer()

	// Nothing eventful for 25 minutes.
	clock.Advance(25 * time.Minute)
	a.Update(goodVerdict)

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected pomodoro advice")
	}
	if adv.Type != TypePomodoroBreak {
		t.Errorf("Type = %s, expected %s", adv.Type, TypePomodoroBreak)
	}
	if strings.Contains(adv.Text, "%") {
		t.Errorf("Text not fully rendered: %q", adv.Text)
	}

	// At the hour mark the water reminder is due; the pomodoro anchor was
	// reset when it fired, so it does not repeat yet.
	clock.Advance(35 * time.Minute)
	a.Update(goodVerdict)

	adv = a.Advice()
	if adv == nil {
		t.Fatal("expected water advice")
	}
	if adv.Type != TypeWaterReminder {
		t.Errorf("Type = %s, expected %s", adv.Type, TypeWaterReminder)
	}
}

func TestAnalyzer_Reset(t *testing.T) {
	a, clock := newTestAnalyzer()

	for i := 0; i < 10; i++ {
		tick(a, clock, yawnVerdict)
	}
	a.Reset()

	s := a.Snapshot()
	if s.TotalWorkSeconds != 0 || s.YawnCount != 0 || len(s.RecentYawns) != 0 {
		t.Errorf("state not cleared by Reset: %+v", s)
	}
	if !s.StartTime.Equal(clock.Now()) {
		t.Errorf("StartTime = %v, expected re-anchor at %v", s.StartTime, clock.Now())
	}
}

func TestAnalyzer_SnapshotCopiesWindows(t *testing.T) {
	a, clock := newTestAnalyzer()

	tick(a, clock, yawnVerdict)

	snap := a.Snapshot()
	snap.RecentYawns[0] = time.Time{}

	if a.Snapshot().RecentYawns[0].IsZero() {
		t.Error("mutating a snapshot window leaked into the analyzer state")
	}
}

func TestAnalyzer_CatalogOverride(t *testing.T) {
	clock := newFakeClock()
	a := New(Config{
		Clock: clock,
		Catalog: Catalog{
			TypeWaterReminder: {Title: "Hydration check"},
		},
	})

	clock.Advance(60 * time.Minute)
	a.Update(goodVerdict)

	adv := a.Advice()
	if adv == nil {
		t.Fatal("expected advice")
	}
	if adv.Type != TypePomodoroBreak {
		// The break reminder outranks water at the hour mark.
		t.Fatalf("Type = %s, expected %s", adv.Type, TypePomodoroBreak)
	}

	clock.Advance(46 * time.Second)
	adv = a.Advice()
	if adv == nil || adv.Type != TypeWaterReminder {
		t.Fatalf("expected water reminder, got %+v", adv)
	}
	if adv.Title != "Hydration check" {
		t.Errorf("Title = %q, expected override %q", adv.Title, "Hydration check")
	}
	if adv.Text == "" {
		t.Error("expected default text to survive a partial override")
	}
}
