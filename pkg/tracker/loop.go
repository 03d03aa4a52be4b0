package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/advisor"
	"github.com/smardesk/smardesk-backend/pkg/classify"
	"github.com/smardesk/smardesk-backend/pkg/metrics"
)

// DefaultPeriod is the sampling period. All analyzer second-counters assume
// this cadence, so change it together with the advisor tick tuning.
const DefaultPeriod = 2 * time.Second

// Config wires a sampling loop. Source and Analyzer are required.
type Config struct {
	Source   LandmarkSource
	Posture  *classify.PostureClassifier
	Face     *classify.FaceClassifier
	Analyzer *advisor.Analyzer
	Period   time.Duration

	// OnVerdict receives every tick's combined verdict; OnAdvice receives
	// the at-most-one advice per tick. Both are invoked from the loop
	// goroutine and must not block for long.
	OnVerdict func(*classify.Verdict)
	OnAdvice  func(*advisor.Advice)
}

// Loop is one session's sampling loop. It owns the analyzer for the
// duration of the run: every Estimate call, classification and analyzer
// mutation happens on the Run goroutine, which is what guarantees both the
// at-most-one-in-flight inference rule and the analyzer's single-owner
// contract.
type Loop struct {
	source   LandmarkSource
	posture  *classify.PostureClassifier
	face     *classify.FaceClassifier
	analyzer *advisor.Analyzer
	period   time.Duration

	onVerdict func(*classify.Verdict)
	onAdvice  func(*advisor.Advice)
}

// New validates the config and builds a loop. Classifiers default to the
// production calibration, the period to DefaultPeriod.
func New(cfg Config) (*Loop, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("tracker: landmark source is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("tracker: analyzer is required")
	}
	if cfg.Posture == nil {
		cfg.Posture = classify.NewPostureClassifier(classify.DefaultCalibration())
	}
	if cfg.Face == nil {
		cfg.Face = classify.NewFaceClassifier(classify.DefaultCalibration())
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	return &Loop{
		source:    cfg.Source,
		posture:   cfg.Posture,
		face:      cfg.Face,
		analyzer:  cfg.Analyzer,
		period:    cfg.Period,
		onVerdict: cfg.OnVerdict,
		onAdvice:  cfg.OnAdvice,
	}, nil
}

// Run drives the loop until ctx is cancelled. Ticks never overlap: the
// estimate call happens inline on this goroutine, and a tick that outlasts
// the period simply causes the ticker to drop fires. An estimate result that
// lands after cancellation is discarded without touching the analyzer.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	logrus.Debugf("sampling loop started (period %s)", l.period)
	for {
		select {
		case <-ctx.Done():
			logrus.Debug("sampling loop stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick performs one capture -> classify -> combine -> analyze -> advise
// cycle. Estimate failures are absorbed here: the tick is skipped, the
// analyzer state stays untouched, and nothing propagates to the caller.
func (l *Loop) tick(ctx context.Context) {
	frame, err := l.source.Estimate(ctx)
	if err != nil {
		logrus.Warnf("landmark estimate failed, skipping tick: %v", err)
		metrics.TicksSkipped.Inc()
		return
	}
	// The session may have been stopped while the estimate was in flight;
	// its result must not be applied to a reset analyzer.
	if ctx.Err() != nil {
		return
	}
	metrics.TicksTotal.Inc()

	var pose *classify.Verdict
	var face *classify.Verdict
	if frame == nil {
		pose = l.posture.Classify(nil)
		face = l.face.Classify(nil, 0)
	} else {
		pose = l.posture.Classify(frame.Pose)
		face = l.face.Classify(frame.Face, frame.Width())
	}

	combined := classify.Combine(pose, face)
	combined.At = time.Now()
	metrics.VerdictsTotal.WithLabelValues(string(combined.Domain), combined.Status).Inc()

	l.analyzer.Update(combined)
	if l.onVerdict != nil {
		l.onVerdict(combined)
	}

	if advice := l.analyzer.Advice(); advice != nil {
		metrics.AdviceTotal.WithLabelValues(advice.Type, advice.Priority).Inc()
		logrus.Infof("advice emitted: type=%s priority=%s", advice.Type, advice.Priority)
		if l.onAdvice != nil {
			l.onAdvice(advice)
		}
	}
}
