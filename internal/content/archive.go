package content

import (
	"context"
	"time"

	"englishexplorer/internal/logger"
	"englishexplorer/internal/metrics"
	"englishexplorer/internal/models"

	"go.uber.org/zap"
)

// Fetch outcomes recorded in the archive and metrics
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder stores generated content and fetch outcomes
type Recorder interface {
	RecordGenerated(kind, title string, payload any, duration time.Duration) (int64, error)
	RecordFetch(kind, outcome, errMsg string, duration time.Duration) error
}

// Observed wraps a provider, recording every fetch in metrics and, when a
// recorder is set, in the content archive. Recording problems are logged
// and never change the result.
type Observed struct {
	next     Provider
	recorder Recorder
	now      func() time.Time
}

// NewObserved decorates next. recorder may be nil.
func NewObserved(next Provider, recorder Recorder) *Observed {
	return &Observed{next: next, recorder: recorder, now: time.Now}
}

func (o *Observed) FetchStory(ctx context.Context) (*models.StoryQuiz, error) {
	start := o.now()
	story, err := o.next.FetchStory(ctx)
	if err != nil {
		o.observe(KindStory, start, "", nil, err)
		return nil, err
	}
	o.observe(KindStory, start, story.Title, story, nil)
	return story, nil
}

func (o *Observed) FetchGameContent(ctx context.Context, kind models.GameKind) (*GameContent, error) {
	start := o.now()
	c, err := o.next.FetchGameContent(ctx, kind)
	if err != nil {
		o.observe(string(kind), start, "", nil, err)
		return nil, err
	}
	o.observe(string(kind), start, "", c, nil)
	return c, nil
}

// observe logs and counts a fetch, then records it: a success with its
// payload, a failure with its error.
func (o *Observed) observe(kind string, start time.Time, title string, payload any, err error) {
	elapsed := o.now().Sub(start)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		logger.Warn("content fetch failed",
			zap.String("kind", kind), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		logger.Info("content fetched", zap.String("kind", kind), zap.Duration("elapsed", elapsed))
	}

	metrics.ContentFetches.WithLabelValues(kind, outcome).Inc()
	metrics.ContentFetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

	if o.recorder == nil {
		return
	}
	if err != nil {
		if rerr := o.recorder.RecordFetch(kind, outcome, err.Error(), elapsed); rerr != nil {
			logger.Error("failed to record content fetch", zap.String("kind", kind), zap.Error(rerr))
		}
		return
	}
	if _, rerr := o.recorder.RecordGenerated(kind, title, payload, elapsed); rerr != nil {
		logger.Error("failed to archive content", zap.String("kind", kind), zap.Error(rerr))
	}
}
