package content

import (
	"context"

	"englishexplorer/internal/logger"
	"englishexplorer/internal/metrics"
	"englishexplorer/internal/models"

	"go.uber.org/zap"
)

// Rounds serves game rounds from the provider, falling back to the pack
// whenever the provider has nothing usable.
type Rounds struct {
	provider Provider
	pack     *Pack
}

// NewRounds pairs a provider with its fallback pack
func NewRounds(provider Provider, pack *Pack) *Rounds {
	return &Rounds{provider: provider, pack: pack}
}

// Sentences returns ordering rounds. It never returns an empty set.
func (r *Rounds) Sentences(ctx context.Context) []models.SentenceRound {
	c, err := r.provider.FetchGameContent(ctx, models.GameOrdering)
	if err != nil || len(c.Sentences) == 0 {
		r.fallback(models.GameOrdering, err)
		return r.pack.FallbackSentences()
	}
	return c.Sentences
}

// GapFills returns gap-fill rounds. It never returns an empty set.
func (r *Rounds) GapFills(ctx context.Context) []models.GapFillRound {
	c, err := r.provider.FetchGameContent(ctx, models.GameGapFill)
	if err != nil || len(c.GapFills) == 0 {
		r.fallback(models.GameGapFill, err)
		return r.pack.FallbackGapFill()
	}
	return c.GapFills
}

func (r *Rounds) fallback(kind models.GameKind, err error) {
	metrics.FallbackRounds.WithLabelValues(string(kind)).Inc()
	logger.Info("using built-in rounds", zap.String("kind", string(kind)), zap.Error(err))
}
