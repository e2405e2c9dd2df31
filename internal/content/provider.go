// Package content produces stories and game rounds. Generation is
// delegated to an external model and may fail at any time; games fall back
// to the built-in pack, the reading quest simply has no story.
package content

import (
	"context"
	"errors"
	"fmt"

	"englishexplorer/internal/models"
	"englishexplorer/internal/validation"
)

// KindStory labels story requests in the archive and metrics
const KindStory = "STORY"

// StoryQuestions is the number of comprehension questions a story carries
const StoryQuestions = 3

var (
	ErrNotConfigured   = errors.New("content generation is not configured")
	ErrUnsupportedKind = errors.New("unsupported content kind")
	ErrEmptyResponse   = errors.New("empty response from generator")
)

// GameContent holds the rounds for one game kind. Only the slice matching
// Kind is filled.
type GameContent struct {
	Kind      models.GameKind        `json:"kind"`
	Sentences []models.SentenceRound `json:"sentences,omitempty"`
	GapFills  []models.GapFillRound  `json:"questions,omitempty"`
}

// Len is the number of rounds
func (c *GameContent) Len() int {
	return len(c.Sentences) + len(c.GapFills)
}

// Provider fetches generated content. Any error means the content is absent.
type Provider interface {
	FetchStory(ctx context.Context) (*models.StoryQuiz, error)
	FetchGameContent(ctx context.Context, kind models.GameKind) (*GameContent, error)
}

// Unavailable is the provider used when no credential is configured
type Unavailable struct{}

func (Unavailable) FetchStory(context.Context) (*models.StoryQuiz, error) {
	return nil, ErrNotConfigured
}

func (Unavailable) FetchGameContent(context.Context, models.GameKind) (*GameContent, error) {
	return nil, ErrNotConfigured
}

// CheckStory rejects stories that cannot be played: missing fields, a
// question count other than StoryQuestions, duplicate question ids or a
// correct option that is not offered. Evidence that does not appear in the
// passage is allowed.
func CheckStory(s *models.StoryQuiz) error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	if len(s.Questions) != StoryQuestions {
		return fmt.Errorf("story has %d questions, want %d", len(s.Questions), StoryQuestions)
	}
	seen := make(map[int]bool, len(s.Questions))
	for _, q := range s.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if !q.HasOption(q.CorrectOption) {
			return fmt.Errorf("question %d: correct option %q not offered", q.ID, q.CorrectOption)
		}
	}
	return nil
}

// CheckGameContent rejects round sets with any malformed round
func CheckGameContent(c *GameContent) error {
	switch c.Kind {
	case models.GameOrdering:
		for i, r := range c.Sentences {
			if err := validation.Struct(r); err != nil {
				return fmt.Errorf("sentence %d: %w", i, err)
			}
		}
	case models.GameGapFill:
		for i, r := range c.GapFills {
			if err := validation.Struct(r); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
			if err := r.Check(); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, c.Kind)
	}
	if c.Len() == 0 {
		return ErrEmptyResponse
	}
	return nil
}
