// Package reading runs the reading quest: fetch a story, answer its quiz
// once, then review the passage with the evidence for missed questions
// highlighted.
package reading

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"englishexplorer/internal/fetch"
	"englishexplorer/internal/game"
	"englishexplorer/internal/logger"
	"englishexplorer/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoStory           = errors.New("no story loaded")
	ErrStoryUnavailable  = errors.New("story could not be generated")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrUnknownOption     = errors.New("option not offered")
	ErrIncompleteAnswers = errors.New("every question needs an answer")
	ErrAlreadySubmitted  = errors.New("quiz already submitted")
)

// Status of the session
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusSubmitted   Status = "submitted"
	StatusUnavailable Status = "unavailable"
)

// StoryFetcher produces a story; any error means none is available
type StoryFetcher interface {
	FetchStory(ctx context.Context) (*models.StoryQuiz, error)
}

// Reporter receives the XP earned by a submitted quiz
type Reporter interface {
	QuizScored(score, xp int)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(score, xp int)

func (f ReporterFunc) QuizScored(score, xp int) { f(score, xp) }

// QuestionView hides the answer until the quiz is submitted
type QuestionView struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_answer,omitempty"`
}

// Snapshot is the session as shown to the player
type Snapshot struct {
	Status    Status           `json:"status"`
	StoryID   string           `json:"story_id,omitempty"`
	Title     string           `json:"title,omitempty"`
	Questions []QuestionView   `json:"questions,omitempty"`
	Answers   map[int]string   `json:"answers"`
	Score     int              `json:"score"`
	Total     int              `json:"total"`
	Segments  []models.Segment `json:"segments,omitempty"`
}

// Session is the reading quest controller
type Session struct {
	mu       sync.Mutex
	fetcher  StoryFetcher
	reporter Reporter
	onUpdate func()
	latest   fetch.Latest

	loading   bool
	failed    bool
	story     *models.StoryQuiz
	answers   map[int]string
	submitted bool
	score     int
}

// NewSession builds an empty session. onUpdate, if set, runs after a story
// request settles.
func NewSession(fetcher StoryFetcher, reporter Reporter, onUpdate func()) *Session {
	return &Session{
		fetcher:  fetcher,
		reporter: reporter,
		onUpdate: onUpdate,
		answers:  map[int]string{},
	}
}

// RequestStory replaces the current story with a new one. There is no
// retry: on failure the session stays empty until requested again. A newer
// request or a Reset discards this one's result.
func (s *Session) RequestStory(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	s.clear()
	s.loading = true
	ctx, ticket := s.latest.Begin(ctx)
	s.mu.Unlock()

	story, err := s.fetcher.FetchStory(ctx)

	s.mu.Lock()
	if !s.latest.Current(ticket) {
		defer s.mu.Unlock()
		return s.snapshot(), fetch.ErrSuperseded
	}
	s.latest.Finish(ticket)
	s.loading = false

	if err != nil {
		s.failed = true
		snap := s.snapshot()
		s.mu.Unlock()
		logger.Warn("story unavailable", zap.Error(err))
		s.notify()
		return snap, fmt.Errorf("%w: %v", ErrStoryUnavailable, err)
	}

	if story.ID == "" {
		story.ID = uuid.NewString()
	}
	s.story = story
	snap := s.snapshot()
	s.mu.Unlock()

	s.notify()
	return snap, nil
}

// Reset drops the story and any request in flight
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest.Invalidate()
	s.clear()
}

// clear resets the story state. Caller holds mu.
func (s *Session) clear() {
	s.loading = false
	s.failed = false
	s.story = nil
	s.answers = map[int]string{}
	s.submitted = false
	s.score = 0
}

// SelectAnswer records a choice, replacing an earlier one. Ignored once
// the quiz is submitted.
func (s *Session) SelectAnswer(questionID int, option string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.story == nil {
		return s.snapshot(), ErrNoStory
	}
	if s.submitted {
		return s.snapshot(), nil
	}
	q, ok := s.story.QuestionByID(questionID)
	if !ok {
		return s.snapshot(), fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !q.HasOption(option) {
		return s.snapshot(), fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	s.answers[questionID] = option
	return s.snapshot(), nil
}

// SubmitQuiz scores the answers. Every question must be answered. A score
// above zero earns 20 XP per correct answer.
func (s *Session) SubmitQuiz() (Snapshot, error) {
	s.mu.Lock()

	if s.story == nil {
		defer s.mu.Unlock()
		return s.snapshot(), ErrNoStory
	}
	if s.submitted {
		defer s.mu.Unlock()
		return s.snapshot(), ErrAlreadySubmitted
	}
	if len(s.answers) < len(s.story.Questions) {
		defer s.mu.Unlock()
		return s.snapshot(), ErrIncompleteAnswers
	}

	score := 0
	for _, q := range s.story.Questions {
		if s.answers[q.ID] == q.CorrectOption {
			score++
		}
	}
	s.score = score
	s.submitted = true
	snap := s.snapshot()
	s.mu.Unlock()

	if score > 0 && s.reporter != nil {
		s.reporter.QuizScored(score, score*game.PointsPerQuestion)
	}
	return snap, nil
}

// State returns the session as shown to the player
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{Status: s.status(), Answers: make(map[int]string, len(s.answers))}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	if s.story == nil {
		return snap
	}

	snap.StoryID = s.story.ID
	snap.Title = s.story.Title
	snap.Score = s.score
	snap.Total = len(s.story.Questions)
	for _, q := range s.story.Questions {
		v := QuestionView{ID: q.ID, Prompt: q.Prompt, Options: append([]string{}, q.Options...)}
		if s.submitted {
			v.CorrectOption = q.CorrectOption
		}
		snap.Questions = append(snap.Questions, v)
	}
	snap.Segments = s.segments()
	return snap
}

// segments is the passage for display. Caller holds mu.
func (s *Session) segments() []models.Segment {
	if !s.submitted {
		return []models.Segment{{Text: s.story.Content}}
	}
	return Highlight(s.story.Content, missedEvidence(s.story, s.answers))
}

func (s *Session) status() Status {
	switch {
	case s.loading:
		return StatusLoading
	case s.failed:
		return StatusUnavailable
	case s.story == nil:
		return StatusIdle
	case s.submitted:
		return StatusSubmitted
	default:
		return StatusReady
	}
}

func (s *Session) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}
