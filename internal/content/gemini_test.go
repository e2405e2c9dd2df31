package content

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"englishexplorer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ *genai.Schema) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func newTestGemini(t *testing.T, gen Generator) *Gemini {
	t.Helper()
	pack, err := DefaultPack()
	require.NoError(t, err)
	return NewGemini(gen, pack, rand.New(rand.NewPCG(1, 2)), time.Second)
}

const storyJSON = `{
  "title": "Max and the Sleep Pods",
  "content": "Max never gets up early. He always sleeps in the sleep pods at school.",
  "questions": [
    {"id": 1, "text": "Does Max get up early?", "options": ["Yes", "No"], "correctAnswer": "No", "evidence": "Max never gets up early."},
    {"id": 2, "text": "Where does he sleep?", "options": ["At home", "In the sleep pods"], "correctAnswer": "In the sleep pods", "evidence": "He always sleeps in the sleep pods at school."},
    {"id": 3, "text": "Is Max tired?", "options": ["Yes", "No"], "correctAnswer": "Yes", "evidence": "not in the text"}
  ]
}`

func TestFetchStory(t *testing.T) {
	gen := &fakeGenerator{response: storyJSON}
	story, err := newTestGemini(t, gen).FetchStory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Max and the Sleep Pods", story.Title)
	require.Len(t, story.Questions, 3)
	assert.Equal(t, "In the sleep pods", story.Questions[1].CorrectOption)
	assert.Equal(t, "Max never gets up early.", story.Questions[0].Evidence)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "at least 6")
	assert.Contains(t, gen.prompts[0], "generate 3 multiple choice questions")
	assert.Contains(t, gen.prompts[0], "walk the dog")
}

func TestFetchStoryMalformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "Once upon a time"},
		{"no questions", `{"title": "T", "content": "C", "questions": []}`},
		{"answer not offered", `{"title": "T", "content": "C", "questions": [{"id": 1, "text": "Q", "options": ["a", "b"], "correctAnswer": "c"}]}`},
		{"duplicate ids", `{"title": "T", "content": "C", "questions": [
			{"id": 1, "text": "Q", "options": ["a", "b"], "correctAnswer": "a"},
			{"id": 1, "text": "R", "options": ["a", "b"], "correctAnswer": "b"}]}`},
		{"too few questions", `{"title": "T", "content": "C", "questions": [
			{"id": 1, "text": "Q", "options": ["a", "b"], "correctAnswer": "a"},
			{"id": 2, "text": "R", "options": ["a", "b"], "correctAnswer": "b"}]}`},
		{"too many questions", `{"title": "T", "content": "C", "questions": [
			{"id": 1, "text": "Q", "options": ["a", "b"], "correctAnswer": "a"},
			{"id": 2, "text": "R", "options": ["a", "b"], "correctAnswer": "b"},
			{"id": 3, "text": "S", "options": ["a", "b"], "correctAnswer": "a"},
			{"id": 4, "text": "U", "options": ["a", "b"], "correctAnswer": "b"}]}`},
		{"missing title", `{"content": "C", "questions": [{"id": 1, "text": "Q", "options": ["a", "b"], "correctAnswer": "a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGemini(t, &fakeGenerator{response: tt.response}).FetchStory(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchStoryGeneratorError(t *testing.T) {
	_, err := newTestGemini(t, &fakeGenerator{err: errors.New("quota")}).FetchStory(context.Background())
	assert.EqualError(t, err, "quota")
}

func TestFetchOrderingContent(t *testing.T) {
	gen := &fakeGenerator{response: `{"sentences": [
		{"text": "I often ride a bike.", "explanation": "Adverbio antes del verbo."},
		{"text": "She never watches TV.", "explanation": "Tercera persona."}
	]}`}
	c, err := newTestGemini(t, gen).FetchGameContent(context.Background(), models.GameOrdering)
	require.NoError(t, err)

	assert.Equal(t, models.GameOrdering, c.Kind)
	require.Len(t, c.Sentences, 2)
	assert.Equal(t, "I often ride a bike.", c.Sentences[0].Text)

	// only the first ten target phrases are offered
	assert.Contains(t, gen.prompts[0], "go to bed")
	assert.False(t, strings.Contains(gen.prompts[0], "sleep pods"))
}

func TestFetchGapFillContent(t *testing.T) {
	gen := &fakeGenerator{response: `{"questions": [
		{"text": "He ______ (like) pizza.", "answer": "likes", "options": ["like", "likes", "liking"], "explanation": "3ª persona."}
	]}`}
	c, err := newTestGemini(t, gen).FetchGameContent(context.Background(), models.GameGapFill)
	require.NoError(t, err)
	require.Len(t, c.GapFills, 1)
	assert.Equal(t, "likes", c.GapFills[0].CorrectAnswer)
}

func TestFetchGameContentMalformed(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.GameKind
		response string
	}{
		{"empty sentences", models.GameOrdering, `{"sentences": []}`},
		{"blank sentence", models.GameOrdering, `{"sentences": [{"text": "", "explanation": "x"}]}`},
		{"gap missing", models.GameGapFill, `{"questions": [{"text": "He likes pizza.", "answer": "likes", "options": ["like", "likes"]}]}`},
		{"answer not offered", models.GameGapFill, `{"questions": [{"text": "He ______ pizza.", "answer": "loves", "options": ["like", "likes"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGemini(t, &fakeGenerator{response: tt.response}).FetchGameContent(context.Background(), tt.kind)
			assert.Error(t, err)
		})
	}
}

func TestFetchGameContentUnsupportedKind(t *testing.T) {
	_, err := newTestGemini(t, &fakeGenerator{}).FetchGameContent(context.Background(), models.GameMatching)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}
