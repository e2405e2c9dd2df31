package content

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"englishexplorer/internal/models"
	"englishexplorer/internal/random"

	"google.golang.org/genai"
)

// Generator returns a JSON document conforming to schema for prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// genaiGenerator calls the Gemini API
type genaiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenaiGenerator creates a Gemini backed generator
func NewGenaiGenerator(ctx context.Context, apiKey, model string, temperature float32) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &genaiGenerator{client: client, model: model, temperature: temperature}, nil
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Gemini builds prompts from the content pack and decodes the generated
// JSON into stories and rounds.
type Gemini struct {
	gen     Generator
	pack    *Pack
	timeout time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

// NewGemini returns a provider over gen. timeout bounds each request.
func NewGemini(gen Generator, pack *Pack, r *rand.Rand, timeout time.Duration) *Gemini {
	return &Gemini{gen: gen, pack: pack, rand: r, timeout: timeout}
}

func (g *Gemini) generate(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.gen.Generate(ctx, prompt, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode generated content: %w", err)
	}
	return nil
}

type storyPayload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Questions []struct {
		ID            int      `json:"id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
		Evidence      string   `json:"evidence"`
	} `json:"questions"`
}

// FetchStory generates a passage with three comprehension questions
func (g *Gemini) FetchStory(ctx context.Context) (*models.StoryQuiz, error) {
	var payload storyPayload
	if err := g.generate(ctx, g.storyPrompt(), storySchema, &payload); err != nil {
		return nil, err
	}

	story := &models.StoryQuiz{Title: payload.Title, Content: payload.Content}
	for _, q := range payload.Questions {
		story.Questions = append(story.Questions, models.Question{
			ID:            q.ID,
			Prompt:        q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectAnswer,
			Evidence:      q.Evidence,
		})
	}
	if err := CheckStory(story); err != nil {
		return nil, fmt.Errorf("malformed story: %w", err)
	}
	return story, nil
}

type sentencesPayload struct {
	Sentences []struct {
		Text        string `json:"text"`
		Explanation string `json:"explanation"`
	} `json:"sentences"`
}

type gapFillPayload struct {
	Questions []struct {
		Text        string   `json:"text"`
		Answer      string   `json:"answer"`
		Options     []string `json:"options"`
		Explanation string   `json:"explanation"`
	} `json:"questions"`
}

// FetchGameContent generates five rounds for the ordering or gap-fill game
func (g *Gemini) FetchGameContent(ctx context.Context, kind models.GameKind) (*GameContent, error) {
	out := &GameContent{Kind: kind}

	switch kind {
	case models.GameOrdering:
		var payload sentencesPayload
		if err := g.generate(ctx, g.orderingPrompt(), sentencesSchema, &payload); err != nil {
			return nil, err
		}
		for _, s := range payload.Sentences {
			out.Sentences = append(out.Sentences, models.SentenceRound{Text: s.Text, Explanation: s.Explanation})
		}
	case models.GameGapFill:
		var payload gapFillPayload
		if err := g.generate(ctx, gapFillPrompt, gapFillSchema, &payload); err != nil {
			return nil, err
		}
		for _, q := range payload.Questions {
			out.GapFills = append(out.GapFills, models.GapFillRound{
				Prompt:        q.Text,
				CorrectAnswer: q.Answer,
				Options:       q.Options,
				Explanation:   q.Explanation,
			})
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	if err := CheckGameContent(out); err != nil {
		return nil, fmt.Errorf("malformed %s content: %w", kind, err)
	}
	return out, nil
}

func (g *Gemini) storyPrompt() string {
	g.mu.Lock()
	protagonist := random.Pick(g.rand, g.pack.Protagonists)
	scenario := random.Pick(g.rand, g.pack.Scenarios)
	g.mu.Unlock()

	return fmt.Sprintf(`Generate a UNIQUE and fun short story for a 12-year-old English student.

Protagonist: %s
Specific Plot Scenario: %s
Grammar focus: Present Simple (Affirmative, Negative) and Adverbs of Frequency.

You MUST include at least 6 of these words/phrases naturally in the text: %s.

Make sure the story is CREATIVE and DIFFERENT from a generic routine description.

Also generate %d multiple choice questions to test comprehension.
IMPORTANT: For each question, provide the 'evidence' field which is the EXACT quote from the text that proves the answer.`,
		protagonist, scenario, strings.Join(g.pack.TargetVocabulary, ", "), StoryQuestions)
}

func (g *Gemini) orderingPrompt() string {
	vocab := g.pack.TargetVocabulary
	if len(vocab) > 10 {
		vocab = vocab[:10]
	}
	return fmt.Sprintf(`Generate 5 different sentences for a "Sentence Scramble" game for a 12-year-old ESL student.
Focus: Present Simple, Daily Routines, Hobbies, Adverbs of Frequency (usually, often, never).
Examples: "I usually get up at 7 o'clock", "She doesn't play football".
Keep them simple but grammatically correct. Use vocabulary: %s.
Provide a brief explanation in Spanish for the word order of each sentence.`, strings.Join(vocab, ", "))
}

const gapFillPrompt = `Generate 5 multiple choice grammar questions for Present Simple (Affirmative/Negative/Interrogative).
Target audience: 12 year old Spanish student learning English.
Each sentence has exactly one gap written as '______' followed by the verb in brackets.
The 'explanation' field MUST be in SPANISH and explain WHY the answer is correct (e.g. 3rd person 's').`

var (
	storySchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   {Type: genai.TypeString},
			"content": {Type: genai.TypeString, Description: "A fun short story (approx 150 words) for a 12 year old ESL student."},
			"questions": {
				Type:        genai.TypeArray,
				Description: "3 reading comprehension questions based on the story.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":            {Type: genai.TypeInteger},
						"text":          {Type: genai.TypeString},
						"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"correctAnswer": {Type: genai.TypeString},
						"evidence":      {Type: genai.TypeString, Description: "The EXACT sentence or phrase from the story that provides the answer to this question. Must match the text exactly."},
					},
					Required: []string{"id", "text", "options", "correctAnswer", "evidence"},
				},
			},
		},
		Required: []string{"title", "content", "questions"},
	}

	sentencesSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sentences": {
				Type:        genai.TypeArray,
				Description: "List of 5 sentences using Present Simple and Adverbs of Frequency with explanations.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":        {Type: genai.TypeString},
						"explanation": {Type: genai.TypeString, Description: "Brief explanation in Spanish about the word order (e.g. Subject + Frequency Adverb + Verb)."},
					},
					Required: []string{"text", "explanation"},
				},
			},
		},
	}

	gapFillSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":        {Type: genai.TypeString, Description: "Sentence with a gap represented by '______' and the verb in brackets e.g. 'She ______ (play)'"},
						"answer":      {Type: genai.TypeString, Description: "The correct conjugated verb"},
						"options":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "3 options including the correct one"},
						"explanation": {Type: genai.TypeString, Description: "Grammar explanation in Spanish suitable for a 12 year old."},
					},
					Required: []string{"text", "answer", "options", "explanation"},
				},
			},
		},
	}
)
