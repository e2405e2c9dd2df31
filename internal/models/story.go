package models

// StoryQuiz is a generated reading passage with its comprehension questions
type StoryQuiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	Questions []Question `json:"questions" validate:"min=1,dive"`
}

// Question is a multiple-choice comprehension question. Evidence, when set,
// is the passage fragment that answers it.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectOption string   `json:"correct_answer" validate:"required"`
	Evidence      string   `json:"evidence,omitempty"`
}

// HasOption reports whether option is one of the offered options
func (q Question) HasOption(option string) bool {
	return containsString(q.Options, option)
}

// QuestionByID finds a question by id
func (s *StoryQuiz) QuestionByID(id int) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Segment is a piece of the reading passage, optionally highlighted as
// evidence for a missed question.
type Segment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
