package reading

import (
	"strings"

	"englishexplorer/internal/models"
)

// Highlight splits content so each evidence string becomes its own
// highlighted segment. Evidence is applied in order to the plain segments
// left by the previous ones; evidence that does not occur changes nothing.
func Highlight(content string, evidence []string) []models.Segment {
	segments := []models.Segment{{Text: content}}

	for _, e := range evidence {
		if e == "" {
			continue
		}
		next := make([]models.Segment, 0, len(segments))
		for _, seg := range segments {
			if seg.Highlighted {
				next = append(next, seg)
				continue
			}
			parts := strings.Split(seg.Text, e)
			for i, part := range parts {
				if part != "" {
					next = append(next, models.Segment{Text: part})
				}
				if i < len(parts)-1 {
					next = append(next, models.Segment{Text: e, Highlighted: true})
				}
			}
		}
		segments = next
	}
	return segments
}

// missedEvidence collects the evidence of every wrongly answered question
func missedEvidence(story *models.StoryQuiz, answers map[int]string) []string {
	var out []string
	for _, q := range story.Questions {
		if answers[q.ID] != q.CorrectOption && q.Evidence != "" {
			out = append(out, q.Evidence)
		}
	}
	return out
}
