package models

import (
	"fmt"
	"strings"
)

// GapMarker marks the blank in a gap-fill prompt
const GapMarker = "______"

// GameKind identifies a mini-game
type GameKind string

const (
	GameNone     GameKind = "NONE"
	GameMatching GameKind = "MATCHING"
	GameOrdering GameKind = "ORDERING"
	GameGapFill  GameKind = "GAPFILL"
)

// ParseGameKind accepts the canonical names plus the names used by the
// original game menu (memory, scramble).
func ParseGameKind(s string) (GameKind, error) {
	switch strings.ToUpper(s) {
	case "MATCHING", "MEMORY":
		return GameMatching, nil
	case "ORDERING", "SCRAMBLE":
		return GameOrdering, nil
	case "GAPFILL", "GAP-FILL", "GAP_FILL":
		return GameGapFill, nil
	}
	return GameNone, fmt.Errorf("unknown game %q", s)
}

// VocabularyPair is a verb phrase split into its lead word and complement
type VocabularyPair struct {
	Lead       string `json:"lead" yaml:"lead" validate:"required"`
	Complement string `json:"complement" yaml:"complement" validate:"required"`
}

// DistinctPairs drops repeated pairs, keeping the first of each
func DistinctPairs(pool []VocabularyPair) []VocabularyPair {
	seen := make(map[VocabularyPair]bool, len(pool))
	out := make([]VocabularyPair, 0, len(pool))
	for _, p := range pool {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// CardRole says which half of a vocabulary pair a card shows
type CardRole string

const (
	RoleLead       CardRole = "lead"
	RoleComplement CardRole = "complement"
)

// MatchCard is one face of the matching board
type MatchCard struct {
	ID      int      `json:"id"`
	Label   string   `json:"label"`
	PairKey int      `json:"pair_key"`
	Role    CardRole `json:"role"`
	Flipped bool     `json:"flipped"`
	Matched bool     `json:"matched"`
}

// Token is one whitespace-delimited word of a target sentence. ID is the
// token's position in the sentence, so duplicate words stay distinct.
type Token struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Tokenize splits a sentence on whitespace
func Tokenize(sentence string) []Token {
	words := strings.Fields(sentence)
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{ID: i, Text: w}
	}
	return tokens
}

// SentenceRound is the content of one ordering round
type SentenceRound struct {
	Text        string `json:"sentence" yaml:"sentence" validate:"required"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// GapFillRound is the content of one gap-fill round
type GapFillRound struct {
	Prompt        string   `json:"sentence" yaml:"sentence" validate:"required,contains=______"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer" validate:"required"`
	Options       []string `json:"options" yaml:"options" validate:"min=2,dive,required"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
}

// Parts splits the prompt around the gap
func (r GapFillRound) Parts() (before, after string) {
	before, after, _ = strings.Cut(r.Prompt, GapMarker)
	return before, after
}

// Check validates the constraints struct tags cannot express: exactly one
// gap and the correct answer among the options.
func (r GapFillRound) Check() error {
	if n := strings.Count(r.Prompt, GapMarker); n != 1 {
		return fmt.Errorf("prompt %q has %d gaps, want 1", r.Prompt, n)
	}
	if !containsString(r.Options, r.CorrectAnswer) {
		return fmt.Errorf("correct answer %q not among options", r.CorrectAnswer)
	}
	return nil
}

// HasOption reports whether option is one of the offered options
func (r GapFillRound) HasOption(option string) bool {
	return containsString(r.Options, option)
}
