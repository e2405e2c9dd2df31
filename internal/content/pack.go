package content

import (
	_ "embed"
	"fmt"
	"os"

	"englishexplorer/internal/game"
	"englishexplorer/internal/models"
	"englishexplorer/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed pack.yaml
var builtinPack []byte

// Pack is the built-in content: the matching vocabulary, fallback rounds
// for the generated games and the material prompts draw from.
type Pack struct {
	Vocabulary       []models.VocabularyPair `yaml:"vocabulary" validate:"dive"`
	Sentences        []models.SentenceRound  `yaml:"sentences" validate:"min=1,dive"`
	GapFill          []models.GapFillRound   `yaml:"gapfill" validate:"min=1,dive"`
	TargetVocabulary []string                `yaml:"target_vocabulary" validate:"min=1,dive,required"`
	Protagonists     []string                `yaml:"protagonists" validate:"min=1,dive,required"`
	Scenarios        []string                `yaml:"scenarios" validate:"min=1,dive,required"`
}

// DefaultPack parses the embedded pack
func DefaultPack() (*Pack, error) {
	return ParsePack(builtinPack)
}

// LoadPack reads a pack from path, or the embedded one when path is empty
func LoadPack(path string) (*Pack, error) {
	if path == "" {
		return DefaultPack()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content pack %s: %w", path, err)
	}
	return ParsePack(data)
}

// ParsePack decodes and validates a YAML pack
func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse content pack: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content pack: %w", err)
	}
	return &p, nil
}

// Validate checks the pack can serve every game
func (p *Pack) Validate() error {
	if n := len(models.DistinctPairs(p.Vocabulary)); n < game.MatchingPairs {
		return fmt.Errorf("vocabulary has %d distinct pairs, the matching board needs %d", n, game.MatchingPairs)
	}
	if err := validation.Struct(p); err != nil {
		return err
	}
	for i, r := range p.GapFill {
		if err := r.Check(); err != nil {
			return fmt.Errorf("gapfill[%d]: %w", i, err)
		}
	}
	return nil
}

// FallbackSentences returns a copy of the built-in ordering rounds
func (p *Pack) FallbackSentences() []models.SentenceRound {
	return append([]models.SentenceRound(nil), p.Sentences...)
}

// FallbackGapFill returns a copy of the built-in gap-fill rounds
func (p *Pack) FallbackGapFill() []models.GapFillRound {
	return append([]models.GapFillRound(nil), p.GapFill...)
}
