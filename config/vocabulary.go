package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/argentech/argentech-backend/internal/projects/domain"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

type vocabularyFile struct {
	Provinces  []string `yaml:"provinces"`
	Industries []string `yaml:"industries"`
}

// LoadVocabulary reads the province and industry lists from path, or from the
// embedded default when path is empty.
func LoadVocabulary(path string) (*domain.Vocabulary, error) {
	raw := defaultVocabulary
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read vocabulary: %w", err)
		}
		raw = b
	}
	return ParseVocabulary(raw)
}

func ParseVocabulary(raw []byte) (*domain.Vocabulary, error) {
	var f vocabularyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(f.Provinces) == 0 {
		return nil, fmt.Errorf("vocabulary has no provinces")
	}
	if len(f.Industries) == 0 {
		return nil, fmt.Errorf("vocabulary has no industries")
	}
	return domain.NewVocabulary(f.Provinces, f.Industries), nil
}
