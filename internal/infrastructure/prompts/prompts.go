// Package prompts loads the prompt sets used by the single and batch endpoints.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Prompts is the pair of prompt sets served by the HTTP API.
type Prompts struct {
	Single *domain.PromptSet
	Batch  *domain.PromptSet
}

type fileModel struct {
	Single setModel `yaml:"single"`
	Batch  setModel `yaml:"batch"`
}

type setModel struct {
	Preamble        string `yaml:"preamble"`
	Insights        string `yaml:"insights"`
	DrugSchedule    string `yaml:"drug_schedule"`
	MaxTokens       int    `yaml:"max_tokens"`
	TrimOutput      bool   `yaml:"trim_output"`
	ValidateWrapper bool   `yaml:"validate_wrapper"`
	WrapperOpen     string `yaml:"wrapper_open"`
	WrapperClose    string `yaml:"wrapper_close"`
	Fallback        string `yaml:"fallback"`
}

// Load returns the built-in prompts, overridden field by field with the YAML file at path if it is set.
func Load(path string) (*Prompts, error) {
	var m fileModel
	if err := yaml.Unmarshal(defaultsYAML, &m); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		// Decoding into the already populated model keeps every field the file omits.
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, e.Wrap(fmt.Sprintf("prompts file %s", path), err)
		}
	}

	if err := m.Single.validate("single"); err != nil {
		return nil, err
	}
	if err := m.Batch.validate("batch"); err != nil {
		return nil, err
	}

	return &Prompts{
		Single: m.Single.toDomain(),
		Batch:  m.Batch.toDomain(),
	}, nil
}

func (s setModel) validate(name string) error {
	switch {
	case strings.TrimSpace(s.Insights) == "":
		return fmt.Errorf("prompt set %q: insights prompt is empty", name)
	case strings.TrimSpace(s.DrugSchedule) == "":
		return fmt.Errorf("prompt set %q: drug_schedule prompt is empty", name)
	case s.MaxTokens <= 0:
		return fmt.Errorf("prompt set %q: max_tokens must be positive", name)
	case s.ValidateWrapper && (s.WrapperOpen == "" || s.WrapperClose == ""):
		return fmt.Errorf("prompt set %q: wrapper_open and wrapper_close are required when validate_wrapper is set", name)
	}
	return nil
}

func (s setModel) toDomain() *domain.PromptSet {
	return &domain.PromptSet{
		Preamble:        s.Preamble,
		Insights:        s.Insights,
		DrugSchedule:    s.DrugSchedule,
		MaxTokens:       s.MaxTokens,
		TrimOutput:      s.TrimOutput,
		ValidateWrapper: s.ValidateWrapper,
		WrapperOpen:     s.WrapperOpen,
		WrapperClose:    s.WrapperClose,
		Fallback:        s.Fallback,
	}
}
