package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rautpranav13/IBMaarogyam/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Single.MaxTokens != 200 || p.Batch.MaxTokens != 1000 {
		t.Errorf("max tokens = %d/%d, want 200/1000", p.Single.MaxTokens, p.Batch.MaxTokens)
	}
	if !p.Single.ValidateWrapper || p.Batch.ValidateWrapper {
		t.Error("only the single set validates the <body> wrapper")
	}
	if !strings.HasSuffix(p.Single.Preamble, "mobile app display. ") {
		t.Errorf("single preamble must end with a separating space: %q", p.Single.Preamble)
	}
	if strings.Contains(p.Single.Preamble, "\n") {
		t.Errorf("single preamble must be folded into one line: %q", p.Single.Preamble)
	}

	got := p.Batch.Prompt(domain.QueryInsights)
	want := "You are a helpful assistant. Dont add extra symbols. Please answer the following in 1-2 sentences: " +
		"Provide insights for the given image in simple language."
	if got != want {
		t.Errorf("batch insights prompt = %q, want %q", got, want)
	}
}

func TestLoadOverrideKeepsOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	body := "batch:\n  max_tokens: 300\n  insights: Describe the image.\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Batch.MaxTokens != 300 {
		t.Errorf("Batch.MaxTokens = %d, want 300", p.Batch.MaxTokens)
	}
	if p.Batch.Insights != "Describe the image." {
		t.Errorf("Batch.Insights = %q", p.Batch.Insights)
	}
	if !strings.HasPrefix(p.Batch.DrugSchedule, "Extract the drug schedule") {
		t.Errorf("Batch.DrugSchedule lost its default: %q", p.Batch.DrugSchedule)
	}
	if p.Single.MaxTokens != 200 {
		t.Errorf("Single.MaxTokens = %d, want untouched 200", p.Single.MaxTokens)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml")},
		{name: "broken yaml", path: write("broken.yaml", "single: [unclosed")},
		{name: "zero max tokens", path: write("zero.yaml", "single:\n  max_tokens: 0\n")},
		{name: "empty query", path: write("empty.yaml", "batch:\n  drug_schedule: \"  \"\n")},
		{name: "wrapper without tags", path: write("wrap.yaml", "batch:\n  validate_wrapper: true\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); err == nil {
				t.Errorf("Load(%s) error = nil", tt.path)
			}
		})
	}
}
