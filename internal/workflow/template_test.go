package workflow

import (
	"errors"
	"testing"

	"videogenhost/internal/domain"
)

func TestBuildSubstitutesPromptWithoutAliasing(t *testing.T) {
	tmpl, err := DefaultTemplate(SeedModeFixed)
	if err != nil {
		t.Fatalf("default template: %v", err)
	}

	first, err := tmpl.Build("a cat surfing")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := first[DefaultPromptNode].Inputs["text"]; got != "a cat surfing" {
		t.Fatalf("prompt text = %v, want %q", got, "a cat surfing")
	}

	// Mutating one payload must not leak into the next.
	first[DefaultPromptNode].Inputs["text"] = "tampered"
	first["3"].Inputs["steps"] = 999

	second, err := tmpl.Build("a dog skiing")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := second[DefaultPromptNode].Inputs["text"]; got != "a dog skiing" {
		t.Fatalf("prompt text = %v, want %q", got, "a dog skiing")
	}
	if got := second["3"].Inputs["steps"]; got != 30 {
		t.Fatalf("steps = %v, want 30", got)
	}
}

func TestBuildRejectsEmptyPrompt(t *testing.T) {
	tmpl, err := DefaultTemplate(SeedModeFixed)
	if err != nil {
		t.Fatalf("default template: %v", err)
	}
	if _, err := tmpl.Build("   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestFixedSeedIsReusedAcrossBuilds(t *testing.T) {
	tmpl, err := DefaultTemplate(SeedModeFixed)
	if err != nil {
		t.Fatalf("default template: %v", err)
	}
	first, err := tmpl.Build("one")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := tmpl.Build("two")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if first[DefaultSeedNode].Inputs["seed"] != second[DefaultSeedNode].Inputs["seed"] {
		t.Fatalf("fixed-mode seeds differ: %v vs %v",
			first[DefaultSeedNode].Inputs["seed"], second[DefaultSeedNode].Inputs["seed"])
	}
}

func TestPerJobSeedModeOverwritesSeed(t *testing.T) {
	tmpl, err := DefaultTemplate(SeedModePerJob)
	if err != nil {
		t.Fatalf("default template: %v", err)
	}
	seen := map[any]bool{}
	for i := 0; i < 16; i++ {
		g, err := tmpl.Build("prompt")
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		seen[g[DefaultSeedNode].Inputs["seed"]] = true
	}
	// 16 draws from a 2^32 space colliding into one value would mean the seed
	// is not being re-randomized.
	if len(seen) < 2 {
		t.Fatalf("per-job seed never varied across builds")
	}
}

func TestValidateRejectsDanglingReference(t *testing.T) {
	g := Graph{
		"1": {ClassType: "A", Inputs: map[string]any{"in": []any{"99", 0}}},
	}
	if err := g.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestValidateRejectsMissingClassType(t *testing.T) {
	g := Graph{
		"1": {ClassType: " ", Inputs: map[string]any{}},
	}
	if err := g.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestValidateAcceptsDecodedJSONReferences(t *testing.T) {
	// References decoded from JSON carry float64 output indices.
	g := Graph{
		"1": {ClassType: "A", Inputs: map[string]any{"in": []any{"2", float64(0)}}},
		"2": {ClassType: "B", Inputs: map[string]any{}},
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNewTemplateRejectsUnknownPromptNode(t *testing.T) {
	g := Graph{"1": {ClassType: "A", Inputs: map[string]any{"seed": 0}}}
	if _, err := NewTemplate(g, "missing", "1", SeedModeFixed); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
