package catalog

import (
	"testing"
)

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("failed to load embedded registry: %v", err)
	}
	if reg.Version == "" {
		t.Fatal("registry has no version")
	}
	if len(reg.Questions) == 0 {
		t.Fatal("registry has no questions")
	}
}

func TestLoadRegistry_QuestionsSortedAndUnique(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("failed to load embedded registry: %v", err)
	}

	seen := make(map[string]bool)
	for i, q := range reg.Questions {
		if seen[q.Code] {
			t.Fatalf("duplicate question code %q", q.Code)
		}
		seen[q.Code] = true
		if i > 0 && reg.Questions[i-1].SortOrder > q.SortOrder {
			t.Fatalf("questions out of order at %q", q.Code)
		}
	}
}

func TestLoadRegistry_ChoiceQuestionsHaveOptions(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("failed to load embedded registry: %v", err)
	}

	for _, q := range reg.Questions {
		switch q.QuestionType {
		case "single_choice", "multi_choice":
			if len(q.Options) == 0 {
				t.Fatalf("question %q has no options", q.Code)
			}
		}
	}
}
