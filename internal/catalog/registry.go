package catalog

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ffx-assist/program-finder/internal/models"
)

//go:embed config/questions.yaml
var questionsYAML embed.FS

// Registry is the questionnaire definition. Questions live in an
// embedded config file rather than the database: the question set
// changes with code (the engine knows the answer codes), while the
// program catalog changes with county policy.
type Registry struct {
	Version   string            `yaml:"version"`
	Questions []models.Question `yaml:"questions"`
}

var validQuestionTypes = map[string]bool{
	models.QuestionSingleChoice: true,
	models.QuestionMultiChoice:  true,
	models.QuestionIncomeInput:  true,
	models.QuestionNumericInput: true,
}

var validFilterFields = map[string]bool{
	"": true,
	models.FilterGeographies:      true,
	models.FilterAgeGroups:        true,
	models.FilterHousingTypes:     true,
	models.FilterNeedTypes:        true,
	models.FilterLegalStatus:      true,
	models.FilterIncomeThresholds: true,
}

// LoadRegistry parses and validates the embedded question catalog.
// Questions come back sorted by sort order.
func LoadRegistry() (*Registry, error) {
	data, err := questionsYAML.ReadFile("config/questions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded questions config: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse questions config: %w", err)
	}

	seen := make(map[string]bool)
	for _, q := range reg.Questions {
		if q.Code == "" {
			return nil, fmt.Errorf("question %d has no code", q.ID)
		}
		if seen[q.Code] {
			return nil, fmt.Errorf("duplicate question code %q", q.Code)
		}
		seen[q.Code] = true
		if !validQuestionTypes[q.QuestionType] {
			return nil, fmt.Errorf("question %q: unknown type %q", q.Code, q.QuestionType)
		}
		if !validFilterFields[q.FilterField] {
			return nil, fmt.Errorf("question %q: unknown filter field %q", q.Code, q.FilterField)
		}
	}

	sort.SliceStable(reg.Questions, func(i, j int) bool {
		return reg.Questions[i].SortOrder < reg.Questions[j].SortOrder
	})
	return &reg, nil
}
