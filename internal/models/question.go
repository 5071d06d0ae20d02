package models

// Question types determine the shape of the value stored under the
// question's code in an answer set.
const (
	QuestionSingleChoice = "single_choice"
	QuestionMultiChoice  = "multi_choice"
	QuestionIncomeInput  = "income_input"
	QuestionNumericInput = "numeric_input"
)

// Filter fields name the Program attribute a question's answer
// restricts. They drive the discriminating-power computation.
const (
	FilterGeographies      = "geographies"
	FilterAgeGroups        = "age_groups"
	FilterHousingTypes     = "housing_types"
	FilterNeedTypes        = "need_types"
	FilterLegalStatus      = "legal_status"
	FilterIncomeThresholds = "income_thresholds"
)

type QuestionOption struct {
	ID        int    `json:"id" yaml:"id"`
	Code      string `json:"code" yaml:"code"`
	I18nKey   string `json:"i18n_key" yaml:"i18n_key"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// Question is one item of the adaptive questionnaire. Display text is
// carried as i18n keys; the client resolves them per locale.
type Question struct {
	ID           int              `json:"id" yaml:"id"`
	Code         string           `json:"code" yaml:"code"`
	QuestionType string           `json:"question_type" yaml:"question_type"`
	IsSkippable  bool             `json:"is_skippable" yaml:"is_skippable"`
	SortOrder    int              `json:"sort_order" yaml:"sort_order"`
	I18nKey      string           `json:"i18n_key" yaml:"i18n_key"`
	FilterField  string           `json:"filter_field,omitempty" yaml:"filter_field"`
	Options      []QuestionOption `json:"options" yaml:"options"`
}
