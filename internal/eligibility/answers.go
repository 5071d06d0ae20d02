package eligibility

import (
	"encoding/json"
	"fmt"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Well-known answer codes. These match the question registry; the
// engine's axis checks key off them directly.
const (
	CodeGeography     = "geography"
	CodeHouseholdSize = "household_size"
	CodeIncome        = "income"
	CodeAgeGroup      = "age_group"
	CodeLegalStatus   = "legal_status"
	CodeOwnershipType = "ownership_type"
	CodeHomeType      = "home_type"
	CodeNeedTypes     = "need_types"
)

// LegalStatusWithout is the one legal-status answer that can reject a
// program (when the program requires legal status).
const LegalStatusWithout = "without_status"

type valueKind int

const (
	kindChoice valueKind = iota
	kindMulti
	kindNumber
	kindIncome
	kindSkip
)

// Value is the typed form of a single answer. Its shape is fixed by
// the question type: a choice code, a set of choice codes, a number,
// or a monthly/annual income pair. An explicit skip is recorded as its
// own kind so "answered with null" stays distinct from "not answered".
type Value struct {
	kind    valueKind
	choice  string
	choices []string
	number  float64
	monthly *float64
	annual  *float64
}

func Choice(code string) Value { return Value{kind: kindChoice, choice: code} }

func Multi(codes ...string) Value {
	return Value{kind: kindMulti, choices: append([]string(nil), codes...)}
}

func Number(n float64) Value { return Value{kind: kindNumber, number: n} }

// Income builds an income answer. Either figure may be nil; the engine
// uses the monthly figure when present, otherwise annual/12.
func Income(monthly, annual *float64) Value {
	return Value{kind: kindIncome, monthly: monthly, annual: annual}
}

// Skip records an explicit "prefer not to answer".
func Skip() Value { return Value{kind: kindSkip} }

// AnswerSet maps question codes to typed answers. A key's presence
// means the question was answered (possibly with an explicit skip);
// absence means unanswered. It is passed by value through the engine
// and never mutated by it.
type AnswerSet map[string]Value

// Answered reports whether the question was answered at all, including
// an explicit skip.
func (a AnswerSet) Answered(code string) bool {
	_, ok := a[code]
	return ok
}

// With returns a copy of the set with one answer added or replaced.
func (a AnswerSet) With(code string, v Value) AnswerSet {
	out := make(AnswerSet, len(a)+1)
	for k, val := range a {
		out[k] = val
	}
	out[code] = v
	return out
}

func (a AnswerSet) choiceAt(code string) (string, bool) {
	v, ok := a[code]
	if !ok || v.kind != kindChoice || v.choice == "" {
		return "", false
	}
	return v.choice, true
}

func (a AnswerSet) Geography() (string, bool) { return a.choiceAt(CodeGeography) }

func (a AnswerSet) AgeGroup() (string, bool) { return a.choiceAt(CodeAgeGroup) }

func (a AnswerSet) OwnershipType() (string, bool) { return a.choiceAt(CodeOwnershipType) }

func (a AnswerSet) HomeType() (string, bool) { return a.choiceAt(CodeHomeType) }

// LegalStatus returns the answered status code. ok is false when the
// question was unanswered or explicitly skipped; both mean the legal
// status axis does not constrain.
func (a AnswerSet) LegalStatus() (string, bool) {
	v, ok := a[CodeLegalStatus]
	if !ok || v.kind == kindSkip || (v.kind == kindChoice && v.choice == "") {
		return "", false
	}
	if v.kind != kindChoice {
		return "", false
	}
	return v.choice, true
}

func (a AnswerSet) HouseholdSize() (int, bool) {
	v, ok := a[CodeHouseholdSize]
	if !ok || v.kind != kindNumber {
		return 0, false
	}
	return int(v.number), true
}

// MonthlyIncome returns the resident's monthly income figure, deriving
// it from the annual figure when only that was given.
func (a AnswerSet) MonthlyIncome() (float64, bool) {
	v, ok := a[CodeIncome]
	if !ok || v.kind != kindIncome {
		return 0, false
	}
	if v.monthly != nil {
		return *v.monthly, true
	}
	if v.annual != nil {
		return *v.annual / 12, true
	}
	return 0, false
}

// HousingCodes collects the answered ownership and home type codes.
// Both map onto the same program axis.
func (a AnswerSet) HousingCodes() []string {
	var codes []string
	if c, ok := a.OwnershipType(); ok {
		codes = append(codes, c)
	}
	if c, ok := a.HomeType(); ok {
		codes = append(codes, c)
	}
	return codes
}

func (a AnswerSet) NeedTypes() ([]string, bool) {
	v, ok := a[CodeNeedTypes]
	if !ok || v.kind != kindMulti || len(v.choices) == 0 {
		return nil, false
	}
	return v.choices, true
}

// incomePayload is the wire shape for income_input answers.
type incomePayload struct {
	Monthly *float64 `json:"monthly"`
	Annual  *float64 `json:"annual"`
}

// ParseAnswers converts a raw answers object into a typed AnswerSet,
// validating each value against the question it answers. Unknown codes
// are rejected; a JSON null under any code is an explicit skip. This is
// the single point where untyped input becomes typed state.
func ParseAnswers(questions []models.Question, raw map[string]json.RawMessage) (AnswerSet, error) {
	byCode := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byCode[q.Code] = q
	}

	ans := make(AnswerSet, len(raw))
	for code, msg := range raw {
		q, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("unknown question code %q", code)
		}
		if string(msg) == "null" {
			ans[code] = Skip()
			continue
		}

		switch q.QuestionType {
		case models.QuestionSingleChoice:
			var choice string
			if err := json.Unmarshal(msg, &choice); err != nil {
				return nil, fmt.Errorf("answer %q: expected string: %w", code, err)
			}
			ans[code] = Choice(choice)
		case models.QuestionMultiChoice:
			var choices []string
			if err := json.Unmarshal(msg, &choices); err != nil {
				return nil, fmt.Errorf("answer %q: expected string array: %w", code, err)
			}
			ans[code] = Multi(choices...)
		case models.QuestionNumericInput:
			var n float64
			if err := json.Unmarshal(msg, &n); err != nil {
				return nil, fmt.Errorf("answer %q: expected number: %w", code, err)
			}
			ans[code] = Number(n)
		case models.QuestionIncomeInput:
			var p incomePayload
			if err := json.Unmarshal(msg, &p); err != nil {
				return nil, fmt.Errorf("answer %q: expected {monthly, annual}: %w", code, err)
			}
			ans[code] = Income(p.Monthly, p.Annual)
		default:
			return nil, fmt.Errorf("question %q has unsupported type %q", code, q.QuestionType)
		}
	}
	return ans, nil
}
