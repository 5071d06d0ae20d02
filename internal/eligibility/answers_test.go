package eligibility

import (
	"encoding/json"
	"testing"
)

func rawAnswers(pairs map[string]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(pairs))
	for k, v := range pairs {
		out[k] = json.RawMessage(v)
	}
	return out
}

func TestParseAnswers_TypedPerQuestion(t *testing.T) {
	ans, err := ParseAnswers(testQuestions(), rawAnswers(map[string]string{
		"geography":      `"herndon"`,
		"household_size": `4`,
		"income":         `{"monthly": 2500}`,
		"need_types":     `["energy_bill","weatherization"]`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if geo, ok := ans.Geography(); !ok || geo != "herndon" {
		t.Fatalf("expected geography herndon, got %q ok=%v", geo, ok)
	}
	if size, ok := ans.HouseholdSize(); !ok || size != 4 {
		t.Fatalf("expected household size 4, got %d ok=%v", size, ok)
	}
	if monthly, ok := ans.MonthlyIncome(); !ok || monthly != 2500 {
		t.Fatalf("expected monthly income 2500, got %v ok=%v", monthly, ok)
	}
	needs, ok := ans.NeedTypes()
	if !ok || len(needs) != 2 {
		t.Fatalf("expected 2 need types, got %v ok=%v", needs, ok)
	}
}

func TestParseAnswers_NullIsExplicitSkip(t *testing.T) {
	ans, err := ParseAnswers(testQuestions(), rawAnswers(map[string]string{
		"legal_status": `null`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ans.Answered(CodeLegalStatus) {
		t.Fatal("an explicit null still counts as answered")
	}
	if _, ok := ans.LegalStatus(); ok {
		t.Fatal("a skipped legal status must not constrain")
	}
}

func TestParseAnswers_UnknownCodeRejected(t *testing.T) {
	_, err := ParseAnswers(testQuestions(), rawAnswers(map[string]string{
		"favorite_color": `"blue"`,
	}))
	if err == nil {
		t.Fatal("expected an error for an unknown question code")
	}
}

func TestParseAnswers_WrongShapeRejected(t *testing.T) {
	_, err := ParseAnswers(testQuestions(), rawAnswers(map[string]string{
		"household_size": `"four"`,
	}))
	if err == nil {
		t.Fatal("expected an error for a non-numeric household size")
	}

	_, err = ParseAnswers(testQuestions(), rawAnswers(map[string]string{
		"need_types": `"energy_bill"`,
	}))
	if err == nil {
		t.Fatal("expected an error for a bare string under a multi-choice question")
	}
}

func TestMonthlyIncome_AnnualFallback(t *testing.T) {
	ans := AnswerSet{}.With(CodeIncome, Income(nil, fptr(24000)))
	monthly, ok := ans.MonthlyIncome()
	if !ok || monthly != 2000 {
		t.Fatalf("expected 2000 from annual 24000, got %v ok=%v", monthly, ok)
	}

	// A monthly figure wins over annual.
	ans = AnswerSet{}.With(CodeIncome, Income(fptr(1500), fptr(24000)))
	monthly, ok = ans.MonthlyIncome()
	if !ok || monthly != 1500 {
		t.Fatalf("expected monthly 1500 to win, got %v ok=%v", monthly, ok)
	}
}

func TestWith_DoesNotMutateOriginal(t *testing.T) {
	base := AnswerSet{}.With(CodeGeography, Choice("vienna"))
	derived := base.With(CodeAgeGroup, Choice("senior_62_plus"))

	if base.Answered(CodeAgeGroup) {
		t.Fatal("With must copy, not mutate")
	}
	if !derived.Answered(CodeGeography) || !derived.Answered(CodeAgeGroup) {
		t.Fatal("derived set is missing answers")
	}
}
