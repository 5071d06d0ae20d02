package eligibility

import (
	"testing"

	"github.com/ffx-assist/program-finder/internal/models"
)

func question(code, qtype, filter string, order int) models.Question {
	return models.Question{Code: code, QuestionType: qtype, FilterField: filter, SortOrder: order}
}

func testQuestions() []models.Question {
	return []models.Question{
		question(CodeGeography, models.QuestionSingleChoice, models.FilterGeographies, 1),
		question(CodeHouseholdSize, models.QuestionNumericInput, models.FilterIncomeThresholds, 2),
		question(CodeIncome, models.QuestionIncomeInput, models.FilterIncomeThresholds, 3),
		question(CodeAgeGroup, models.QuestionSingleChoice, models.FilterAgeGroups, 4),
		question(CodeLegalStatus, models.QuestionSingleChoice, models.FilterLegalStatus, 5),
		question(CodeNeedTypes, models.QuestionMultiChoice, models.FilterNeedTypes, 6),
	}
}

func TestHasDiscriminatingPower_NoCandidates(t *testing.T) {
	q := question(CodeGeography, models.QuestionSingleChoice, models.FilterGeographies, 1)
	if HasDiscriminatingPower(q, nil) {
		t.Fatal("nothing discriminates over an empty candidate set")
	}
}

func TestHasDiscriminatingPower_GeographyIdenticalSets(t *testing.T) {
	a := testProgram("a")
	a.Geographies = lv("fairfax_county", "herndon")
	b := testProgram("b")
	b.Geographies = lv("herndon", "fairfax_county")

	q := question(CodeGeography, models.QuestionSingleChoice, models.FilterGeographies, 1)
	if HasDiscriminatingPower(q, []models.Program{a, b}) {
		t.Fatal("identical geography sets (order aside) cannot be discriminated")
	}
}

func TestHasDiscriminatingPower_GeographyDifferingSets(t *testing.T) {
	a := testProgram("a")
	a.Geographies = lv("fairfax_county")
	b := testProgram("b")
	b.Geographies = lv("vienna")

	q := question(CodeGeography, models.QuestionSingleChoice, models.FilterGeographies, 1)
	if !HasDiscriminatingPower(q, []models.Program{a, b}) {
		t.Fatal("differing geography sets must keep the question active")
	}
}

func TestHasDiscriminatingPower_AgeGroupFullCatalogEverywhere(t *testing.T) {
	full := lv("under_18", "adult_18_54", "adult_55_61", "senior_62_plus", "disabled_any_age")
	a := testProgram("a")
	a.AgeGroups = full
	b := testProgram("b")
	b.AgeGroups = full

	q := question(CodeAgeGroup, models.QuestionSingleChoice, models.FilterAgeGroups, 4)
	if HasDiscriminatingPower(q, []models.Program{a, b}) {
		t.Fatal("when every candidate accepts every age group the question is moot")
	}
}

func TestHasDiscriminatingPower_AgeGroupRestrictedCandidate(t *testing.T) {
	a := testProgram("a")
	a.AgeGroups = lv("senior_62_plus")

	q := question(CodeAgeGroup, models.QuestionSingleChoice, models.FilterAgeGroups, 4)
	if !HasDiscriminatingPower(q, []models.Program{a}) {
		t.Fatal("a restricted candidate keeps the age question active")
	}
}

func TestHasDiscriminatingPower_LegalStatusOnlyWhenSomeoneRequires(t *testing.T) {
	open := testProgram("open")
	open.RequiresLegalStatus = bptr(false)
	unspecified := testProgram("unspecified")

	q := question(CodeLegalStatus, models.QuestionSingleChoice, models.FilterLegalStatus, 5)
	if HasDiscriminatingPower(q, []models.Program{open, unspecified}) {
		t.Fatal("no candidate requires legal status: question is moot")
	}

	requiring := testProgram("requiring")
	requiring.RequiresLegalStatus = bptr(true)
	if !HasDiscriminatingPower(q, []models.Program{open, requiring}) {
		t.Fatal("a requiring candidate keeps the question active")
	}
}

func TestHasDiscriminatingPower_IncomeAlwaysActive(t *testing.T) {
	q := question(CodeIncome, models.QuestionIncomeInput, models.FilterIncomeThresholds, 3)
	if !HasDiscriminatingPower(q, []models.Program{testProgram("a")}) {
		t.Fatal("income questions stay active while candidates remain")
	}
}

func TestActiveQuestions_AnsweredQuestionsAlwaysRetained(t *testing.T) {
	// One candidate, unrestricted geography: the geography question
	// would normally drop out, but it was already answered.
	a := testProgram("a")
	candidates := []models.Program{a}
	ans := AnswerSet{}.With(CodeGeography, Choice("vienna"))

	active := ActiveQuestions(testQuestions(), ans, candidates)
	found := false
	for _, q := range active {
		if q.Code == CodeGeography {
			found = true
		}
	}
	if !found {
		t.Fatal("answered question must stay in the active list for back-navigation")
	}
}

func TestActiveQuestions_SortedBySortOrder(t *testing.T) {
	qs := testQuestions()
	// Shuffle the input order.
	qs[0], qs[3] = qs[3], qs[0]

	a := testProgram("a")
	a.Geographies = lv("fairfax_county")
	a.AgeGroups = lv("senior_62_plus")
	a.RequiresLegalStatus = bptr(true)
	a.NeedTypes = lv("energy_bill")
	b := testProgram("b")
	b.Geographies = lv("vienna")
	b.NeedTypes = lv("weatherization")

	active := ActiveQuestions(qs, AnswerSet{}, []models.Program{a, b})
	for i := 1; i < len(active); i++ {
		if active[i-1].SortOrder > active[i].SortOrder {
			t.Fatalf("active list out of order at %d: %d > %d", i, active[i-1].SortOrder, active[i].SortOrder)
		}
	}
}

func TestNextQuestion_SkipsMootQuestions(t *testing.T) {
	// Both candidates share one geography set, so geography is moot and
	// the first question offered is household size.
	a := testProgram("a")
	a.Geographies = lv("fairfax_county")
	b := testProgram("b")
	b.Geographies = lv("fairfax_county")

	q, ok := NextQuestion(testQuestions(), AnswerSet{}, []models.Program{a, b})
	if !ok {
		t.Fatal("expected a next question")
	}
	if q.Code == CodeGeography {
		t.Fatal("geography cannot discriminate identical candidates")
	}
	if q.Code != CodeHouseholdSize {
		t.Fatalf("expected household_size next, got %s", q.Code)
	}
}

func TestNextQuestion_ExhaustedWhenAllAnswered(t *testing.T) {
	ans := AnswerSet{}
	for _, q := range testQuestions() {
		ans = ans.With(q.Code, Skip())
	}

	if _, ok := NextQuestion(testQuestions(), ans, []models.Program{testProgram("a")}); ok {
		t.Fatal("expected questionnaire to be exhausted")
	}
}
