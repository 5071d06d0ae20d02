package eligibility

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/ffx-assist/program-finder/internal/models"
)

func TestExplain_CoversAnsweredAxes(t *testing.T) {
	p := testProgram("weatherization")
	p.Geographies = []models.LookupValue{{Code: "fairfax_county", Label: "Fairfax County"}}
	p.IncomeBenchmark = &models.IncomeBenchmark{Code: "ami_80", Label: "80% Area Median Income"}
	p.IncomeThresholds = []models.IncomeThreshold{
		{HouseholdSize: 3, MonthlyLimit: fptr(5400)},
	}

	ans := AnswerSet{}.
		With(CodeGeography, Choice("fairfax_county")).
		With(CodeHouseholdSize, Number(3)).
		With(CodeIncome, Income(fptr(2000), nil))

	reasons := NewExplainer(language.AmericanEnglish).Explain(p, ans, testToday)
	joined := strings.Join(reasons, "\n")

	if !strings.Contains(joined, "Fairfax County") {
		t.Fatalf("expected geography label in reasons, got:\n%s", joined)
	}
	if !strings.Contains(joined, "80% Area Median Income") {
		t.Fatalf("expected benchmark label in reasons, got:\n%s", joined)
	}
	if !strings.Contains(joined, "household of 3") {
		t.Fatalf("expected household size in reasons, got:\n%s", joined)
	}
	if !strings.Contains(joined, "open year-round") {
		t.Fatalf("expected availability reason, got:\n%s", joined)
	}
}

func TestExplain_SkippedAxesAreSilent(t *testing.T) {
	p := testProgram("quiet")
	p.Geographies = []models.LookupValue{{Code: "vienna", Label: "Town of Vienna"}}

	reasons := NewExplainer(language.AmericanEnglish).Explain(p, AnswerSet{}, testToday)
	for _, r := range reasons {
		if strings.HasPrefix(r, "Geography:") {
			t.Fatalf("unanswered geography must produce no reason, got %q", r)
		}
	}
}

func TestExplain_LegalStatusOnlyForOpenPrograms(t *testing.T) {
	ans := AnswerSet{}.With(CodeLegalStatus, Choice("with_status"))

	open := testProgram("open")
	open.RequiresLegalStatus = bptr(false)
	reasons := NewExplainer(language.AmericanEnglish).Explain(open, ans, testToday)
	found := false
	for _, r := range reasons {
		if strings.Contains(r, "regardless of immigration status") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the open-regardless reason for an explicitly open program")
	}

	requiring := testProgram("requiring")
	requiring.RequiresLegalStatus = bptr(true)
	reasons = NewExplainer(language.AmericanEnglish).Explain(requiring, ans, testToday)
	for _, r := range reasons {
		if strings.Contains(r, "regardless of immigration status") {
			t.Fatal("a requiring program must not claim to be open regardless of status")
		}
	}
}
