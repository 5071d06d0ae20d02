package eligibility

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ffx-assist/program-finder/internal/models"
)

var testToday = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }
func bptr(b bool) *bool       { return &b }

func lv(codes ...string) []models.LookupValue {
	out := make([]models.LookupValue, 0, len(codes))
	for _, c := range codes {
		out = append(out, models.LookupValue{Code: c, Label: c})
	}
	return out
}

// testProgram returns an active program with no criteria on any axis,
// i.e. one that matches everybody.
func testProgram(slug string) models.Program {
	return models.Program{
		ID:       uuid.New(),
		Slug:     slug,
		Name:     slug,
		IsActive: true,
	}
}

func TestMatches_EmptyAnswersMatchesUnrestrictedProgram(t *testing.T) {
	p := testProgram("weatherization")
	p.Geographies = lv("fairfax_county")
	p.AgeGroups = lv("senior_62_plus")
	p.RequiresLegalStatus = bptr(true)

	if !Matches(p, AnswerSet{}, testToday) {
		t.Fatal("expected match with no answers: every axis should be unconstrained")
	}
}

func TestMatches_InactiveProgramNeverMatches(t *testing.T) {
	p := testProgram("retired-program")
	p.IsActive = false

	if Matches(p, AnswerSet{}, testToday) {
		t.Fatal("inactive program must not match")
	}
}

func TestMatches_GeographyRejectsNonListed(t *testing.T) {
	p := testProgram("county-only")
	p.Geographies = lv("fairfax_county", "herndon")

	ans := AnswerSet{}.With(CodeGeography, Choice("vienna"))
	if Matches(p, ans, testToday) {
		t.Fatal("expected rejection: vienna is not in the program's geographies")
	}

	ans = AnswerSet{}.With(CodeGeography, Choice("herndon"))
	if !Matches(p, ans, testToday) {
		t.Fatal("expected match: herndon is listed")
	}
}

func TestMatches_EmptyCriteriaSetIsNoRestriction(t *testing.T) {
	p := testProgram("anywhere")
	// Geographies deliberately empty.

	ans := AnswerSet{}.With(CodeGeography, Choice("vienna"))
	if !Matches(p, ans, testToday) {
		t.Fatal("empty geography set must mean no restriction, not exclusion")
	}
}

func incomeProgram(limit *float64, annual *float64, size int) models.Program {
	p := testProgram("income-capped")
	p.IncomeBenchmark = &models.IncomeBenchmark{Code: "ami_80", Label: "80% Area Median Income"}
	p.IncomeThresholds = []models.IncomeThreshold{
		{HouseholdSize: size, MonthlyLimit: limit, AnnualLimit: annual},
	}
	return p
}

func TestMatches_IncomeAboveLimitRejects(t *testing.T) {
	p := incomeProgram(fptr(1800), nil, 3)
	ans := AnswerSet{}.
		With(CodeHouseholdSize, Number(3)).
		With(CodeIncome, Income(fptr(2000), nil))

	if Matches(p, ans, testToday) {
		t.Fatal("expected rejection: 2000 exceeds the 1800 monthly limit")
	}
}

func TestMatches_IncomeAtLimitPasses(t *testing.T) {
	p := incomeProgram(fptr(1800), nil, 3)
	ans := AnswerSet{}.
		With(CodeHouseholdSize, Number(3)).
		With(CodeIncome, Income(fptr(1800), nil))

	if !Matches(p, ans, testToday) {
		t.Fatal("expected match: the monthly limit is inclusive")
	}
}

func TestMatches_AnnualIncomeConvertedToMonthly(t *testing.T) {
	p := incomeProgram(fptr(1800), nil, 3)
	ans := AnswerSet{}.
		With(CodeHouseholdSize, Number(3)).
		With(CodeIncome, Income(nil, fptr(21600)))

	if !Matches(p, ans, testToday) {
		t.Fatal("expected match: 21600/12 = 1800 is within the limit")
	}
}

func TestMatches_NullMonthlyLimitNeverRejects(t *testing.T) {
	// The row exists but carries no monthly cap. The annual figure on
	// the row is never consulted.
	p := incomeProgram(nil, fptr(100), 3)
	ans := AnswerSet{}.
		With(CodeHouseholdSize, Number(3)).
		With(CodeIncome, Income(fptr(50000), nil))

	if !Matches(p, ans, testToday) {
		t.Fatal("a threshold row without a monthly limit must not reject")
	}
}

func TestMatches_MissingHouseholdRowIsNoRestriction(t *testing.T) {
	p := incomeProgram(fptr(1800), nil, 3)
	ans := AnswerSet{}.
		With(CodeHouseholdSize, Number(9)).
		With(CodeIncome, Income(fptr(50000), nil))

	if !Matches(p, ans, testToday) {
		t.Fatal("no row for household size 9: income axis must not reject")
	}
}

func TestMatches_IncomeWithoutHouseholdSizeSkipsAxis(t *testing.T) {
	p := incomeProgram(fptr(1800), nil, 3)
	ans := AnswerSet{}.With(CodeIncome, Income(fptr(50000), nil))

	if !Matches(p, ans, testToday) {
		t.Fatal("income alone, without household size, must leave the axis unconstrained")
	}
}

func TestMatches_LegalStatusWithoutRejectsRequiringProgram(t *testing.T) {
	p := testProgram("federal-funded")
	p.RequiresLegalStatus = bptr(true)

	ans := AnswerSet{}.With(CodeLegalStatus, Choice(LegalStatusWithout))
	if Matches(p, ans, testToday) {
		t.Fatal("without_status must reject a program requiring legal status")
	}
}

func TestMatches_LegalStatusWithoutPassesOpenPrograms(t *testing.T) {
	ans := AnswerSet{}.With(CodeLegalStatus, Choice(LegalStatusWithout))

	open := testProgram("county-funded")
	open.RequiresLegalStatus = bptr(false)
	if !Matches(open, ans, testToday) {
		t.Fatal("explicitly open program must match")
	}

	unknown := testProgram("unspecified")
	if !Matches(unknown, ans, testToday) {
		t.Fatal("program with unspecified requirement must match")
	}
}

func TestMatches_LegalStatusSkipNeverRejects(t *testing.T) {
	p := testProgram("federal-funded")
	p.RequiresLegalStatus = bptr(true)

	ans := AnswerSet{}.With(CodeLegalStatus, Skip())
	if !Matches(p, ans, testToday) {
		t.Fatal("explicit skip must leave the legal status axis unconstrained")
	}
}

func TestMatches_HousingAnyOverlapPasses(t *testing.T) {
	p := testProgram("owner-repair")
	p.HousingTypes = lv("owner", "single_family")

	ans := AnswerSet{}.
		With(CodeOwnershipType, Choice("owner")).
		With(CodeHomeType, Choice("condo"))
	if !Matches(p, ans, testToday) {
		t.Fatal("expected match: owner overlaps even though condo does not")
	}

	ans = AnswerSet{}.
		With(CodeOwnershipType, Choice("renter")).
		With(CodeHomeType, Choice("condo"))
	if Matches(p, ans, testToday) {
		t.Fatal("expected rejection: neither selected housing code is listed")
	}
}

func TestMatches_NeedTypeAnyOverlapPasses(t *testing.T) {
	p := testProgram("energy-help")
	p.NeedTypes = lv("energy_bill", "weatherization")

	ans := AnswerSet{}.With(CodeNeedTypes, Multi("critical_repair", "energy_bill"))
	if !Matches(p, ans, testToday) {
		t.Fatal("expected match on overlapping need energy_bill")
	}

	ans = AnswerSet{}.With(CodeNeedTypes, Multi("critical_repair"))
	if Matches(p, ans, testToday) {
		t.Fatal("expected rejection: no overlap on needs")
	}
}

func TestMatchingPrograms_PreservesOrderAndNarrowsMonotonically(t *testing.T) {
	a := testProgram("a")
	a.Geographies = lv("fairfax_county")
	b := testProgram("b")
	b.Geographies = lv("vienna")
	c := testProgram("c")

	catalog := []models.Program{a, b, c}

	all := MatchingPrograms(catalog, AnswerSet{}, testToday)
	if len(all) != 3 {
		t.Fatalf("expected 3 matches with no answers, got %d", len(all))
	}

	ans := AnswerSet{}.With(CodeGeography, Choice("fairfax_county"))
	narrowed := MatchingPrograms(catalog, ans, testToday)
	if len(narrowed) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(narrowed))
	}
	if narrowed[0].Slug != "a" || narrowed[1].Slug != "c" {
		t.Fatalf("expected catalog order [a c], got [%s %s]", narrowed[0].Slug, narrowed[1].Slug)
	}

	// Adding a further answer can only shrink the set.
	ans = ans.With(CodeNeedTypes, Multi("energy_bill"))
	further := MatchingPrograms(catalog, ans, testToday)
	if len(further) > len(narrowed) {
		t.Fatalf("answer set grew the match set: %d > %d", len(further), len(narrowed))
	}
}

func TestMatches_SameInputsSameResult(t *testing.T) {
	p := testProgram("stable")
	p.Geographies = lv("fairfax_county")
	ans := AnswerSet{}.With(CodeGeography, Choice("fairfax_county"))

	first := Matches(p, ans, testToday)
	for i := 0; i < 10; i++ {
		if Matches(p, ans, testToday) != first {
			t.Fatal("evaluation is not deterministic")
		}
	}
}
