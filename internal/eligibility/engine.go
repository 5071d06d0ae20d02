package eligibility

import (
	"time"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Matches reports whether a program is still eligible given a partial
// answer set. Every axis only ever rejects: an unanswered question
// leaves its axis unconstrained, so adding answers can only narrow the
// result. Pure — no I/O, inputs never mutated.
func Matches(p models.Program, ans AnswerSet, today time.Time) bool {
	// Inactive programs are filtered upstream, but never trust that.
	if !p.IsActive {
		return false
	}
	return geographyOK(p, ans) &&
		incomeOK(p, ans) &&
		ageGroupOK(p, ans) &&
		legalStatusOK(p, ans) &&
		housingOK(p, ans) &&
		needTypeOK(p, ans) &&
		InSeason(p.SeasonalWindows, today)
}

// MatchingPrograms filters a catalog snapshot against the answer set,
// preserving catalog order.
func MatchingPrograms(programs []models.Program, ans AnswerSet, today time.Time) []models.Program {
	matched := make([]models.Program, 0, len(programs))
	for _, p := range programs {
		if Matches(p, ans, today) {
			matched = append(matched, p)
		}
	}
	return matched
}

func geographyOK(p models.Program, ans AnswerSet) bool {
	geo, ok := ans.Geography()
	if !ok {
		return true
	}
	// An empty criteria set means the axis is not mentioned, not that
	// the program excludes everyone.
	if len(p.Geographies) == 0 {
		return true
	}
	return hasCode(p.Geographies, geo)
}

// incomeOK applies the benchmark threshold row for the resident's exact
// household size. Only the monthly limit is compared; an annual answer
// is converted to monthly first. A row with a null monthly limit does
// not reject even when an annual limit exists — that row simply carries
// no enforceable cap here.
func incomeOK(p models.Program, ans AnswerSet) bool {
	size, ok := ans.HouseholdSize()
	if !ok {
		return true
	}
	monthly, ok := ans.MonthlyIncome()
	if !ok {
		return true
	}
	if p.IncomeBenchmark == nil || len(p.IncomeThresholds) == 0 {
		return true
	}

	for _, row := range p.IncomeThresholds {
		if row.HouseholdSize != size {
			continue
		}
		if row.MonthlyLimit != nil && monthly > *row.MonthlyLimit {
			return false
		}
		break
	}
	// No row for this household size: no restriction applies.
	return true
}

func ageGroupOK(p models.Program, ans AnswerSet) bool {
	age, ok := ans.AgeGroup()
	if !ok {
		return true
	}
	if len(p.AgeGroups) == 0 {
		return true
	}
	return hasCode(p.AgeGroups, age)
}

func legalStatusOK(p models.Program, ans AnswerSet) bool {
	status, ok := ans.LegalStatus()
	if !ok {
		return true
	}
	if status == LegalStatusWithout && p.RequiresLegalStatus != nil && *p.RequiresLegalStatus {
		return false
	}
	return true
}

func housingOK(p models.Program, ans AnswerSet) bool {
	selected := ans.HousingCodes()
	if len(selected) == 0 || len(p.HousingTypes) == 0 {
		return true
	}
	for _, code := range selected {
		if hasCode(p.HousingTypes, code) {
			return true
		}
	}
	return false
}

func needTypeOK(p models.Program, ans AnswerSet) bool {
	needs, ok := ans.NeedTypes()
	if !ok {
		return true
	}
	if len(p.NeedTypes) == 0 {
		return true
	}
	for _, code := range needs {
		if hasCode(p.NeedTypes, code) {
			return true
		}
	}
	return false
}

func hasCode(values []models.LookupValue, code string) bool {
	for _, v := range values {
		if v.Code == code {
			return true
		}
	}
	return false
}
