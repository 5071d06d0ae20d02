package eligibility

import (
	"sort"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Total counts of defined codes in the catalog. A program listing every
// code on an axis is effectively unrestricted there, so questions about
// that axis stop mattering once all candidates hit the full count.
const (
	ageGroupCatalogSize    = 5
	housingTypeCatalogSize = 7
)

// ActiveQuestions returns the subset of questions still worth asking,
// ordered by sort order. A question stays in the list if it was already
// answered (back-navigation must keep working) or if answering it could
// still change the candidate set.
func ActiveQuestions(all []models.Question, ans AnswerSet, candidates []models.Program) []models.Question {
	if len(all) == 0 {
		return nil
	}

	ordered := make([]models.Question, len(all))
	copy(ordered, all)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	var active []models.Question
	for _, q := range ordered {
		if ans.Answered(q.Code) {
			active = append(active, q)
			continue
		}
		if HasDiscriminatingPower(q, candidates) {
			active = append(active, q)
		}
	}
	return active
}

// HasDiscriminatingPower reports whether asking the question could
// still change the current candidate set. With no candidates left,
// nothing discriminates.
func HasDiscriminatingPower(q models.Question, candidates []models.Program) bool {
	if len(candidates) == 0 {
		return false
	}
	field := q.FilterField
	if field == "" {
		// income_input / numeric_input and free-form questions.
		return true
	}

	switch field {
	case models.FilterIncomeThresholds:
		return true

	case models.FilterGeographies:
		first := candidates[0].Geographies
		for _, p := range candidates[1:] {
			if !sameCodeSet(p.Geographies, first) {
				return true
			}
		}
		return false

	case models.FilterAgeGroups:
		return spreadOrRestricted(candidates, func(p models.Program) []models.LookupValue {
			return p.AgeGroups
		}, ageGroupCatalogSize)

	case models.FilterHousingTypes:
		return spreadOrRestricted(candidates, func(p models.Program) []models.LookupValue {
			return p.HousingTypes
		}, housingTypeCatalogSize)

	case models.FilterLegalStatus:
		for _, p := range candidates {
			if p.RequiresLegalStatus != nil && *p.RequiresLegalStatus {
				return true
			}
		}
		return false

	case models.FilterNeedTypes:
		return distinctCodes(candidates, func(p models.Program) []models.LookupValue {
			return p.NeedTypes
		}) > 1

	default:
		return true
	}
}

// spreadOrRestricted: the axis still matters if candidates disagree on
// codes, or if any candidate lists fewer than the full catalog (i.e.
// is actually restricted on the axis).
func spreadOrRestricted(candidates []models.Program, get func(models.Program) []models.LookupValue, catalogSize int) bool {
	if distinctCodes(candidates, get) > 1 {
		return true
	}
	for _, p := range candidates {
		if len(get(p)) < catalogSize {
			return true
		}
	}
	return false
}

func distinctCodes(candidates []models.Program, get func(models.Program) []models.LookupValue) int {
	seen := make(map[string]struct{})
	for _, p := range candidates {
		for _, v := range get(p) {
			seen[v.Code] = struct{}{}
		}
	}
	return len(seen)
}

// sameCodeSet compares two criteria sets by code, ignoring order.
func sameCodeSet(a, b []models.LookupValue) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !hasCode(b, v.Code) {
			return false
		}
	}
	return true
}

// NextQuestion returns the first active question not yet answered, or
// ok=false when the questionnaire is exhausted.
func NextQuestion(all []models.Question, ans AnswerSet, candidates []models.Program) (models.Question, bool) {
	for _, q := range ActiveQuestions(all, ans, candidates) {
		if !ans.Answered(q.Code) {
			return q, true
		}
	}
	return models.Question{}, false
}
