package eligibility

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Explainer renders human-readable match reasons for a program that
// already passed Matches. It is never used to explain a rejection.
type Explainer struct {
	p *message.Printer
}

func NewExplainer(tag language.Tag) *Explainer {
	return &Explainer{p: message.NewPrinter(tag)}
}

func (e *Explainer) money(n float64) string {
	return e.p.Sprintf("$%v", number.Decimal(n, number.MaxFractionDigits(0)))
}

// Explain emits one sentence per axis that was both answered and
// satisfied, in a fixed order: geography, income, age group, legal
// status, housing, need type, seasonal. Skipped axes are silent.
func (e *Explainer) Explain(p models.Program, ans AnswerSet, today time.Time) []string {
	var reasons []string

	if geo, ok := ans.Geography(); ok {
		label := geo
		for _, g := range p.Geographies {
			if g.Code == geo {
				label = g.Label
				break
			}
		}
		reasons = append(reasons, "Geography: "+label)
	}

	if size, sizeOK := ans.HouseholdSize(); sizeOK {
		if monthly, incomeOK := ans.MonthlyIncome(); incomeOK {
			if p.IncomeBenchmark == nil {
				reasons = append(reasons, "Income: no income limit for this program")
			} else if len(p.IncomeThresholds) > 0 {
				row, found := thresholdFor(p.IncomeThresholds, size)
				if found && row.MonthlyLimit != nil {
					reasons = append(reasons, e.p.Sprintf(
						"Income: %s/mo ≤ %s/mo limit (%s, household of %d)",
						e.money(monthly), e.money(*row.MonthlyLimit), p.IncomeBenchmark.Label, size))
				} else {
					reasons = append(reasons, e.p.Sprintf(
						"Income: within %s (household of %d)", p.IncomeBenchmark.Label, size))
				}
			}
		}
	}

	if age, ok := ans.AgeGroup(); ok {
		label := age
		for _, a := range p.AgeGroups {
			if a.Code == age {
				label = a.Label
				break
			}
		}
		reasons = append(reasons, "Age group: "+label)
	}

	if _, ok := ans.LegalStatus(); ok {
		if p.RequiresLegalStatus == nil || !*p.RequiresLegalStatus {
			reasons = append(reasons, "Legal status: open regardless of immigration status")
		}
	}

	if selected := ans.HousingCodes(); len(selected) > 0 {
		var labels []string
		for _, ht := range p.HousingTypes {
			for _, code := range selected {
				if ht.Code == code {
					labels = append(labels, ht.Label)
				}
			}
		}
		if len(labels) > 0 {
			reasons = append(reasons, "Housing: "+strings.Join(labels, ", "))
		}
	}

	if needs, ok := ans.NeedTypes(); ok {
		var labels []string
		for _, nt := range p.NeedTypes {
			for _, code := range needs {
				if nt.Code == code {
					labels = append(labels, nt.Label)
				}
			}
		}
		if len(labels) > 0 {
			reasons = append(reasons, "Need: "+strings.Join(labels, ", "))
		}
	}

	if len(p.SeasonalWindows) == 0 {
		reasons = append(reasons, "Availability: open year-round")
	} else if w, ok := CurrentWindow(p.SeasonalWindows, today); ok {
		if close, err := time.Parse(dateLayout, w.CloseDate); err == nil {
			reasons = append(reasons, "Availability: open now (through "+close.Format("Jan 2, 2006")+")")
		}
	}

	return reasons
}

func thresholdFor(rows []models.IncomeThreshold, size int) (models.IncomeThreshold, bool) {
	for _, row := range rows {
		if row.HouseholdSize == size {
			return row, true
		}
	}
	return models.IncomeThreshold{}, false
}
