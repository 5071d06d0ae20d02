package models

import (
	"github.com/google/uuid"
)

// LookupValue is one locale-resolved code/label pair from a lookup table
// (geographies, age groups, housing types, need types).
type LookupValue struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// HelpType carries its parent category code alongside the usual pair.
type HelpType struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

type Administrator struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Website   *string `json:"website"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Notes     *string `json:"notes"`
	IsPrimary bool    `json:"is_primary"`
}

type IncomeBenchmark struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// IncomeThreshold is one row of a benchmark's per-household-size table.
// Limits are nullable: a row may define only a monthly cap, only an
// annual cap, or neither.
type IncomeThreshold struct {
	HouseholdSize int      `json:"household_size"`
	MonthlyLimit  *float64 `json:"monthly_limit"`
	AnnualLimit   *float64 `json:"annual_limit"`
}

// SeasonalWindow is a date-only range during which a program accepts
// applications. Dates are YYYY-MM-DD strings; both endpoints inclusive.
type SeasonalWindow struct {
	OpenDate  string  `json:"open_date"`
	CloseDate string  `json:"close_date"`
	Notes     *string `json:"notes"`
}

// Program is one assistance offering, resolved to a single display
// locale. The criteria slices are code sets: an empty slice means the
// axis is unrestricted, not that the program excludes everyone.
type Program struct {
	ID               uuid.UUID `json:"id"`
	Slug             string    `json:"slug"`
	Name             string    `json:"name"`
	ShortDescription *string   `json:"short_description"`
	FullDescription  *string   `json:"full_description"` // withheld in resident view
	HowToApply       *string   `json:"how_to_apply"`
	IncomeNote       *string   `json:"income_note"`

	// Tri-state: true = legal status required, false = explicitly open
	// to all, nil = not applicable. Never collapsed to a plain bool.
	RequiresLegalStatus *bool `json:"requires_legal_status"`

	IncomeBenchmark  *IncomeBenchmark  `json:"income_benchmark"`
	IncomeThresholds []IncomeThreshold `json:"income_thresholds"`

	Geographies  []LookupValue `json:"geographies"`
	AgeGroups    []LookupValue `json:"age_groups"`
	HousingTypes []LookupValue `json:"housing_types"`
	NeedTypes    []LookupValue `json:"need_types"`
	HelpTypes    []HelpType    `json:"help_types"`

	Administrators  []Administrator  `json:"administrators"`
	SeasonalWindows []SeasonalWindow `json:"seasonal_windows"`

	IsActive bool `json:"is_active"`
}
