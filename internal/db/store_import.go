package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ImportProgram is the code-addressed bulk import shape. Criteria are
// given as lookup codes so import files stay readable and portable
// across databases with different serial ids.
type ImportProgram struct {
	Slug                string   `json:"slug" yaml:"slug"`
	NameEn              string   `json:"name_en" yaml:"name_en"`
	NameEs              *string  `json:"name_es" yaml:"name_es"`
	ShortDescriptionEn  *string  `json:"short_description_en" yaml:"short_description_en"`
	ShortDescriptionEs  *string  `json:"short_description_es" yaml:"short_description_es"`
	FullDescriptionEn   *string  `json:"full_description_en" yaml:"full_description_en"`
	FullDescriptionEs   *string  `json:"full_description_es" yaml:"full_description_es"`
	HowToApplyEn        *string  `json:"how_to_apply_en" yaml:"how_to_apply_en"`
	HowToApplyEs        *string  `json:"how_to_apply_es" yaml:"how_to_apply_es"`
	IncomeBenchmark     *string  `json:"income_benchmark" yaml:"income_benchmark"`
	IncomeNoteEn        *string  `json:"income_note_en" yaml:"income_note_en"`
	IncomeNoteEs        *string  `json:"income_note_es" yaml:"income_note_es"`
	RequiresLegalStatus *bool    `json:"requires_legal_status" yaml:"requires_legal_status"`
	IsActive            *bool    `json:"is_active" yaml:"is_active"`
	Geographies         []string `json:"geographies" yaml:"geographies"`
	AgeGroups           []string `json:"age_groups" yaml:"age_groups"`
	HousingTypes        []string `json:"housing_types" yaml:"housing_types"`
	NeedTypes           []string `json:"need_types" yaml:"need_types"`
	HelpTypes           []string `json:"help_types" yaml:"help_types"`
	Administrators      []string `json:"administrators" yaml:"administrators"`

	SeasonalWindows []SeasonalWindowInput `json:"seasonal_windows" yaml:"seasonal_windows"`
}

// ImportResult reports per-slug outcomes for a bulk import run.
type ImportResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Errors  []string `json:"errors"`
}

// ImportPrograms upserts programs by slug, resolving lookup codes to
// ids first. One failed entry does not abort the rest.
func (s *Store) ImportPrograms(ctx context.Context, programs []ImportProgram) (*ImportResult, error) {
	maps, err := s.loadCodeMaps(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Created: []string{}, Updated: []string{}, Errors: []string{}}
	for _, p := range programs {
		created, err := s.importOne(ctx, maps, p)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Slug, err))
			continue
		}
		if created {
			result.Created = append(result.Created, p.Slug)
		} else {
			result.Updated = append(result.Updated, p.Slug)
		}
	}
	return result, nil
}

type codeMaps struct {
	geographies    map[string]int
	ageGroups      map[string]int
	housingTypes   map[string]int
	needTypes      map[string]int
	helpTypes      map[string]int
	benchmarks     map[string]int
	administrators map[string]uuid.UUID
}

func (s *Store) loadCodeMaps(ctx context.Context) (*codeMaps, error) {
	m := &codeMaps{
		geographies:    map[string]int{},
		ageGroups:      map[string]int{},
		housingTypes:   map[string]int{},
		needTypes:      map[string]int{},
		helpTypes:      map[string]int{},
		benchmarks:     map[string]int{},
		administrators: map[string]uuid.UUID{},
	}

	intMap := func(dst map[string]int, table string) error {
		rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT code, id FROM %s`, table))
		if err != nil {
			return fmt.Errorf("load %s codes: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var code string
			var id int
			if err := rows.Scan(&code, &id); err != nil {
				return err
			}
			dst[code] = id
		}
		return rows.Err()
	}

	if err := intMap(m.geographies, "geographies"); err != nil {
		return nil, err
	}
	if err := intMap(m.ageGroups, "age_groups"); err != nil {
		return nil, err
	}
	if err := intMap(m.housingTypes, "housing_types"); err != nil {
		return nil, err
	}
	if err := intMap(m.needTypes, "need_types"); err != nil {
		return nil, err
	}
	if err := intMap(m.helpTypes, "help_types"); err != nil {
		return nil, err
	}
	if err := intMap(m.benchmarks, "income_benchmarks"); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT code, id FROM administrators`)
	if err != nil {
		return nil, fmt.Errorf("load administrator codes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var id uuid.UUID
		if err := rows.Scan(&code, &id); err != nil {
			return nil, err
		}
		m.administrators[code] = id
	}
	return m, rows.Err()
}

func resolveCodes(codes []string, m map[string]int, kind string) ([]int, error) {
	out := make([]int, 0, len(codes))
	for _, c := range codes {
		id, ok := m[c]
		if !ok {
			return nil, fmt.Errorf("unknown %s code %q", kind, c)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) importOne(ctx context.Context, maps *codeMaps, p ImportProgram) (created bool, err error) {
	in := ProgramInput{
		Slug:                p.Slug,
		NameEn:              p.NameEn,
		NameEs:              p.NameEs,
		ShortDescriptionEn:  p.ShortDescriptionEn,
		ShortDescriptionEs:  p.ShortDescriptionEs,
		FullDescriptionEn:   p.FullDescriptionEn,
		FullDescriptionEs:   p.FullDescriptionEs,
		HowToApplyEn:        p.HowToApplyEn,
		HowToApplyEs:        p.HowToApplyEs,
		IncomeNoteEn:        p.IncomeNoteEn,
		IncomeNoteEs:        p.IncomeNoteEs,
		RequiresLegalStatus: p.RequiresLegalStatus,
		IsActive:            p.IsActive,
	}

	if p.IncomeBenchmark != nil {
		id, ok := maps.benchmarks[*p.IncomeBenchmark]
		if !ok {
			return false, fmt.Errorf("unknown income benchmark code %q", *p.IncomeBenchmark)
		}
		in.IncomeBenchmarkID = &id
	}
	if in.GeographyIDs, err = resolveCodes(p.Geographies, maps.geographies, "geography"); err != nil {
		return false, err
	}
	if in.AgeGroupIDs, err = resolveCodes(p.AgeGroups, maps.ageGroups, "age group"); err != nil {
		return false, err
	}
	if in.HousingTypeIDs, err = resolveCodes(p.HousingTypes, maps.housingTypes, "housing type"); err != nil {
		return false, err
	}
	if in.NeedTypeIDs, err = resolveCodes(p.NeedTypes, maps.needTypes, "need type"); err != nil {
		return false, err
	}
	if in.HelpTypeIDs, err = resolveCodes(p.HelpTypes, maps.helpTypes, "help type"); err != nil {
		return false, err
	}
	for _, code := range p.Administrators {
		id, ok := maps.administrators[code]
		if !ok {
			return false, fmt.Errorf("unknown administrator code %q", code)
		}
		in.Administrators = append(in.Administrators, ProgramAdministratorInput{ID: id, IsPrimary: len(in.Administrators) == 0})
	}

	var existingID uuid.UUID
	err = s.pool.QueryRow(ctx, `SELECT id FROM programs WHERE slug = $1`, p.Slug).Scan(&existingID)
	switch err {
	case nil:
		if err := s.UpdateProgram(ctx, existingID, in); err != nil {
			return false, err
		}
		if p.SeasonalWindows != nil {
			if err := s.ReplaceSeasonalWindows(ctx, existingID, p.SeasonalWindows); err != nil {
				return false, err
			}
		}
		return false, nil
	case pgx.ErrNoRows:
		id, err := s.CreateProgram(ctx, in)
		if err != nil {
			return false, err
		}
		if len(p.SeasonalWindows) > 0 {
			if err := s.ReplaceSeasonalWindows(ctx, id, p.SeasonalWindows); err != nil {
				return false, err
			}
		}
		return true, nil
	default:
		return false, err
	}
}
