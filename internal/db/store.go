package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ffx-assist/program-finder/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// langSuffix picks the label column set. Anything that isn't Spanish
// falls back to English.
func langSuffix(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "es") {
		return "es"
	}
	return "en"
}

// ListPrograms returns the active program catalog resolved to one
// locale. The full description is withheld unless the caller is in
// caseworker view; enforcement of who may ask for that view lives in
// the API layer.
func (s *Store) ListPrograms(ctx context.Context, lang string, caseworkerView bool) ([]models.Program, error) {
	l := langSuffix(lang)

	fullDescCol := "CAST(NULL AS TEXT)"
	if caseworkerView {
		fullDescCol = fmt.Sprintf("COALESCE(p.full_description_%s, p.full_description_en)", l)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT
			p.id,
			p.slug,
			COALESCE(p.name_%[1]s, p.name_en)                           AS name,
			COALESCE(p.short_description_%[1]s, p.short_description_en) AS short_description,
			%[2]s                                                       AS full_description,
			COALESCE(p.how_to_apply_%[1]s, p.how_to_apply_en)           AS how_to_apply,
			COALESCE(p.income_note_%[1]s, p.income_note_en)             AS income_note,
			p.requires_legal_status,
			p.is_active,
			p.income_benchmark_id,
			ib.code                                                     AS benchmark_code,
			COALESCE(ib.label_%[1]s, ib.label_en)                       AS benchmark_label
		FROM programs p
		LEFT JOIN income_benchmarks ib ON ib.id = p.income_benchmark_id
		WHERE p.is_active = TRUE
		ORDER BY COALESCE(p.name_%[1]s, p.name_en)
	`, l, fullDescCol))
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	benchmarkByProgram := make(map[uuid.UUID]int)
	for rows.Next() {
		var p models.Program
		var benchmarkID *int
		var benchmarkCode, benchmarkLabel *string

		err := rows.Scan(
			&p.ID, &p.Slug, &p.Name, &p.ShortDescription, &p.FullDescription,
			&p.HowToApply, &p.IncomeNote, &p.RequiresLegalStatus, &p.IsActive,
			&benchmarkID, &benchmarkCode, &benchmarkLabel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		if benchmarkCode != nil {
			label := ""
			if benchmarkLabel != nil {
				label = *benchmarkLabel
			}
			p.IncomeBenchmark = &models.IncomeBenchmark{Code: *benchmarkCode, Label: label}
		}
		if benchmarkID != nil {
			benchmarkByProgram[p.ID] = *benchmarkID
		}

		// Set-valued criteria default to empty (= axis unrestricted).
		p.Geographies = []models.LookupValue{}
		p.AgeGroups = []models.LookupValue{}
		p.HousingTypes = []models.LookupValue{}
		p.NeedTypes = []models.LookupValue{}
		p.HelpTypes = []models.HelpType{}
		p.Administrators = []models.Administrator{}
		p.IncomeThresholds = []models.IncomeThreshold{}
		p.SeasonalWindows = []models.SeasonalWindow{}

		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return []models.Program{}, nil
	}

	index := make(map[uuid.UUID]*models.Program, len(programs))
	ids := make([]uuid.UUID, 0, len(programs))
	for i := range programs {
		index[programs[i].ID] = &programs[i]
		ids = append(ids, programs[i].ID)
	}

	if err := s.attachCriteria(ctx, l, ids, index); err != nil {
		return nil, err
	}
	if err := s.attachAdministrators(ctx, l, ids, index); err != nil {
		return nil, err
	}
	if err := s.attachThresholds(ctx, index, benchmarkByProgram); err != nil {
		return nil, err
	}
	if err := s.attachSeasonalWindows(ctx, l, ids, index); err != nil {
		return nil, err
	}

	return programs, nil
}

// criteriaQuery joins one junction table to its lookup table.
type criteriaQuery struct {
	sql    string
	assign func(p *models.Program, v models.LookupValue)
}

func (s *Store) attachCriteria(ctx context.Context, l string, ids []uuid.UUID, index map[uuid.UUID]*models.Program) error {
	queries := []criteriaQuery{
		{
			sql: `SELECT j.program_id, g.code, COALESCE(g.label_%[1]s, g.label_en)
			      FROM program_geographies j JOIN geographies g ON g.id = j.geography_id
			      WHERE j.program_id = ANY($1)`,
			assign: func(p *models.Program, v models.LookupValue) { p.Geographies = append(p.Geographies, v) },
		},
		{
			sql: `SELECT j.program_id, ag.code, COALESCE(ag.label_%[1]s, ag.label_en)
			      FROM program_age_groups j JOIN age_groups ag ON ag.id = j.age_group_id
			      WHERE j.program_id = ANY($1) ORDER BY ag.sort_order`,
			assign: func(p *models.Program, v models.LookupValue) { p.AgeGroups = append(p.AgeGroups, v) },
		},
		{
			sql: `SELECT j.program_id, ht.code, COALESCE(ht.label_%[1]s, ht.label_en)
			      FROM program_housing_types j JOIN housing_types ht ON ht.id = j.housing_type_id
			      WHERE j.program_id = ANY($1) ORDER BY ht.sort_order`,
			assign: func(p *models.Program, v models.LookupValue) { p.HousingTypes = append(p.HousingTypes, v) },
		},
		{
			sql: `SELECT j.program_id, nt.code, COALESCE(nt.label_%[1]s, nt.label_en)
			      FROM program_need_types j JOIN need_types nt ON nt.id = j.need_type_id
			      WHERE j.program_id = ANY($1)`,
			assign: func(p *models.Program, v models.LookupValue) { p.NeedTypes = append(p.NeedTypes, v) },
		},
	}

	for _, q := range queries {
		rows, err := s.pool.Query(ctx, fmt.Sprintf(q.sql, l), ids)
		if err != nil {
			return fmt.Errorf("failed to query program criteria: %w", err)
		}
		for rows.Next() {
			var programID uuid.UUID
			var v models.LookupValue
			if err := rows.Scan(&programID, &v.Code, &v.Label); err != nil {
				rows.Close()
				return err
			}
			if p, ok := index[programID]; ok {
				q.assign(p, v)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	// Help types carry their category code too.
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT j.program_id, ht.code, COALESCE(ht.label_%[1]s, ht.label_en), hc.code
		FROM program_help_types j
		JOIN help_types ht ON ht.id = j.help_type_id
		JOIN help_categories hc ON hc.id = ht.category_id
		WHERE j.program_id = ANY($1)
		ORDER BY hc.id, ht.sort_order
	`, l), ids)
	if err != nil {
		return fmt.Errorf("failed to query help types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var programID uuid.UUID
		var ht models.HelpType
		if err := rows.Scan(&programID, &ht.Code, &ht.Label, &ht.Category); err != nil {
			return err
		}
		if p, ok := index[programID]; ok {
			p.HelpTypes = append(p.HelpTypes, ht)
		}
	}
	return rows.Err()
}

func (s *Store) attachAdministrators(ctx context.Context, l string, ids []uuid.UUID, index map[uuid.UUID]*models.Program) error {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT pa.program_id, a.code, a.name, a.website, a.phone, a.email,
		       COALESCE(a.notes_%[1]s, a.notes_en), pa.is_primary
		FROM program_administrators pa
		JOIN administrators a ON a.id = pa.administrator_id
		WHERE pa.program_id = ANY($1)
		ORDER BY pa.is_primary DESC, a.name
	`, l), ids)
	if err != nil {
		return fmt.Errorf("failed to query administrators: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var programID uuid.UUID
		var a models.Administrator
		if err := rows.Scan(&programID, &a.Code, &a.Name, &a.Website, &a.Phone, &a.Email, &a.Notes, &a.IsPrimary); err != nil {
			return err
		}
		if p, ok := index[programID]; ok {
			p.Administrators = append(p.Administrators, a)
		}
	}
	return rows.Err()
}

// attachThresholds loads, per benchmark, only the latest effective
// year's rows.
func (s *Store) attachThresholds(ctx context.Context, index map[uuid.UUID]*models.Program, benchmarkByProgram map[uuid.UUID]int) error {
	if len(benchmarkByProgram) == 0 {
		return nil
	}
	benchmarkIDs := make([]int, 0, len(benchmarkByProgram))
	seen := make(map[int]bool)
	for _, id := range benchmarkByProgram {
		if !seen[id] {
			seen[id] = true
			benchmarkIDs = append(benchmarkIDs, id)
		}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT it.benchmark_id, it.household_size,
		       it.monthly_limit::float8, it.annual_limit::float8
		FROM income_thresholds it
		JOIN (
			SELECT benchmark_id, MAX(effective_year) AS max_year
			FROM income_thresholds
			WHERE benchmark_id = ANY($1)
			GROUP BY benchmark_id
		) latest ON it.benchmark_id = latest.benchmark_id
		        AND it.effective_year = latest.max_year
		ORDER BY it.benchmark_id, it.household_size
	`, benchmarkIDs)
	if err != nil {
		return fmt.Errorf("failed to query income thresholds: %w", err)
	}
	defer rows.Close()

	byBenchmark := make(map[int][]models.IncomeThreshold)
	for rows.Next() {
		var benchmarkID int
		var t models.IncomeThreshold
		if err := rows.Scan(&benchmarkID, &t.HouseholdSize, &t.MonthlyLimit, &t.AnnualLimit); err != nil {
			return err
		}
		byBenchmark[benchmarkID] = append(byBenchmark[benchmarkID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for programID, benchmarkID := range benchmarkByProgram {
		if p, ok := index[programID]; ok {
			if thresholds, ok := byBenchmark[benchmarkID]; ok {
				p.IncomeThresholds = thresholds
			}
		}
	}
	return nil
}

func (s *Store) attachSeasonalWindows(ctx context.Context, l string, ids []uuid.UUID, index map[uuid.UUID]*models.Program) error {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT sw.program_id,
		       TO_CHAR(sw.open_date,  'YYYY-MM-DD'),
		       TO_CHAR(sw.close_date, 'YYYY-MM-DD'),
		       COALESCE(sw.notes_%[1]s, sw.notes_en)
		FROM seasonal_windows sw
		WHERE sw.program_id = ANY($1)
		ORDER BY sw.open_date
	`, l), ids)
	if err != nil {
		return fmt.Errorf("failed to query seasonal windows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var programID uuid.UUID
		var w models.SeasonalWindow
		if err := rows.Scan(&programID, &w.OpenDate, &w.CloseDate, &w.Notes); err != nil {
			return err
		}
		if p, ok := index[programID]; ok {
			p.SeasonalWindows = append(p.SeasonalWindows, w)
		}
	}
	return rows.Err()
}

// GetProgramBySlug returns a single active program in resident view.
func (s *Store) GetProgramBySlug(ctx context.Context, lang, slug string) (*models.Program, error) {
	programs, err := s.ListPrograms(ctx, lang, false)
	if err != nil {
		return nil, err
	}
	for i := range programs {
		if programs[i].Slug == slug {
			return &programs[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

// Touch bumps a program's updated_at; used after junction-only edits.
func (s *Store) Touch(ctx context.Context, programID uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE programs SET updated_at = $2 WHERE id = $1`, programID, at)
	return err
}
