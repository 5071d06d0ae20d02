package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProgramInput is the admin write shape: bilingual text fields plus
// lookup ids for the criteria junctions.
type ProgramInput struct {
	Slug                string  `json:"slug"`
	NameEn              string  `json:"name_en"`
	NameEs              *string `json:"name_es"`
	ShortDescriptionEn  *string `json:"short_description_en"`
	ShortDescriptionEs  *string `json:"short_description_es"`
	FullDescriptionEn   *string `json:"full_description_en"`
	FullDescriptionEs   *string `json:"full_description_es"`
	HowToApplyEn        *string `json:"how_to_apply_en"`
	HowToApplyEs        *string `json:"how_to_apply_es"`
	IncomeBenchmarkID   *int    `json:"income_benchmark_id"`
	IncomeNoteEn        *string `json:"income_note_en"`
	IncomeNoteEs        *string `json:"income_note_es"`
	RequiresLegalStatus *bool   `json:"requires_legal_status"`
	IsActive            *bool   `json:"is_active"`

	GeographyIDs   []int `json:"geography_ids"`
	AgeGroupIDs    []int `json:"age_group_ids"`
	HousingTypeIDs []int `json:"housing_type_ids"`
	NeedTypeIDs    []int `json:"need_type_ids"`
	HelpTypeIDs    []int `json:"help_type_ids"`

	Administrators []ProgramAdministratorInput `json:"administrator_ids"`
}

type ProgramAdministratorInput struct {
	ID        uuid.UUID `json:"id"`
	IsPrimary bool      `json:"is_primary"`
}

type SeasonalWindowInput struct {
	Year      int     `json:"year"`
	OpenDate  string  `json:"open_date"`
	CloseDate string  `json:"close_date"`
	NotesEn   *string `json:"notes_en"`
	NotesEs   *string `json:"notes_es"`
}

// AdminProgramRow is the caseworker list view: one line per program,
// active or not.
type AdminProgramRow struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
	GeoCount  int       `json:"geo_count"`
}

func (s *Store) AdminListPrograms(ctx context.Context, lang string) ([]AdminProgramRow, error) {
	l := langSuffix(lang)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT p.id, p.slug, COALESCE(p.name_%[1]s, p.name_en), p.is_active, p.updated_at,
		       COUNT(DISTINCT pg2.geography_id)
		FROM programs p
		LEFT JOIN program_geographies pg2 ON pg2.program_id = p.id
		GROUP BY p.id
		ORDER BY COALESCE(p.name_%[1]s, p.name_en)
	`, l))
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var out []AdminProgramRow
	for rows.Next() {
		var r AdminProgramRow
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.IsActive, &r.UpdatedAt, &r.GeoCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AdminProgramDetail is the raw bilingual row plus relation ids, the
// shape the edit form round-trips.
type AdminProgramDetail struct {
	ID                  uuid.UUID `json:"id"`
	Slug                string    `json:"slug"`
	NameEn              string    `json:"name_en"`
	NameEs              *string   `json:"name_es"`
	ShortDescriptionEn  *string   `json:"short_description_en"`
	ShortDescriptionEs  *string   `json:"short_description_es"`
	FullDescriptionEn   *string   `json:"full_description_en"`
	FullDescriptionEs   *string   `json:"full_description_es"`
	HowToApplyEn        *string   `json:"how_to_apply_en"`
	HowToApplyEs        *string   `json:"how_to_apply_es"`
	IncomeBenchmarkID   *int      `json:"income_benchmark_id"`
	IncomeNoteEn        *string   `json:"income_note_en"`
	IncomeNoteEs        *string   `json:"income_note_es"`
	RequiresLegalStatus *bool     `json:"requires_legal_status"`
	IsActive            bool      `json:"is_active"`
	UpdatedAt           time.Time `json:"updated_at"`

	GeographyIDs   []int `json:"geography_ids"`
	AgeGroupIDs    []int `json:"age_group_ids"`
	HousingTypeIDs []int `json:"housing_type_ids"`
	NeedTypeIDs    []int `json:"need_type_ids"`
	HelpTypeIDs    []int `json:"help_type_ids"`

	Administrators  []ProgramAdministratorInput `json:"administrator_ids"`
	SeasonalWindows []SeasonalWindowRow         `json:"seasonal_windows"`
}

type SeasonalWindowRow struct {
	ID        int     `json:"id"`
	Year      int     `json:"year"`
	OpenDate  string  `json:"open_date"`
	CloseDate string  `json:"close_date"`
	NotesEn   *string `json:"notes_en"`
	NotesEs   *string `json:"notes_es"`
}

func (s *Store) AdminGetProgram(ctx context.Context, id uuid.UUID) (*AdminProgramDetail, error) {
	var d AdminProgramDetail
	err := s.pool.QueryRow(ctx, `
		SELECT id, slug, name_en, name_es,
		       short_description_en, short_description_es,
		       full_description_en, full_description_es,
		       how_to_apply_en, how_to_apply_es,
		       income_benchmark_id, income_note_en, income_note_es,
		       requires_legal_status, is_active, updated_at
		FROM programs WHERE id = $1
	`, id).Scan(
		&d.ID, &d.Slug, &d.NameEn, &d.NameEs,
		&d.ShortDescriptionEn, &d.ShortDescriptionEs,
		&d.FullDescriptionEn, &d.FullDescriptionEs,
		&d.HowToApplyEn, &d.HowToApplyEs,
		&d.IncomeBenchmarkID, &d.IncomeNoteEn, &d.IncomeNoteEs,
		&d.RequiresLegalStatus, &d.IsActive, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	intIDs := func(query string) ([]int, error) {
		rows, err := s.pool.Query(ctx, query, id)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []int{}
		for rows.Next() {
			var v int
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, rows.Err()
	}

	if d.GeographyIDs, err = intIDs(`SELECT geography_id FROM program_geographies WHERE program_id = $1`); err != nil {
		return nil, err
	}
	if d.AgeGroupIDs, err = intIDs(`SELECT age_group_id FROM program_age_groups WHERE program_id = $1`); err != nil {
		return nil, err
	}
	if d.HousingTypeIDs, err = intIDs(`SELECT housing_type_id FROM program_housing_types WHERE program_id = $1`); err != nil {
		return nil, err
	}
	if d.NeedTypeIDs, err = intIDs(`SELECT need_type_id FROM program_need_types WHERE program_id = $1`); err != nil {
		return nil, err
	}
	if d.HelpTypeIDs, err = intIDs(`SELECT help_type_id FROM program_help_types WHERE program_id = $1`); err != nil {
		return nil, err
	}

	adminRows, err := s.pool.Query(ctx, `SELECT administrator_id, is_primary FROM program_administrators WHERE program_id = $1`, id)
	if err != nil {
		return nil, err
	}
	d.Administrators = []ProgramAdministratorInput{}
	for adminRows.Next() {
		var a ProgramAdministratorInput
		if err := adminRows.Scan(&a.ID, &a.IsPrimary); err != nil {
			adminRows.Close()
			return nil, err
		}
		d.Administrators = append(d.Administrators, a)
	}
	adminRows.Close()
	if err := adminRows.Err(); err != nil {
		return nil, err
	}

	if d.SeasonalWindows, err = s.ListSeasonalWindows(ctx, id); err != nil {
		return nil, err
	}

	return &d, nil
}

func (s *Store) CreateProgram(ctx context.Context, in ProgramInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO programs (
				slug, name_en, name_es,
				short_description_en, short_description_es,
				full_description_en, full_description_es,
				how_to_apply_en, how_to_apply_es,
				income_benchmark_id, income_note_en, income_note_es,
				requires_legal_status, is_active
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			RETURNING id
		`,
			in.Slug, in.NameEn, in.NameEs,
			in.ShortDescriptionEn, in.ShortDescriptionEs,
			in.FullDescriptionEn, in.FullDescriptionEs,
			in.HowToApplyEn, in.HowToApplyEs,
			in.IncomeBenchmarkID, in.IncomeNoteEn, in.IncomeNoteEs,
			in.RequiresLegalStatus, activeOrDefault(in.IsActive),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert program: %w", err)
		}
		return replaceJunctions(ctx, tx, id, in)
	})
	return id, err
}

func (s *Store) UpdateProgram(ctx context.Context, id uuid.UUID, in ProgramInput) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE programs SET
				slug=$1, name_en=$2, name_es=$3,
				short_description_en=$4, short_description_es=$5,
				full_description_en=$6, full_description_es=$7,
				how_to_apply_en=$8, how_to_apply_es=$9,
				income_benchmark_id=$10, income_note_en=$11, income_note_es=$12,
				requires_legal_status=$13, is_active=$14, updated_at=NOW()
			WHERE id=$15
		`,
			in.Slug, in.NameEn, in.NameEs,
			in.ShortDescriptionEn, in.ShortDescriptionEs,
			in.FullDescriptionEn, in.FullDescriptionEs,
			in.HowToApplyEn, in.HowToApplyEs,
			in.IncomeBenchmarkID, in.IncomeNoteEn, in.IncomeNoteEs,
			in.RequiresLegalStatus, activeOrDefault(in.IsActive), id,
		)
		if err != nil {
			return fmt.Errorf("update program: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return replaceJunctions(ctx, tx, id, in)
	})
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// replaceJunctions clears and re-inserts all criteria junctions for a
// program. Whole-set replacement keeps the write path simple; catalogs
// are small and edits are rare.
func replaceJunctions(ctx context.Context, tx pgx.Tx, programID uuid.UUID, in ProgramInput) error {
	junctions := []struct {
		table string
		col   string
		ids   []int
	}{
		{"program_geographies", "geography_id", in.GeographyIDs},
		{"program_age_groups", "age_group_id", in.AgeGroupIDs},
		{"program_housing_types", "housing_type_id", in.HousingTypeIDs},
		{"program_need_types", "need_type_id", in.NeedTypeIDs},
		{"program_help_types", "help_type_id", in.HelpTypeIDs},
	}

	for _, j := range junctions {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE program_id=$1`, j.table), programID); err != nil {
			return fmt.Errorf("clear %s: %w", j.table, err)
		}
		for _, lookupID := range j.ids {
			if _, err := tx.Exec(ctx,
				fmt.Sprintf(`INSERT INTO %s (program_id, %s) VALUES ($1,$2) ON CONFLICT DO NOTHING`, j.table, j.col),
				programID, lookupID,
			); err != nil {
				return fmt.Errorf("insert %s: %w", j.table, err)
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM program_administrators WHERE program_id=$1`, programID); err != nil {
		return fmt.Errorf("clear program_administrators: %w", err)
	}
	for _, a := range in.Administrators {
		if _, err := tx.Exec(ctx, `
			INSERT INTO program_administrators (program_id, administrator_id, is_primary)
			VALUES ($1,$2,$3) ON CONFLICT DO NOTHING
		`, programID, a.ID, a.IsPrimary); err != nil {
			return fmt.Errorf("insert program_administrators: %w", err)
		}
	}
	return nil
}

// SetProgramActive toggles the soft-delete flag.
func (s *Store) SetProgramActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE programs SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) ListSeasonalWindows(ctx context.Context, programID uuid.UUID) ([]SeasonalWindowRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, year, TO_CHAR(open_date,'YYYY-MM-DD'), TO_CHAR(close_date,'YYYY-MM-DD'), notes_en, notes_es
		FROM seasonal_windows WHERE program_id=$1 ORDER BY open_date
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SeasonalWindowRow{}
	for rows.Next() {
		var w SeasonalWindowRow
		if err := rows.Scan(&w.ID, &w.Year, &w.OpenDate, &w.CloseDate, &w.NotesEn, &w.NotesEs); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceSeasonalWindows(ctx context.Context, programID uuid.UUID, windows []SeasonalWindowInput) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM seasonal_windows WHERE program_id=$1`, programID); err != nil {
			return err
		}
		for _, w := range windows {
			if _, err := tx.Exec(ctx, `
				INSERT INTO seasonal_windows (program_id, year, open_date, close_date, notes_en, notes_es)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, programID, w.Year, w.OpenDate, w.CloseDate, w.NotesEn, w.NotesEs); err != nil {
				return fmt.Errorf("insert seasonal window: %w", err)
			}
		}
		return nil
	})
}

// Benchmark / threshold management.

type BenchmarkRow struct {
	ID      int     `json:"id"`
	Code    string  `json:"code"`
	LabelEn string  `json:"label_en"`
	LabelEs *string `json:"label_es"`
}

func (s *Store) CreateBenchmark(ctx context.Context, code, labelEn string, labelEs *string) (*BenchmarkRow, error) {
	var b BenchmarkRow
	err := s.pool.QueryRow(ctx, `
		INSERT INTO income_benchmarks (code, label_en, label_es)
		VALUES ($1,$2,$3)
		ON CONFLICT (code) DO NOTHING
		RETURNING id, code, label_en, label_es
	`, code, labelEn, labelEs).Scan(&b.ID, &b.Code, &b.LabelEn, &b.LabelEs)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("benchmark %q already exists", code)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type ThresholdRowInput struct {
	HouseholdSize int      `json:"household_size"`
	MonthlyLimit  *float64 `json:"monthly_limit"`
	AnnualLimit   *float64 `json:"annual_limit"`
	EffectiveYear int      `json:"effective_year"`
}

func (s *Store) UpsertThresholds(ctx context.Context, benchmarkID int, rows []ThresholdRowInput) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			if _, err := tx.Exec(ctx, `
				INSERT INTO income_thresholds (benchmark_id, household_size, monthly_limit, annual_limit, effective_year)
				VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (benchmark_id, effective_year, household_size)
				DO UPDATE SET monthly_limit=EXCLUDED.monthly_limit, annual_limit=EXCLUDED.annual_limit
			`, benchmarkID, row.HouseholdSize, row.MonthlyLimit, row.AnnualLimit, row.EffectiveYear); err != nil {
				return fmt.Errorf("upsert threshold: %w", err)
			}
		}
		return nil
	})
}

type ThresholdListing struct {
	Benchmarks []BenchmarkRow `json:"benchmarks"`
	Thresholds []struct {
		BenchmarkID   int      `json:"benchmark_id"`
		HouseholdSize int      `json:"household_size"`
		MonthlyLimit  *float64 `json:"monthly_limit"`
		AnnualLimit   *float64 `json:"annual_limit"`
		EffectiveYear int      `json:"effective_year"`
	} `json:"thresholds"`
}

func (s *Store) ListThresholds(ctx context.Context) (*ThresholdListing, error) {
	var out ThresholdListing

	rows, err := s.pool.Query(ctx, `SELECT id, code, label_en, label_es FROM income_benchmarks ORDER BY code`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b BenchmarkRow
		if err := rows.Scan(&b.ID, &b.Code, &b.LabelEn, &b.LabelEs); err != nil {
			rows.Close()
			return nil, err
		}
		out.Benchmarks = append(out.Benchmarks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT benchmark_id, household_size, monthly_limit::float8, annual_limit::float8, effective_year
		FROM income_thresholds
		ORDER BY benchmark_id, household_size, effective_year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t struct {
			BenchmarkID   int      `json:"benchmark_id"`
			HouseholdSize int      `json:"household_size"`
			MonthlyLimit  *float64 `json:"monthly_limit"`
			AnnualLimit   *float64 `json:"annual_limit"`
			EffectiveYear int      `json:"effective_year"`
		}
		if err := rows.Scan(&t.BenchmarkID, &t.HouseholdSize, &t.MonthlyLimit, &t.AnnualLimit, &t.EffectiveYear); err != nil {
			return nil, err
		}
		out.Thresholds = append(out.Thresholds, t)
	}
	return &out, rows.Err()
}

// Administrator contact management.

type AdministratorRow struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Website *string   `json:"website"`
	Phone   *string   `json:"phone"`
	Email   *string   `json:"email"`
}

func (s *Store) ListAdministrators(ctx context.Context) ([]AdministratorRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, code, name, website, phone, email FROM administrators ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdministratorRow
	for rows.Next() {
		var a AdministratorRow
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Website, &a.Phone, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAdministratorContact(ctx context.Context, id uuid.UUID, phone, email, website *string) (*AdministratorRow, error) {
	var a AdministratorRow
	err := s.pool.QueryRow(ctx, `
		UPDATE administrators SET phone=$1, email=$2, website=$3 WHERE id=$4
		RETURNING id, code, name, website, phone, email
	`, phone, email, website, id).Scan(&a.ID, &a.Code, &a.Name, &a.Website, &a.Phone, &a.Email)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LookupRow is one entry of any bilingual lookup table.
type LookupRow struct {
	ID      int     `json:"id"`
	Code    string  `json:"code"`
	LabelEn string  `json:"label_en"`
	LabelEs *string `json:"label_es"`
}

type Lookups struct {
	Geographies      []LookupRow        `json:"geographies"`
	AgeGroups        []LookupRow        `json:"age_groups"`
	HousingTypes     []LookupRow        `json:"housing_types"`
	NeedTypes        []LookupRow        `json:"need_types"`
	HelpCategories   []LookupRow        `json:"help_categories"`
	HelpTypes        []LookupRow        `json:"help_types"`
	IncomeBenchmarks []LookupRow        `json:"income_benchmarks"`
	Administrators   []AdministratorRow `json:"administrators"`
}

func (s *Store) ListLookups(ctx context.Context) (*Lookups, error) {
	var out Lookups

	load := func(dst *[]LookupRow, query string) error {
		rows, err := s.pool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r LookupRow
			if err := rows.Scan(&r.ID, &r.Code, &r.LabelEn, &r.LabelEs); err != nil {
				return err
			}
			*dst = append(*dst, r)
		}
		return rows.Err()
	}

	if err := load(&out.Geographies, `SELECT id, code, label_en, label_es FROM geographies ORDER BY label_en`); err != nil {
		return nil, err
	}
	if err := load(&out.AgeGroups, `SELECT id, code, label_en, label_es FROM age_groups ORDER BY sort_order`); err != nil {
		return nil, err
	}
	if err := load(&out.HousingTypes, `SELECT id, code, label_en, label_es FROM housing_types ORDER BY sort_order`); err != nil {
		return nil, err
	}
	if err := load(&out.NeedTypes, `SELECT id, code, label_en, label_es FROM need_types ORDER BY label_en`); err != nil {
		return nil, err
	}
	if err := load(&out.HelpCategories, `SELECT id, code, label_en, label_es FROM help_categories ORDER BY label_en`); err != nil {
		return nil, err
	}
	if err := load(&out.HelpTypes, `SELECT id, code, label_en, label_es FROM help_types ORDER BY sort_order`); err != nil {
		return nil, err
	}
	if err := load(&out.IncomeBenchmarks, `SELECT id, code, label_en, label_es FROM income_benchmarks ORDER BY code`); err != nil {
		return nil, err
	}

	admins, err := s.ListAdministrators(ctx)
	if err != nil {
		return nil, err
	}
	out.Administrators = admins
	return &out, nil
}
