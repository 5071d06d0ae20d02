package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ffx-assist/program-finder/internal/db"
	"github.com/ffx-assist/program-finder/internal/translate"
)

// richTextPolicy sanitizes the HTML-bearing program fields on every
// admin write. Descriptions render directly into resident pages.
var richTextPolicy = bluemonday.UGCPolicy()

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := richTextPolicy.Sanitize(*s)
	return &clean
}

func sanitizeProgramInput(in *db.ProgramInput) {
	in.ShortDescriptionEn = sanitizePtr(in.ShortDescriptionEn)
	in.ShortDescriptionEs = sanitizePtr(in.ShortDescriptionEs)
	in.FullDescriptionEn = sanitizePtr(in.FullDescriptionEn)
	in.FullDescriptionEs = sanitizePtr(in.FullDescriptionEs)
	in.HowToApplyEn = sanitizePtr(in.HowToApplyEn)
	in.HowToApplyEs = sanitizePtr(in.HowToApplyEs)
	in.IncomeNoteEn = sanitizePtr(in.IncomeNoteEn)
	in.IncomeNoteEs = sanitizePtr(in.IncomeNoteEs)
}

func (s *Server) handleAdminListPrograms(c echo.Context) error {
	programs, err := s.Store.AdminListPrograms(c.Request().Context(), requestLang(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, programs)
}

func (s *Server) handleAdminGetProgram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	detail, err := s.Store.AdminGetProgram(c.Request().Context(), id)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleAdminCreateProgram(c echo.Context) error {
	var in db.ProgramInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if in.Slug == "" || in.NameEn == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slug and name_en are required"})
	}
	sanitizeProgramInput(&in)

	id, err := s.Store.CreateProgram(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleAdminUpdateProgram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	var in db.ProgramInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if in.Slug == "" || in.NameEn == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slug and name_en are required"})
	}
	sanitizeProgramInput(&in)

	err = s.Store.UpdateProgram(c.Request().Context(), id, in)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAdminSetActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil || body.IsActive == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "is_active is required"})
	}

	err = s.Store.SetProgramActive(c.Request().Context(), id, *body.IsActive)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete is a soft delete; history and junctions stay intact.
func (s *Server) handleAdminDeactivateProgram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	err = s.Store.SetProgramActive(c.Request().Context(), id, false)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAdminListSeasonalWindows(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	windows, err := s.Store.ListSeasonalWindows(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, windows)
}

func (s *Server) handleAdminReplaceSeasonalWindows(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid program ID"})
	}
	var windows []db.SeasonalWindowInput
	if err := c.Bind(&windows); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	for _, w := range windows {
		if w.OpenDate == "" || w.CloseDate == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "open_date and close_date are required"})
		}
		if w.CloseDate < w.OpenDate {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "close_date is before open_date"})
		}
	}
	if err := s.Store.ReplaceSeasonalWindows(c.Request().Context(), id, windows); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAdminCreateBenchmark(c echo.Context) error {
	var body struct {
		Code    string  `json:"code"`
		LabelEn string  `json:"label_en"`
		LabelEs *string `json:"label_es"`
	}
	if err := c.Bind(&body); err != nil || body.Code == "" || body.LabelEn == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code and label_en are required"})
	}
	b, err := s.Store.CreateBenchmark(c.Request().Context(), body.Code, body.LabelEn, body.LabelEs)
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, b)
}

func (s *Server) handleAdminListThresholds(c echo.Context) error {
	listing, err := s.Store.ListThresholds(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, listing)
}

func (s *Server) handleAdminUpsertThresholds(c echo.Context) error {
	benchmarkID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid benchmark ID"})
	}
	var rows []db.ThresholdRowInput
	if err := c.Bind(&rows); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	for _, r := range rows {
		if r.HouseholdSize < 1 || r.EffectiveYear < 2000 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "household_size and effective_year are required"})
		}
	}
	if err := s.Store.UpsertThresholds(c.Request().Context(), benchmarkID, rows); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAdminListAdministrators(c echo.Context) error {
	admins, err := s.Store.ListAdministrators(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, admins)
}

func (s *Server) handleAdminUpdateAdministrator(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid administrator ID"})
	}
	var body struct {
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
		Website *string `json:"website"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	admin, err := s.Store.UpdateAdministratorContact(c.Request().Context(), id, body.Phone, body.Email, body.Website)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, admin)
}

func (s *Server) handleAdminListLookups(c echo.Context) error {
	lookups, err := s.Store.ListLookups(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, lookups)
}

func (s *Server) handleAdminImport(c echo.Context) error {
	var body struct {
		Programs []db.ImportProgram `json:"programs"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(body.Programs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "programs array is empty"})
	}

	result, err := s.Store.ImportPrograms(c.Request().Context(), body.Programs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAdminTranslate(c echo.Context) error {
	var body struct {
		Texts []string `json:"texts"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(body.Texts) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "texts array is empty"})
	}

	translated, err := s.Translator.TranslateBatch(c.Request().Context(), body.Texts)
	if err == translate.ErrNotConfigured {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Translation is not configured"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"translations": translated})
}
