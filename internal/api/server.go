package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/text/language"

	"github.com/ffx-assist/program-finder/internal/auth"
	"github.com/ffx-assist/program-finder/internal/catalog"
	"github.com/ffx-assist/program-finder/internal/db"
	"github.com/ffx-assist/program-finder/internal/eligibility"
	"github.com/ffx-assist/program-finder/internal/models"
	"github.com/ffx-assist/program-finder/internal/translate"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	Registry    *catalog.Registry
	Translator  translate.Translator
}

func NewServer(pool *pgxpool.Pool) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Accept-Language"},
	}))

	registry, err := catalog.LoadRegistry()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		Registry:    registry,
		Translator: translate.NewGroqClient(
			os.Getenv("GROQ_BASE_URL"),
			os.Getenv("GROQ_API_KEY"),
			os.Getenv("GROQ_MODEL"),
		),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/programs", s.handleListPrograms)
	api.GET("/programs/:slug", s.handleGetProgram)
	api.GET("/questions", s.handleListQuestions)
	api.POST("/eligibility/check", s.handleEligibilityCheck)
	api.POST("/eligibility/next-question", s.handleNextQuestion)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Admin Routes (catalog management)
	admin := api.Group("/admin")
	admin.Use(auth.AdminMiddleware)
	admin.GET("/programs", s.handleAdminListPrograms)
	admin.GET("/programs/:id", s.handleAdminGetProgram)
	admin.POST("/programs", s.handleAdminCreateProgram)
	admin.PUT("/programs/:id", s.handleAdminUpdateProgram)
	admin.PATCH("/programs/:id/active", s.handleAdminSetActive)
	admin.DELETE("/programs/:id", s.handleAdminDeactivateProgram)
	admin.GET("/programs/:id/seasonal-windows", s.handleAdminListSeasonalWindows)
	admin.PUT("/programs/:id/seasonal-windows", s.handleAdminReplaceSeasonalWindows)
	admin.POST("/income-benchmarks", s.handleAdminCreateBenchmark)
	admin.GET("/income-thresholds", s.handleAdminListThresholds)
	admin.PUT("/income-benchmarks/:id/thresholds", s.handleAdminUpsertThresholds)
	admin.GET("/administrators", s.handleAdminListAdministrators)
	admin.PATCH("/administrators/:id", s.handleAdminUpdateAdministrator)
	admin.GET("/lookups", s.handleAdminListLookups)
	admin.POST("/import", s.handleAdminImport)
	admin.POST("/translate", s.handleAdminTranslate)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.DB.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestLang resolves the response locale: explicit ?lang wins,
// otherwise the Accept-Language header, otherwise English.
func requestLang(c echo.Context) string {
	if l := c.QueryParam("lang"); l != "" {
		return l
	}
	return c.Request().Header.Get("Accept-Language")
}

func langTag(lang string) language.Tag {
	if strings.HasPrefix(strings.ToLower(lang), "es") {
		return language.Spanish
	}
	return language.AmericanEnglish
}

func (s *Server) handleListPrograms(c echo.Context) error {
	lang := requestLang(c)

	caseworkerView := c.QueryParam("view") == "caseworker"
	if caseworkerView {
		// Caseworker view exposes internal notes, so it sits behind the
		// staff JWT even though the rest of the catalog is public.
		handler := auth.Middleware(func(c echo.Context) error {
			return s.listPrograms(c, lang, true)
		})
		return handler(c)
	}
	return s.listPrograms(c, lang, false)
}

func (s *Server) listPrograms(c echo.Context, lang string, caseworkerView bool) error {
	programs, err := s.Store.ListPrograms(c.Request().Context(), lang, caseworkerView)
	if err != nil {
		c.Logger().Errorf("Failed to list programs: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"programs": programs,
		"count":    len(programs),
	})
}

func (s *Server) handleGetProgram(c echo.Context) error {
	program, err := s.Store.GetProgramBySlug(c.Request().Context(), requestLang(c), c.Param("slug"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, program)
}

func (s *Server) handleListQuestions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":   s.Registry.Version,
		"questions": s.Registry.Questions,
	})
}

// loadSnapshot assembles the immutable catalog view one eligibility
// request evaluates against. The store only returns active programs,
// but the snapshot filters again rather than assume that.
func (s *Server) loadSnapshot(c echo.Context, lang string) (catalog.Snapshot, error) {
	programs, err := s.Store.ListPrograms(c.Request().Context(), lang, false)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	snap := catalog.Snapshot{
		Programs:  programs,
		Questions: s.Registry.Questions,
		Locale:    lang,
		LoadedAt:  time.Now(),
	}
	return snap.ActiveOnly(), nil
}

// checkRequest carries raw answers keyed by question code. Values stay
// raw JSON until ParseAnswers types them against the question registry;
// an explicit null is a skip, a missing key is unanswered.
type checkRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

type matchResult struct {
	Program models.Program `json:"program"`
	Reasons []string       `json:"reasons,omitempty"`
}

func (s *Server) handleEligibilityCheck(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ans, err := eligibility.ParseAnswers(s.Registry.Questions, req.Answers)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	lang := requestLang(c)
	snap, err := s.loadSnapshot(c, lang)
	if err != nil {
		c.Logger().Errorf("Failed to load catalog: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	today := snap.LoadedAt
	matched := eligibility.MatchingPrograms(snap.Programs, ans, today)

	if c.QueryParam("explain") != "true" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"matches": matched,
			"count":   len(matched),
		})
	}

	explainer := eligibility.NewExplainer(langTag(lang))
	results := make([]matchResult, 0, len(matched))
	for _, p := range matched {
		results = append(results, matchResult{
			Program: p,
			Reasons: explainer.Explain(p, ans, today),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"matches": results,
		"count":   len(results),
	})
}

func (s *Server) handleNextQuestion(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ans, err := eligibility.ParseAnswers(s.Registry.Questions, req.Answers)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snap, err := s.loadSnapshot(c, requestLang(c))
	if err != nil {
		c.Logger().Errorf("Failed to load catalog: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	candidates := eligibility.MatchingPrograms(snap.Programs, ans, snap.LoadedAt)
	q, ok := eligibility.NextQuestion(snap.Questions, ans, candidates)
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"done":            true,
			"candidate_count": len(candidates),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"done":            false,
		"question":        q,
		"candidate_count": len(candidates),
	})
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) Start(port string) error {
	log.Printf("Listening on :%s", port)
	return s.Echo.Start(":" + port)
}
