package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/insight"
	"spendr/backend/internal/scoring"
	"spendr/backend/internal/store"
)

// DefaultAOV is used when neither the request nor the configuration supplies an order value.
const DefaultAOV = 150.0

// Config defines server dependencies.
type Config struct {
	DBPath         string
	DisableHistory bool
	SilentDB       bool
	AllowedOrigins []string
	DefaultAOV     float64
	LexiconPath    string
	AIConfig       insight.Config
	DisableAI      bool
	NarrateTimeout time.Duration
}

// Server wires HTTP handlers with the planners, persistence and narration.
type Server struct {
	db             *store.Database
	scorer         *scoring.AdScorer
	narrator       insight.Narrator
	notifier       *Notifier
	allowedOrigins []string
	defaultAOV     float64
	lexiconPath    string
	aiEnabled      bool
	narrateTimeout time.Duration
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	var db *store.Database
	if cfg.DisableHistory {
		logrus.Info("run history disabled via configuration")
	} else {
		if strings.TrimSpace(cfg.DBPath) == "" {
			return nil, errors.New("db path required")
		}
		opened, err := store.Open(cfg.DBPath, cfg.SilentDB)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	lexicon := scoring.DefaultLexicon()
	if path := strings.TrimSpace(cfg.LexiconPath); path != "" {
		loaded, err := scoring.LoadLexicon(path)
		if err != nil {
			return nil, fmt.Errorf("ad lexicon: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return nil, fmt.Errorf("ad lexicon: %w", err)
		}
		lexicon = loaded
		logrus.WithField("path", path).Info("loaded ad lexicon override")
	}

	var narrator insight.Narrator = insight.Template{}
	aiEnabled := false
	if cfg.DisableAI {
		logrus.Info("AI narrator disabled via configuration")
	} else if client, err := insight.NewClient(cfg.AIConfig); err == nil {
		narrator = insight.WithFallback(client, insight.Template{})
		aiEnabled = true
		logrus.WithField("model", cfg.AIConfig.Model).Info("AI narrator enabled")
	} else if errors.Is(err, insight.ErrDisabled) {
		logrus.Info("AI narrator disabled - no OpenAI key configured, using template narratives")
	} else {
		return nil, fmt.Errorf("ai client: %w", err)
	}

	aov := cfg.DefaultAOV
	if aov <= 0 {
		aov = DefaultAOV
	}
	timeout := cfg.NarrateTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Server{
		db:             db,
		scorer:         scoring.NewAdScorer(lexicon),
		narrator:       narrator,
		notifier:       NewNotifier(),
		allowedOrigins: cfg.AllowedOrigins,
		defaultAOV:     aov,
		lexiconPath:    strings.TrimSpace(cfg.LexiconPath),
		aiEnabled:      aiEnabled,
		narrateTimeout: timeout,
	}, nil
}

// Close releases the history database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/catalog", s.handleCatalog)
		api.POST("/allocate", s.handleAllocate)
		api.POST("/compare", s.handleCompare)
		api.POST("/ads/score", s.handleScoreAd)
		api.GET("/ads/stream", s.handleAdStream)
		api.GET("/plans", s.handleListPlans)
		api.GET("/plans/:id", s.handleGetPlan)
		api.GET("/evaluations", s.handleListEvaluations)
		api.GET("/evaluations/:id", s.handleGetEvaluation)
		api.DELETE("/history", s.handleClearHistory)
		api.GET("/export.csv", s.handleExportCSV)
		api.GET("/export.json", s.handleExportJSON)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	resp := gin.H{
		"default_aov":     s.defaultAOV,
		"history_enabled": s.db != nil,
		"ai_enabled":      s.aiEnabled,
		"lexicon_path":    s.lexiconPath,
		"stream_clients":  s.notifier.Count(),
	}
	if s.db != nil {
		plans, evaluations, err := s.db.Counts()
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		resp["plans"] = plans
		resp["evaluations"] = evaluations
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCatalog(c *gin.Context) {
	var resp CatalogResponse
	for _, industry := range allocation.Industries() {
		channels, err := allocation.Channels(industry)
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		resp.Industries = append(resp.Industries, CatalogIndustry{Industry: industry, Channels: channels})
	}
	for _, audience := range allocation.Audiences() {
		resp.Audiences = append(resp.Audiences, CatalogAudience{
			Audience:    audience,
			Multipliers: allocation.Multipliers(audience),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireHistory renders 503 and returns false when history is disabled.
func (s *Server) requireHistory(c *gin.Context) bool {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errors.New("run history is disabled"))
		return false
	}
	return true
}

func pagination(c *gin.Context, defaultSize int) (offset, limit int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > 500 {
		pageSize = 500
	}
	return page * pageSize, pageSize
}
