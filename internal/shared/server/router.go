package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nextcv/internal/analyses"
	"nextcv/internal/llm/provider"
	"nextcv/internal/services/health"
	"nextcv/internal/shared/config"
	"nextcv/internal/shared/metrics"
	"nextcv/internal/shared/server/middleware"
	"nextcv/internal/shared/util"
)

const (
	rateGroupAnalysis = "ANALYSIS"
	rateGroupExtract  = "EXTRACT"
)

// NewRouter builds the configured completion gateway and the Gin engine.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	gateway, err := provider.NewGateway(cfg.LLM)
	if err != nil {
		return nil, err
	}
	svc := analyses.NewService(gateway, gateway.Provider(), cfg.AnalysisMaxAttempts)
	return NewEngine(cfg, svc), nil
}

// NewEngine constructs the Gin engine with middleware and routes registered.
func NewEngine(cfg config.Config, svc *analyses.Service) *gin.Engine {
	gin.SetMode(ginMode(cfg.Env))
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	healthSvc := health.NewService(cfg.LLM)
	analysisHandler := analyses.NewHandler(svc, analyses.HandlerOptions{
		DefaultCredential: cfg.LLM.APIKey(),
		MaxUploadBytes:    cfg.MaxUploadBytes,
		Timeout:           cfg.LLM.Timeout(),
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, healthSvc.Status())
	})

	limited := api.Group("", middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup:   rateGroupAnalysis,
		GroupFor:       rateGroupFor,
		PrincipalFor:   callerKey,
		ClientIPFactor: clientIPFactor,
		Rules: map[string]middleware.RateLimitRule{
			rateGroupAnalysis: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			rateGroupExtract:  {Rate: cfg.RateLimitRPS * 5, Burst: cfg.RateLimitBurst * 2},
		},
	}))
	analysisHandler.RegisterRoutes(limited)

	return r
}

func rateGroupFor(c *gin.Context) string {
	if strings.HasSuffix(c.FullPath(), "/extract") {
		return rateGroupExtract
	}
	return rateGroupAnalysis
}

// clientIPFactor caps all keys seen from one address at this multiple of a
// single key's budget.
const clientIPFactor = 4

// callerKey buckets callers by the fingerprint of their completion key so
// that callers behind one proxy do not share a budget.
func callerKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(analyses.CredentialHeader)); key != "" {
		return "key:" + util.Fingerprint(key)
	}
	return ""
}

func ginMode(env string) string {
	switch env {
	case "dev":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
