package controller

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/itish2003/searchdoc/config"
	"github.com/itish2003/searchdoc/models"
	"github.com/itish2003/searchdoc/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Auth      SessionAuthenticator
	Analysis  services.AnalysisService
	RateLimit config.RateLimitConfig
	Limiters  LimiterStoreFactory
	Secure    bool
	Log       *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Limiters == nil {
		deps.Limiters = MemoryLimiterStores()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	loginLimit, err := RateLimit(deps.Limiters, "login", deps.RateLimit.Login)
	if err != nil {
		return nil, err
	}
	analyzeLimit, err := RateLimit(deps.Limiters, "analyze", deps.RateLimit.Analyze)
	if err != nil {
		return nil, err
	}

	authController := NewAuthController(deps.Auth, deps.Secure, deps.Log)
	analysisController := NewAnalysisController(deps.Analysis, deps.Log)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log), CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "OK", Message: "Server is running"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/login", authController.ShowLogin)
	router.POST("/login", loginLimit, authController.Login)
	router.GET("/logout", authController.Logout)

	router.GET("/", authController.RequireSession(false), authController.Index)
	router.POST("/analyze", analyzeLimit, authController.RequireSession(true), analysisController.Analyze)

	return router, nil
}
