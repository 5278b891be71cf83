package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
)

// RouterConfig carries what the router needs. Gatherer defaults to the
// global Prometheus registry.
type RouterConfig struct {
	Log      *logger.Logger
	Catalog  *core.Catalog
	Gatherer prometheus.Gatherer
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	catalog := NewCatalogHandler(log, cfg.Catalog)
	editor := NewEditorHandler(log, cfg.Catalog.Editor)
	assistant := NewAssistantHandler(log, cfg.Catalog.Assistant)

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	router.GET("/healthz", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/drugs", catalog.ListDrugs)
		api.GET("/drugs/:id", catalog.GetDrug)
		api.DELETE("/drugs/:id", catalog.DeleteDrug)
		api.GET("/symptoms", catalog.Symptoms)
		api.GET("/stats", catalog.Stats)
		api.GET("/settings", catalog.GetSettings)
		api.PUT("/settings", catalog.UpdateSettings)
		api.GET("/reminder", catalog.Reminder)

		api.POST("/assist", assistant.Assist)
		api.GET("/chat", assistant.Transcript)
		api.POST("/chat", assistant.Chat)
		api.DELETE("/chat", assistant.ClearChat)
	}

	sessions := api.Group("/editor/sessions")
	{
		sessions.POST("", editor.OpenSession)
		sessions.GET("/:sid/draft", editor.GetDraft)
		sessions.PUT("/:sid/draft", editor.UpdateDraft)
		sessions.POST("/:sid/prefill", editor.Prefill)
		sessions.POST("/:sid/symptoms", editor.AddSymptom)
		sessions.DELETE("/:sid/symptoms/:symptom", editor.RemoveSymptom)
		sessions.POST("/:sid/products", editor.AddProduct)
		sessions.PUT("/:sid/products/:idx", editor.UpdateProduct)
		sessions.DELETE("/:sid/products/:idx", editor.RemoveProduct)
		sessions.POST("/:sid/commit", editor.Commit)
		sessions.DELETE("/:sid", editor.Cancel)
	}
	return router
}
