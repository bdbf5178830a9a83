package api

import (
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-etl-builder/docs"
	"go-etl-builder/internal/api/handler"
	"go-etl-builder/internal/metrics"
	"go-etl-builder/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler, m *metrics.Metrics) {
	r.Observe(func(method string, status int, _ time.Duration) {
		m.RequestServed(method, status)
	})

	r.GET("/health", h.Health)
	r.Handle("/metrics", m.Handler())
	r.GET("/swagger/*", httpSwagger.WrapHandler.ServeHTTP)

	r.POST("/api/v1/sources", h.UploadSource)
	r.GET("/api/v1/sources", h.ListSources)
	r.POST("/api/v1/sources/delete", h.DeleteSources)

	r.POST("/api/v1/sources/*/open", h.OpenSource)
	r.POST("/api/v1/sources/*/validate", h.ValidateSource)
	r.POST("/api/v1/sources/*/clean/drop-null-rows", h.DropNullRows)
	r.POST("/api/v1/sources/*/clean/drop-columns", h.DropColumns)
	r.POST("/api/v1/sources/*/save", h.SaveSource)
	r.GET("/api/v1/sources/*/download", h.DownloadSource)
	r.GET("/api/v1/sources/*/pipeline", h.GetPipeline)
	r.POST("/api/v1/sources/*/export-config", h.ExportConfig)
	r.POST("/api/v1/sources/*/replay", h.ReplayPipeline)
	r.POST("/api/v1/sources/*/load", h.LoadSource)

	r.GET("/api/v1/tables", h.ListTables)
	// More specific routes first
	r.GET("/api/v1/tables/*/preview", h.TablePreview)
	r.GET("/api/v1/tables/*/visualize", h.TableVisualize)
	// Generic table route last
	r.GET("/api/v1/tables/*", h.TableRecords)
}
