package main

import (
	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/middleware"
	"github.com/noh03/rtmsync/pkg/logger"
)

// registerRoutes sets up the local API the desktop view talks to.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "rtmsync"})
	})

	api := r.Group("/api")
	{
		api.GET("/issues", svc.issues.List)
		api.POST("/issues", svc.issues.Create)
		api.GET("/issues/:id", svc.issues.Get)
		api.PUT("/issues/:id", svc.issues.Update)
		api.DELETE("/issues/:id", svc.issues.Delete)

		api.POST("/links", svc.links.Add)
		api.GET("/links/:key", svc.links.List)

		// sync fans out into remote calls; keep the view from hammering it
		sync := api.Group("/sync", middleware.Throttle(1, 2))
		{
			sync.POST("/pull", svc.sync.Pull)
			sync.POST("/push", svc.sync.Push)
		}
		api.GET("/jira/ping", svc.sync.Ping)

		api.POST("/excel/export", svc.excel.Export)
		api.POST("/excel/import", svc.excel.Import)

		api.GET("/settings/presets", svc.settings.GetPresets)
		api.PUT("/settings/presets", svc.settings.PutPresets)
		api.GET("/settings/local", svc.settings.GetLocalSettings)
		api.PUT("/settings/local", svc.settings.PutLocalSettings)

		// attachments are addressed by issue key, not table id
		api.POST("/attachments/:key", svc.attachments.Upload)
		api.GET("/attachments/:key", svc.attachments.List)
		api.GET("/attachments/:key/:name", svc.attachments.Download)
	}
}
