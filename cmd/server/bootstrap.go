package main

import (
	"github.com/noh03/rtmsync/internal/attachments"
	"github.com/noh03/rtmsync/internal/config"
	"github.com/noh03/rtmsync/internal/handlers"
	"github.com/noh03/rtmsync/internal/jira"
	"github.com/noh03/rtmsync/internal/models"
	"github.com/noh03/rtmsync/internal/settings"
	"github.com/noh03/rtmsync/pkg/logger"
)

// appServices holds the initialized handlers; everything is constructed once
// here and passed down explicitly, no package-level singletons.
type appServices struct {
	issues      *handlers.IssueHandler
	links       *handlers.LinkHandler
	sync        *handlers.SyncHandler
	excel       *handlers.ExcelHandler
	settings    *handlers.SettingsHandler
	attachments *handlers.AttachmentHandler
}

func bootstrap(cfg *config.Config) *appServices {
	db, err := models.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	client := jira.NewClient(&cfg.Jira)

	local := settings.LoadLocalSettings("local_settings.json")
	store := attachments.NewStore(local.Attachments.RootDir)

	return &appServices{
		issues:      handlers.NewIssueHandler(db),
		links:       handlers.NewLinkHandler(db),
		sync:        handlers.NewSyncHandler(db, client, cfg.Jira.ProjectID),
		excel:       handlers.NewExcelHandler(db),
		settings:    handlers.NewSettingsHandler("field_presets.json", "local_settings.json"),
		attachments: handlers.NewAttachmentHandler(store),
	}
}
