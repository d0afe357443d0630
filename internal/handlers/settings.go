package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/settings"
	"github.com/noh03/rtmsync/pkg/response"
)

// SettingsHandler serves the two JSON side files. Saves never fail from the
// view's perspective; a write problem is logged and the request still
// succeeds (the settings are cosmetic).
type SettingsHandler struct {
	presetsPath  string
	settingsPath string
}

func NewSettingsHandler(presetsPath, settingsPath string) *SettingsHandler {
	return &SettingsHandler{presetsPath: presetsPath, settingsPath: settingsPath}
}

func (h *SettingsHandler) GetPresets(c *gin.Context) {
	response.Success(c, settings.LoadPresets(h.presetsPath))
}

func (h *SettingsHandler) PutPresets(c *gin.Context) {
	var presets settings.Presets
	if err := c.ShouldBindJSON(&presets); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	settings.SavePresets(presets, h.presetsPath)
	response.Success(c, presets)
}

func (h *SettingsHandler) GetLocalSettings(c *gin.Context) {
	response.Success(c, settings.LoadLocalSettings(h.settingsPath))
}

func (h *SettingsHandler) PutLocalSettings(c *gin.Context) {
	s := settings.DefaultLocalSettings()
	if err := c.ShouldBindJSON(&s); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	settings.SaveLocalSettings(s, h.settingsPath)
	response.Success(c, s)
}
