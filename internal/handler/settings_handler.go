package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nuance/backend/internal/service"
)

type SettingsHandler struct {
	service service.SettingsService
}

// Request/Response types

type settingsRequest struct {
	ExplanationLanguage string `json:"explanationLanguage"`
	DedupHistory        bool   `json:"dedupHistory"`
	RateLimit           int    `json:"rateLimit"`
}

type providerTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.POST("/settings/provider/test", h.TestProvider)
}

// GetSettings returns the pipeline policies.
// @Summary Get settings
// @Description Get the runtime-tunable pipeline policies
// @Tags settings
// @Produce json
// @Success 200 {object} service.PipelineSettings
// @Failure 500 {object} errorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.service.GetSettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings stores the pipeline policies.
// @Summary Update settings
// @Description Update the runtime-tunable pipeline policies
// @Tags settings
// @Accept json
// @Produce json
// @Param request body settingsRequest true "Settings"
// @Success 200 {object} service.PipelineSettings
// @Failure 400 {object} errorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	settings := &service.PipelineSettings{
		ExplanationLanguage: req.ExplanationLanguage,
		DedupHistory:        req.DedupHistory,
		RateLimit:           req.RateLimit,
	}
	if err := h.service.UpdateSettings(c.Request().Context(), settings); err != nil {
		return writeServiceError(c, err)
	}

	updated, err := h.service.GetSettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// TestProvider checks connectivity to the generation provider.
// @Summary Test provider
// @Description Send a test message through the configured generation provider
// @Tags settings
// @Produce json
// @Success 200 {object} providerTestResponse
// @Router /settings/provider/test [post]
func (h *SettingsHandler) TestProvider(c echo.Context) error {
	reply, err := h.service.TestProvider(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, providerTestResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, providerTestResponse{Success: true, Message: reply})
}
