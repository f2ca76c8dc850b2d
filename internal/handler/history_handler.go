package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"nuance/backend/internal/service"
)

type HistoryHandler struct {
	service service.HistoryService
}

type historyResponse struct {
	Groups []service.HistoryGroup `json:"groups"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func (h *HistoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/get_translations", h.GetTranslations)
	g.DELETE("/delete_translation/:id", h.DeleteTranslation)
}

// GetTranslations returns the owner's history grouped by month then date.
// @Summary Get translation history
// @Description Get the authenticated owner's translation history, newest first, grouped by month and date.
// @Tags history
// @Produce json
// @Success 200 {object} historyResponse
// @Failure 500 {object} errorResponse
// @Router /get_translations [get]
func (h *HistoryHandler) GetTranslations(c echo.Context) error {
	groups, err := h.service.List(c.Request().Context(), ownerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, historyResponse{Groups: groups})
}

// DeleteTranslation removes one of the owner's records.
// @Summary Delete a translation
// @Description Delete one translation record owned by the authenticated owner.
// @Tags history
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} deletedResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /delete_translation/{id} [delete]
func (h *HistoryHandler) DeleteTranslation(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}

	if err := h.service.Delete(c.Request().Context(), ownerID(c), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: true})
}
