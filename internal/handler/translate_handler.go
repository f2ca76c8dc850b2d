package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"nuance/backend/internal/service"
	"nuance/backend/internal/sse"
)

type TranslateHandler struct {
	pipeline service.PipelineService
}

// Request/Response types

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Translation    string `json:"translation"`
}

type translateOnlyResponse struct {
	Translation string  `json:"translation"`
	Timing      timings `json:"timing"`
}

type interpretResponse struct {
	Interpretation string  `json:"interpretation"`
	Timing         timings `json:"timing"`
}

type timings = service.Timing

func NewTranslateHandler(pipeline service.PipelineService) *TranslateHandler {
	return &TranslateHandler{pipeline: pipeline}
}

func (h *TranslateHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/translate", h.Translate)
	g.POST("/translate_only", h.TranslateOnly)
	g.POST("/interpret_stream", h.InterpretStream)
	g.POST("/interpret_and_save", h.InterpretAndSave)
}

func (h *TranslateHandler) bind(c echo.Context) (service.PipelineRequest, error) {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return service.PipelineRequest{}, err
	}
	return service.PipelineRequest{
		Text:           req.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Translation:    req.Translation,
	}, nil
}

// Translate runs the full dual-stage pipeline.
// @Summary Translate and interpret
// @Description Translate the text and produce a nuance interpretation, persisting the result.
// @Tags translate
// @Accept json
// @Produce json
// @Param request body translateRequest true "Translate request"
// @Success 200 {object} service.TranslateResult
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /translate [post]
func (h *TranslateHandler) Translate(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	result, err := h.pipeline.Translate(c.Request().Context(), ownerID(c), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// TranslateOnly runs the translation stage alone.
// @Summary Translate only
// @Description Translate the text without interpretation.
// @Tags translate
// @Accept json
// @Produce json
// @Param request body translateRequest true "Translate request"
// @Success 200 {object} translateOnlyResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /translate_only [post]
func (h *TranslateHandler) TranslateOnly(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	translation, elapsed, err := h.pipeline.TranslateOnly(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, translateOnlyResponse{
		Translation: translation,
		Timing:      timings{TranslationTime: elapsed, TotalTime: elapsed},
	})
}

// InterpretStream streams a nuance interpretation of a translation pair.
// @Summary Stream interpretation
// @Description Stream a nuance interpretation as server-sent events; the completed result is persisted in the background after the stream ends.
// @Tags translate
// @Accept json
// @Produce text/event-stream
// @Param request body translateRequest true "Interpret request"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} errorResponse
// @Router /interpret_stream [post]
func (h *TranslateHandler) InterpretStream(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	ctx := c.Request().Context()
	textCh, errCh, err := h.pipeline.InterpretStream(ctx, req)
	if err != nil {
		return writeServiceError(c, err)
	}

	// Headers are committed from here on; failures are signalled only via
	// the in-band error event.
	enc := sse.NewEncoder(c.Response())
	c.Response().WriteHeader(http.StatusOK)

	var fullText strings.Builder
	for {
		select {
		case fragment, ok := <-textCh:
			if !ok {
				select {
				case streamErr := <-errCh:
					if streamErr != nil {
						c.Logger().Errorf("interpret stream: %v", streamErr)
						_ = enc.Error(streamErr.Error())
						return nil
					}
				default:
				}

				_ = enc.Done()

				// Persistence is handed off only after the terminal event
				// so stream teardown never waits on storage.
				if fullText.Len() > 0 {
					h.pipeline.SaveResultAsync(ownerID(c), req, fullText.String())
				}
				return nil
			}

			fullText.WriteString(fragment)
			if err := enc.Content(fragment, fullText.String()); err != nil {
				// Client gone: stop emitting, nothing more to do.
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// InterpretAndSave runs a blocking interpretation and persists it.
// @Summary Interpret and save
// @Description Produce a nuance interpretation of a translation pair and persist the record inline.
// @Tags translate
// @Accept json
// @Produce json
// @Param request body translateRequest true "Interpret request"
// @Success 200 {object} interpretResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /interpret_and_save [post]
func (h *TranslateHandler) InterpretAndSave(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	interpretation, timing, err := h.pipeline.InterpretAndSave(c.Request().Context(), ownerID(c), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, interpretResponse{
		Interpretation: interpretation,
		Timing:         timing,
	})
}
