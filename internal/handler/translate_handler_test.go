package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"nuance/backend/internal/handler"
	"nuance/backend/internal/service"
)

// pipelineStub implements service.PipelineService for handler tests.
type pipelineStub struct {
	mu          sync.Mutex
	translateFn func(ctx context.Context, ownerID string, req service.PipelineRequest) (*service.TranslateResult, error)
	streamFn    func(ctx context.Context, req service.PipelineRequest) (<-chan string, <-chan error, error)
	saved       []string
	savedOwner  string
}

func (s *pipelineStub) Translate(ctx context.Context, ownerID string, req service.PipelineRequest) (*service.TranslateResult, error) {
	if s.translateFn != nil {
		return s.translateFn(ctx, ownerID, req)
	}
	return &service.TranslateResult{Translation: "안녕하세요", Interpretation: "인사말"}, nil
}

func (s *pipelineStub) TranslateOnly(ctx context.Context, req service.PipelineRequest) (string, float64, error) {
	return "안녕하세요", 0.1, nil
}

func (s *pipelineStub) InterpretStream(ctx context.Context, req service.PipelineRequest) (<-chan string, <-chan error, error) {
	if s.streamFn != nil {
		return s.streamFn(ctx, req)
	}
	textCh := make(chan string)
	errCh := make(chan error, 1)
	close(textCh)
	return textCh, errCh, nil
}

func (s *pipelineStub) InterpretAndSave(ctx context.Context, ownerID string, req service.PipelineRequest) (string, service.Timing, error) {
	return "인사말", service.Timing{}, nil
}

func (s *pipelineStub) SaveResultAsync(ownerID string, req service.PipelineRequest, interpretation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedOwner = ownerID
	s.saved = append(s.saved, interpretation)
}

func (s *pipelineStub) ExplanationLanguage(ctx context.Context) string { return "한국어" }

func (s *pipelineStub) savedInterpretations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.saved))
	copy(out, s.saved)
	return out
}

func newTranslateContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.OwnerContextKey, "owner-1")
	return c, rec
}

func TestTranslateHandler_Translate(t *testing.T) {
	stub := &pipelineStub{}
	h := handler.NewTranslateHandler(stub)

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어"}`)
	require.NoError(t, h.Translate(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"translation":"안녕하세요"`)
	require.Contains(t, rec.Body.String(), `"interpretation":"인사말"`)
}

func TestTranslateHandler_Translate_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: text is required", service.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: deadline", service.ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{fmt.Errorf("%w: 500", service.ErrUpstream), http.StatusBadGateway},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		stub := &pipelineStub{
			translateFn: func(ctx context.Context, ownerID string, req service.PipelineRequest) (*service.TranslateResult, error) {
				return nil, tc.err
			},
		}
		h := handler.NewTranslateHandler(stub)

		c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어"}`)
		require.NoError(t, h.Translate(c))
		require.Equal(t, tc.code, rec.Code, "error %v", tc.err)
	}
}

func TestTranslateHandler_InterpretStream_EventsAndBackgroundSave(t *testing.T) {
	stub := &pipelineStub{
		streamFn: func(ctx context.Context, req service.PipelineRequest) (<-chan string, <-chan error, error) {
			textCh := make(chan string, 2)
			errCh := make(chan error, 1)
			textCh <- "인사"
			textCh <- "말"
			close(textCh)
			return textCh, errCh, nil
		},
	}
	h := handler.NewTranslateHandler(stub)

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어","translation":"안녕하세요"}`)
	require.NoError(t, h.InterpretStream(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	events := strings.Split(strings.TrimRight(body, "\n"), "\n\n")
	require.Len(t, events, 3)
	require.Equal(t, `data: {"content":"인사","full_text":"인사"}`, events[0])
	require.Equal(t, `data: {"content":"말","full_text":"인사말"}`, events[1])
	require.Equal(t, `data: {"done":true}`, events[2])

	// The accumulated text is handed to the background save after the
	// terminal event.
	require.Eventually(t, func() bool {
		saved := stub.savedInterpretations()
		return len(saved) == 1 && saved[0] == "인사말"
	}, time.Second, 10*time.Millisecond)
}

func TestTranslateHandler_InterpretStream_ProviderError(t *testing.T) {
	stub := &pipelineStub{
		streamFn: func(ctx context.Context, req service.PipelineRequest) (<-chan string, <-chan error, error) {
			textCh := make(chan string, 1)
			errCh := make(chan error, 1)
			textCh <- "부분"
			errCh <- errors.New("stream interrupted")
			close(textCh)
			return textCh, errCh, nil
		},
	}
	h := handler.NewTranslateHandler(stub)

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어","translation":"안녕하세요"}`)
	require.NoError(t, h.InterpretStream(c))

	body := rec.Body.String()
	require.Contains(t, body, `data: {"error":"stream interrupted"}`)
	require.NotContains(t, body, `"done":true`, "error replaces the done event")
	require.Empty(t, stub.savedInterpretations(), "failed streams are not persisted")
}

func TestTranslateHandler_InterpretStream_InvalidBeforeHeaders(t *testing.T) {
	stub := &pipelineStub{
		streamFn: func(ctx context.Context, req service.PipelineRequest) (<-chan string, <-chan error, error) {
			return nil, nil, fmt.Errorf("%w: translation is required", service.ErrInvalid)
		},
	}
	h := handler.NewTranslateHandler(stub)

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어"}`)
	require.NoError(t, h.InterpretStream(c))

	// Validation failed before streaming started, so this is a plain JSON
	// error response, not an event stream.
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, echo.MIMEApplicationJSONCharsetUTF8, rec.Header().Get("Content-Type"))
}

func TestTranslateHandler_InterpretStream_EmptyStreamSkipsSave(t *testing.T) {
	stub := &pipelineStub{}
	h := handler.NewTranslateHandler(stub)

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어","translation":"안녕하세요"}`)
	require.NoError(t, h.InterpretStream(c))

	require.Contains(t, rec.Body.String(), `"done":true`)
	require.Empty(t, stub.savedInterpretations())
}

func TestTranslateHandler_TranslateOnly(t *testing.T) {
	h := handler.NewTranslateHandler(&pipelineStub{})

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어"}`)
	require.NoError(t, h.TranslateOnly(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"translation":"안녕하세요"`)
}

func TestTranslateHandler_InterpretAndSave(t *testing.T) {
	h := handler.NewTranslateHandler(&pipelineStub{})

	c, rec := newTranslateContext(t, `{"text":"Hello","source_language":"영어","target_language":"한국어","translation":"안녕하세요"}`)
	require.NoError(t, h.InterpretAndSave(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"interpretation":"인사말"`)
}
