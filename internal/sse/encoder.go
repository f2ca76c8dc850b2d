// Package sse serializes incremental fragments and terminal events into a
// text/event-stream wire protocol: one `data: <JSON>` line per event.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrTerminated is returned when an event is written after the terminal
// done or error event.
var ErrTerminated = errors.New("stream already terminated")

type contentEvent struct {
	Content  string `json:"content"`
	FullText string `json:"full_text"`
}

type doneEvent struct {
	Done bool `json:"done"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// Encoder writes the event protocol to an HTTP response. Exactly one
// terminal event is emitted per stream; the encoder refuses anything
// after it.
type Encoder struct {
	w          http.ResponseWriter
	flusher    http.Flusher
	terminated bool
}

// NewEncoder prepares the response for streaming: event-stream content
// type, intermediary buffering and caching disabled.
func NewEncoder(w http.ResponseWriter) *Encoder {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: flusher}
}

// Content emits one incremental fragment along with the cumulative text.
func (e *Encoder) Content(fragment, fullText string) error {
	if e.terminated {
		return ErrTerminated
	}
	return e.write(contentEvent{Content: fragment, FullText: fullText})
}

// Done emits the terminal completion event.
func (e *Encoder) Done() error {
	if e.terminated {
		return ErrTerminated
	}
	e.terminated = true
	return e.write(doneEvent{Done: true})
}

// Error emits the terminal error event in place of Done.
func (e *Encoder) Error(message string) error {
	if e.terminated {
		return ErrTerminated
	}
	e.terminated = true
	return e.write(errorEvent{Error: message})
}

func (e *Encoder) write(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
