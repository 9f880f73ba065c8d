// Package enhance turns raw meeting notes into structured minutes, either
// with a hosted language model or with a local heuristic formatter.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"churchadmin/internal/metrics"
	"churchadmin/internal/models"
)

var (
	// ErrNoNotes is returned when there is nothing to enhance.
	ErrNoNotes = errors.New("no notes provided")
	// ErrNotConfigured is returned when no model backend is set up.
	ErrNotConfigured = errors.New("AI enhancement is not configured")
)

// Request is the body of an enhancement request.
type Request struct {
	AgendaTitle string `json:"agendaTitle"`
	RawNotes    string `json:"rawNotes"`
}

// Validate rejects blank notes.
func (r Request) Validate() error {
	if strings.TrimSpace(r.RawNotes) == "" {
		return ErrNoNotes
	}
	return nil
}

// Enhancer produces formatted minutes for one agenda item or a whole meeting.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (string, error)
	Name() string
}

// UpstreamError reports a failure from the model backend with the HTTP
// status that should be passed on to the client.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusFor maps an upstream status to the status and message returned to
// the client.
func StatusFor(status int) (int, string) {
	switch status {
	case http.StatusServiceUnavailable:
		return http.StatusServiceUnavailable, "Model is loading, please try again in a moment"
	case http.StatusNotFound, http.StatusGone:
		return http.StatusGone, "AI models are currently unavailable. The service will use intelligent formatting instead."
	case 0:
		return http.StatusInternalServerError, "AI service error. Using fallback formatting."
	}
	if status < 400 {
		status = http.StatusInternalServerError
	}
	return status, fmt.Sprintf("AI service error: %d. Using fallback formatting.", status)
}

// summaryMarker separates agenda items in whole-meeting notes.
const summaryMarker = "**:\n"

// IsOverallSummary reports whether notes span several agenda items, as
// produced by JoinAgenda.
func IsOverallSummary(notes string) bool {
	return strings.Contains(notes, summaryMarker)
}

// JoinAgenda builds whole-meeting notes from the agenda items that have
// notes, one "**Title**:" heading per item.
func JoinAgenda(items []models.AgendaItem) string {
	var b strings.Builder
	for _, item := range items {
		notes := strings.TrimSpace(item.RawNotes)
		if notes == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**%s%s%s", strings.TrimSpace(item.Title), summaryMarker, notes)
	}
	return b.String()
}

// Fallback tries primary and falls back to secondary on any error.
type Fallback struct {
	Primary   Enhancer
	Secondary Enhancer
	Logger    *slog.Logger
}

// NewFallback wraps primary so that failures are served by secondary.
// A nil primary always uses secondary.
func NewFallback(primary, secondary Enhancer, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{Primary: primary, Secondary: secondary, Logger: logger}
}

func (f *Fallback) Name() string {
	if f.Primary == nil {
		return f.Secondary.Name()
	}
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f *Fallback) Enhance(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if f.Primary != nil {
		out, err := f.Primary.Enhance(ctx, req)
		metrics.Enhancements.WithLabelValues(f.Primary.Name(), metrics.Result(err)).Inc()
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.Logger.Warn("AI enhancement failed, using fallback formatting",
			"backend", f.Primary.Name(), "agenda", req.AgendaTitle, "error", err)
	}
	out, err := f.Secondary.Enhance(ctx, req)
	metrics.Enhancements.WithLabelValues(f.Secondary.Name(), metrics.Result(err)).Inc()
	return out, err
}
