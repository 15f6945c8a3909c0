// Package httpapi exposes the catalogs, screens, simulations and the
// auxiliary site features over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"afriqar/internal/catalog"
	"afriqar/internal/familytree"
	"afriqar/internal/logging"
	"afriqar/internal/screen"
	"afriqar/internal/simulation"
)

const apiPrefix = "/api/v1/"

// Resolver maps a resource name to its catalog.
type Resolver interface {
	Resource(name string) (catalog.Resource, error)
}

// Catalogs exposes the registered resources and the site sections.
type Catalogs interface {
	Resolver
	Resources() []catalog.Resource
	Sections() []catalog.Section
}

// Handler provides HTTP access to the site. Nil collaborators disable their routes.
type Handler struct {
	Catalogs    Catalogs
	Documents   catalog.Source // contact and gamification documents
	Screens     *screen.Registry
	Simulations *simulation.Instances
	FamilyTree  *familytree.Sessions
	Exports     ExportScheduler
	Metrics     http.Handler
	Vars        http.Handler
	Logger      *zap.Logger
	// LoadWait bounds how long a request waits for a catalog fetch before
	// answering with status loading.
	LoadWait time.Duration
}

// NewHandler constructs a handler over c.
func NewHandler(c Catalogs) *Handler {
	return &Handler{Catalogs: c, LoadWait: 2 * time.Second}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/metrics" && h.Metrics != nil:
		h.Metrics.ServeHTTP(w, r)
		return
	case path == "/debug/vars" && h.Vars != nil:
		h.Vars.ServeHTTP(w, r)
		return
	case !strings.HasPrefix(path+"/", apiPrefix):
		http.NotFound(w, r)
		return
	}
	if h.Catalogs == nil {
		writeError(w, http.StatusInternalServerError, "catalogs not configured")
		return
	}

	segments := strings.Split(strings.TrimPrefix(path, apiPrefix), "/")
	switch segments[0] {
	case "sections":
		h.handleSections(w, r, segments[1:])
	case "catalogs":
		h.handleCatalogs(w, r, segments[1:])
	case "screens":
		if h.Screens == nil {
			http.NotFound(w, r)
			return
		}
		h.handleScreens(w, r, segments[1:])
	case "simulations":
		if h.Simulations == nil {
			http.NotFound(w, r)
			return
		}
		h.handleSimulations(w, r, segments[1:])
	case "family-tree":
		if h.FamilyTree == nil {
			http.NotFound(w, r)
			return
		}
		h.handleFamilyTree(w, r, segments[1:])
	case "gamification":
		h.handleGamification(w, r, segments[1:])
	case "contact":
		h.handleContact(w, r, segments[1:])
	case "exports":
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, segments[1:])
	default:
		http.NotFound(w, r)
	}
}

// loadContext bounds the wait for a catalog fetch. ?wait= overrides the
// default; wait=0 answers immediately.
func (h *Handler) loadContext(r *http.Request) (context.Context, context.CancelFunc, error) {
	wait := h.LoadWait
	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, nil, badRequest("invalid wait %q", raw)
		}
		wait = d
	}
	ctx, cancel := context.WithTimeout(r.Context(), wait)
	return ctx, cancel, nil
}

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...)}
}

var errMethodNotAllowed = errors.New("method not allowed")

// decodeBody decodes an optional JSON body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid request payload: %v", err)
	}
	return nil
}

// writeErr maps domain errors onto status codes.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr     requestError
		missing    catalog.ErrNotFound
		noMember   familytree.ErrNotFound
		statusCode int
	)
	switch {
	case errors.Is(err, errMethodNotAllowed):
		statusCode = http.StatusMethodNotAllowed
	case errors.Is(err, catalog.ErrNotLoaded):
		writeJSON(w, http.StatusOK, map[string]any{"status": catalog.StatusLoading})
		return
	case errors.Is(err, catalog.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "catalog unavailable", "status": catalog.StatusFailed})
		return
	case errors.As(err, &reqErr),
		errors.Is(err, catalog.ErrUnknownDimension),
		errors.Is(err, catalog.ErrInvalidFilter),
		errors.Is(err, catalog.ErrUnknownSort),
		errors.Is(err, simulation.ErrUnknownKind),
		errors.Is(err, simulation.ErrNoSelection),
		errors.Is(err, simulation.ErrInvalidUpload),
		errors.Is(err, simulation.ErrInvalidSubmission),
		errors.Is(err, familytree.ErrInvalidMember):
		statusCode = http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnknownResource),
		errors.As(err, &missing),
		errors.As(err, &noMember),
		errors.Is(err, familytree.ErrSessionNotFound),
		errors.Is(err, catalog.ErrUnmounted),
		errors.Is(err, screen.ErrNotFound),
		errors.Is(err, simulation.ErrNotFound),
		errors.Is(err, simulation.ErrUnknownWord),
		errors.Is(err, simulation.ErrUnknownMatch):
		statusCode = http.StatusNotFound
	case errors.Is(err, simulation.ErrBusy),
		errors.Is(err, simulation.ErrLocked),
		errors.Is(err, simulation.ErrClosed):
		statusCode = http.StatusConflict
	case errors.Is(err, ErrQueueFull):
		statusCode = http.StatusServiceUnavailable
	default:
		logging.OrNop(h.Logger).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		statusCode = http.StatusInternalServerError
	}
	writeError(w, statusCode, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
