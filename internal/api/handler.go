package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/pipeline"
	"github.com/opensource-finance/harrier/internal/rules"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	pipe           *pipeline.Pipeline
	store          domain.LinkStore
	bus            domain.EventBus
	ttl            time.Duration
	maxUploadBytes int64
	version        string
}

// NewHandler creates a new API handler.
func NewHandler(pipe *pipeline.Pipeline, store domain.LinkStore, bus domain.EventBus, ttl time.Duration, maxUploadBytes int64, version string) *Handler {
	return &Handler{
		pipe:           pipe,
		store:          store,
		bus:            bus,
		ttl:            ttl,
		maxUploadBytes: maxUploadBytes,
		version:        version,
	}
}

// UploadResponse is the response for POST /uploads.
type UploadResponse struct {
	Token       string           `json:"token"`
	DownloadURL string           `json:"downloadUrl"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	Summary     pipeline.Summary `json:"summary"`
	Metadata    struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
	} `json:"metadata"`
}

// uploadEvent is the payload published on upload completion.
type uploadEvent struct {
	Token     string           `json:"token"`
	TraceID   string           `json:"traceId"`
	Summary   pipeline.Summary `json:"summary"`
	RulesetID string           `json:"rulesetId"`
}

// caseEvent is the payload published per flagged case.
type caseEvent struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
	Rule     string `json:"rule"`
}

// Upload handles POST /uploads: runs the full pipeline over the multipart
// roster and ledger, stores the zipped bundle under a fresh token, and
// returns the download link with a run summary.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	traceID := GetTraceID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid multipart request body",
		})
		return
	}

	clientsFile, _, err := r.FormFile("clients")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "clients file is required",
		})
		return
	}
	defer clientsFile.Close()

	txFile, _, err := r.FormFile("transactions")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "transactions file is required",
		})
		return
	}
	defer txFile.Close()

	res, err := h.pipe.RunCSV(ctx, clientsFile, txFile)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	b, err := h.pipe.Package(res)
	if err != nil {
		slog.Error("bundle packaging failed", "trace_id", traceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to package bundle",
		})
		return
	}

	// One timestamp serves both the advertised and the enforced expiry.
	token := uuid.New().String()
	now := time.Now().UTC()
	entry := &domain.LinkEntry{
		Archive:   b.Archive,
		Manifest:  b.Manifest,
		CreatedAt: now,
		ExpiresAt: now.Add(h.ttl),
	}
	if err := h.store.Put(ctx, token, entry, h.ttl); err != nil {
		slog.Error("failed to store bundle", "trace_id", traceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to store bundle",
		})
		return
	}

	summary := pipeline.Summarize(res)
	h.publishEvents(r, token, traceID, summary, res.Cases)

	resp := UploadResponse{
		Token:       token,
		DownloadURL: "/bundles/" + token,
		ExpiresAt:   entry.ExpiresAt,
		Summary:     summary,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.TotalMs = time.Since(start).Milliseconds()
	resp.Metadata.Version = h.version

	writeJSON(w, http.StatusOK, resp)
}

// publishEvents emits the upload-completed event and one flagged-case event
// per case. Publish errors are logged, never surfaced.
func (h *Handler) publishEvents(r *http.Request, token, traceID string, summary pipeline.Summary, caseList []domain.Case) {
	if h.bus == nil {
		return
	}
	ctx := r.Context()

	if payload, err := json.Marshal(uploadEvent{
		Token:     token,
		TraceID:   traceID,
		Summary:   summary,
		RulesetID: rules.RulesetID,
	}); err == nil {
		if err := h.bus.Publish(ctx, domain.TopicUploadCompleted, payload); err != nil {
			slog.Warn("failed to publish upload event", "error", err)
		}
	}

	for _, c := range caseList {
		payload, err := json.Marshal(caseEvent{
			Token:    token,
			Type:     c.Type,
			ClientID: c.ClientID,
			Rule:     c.Rule,
		})
		if err != nil {
			continue
		}
		if err := h.bus.Publish(ctx, domain.TopicCaseFlagged, payload); err != nil {
			slog.Warn("failed to publish case event",
				"client_id", c.ClientID,
				"case_type", c.Type,
				"error", err,
			)
		}
	}
}

// Download handles GET /bundles/{token}, streaming the zip archive.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="harrier-bundle-%s.zip"`, token))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(entry.Archive)))
	w.WriteHeader(http.StatusOK)
	w.Write(entry.Archive)
}

// BundleManifest handles GET /bundles/{token}/manifest, serving the
// manifest alone so verifiers need not download the archive.
func (h *Handler) BundleManifest(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry.Manifest)
}

// lookup resolves the token path parameter against the link store, writing
// the error response when the bundle is absent or expired.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*domain.LinkEntry, bool) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "bundle token is required",
		})
		return nil, false
	}

	entry, ok, err := h.store.Get(r.Context(), token)
	if err != nil {
		slog.Error("failed to read link store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to read bundle store",
		})
		return nil, false
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "bundle not found or expired",
		})
		return nil, false
	}
	return entry, true
}

// Ruleset returns the fixed ruleset metadata applied to every upload.
func (h *Handler) Ruleset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rules.Meta())
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
