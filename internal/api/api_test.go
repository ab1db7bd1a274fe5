package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opensource-finance/harrier/internal/bus"
	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/linkstore"
	"github.com/opensource-finance/harrier/internal/pipeline"
)

const (
	testClientsCSV = "CustomerID,Name,PEP\nC-1,Alice Nguyen,yes\n"
	testTxCSV      = "transaction_id,client_id,date,amount,direction,method,counterparty_country\n" +
		"T-1,C-1,2025-03-01,25000,out,wire,RU\n" +
		"T-2,C-1,2025-03-02,1000,out,wire,RU\n"
)

func createTestServer() (*Server, *bus.ChannelBus) {
	cfg := *domain.DefaultConfig()

	pipe := pipeline.New(nil, nil)
	pipe.Now = func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) }

	store := linkstore.NewMemoryStore(16)
	busImpl := bus.NewChannelBus(16)

	return NewServer(cfg, pipe, store, busImpl, "test-v1"), busImpl
}

func multipartUpload(t *testing.T, clientsCSV, txCSV string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if clientsCSV != "" {
		fw, err := mw.CreateFormFile("clients", "roster.csv")
		if err != nil {
			t.Fatalf("failed to build form: %v", err)
		}
		fw.Write([]byte(clientsCSV))
	}
	if txCSV != "" {
		fw, err := mw.CreateFormFile("transactions", "ledger.csv")
		if err != nil {
			t.Fatalf("failed to build form: %v", err)
		}
		fw.Write([]byte(txCSV))
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	t.Run("SuccessfulUpload", func(t *testing.T) {
		server, busImpl := createTestServer()
		defer busImpl.Close()

		uploadEvents := make(chan *domain.Message, 1)
		caseEvents := make(chan *domain.Message, 4)
		busImpl.Subscribe(context.Background(), domain.TopicUploadCompleted, func(ctx context.Context, msg *domain.Message) error {
			uploadEvents <- msg
			return nil
		})
		busImpl.Subscribe(context.Background(), domain.TopicCaseFlagged, func(ctx context.Context, msg *domain.Message) error {
			caseEvents <- msg
			return nil
		})

		body, contentType := multipartUpload(t, testClientsCSV, testTxCSV)
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp UploadResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected token in response")
		}
		if resp.DownloadURL != "/bundles/"+resp.Token {
			t.Errorf("unexpected download URL %q", resp.DownloadURL)
		}
		if resp.ExpiresAt.IsZero() {
			t.Error("expected expiry in response")
		}
		if resp.Summary.Clients != 1 || resp.Summary.Transactions != 2 {
			t.Errorf("unexpected summary %+v", resp.Summary)
		}
		// PEP (capped 20) + corridor (20) = 40: one High band client, one corridor case.
		if resp.Summary.Bands[domain.BandHigh] != 1 {
			t.Errorf("expected 1 High client, got %v", resp.Summary.Bands)
		}
		if resp.Summary.Cases != 1 {
			t.Errorf("expected 1 case, got %d", resp.Summary.Cases)
		}
		if resp.Metadata.Version != "test-v1" {
			t.Errorf("expected version test-v1, got %s", resp.Metadata.Version)
		}

		select {
		case msg := <-uploadEvents:
			var evt struct {
				Token     string `json:"token"`
				RulesetID string `json:"rulesetId"`
			}
			json.Unmarshal(msg.Payload, &evt)
			if evt.Token != resp.Token {
				t.Errorf("expected upload event for token %s, got %s", resp.Token, evt.Token)
			}
		case <-time.After(time.Second):
			t.Error("upload event not published")
		}

		select {
		case msg := <-caseEvents:
			var evt struct {
				Type     string `json:"type"`
				ClientID string `json:"clientId"`
			}
			json.Unmarshal(msg.Payload, &evt)
			if evt.Type != domain.CaseCorridor || evt.ClientID != "C-1" {
				t.Errorf("unexpected case event %+v", evt)
			}
		case <-time.After(time.Second):
			t.Error("case event not published")
		}
	})

	t.Run("AdvertisedExpiryMatchesStore", func(t *testing.T) {
		cfg := *domain.DefaultConfig()
		pipe := pipeline.New(nil, nil)
		pipe.Now = func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) }
		store := linkstore.NewMemoryStore(16)
		busImpl := bus.NewChannelBus(16)
		defer busImpl.Close()
		server := NewServer(cfg, pipe, store, busImpl, "test-v1")

		body, contentType := multipartUpload(t, testClientsCSV, testTxCSV)
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("upload failed: %d %s", rr.Code, rr.Body.String())
		}

		var resp UploadResponse
		json.Unmarshal(rr.Body.Bytes(), &resp)

		entry, ok, err := store.Get(context.Background(), resp.Token)
		if err != nil || !ok {
			t.Fatalf("expected stored bundle for token %s", resp.Token)
		}
		if !entry.ExpiresAt.Equal(resp.ExpiresAt) {
			t.Errorf("advertised expiry %v differs from enforced expiry %v", resp.ExpiresAt, entry.ExpiresAt)
		}
	})

	t.Run("MissingClientsFile", func(t *testing.T) {
		server, busImpl := createTestServer()
		defer busImpl.Close()

		body, contentType := multipartUpload(t, "", testTxCSV)
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("UnparseableCSV", func(t *testing.T) {
		server, busImpl := createTestServer()
		defer busImpl.Close()

		body, contentType := multipartUpload(t, testClientsCSV, "a,b\n\"broken\n")
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("NotMultipart", func(t *testing.T) {
		server, busImpl := createTestServer()
		defer busImpl.Close()

		req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})
}

func TestDownloadEndpoints(t *testing.T) {
	server, busImpl := createTestServer()
	defer busImpl.Close()

	// Upload once, then fetch the bundle through both endpoints.
	body, contentType := multipartUpload(t, testClientsCSV, testTxCSV)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", rr.Code, rr.Body.String())
	}
	var uploaded UploadResponse
	json.Unmarshal(rr.Body.Bytes(), &uploaded)

	t.Run("DownloadZip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bundles/"+uploaded.Token, nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
			t.Errorf("expected application/zip, got %s", ct)
		}

		blob := rr.Body.Bytes()
		zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
		if err != nil {
			t.Fatalf("downloaded bundle not a zip: %v", err)
		}
		names := make(map[string]bool)
		for _, f := range zr.File {
			names[f.Name] = true
		}
		for _, want := range []string{
			domain.ArtifactClients, domain.ArtifactTransactions,
			domain.ArtifactCases, domain.ArtifactProgram, domain.ArtifactManifest,
		} {
			if !names[want] {
				t.Errorf("expected %s in bundle", want)
			}
		}
	})

	t.Run("ManifestAlone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bundles/"+uploaded.Token+"/manifest", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var m domain.Manifest
		if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		if m.Schema != domain.ManifestSchema {
			t.Errorf("unexpected schema %q", m.Schema)
		}
		if len(m.Files) != 4 {
			t.Errorf("expected 4 hashed files, got %d", len(m.Files))
		}
	})

	t.Run("UnknownToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bundles/nope", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})
}

func TestRulesetEndpoint(t *testing.T) {
	server, busImpl := createTestServer()
	defer busImpl.Close()

	req := httptest.NewRequest(http.MethodGet, "/ruleset", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var meta domain.RulesetMeta
	if err := json.Unmarshal(rr.Body.Bytes(), &meta); err != nil {
		t.Fatalf("failed to parse ruleset: %v", err)
	}
	if meta.ID != "aml-au-2025.06" {
		t.Errorf("unexpected ruleset id %q", meta.ID)
	}
	if meta.LookbackMonths != 18 {
		t.Errorf("unexpected lookback %d", meta.LookbackMonths)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, busImpl := createTestServer()
	defer busImpl.Close()

	t.Run("HealthCheck", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["status"] != "healthy" {
			t.Errorf("expected status 'healthy', got '%s'", resp["status"])
		}
		if resp["version"] != "test-v1" {
			t.Errorf("expected version 'test-v1', got '%s'", resp["version"])
		}
	})

	t.Run("DegradedWhenBusClosed", func(t *testing.T) {
		busImpl.Close()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["status"] != "degraded" {
			t.Errorf("expected status 'degraded', got '%s'", resp["status"])
		}
	})

	t.Run("ReadyCheck", func(t *testing.T) {
		server, busImpl := createTestServer()
		defer busImpl.Close()

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("TracingMiddlewareSetsRequestID", func(t *testing.T) {
		var capturedRequestID string

		handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v, ok := r.Context().Value(RequestIDKey).(string); ok {
				capturedRequestID = v
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if capturedRequestID == "" {
			t.Error("expected request ID to be set")
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID response header")
		}
	})

	t.Run("RecoverMiddlewareHandlesPanic", func(t *testing.T) {
		handler := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		// Should not panic
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rr.Code)
		}
	})
}
