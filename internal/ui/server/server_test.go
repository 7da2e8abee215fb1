// # internal/ui/server/server_test.go
package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"steward/internal/core/config"
	"steward/internal/core/errors"
	"steward/internal/core/ports"
	"steward/internal/engine/metrics"
	"steward/internal/engine/treemap"
	"steward/internal/ui/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService implements ports.AnalysisService with overridable behavior
// per test.
type stubService struct {
	analysis    func(ctx context.Context) (*treemap.Node, error)
	refresh     func(ctx context.Context) (*treemap.Node, error)
	fileContent func(ctx context.Context, path string) ([]byte, error)
	overlay     func(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error)
	scopeGraph  func(ctx context.Context, req ports.ScopeGraphRequest) (*ports.ScopeGraphResult, error)
	functions   func(ctx context.Context, path string) (*metrics.FileMetrics, error)
}

func (s *stubService) Analysis(ctx context.Context) (*treemap.Node, error) {
	if s.analysis == nil {
		return treemap.New("root", treemap.TypeFolder, ""), nil
	}
	return s.analysis(ctx)
}

func (s *stubService) Refresh(ctx context.Context) (*treemap.Node, error) {
	if s.refresh == nil {
		return treemap.New("root", treemap.TypeFolder, ""), nil
	}
	return s.refresh(ctx)
}

func (s *stubService) FileContent(ctx context.Context, path string) ([]byte, error) {
	if s.fileContent == nil {
		return nil, errors.New(errors.CodeNotFound, "file not found")
	}
	return s.fileContent(ctx, path)
}

func (s *stubService) Overlay(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error) {
	if s.overlay == nil {
		return &ports.OverlayResult{}, nil
	}
	return s.overlay(ctx, req)
}

func (s *stubService) ScopeGraph(ctx context.Context, req ports.ScopeGraphRequest) (*ports.ScopeGraphResult, error) {
	if s.scopeGraph == nil {
		return &ports.ScopeGraphResult{}, nil
	}
	return s.scopeGraph(ctx, req)
}

func (s *stubService) Functions(ctx context.Context, path string) (*metrics.FileMetrics, error) {
	if s.functions == nil {
		return &metrics.FileMetrics{Path: path}, nil
	}
	return s.functions(ctx, path)
}

func (s *stubService) Close(ctx context.Context) error { return nil }

func newHandler(t *testing.T, svc *stubService) http.Handler {
	t.Helper()
	srv, err := server.New(config.Default().Server, svc)
	require.NoError(t, err)
	return srv.Handler()
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error, body.Code
}

func TestAnalysisRoute(t *testing.T) {
	svc := &stubService{
		analysis: func(ctx context.Context) (*treemap.Node, error) {
			root := treemap.New("root", treemap.TypeFolder, "/repo")
			file := treemap.New("main.ts", treemap.TypeFile, "/repo/main.ts")
			file.Metrics = treemap.Metrics{LOC: 12, Complexity: 2, FunctionCount: 1}
			root.Children = append(root.Children, file)
			return root, nil
		},
	}
	h := newHandler(t, svc)

	rec := get(h, "/api/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var node treemap.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &node))
	assert.Equal(t, "root", node.Name)
	assert.Equal(t, treemap.TypeFolder, node.Type)
	require.Len(t, node.Children, 1)
	assert.Equal(t, 12, node.Children[0].Metrics.LOC)
}

func TestRefreshRequiresPost(t *testing.T) {
	h := newHandler(t, &stubService{})

	rec := get(h, "/api/analysis/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/refresh", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFileContentRoute(t *testing.T) {
	svc := &stubService{
		fileContent: func(ctx context.Context, path string) ([]byte, error) {
			switch path {
			case "src/main.ts":
				return []byte("export const x = 1;\n"), nil
			case "dir":
				return nil, errors.New(errors.CodeValidationError, "path is not a file")
			case "boom":
				return nil, fmt.Errorf("disk on fire")
			default:
				return nil, errors.New(errors.CodeNotFound, "file not found")
			}
		},
	}
	h := newHandler(t, svc)

	rec := get(h, "/api/files/content?path=src/main.ts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "export const x = 1;\n", rec.Body.String())

	rec = get(h, "/api/files/content?path=missing.ts")
	require.Equal(t, http.StatusNotFound, rec.Code)
	msg, code := decodeError(t, rec)
	assert.Equal(t, "file not found", msg)
	assert.Equal(t, "NOT_FOUND", code)

	rec = get(h, "/api/files/content?path=dir")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Plain errors must not leak their message to the client.
	rec = get(h, "/api/files/content?path=boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	msg, code = decodeError(t, rec)
	assert.Equal(t, "internal error", msg)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestOverlayParams(t *testing.T) {
	var captured ports.OverlayRequest
	svc := &stubService{
		overlay: func(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error) {
			captured = req
			return &ports.OverlayResult{}, nil
		},
	}
	h := newHandler(t, svc)

	rec := get(h, "/api/overlay?path=src/a.ts&sliceStart=2&sliceEnd=9&focusStart=3&focusEnd=4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ports.OverlayRequest{
		Path:       "src/a.ts",
		SliceStart: 2,
		SliceEnd:   9,
		FocusStart: 3,
		FocusEnd:   4,
	}, captured)

	called := false
	svc.overlay = func(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error) {
		called = true
		return &ports.OverlayResult{}, nil
	}
	rec = get(h, "/api/overlay?path=src/a.ts&sliceStart=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	_, code := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
	assert.False(t, called, "service must not run on bad parameters")
}

func TestScopeGraphRoute(t *testing.T) {
	svc := &stubService{
		scopeGraph: func(ctx context.Context, req ports.ScopeGraphRequest) (*ports.ScopeGraphResult, error) {
			return &ports.ScopeGraphResult{FocusScopeID: fmt.Sprintf("scope_%d_%d", req.FocusStart, req.FocusEnd)}, nil
		},
	}
	h := newHandler(t, svc)

	rec := get(h, "/api/scopegraph?path=src/a.ts&focusStart=5&focusEnd=9")
	require.Equal(t, http.StatusOK, rec.Code)

	var result ports.ScopeGraphResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "scope_5_9", result.FocusScopeID)
}

func TestFunctionsRoute(t *testing.T) {
	svc := &stubService{
		functions: func(ctx context.Context, path string) (*metrics.FileMetrics, error) {
			return &metrics.FileMetrics{Path: path, Language: "typescript", NLOC: 30}, nil
		},
	}
	h := newHandler(t, svc)

	rec := get(h, "/api/functions?path=src/a.ts")
	require.Equal(t, http.StatusOK, rec.Code)

	var fm metrics.FileMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fm))
	assert.Equal(t, "src/a.ts", fm.Path)
	assert.Equal(t, 30, fm.NLOC)
}

func TestScanRoutesAreRateLimited(t *testing.T) {
	cfg := config.Default().Server
	cfg.RatePerSec = 0.001
	cfg.RateBurst = 1

	srv, err := server.New(cfg, &stubService{})
	require.NoError(t, err)
	h := srv.Handler()

	rec := get(h, "/api/analysis")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, "/api/analysis")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	_, code := decodeError(t, rec)
	assert.Equal(t, "RATE_LIMITED", code)

	// Unlimited routes keep working while the bucket is empty.
	rec = get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAPIDocumentServed(t *testing.T) {
	h := newHandler(t, &stubService{})

	rec := get(h, "/api/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.NotEmpty(t, doc.OpenAPI)
	assert.Contains(t, doc.Paths, "/api/analysis")
	assert.Contains(t, doc.Paths, "/api/overlay")
	assert.Contains(t, doc.Paths, "/api/scopegraph")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHandler(t, &stubService{})

	rec := get(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"up"}`, rec.Body.String())

	// The health request above went through the instrumented handler, so
	// the scrape must expose the request counter.
	rec = get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "steward_http_requests_total")
}
