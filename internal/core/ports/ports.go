// # internal/core/ports/ports.go

// Package ports defines the boundary between the application core and its
// driving adapters (HTTP server, CLI, watch TUI). Adapters depend on
// these interfaces; the app package provides them.
package ports

import (
	"context"

	"steward/internal/engine/metrics"
	"steward/internal/engine/scope"
	"steward/internal/engine/treemap"
)

// OverlayRequest selects the viewport and focus for a token overlay.
// Line numbers are 1-based and inclusive; zero values mean "whole file".
type OverlayRequest struct {
	Path       string
	SliceStart int
	SliceEnd   int
	FocusStart int
	FocusEnd   int
}

// OverlayResult pairs the painted tokens with the focus projection.
type OverlayResult struct {
	Tokens []scope.Token    `json:"tokens"`
	Focus  *scope.FocusTree `json:"focus"`
}

// ScopeGraphRequest selects the file and focus for a scope graph.
type ScopeGraphRequest struct {
	Path       string
	FocusStart int
	FocusEnd   int
}

// ScopeGraphResult carries the rendered cluster graph plus the id of the
// cluster the focus range lands in, so clients can highlight it.
type ScopeGraphResult struct {
	Graph        *scope.GraphNode `json:"graph"`
	FocusScopeID string           `json:"focusScopeId"`
}

// AnalysisService is the operation surface the frontends drive. Every
// method is safe for concurrent use.
type AnalysisService interface {
	// Analysis returns the current treemap, scanning first when no scan
	// has completed yet.
	Analysis(ctx context.Context) (*treemap.Node, error)
	// Refresh forces a full rescan and returns the new treemap.
	Refresh(ctx context.Context) (*treemap.Node, error)
	// FileContent serves one file's raw bytes, confined to the scanned root.
	FileContent(ctx context.Context, path string) ([]byte, error)
	// Overlay computes the token overlay and focus tree for one file.
	Overlay(ctx context.Context, req OverlayRequest) (*OverlayResult, error)
	// ScopeGraph renders the nested scope clusters for one file.
	ScopeGraph(ctx context.Context, req ScopeGraphRequest) (*ScopeGraphResult, error)
	// Functions returns the per-function metrics for one file.
	Functions(ctx context.Context, path string) (*metrics.FileMetrics, error)
	// Close releases held resources.
	Close(ctx context.Context) error
}
