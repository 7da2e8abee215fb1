// # internal/ui/report/report.go
// Package report renders a completed scan as text, markdown, or JSON for
// the one-shot CLI mode: complexity hotspots, the largest files, unresolved
// identifier totals, and the per-language breakdown.
package report

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"steward/internal/core/app"
	"steward/internal/core/errors"
	"steward/internal/data/cache"
	"steward/internal/engine/metrics"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

const (
	topHotspots = 10
	topFiles    = 10
)

// Data is the format-independent report content assembled from a snapshot.
type Data struct {
	RunID       string        `json:"runId"`
	Root        string        `json:"root"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"durationMs"`

	TotalFiles      int `json:"totalFiles"`
	TotalLOC        int `json:"totalLoc"`
	TotalFunctions  int `json:"totalFunctions"`
	TotalUnresolved int `json:"totalUnresolved"`

	Languages    []LanguageStat     `json:"languages"`
	Hotspots     []Hotspot          `json:"hotspots"`
	LargestFiles []FileStat         `json:"largestFiles"`
	History      []cache.ScanRecord `json:"history,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// LanguageStat aggregates file count and LOC per registered language.
type LanguageStat struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
	LOC      int    `json:"loc"`
}

// Hotspot is one function ranked by cyclomatic complexity.
type Hotspot struct {
	File       string `json:"file"`
	Function   string `json:"function"`
	Line       int    `json:"line"`
	Complexity int    `json:"complexity"`
	LOC        int    `json:"loc"`
}

// FileStat is one file ranked by size.
type FileStat struct {
	File       string  `json:"file"`
	LOC        int     `json:"loc"`
	Functions  int     `json:"functions"`
	Complexity float64 `json:"complexity"`
	Unresolved int     `json:"unresolved"`
}

// FromSnapshot flattens a snapshot into report data. History rows are
// optional and come from the metric cache when it is enabled.
func FromSnapshot(snap *app.Snapshot, history []cache.ScanRecord) Data {
	data := Data{
		RunID:       snap.RunID,
		Root:        snap.Root,
		GeneratedAt: snap.StartedAt,
		Duration:    snap.Duration,
		DurationMS:  snap.Duration.Milliseconds(),
		History:     history,
		Warnings:    snap.Warnings,
	}

	languages := make(map[string]*LanguageStat)
	var hotspots []Hotspot
	var files []FileStat

	for path, fm := range snap.Files {
		rel := relPath(snap.Root, path)

		data.TotalFiles++
		data.TotalLOC += fm.NLOC
		data.TotalFunctions += fm.FunctionCount
		data.TotalUnresolved += fm.UnresolvedCount

		stat, ok := languages[fm.Language]
		if !ok {
			stat = &LanguageStat{Language: fm.Language}
			languages[fm.Language] = stat
		}
		stat.Files++
		stat.LOC += fm.NLOC

		files = append(files, FileStat{
			File:       rel,
			LOC:        fm.NLOC,
			Functions:  fm.FunctionCount,
			Complexity: fm.AvgComplexity,
			Unresolved: fm.UnresolvedCount,
		})

		collectHotspots(rel, "", fm.Functions, &hotspots)
	}

	for _, stat := range languages {
		data.Languages = append(data.Languages, *stat)
	}
	sort.Slice(data.Languages, func(i, j int) bool {
		a, b := data.Languages[i], data.Languages[j]
		if a.Files != b.Files {
			return a.Files > b.Files
		}
		if a.LOC != b.LOC {
			return a.LOC > b.LOC
		}
		return a.Language < b.Language
	})

	sort.Slice(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.Complexity != b.Complexity {
			return a.Complexity > b.Complexity
		}
		if a.LOC != b.LOC {
			return a.LOC > b.LOC
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	if len(hotspots) > topHotspots {
		hotspots = hotspots[:topHotspots]
	}
	data.Hotspots = hotspots

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.LOC != b.LOC {
			return a.LOC > b.LOC
		}
		return a.File < b.File
	})
	if len(files) > topFiles {
		files = files[:topFiles]
	}
	data.LargestFiles = files

	return data
}

// collectHotspots walks the entry tree. Only function entries rank; the
// container kinds exist for nesting and carry no own complexity. Nested
// functions keep their container path so "handler" inside a class stays
// distinguishable.
func collectHotspots(file, prefix string, entries []*metrics.FunctionMetrics, out *[]Hotspot) {
	for _, entry := range entries {
		name := entry.Name
		if prefix != "" {
			name = prefix + "." + name
		}
		if entry.Kind == metrics.KindFunction {
			*out = append(*out, Hotspot{
				File:       file,
				Function:   name,
				Line:       entry.StartLine,
				Complexity: entry.Complexity,
				LOC:        entry.NLOC,
			})
		}
		collectHotspots(file, name, entry.Children, out)
	}
}

// Render dispatches on the format name the CLI flag carries.
func Render(format string, data Data) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return renderText(data), nil
	case FormatMarkdown, "md":
		return renderMarkdown(data), nil
	case FormatJSON:
		return renderJSON(data)
	default:
		return "", errors.Newf(errors.CodeValidationError, "unknown report format %q", format)
	}
}

func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
