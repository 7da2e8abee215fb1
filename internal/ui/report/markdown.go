// # internal/ui/report/markdown.go
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"steward/internal/data/cache"
)

func renderMarkdown(data Data) string {
	var b strings.Builder

	b.WriteString("---\n")
	b.WriteString("title: Scan Report\n")
	b.WriteString("root: " + data.Root + "\n")
	b.WriteString("run: " + data.RunID + "\n")
	b.WriteString("generated_at: " + data.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Scan Report\n\n")

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Files | %d |\n", data.TotalFiles)
	fmt.Fprintf(&b, "| Lines | %d |\n", data.TotalLOC)
	fmt.Fprintf(&b, "| Functions | %d |\n", data.TotalFunctions)
	fmt.Fprintf(&b, "| Unresolved Identifiers | %d |\n", data.TotalUnresolved)
	fmt.Fprintf(&b, "| Duration | %dms |\n\n", data.DurationMS)

	writeLanguages(&b, data.Languages)
	writeHotspots(&b, data.Hotspots)
	writeLargestFiles(&b, data.LargestFiles)
	writeHistory(&b, data.History)

	if len(data.Warnings) > 0 {
		b.WriteString("## Warnings\n")
		for _, w := range data.Warnings {
			fmt.Fprintf(&b, "- `%s`\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeLanguages(b *strings.Builder, stats []LanguageStat) {
	b.WriteString("## Languages\n")
	if len(stats) == 0 {
		b.WriteString("No analyzable files found.\n\n")
		return
	}
	b.WriteString("| Language | Files | LOC |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, stat := range stats {
		fmt.Fprintf(b, "| %s | %d | %d |\n", stat.Language, stat.Files, stat.LOC)
	}
	b.WriteString("\n")
}

func writeHotspots(b *strings.Builder, hotspots []Hotspot) {
	b.WriteString("## Complexity Hotspots\n")
	if len(hotspots) == 0 {
		b.WriteString("No functions found.\n\n")
		return
	}
	b.WriteString("| Function | Location | Complexity | LOC |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, h := range hotspots {
		fmt.Fprintf(b, "| `%s` | `%s:%d` | %d | %d |\n", h.Function, h.File, h.Line, h.Complexity, h.LOC)
	}
	b.WriteString("\n")
}

func writeLargestFiles(b *strings.Builder, files []FileStat) {
	b.WriteString("## Largest Files\n")
	if len(files) == 0 {
		b.WriteString("No analyzable files found.\n\n")
		return
	}
	b.WriteString("| File | LOC | Functions | Avg Complexity | Unresolved |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, f := range files {
		fmt.Fprintf(b, "| `%s` | %d | %d | %.2f | %d |\n", f.File, f.LOC, f.Functions, f.Complexity, f.Unresolved)
	}
	b.WriteString("\n")
}

func writeHistory(b *strings.Builder, history []cache.ScanRecord) {
	if len(history) == 0 {
		return
	}
	b.WriteString("## Recent Scans\n")
	b.WriteString("| Started | Files | LOC | Max Complexity | Duration |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, rec := range history {
		fmt.Fprintf(b, "| %s | %d | %d | %d | %dms |\n",
			rec.StartedAt.UTC().Format(time.RFC3339),
			rec.FileCount,
			rec.TotalLOC,
			rec.MaxComplexity,
			rec.Duration.Milliseconds())
	}
	b.WriteString("\n")
}

func renderJSON(data Data) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}
