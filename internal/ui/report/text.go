// # internal/ui/report/text.go
package report

import (
	"fmt"
	"strings"
)

func renderText(data Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan of %s\n", data.Root)
	fmt.Fprintf(&b, "run %s at %s in %dms\n\n",
		data.RunID,
		data.GeneratedAt.Format("2006-01-02 15:04:05"),
		data.DurationMS)

	fmt.Fprintf(&b, "Files:      %d\n", data.TotalFiles)
	fmt.Fprintf(&b, "Lines:      %d\n", data.TotalLOC)
	fmt.Fprintf(&b, "Functions:  %d\n", data.TotalFunctions)
	fmt.Fprintf(&b, "Unresolved: %d\n\n", data.TotalUnresolved)

	if len(data.Languages) > 0 {
		b.WriteString("Languages\n")
		for _, stat := range data.Languages {
			fmt.Fprintf(&b, "  %-14s %5d files %8d loc\n", stat.Language, stat.Files, stat.LOC)
		}
		b.WriteString("\n")
	}

	if len(data.Hotspots) > 0 {
		b.WriteString("Complexity hotspots\n")
		for _, h := range data.Hotspots {
			fmt.Fprintf(&b, "  %3d  %-30s %s:%d\n", h.Complexity, h.Function, h.File, h.Line)
		}
		b.WriteString("\n")
	}

	if len(data.LargestFiles) > 0 {
		b.WriteString("Largest files\n")
		for _, f := range data.LargestFiles {
			fmt.Fprintf(&b, "  %6d loc  %s", f.LOC, f.File)
			if f.Unresolved > 0 {
				fmt.Fprintf(&b, "  (%d unresolved)", f.Unresolved)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(data.History) > 0 {
		b.WriteString("Recent scans\n")
		for _, rec := range data.History {
			fmt.Fprintf(&b, "  %s  %5d files %8d loc  max complexity %d\n",
				rec.StartedAt.Format("2006-01-02 15:04:05"),
				rec.FileCount,
				rec.TotalLOC,
				rec.MaxComplexity)
		}
		b.WriteString("\n")
	}

	if len(data.Warnings) > 0 {
		fmt.Fprintf(&b, "%d file(s) skipped\n", len(data.Warnings))
		for _, w := range data.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	return b.String()
}
