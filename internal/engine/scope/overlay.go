// # internal/engine/scope/overlay.go
package scope

// Token is one painted span of the editor overlay. Line is 1-based;
// columns are 0-based with EndCol exclusive, exactly as the usage was
// recorded.
type Token struct {
	Line     int      `json:"fileLine"`
	StartCol int      `json:"startCol"`
	EndCol   int      `json:"endCol"`
	Category Category `json:"category"`
	SymbolID string   `json:"symbolId"`
	Tooltip  string   `json:"tooltip"`
}

// TokenOverlay projects the resolved usages onto a flat token list. Only
// usages whose line falls inside both the coarse slice range and the focus
// range survive; the ranges are clamped to the file before filtering.
// Always returns a non-nil slice so the empty case serializes as [].
func TokenOverlay(a *Analysis, sliceStart, sliceEnd, focusStart, focusEnd int, builtins BuiltinRegistry) []Token {
	tokens := make([]Token, 0)
	if a == nil || a.Tree == nil || a.Tree.Len() == 0 {
		return tokens
	}
	total := a.Tree.Root().EndLine
	sliceStart, sliceEnd = clampRange(sliceStart, sliceEnd, total)
	focusStart, focusEnd = clampRange(focusStart, focusEnd, total)
	focus := FocusScope(a.Tree, focusStart, focusEnd)

	for _, u := range a.Usages {
		if u.Line < sliceStart || u.Line > sliceEnd {
			continue
		}
		if u.Line < focusStart || u.Line > focusEnd {
			continue
		}
		if u.EndCol <= u.StartCol {
			continue
		}
		category, id, tooltip := Classify(a.Tree, u, focus, builtins)
		tokens = append(tokens, Token{
			Line:     u.Line,
			StartCol: u.StartCol,
			EndCol:   u.EndCol,
			Category: category,
			SymbolID: id,
			Tooltip:  tooltip,
		})
	}
	return tokens
}

func clampRange(start, end, total int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	if total > 0 {
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
	}
	return start, end
}
