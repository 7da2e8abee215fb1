// # internal/engine/resolver/builtins.go
package resolver

// BuiltinSet answers whether a free identifier is a platform global rather
// than a project symbol. The default set covers the JS/TS standard library,
// web APIs, and Node globals; configuration can extend it per project.
type BuiltinSet struct {
	names map[string]bool
}

func NewBuiltinSet(extra ...string) *BuiltinSet {
	s := &BuiltinSet{names: make(map[string]bool, len(defaultBuiltins)+len(extra))}
	for _, name := range defaultBuiltins {
		s.names[name] = true
	}
	for _, name := range extra {
		if name != "" {
			s.names[name] = true
		}
	}
	return s
}

func (s *BuiltinSet) IsBuiltin(name string) bool { return s.names[name] }

var defaultBuiltins = []string{
	// Language builtins
	"console", "Math", "JSON", "Promise", "Array", "String", "Number",
	"Boolean", "Date", "RegExp", "Set", "Map", "WeakMap", "WeakSet",
	"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError",
	"URIError", "Symbol", "BigInt", "Intl", "Proxy", "Reflect", "Atomics",
	"DataView", "ArrayBuffer", "SharedArrayBuffer", "AggregateError",
	"FinalizationRegistry", "WeakRef",
	// Typed arrays
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array",
	"Uint16Array", "Int32Array", "Uint32Array", "Float32Array",
	"Float64Array", "BigInt64Array", "BigUint64Array",
	// Fetch and streams
	"fetch", "Request", "Response", "Headers", "URL", "URLSearchParams",
	"ReadableStream", "WritableStream", "TransformStream", "TextEncoder",
	"TextDecoder",
	// Environment globals
	"window", "document", "globalThis", "process", "Buffer", "navigator",
	"location", "history", "screen", "frames", "performance",
	"structuredClone", "queueMicrotask", "requestIdleCallback",
	"cancelIdleCallback",
	// DOM and web APIs
	"Object", "requestAnimationFrame", "cancelAnimationFrame",
	"localStorage", "sessionStorage", "confirm", "alert", "prompt",
	"Node", "NodeFilter", "HTMLElement", "Element", "Event", "CustomEvent",
	"CSS", "IntersectionObserver", "ResizeObserver", "MutationObserver",
	"AbortController", "AbortSignal", "Crypto", "crypto", "indexedDB",
	"ShadowRoot", "DocumentFragment", "setTimeout", "clearTimeout",
	"setInterval", "clearInterval",
	// Node.js commons
	"require", "module", "exports", "__dirname", "__filename",
	// Constants
	"undefined", "NaN", "Infinity",
}
