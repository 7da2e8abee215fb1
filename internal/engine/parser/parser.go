package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"steward/internal/core/errors"
	"steward/internal/shared/observability"
	"steward/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader         *GrammarLoader
	extensions     map[string]string
	scopeLanguages map[string]bool
	testFileSuffix []string
}

// Source is one parsed file. It owns the tree-sitter tree; callers must
// Close it when done.
type Source struct {
	Path     string
	Language string
	Content  []byte
	tree     *sitter.Tree
}

func (s *Source) Root() *sitter.Node {
	if s == nil || s.tree == nil {
		return nil
	}
	return s.tree.RootNode()
}

func (s *Source) Close() {
	if s != nil && s.tree != nil {
		s.tree.Close()
		s.tree = nil
	}
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:         loader,
		extensions:     make(map[string]string),
		scopeLanguages: make(map[string]bool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		if spec.ScopeRules {
			p.scopeLanguages[lang] = true
		}
		p.testFileSuffix = append(p.testFileSuffix, spec.TestFileSuffixes...)
	}
	sort.Strings(p.testFileSuffix)
	return p
}

// Parse parses one file into a Source. Unsupported extensions return a
// NOT_SUPPORTED domain error so callers can skip instead of fail.
func (p *Parser) Parse(path string, content []byte) (*Source, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported file type: %s", filepath.Ext(path)))
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	started := time.Now()
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("set language %s", lang))
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseError, "parse produced no tree")
	}

	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(started).Seconds())
	observability.FilesAnalyzedTotal.WithLabelValues(lang).Inc()

	return &Source{
		Path:     path,
		Language: lang,
		Content:  content,
		tree:     tree,
	}, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

// HasScopeRules reports whether the scope engine can analyze this path.
// Declaration files (.d.ts) share the typescript grammar and qualify.
func (p *Parser) HasScopeRules(path string) bool {
	return p.scopeLanguages[p.detectLanguage(path)]
}

func (p *Parser) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

func (p *Parser) SupportedTestFileSuffixes() []string {
	out := make([]string, len(p.testFileSuffix))
	copy(out, p.testFileSuffix)
	return out
}
