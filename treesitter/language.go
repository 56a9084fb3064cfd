package treesitter

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrNoLanguage is returned when no grammar is registered for a path.
var ErrNoLanguage = errors.New("no language registered")

// Registry maps file extensions, base names and glob patterns to tree-sitter
// languages.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*tree_sitter.Language // ext -> language
	matchers  []LanguageMatcher
}

// NewRegistry creates a new language registry from a config.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		languages: make(map[string]*tree_sitter.Language, len(cfg.Languages)),
		matchers:  append([]LanguageMatcher(nil), cfg.Matchers...),
	}
	for ext, lang := range cfg.Languages {
		r.languages[normalizeExt(ext)] = lang
	}
	return r
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

// Register adds a language for a given file extension.
func (r *Registry) Register(ext string, lang *tree_sitter.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[normalizeExt(ext)] = lang
}

// RegisterMatcher adds a LanguageMatcher to the registry. Matchers are
// evaluated in registration order and win over extension-based lookup.
func (r *Registry) RegisterMatcher(m LanguageMatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
}

// LanguageFor returns the tree-sitter language for a document path. It
// evaluates in this order:
//  1. Matchers: exact base name
//  2. Matchers: glob pattern against the full path, then the base name
//  3. Matchers: extension
//  4. The Languages map
func (r *Registry) LanguageFor(p string) (*tree_sitter.Language, error) {
	base := path.Base(p)
	ext := path.Ext(p)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matchers {
		for _, fn := range m.Filenames {
			if fn == base {
				return m.Language, nil
			}
		}
	}

	for _, m := range r.matchers {
		if m.Pattern == "" {
			continue
		}
		if matched, _ := path.Match(m.Pattern, p); matched {
			return m.Language, nil
		}
		if matched, _ := path.Match(m.Pattern, base); matched {
			return m.Language, nil
		}
	}

	if ext != "" {
		for _, m := range r.matchers {
			for _, mExt := range m.Extensions {
				if normalizeExt(mExt) == ext {
					return m.Language, nil
				}
			}
		}
		if lang, ok := r.languages[ext]; ok {
			return lang, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", p, ErrNoLanguage)
}

// HasLanguage reports whether a language is registered for the given path.
func (r *Registry) HasLanguage(p string) bool {
	lang, err := r.LanguageFor(p)
	return err == nil && lang != nil
}
