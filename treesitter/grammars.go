package treesitter

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammars bundled with the engine.
var (
	TypeScript = tree_sitter.NewLanguage(unsafe.Pointer(ts_typescript.LanguageTypescript()))
	TSX        = tree_sitter.NewLanguage(unsafe.Pointer(ts_typescript.LanguageTSX()))
	JSON       = tree_sitter.NewLanguage(unsafe.Pointer(ts_json.Language()))
	Go         = tree_sitter.NewLanguage(unsafe.Pointer(ts_go.Language()))
	Python     = tree_sitter.NewLanguage(unsafe.Pointer(ts_python.Language()))
	YAML       = tree_sitter.NewLanguage(unsafe.Pointer(ts_yaml.Language()))
)

// DefaultConfig registers every bundled grammar by extension.
func DefaultConfig() Config {
	return Config{
		Languages: map[string]*tree_sitter.Language{
			".ts":   TypeScript,
			".mts":  TypeScript,
			".cts":  TypeScript,
			".tsx":  TSX,
			".json": JSON,
			".go":   Go,
			".py":   Python,
			".yaml": YAML,
			".yml":  YAML,
		},
	}
}
