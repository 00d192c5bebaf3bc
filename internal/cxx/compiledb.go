package cxx

import "github.com/sa4u-go/sa4u/internal/srcloc"

// CompileCommand is one entry of a compile_commands.json compilation
// database: a single translation unit's source file and the argument list
// libclang needs to parse it as the build actually would.
type CompileCommand struct {
	Filename  string
	Directory string
	Arguments []string
}

// CompilationDatabase abstracts clang-v14's CompilationDatabase, letting
// callers enumerate translation units without touching libclang directly.
type CompilationDatabase interface {
	// Commands returns every compile command in the database, in the order
	// the underlying JSON lists them (tu.Pool shards them round-robin in
	// this order).
	Commands() ([]CompileCommand, error)
}

// Index abstracts clang-v14's Index/TranslationUnit parse entry point.
type Index interface {
	// ParseTranslationUnit parses one compile command into a root Cursor
	// positioned at the translation unit itself (Kind() == KindTranslationUnit).
	ParseTranslationUnit(cmd CompileCommand) (Cursor, error)
}

// Diagnostic is a parse-time note/warning/error libclang attaches to a
// translation unit, surfaced so the caller can log parse failures instead of
// silently analyzing a broken AST.
type Diagnostic struct {
	Severity diagnosticSeverity
	Message  string
	Location srcloc.Pos
}

type diagnosticSeverity int

const (
	DiagIgnored diagnosticSeverity = iota
	DiagNote
	DiagWarning
	DiagError
	DiagFatal
)
