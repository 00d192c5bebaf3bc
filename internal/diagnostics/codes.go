// Package diagnostics provides centralized, structured diagnostic reporting
// for sa4u. Every condition the analyzer can flag short of an unsat core
// (unresolved types, unrecognized units, malformed caches, CLI misuse) is
// reported through a Report carrying a stable code and severity.
package diagnostics

// Severity classifies how a Report affects analysis.
type Severity int

const (
	// Info is a purely informational message (e.g. cache hit/miss).
	Info Severity = iota
	// Warning means the offending AST node or input was skipped; analysis continues.
	Warning
	// Error means analysis cannot proceed (e.g. missing required CLI flag).
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error code taxonomy, grouped by phase.
const (
	// AST### — cursor/expression resolution (component C/D)
	AST001 = "AST001" // unresolved LHS or RHS type
	AST002 = "AST002" // unknown member access
	AST003 = "AST003" // unresolved call argument type
	AST004 = "AST004" // call to a function with no referenced declaration
	AST005 = "AST005" // no active frame constraint for a guarded member access

	// KNW### — prior-knowledge / protocol loading (component B)
	KNW001 = "KNW001" // unrecognized unit name
	KNW002 = "KNW002" // unrecognized coordinate frame name
	KNW003 = "KNW003" // unsupported protocol definition root element
	KNW004 = "KNW004" // malformed prior-types JSON record
	KNW005 = "KNW005" // LMCP HTTP request failed

	// CACHE### — TU pipeline & cache (component E)
	CACHE001 = "CACHE001" // missing or malformed on-disk cache file
	CACHE002 = "CACHE002" // translation unit failed to parse
	CACHE003 = "CACHE003" // worker process exited unexpectedly

	// SOLVE### — solve & report (component F)
	SOLVE001 = "SOLVE001" // solver timed out
	SOLVE002 = "SOLVE002" // unknown solver result

	// CLI### — command-line front-end
	CLI001 = "CLI001" // missing required flag
	CLI002 = "CLI002" // conflicting or missing protocol-definition source
)

// CodeInfo carries static metadata about a code, independent of any one occurrence.
type CodeInfo struct {
	Code     string
	Phase    string
	Default  Severity
	Message  string
}

var registry = map[string]CodeInfo{
	AST001: {AST001, "ast", Warning, "unresolved operand type"},
	AST002: {AST002, "ast", Warning, "unknown member access"},
	AST003: {AST003, "ast", Warning, "unresolved call argument type"},
	AST004: {AST004, "ast", Warning, "unreferenced call target"},
	AST005: {AST005, "ast", Warning, "no frame constraint active for guarded member"},

	KNW001: {KNW001, "knowledge", Warning, "unrecognized unit name"},
	KNW002: {KNW002, "knowledge", Warning, "unrecognized coordinate frame name"},
	KNW003: {KNW003, "knowledge", Error, "unsupported protocol definition source"},
	KNW004: {KNW004, "knowledge", Warning, "malformed prior-types record"},
	KNW005: {KNW005, "knowledge", Error, "LMCP HTTP request failed"},

	CACHE001: {CACHE001, "cache", Info, "cache miss or malformed cache file"},
	CACHE002: {CACHE002, "cache", Warning, "translation unit load error"},
	CACHE003: {CACHE003, "cache", Error, "worker process failure"},

	SOLVE001: {SOLVE001, "solve", Error, "solver timeout exceeded"},
	SOLVE002: {SOLVE002, "solve", Error, "unexpected solver status"},

	CLI001: {CLI001, "cli", Error, "missing required flag"},
	CLI002: {CLI002, "cli", Error, "conflicting or missing protocol-definition source flags"},
}

// Lookup returns static metadata about code, if known.
func Lookup(code string) (CodeInfo, bool) {
	info, ok := registry[code]
	return info, ok
}
