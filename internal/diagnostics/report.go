package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sa4u-go/sa4u/internal/srcloc"
)

// schemaVersion tags the JSON shape of a Report for downstream tooling.
const schemaVersion = "sa4u.diagnostic/v1"

// Report is the structured diagnostic type produced throughout sa4u.
// Every builder in this package returns *Report so call sites can log it,
// wrap it as an error, or serialize it for a --json front-end.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Span     *srcloc.Span   `json:"span,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// New builds a Report, defaulting severity from the code registry when known.
func New(code, message string, span *srcloc.Span) *Report {
	sev := Warning
	phase := "unknown"
	if info, ok := Lookup(code); ok {
		sev = info.Default
		phase = info.Phase
	}
	return &Report{
		Schema:   schemaVersion,
		Code:     code,
		Phase:    phase,
		Severity: sev.String(),
		Message:  message,
		Span:     span,
	}
}

// WithData attaches structured key/value context and returns r for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// reportError wraps a Report so it survives errors.As() unwrapping.
type reportError struct {
	rep *Report
}

func (e *reportError) Error() string {
	if e.rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.rep.Code, e.rep.Message)
}

// AsError wraps r as an error.
func (r *Report) AsError() error {
	if r == nil {
		return nil
	}
	return &reportError{rep: r}
}

// AsReport extracts a *Report from an error chain, if one is present.
func AsReport(err error) (*Report, bool) {
	var re *reportError
	if errors.As(err, &re) {
		return re.rep, true
	}
	return nil, false
}

// ToJSON renders r as (optionally indented) JSON.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
