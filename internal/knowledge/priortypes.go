package knowledge

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sa4u-go/sa4u/internal/phystype"
	"golang.org/x/text/unicode/norm"
)

// PriorVariable is one prior-knowledge JSON record: a fully-qualified
// variable name paired with the unit and set of coordinate frames known to
// apply to it ahead of any constraint generation.
type PriorVariable struct {
	VariableName string `json:"VariableName"`
	SemanticInfo struct {
		Units           []string `json:"Units"`
		CoordinateFrames []string `json:"CoordinateFrames"`
	} `json:"SemanticInfo"`
}

// PriorType is the fully resolved type for a prior-knowledge variable: a
// dimensioned, non-constant Type together with the one-hot-or-wider set of
// coordinate frames it's known to carry.
type PriorType struct {
	Name   string
	Type   phystype.Type
}

// LoadPriorTypes parses a prior-knowledge JSON document (an array of
// PriorVariable records) and resolves each into a PriorType, mirroring
// load_prior_types/parse_variable_description. Records whose unit isn't in
// the fixed table are silently skipped, matching the reference
// implementation's `if scalar is None: return`. Variable names are run
// through Unicode NFC normalization before the "::"->"." rewrite, since
// names retrieved from generated protocol headers are not guaranteed to
// already be normalized.
func LoadPriorTypes(r io.Reader) ([]PriorType, error) {
	var records []PriorVariable
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("knowledge: decoding prior types: %w", err)
	}

	var out []PriorType
	for _, rec := range records {
		pt, ok := resolvePriorVariable(rec)
		if !ok {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}

func resolvePriorVariable(rec PriorVariable) (PriorType, bool) {
	name := norm.NFC.String(rec.VariableName)
	name = strings.ReplaceAll(name, "::", ".")

	if len(rec.SemanticInfo.Units) == 0 {
		return PriorType{}, false
	}
	unit, ok := UnitByName(rec.SemanticInfo.Units[0])
	if !ok {
		return PriorType{}, false
	}

	frames := phystype.FromNames(rec.SemanticInfo.CoordinateFrames)
	return PriorType{
		Name: name,
		Type: phystype.Type{Unit: unit, Frames: frames, IsConstant: false},
	}, true
}
