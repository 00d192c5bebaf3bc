package knowledge

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/sa4u-go/sa4u/internal/phystype"
)

// SourceKind distinguishes a local message-definition file from a flex
// module HTTP API, mirroring ProtocolDefinitionSourceType.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceFlexModuleAPI
)

// ProtocolSource names where to load message definitions from, resolved by
// inspecting the location string, mirroring
// ProtocolDefinitionSource.from_location.
type ProtocolSource struct {
	Kind     SourceKind
	Location string
}

// SourceFromLocation classifies location as a flex module API URL (http(s)
// scheme) or a local definition file.
func SourceFromLocation(location string) ProtocolSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return ProtocolSource{Kind: SourceFlexModuleAPI, Location: location}
	}
	return ProtocolSource{Kind: SourceFile, Location: location}
}

// MessageType is the resolved type of one protocol message field getter —
// e.g. "afrl::cmasi::AirVehicleState::getAltitude" — or, for MAVLink, of a
// "<mavlink_struct_t>.<field>" member access.
type MessageType struct {
	Name string
	Type phystype.Type
}

// FrameField records a MAVLink field whose enum is MAV_FRAME: the constraint
// generator treats reads of these specially, since their *value* (not just
// their static type) carries frame information.
type FrameField struct {
	Name string
}

// LoadResult bundles everything a message-definition source yields.
type LoadResult struct {
	Types       []MessageType
	FrameFields []FrameField
}

// unrecognizedUnitWarning is returned (wrapped) alongside a partial
// LoadResult when a field names a unit outside the fixed table, mirroring
// the reference implementation's `logger.warning(...); continue`.
type unrecognizedUnitWarning struct {
	field, unit string
}

func (w unrecognizedUnitWarning) Error() string {
	return fmt.Sprintf("unrecognized unit %q on field %q, skipped", w.unit, w.field)
}

// Load resolves src and parses whatever it points to, mirroring
// load_message_definitions' dispatch on ProtocolDefinitionSourceType.
func Load(ctx context.Context, src ProtocolSource, open func(path string) (io.ReadCloser, error)) (LoadResult, []error) {
	switch src.Kind {
	case SourceFile:
		rc, err := open(src.Location)
		if err != nil {
			return LoadResult{}, []error{fmt.Errorf("knowledge: opening %s: %w", src.Location, err)}
		}
		defer rc.Close()
		return loadFromFile(rc)
	case SourceFlexModuleAPI:
		return loadFromFlexModuleAPI(ctx, src.Location)
	default:
		return LoadResult{}, []error{fmt.Errorf("knowledge: unsupported protocol source kind %d", src.Kind)}
	}
}

func loadFromFile(r io.Reader) (LoadResult, []error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return LoadResult{}, []error{err}
	}

	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return LoadResult{}, []error{fmt.Errorf("knowledge: parsing definition file: %w", err)}
	}

	switch probe.XMLName.Local {
	case "MDM":
		return parseCMASI(data)
	case "mavlink":
		return parseMAVLink(data)
	default:
		return LoadResult{}, []error{fmt.Errorf("knowledge: unsupported definition file root element %q", probe.XMLName.Local)}
	}
}

// xmlNode is a generic element tree node, used instead of fixed-shape
// structs with Go's `xml:"a>b"` path tags because the CMASI/MAVLink schemas
// nest Struct/message elements at a variable depth (mirroring
// ElementTree's `findall('*/Struct')` — "a Struct anywhere one level below
// some child", not a fixed wrapper name).
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
	Content string     `xml:",chardata"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// findAll returns every descendant node (at any depth) named local.
func (n xmlNode) findAll(local string) []xmlNode {
	var out []xmlNode
	for _, child := range n.Nodes {
		if child.XMLName.Local == local {
			out = append(out, child)
		}
		out = append(out, child.findAll(local)...)
	}
	return out
}

func parseCMASI(data []byte) (LoadResult, []error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return LoadResult{}, []error{fmt.Errorf("knowledge: parsing CMASI definitions: %w", err)}
	}

	var out LoadResult
	var warnings []error
	for _, s := range root.findAll("Struct") {
		structName, _ := s.attr("Name")
		for _, f := range s.Nodes {
			fieldName, hasName := f.attr("Name")
			if !hasName {
				continue
			}
			unitName, _ := f.attr("Units")
			if unitName == "" || strings.EqualFold(unitName, "none") {
				continue
			}
			unit, ok := UnitByName(unitName)
			if !ok {
				warnings = append(warnings, unrecognizedUnitWarning{field: fieldName, unit: unitName})
				continue
			}
			getter := fmt.Sprintf("afrl::cmasi::%s::get%s", structName, capitalize(fieldName))
			out.Types = append(out.Types, MessageType{
				Name: getter,
				Type: phystype.Type{Unit: unit, Frames: phystype.Frames{}, IsConstant: false},
			})
		}
	}
	return out, warnings
}

func parseMAVLink(data []byte) (LoadResult, []error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return LoadResult{}, []error{fmt.Errorf("knowledge: parsing MAVLink definitions: %w", err)}
	}

	var out LoadResult
	var warnings []error
	for _, msg := range root.findAll("message") {
		msgName, _ := msg.attr("name")
		typename := fmt.Sprintf("mavlink_%s_t", strings.ToLower(msgName))
		for _, f := range msg.findAll("field") {
			fieldName, _ := f.attr("name")
			unitName, hasUnits := f.attr("units")
			if !hasUnits || unitName == "" {
				if enum, _ := f.attr("enum"); enum == "MAV_FRAME" {
					out.FrameFields = append(out.FrameFields, FrameField{Name: typename + "." + fieldName})
				}
				continue
			}
			unit, ok := UnitByName(unitName)
			if !ok {
				warnings = append(warnings, unrecognizedUnitWarning{field: fieldName, unit: unitName})
				continue
			}
			out.Types = append(out.Types, MessageType{
				Name: typename + "." + fieldName,
				Type: phystype.Type{Unit: unit, Frames: phystype.All(), IsConstant: false},
			})
		}
	}
	return out, warnings
}

// flexField/flexStruct/flexMessage mirror flex.py's Struct/Struct.Field/
// Message dataclasses: the JSON shape returned by the flex module HTTP API.
type flexField struct {
	Name        string `json:"name"`
	Annotations []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"annotations"`
}

type flexStructDoc struct {
	Name   string      `json:"name"`
	Fields []flexField `json:"fields"`
}

const flexUnitsAnnotation = "tangram::flex::helpers::v1.annotations.Units"

func flexUnitName(f flexField) (string, bool) {
	for _, a := range f.Annotations {
		if a.Name == flexUnitsAnnotation && len(a.Values) > 0 {
			return a.Values[0], true
		}
	}
	return "", false
}

func loadFromFlexModuleAPI(ctx context.Context, apiURL string) (LoadResult, []error) {
	client := &http.Client{}

	messageNames, err := fetchJSON[[]string](ctx, client, apiURL+"/v1/package/OpenUxAS::LMCP::v3/messages")
	if err != nil {
		return LoadResult{}, []error{fmt.Errorf("knowledge: listing flex module messages: %w", err)}
	}

	var (
		mu       sync.Mutex
		out      LoadResult
		warnings []error
		wg       sync.WaitGroup
	)
	for _, name := range messageNames {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := fmt.Sprintf("%s/v1/package/OpenUxAS::LMCP::v3/struct/%s", apiURL, name)
			doc, err := fetchJSON[flexStructDoc](ctx, client, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Errorf("knowledge: fetching struct %s: %w", name, err))
				return
			}
			for _, f := range doc.Fields {
				unitName, ok := flexUnitName(f)
				if !ok || strings.EqualFold(unitName, "none") {
					continue
				}
				unit, ok := UnitByName(unitName)
				if !ok {
					warnings = append(warnings, unrecognizedUnitWarning{field: f.Name, unit: unitName})
					continue
				}
				getter := fmt.Sprintf("afrl::cmasi::%s::get%s", doc.Name, capitalize(f.Name))
				out.Types = append(out.Types, MessageType{
					Name: getter,
					Type: phystype.Type{Unit: unit, Frames: phystype.Frames{}, IsConstant: false},
				})
			}
		}()
	}
	wg.Wait()
	return out, warnings
}

func fetchJSON[T any](ctx context.Context, client *http.Client, url string) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
