package phystype

import "strings"

// NumFrames is the width of the coordinate-frame bitmask.
const NumFrames = 23

// FrameID identifies one coordinate reference frame, 0..NumFrames-1.
type FrameID int

// Frame IDs fixed by the reference frame table. Two names may share one ID
// (GLOBAL is an alias for MAV_FRAME_GLOBAL, LOCAL for MAV_FRAME_LOCAL_NED).
const (
	FrameGlobal                      FrameID = 0
	FrameLocalNED                    FrameID = 1
	FrameMission                     FrameID = 2
	FrameGlobalRelativeAlt           FrameID = 3
	FrameLocalENU                    FrameID = 4
	FrameGlobalInt                   FrameID = 5
	FrameGlobalRelativeAltInt        FrameID = 6
	FrameLocalOffsetNED              FrameID = 7
	FrameBodyNED                     FrameID = 8
	FrameBodyOffsetNED               FrameID = 9
	FrameGlobalTerrainAlt            FrameID = 10
	FrameGlobalTerrainAltInt         FrameID = 11
	FrameBodyFRD                     FrameID = 12
	// 13-19 reserved/unused by the reference frame table.
	FrameLocalFRD FrameID = 20
	FrameLocalFLU FrameID = 21
	FrameUnix     FrameID = 22
)

// NameToID maps a recognized frame name to its ID. GLOBAL/LOCAL are aliases
// for MAV_FRAME_GLOBAL/MAV_FRAME_LOCAL_NED respectively.
var NameToID = map[string]FrameID{
	"GLOBAL":                            FrameGlobal,
	"LOCAL":                             FrameLocalNED,
	"MAV_FRAME_GLOBAL":                  FrameGlobal,
	"MAV_FRAME_LOCAL_NED":               FrameLocalNED,
	"MAV_FRAME_MISSION":                 FrameMission,
	"MAV_FRAME_GLOBAL_RELATIVE_ALT":     FrameGlobalRelativeAlt,
	"MAV_FRAME_LOCAL_ENU":               FrameLocalENU,
	"MAV_FRAME_GLOBAL_INT":              FrameGlobalInt,
	"MAV_FRAME_GLOBAL_RELATIVE_ALT_INT": FrameGlobalRelativeAltInt,
	"MAV_FRAME_LOCAL_OFFSET_NED":        FrameLocalOffsetNED,
	"MAV_FRAME_BODY_NED":                FrameBodyNED,
	"MAV_FRAME_BODY_OFFSET_NED":         FrameBodyOffsetNED,
	"MAV_FRAME_GLOBAL_TERRAIN_ALT":      FrameGlobalTerrainAlt,
	"MAV_FRAME_GLOBAL_TERRAIN_ALT_INT":  FrameGlobalTerrainAltInt,
	"MAV_FRAME_BODY_FRD":                FrameBodyFRD,
	"MAV_FRAME_LOCAL_FRD":               FrameLocalFRD,
	"MAV_FRAME_LOCAL_FLU":               FrameLocalFLU,
	"UNIX":                              FrameUnix,
}

// Frames is a bitmask over the NumFrames coordinate frames: bit i set means
// "expressed in frame i".
type Frames [NumFrames]bool

// OneHot returns a Frames with only id set.
func OneHot(id FrameID) Frames {
	var f Frames
	f[id] = true
	return f
}

// All returns a Frames with every bit set (used when a protocol field is
// frame-agnostic, e.g. a MAVLink field with no declared frame).
func All() Frames {
	var f Frames
	for i := range f {
		f[i] = true
	}
	return f
}

// FromNames ORs together the one-hot masks of the given frame names,
// skipping any name not present in NameToID.
func FromNames(names []string) Frames {
	var f Frames
	for _, n := range names {
		if id, ok := NameToID[n]; ok {
			f[id] = true
		}
	}
	return f
}

// Invert returns the complement of f, bit for bit.
func (f Frames) Invert() Frames {
	var out Frames
	for i, b := range f {
		out[i] = !b
	}
	return out
}

// Equals reports whether f and other have identical bitmasks.
func (f Frames) Equals(other Frames) bool {
	return f == other
}

func (f Frames) String() string {
	var set []string
	for name, id := range NameToID {
		if f[id] {
			set = append(set, name)
		}
	}
	if len(set) == 0 {
		return "{}"
	}
	return "{" + strings.Join(set, ",") + "}"
}
