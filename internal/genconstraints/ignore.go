package genconstraints

// ignoreFuncs names fully-qualified functions the generator never emits
// ArgType constraints for: allocator/memcpy-style functions whose arguments
// carry no meaningful physical type, plus a handful of project-specific
// noise sources observed in the corpus this analyzer was built against.
var ignoreFuncs = map[string]bool{
	"AP_Logger_Backend::Write_Message":  true,
	"AP_Proximity_Backend::database_push":  true,
	"AP_Proximity_Backend::ignore_reading": true,
	"calloc":                               true,
	"::::_MAV_RETURN_uint8_t":              true,
	"::::_MAV_RETURN_uint16_t":             true,
	"::::_MAV_RETURN_uint32_t":             true,
	"::::_MAV_RETURN_uint64_t":             true,
	"malloc":                               true,
	"::::mav_array_memcpy":                 true,
	"::::::memcpy":                         true,
	"operator[]":                           true,
	"printf":                               true,
	"puts":                                 true,
	"::px4_usleep":                         true,
	"is_zero":                              true,
	"is_positive":                          true,
}

// ignoreMembers names MAVLink fields whose assignments are deliberately
// untyped: mavlink_mission_item_t's generic param/xyz slots are reused for
// different physical quantities depending on command type, so no single
// unit applies to them.
var ignoreMembers = map[string]bool{
	"mavlink_mission_item_t.param1": true,
	"mavlink_mission_item_t.param2": true,
	"mavlink_mission_item_t.param3": true,
	"mavlink_mission_item_t.param4": true,
	"mavlink_mission_item_t.x":      true,
	"mavlink_mission_item_t.y":      true,
	"mavlink_mission_item_t.z":      true,
}

// ignoreDirs names source directories the walker skips outright: vendored
// conversion/matrix math and bundled third-party protocol generators whose
// generated code obscures more analysis noise than real bugs.
var ignoreDirs = map[string]bool{
	".":          true,
	"conversion": true,
	"matrix":     true,
	"v2.0":       true,
}

// IsIgnoredFunc reports whether a fully-qualified function name should be
// skipped entirely (ArgType constraints never emitted for its arguments).
func IsIgnoredFunc(fqName string) bool { return ignoreFuncs[fqName] }

// IsIgnoredMember reports whether a fully-qualified member expression
// ("typename.field") should never be assigned a constraint.
func IsIgnoredMember(fqMember string) bool { return ignoreMembers[fqMember] }

// IsIgnoredDir reports whether dirname (a source directory's base name)
// should be skipped.
func IsIgnoredDir(dirname string) bool { return ignoreDirs[dirname] }

// AddIgnoredFuncs extends the built-in ignore-function table, letting a
// project supply its own noise sources via --config without forking this
// package.
func AddIgnoredFuncs(names []string) {
	for _, n := range names {
		ignoreFuncs[n] = true
	}
}

// AddIgnoredMembers extends the built-in ignore-member table.
func AddIgnoredMembers(names []string) {
	for _, n := range names {
		ignoreMembers[n] = true
	}
}

// AddIgnoredDirs extends the built-in ignore-directory table.
func AddIgnoredDirs(names []string) {
	for _, n := range names {
		ignoreDirs[n] = true
	}
}
