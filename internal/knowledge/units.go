// Package knowledge loads the analyzer's prior knowledge: the fixed unit
// table, a JSON file of prior variable types, and protocol message
// definitions (MAVLink/CMASI XML, or a flex module HTTP API) that assign
// types to the member fields of wire structs.
package knowledge

import "github.com/sa4u-go/sa4u/internal/phystype"

// unitEntry is one UNIT_TO_BASE_UNIT_VECTOR/UNIT_TO_SCALAR row.
type unitEntry struct {
	exponents [phystype.NumBaseUnits]int
	num, den  int
}

// unitTable is the fixed name -> (dimension, scalar) table. Names are
// case-sensitive and match the reference implementation's table exactly,
// including its "literal" (dimensionless) entry used for integer/float
// constants and "cm^2" style composite names that aren't parsed, just
// looked up verbatim.
var unitTable = map[string]unitEntry{
	"centimeter":     {exponents: [7]int{1, 0, 0, 0, 0, 0, 0}, num: 1, den: 100},
	"cm":             {exponents: [7]int{1, 0, 0, 0, 0, 0, 0}, num: 1, den: 100},
	"cm/s":           {exponents: [7]int{1, -1, 0, 0, 0, 0, 0}, num: 1, den: 100},
	"cm^2":           {exponents: [7]int{2, 0, 0, 0, 0, 0, 0}, num: 1, den: 10000},
	"gauss":          {exponents: [7]int{0, -2, 0, -1, 0, 0, 1}, num: 1, den: 1000},
	"literal":        {exponents: [7]int{0, 0, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"m":              {exponents: [7]int{1, 0, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"mgauss":         {exponents: [7]int{0, -2, 0, -1, 0, 0, 1}, num: 1, den: 10000000},
	"meter":          {exponents: [7]int{1, 0, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"meter/sec":      {exponents: [7]int{1, -1, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"meter/sec/sec":  {exponents: [7]int{1, -2, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"millisecond":    {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1000},
	"milliseconds":   {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1000},
	"mm":             {exponents: [7]int{1, 0, 0, 0, 0, 0, 0}, num: 1, den: 1000},
	"ms":             {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1000},
	"m/s":            {exponents: [7]int{1, -1, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"m/s/s":          {exponents: [7]int{1, -2, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"s":              {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"sec":            {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1},
	"us":             {exponents: [7]int{0, 1, 0, 0, 0, 0, 0}, num: 1, den: 1000000},
}

// UnitByName looks up a known unit name, returning its dimension vector and
// scalar as a phystype.Unit, and false if the name isn't in the table.
func UnitByName(name string) (phystype.Unit, bool) {
	e, ok := unitTable[name]
	if !ok {
		return phystype.Unit{}, false
	}
	scalar := phystype.NewRational(e.num, e.den)
	return phystype.NewUnit(&scalar, e.exponents), true
}

// HasUnit reports whether name is a recognized unit, without constructing a
// Unit value.
func HasUnit(name string) bool {
	_, ok := unitTable[name]
	return ok
}
