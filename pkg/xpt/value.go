package xpt

import "strconv"

// Value is a single decoded row field. Exactly one of Num and Str is
// meaningful, selected by Type.
type Value struct {
	Type VarType
	Num  float64
	Str  string
}

// String renders the value for display. Numerics use the shortest exact
// decimal form.
func (v Value) String() string {
	switch v.Type {
	case Numeric:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Character:
		return v.Str
	default:
		return ""
	}
}
