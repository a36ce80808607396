package company

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is an optional real number. The zero value is Absent, which is never
// the same thing as Num(0).
type Value struct {
	n       float64
	present bool
}

// Absent marks missing data (the "TBD" sentinel in the source sheet).
var Absent = Value{}

// Num wraps a present number.
func Num(x float64) Value { return Value{n: x, present: true} }

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) { return v.n, v.present }

// IsAbsent reports whether v carries no number.
func (v Value) IsAbsent() bool { return !v.present }

// Float returns the number, or fallback when absent.
func (v Value) Float(fallback float64) float64 {
	if !v.present {
		return fallback
	}
	return v.n
}

// String renders a present value with the shortest exact representation and
// an absent one as the empty string.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	return strconv.FormatFloat(v.n, 'g', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.n)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Absent
		return nil
	}
	var x float64
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	*v = Num(x)
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	if !v.present {
		return nil, nil
	}
	return v.n, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" {
		*v = Absent
		return nil
	}
	var x float64
	if err := node.Decode(&x); err != nil {
		return err
	}
	*v = Num(x)
	return nil
}
