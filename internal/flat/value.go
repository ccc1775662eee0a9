// Package flat holds the flat, row-ordered representation of an item
// hierarchy as it comes out of a CSV or spreadsheet.
package flat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags which half of the Value union is set
type Kind int

const (
	// KindText is a string cell.
	KindText Kind = iota
	// KindNumber is a float64 cell.
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a single cell: either Text or Number, never both.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

// Text constructs a text Value.
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// Number constructs a numeric Value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// IsNumber reports whether v holds a Number.
func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// Float returns the numeric payload and whether v is a Number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// String renders the payload without type decoration: text verbatim,
// numbers in the shortest form that round-trips.
func (v Value) String() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// GoString is used by %#v in test failure output.
func (v Value) GoString() string {
	if v.Kind == KindNumber {
		return fmt.Sprintf("Number(%s)", v.String())
	}
	return fmt.Sprintf("Text(%q)", v.Str)
}

// Equal reports whether a and b compare Equal under the partial order.
// Values of different kinds are never equal.
func (v Value) Equal(other Value) bool {
	return Compare(v, other) == Equal
}

// MarshalJSON writes text as a JSON string and numbers as a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts a JSON string or number.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value must be a string or number: %w", err)
	}
	*v = Text(s)
	return nil
}
