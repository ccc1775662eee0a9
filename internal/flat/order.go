package flat

import (
	"cmp"
	"math"
	"strings"
)

// Ordering is the result of comparing two Values under the partial order.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	// Incomparable is returned for Text vs Number, and for NaN.
	Incomparable
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "incomparable"
	}
}

// Compare orders a relative to b. Numbers compare numerically, texts compare
// bytewise, and mixed kinds are Incomparable.
func Compare(a, b Value) Ordering {
	if a.Kind != b.Kind {
		return Incomparable
	}
	if a.Kind == KindText {
		return Ordering(strings.Compare(a.Str, b.Str))
	}
	switch {
	case a.Num < b.Num:
		return Less
	case a.Num > b.Num:
		return Greater
	case a.Num == b.Num:
		return Equal
	default:
		return Incomparable
	}
}

// SortOrder is a total order over Values for sorting: every Text before
// every Number, texts bytewise, numbers ascending with NaN last. It agrees
// with Compare wherever Compare is not Incomparable.
func SortOrder(a, b Value) int {
	if a.Kind != b.Kind {
		if a.Kind == KindText {
			return -1
		}
		return 1
	}
	if a.Kind == KindText {
		return strings.Compare(a.Str, b.Str)
	}
	aNaN, bNaN := math.IsNaN(a.Num), math.IsNaN(b.Num)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(a.Num, b.Num)
}
