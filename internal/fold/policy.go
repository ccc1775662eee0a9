package fold

import (
	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
)

// Policy decides how a record's parent is identified.
type Policy interface {
	// Name returns the policy name for display purposes
	Name() string

	policy()
}

// OrderedLevelKey identifies children by a relative depth column: any time
// the level increases, the following records belong to the most recent
// shallower record.
type OrderedLevelKey struct {
	Key string
}

// Absolute identifies the parent by looking up a key on another record, for
// example a "Parent Part Number" column referencing "Part Number".
type Absolute struct {
	ParentKey    string
	ReferenceKey string
}

func (OrderedLevelKey) Name() string { return "ordered_level_key" }
func (Absolute) Name() string        { return "absolute" }

func (OrderedLevelKey) policy() {}
func (Absolute) policy()        {}

// Transform converts the flat table into a forest using the given policy.
func Transform(table *flat.Table, p Policy) (*Forest, error) {
	switch p := p.(type) {
	case OrderedLevelKey:
		return Fold(table, p.Key)
	case *OrderedLevelKey:
		if p == nil {
			return nil, bomerr.InvalidArgument("no child identification policy configured")
		}
		return Fold(table, p.Key)
	case Absolute, *Absolute:
		return nil, bomerr.Unimplemented("absolute parent location is not supported")
	case nil:
		return nil, bomerr.InvalidArgument("no child identification policy configured")
	default:
		return nil, bomerr.InvalidArgument("unknown child identification policy %T", p)
	}
}
