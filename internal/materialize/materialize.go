// Package materialize flattens a folded forest into the "item sync" record
// format: one header per assembly and one entry per parent/child edge.
package materialize

import (
	"slices"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/fold"
)

// EntryKind classifies an entry by whether the child has children of its own.
type EntryKind string

const (
	KindPart   EntryKind = "part"
	KindSubBOM EntryKind = "sub-bom"
)

// Rules selects which attributes feed the output records.
type Rules struct {
	IDKey string `yaml:"id_key" json:"id_key" validate:"required"`

	// NameKey falls back to IDKey when empty or not present in the data.
	NameKey string `yaml:"name_key,omitempty" json:"name_key,omitempty"`

	// QuantityKey makes every quantity 1 when empty or not present.
	QuantityKey string `yaml:"quantity_key,omitempty" json:"quantity_key,omitempty"`
}

// Header populates the "BOMs" sheet.
type Header struct {
	ID   flat.Value `json:"id"`
	Name flat.Value `json:"name"`
}

// Entry populates the "BOM entries" sheet.
type Entry struct {
	BOMID    flat.Value `json:"bom_id"`
	Type     EntryKind  `json:"entry_type"`
	EntryID  flat.Value `json:"entry_id"`
	Quantity float64    `json:"quantity"`
}

// Output is the full item sync document.
type Output struct {
	BOMs       []Header `json:"boms"`
	BOMEntries []Entry  `json:"bom_entries"`
}

// DefaultQuantity is used when no numeric quantity is available.
const DefaultQuantity = 1.0

// attributeIndices are the positions of the rule keys in the node attributes.
type attributeIndices struct {
	id       int
	name     int
	quantity int // -1 when not configured
}

func resolveIndices(keys []string, rules Rules) (attributeIndices, error) {
	id := flat.KeyIndex(keys, rules.IDKey)
	if id < 0 {
		return attributeIndices{}, bomerr.InvalidArgument("id key %q not found in folded data", rules.IDKey)
	}

	name := id
	if rules.NameKey != "" {
		if i := flat.KeyIndex(keys, rules.NameKey); i >= 0 {
			name = i
		}
	}

	quantity := -1
	if rules.QuantityKey != "" {
		quantity = flat.KeyIndex(keys, rules.QuantityKey)
	}

	return attributeIndices{id: id, name: name, quantity: quantity}, nil
}

// Materialize walks the forest depth first and returns its item sync records.
// A node with children is an assembly: it gets a header and a "sub-bom" entry
// under its parent. A leaf only gets a "part" entry.
func Materialize(forest *fold.Forest, rules Rules) (*Output, error) {
	if forest == nil {
		forest = &fold.Forest{}
	}

	indices, err := resolveIndices(forest.AttributeKeys, rules)
	if err != nil {
		return nil, err
	}

	m := &materializer{indices: indices}
	for _, node := range forest.TopLevelNodes {
		if err := m.visit(node, nil); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(m.boms, func(a, b Header) int {
		return flat.SortOrder(a.ID, b.ID)
	})
	m.boms = slices.CompactFunc(m.boms, func(a, b Header) bool {
		return a.ID.Equal(b.ID)
	})

	return &Output{BOMs: m.boms, BOMEntries: m.entries}, nil
}

type materializer struct {
	indices attributeIndices
	boms    []Header
	entries []Entry
}

func (m *materializer) visit(node *fold.Node, parentID *flat.Value) error {
	kind := KindSubBOM
	if node.IsLeaf() {
		kind = KindPart
	}

	id, ok := node.Attributes.Get(m.indices.id)
	if !ok {
		return bomerr.InvalidArgument("node is missing id")
	}

	if parentID != nil {
		m.entries = append(m.entries, Entry{
			BOMID:    *parentID,
			Type:     kind,
			EntryID:  id,
			Quantity: m.quantity(node),
		})
	}

	if node.IsLeaf() {
		return nil
	}

	name, ok := node.Attributes.Get(m.indices.name)
	if !ok {
		return bomerr.InvalidArgument("unable to find name field in bom node %s", id)
	}
	m.boms = append(m.boms, Header{ID: id, Name: name})

	for _, child := range node.Children {
		if err := m.visit(child, &id); err != nil {
			return err
		}
	}
	return nil
}

func (m *materializer) quantity(node *fold.Node) float64 {
	if m.indices.quantity < 0 {
		return DefaultQuantity
	}
	v, ok := node.Attributes.Get(m.indices.quantity)
	if !ok {
		return DefaultQuantity
	}
	if n, ok := v.Float(); ok {
		return n
	}
	return DefaultQuantity
}
