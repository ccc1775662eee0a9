package flat

import "slices"

// Row is one record, positionally aligned with the owning Table's Keys.
type Row []Value

// Get returns the value at index and false when the row is too short.
func (r Row) Get(index int) (Value, bool) {
	if index < 0 || index >= len(r) {
		return Value{}, false
	}
	return r[index], true
}

// Table is the flat input. Rows are expected to have len(Keys) values but
// that is not checked here.
type Table struct {
	Keys    []string
	Records []Row
}

// IsEmpty reports whether there is nothing to fold.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Keys) == 0 || len(t.Records) == 0
}

// Index returns the position of key in Keys, or -1.
func (t *Table) Index(key string) int {
	if t == nil {
		return -1
	}
	return KeyIndex(t.Keys, key)
}

// KeyIndex returns the position of key in keys, or -1.
func KeyIndex(keys []string, key string) int {
	return slices.Index(keys, key)
}
