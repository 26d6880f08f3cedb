package base

// FieldEntry is one key-value pair in a FieldMap
type FieldEntry struct {
	Key   string
	Value Value
}

// FieldMap is a string-keyed mapping which preserves insertion order, used for
// the metadata attached to log records
//
// Deterministic iteration order is required to make serialized output stable
// for a given input; Go maps cannot provide that
type FieldMap struct {
	entries []FieldEntry
	index   map[string]int
}

// NewFieldMap creates an empty FieldMap
func NewFieldMap() *FieldMap {
	return &FieldMap{
		entries: nil,
		index:   make(map[string]int),
	}
}

// Set adds or replaces a key; a replaced key keeps its original position
func (m *FieldMap) Set(key string, value Value) *FieldMap {
	if at, exists := m.index[key]; exists {
		m.entries[at].Value = value
		return m
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, FieldEntry{Key: key, Value: value})
	return m
}

// Get looks up a key
func (m *FieldMap) Get(key string) (Value, bool) {
	at, exists := m.index[key]
	if !exists {
		return Absent, false
	}
	return m.entries[at].Value, true
}

// Len returns the number of entries
func (m *FieldMap) Len() int {
	return len(m.entries)
}

// Entries returns the entries in insertion order; the slice must not be modified
func (m *FieldMap) Entries() []FieldEntry {
	return m.entries
}
