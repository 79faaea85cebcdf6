package machine

import "github.com/dolthub/swiss"

// A Map is a hash table with string keys only. Keys are interned strings,
// so the underlying table hashes and compares them by identity.
type Map struct {
	header
	entries *swiss.Map[*String, Value]
}

// NewMap returns a new empty map.
func (vm *VM) NewMap() *Map {
	m := &Map{header: header{typ: TypeMap}}
	vm.allocate(m, baseObjSize)
	m.entries = swiss.NewMap[*String, Value](8)
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int { return m.entries.Count() }

// Get returns the value under key; a missing key yields nil, never an
// error.
func (m *Map) Get(key *String) Value {
	if v, ok := m.entries.Get(key); ok {
		return v
	}
	return Nil
}

// Has reports whether key is present.
func (m *Map) Has(key *String) bool { return m.entries.Has(key) }

// Set stores value under key.
func (m *Map) Set(key *String, value Value) { m.entries.Put(key, value) }

// Delete removes key.
func (m *Map) Delete(key *String) { m.entries.Delete(key) }

// Iter calls f for each entry until f returns true (stop).
func (m *Map) Iter(f func(key *String, value Value) (stop bool)) {
	m.entries.Iter(f)
}

// SetMapField sets a string field on a map that is already rooted: the
// value is interned first and rooted on the stack while the key interns,
// so neither can be collected between creation and insertion.
func (vm *VM) SetMapField(m *Map, key, value string) {
	v := vm.NewString(value)
	vm.push(ObjValue(v))
	k := vm.NewString(key)
	m.Set(k, ObjValue(v))
	vm.pop()
}

// SetMapValue is like SetMapField for an arbitrary value already rooted by
// the caller.
func (vm *VM) SetMapValue(m *Map, key string, v Value) {
	k := vm.NewString(key)
	m.Set(k, v)
}
