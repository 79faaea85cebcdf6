package machine

// The global inline cache is a fixed-size direct-mapped array keyed by the
// low bits of the interned name's hash. Each slot records the name, a
// pointer into the globals table's entry array and a snapshot of the
// table's capacity at fill time; the capacity check is the invalidation,
// since any rehash of the globals table moves every entry at once.
const globalCacheSize = 512

type cacheSlot struct {
	key      *String
	entry    *tentry
	capacity int
}

type globalCache [globalCacheSize]cacheSlot

func (c *globalCache) slotFor(key *String) *cacheSlot {
	return &c[key.hash&(globalCacheSize-1)]
}

// lookup returns the cached globals entry for key, or nil on a miss.
func (c *globalCache) lookup(key *String, capacity int) *tentry {
	s := c.slotFor(key)
	if s.key == key && s.capacity == capacity && s.entry.key == key {
		return s.entry
	}
	return nil
}

// store fills key's slot.
func (c *globalCache) store(key *String, entry *tentry, capacity int) {
	*c.slotFor(key) = cacheSlot{key: key, entry: entry, capacity: capacity}
}

// invalidate drops key's slot; the import runtime uses it when deleting
// module-private globals, which leaves the table capacity unchanged.
func (c *globalCache) invalidate(key *String) {
	s := c.slotFor(key)
	if s.key == key {
		*s = cacheSlot{}
	}
}

// getGlobal reads a global through the inline cache.
func (vm *VM) getGlobal(name *String) (Value, bool) {
	if !vm.DisableGlobalCache {
		if e := vm.cache.lookup(name, vm.globals.capacity()); e != nil {
			return e.value, true
		}
	}
	e := vm.globals.lookupEntry(name)
	if e == nil {
		return Nil, false
	}
	if !vm.DisableGlobalCache {
		vm.cache.store(name, e, vm.globals.capacity())
	}
	return e.value, true
}

// setGlobal writes a global, defining it if absent, and maintains the
// cache slot.
func (vm *VM) setGlobal(name *String, v Value) {
	if !vm.DisableGlobalCache {
		if e := vm.cache.lookup(name, vm.globals.capacity()); e != nil {
			e.value = v
			return
		}
	}
	vm.globals.set(name, v)
	if !vm.DisableGlobalCache {
		if e := vm.globals.lookupEntry(name); e != nil {
			vm.cache.store(name, e, vm.globals.capacity())
		}
	}
}
