package machine

// The collector is a stop-the-world tri-color mark-and-sweep. It triggers
// on allocation once the accounted bytes exceed the threshold, which is
// reset to twice the live size (never below initialGCThreshold) after each
// collection. Single-threaded and
// not re-entrant: no allocation happens while a collection runs.

const initialGCThreshold = 1 << 20

func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	// the intern table holds every live string; drop the unmarked ones
	// before the sweep so it never dangles
	vm.strings.removeWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * 2
	if vm.nextGC < initialGCThreshold {
		vm.nextGC = initialGCThreshold
	}
	if vm.StressGC {
		vm.nextGC = 0
	}
}

// markRoots marks the value stack, the closure of every live frame, every
// open upvalue, the globals table, the module cache and the in-flight
// error value.
func (vm *VM) markRoots() {
	for i := 0; i < vm.top; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvals; uv != nil; uv = uv.next {
		vm.markObject(uv)
	}
	vm.globals.forEach(func(k *String, v Value) {
		vm.markObject(k)
		vm.markValue(v)
	})
	vm.modules.Iter(func(_ string, v Value) bool {
		vm.markValue(v)
		return false
	})
	vm.markValue(vm.errValue)
}

func (vm *VM) markValue(v Value) {
	if v.IsObj() {
		vm.markObject(v.Obj())
	}
}

func (vm *VM) markObject(o Obj) {
	if o == nil || o.hdr().marked {
		return
	}
	o.hdr().marked = true
	vm.gray = append(vm.gray, o)
}

// traceReferences drains the gray worklist, blackening each object by
// marking its direct references.
func (vm *VM) traceReferences() {
	for len(vm.gray) > 0 {
		o := vm.gray[len(vm.gray)-1]
		vm.gray = vm.gray[:len(vm.gray)-1]
		vm.blacken(o)
	}
}

func (vm *VM) blacken(o Obj) {
	switch o := o.(type) {
	case *String, *Native:
		// no references

	case *Upvalue:
		vm.markValue(o.closed)

	case *Function:
		vm.markObjectString(o.name)
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}

	case *Closure:
		vm.markObject(o.Fn)
		for _, uv := range o.Upvals {
			if uv != nil {
				vm.markObject(uv)
			}
		}

	case *List:
		for _, e := range o.elems {
			vm.markValue(e)
		}

	case *Map:
		o.entries.Iter(func(k *String, v Value) bool {
			vm.markObject(k)
			vm.markValue(v)
			return false
		})
	}
}

// markObjectString marks a possibly-nil function name; a typed nil passed
// through the Obj interface would slip past markObject's nil check.
func (vm *VM) markObjectString(s *String) {
	if s != nil {
		vm.markObject(s)
	}
}

// sweep walks the intrusive object list, unlinking and unaccounting every
// unmarked object and clearing the mark on the survivors.
func (vm *VM) sweep() {
	var prev Obj
	o := vm.objects
	for o != nil {
		h := o.hdr()
		if h.marked {
			h.marked = false
			prev = o
			o = h.next
			continue
		}
		next := h.next
		vm.bytesAllocated -= h.size
		if prev == nil {
			vm.objects = next
		} else {
			prev.hdr().next = next
		}
		h.next = nil
		o = next
	}
}
