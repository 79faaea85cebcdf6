package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countObjects(vm *VM) int {
	n := 0
	for o := vm.objects; o != nil; o = o.hdr().next {
		n++
	}
	return n
}

func TestCollectFreesUnreachable(t *testing.T) {
	vm := New()

	// a rooted list survives, garbage strings do not
	lst := vm.NewList(nil)
	vm.push(ObjValue(lst))
	keep := vm.NewString("kept value")
	lst.Append(ObjValue(keep))

	before := countObjects(vm)
	for i := 0; i < 100; i++ {
		vm.NewString(fmt.Sprintf("garbage%d", i))
	}
	require.Equal(t, before+100, countObjects(vm))

	vm.collectGarbage()
	assert.Equal(t, before, countObjects(vm))

	// the survivor keeps its identity and contents
	assert.Same(t, keep, lst.elems[0].Obj())
	assert.Equal(t, "kept value", keep.s)
	// and it is still interned
	assert.Same(t, keep, vm.strings.findString("kept value", keep.hash))
}

func TestCollectRemovesSweptStringsFromInternTable(t *testing.T) {
	vm := New()

	dead := vm.NewString("ephemeral")
	hash := dead.hash
	vm.collectGarbage()

	assert.Nil(t, vm.strings.findString("ephemeral", hash), "swept string must leave the intern table")

	// re-interning after the sweep yields a fresh, valid object
	again := vm.NewString("ephemeral")
	assert.NotSame(t, dead, again)
	assert.Same(t, again, vm.strings.findString("ephemeral", hash))
}

func TestCollectTracesAllRootKinds(t *testing.T) {
	vm := New()

	// global
	gkey := vm.NewString("g")
	gval := vm.NewString("global value")
	vm.globals.set(gkey, ObjValue(gval))

	// module cache
	mval := vm.NewString("module value")
	vm.modules.Put("mod", ObjValue(mval))

	// stack
	sval := vm.NewString("stack value")
	vm.push(ObjValue(sval))

	// open upvalue over the stack slot
	uv := vm.captureUpvalue(vm.top - 1)

	// pending error value
	vm.Errorf("type", "boom")

	vm.collectGarbage()

	assert.Same(t, gval, vm.strings.findString("global value", gval.hash))
	assert.Same(t, mval, vm.strings.findString("module value", mval.hash))
	assert.Same(t, sval, vm.strings.findString("stack value", sval.hash))
	assert.False(t, uv.marked, "marks are cleared after the sweep")
	assert.True(t, vm.hasError)
}

func TestCollectClosedUpvalue(t *testing.T) {
	vm := New()

	vm.push(ObjValue(vm.NewString("captured")))
	uv := vm.captureUpvalue(vm.top - 1)
	vm.closeUpvalues(vm.top - 1)
	vm.pop()

	require.Equal(t, -1, uv.slot)

	// the upvalue now owns the value; root the upvalue and collect
	vm.push(ObjValue(uv))
	vm.collectGarbage()
	s, ok := uv.closed.Obj().(*String)
	require.True(t, ok)
	assert.Equal(t, "captured", s.s)
	assert.Same(t, s, vm.strings.findString("captured", s.hash))
}

func TestCollectCyclicValues(t *testing.T) {
	vm := New()

	// a map stored in itself must neither loop the collector nor leak
	m := vm.NewMap()
	vm.push(ObjValue(m))
	vm.SetMapValue(m, "self", ObjValue(m))

	vm.collectGarbage()
	self := m.Get(vm.NewString("self"))
	require.True(t, self.IsObj())
	assert.Same(t, m, self.Obj())

	// unrooted, the cycle is collected
	before := countObjects(vm)
	vm.pop()
	vm.collectGarbage()
	assert.Less(t, countObjects(vm), before)
}

func TestNextGCGrows(t *testing.T) {
	vm := New()
	vm.push(ObjValue(vm.NewList(nil)))
	vm.collectGarbage()
	assert.GreaterOrEqual(t, vm.nextGC, initialGCThreshold)
}

func TestBytesAccounting(t *testing.T) {
	vm := New()
	start := vm.bytesAllocated
	vm.NewString("some temporary garbage")
	assert.Greater(t, vm.bytesAllocated, start)
	vm.collectGarbage()
	assert.Equal(t, start, vm.bytesAllocated)
}
