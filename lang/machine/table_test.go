package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSetGetDelete(t *testing.T) {
	vm := New()
	var tbl table

	a := vm.NewString("a")
	b := vm.NewString("b")

	assert.True(t, tbl.set(a, Number(1)))
	assert.False(t, tbl.set(a, Number(2)), "second set of the same key is not new")
	assert.True(t, tbl.set(b, True))

	v, ok := tbl.get(a)
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Num())

	require.True(t, tbl.delete(a))
	_, ok = tbl.get(a)
	assert.False(t, ok)
	assert.False(t, tbl.delete(a))

	// b still reachable through the tombstone left by a
	v, ok = tbl.get(b)
	require.True(t, ok)
	assert.True(t, Equal(v, True))
}

func TestTableGrowthKeepsEntries(t *testing.T) {
	vm := New()
	var tbl table

	keys := make([]*String, 100)
	for i := range keys {
		keys[i] = vm.NewString(fmt.Sprintf("key%d", i))
		tbl.set(keys[i], Number(float64(i)))
	}
	assert.GreaterOrEqual(t, tbl.capacity(), 100)
	for i, k := range keys {
		v, ok := tbl.get(k)
		require.True(t, ok, "key%d", i)
		assert.Equal(t, float64(i), v.Num())
	}
}

func TestInternIdentity(t *testing.T) {
	vm := New()

	// two strings interned at different call sites are the same object iff
	// their byte sequences match
	a := vm.NewString("hello")
	b := vm.NewString("hel" + "lo")
	c := vm.NewString("world")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.True(t, Equal(ObjValue(a), ObjValue(b)))
	assert.False(t, Equal(ObjValue(a), ObjValue(c)))
}

func TestFindStringProbesPastTombstones(t *testing.T) {
	vm := New()

	// force the intern table through many inserts and removals
	for i := 0; i < 50; i++ {
		s := vm.NewString(fmt.Sprintf("temp%d", i))
		vm.strings.delete(s)
	}
	keep := vm.NewString("keep")
	assert.Same(t, keep, vm.strings.findString("keep", hashString("keep")))
	assert.Nil(t, vm.strings.findString("gone", hashString("gone")))
}

func TestHashStringFNV1a(t *testing.T) {
	// reference values of 32-bit FNV-1a
	assert.Equal(t, uint32(0x811c9dc5), hashString(""))
	assert.Equal(t, uint32(0xe40c292c), hashString("a"))
	assert.Equal(t, uint32(0xbf9cf968), hashString("foobar"))
}

func TestGlobalCacheInvalidation(t *testing.T) {
	vm := New()

	name := vm.NewString("answer")
	vm.setGlobal(name, Number(42))
	v, ok := vm.getGlobal(name)
	require.True(t, ok)
	assert.Equal(t, 42.0, v.Num())

	// grow the globals table: the capacity snapshot must invalidate the
	// cached entry pointer
	for i := 0; i < 64; i++ {
		vm.setGlobal(vm.NewString(fmt.Sprintf("g%d", i)), Number(float64(i)))
	}
	v, ok = vm.getGlobal(name)
	require.True(t, ok)
	assert.Equal(t, 42.0, v.Num())

	// updates through the cache remain visible
	vm.setGlobal(name, Number(7))
	v, _ = vm.getGlobal(name)
	assert.Equal(t, 7.0, v.Num())

	// deleting invalidates the slot even though capacity is unchanged
	vm.globals.delete(name)
	vm.cache.invalidate(name)
	_, ok = vm.getGlobal(name)
	assert.False(t, ok)
}
