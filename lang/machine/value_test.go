package machine_test

import (
	"math"
	"testing"

	"github.com/glipt-org/glipt/lang/machine"
	"github.com/stretchr/testify/assert"
)

func TestValueKinds(t *testing.T) {
	vm := machine.New()

	assert.True(t, machine.Number(1.5).IsNumber())
	assert.True(t, machine.Number(0).IsNumber())
	assert.True(t, machine.Number(math.NaN()).IsNumber(), "a real NaN stays a number")
	assert.True(t, machine.Number(math.Inf(1)).IsNumber())
	assert.True(t, machine.Nil.IsNil())
	assert.True(t, machine.True.IsBool())
	assert.True(t, machine.False.IsBool())

	s := machine.ObjValue(vm.NewString("x"))
	assert.True(t, s.IsObj())
	assert.False(t, s.IsNumber())
	assert.False(t, s.IsNil())
}

func TestValueTypeNames(t *testing.T) {
	vm := machine.New()

	cases := []struct {
		v    machine.Value
		want string
	}{
		{machine.Number(1), "number"},
		{machine.Nil, "nil"},
		{machine.True, "bool"},
		{machine.ObjValue(vm.NewString("s")), "string"},
		{machine.ObjValue(vm.NewList(nil)), "list"},
		{machine.ObjValue(vm.NewMap()), "map"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.TypeName())
	}
}

func TestTruthiness(t *testing.T) {
	vm := machine.New()

	assert.False(t, machine.Truth(machine.Nil))
	assert.False(t, machine.Truth(machine.False))
	assert.False(t, machine.Truth(machine.Number(0)))
	assert.False(t, machine.Truth(machine.Number(math.Copysign(0, -1))), "-0 is falsey")

	assert.True(t, machine.Truth(machine.True))
	assert.True(t, machine.Truth(machine.Number(0.1)))
	assert.True(t, machine.Truth(machine.ObjValue(vm.NewString(""))), "the empty string is truthy")
	assert.True(t, machine.Truth(machine.ObjValue(vm.NewList(nil))))
}

func TestValueEquality(t *testing.T) {
	vm := machine.New()

	assert.True(t, machine.Equal(machine.Number(1), machine.Number(1.0)))
	assert.True(t, machine.Equal(machine.Number(0), machine.Number(math.Copysign(0, -1))), "IEEE ==: -0 equals 0")
	assert.False(t, machine.Equal(machine.Number(math.NaN()), machine.Number(math.NaN())), "NaN is not equal to itself")
	assert.True(t, machine.Equal(machine.Nil, machine.Nil))
	assert.True(t, machine.Equal(machine.True, machine.True))
	assert.False(t, machine.Equal(machine.True, machine.False))
	assert.False(t, machine.Equal(machine.Nil, machine.Number(0)))
	assert.False(t, machine.Equal(machine.False, machine.Number(0)))

	// interned strings compare by identity
	a := machine.ObjValue(vm.NewString("abc"))
	b := machine.ObjValue(vm.NewString("abc"))
	c := machine.ObjValue(vm.NewString("abd"))
	assert.True(t, machine.Equal(a, b))
	assert.False(t, machine.Equal(a, c))

	// distinct lists are distinct values even with equal contents
	l1 := machine.ObjValue(vm.NewList([]machine.Value{machine.Number(1)}))
	l2 := machine.ObjValue(vm.NewList([]machine.Value{machine.Number(1)}))
	assert.False(t, machine.Equal(l1, l2))
	assert.True(t, machine.Equal(l1, l1))
}

func TestValueString(t *testing.T) {
	vm := machine.New()

	assert.Equal(t, "55", machine.Number(55).String())
	assert.Equal(t, "0.5", machine.Number(0.5).String())
	assert.Equal(t, "nil", machine.Nil.String())
	assert.Equal(t, "true", machine.True.String())
	assert.Equal(t, "raw", machine.ObjValue(vm.NewString("raw")).String())

	lst := vm.NewList([]machine.Value{
		machine.Number(1),
		machine.ObjValue(vm.NewString("s")),
		machine.Nil,
	})
	assert.Equal(t, `[1, "s", nil]`, machine.ObjValue(lst).String())
}
