// Package lib provides the core native functions of the Glipt runtime:
// printing, collections, higher-order helpers that re-enter the
// interpreter, JSON conversion and the permissioned process and
// environment natives. The heavyweight standard-library modules (file
// system, networking, regex, math) are separate concerns and not part of
// the core.
package lib

import (
	"strings"

	"github.com/glipt-org/glipt/lang/machine"
	"golang.org/x/exp/slices"
)

// Register defines every core native as a global of the VM.
func Register(vm *machine.VM) {
	vm.DefineNative("print", -1, printNative)
	vm.DefineNative("type", 1, typeNative)
	vm.DefineNative("str", 1, strNative)
	vm.DefineNative("bool", 1, boolNative)
	vm.DefineNative("len", 1, lenNative)
	vm.DefineNative("append", -1, appendNative)
	vm.DefineNative("range", 2, rangeNative)
	vm.DefineNative("keys", 1, keysNative)
	vm.DefineNative("map", 2, mapNative)
	vm.DefineNative("filter", 2, filterNative)
	vm.DefineNative("reduce", 3, reduceNative)
	vm.DefineNative("parse_json", 1, parseJSONNative)
	vm.DefineNative("to_json", 1, toJSONNative)
	vm.DefineNative("args", 0, argsNative)
	vm.DefineNative("env", 1, envNative)
	vm.DefineNative("exec", 1, execNative)
	vm.DefineNative("parallel", 1, parallelNative)
}

func printNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('\n')
	vm.Stdout.Write([]byte(sb.String())) //nolint:errcheck
	return machine.Nil
}

func typeNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	return machine.ObjValue(vm.NewString(args[0].TypeName()))
}

func strNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	return machine.ObjValue(vm.NewString(args[0].String()))
}

func boolNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	return machine.Bool(machine.Truth(args[0]))
}

func lenNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	if args[0].IsObj() {
		switch o := args[0].Obj().(type) {
		case *machine.String:
			return machine.Number(float64(len(o.Str())))
		case *machine.List:
			return machine.Number(float64(o.Len()))
		case *machine.Map:
			return machine.Number(float64(o.Len()))
		}
	}
	vm.Errorf("type", "len: %s value has no length.", args[0].TypeName())
	return machine.Nil
}

func appendNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	if argc < 2 {
		vm.Errorf("type", "append: expected a list and at least one value.")
		return machine.Nil
	}
	lst, ok := asList(args[0])
	if !ok {
		vm.Errorf("type", "append: first argument must be a list, got %s.", args[0].TypeName())
		return machine.Nil
	}
	lst.Append(args[1:]...)
	return args[0]
}

func rangeNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lo, okLo := asInt(args[0])
	hi, okHi := asInt(args[1])
	if !okLo || !okHi {
		vm.Errorf("type", "range: bounds must be integers.")
		return machine.Nil
	}
	var elems []machine.Value
	for i := lo; i < hi; i++ {
		elems = append(elems, machine.Number(float64(i)))
	}
	return machine.ObjValue(vm.NewList(elems))
}

func keysNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	m, ok := asMap(args[0])
	if !ok {
		vm.Errorf("type", "keys: argument must be a map, got %s.", args[0].TypeName())
		return machine.Nil
	}
	var ks []machine.Value
	m.Iter(func(k *machine.String, _ machine.Value) bool {
		ks = append(ks, machine.ObjValue(k))
		return false
	})
	slices.SortFunc(ks, func(a, b machine.Value) int {
		as, _ := machine.AsString(a)
		bs, _ := machine.AsString(b)
		return strings.Compare(as, bs)
	})
	return machine.ObjValue(vm.NewList(ks))
}

func mapNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lst, ok := asList(args[0])
	if !ok {
		vm.Errorf("type", "map: first argument must be a list, got %s.", args[0].TypeName())
		return machine.Nil
	}
	out := vm.NewList(nil)
	vm.Push(machine.ObjValue(out)) // root across re-entrant calls
	for i := 0; i < lst.Len(); i++ {
		res, ok := vm.CallValue(args[1], []machine.Value{lst.Elems()[i]})
		if !ok {
			vm.Pop()
			return machine.Nil
		}
		out.Append(res)
	}
	vm.Pop()
	return machine.ObjValue(out)
}

func filterNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lst, ok := asList(args[0])
	if !ok {
		vm.Errorf("type", "filter: first argument must be a list, got %s.", args[0].TypeName())
		return machine.Nil
	}
	out := vm.NewList(nil)
	vm.Push(machine.ObjValue(out))
	for i := 0; i < lst.Len(); i++ {
		e := lst.Elems()[i]
		res, ok := vm.CallValue(args[1], []machine.Value{e})
		if !ok {
			vm.Pop()
			return machine.Nil
		}
		if machine.Truth(res) {
			out.Append(e)
		}
	}
	vm.Pop()
	return machine.ObjValue(out)
}

func reduceNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	lst, ok := asList(args[0])
	if !ok {
		vm.Errorf("type", "reduce: first argument must be a list, got %s.", args[0].TypeName())
		return machine.Nil
	}
	acc := args[2]
	vm.Push(acc) // keep the accumulator rooted between iterations
	for i := 0; i < lst.Len(); i++ {
		res, ok := vm.CallValue(args[1], []machine.Value{acc, lst.Elems()[i]})
		if !ok {
			vm.Pop()
			return machine.Nil
		}
		acc = res
		vm.Pop()
		vm.Push(acc)
	}
	vm.Pop()
	return acc
}

func asList(v machine.Value) (*machine.List, bool) {
	if !v.IsObj() {
		return nil, false
	}
	l, ok := v.Obj().(*machine.List)
	return l, ok
}

func asMap(v machine.Value) (*machine.Map, bool) {
	if !v.IsObj() {
		return nil, false
	}
	m, ok := v.Obj().(*machine.Map)
	return m, ok
}

func asInt(v machine.Value) (int, bool) {
	if !v.IsNumber() {
		return 0, false
	}
	f := v.Num()
	i := int(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}
