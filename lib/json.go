package lib

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/glipt-org/glipt/lang/machine"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func parseJSONNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	s, ok := machine.AsString(args[0])
	if !ok {
		vm.Errorf("type", "parse_json: argument must be a string, got %s.", args[0].TypeName())
		return machine.Nil
	}
	var data interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		vm.Errorf("type", "parse_json: %s.", err)
		return machine.Nil
	}
	return jsonToValue(vm, data)
}

// jsonToValue converts decoded JSON into machine values. Containers are
// rooted on the value stack while their children allocate, per the
// machine's allocation discipline.
func jsonToValue(vm *machine.VM, data interface{}) machine.Value {
	switch data := data.(type) {
	case nil:
		return machine.Nil
	case bool:
		return machine.Bool(data)
	case float64:
		return machine.Number(data)
	case string:
		return machine.ObjValue(vm.NewString(data))

	case []interface{}:
		lst := vm.NewList(nil)
		vm.Push(machine.ObjValue(lst))
		for _, item := range data {
			lst.Append(jsonToValue(vm, item))
		}
		vm.Pop()
		return machine.ObjValue(lst)

	case map[string]interface{}:
		m := vm.NewMap()
		vm.Push(machine.ObjValue(m))
		ks := maps.Keys(data)
		slices.Sort(ks)
		for _, k := range ks {
			v := jsonToValue(vm, data[k])
			vm.Push(v)
			vm.SetMapValue(m, k, v)
			vm.Pop()
		}
		vm.Pop()
		return machine.ObjValue(m)
	}
	vm.Errorf("type", "parse_json: unsupported JSON value.")
	return machine.Nil
}

func toJSONNative(vm *machine.VM, argc int, args []machine.Value) machine.Value {
	data, ok := valueToJSON(vm, args[0], make(map[machine.Obj]bool))
	if !ok {
		return machine.Nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		vm.Errorf("type", "to_json: %s.", err)
		return machine.Nil
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return machine.ObjValue(vm.NewString(out))
}

// valueToJSON converts a machine value to a JSON-encodable Go value. Lists
// and maps can form cycles, which are detected and reported rather than
// recursed into.
func valueToJSON(vm *machine.VM, v machine.Value, seen map[machine.Obj]bool) (interface{}, bool) {
	switch {
	case v.IsNil():
		return nil, true
	case v.IsBool():
		return machine.Truth(v), true
	case v.IsNumber():
		return v.Num(), true
	}

	switch o := v.Obj().(type) {
	case *machine.String:
		return o.Str(), true

	case *machine.List:
		if seen[o] {
			vm.Errorf("type", "to_json: cycle detected.")
			return nil, false
		}
		seen[o] = true
		out := make([]interface{}, 0, o.Len())
		for _, e := range o.Elems() {
			je, ok := valueToJSON(vm, e, seen)
			if !ok {
				return nil, false
			}
			out = append(out, je)
		}
		delete(seen, o)
		return out, true

	case *machine.Map:
		if seen[o] {
			vm.Errorf("type", "to_json: cycle detected.")
			return nil, false
		}
		seen[o] = true
		out := make(map[string]interface{}, o.Len())
		failed := false
		o.Iter(func(k *machine.String, e machine.Value) bool {
			je, ok := valueToJSON(vm, e, seen)
			if !ok {
				failed = true
				return true
			}
			out[k.Str()] = je
			return false
		})
		if failed {
			return nil, false
		}
		delete(seen, o)
		return out, true
	}

	vm.Errorf("type", "to_json: cannot serialize %s value.", v.TypeName())
	return nil, false
}
