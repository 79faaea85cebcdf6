package machine

import (
	"fmt"

	"github.com/glipt-org/glipt/lang/compiler"
)

// link materializes a compiled function into a Function object: string
// constants are interned, numbers become values and nested functions link
// recursively. The function under construction stays rooted on the value
// stack because interning may collect.
func (vm *VM) link(fc *compiler.Funcode) *Function {
	fn := vm.newFunction(fc.Arity, fc.NumUpvals)
	vm.push(ObjValue(fn))

	fn.Chunk.Code = fc.Chunk.Code
	fn.Chunk.Lines = fc.Chunk.Lines
	fn.Chunk.Constants = make([]Value, len(fc.Chunk.Constants))
	for i, c := range fc.Chunk.Constants {
		switch c := c.(type) {
		case float64:
			fn.Chunk.Constants[i] = Number(c)
		case string:
			fn.Chunk.Constants[i] = ObjValue(vm.NewString(c))
		case *compiler.Funcode:
			fn.Chunk.Constants[i] = ObjValue(vm.link(c))
		default:
			panic(fmt.Sprintf("unexpected constant %T: %[1]v", c))
		}
	}
	if fc.Name != "" {
		fn.name = vm.NewString(fc.Name)
	}

	vm.pop()
	return fn
}
