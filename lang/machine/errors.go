package machine

import (
	"fmt"
	"strings"
)

// handler is a saved unwind point: the absolute instruction pointer of the
// handler body, and the frame count and stack top at push time.
type handler struct {
	ip       int
	frames   int
	stackTop int
}

// fatalError aborts interpretation; it is not catchable by script
// handlers. Value or call stack overflow, handler overflow and an unknown
// opcode raise it.
type fatalError struct{ msg string }

func (e fatalError) Error() string { return e.msg }

func (vm *VM) fatal(format string, args ...interface{}) {
	panic(fatalError{msg: fmt.Sprintf(format, args...)})
}

// A RuntimeError is returned by RunProgram when a runtime error reaches
// the top without a handler. Value is the error map seen by handlers.
type RuntimeError struct {
	Value   Value
	Message string
	Trace   string
}

func (e *RuntimeError) Error() string { return e.Message }

// Errorf raises a runtime error of the given type: it builds the error map
// with its message and type fields, sets the pending-error flag and
// records the value. The dispatch loop notices on its next iteration and
// unwinds to the nearest handler, or terminates.
func (vm *VM) Errorf(typ string, format string, args ...interface{}) {
	m := vm.NewMap()
	vm.push(ObjValue(m)) // root while interning the field strings
	vm.SetMapField(m, "message", fmt.Sprintf(format, args...))
	vm.SetMapField(m, "type", typ)
	vm.pop()
	vm.errValue = ObjValue(m)
	vm.hasError = true
}

// RaiseValue raises v as the pending error; handlers receive it verbatim.
// Re-raising from a handler body re-enters this mechanism and unwinds to
// the next outer handler.
func (vm *VM) RaiseValue(v Value) {
	vm.errValue = v
	vm.hasError = true
}

// HasPendingError reports whether an error is in flight; natives use it
// after re-entrant calls.
func (vm *VM) HasPendingError() bool { return vm.hasError }

// unwind transfers control to the innermost handler pushed within this
// interpreter invocation (frames above base). It restores the frame count
// and stack top recorded at push time, closes any upvalue still pointing
// above the restored top, pushes the error value for the handler body to
// bind, and jumps to the handler's saved ip. It reports false when no
// eligible handler exists.
func (vm *VM) unwind(base int) bool {
	if vm.handlerCount == 0 {
		return false
	}
	h := vm.handlers[vm.handlerCount-1]
	if h.frames <= base {
		// the handler belongs to an outer invocation; let the error
		// propagate out of this run
		return false
	}
	vm.handlerCount--

	vm.frameCount = h.frames
	vm.closeUpvalues(h.stackTop)
	vm.top = h.stackTop

	errv := vm.errValue
	vm.hasError = false
	vm.errValue = Nil
	vm.push(errv)
	vm.frames[vm.frameCount-1].ip = h.ip
	return true
}

// errorMessage extracts the message field of the pending error value for
// diagnostics; non-map error values render through their display form.
func (vm *VM) errorMessage() string {
	if vm.errValue.IsObj() {
		if m, ok := vm.errValue.Obj().(*Map); ok {
			if msg := m.Get(vm.NewString("message")); msg.IsObj() {
				if s, ok := msg.Obj().(*String); ok {
					return s.s
				}
			}
		}
	}
	return vm.errValue.String()
}

// stackTrace renders one line per live frame, innermost first.
func (vm *VM) stackTrace() string {
	var sb strings.Builder
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Fn
		line := int32(0)
		if ip := fr.ip - 1; ip >= 0 && ip < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[ip]
		}
		name := fn.NameOr("script")
		fmt.Fprintf(&sb, "[line %d] in %s\n", line, name)
	}
	return sb.String()
}
