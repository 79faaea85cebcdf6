package compiler

import "fmt"

// Opcode is a one-byte instruction of the virtual machine. Instructions are
// followed by their immediate operand bytes as documented below; jump
// offsets are 16-bit big-endian, every other operand is a single byte.
type Opcode uint8

// "x ADD y" style comments are stack pictures describing the state of the
// operand stack before and after execution of the instruction.
//
// OP<index> indicates an immediate operand that is an index into the
// current chunk's constant pool; OP<slot> an index into the frame's slots
// or the closure's upvalues.
const ( //nolint:revive
	// literals
	CONSTANT Opcode = iota //       - CONSTANT<index> value
	NIL                    //       - NIL             nil
	TRUE                   //       - TRUE            true
	FALSE                  //       - FALSE           false

	// arithmetic; ADD is overloaded for string concatenation
	ADD    //    x y ADD    x+y
	SUB    //    x y SUB    x-y
	MUL    //    x y MUL    x*y
	DIV    //    x y DIV    x/y
	MOD    //    x y MOD    x%y
	NEGATE //      x NEGATE -x

	// comparison and logic
	EQUAL         //  x y EQUAL         bool
	NOT_EQUAL     //  x y NOT_EQUAL     bool
	GREATER       //  x y GREATER       bool
	GREATER_EQUAL //  x y GREATER_EQUAL bool
	LESS          //  x y LESS          bool
	LESS_EQUAL    //  x y LESS_EQUAL    bool
	NOT           //    x NOT           bool

	// locals, globals and upvalues; the SET variants leave the assigned
	// value on the stack so that assignments are expressions
	GET_LOCAL     //      - GET_LOCAL<slot>      value
	SET_LOCAL     //  value SET_LOCAL<slot>      value
	GET_GLOBAL    //      - GET_GLOBAL<index>    value
	SET_GLOBAL    //  value SET_GLOBAL<index>    value
	DEFINE_GLOBAL //  value DEFINE_GLOBAL<index> -
	GET_UPVALUE   //      - GET_UPVALUE<slot>    value
	SET_UPVALUE   //  value SET_UPVALUE<slot>    value

	// control flow; JUMP_IF_FALSE does not pop the condition
	JUMP          //     - JUMP<off>          -
	JUMP_IF_FALSE //  cond JUMP_IF_FALSE<off> cond
	LOOP          //     - LOOP<off>          -    (ip -= off)

	// calls and closures
	CALL          // fn a1..aN CALL<argc>     result
	CLOSURE       //         - CLOSURE<index> closure  (followed by one
	RETURN        //     value RETURN         -         (isLocal, index) byte
	CLOSE_UPVALUE //     value CLOSE_UPVALUE  -         pair per upvalue)

	// aggregates
	BUILD_LIST   //     x1..xN BUILD_LIST<n>       list
	BUILD_MAP    // k1 v1..kN vN BUILD_MAP<n>      map
	INDEX_GET    //        a i INDEX_GET           a[i]
	INDEX_SET    //  a i value INDEX_SET           value
	GET_PROPERTY //          x GET_PROPERTY<index> x.name
	SET_PROPERTY //    x value SET_PROPERTY<index> value

	// side-band
	POP          //  x POP                    -
	ALLOW        //  - ALLOW<perm><index>     -
	PUSH_HANDLER //  - PUSH_HANDLER<off>      -
	POP_HANDLER  //  - POP_HANDLER            -
	IMPORT       //  - IMPORT<index><index>   -

	opcodeMax = IMPORT
)

var opcodeNames = [...]string{
	ADD:           "add",
	ALLOW:         "allow",
	BUILD_LIST:    "build_list",
	BUILD_MAP:     "build_map",
	CALL:          "call",
	CLOSE_UPVALUE: "close_upvalue",
	CLOSURE:       "closure",
	CONSTANT:      "constant",
	DEFINE_GLOBAL: "define_global",
	DIV:           "div",
	EQUAL:         "equal",
	FALSE:         "false",
	GET_GLOBAL:    "get_global",
	GET_LOCAL:     "get_local",
	GET_PROPERTY:  "get_property",
	GET_UPVALUE:   "get_upvalue",
	GREATER:       "greater",
	GREATER_EQUAL: "greater_equal",
	IMPORT:        "import",
	INDEX_GET:     "index_get",
	INDEX_SET:     "index_set",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LESS:          "less",
	LESS_EQUAL:    "less_equal",
	LOOP:          "loop",
	MOD:           "mod",
	MUL:           "mul",
	NEGATE:        "negate",
	NIL:           "nil",
	NOT:           "not",
	NOT_EQUAL:     "not_equal",
	POP:           "pop",
	POP_HANDLER:   "pop_handler",
	PUSH_HANDLER:  "push_handler",
	RETURN:        "return",
	SET_GLOBAL:    "set_global",
	SET_LOCAL:     "set_local",
	SET_PROPERTY:  "set_property",
	SET_UPVALUE:   "set_upvalue",
	SUB:           "sub",
	TRUE:          "true",
}

func (op Opcode) String() string {
	if op <= opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// Perm identifies a permission kind, the first operand of the ALLOW
// instruction.
type Perm uint8

// Permission kinds.
const (
	PermRead Perm = iota
	PermWrite
	PermNet
	PermExec
	PermEnv

	permMax = PermEnv
)

var permNames = [...]string{
	PermRead:  "read",
	PermWrite: "write",
	PermNet:   "net",
	PermExec:  "exec",
	PermEnv:   "env",
}

func (p Perm) String() string {
	if p <= permMax {
		return permNames[p]
	}
	return fmt.Sprintf("illegal perm (%d)", uint8(p))
}

// LookupPerm maps a permission name to its kind; ok is false if the name is
// not a valid permission kind.
func LookupPerm(name string) (p Perm, ok bool) {
	for i, nm := range permNames {
		if nm == name {
			return Perm(i), true
		}
	}
	return 0, false
}
