package machine

// ObjType identifies the variant of a heap object; it is readable in O(1)
// from the common header embedded in every variant.
type ObjType uint8

// Heap object variants.
const (
	TypeString ObjType = iota
	TypeFunction
	TypeClosure
	TypeUpvalue
	TypeNative
	TypeList
	TypeMap
)

// header is the common prefix of every heap object: the type tag, the GC
// mark bit, the intrusive link to the next allocated object (the sweep
// walks this list) and the byte size accounted at allocation.
type header struct {
	typ    ObjType
	marked bool
	next   Obj
	size   int
}

func (h *header) hdr() *header { return h }

// Obj is implemented by every heap-allocated object. All objects are
// created through the VM allocation helpers, which link them into the
// object list and may trigger a collection, and destroyed exclusively by
// the sweeper.
type Obj interface {
	hdr() *header
}

// A String is an immutable byte sequence with its FNV-1a hash. All strings
// live in the VM's intern table: two string values are equal iff they are
// the same object.
type String struct {
	header
	s    string
	hash uint32
}

// Str returns the string's byte content.
func (s *String) Str() string { return s.s }

// A Chunk is a linked function body: the bytecode, the per-byte source line
// table and the constant pool, materialized as machine values.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []Value
}

// A Function is the linked form of a compiled function.
type Function struct {
	header
	Arity     int
	NumUpvals int
	Chunk     Chunk
	name      *String // nil for lambdas and the top level
}

// NameOr returns the function's name, or alt if it has none.
func (fn *Function) NameOr(alt string) string {
	if fn.name != nil {
		return fn.name.s
	}
	return alt
}

// An Upvalue is the reference through which a closure reaches a variable
// outside its own frame. While open it records the stack slot holding the
// variable and is linked into the VM's open-upvalue list; once closed it
// owns the value in closed and the slot is -1.
type Upvalue struct {
	header
	slot   int
	closed Value
	next   *Upvalue // next open upvalue, at a lower stack slot
}

// A Closure pairs a function with its captured upvalues.
type Closure struct {
	header
	Fn     *Function
	Upvals []*Upvalue
}

// NativeFn is the native function ABI: natives read their arguments from
// args (a window into the value stack), may push and pop temporary GC
// roots on the VM stack in balanced fashion, and return a single result.
// A native may instead raise through the VM's error helpers, in which case
// its return value is ignored.
type NativeFn func(vm *VM, argc int, args []Value) Value

// A Native is a host function callable from scripts. An arity of -1 means
// variadic; fixed arities are checked by the VM before invocation.
type Native struct {
	header
	name  string
	arity int
	fn    NativeFn
}

// A List is a contiguous growable array of values.
type List struct {
	header
	elems []Value
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Elems returns the backing slice; callers must not retain it across
// machine allocations without rooting the list.
func (l *List) Elems() []Value { return l.elems }

// Append appends values to the list.
func (l *List) Append(vs ...Value) { l.elems = append(l.elems, vs...) }

// ---- allocation helpers ----

// allocate links o into the object list, accounting size bytes, after
// giving the collector a chance to run. Callers allocating several objects
// before linking them to a root must keep intermediates on the value stack.
func (vm *VM) allocate(o Obj, size int) {
	vm.bytesAllocated += size
	if vm.bytesAllocated > vm.nextGC || vm.StressGC {
		vm.collectGarbage()
	}
	h := o.hdr()
	h.size = size
	h.next = vm.objects
	vm.objects = o
}

const (
	baseObjSize     = 32
	perValueSize    = 16
	perUpvalRefSize = 8
)

// NewString returns the interned string object for s, allocating it on
// first use.
func (vm *VM) NewString(s string) *String {
	hash := hashString(s)
	if interned := vm.strings.findString(s, hash); interned != nil {
		return interned
	}
	str := &String{header: header{typ: TypeString}, s: s, hash: hash}
	vm.allocate(str, baseObjSize+len(s))
	vm.strings.set(str, Nil)
	return str
}

func (vm *VM) newFunction(arity, numUpvals int) *Function {
	fn := &Function{header: header{typ: TypeFunction}, Arity: arity, NumUpvals: numUpvals}
	vm.allocate(fn, baseObjSize)
	return fn
}

func (vm *VM) newClosure(fn *Function) *Closure {
	cl := &Closure{header: header{typ: TypeClosure}, Fn: fn}
	vm.allocate(cl, baseObjSize+fn.NumUpvals*perUpvalRefSize)
	cl.Upvals = make([]*Upvalue, fn.NumUpvals)
	return cl
}

func (vm *VM) newUpvalue(slot int) *Upvalue {
	uv := &Upvalue{header: header{typ: TypeUpvalue}, slot: slot}
	vm.allocate(uv, baseObjSize)
	return uv
}

func (vm *VM) newNative(name string, arity int, fn NativeFn) *Native {
	n := &Native{header: header{typ: TypeNative}, name: name, arity: arity, fn: fn}
	vm.allocate(n, baseObjSize)
	return n
}

// NewList returns a new list owning elems.
func (vm *VM) NewList(elems []Value) *List {
	l := &List{header: header{typ: TypeList}, elems: elems}
	vm.allocate(l, baseObjSize+len(elems)*perValueSize)
	return l
}
