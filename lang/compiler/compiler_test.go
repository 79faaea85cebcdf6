package compiler_test

import (
	"testing"

	"github.com/glipt-org/glipt/lang/compiler"
	"github.com/glipt-org/glipt/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *compiler.Program {
	t.Helper()
	prog, err := parser.ParseChunk("test.glipt", []byte(src))
	require.NoError(t, err)
	cprog, err := compiler.Compile("test.glipt", prog)
	require.NoError(t, err)
	return cprog
}

// ops decodes the opcode sequence of a chunk, skipping operand bytes.
func ops(fn *compiler.Funcode) []compiler.Opcode {
	var out []compiler.Opcode
	code := fn.Chunk.Code
	for i := 0; i < len(code); {
		op := compiler.Opcode(code[i])
		out = append(out, op)
		switch op {
		case compiler.CONSTANT, compiler.GET_LOCAL, compiler.SET_LOCAL,
			compiler.GET_GLOBAL, compiler.SET_GLOBAL, compiler.DEFINE_GLOBAL,
			compiler.GET_UPVALUE, compiler.SET_UPVALUE, compiler.CALL,
			compiler.BUILD_LIST, compiler.BUILD_MAP, compiler.GET_PROPERTY,
			compiler.SET_PROPERTY:
			i += 2
		case compiler.JUMP, compiler.JUMP_IF_FALSE, compiler.LOOP,
			compiler.ALLOW, compiler.IMPORT:
			i += 3
		case compiler.PUSH_HANDLER:
			i += 3
		case compiler.CLOSURE:
			idx := code[i+1]
			nested := fn.Chunk.Constants[idx].(*compiler.Funcode)
			i += 2 + 2*nested.NumUpvals
		default:
			i++
		}
	}
	return out
}

func TestCompileTopLevelAssignIsGlobal(t *testing.T) {
	// at script top level a bare assignment defines or updates a global,
	// even inside a nested block
	cprog := compile(t, "if true { x = 1 } print(x)")
	assert.Contains(t, ops(cprog.Toplevel), compiler.SET_GLOBAL)
	assert.NotContains(t, ops(cprog.Toplevel), compiler.SET_LOCAL)
}

func TestCompileFunctionAssignDeclaresLocal(t *testing.T) {
	cprog := compile(t, "fn f() { x = 1 return x }")
	fn := findFn(t, cprog.Toplevel, "f")
	seq := ops(fn)
	assert.NotContains(t, seq, compiler.SET_GLOBAL)
	assert.Contains(t, seq, compiler.GET_LOCAL)
}

func TestCompileShortCircuitAnd(t *testing.T) {
	cprog := compile(t, "x = a and b")
	seq := ops(cprog.Toplevel)
	// a, JUMP_IF_FALSE end, POP, b
	want := []compiler.Opcode{
		compiler.GET_GLOBAL, compiler.JUMP_IF_FALSE, compiler.POP,
		compiler.GET_GLOBAL, compiler.SET_GLOBAL, compiler.POP,
		compiler.NIL, compiler.RETURN,
	}
	assert.Equal(t, want, seq)
}

func TestCompileShortCircuitOr(t *testing.T) {
	cprog := compile(t, "x = a or b")
	seq := ops(cprog.Toplevel)
	want := []compiler.Opcode{
		compiler.GET_GLOBAL, compiler.JUMP_IF_FALSE, compiler.JUMP, compiler.POP,
		compiler.GET_GLOBAL, compiler.SET_GLOBAL, compiler.POP,
		compiler.NIL, compiler.RETURN,
	}
	assert.Equal(t, want, seq)
}

func TestCompileWhile(t *testing.T) {
	cprog := compile(t, "while x { print(x) }")
	seq := ops(cprog.Toplevel)
	want := []compiler.Opcode{
		compiler.GET_GLOBAL, compiler.JUMP_IF_FALSE, compiler.POP,
		compiler.GET_GLOBAL, compiler.GET_GLOBAL, compiler.CALL, compiler.POP,
		compiler.LOOP, compiler.POP,
		compiler.NIL, compiler.RETURN,
	}
	assert.Equal(t, want, seq)
}

func TestCompileUpvalueDescriptors(t *testing.T) {
	cprog := compile(t, "fn mk() { n = 0 return fn() { n = n + 1 return n } }")
	mk := findFn(t, cprog.Toplevel, "mk")

	var lambda *compiler.Funcode
	for _, c := range mk.Chunk.Constants {
		if f, ok := c.(*compiler.Funcode); ok {
			lambda = f
		}
	}
	require.NotNil(t, lambda)
	assert.Equal(t, 1, lambda.NumUpvals)
	assert.Equal(t, 0, lambda.Arity)

	// the CLOSURE instruction is followed by one (isLocal, index) pair:
	// capture of the enclosing local slot 1
	code := mk.Chunk.Code
	for i := 0; i < len(code); i++ {
		if compiler.Opcode(code[i]) == compiler.CLOSURE {
			assert.Equal(t, byte(1), code[i+2], "isLocal flag")
			assert.Equal(t, byte(1), code[i+3], "captured slot")
			return
		}
	}
	t.Fatal("no CLOSURE instruction found")
}

func TestCompileMatchLowering(t *testing.T) {
	cprog := compile(t, `r = match 2 { 1 -> "a", _ -> "c" }`)
	seq := ops(cprog.Toplevel)
	want := []compiler.Opcode{
		compiler.CONSTANT, // subject into its hidden slot
		compiler.GET_LOCAL, compiler.CONSTANT, compiler.EQUAL,
		compiler.JUMP_IF_FALSE, compiler.POP, compiler.CONSTANT, compiler.JUMP,
		compiler.POP,      // failed arm comparison
		compiler.CONSTANT, // wildcard body
		compiler.JUMP,
		compiler.SET_LOCAL, compiler.POP, // result overwrites the subject slot
		compiler.SET_GLOBAL, compiler.POP,
		compiler.NIL, compiler.RETURN,
	}
	assert.Equal(t, want, seq)
}

func TestCompileOnFailureLowering(t *testing.T) {
	cprog := compile(t, `on failure { print(error.message) } x = 1 / 0`)
	seq := ops(cprog.Toplevel)
	assert.Equal(t, compiler.PUSH_HANDLER, seq[0])
	assert.Contains(t, seq, compiler.POP_HANDLER)
	// the handler body reads the bound error local
	assert.Contains(t, seq, compiler.GET_LOCAL)
	assert.Contains(t, seq, compiler.GET_PROPERTY)
}

func TestCompilePipe(t *testing.T) {
	// a |> b compiles exactly as b(a)
	pipe := compile(t, "r = 5 |> inc")
	call := compile(t, "r = inc(5)")
	assert.Equal(t, pipe.Toplevel.Chunk.Code, call.Toplevel.Chunk.Code)
}

func TestCompileAllowAndImport(t *testing.T) {
	cprog := compile(t, `allow net "example.com" import "m"`)
	seq := ops(cprog.Toplevel)
	assert.Contains(t, seq, compiler.ALLOW)
	assert.Contains(t, seq, compiler.IMPORT)
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		"return 1",                     // top-level return
		"break",                        // break outside a loop
		"continue",                     // continue outside a loop
		"fn f() { let x = 1 let x = 2 }", // duplicate declaration
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			prog, err := parser.ParseChunk("test.glipt", []byte(src))
			require.NoError(t, err)
			_, err = compiler.Compile("test.glipt", prog)
			assert.Error(t, err)
		})
	}
}

func TestDisassemble(t *testing.T) {
	cprog := compile(t, "fn inc(n) { return n + 1 } print(5 |> inc)")
	dis := compiler.Disassemble(cprog)
	assert.Contains(t, dis, "closure")
	assert.Contains(t, dis, "get_global")
	assert.Contains(t, dis, "call")
	assert.Contains(t, dis, "inc")
}

func findFn(t *testing.T, top *compiler.Funcode, name string) *compiler.Funcode {
	t.Helper()
	for _, c := range top.Chunk.Constants {
		if f, ok := c.(*compiler.Funcode); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}
