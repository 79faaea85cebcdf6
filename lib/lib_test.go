package lib_test

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/glipt-org/glipt/lang/compiler"
	"github.com/glipt-org/glipt/lang/machine"
	"github.com/glipt-org/glipt/lang/parser"
	"github.com/glipt-org/glipt/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOutput(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseChunk("test.glipt", []byte(src))
	require.NoError(t, err)
	cprog, err := compiler.Compile("test.glipt", prog)
	require.NoError(t, err)

	vm := machine.New()
	var out bytes.Buffer
	vm.Stdout = &out
	vm.Stderr = &out
	vm.Args = []string{"one", "two"}
	lib.Register(vm)
	_, err = vm.RunProgram(context.Background(), cprog)
	require.NoError(t, err)
	return out.String()
}

func TestPrintFormatting(t *testing.T) {
	got := runOutput(t, `print(1, "two", nil, true, [3, "x"])`)
	assert.Equal(t, "1 two nil true [3, \"x\"]\n", got)
}

func TestTypeStrBool(t *testing.T) {
	got := runOutput(t, `
print(type(1), type("s"), type(nil), type([]), type({}), type(print))
print(str(12.5) + "!")
print(bool(0), bool(""), bool(nil))
`)
	assert.Equal(t, "number string nil list map native\n12.5!\nfalse true false\n", got)
}

func TestLenAndAppendLaw(t *testing.T) {
	got := runOutput(t, `
xs = [1, 2]
n = len(xs)
append(xs, 9)
print(len(xs) == n + 1)
print(xs[2])
print(len("abc"), len({a: 1}))
`)
	assert.Equal(t, "true\n9\n3 1\n", got)
}

func TestRange(t *testing.T) {
	got := runOutput(t, `
print(range(0, 4))
print(range(2, 2))
print(len(range(-2, 2)))
`)
	assert.Equal(t, "[0, 1, 2, 3]\n[]\n4\n", got)
}

func TestKeysSorted(t *testing.T) {
	got := runOutput(t, `print(keys({b: 1, a: 2, c: 3}))`)
	assert.Equal(t, "[\"a\", \"b\", \"c\"]\n", got)
}

func TestMapFilterReduce(t *testing.T) {
	got := runOutput(t, `
xs = [1, 2, 3, 4]
print(map(xs, fn(x) { return x * x }))
print(filter(xs, fn(x) { return x % 2 == 0 }))
print(reduce(xs, fn(acc, x) { return acc + x }, 0))
print(reduce(xs, fn(acc, x) { return acc + str(x) }, ""))
`)
	assert.Equal(t, "[1, 4, 9, 16]\n[2, 4]\n10\n1234\n", got)
}

func TestJSONRoundTrip(t *testing.T) {
	got := runOutput(t, `
s = "{\"a\":1,\"b\":[true,null,\"x\"],\"c\":\"<&>\"}"
print(to_json(parse_json(s)) == s)
v = parse_json(s)
print(v.a, v.b[0], v.b[1], v.b[2], v.c)
`)
	assert.Equal(t, "true\n1 true nil x <&>\n", got)
}

func TestJSONScalars(t *testing.T) {
	got := runOutput(t, `
print(to_json(1.5), to_json("x"), to_json(true), to_json(nil), to_json([1, [2]]))
print(parse_json("42") + 1)
`)
	assert.Equal(t, "1.5 \"x\" true null [1,[2]]\n43\n", got)
}

func TestJSONCycleDetected(t *testing.T) {
	got := runOutput(t, `
on failure { print("caught: " + error.type) }
m = {}
m.self = m
to_json(m)
`)
	assert.Equal(t, "caught: type\n", got)
}

func TestArgsNative(t *testing.T) {
	got := runOutput(t, `
a = args()
print(len(a), a[0], a[1])
`)
	assert.Equal(t, "2 one two\n", got)
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	got := runOutput(t, `
allow exec "*"
r = exec "echo hi"
print(r.exitCode)
print(r.stdout)
`)
	assert.Equal(t, "0\nhi\n\n", got)
}

func TestExecFailureRaises(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	got := runOutput(t, `
allow exec "*"
on failure { print(error.type, error.exitCode) }
exec "exit 3"
print("never")
`)
	assert.Equal(t, "exec 3\n", got)
}

func TestParallel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	got := runOutput(t, `
allow exec "echo *"
rs = parallel(["echo one", "echo two"])
print(len(rs))
print(rs[0].stdout + rs[1].stdout)
`)
	assert.Equal(t, "2\none\ntwo\n\n", got)
}

func TestExecPermissionGlob(t *testing.T) {
	got := runOutput(t, `
allow exec "echo *"
on failure { print("denied") }
exec "rm -rf /tmp/nope"
print("never")
`)
	assert.Equal(t, "denied\n", got)
}
