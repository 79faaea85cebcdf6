package maincmd

import (
	"context"

	"github.com/glipt-org/glipt/lang/compiler"
	"github.com/glipt-org/glipt/lang/machine"
	"github.com/glipt-org/glipt/lang/parser"
	"github.com/glipt-org/glipt/lib"
	"github.com/mna/mainer"
)

// compileSource is the source-to-bytecode pipeline, also wired as the
// VM's import hook.
func compileSource(path string, src []byte) (*compiler.Program, error) {
	prog, err := parser.ParseChunk(path, src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(path, prog)
}

// Run compiles and executes a script file. Everything after a -- argument
// becomes the script's argument vector.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	file := args[0]
	scriptArgs := args[1:]
	if len(scriptArgs) > 0 && scriptArgs[0] == "--" {
		scriptArgs = scriptArgs[1:]
	}

	prog, err := parser.ParseFile(file)
	if err != nil {
		return printError(stdio, &compileError{err: err})
	}
	cprog, err := compiler.Compile(file, prog)
	if err != nil {
		return printError(stdio, &compileError{err: err})
	}

	vm := machine.New()
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr
	vm.Args = scriptArgs
	vm.Compile = compileSource
	vm.StressGC = c.conf.StressGC
	vm.DisableGlobalCache = c.conf.NoGlobalCache
	lib.Register(vm)

	if _, err := vm.RunProgram(ctx, cprog); err != nil {
		// the VM already reported the message and trace on stderr
		return &runtimeError{err: err}
	}
	return nil
}
