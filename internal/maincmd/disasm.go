package maincmd

import (
	"context"
	"fmt"

	"github.com/glipt-org/glipt/lang/compiler"
	"github.com/glipt-org/glipt/lang/parser"
	"github.com/mna/mainer"
)

// Disasm compiles a script and prints its disassembled bytecode.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog, err := parser.ParseFile(args[0])
	if err != nil {
		return printError(stdio, &compileError{err: err})
	}
	cprog, err := compiler.Compile(args[0], prog)
	if err != nil {
		return printError(stdio, &compileError{err: err})
	}
	fmt.Fprint(stdio.Stdout, compiler.Disassemble(cprog))
	return nil
}
