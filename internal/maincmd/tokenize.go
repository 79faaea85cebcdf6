package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/glipt-org/glipt/lang/scanner"
	"github.com/glipt-org/glipt/lang/token"
	"github.com/mna/mainer"
)

// Tokenize prints the token stream of a source file.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	b, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	var errs []error
	var s scanner.Scanner
	s.Init(b, func(pos token.Position, msg string) {
		errs = append(errs, scanner.Error{Pos: pos, Msg: msg})
	})

	var val token.Value
	for {
		tok := s.Scan(&val)
		fmt.Fprintf(stdio.Stdout, "%d:%d: %v %q\n", val.Pos.Line, val.Pos.Col, tok, val.Raw)
		if tok == token.EOF {
			break
		}
	}
	if len(errs) > 0 {
		return printError(stdio, &compileError{err: errors.Join(errs...)})
	}
	return nil
}
