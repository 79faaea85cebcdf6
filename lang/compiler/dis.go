package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders a compiled program in a textual form that closely
// matches the binary layout of the bytecode, one function at a time. It is
// meant for tests and for the disasm command.
func Disassemble(p *Program) string {
	var sb strings.Builder
	disFunc(&sb, p.Toplevel, fmt.Sprintf("<script %s>", p.Filename))
	return sb.String()
}

func disFunc(sb *strings.Builder, fn *Funcode, label string) {
	if fn.Name != "" {
		label = fn.Name
	}
	fmt.Fprintf(sb, "=== %s (arity %d, upvalues %d) ===\n", label, fn.Arity, fn.NumUpvals)

	var nested []*Funcode
	code := fn.Chunk.Code
	for off := 0; off < len(code); {
		off = disInstr(sb, fn, off)
	}
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.(*Funcode); ok {
			nested = append(nested, f)
		}
	}
	for _, f := range nested {
		sb.WriteByte('\n')
		disFunc(sb, f, "<lambda>")
	}
}

func disInstr(sb *strings.Builder, fn *Funcode, off int) int {
	code, lines := fn.Chunk.Code, fn.Chunk.Lines
	if off > 0 && lines[off] == lines[off-1] {
		fmt.Fprintf(sb, "%04d    | ", off)
	} else {
		fmt.Fprintf(sb, "%04d %4d ", off, lines[off])
	}

	op := Opcode(code[off])
	switch op {
	case CONSTANT, GET_GLOBAL, SET_GLOBAL, DEFINE_GLOBAL, GET_PROPERTY, SET_PROPERTY:
		idx := code[off+1]
		fmt.Fprintf(sb, "%-16s %3d %s\n", op, idx, constStr(fn, idx))
		return off + 2

	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, CALL, BUILD_LIST, BUILD_MAP:
		fmt.Fprintf(sb, "%-16s %3d\n", op, code[off+1])
		return off + 2

	case JUMP, JUMP_IF_FALSE, PUSH_HANDLER:
		jump := int(code[off+1])<<8 | int(code[off+2])
		fmt.Fprintf(sb, "%-16s %3d -> %d\n", op, jump, off+3+jump)
		return off + 3

	case LOOP:
		jump := int(code[off+1])<<8 | int(code[off+2])
		fmt.Fprintf(sb, "%-16s %3d -> %d\n", op, jump, off+3-jump)
		return off + 3

	case CLOSURE:
		idx := code[off+1]
		fmt.Fprintf(sb, "%-16s %3d %s\n", op, idx, constStr(fn, idx))
		off += 2
		nested, _ := fn.Chunk.Constants[idx].(*Funcode)
		n := 0
		if nested != nil {
			n = nested.NumUpvals
		}
		for i := 0; i < n; i++ {
			kind := "upvalue"
			if code[off] == 1 {
				kind = "local"
			}
			fmt.Fprintf(sb, "%04d    |   capture %s %d\n", off, kind, code[off+1])
			off += 2
		}
		return off

	case ALLOW:
		perm := Perm(code[off+1])
		idx := code[off+2]
		fmt.Fprintf(sb, "%-16s %s %s\n", op, perm, constStr(fn, idx))
		return off + 3

	case IMPORT:
		path, name := code[off+1], code[off+2]
		fmt.Fprintf(sb, "%-16s %s as %s\n", op, constStr(fn, path), constStr(fn, name))
		return off + 3

	default:
		fmt.Fprintf(sb, "%s\n", op)
		return off + 1
	}
}

func constStr(fn *Funcode, idx byte) string {
	if int(idx) >= len(fn.Chunk.Constants) {
		return "<bad constant>"
	}
	switch c := fn.Chunk.Constants[idx].(type) {
	case string:
		return fmt.Sprintf("%q", c)
	case float64:
		return fmt.Sprintf("%g", c)
	case *Funcode:
		if c.Name != "" {
			return "<fn " + c.Name + ">"
		}
		return "<fn>"
	default:
		return fmt.Sprintf("%v", c)
	}
}
