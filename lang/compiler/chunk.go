package compiler

// A Chunk is a compiled function body: the bytecode stream, a parallel
// array giving the source line that emitted each byte, and the constant
// pool. Constants are Go values at this stage - float64, string or
// *Funcode - and are materialized into machine values when a program is
// linked for execution.
type Chunk struct {
	Code      []byte
	Lines     []int32 // Lines[i] is the source line of Code[i]
	Constants []interface{}
}

func (c *Chunk) write(b byte, line int32) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// A Funcode is the code of a compiled function.
type Funcode struct {
	Name      string // empty for lambdas and the top level
	Arity     int
	NumUpvals int
	Chunk     Chunk
}

// A Program is the result of compiling one source file: the top-level
// function, with every nested function reachable through its constant
// pool.
type Program struct {
	Filename string
	Toplevel *Funcode
}
