package vm

import (
	"strconv"

	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/diagnostics"
	"github.com/funvibe/vela/internal/lexer"
	"github.com/funvibe/vela/internal/logging"
	"github.com/funvibe/vela/internal/token"
)

// MaxNestingDepth bounds how deeply expressions may nest before the
// compiler gives up on them.
const MaxNestingDepth = 1024

// Precedence levels, lowest to highest
type Precedence int

const (
	PREC_NONE       Precedence = iota
	PREC_ASSIGNMENT            // =
	PREC_OR                    // or
	PREC_AND                   // and
	PREC_EQUALITY              // == !=
	PREC_COMPARISON            // < > <= >=
	PREC_TERM                  // + -
	PREC_FACTOR                // * /
	PREC_UNARY                 // ! -
	PREC_CALL                  // . ()
	PREC_PRIMARY
)

// ruleFn names a parse handler; the compiler dispatches on it with a switch.
type ruleFn uint8

const (
	fnNone ruleFn = iota
	fnGrouping
	fnUnary
	fnBinary
	fnNumber
	fnLiteral
)

type parseRule struct {
	prefix     ruleFn
	infix      ruleFn
	precedence Precedence
}

// rules is indexed by token type. Missing entries are {fnNone, fnNone,
// PREC_NONE}: comparison, equality and the logical keywords are scanned
// but have no grammar yet.
var rules = [token.Count]parseRule{
	token.LPAREN:   {fnGrouping, fnNone, PREC_NONE},
	token.MINUS:    {fnUnary, fnBinary, PREC_TERM},
	token.PLUS:     {fnNone, fnBinary, PREC_TERM},
	token.SLASH:    {fnNone, fnBinary, PREC_FACTOR},
	token.ASTERISK: {fnNone, fnBinary, PREC_FACTOR},
	token.BANG:     {fnUnary, fnNone, PREC_NONE},
	token.NUMBER:   {fnNumber, fnNone, PREC_NONE},
	token.FALSE:    {fnLiteral, fnNone, PREC_NONE},
	token.NULL:     {fnLiteral, fnNone, PREC_NONE},
	token.TRUE:     {fnLiteral, fnNone, PREC_NONE},
}

func getRule(t token.TokenType) parseRule {
	return rules[t]
}

// parser holds the one-token lookahead. It lives for a single Compile call.
type parser struct {
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
}

// CompileError carries every diagnostic reported by one Compile call.
type CompileError struct {
	Diagnostics []*diagnostics.DiagnosticError
}

func (e *CompileError) Error() string {
	return diagnostics.Join(e.Diagnostics)
}

// Compiler turns source text into a Chunk in a single pass.
type Compiler struct {
	source string
	lexer  *lexer.Lexer
	parser parser
	chunk  *Chunk
	depth  int

	// stackDepth is the operand count the emitted code leaves on the stack
	// at this point; it must never exceed stackMax.
	stackDepth int
	stackMax   int

	errors []*diagnostics.DiagnosticError

	file      string
	printCode bool
}

// NewCompiler creates a new compiler
func NewCompiler() *Compiler {
	return &Compiler{stackMax: config.DefaultStackMax}
}

// SetStackMax sets the operand stack capacity of the VM that will run the
// chunk. Expressions needing more slots fail to compile. Non-positive
// values select the default.
func (c *Compiler) SetStackMax(n int) {
	if n <= 0 {
		n = config.DefaultStackMax
	}
	c.stackMax = n
}

// SetFile records the source file name on chunks and diagnostics
func (c *Compiler) SetFile(file string) {
	c.file = file
}

// SetPrintCode logs the disassembly of every successful compile at debug level
func (c *Compiler) SetPrintCode(enabled bool) {
	c.printCode = enabled
}

// Compile compiles source into a chunk. On failure the chunk is nil and
// the error is a *CompileError listing every diagnostic.
func (c *Compiler) Compile(source string) (*Chunk, error) {
	c.source = source
	c.lexer = lexer.New(source)
	c.parser = parser{}
	c.chunk = NewChunk()
	c.chunk.File = c.file
	c.depth = 0
	c.stackDepth = 0
	c.errors = nil

	c.advance()
	c.expression()
	c.consume(token.EOF, "Expect end of expression.")
	c.endCompiler()

	chunk := c.chunk
	c.chunk = nil
	c.lexer = nil
	if c.parser.hadError {
		return nil, &CompileError{Diagnostics: c.errors}
	}
	return chunk, nil
}

// Compile is a convenience wrapper around NewCompiler().Compile.
func Compile(source string) (*Chunk, error) {
	return NewCompiler().Compile(source)
}

// Error reporting

func (c *Compiler) errorAt(tok token.Token, code diagnostics.ErrorCode, message string) {
	if c.parser.panicMode {
		return
	}
	c.parser.panicMode = true
	c.parser.hadError = true

	err := diagnostics.NewError(code, tok, c.source, message)
	err.File = c.file
	c.errors = append(c.errors, err)
}

func (c *Compiler) error(code diagnostics.ErrorCode, message string) {
	c.errorAt(c.parser.previous, code, message)
}

func (c *Compiler) errorAtCurrent(code diagnostics.ErrorCode, message string) {
	c.errorAt(c.parser.current, code, message)
}

// Token stream

func (c *Compiler) advance() {
	c.parser.previous = c.parser.current

	for {
		c.parser.current = c.lexer.NextToken()
		if c.parser.current.Type != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(diagnostics.ErrL001, c.parser.current.Message)
	}
}

// consume advances past an expected token. A successful consume ends panic
// mode, so the next problem is reported again.
func (c *Compiler) consume(t token.TokenType, message string) {
	if c.parser.current.Type == t {
		c.advance()
		c.parser.panicMode = false
		return
	}
	c.errorAtCurrent(diagnostics.ErrP001, message)
}

// Emission

func (c *Compiler) emitOp(op Opcode) {
	c.chunk.WriteOp(op, c.parser.previous.Line)
	c.adjustStack(op)
}

func (c *Compiler) emitConstant(value Value) {
	if _, err := c.chunk.WriteConstant(value, c.parser.previous.Line); err != nil {
		c.error(diagnostics.ErrC001, "Too many constants in one chunk.")
		return
	}
	c.adjustStack(OP_CONSTANT)
}

// adjustStack applies op's stack effect to the running depth and reports
// code that would overflow the VM's stack.
func (c *Compiler) adjustStack(op Opcode) {
	switch op {
	case OP_CONSTANT, OP_CONSTANT_LONG, OP_NIL, OP_TRUE, OP_FALSE:
		c.stackDepth++
	case OP_ADD, OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE, OP_RETURN:
		c.stackDepth--
	}
	if c.stackDepth > c.stackMax {
		c.error(diagnostics.ErrC002, "Expression too complex.")
	}
}

func (c *Compiler) endCompiler() {
	c.emitOp(OP_RETURN)

	if c.printCode && !c.parser.hadError {
		name := c.file
		if name == "" {
			name = "code"
		}
		logging.Get("compiler").Debugf("\n%s", Disassemble(c.chunk, name))
	}
}

// Expressions

func (c *Compiler) expression() {
	c.parsePrecedence(PREC_ASSIGNMENT)
}

// parsePrecedence parses any expression whose operators bind at least as
// tightly as prec. Infix handlers recurse with their own precedence + 1,
// which makes binary operators left-associative.
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > MaxNestingDepth {
		c.errorAtCurrent(diagnostics.ErrP003, "Expression nested too deeply.")
		return
	}

	c.advance()
	prefix := getRule(c.parser.previous.Type).prefix
	if prefix == fnNone {
		c.error(diagnostics.ErrP002, "Expect expression.")
		return
	}
	c.dispatch(prefix)

	for prec <= getRule(c.parser.current.Type).precedence {
		c.advance()
		c.dispatch(getRule(c.parser.previous.Type).infix)
	}
}

func (c *Compiler) dispatch(fn ruleFn) {
	switch fn {
	case fnGrouping:
		c.grouping()
	case fnUnary:
		c.unary()
	case fnBinary:
		c.binary()
	case fnNumber:
		c.number()
	case fnLiteral:
		c.literal()
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number() {
	lexeme := c.parser.previous.Lexeme(c.source)
	// The lexer only produces digits with an optional fraction, so the
	// only possible error is ErrRange, for which ParseFloat returns ±Inf.
	value, _ := strconv.ParseFloat(lexeme, 64)
	c.emitConstant(NumberVal(value))
}

func (c *Compiler) literal() {
	switch c.parser.previous.Type {
	case token.FALSE:
		c.emitOp(OP_FALSE)
	case token.NULL:
		c.emitOp(OP_NIL)
	case token.TRUE:
		c.emitOp(OP_TRUE)
	}
}

func (c *Compiler) unary() {
	operatorType := c.parser.previous.Type

	c.parsePrecedence(PREC_UNARY)

	switch operatorType {
	case token.MINUS:
		c.emitOp(OP_NEGATE)
	case token.BANG:
		c.emitOp(OP_NOT)
	}
}

func (c *Compiler) binary() {
	operatorType := c.parser.previous.Type
	rule := getRule(operatorType)
	c.parsePrecedence(rule.precedence + 1)

	switch operatorType {
	case token.PLUS:
		c.emitOp(OP_ADD)
	case token.MINUS:
		c.emitOp(OP_SUBTRACT)
	case token.ASTERISK:
		c.emitOp(OP_MULTIPLY)
	case token.SLASH:
		c.emitOp(OP_DIVIDE)
	}
}
