// Package eval implements the G10 assembler's expression evaluator: an
// operator-precedence parser over a token stream that produces a
// ppvalue.Value, used by the preprocessor (full type set). The code
// generator does not use it: it folds its restricted integer-only
// expressions directly over the AST (codegen/eval.go).
//
// Grounded on _examples/lookbusy1344-arm_emulator/encoder/encoder.go's
// evaluateExpression/evaluateTerm pair (a small precedence-climbing
// evaluator over already-lexed operands), generalized to the full
// twelve-level precedence table and built-in function library in
// spec.md 4.3. The ARM encoder only ever resolves integers; this version
// threads a ppvalue.Value through every level so the preprocessor's
// boolean/string/fixed-point arithmetic is handled by one implementation.
package eval

import (
	"math"

	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/ppvalue"
	"github.com/lookbusy1344/g10toolchain/token"
)

// Env resolves identifiers (macro/variable/symbol names) to values during
// evaluation. The preprocessor supplies its own implementation (ppEnv);
// MapEnv below serves tests and small fixed symbol sets.
type Env interface {
	Lookup(name string) (ppvalue.Value, bool)
}

// MapEnv is a simple Env backed by a map, useful for tests and for small
// fixed symbol sets.
type MapEnv map[string]ppvalue.Value

func (m MapEnv) Lookup(name string) (ppvalue.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// evaluator threads a token stream, an identifier environment, and an
// error sink through a standard precedence-climbing descent.
type evaluator struct {
	s    *lexer.Stream
	env  Env
	errs *diag.List
}

// Eval parses and evaluates one expression starting at the stream's
// current position, consuming exactly the tokens that make up the
// expression and leaving the cursor on the first token past it.
func Eval(s *lexer.Stream, env Env, errs *diag.List) ppvalue.Value {
	e := &evaluator{s: s, env: env, errs: errs}
	return e.parseOr()
}

func (e *evaluator) fail(pos token.Position, format string, args ...any) ppvalue.Value {
	e.errs.Addf(pos, diag.EvalError, format, args...)
	return ppvalue.VoidValue()
}

func (e *evaluator) parseOr() ppvalue.Value {
	left := e.parseAnd()
	for e.s.Peek(0).Kind == token.LogicalOr {
		e.s.Consume()
		right := e.parseAnd()
		left = ppvalue.BoolValue(left.Truthy() || right.Truthy())
	}
	return left
}

func (e *evaluator) parseAnd() ppvalue.Value {
	left := e.parseBitOr()
	for e.s.Peek(0).Kind == token.LogicalAnd {
		e.s.Consume()
		right := e.parseBitOr()
		left = ppvalue.BoolValue(left.Truthy() && right.Truthy())
	}
	return left
}

func (e *evaluator) parseBitOr() ppvalue.Value {
	left := e.parseBitXor()
	for e.s.Peek(0).Kind == token.BitwiseOr {
		pos := e.s.Consume().Pos
		right := e.parseBitXor()
		left = e.intBinOp(pos, left, right, func(a, b int64) int64 { return a | b })
	}
	return left
}

func (e *evaluator) parseBitXor() ppvalue.Value {
	left := e.parseBitAnd()
	for e.s.Peek(0).Kind == token.BitwiseXor {
		pos := e.s.Consume().Pos
		right := e.parseBitAnd()
		left = e.intBinOp(pos, left, right, func(a, b int64) int64 { return a ^ b })
	}
	return left
}

func (e *evaluator) parseBitAnd() ppvalue.Value {
	left := e.parseEquality()
	for e.s.Peek(0).Kind == token.BitwiseAnd {
		pos := e.s.Consume().Pos
		right := e.parseEquality()
		left = e.intBinOp(pos, left, right, func(a, b int64) int64 { return a & b })
	}
	return left
}

func (e *evaluator) parseEquality() ppvalue.Value {
	left := e.parseRelational()
	for {
		switch e.s.Peek(0).Kind {
		case token.CompareEqual:
			e.s.Consume()
			left = ppvalue.BoolValue(e.valuesEqual(left, e.parseRelational()))
		case token.CompareNotEqual:
			e.s.Consume()
			left = ppvalue.BoolValue(!e.valuesEqual(left, e.parseRelational()))
		default:
			return left
		}
	}
}

func (e *evaluator) valuesEqual(a, b ppvalue.Value) bool {
	if a.Type == ppvalue.String || b.Type == ppvalue.String {
		return a.String() == b.String()
	}
	af, _ := a.AsFloat64()
	bf, _ := b.AsFloat64()
	return af == bf
}

func (e *evaluator) parseRelational() ppvalue.Value {
	left := e.parseShift()
	for {
		switch e.s.Peek(0).Kind {
		case token.CompareLess:
			e.s.Consume()
			left = e.floatCompare(left, e.parseShift(), func(a, b float64) bool { return a < b })
		case token.CompareLessEqual:
			e.s.Consume()
			left = e.floatCompare(left, e.parseShift(), func(a, b float64) bool { return a <= b })
		case token.CompareGreater:
			e.s.Consume()
			left = e.floatCompare(left, e.parseShift(), func(a, b float64) bool { return a > b })
		case token.CompareGreaterEqual:
			e.s.Consume()
			left = e.floatCompare(left, e.parseShift(), func(a, b float64) bool { return a >= b })
		default:
			return left
		}
	}
}

func (e *evaluator) floatCompare(a, b ppvalue.Value, cmp func(float64, float64) bool) ppvalue.Value {
	af, err1 := a.AsFloat64()
	bf, err2 := b.AsFloat64()
	if err1 != nil || err2 != nil {
		return e.fail(token.Position{}, "cannot compare %s and %s", a.Type, b.Type)
	}
	return ppvalue.BoolValue(cmp(af, bf))
}

func (e *evaluator) parseShift() ppvalue.Value {
	left := e.parseAdditive()
	for {
		switch e.s.Peek(0).Kind {
		case token.ShiftLeft:
			pos := e.s.Consume().Pos
			left = e.intBinOp(pos, left, e.parseAdditive(), func(a, b int64) int64 { return a << uint(b&63) })
		case token.ShiftRight:
			pos := e.s.Consume().Pos
			left = e.intBinOp(pos, left, e.parseAdditive(), func(a, b int64) int64 { return a >> uint(b&63) })
		default:
			return left
		}
	}
}

func (e *evaluator) parseAdditive() ppvalue.Value {
	left := e.parseMultiplicative()
	for {
		switch e.s.Peek(0).Kind {
		case token.Plus:
			pos := e.s.Consume().Pos
			left = e.arith(pos, left, e.parseMultiplicative(), func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
		case token.Minus:
			pos := e.s.Consume().Pos
			left = e.arith(pos, left, e.parseMultiplicative(), func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
		default:
			return left
		}
	}
}

func (e *evaluator) parseMultiplicative() ppvalue.Value {
	left := e.parseExponent()
	for {
		switch e.s.Peek(0).Kind {
		case token.Times:
			pos := e.s.Consume().Pos
			left = e.arith(pos, left, e.parseExponent(), func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
		case token.Divide:
			pos := e.s.Consume().Pos
			right := e.parseExponent()
			left = e.divOp(pos, left, right, "/")
		case token.Modulo:
			pos := e.s.Consume().Pos
			right := e.parseExponent()
			left = e.divOp(pos, left, right, "%")
		default:
			return left
		}
	}
}

// parseExponent is right-associative: a ** b ** c == a ** (b ** c).
func (e *evaluator) parseExponent() ppvalue.Value {
	left := e.parseUnary()
	if e.s.Peek(0).Kind == token.Exponent {
		pos := e.s.Consume().Pos
		right := e.parseExponent()
		lf, err1 := left.AsFloat64()
		rf, err2 := right.AsFloat64()
		if err1 != nil || err2 != nil {
			return e.fail(pos, "invalid operands to **")
		}
		if left.Type == ppvalue.Number || right.Type == ppvalue.Number {
			return ppvalue.NumberValue(math.Pow(lf, rf))
		}
		return ppvalue.IntValue(int64(math.Pow(lf, rf)))
	}
	return left
}

func (e *evaluator) parseUnary() ppvalue.Value {
	switch e.s.Peek(0).Kind {
	case token.Minus:
		pos := e.s.Consume().Pos
		v := e.parseUnary()
		if v.Type == ppvalue.Number {
			return ppvalue.NumberValue(-v.Float)
		}
		i, err := v.AsInt64()
		if err != nil {
			return e.fail(pos, "cannot negate %s value", v.Type)
		}
		return ppvalue.IntValue(-i)
	case token.BitwiseNot:
		pos := e.s.Consume().Pos
		v := e.parseUnary()
		i, err := v.AsInt64()
		if err != nil {
			return e.fail(pos, "cannot apply ~ to %s value", v.Type)
		}
		return ppvalue.IntValue(^i)
	case token.LogicalNot:
		e.s.Consume()
		v := e.parseUnary()
		return ppvalue.BoolValue(!v.Truthy())
	default:
		return e.parsePrimary()
	}
}

func (e *evaluator) parsePrimary() ppvalue.Value {
	tok := e.s.Peek(0)
	switch tok.Kind {
	case token.IntegerLiteral:
		e.s.Consume()
		return ppvalue.IntValue(tok.IntValue)
	case token.NumberLiteral:
		e.s.Consume()
		return ppvalue.NumberValue(tok.FloatValue)
	case token.CharacterLiteral:
		e.s.Consume()
		return ppvalue.IntValue(tok.IntValue)
	case token.StringLiteral:
		e.s.Consume()
		return ppvalue.StringValue(tok.Lexeme)
	case token.LeftParen:
		e.s.Consume()
		v := e.parseOr()
		if e.s.Peek(0).Kind != token.RightParen {
			return e.fail(tok.Pos, "expected ')'")
		}
		e.s.Consume()
		return v
	case token.Variable:
		e.s.Consume()
		name := tok.Lexeme[1:]
		if v, ok := e.env.Lookup(name); ok {
			return v
		}
		return e.fail(tok.Pos, "undefined variable %q", tok.Lexeme)
	case token.Identifier:
		e.s.Consume()
		if e.s.Peek(0).Kind == token.LeftParen {
			return e.callFunction(tok)
		}
		if v, ok := e.env.Lookup(tok.Lexeme); ok {
			return v
		}
		return e.fail(tok.Pos, "undefined identifier %q", tok.Lexeme)
	case token.Keyword:
		entry := keyword.At(tok.Keyword.ID)
		if entry.Type == keyword.PreprocessorFunction {
			e.s.Consume()
			if e.s.Peek(0).Kind == token.LeftParen {
				return e.callFunction(tok)
			}
			return e.fail(tok.Pos, "expected '(' after %q", tok.Lexeme)
		}
		e.s.Consume()
		if v, ok := e.env.Lookup(tok.Lexeme); ok {
			return v
		}
		return e.fail(tok.Pos, "%q is not valid in an expression", tok.Lexeme)
	default:
		e.s.Consume()
		return e.fail(tok.Pos, "unexpected token %s in expression", tok.Kind)
	}
}

// callFunction parses a "(" arg {"," arg} ")" call on an already-consumed
// function-name token and dispatches it, special-casing defined(NAME)
// per spec.md 4.3 (its argument is a bare identifier, never evaluated).
func (e *evaluator) callFunction(name token.Token) ppvalue.Value {
	e.s.Consume() // '('

	if name.Lexeme == "defined" {
		arg := e.s.Consume()
		if arg.Kind != token.Identifier && arg.Kind != token.Keyword {
			return e.fail(arg.Pos, "defined() requires a bare identifier")
		}
		_, ok := e.env.Lookup(arg.Lexeme)
		if e.s.Peek(0).Kind == token.RightParen {
			e.s.Consume()
		}
		return ppvalue.BoolValue(ok)
	}

	var args []ppvalue.Value
	if e.s.Peek(0).Kind != token.RightParen {
		for {
			args = append(args, e.parseOr())
			if e.s.Peek(0).Kind != token.Comma {
				break
			}
			e.s.Consume()
		}
	}
	if e.s.Peek(0).Kind != token.RightParen {
		return e.fail(name.Pos, "expected ')' after arguments to %s", name.Lexeme)
	}
	e.s.Consume()

	fn, ok := builtins[name.Lexeme]
	if !ok {
		return e.fail(name.Pos, "unknown function %q", name.Lexeme)
	}
	v, err := fn(args)
	if err != nil {
		return e.fail(name.Pos, "%s: %v", name.Lexeme, err)
	}
	return v
}

func (e *evaluator) intBinOp(pos token.Position, a, b ppvalue.Value, op func(int64, int64) int64) ppvalue.Value {
	ai, err1 := a.AsInt64()
	bi, err2 := b.AsInt64()
	if err1 != nil || err2 != nil {
		return e.fail(pos, "invalid operands: %s, %s", a.Type, b.Type)
	}
	return ppvalue.IntValue(op(ai, bi))
}

// arith applies integer arithmetic unless either operand is a
// fixed-point number, in which case it promotes to float arithmetic per
// spec.md 4.3's type coercion rules.
func (e *evaluator) arith(pos token.Position, a, b ppvalue.Value, iop func(int64, int64) int64, fop func(float64, float64) float64) ppvalue.Value {
	if a.Type == ppvalue.String || b.Type == ppvalue.String {
		return e.fail(pos, "arithmetic is not defined on strings")
	}
	if a.Type == ppvalue.Number || b.Type == ppvalue.Number {
		af, err1 := a.AsFloat64()
		bf, err2 := b.AsFloat64()
		if err1 != nil || err2 != nil {
			return e.fail(pos, "invalid operands: %s, %s", a.Type, b.Type)
		}
		return ppvalue.NumberValue(fop(af, bf))
	}
	return e.intBinOp(pos, a, b, iop)
}

func (e *evaluator) divOp(pos token.Position, a, b ppvalue.Value, op string) ppvalue.Value {
	if a.Type == ppvalue.Number || b.Type == ppvalue.Number {
		af, err1 := a.AsFloat64()
		bf, err2 := b.AsFloat64()
		if err1 != nil || err2 != nil {
			return e.fail(pos, "invalid operands: %s, %s", a.Type, b.Type)
		}
		if bf == 0 {
			return e.fail(pos, "division by zero")
		}
		if op == "/" {
			return ppvalue.NumberValue(af / bf)
		}
		return ppvalue.NumberValue(math.Mod(af, bf))
	}
	ai, err1 := a.AsInt64()
	bi, err2 := b.AsInt64()
	if err1 != nil || err2 != nil {
		return e.fail(pos, "invalid operands: %s, %s", a.Type, b.Type)
	}
	if bi == 0 {
		return e.fail(pos, "division by zero")
	}
	if op == "/" {
		return ppvalue.IntValue(ai / bi)
	}
	return ppvalue.IntValue(ai % bi)
}
