package codegen

import (
	"fmt"

	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/ppvalue"
	"github.com/lookbusy1344/g10toolchain/token"
)

// addrValue is the result of evaluating a codegen-restricted address
// expression: either a plain constant, or a constant offset (addend)
// from an unresolved extern symbol.
type addrValue struct {
	value int64
	sym   string // "" unless this expression resolves to symbol+addend
}

// evalExpr evaluates an ast.Expr over integers and addresses only: the
// restricted form of eval.Eval that spec.md 4.3 reserves for .org, data
// directives, and immediate operand resolution, operating directly on
// the parsed AST rather than re-lexing a token stream, since codegen
// runs after parsing has already consumed the tokens.
func (g *Generator) evalExpr(e ast.Expr) (addrValue, error) {
	switch n := e.(type) {
	case *ast.Primary:
		return g.evalPrimary(n)
	case *ast.Unary:
		return g.evalUnary(n)
	case *ast.Binary:
		return g.evalBinary(n)
	case *ast.Grouping:
		return g.evalExpr(n.Inner)
	case *ast.Call:
		return addrValue{}, fmt.Errorf("function calls are not supported in address/immediate expressions")
	default:
		return addrValue{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

func (g *Generator) evalPrimary(n *ast.Primary) (addrValue, error) {
	tok := n.Tok
	switch tok.Kind {
	case token.IntegerLiteral, token.CharacterLiteral:
		return addrValue{value: tok.IntValue}, nil
	case token.NumberLiteral:
		raw := ppvalue.FixedFromFloat(tok.FloatValue)
		return addrValue{value: int64(ppvalue.FixedHigh32(raw))}, nil
	case token.StringLiteral:
		return addrValue{}, fmt.Errorf("string literal not valid in an address/immediate expression")
	case token.Variable:
		name := tok.Lexeme[1:]
		v, ok := g.vars[name]
		if !ok {
			return addrValue{}, fmt.Errorf("undefined variable $%s", name)
		}
		return addrValue{value: v.value}, nil
	case token.Identifier:
		if li, ok := g.labels[tok.Lexeme]; ok {
			addr := g.sections[li.section].virtualAddr + li.offset
			return addrValue{value: int64(addr)}, nil
		}
		if g.externs[tok.Lexeme] {
			return addrValue{sym: tok.Lexeme}, nil
		}
		return addrValue{}, fmt.Errorf("undefined symbol %q", tok.Lexeme)
	default:
		return addrValue{}, fmt.Errorf("unexpected token %s in expression", tok.Kind)
	}
}

func (g *Generator) evalUnary(n *ast.Unary) (addrValue, error) {
	v, err := g.evalExpr(n.Operand)
	if err != nil {
		return addrValue{}, err
	}
	if v.sym != "" {
		return addrValue{}, fmt.Errorf("cannot apply a unary operator to external symbol %q", v.sym)
	}
	switch n.Op {
	case token.Minus:
		return addrValue{value: -v.value}, nil
	case token.BitwiseNot:
		return addrValue{value: ^v.value}, nil
	case token.LogicalNot:
		if v.value == 0 {
			return addrValue{value: 1}, nil
		}
		return addrValue{value: 0}, nil
	default:
		return addrValue{}, fmt.Errorf("unsupported unary operator %s", n.Op)
	}
}

func (g *Generator) evalBinary(n *ast.Binary) (addrValue, error) {
	l, err := g.evalExpr(n.Left)
	if err != nil {
		return addrValue{}, err
	}
	r, err := g.evalExpr(n.Right)
	if err != nil {
		return addrValue{}, err
	}

	if l.sym != "" && r.sym != "" {
		return addrValue{}, fmt.Errorf("cannot combine two relocatable symbols (%q and %q) in one expression", l.sym, r.sym)
	}

	if l.sym != "" || r.sym != "" {
		if n.Op != token.Plus && n.Op != token.Minus {
			return addrValue{}, fmt.Errorf("relocatable symbols only support + and - with a constant")
		}
		if r.sym != "" {
			if n.Op == token.Minus {
				return addrValue{}, fmt.Errorf("cannot subtract relocatable symbol %q from a constant", r.sym)
			}
			return addrValue{value: r.value + l.value, sym: r.sym}, nil
		}
		delta := r.value
		if n.Op == token.Minus {
			delta = -delta
		}
		return addrValue{value: l.value + delta, sym: l.sym}, nil
	}

	switch n.Op {
	case token.Plus:
		return addrValue{value: l.value + r.value}, nil
	case token.Minus:
		return addrValue{value: l.value - r.value}, nil
	case token.Times:
		return addrValue{value: l.value * r.value}, nil
	case token.Divide:
		if r.value == 0 {
			return addrValue{}, fmt.Errorf("division by zero")
		}
		return addrValue{value: l.value / r.value}, nil
	case token.Modulo:
		if r.value == 0 {
			return addrValue{}, fmt.Errorf("division by zero")
		}
		return addrValue{value: l.value % r.value}, nil
	case token.BitwiseAnd:
		return addrValue{value: l.value & r.value}, nil
	case token.BitwiseOr:
		return addrValue{value: l.value | r.value}, nil
	case token.BitwiseXor:
		return addrValue{value: l.value ^ r.value}, nil
	case token.ShiftLeft:
		return addrValue{value: l.value << uint(r.value)}, nil
	case token.ShiftRight:
		return addrValue{value: l.value >> uint(r.value)}, nil
	case token.CompareEqual:
		return boolAddr(l.value == r.value), nil
	case token.CompareNotEqual:
		return boolAddr(l.value != r.value), nil
	case token.CompareLess:
		return boolAddr(l.value < r.value), nil
	case token.CompareLessEqual:
		return boolAddr(l.value <= r.value), nil
	case token.CompareGreater:
		return boolAddr(l.value > r.value), nil
	case token.CompareGreaterEqual:
		return boolAddr(l.value >= r.value), nil
	case token.LogicalAnd:
		return boolAddr(l.value != 0 && r.value != 0), nil
	case token.LogicalOr:
		return boolAddr(l.value != 0 || r.value != 0), nil
	case token.Exponent:
		return addrValue{value: intPow(l.value, r.value)}, nil
	default:
		return addrValue{}, fmt.Errorf("unsupported operator %s in address/immediate expression", n.Op)
	}
}

func boolAddr(b bool) addrValue {
	if b {
		return addrValue{value: 1}
	}
	return addrValue{value: 0}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// evalConst evaluates an expression that must not reference an
// unresolved extern symbol (.org targets, data-directive repeat counts,
// interrupt vector numbers).
func (g *Generator) evalConst(e ast.Expr, pos token.Position, what string) int64 {
	v, err := g.evalExpr(e)
	if err != nil {
		g.errs.Addf(pos, diag.CodegenError, "%s: %s", what, err)
		return 0
	}
	if v.sym != "" {
		g.errs.Addf(pos, diag.CodegenError, "%s: %q is an external symbol, not a constant", what, v.sym)
		return 0
	}
	return v.value
}
