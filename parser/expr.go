package parser

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/token"
)

// parseExpr runs the 12-level precedence cascade of spec.md 4.3/4.4,
// producing Binary/Unary/Grouping/Primary/Call nodes.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseLogicalOr()
}

func (p *Parser) binaryLevel(next func() ast.Expr, kinds ...token.Kind) ast.Expr {
	left := next()
	for {
		tok := p.s.Peek(0)
		matched := false
		for _, k := range kinds {
			if tok.Kind == k {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		p.s.Consume()
		right := next()
		left = ast.NewBinary(tok.Pos, tok.Kind, left, right)
	}
}

func (p *Parser) parseLogicalOr() ast.Expr {
	return p.binaryLevel(p.parseLogicalAnd, token.LogicalOr)
}
func (p *Parser) parseLogicalAnd() ast.Expr {
	return p.binaryLevel(p.parseBitOr, token.LogicalAnd)
}
func (p *Parser) parseBitOr() ast.Expr {
	return p.binaryLevel(p.parseBitXor, token.BitwiseOr)
}
func (p *Parser) parseBitXor() ast.Expr {
	return p.binaryLevel(p.parseBitAnd, token.BitwiseXor)
}
func (p *Parser) parseBitAnd() ast.Expr {
	return p.binaryLevel(p.parseEquality, token.BitwiseAnd)
}
func (p *Parser) parseEquality() ast.Expr {
	return p.binaryLevel(p.parseRelational, token.CompareEqual, token.CompareNotEqual)
}
func (p *Parser) parseRelational() ast.Expr {
	return p.binaryLevel(p.parseShift, token.CompareLess, token.CompareLessEqual,
		token.CompareGreater, token.CompareGreaterEqual)
}
func (p *Parser) parseShift() ast.Expr {
	return p.binaryLevel(p.parseAdditive, token.ShiftLeft, token.ShiftRight)
}
func (p *Parser) parseAdditive() ast.Expr {
	return p.binaryLevel(p.parseMultiplicative, token.Plus, token.Minus)
}
func (p *Parser) parseMultiplicative() ast.Expr {
	return p.binaryLevel(p.parseExponent, token.Times, token.Divide, token.Modulo)
}

// parseExponent is right-associative.
func (p *Parser) parseExponent() ast.Expr {
	left := p.parseUnary()
	if p.s.Peek(0).Kind == token.Exponent {
		tok := p.s.Consume()
		right := p.parseExponent()
		return ast.NewBinary(tok.Pos, tok.Kind, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.s.Peek(0)
	switch tok.Kind {
	case token.Minus, token.BitwiseNot, token.LogicalNot:
		p.s.Consume()
		return ast.NewUnary(tok.Pos, tok.Kind, p.parseUnary())
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.s.Peek(0)
	switch tok.Kind {
	case token.IntegerLiteral, token.NumberLiteral, token.CharacterLiteral,
		token.StringLiteral, token.Variable:
		p.s.Consume()
		return ast.NewPrimary(tok.Pos, tok)

	case token.Identifier:
		p.s.Consume()
		if p.s.Peek(0).Kind == token.LeftParen {
			return p.parseCall(tok)
		}
		return ast.NewPrimary(tok.Pos, tok)

	case token.LeftParen:
		p.s.Consume()
		inner := p.parseExpr()
		if p.s.Peek(0).Kind != token.RightParen {
			p.errf(p.s.Peek(0).Pos, "expected ')'")
		} else {
			p.s.Consume()
		}
		return ast.NewGrouping(tok.Pos, inner)

	default:
		p.errf(tok.Pos, "unexpected token %s in expression", tok.Kind)
		p.s.Consume()
		return ast.NewPrimary(tok.Pos, tok)
	}
}

func (p *Parser) parseCall(name token.Token) ast.Expr {
	p.s.Consume() // '('
	var args []ast.Expr
	if p.s.Peek(0).Kind != token.RightParen {
		args = append(args, p.parseExpr())
		for p.s.Peek(0).Kind == token.Comma {
			p.s.Consume()
			args = append(args, p.parseExpr())
		}
	}
	if p.s.Peek(0).Kind != token.RightParen {
		p.errf(p.s.Peek(0).Pos, "expected ')' after arguments to %s", name.Lexeme)
	} else {
		p.s.Consume()
	}
	return ast.NewCall(name.Pos, name.Lexeme, args)
}
