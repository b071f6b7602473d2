package parser

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/token"
)

// parseDirective dispatches on the assembler-directive discriminant
// carried in the keyword table entry, per spec.md 4.4.
func (p *Parser) parseDirective(entry keyword.Entry) ast.Statement {
	tok := p.s.Consume()
	pos := tok.Pos

	var stmt ast.Statement
	switch entry.Param1 {
	case keyword.DirOrg:
		stmt = ast.NewOrg(pos, p.parseExpr())
	case keyword.DirRom:
		stmt = ast.NewRom(pos)
	case keyword.DirRam:
		stmt = ast.NewRam(pos)
	case keyword.DirCode:
		stmt = ast.NewCode(pos)
	case keyword.DirData:
		stmt = ast.NewData(pos)
	case keyword.DirBss:
		stmt = ast.NewBss(pos)
	case keyword.DirInt:
		stmt = ast.NewInt(pos, p.parseExpr())
	case keyword.DirByte:
		stmt = ast.NewByte(pos, p.parseExprList())
	case keyword.DirWord:
		stmt = ast.NewWord(pos, p.parseExprList())
	case keyword.DirDword:
		stmt = ast.NewDword(pos, p.parseExprList())
	case keyword.DirSpace:
		stmt = ast.NewSpace(pos, p.parseExpr())
	case keyword.DirGlobal:
		stmt = ast.NewGlobal(pos, p.parseNameList())
	case keyword.DirExtern:
		stmt = ast.NewExtern(pos, p.parseNameList())
	case keyword.DirLet:
		name, expr := p.parseNameEqualsExpr()
		stmt = ast.NewLet(pos, name, expr)
	case keyword.DirConst:
		name, expr := p.parseNameEqualsExpr()
		stmt = ast.NewConst(pos, name, expr)
	case keyword.DirMetadata:
		field, value := p.parseMetadataArgs()
		stmt = ast.NewMetadata(pos, field, value)
	default:
		p.errf(pos, "directive %q is not implemented", tok.Lexeme)
		p.synchronize()
		return nil
	}

	p.expectStatementEnd()
	return stmt
}

func (p *Parser) parseExprList() []ast.Expr {
	var exprs []ast.Expr
	exprs = append(exprs, p.parseExpr())
	for p.s.Peek(0).Kind == token.Comma {
		p.s.Consume()
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}

func (p *Parser) parseNameList() []string {
	var names []string
	if tok := p.s.Peek(0); tok.Kind == token.Identifier {
		p.s.Consume()
		names = append(names, tok.Lexeme)
	} else {
		p.errf(tok.Pos, "expected identifier")
		return names
	}
	for p.s.Peek(0).Kind == token.Comma {
		p.s.Consume()
		tok := p.s.Peek(0)
		if tok.Kind != token.Identifier {
			p.errf(tok.Pos, "expected identifier")
			break
		}
		p.s.Consume()
		names = append(names, tok.Lexeme)
	}
	return names
}

func (p *Parser) parseNameEqualsExpr() (string, ast.Expr) {
	nameTok := p.s.Peek(0)
	if nameTok.Kind != token.Variable {
		p.errf(nameTok.Pos, "expected variable")
		return "", nil
	}
	p.s.Consume()
	if p.s.Peek(0).Kind != token.AssignEqual {
		p.errf(p.s.Peek(0).Pos, "expected '='")
		return nameTok.Lexeme[1:], nil
	}
	p.s.Consume()
	return nameTok.Lexeme[1:], p.parseExpr()
}

// parseMetadataArgs parses ".metadata field, \"value\"" for the
// supplemented .metadata directive (SPEC_FULL.md).
func (p *Parser) parseMetadataArgs() (string, string) {
	fieldTok := p.s.Peek(0)
	if fieldTok.Kind != token.Identifier {
		p.errf(fieldTok.Pos, "expected metadata field name")
		return "", ""
	}
	p.s.Consume()
	if p.s.Peek(0).Kind != token.Comma {
		p.errf(p.s.Peek(0).Pos, "expected ','")
		return fieldTok.Lexeme, ""
	}
	p.s.Consume()
	valTok := p.s.Peek(0)
	if valTok.Kind != token.StringLiteral {
		p.errf(valTok.Pos, "expected string literal metadata value")
		return fieldTok.Lexeme, ""
	}
	p.s.Consume()
	return fieldTok.Lexeme, valTok.Lexeme
}
