// Package parser builds an ast.Module from the post-preprocessor token
// stream.
//
// Grounded on _examples/lookbusy1344-arm_emulator/parser/parser.go for
// the overall shape (a Parser struct wrapping a token source, producing
// a Program/Module of statements with per-statement error recovery), but
// restructured around spec.md 4.4's statement dispatch (keyword category
// drives parse_instruction vs parse_directive) and its closed AST node
// set instead of the teacher's flat Instruction/Directive structs.
package parser

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// Parser consumes a token stream and builds an AST module, recovering
// from per-statement errors by resynchronizing at the next newline.
type Parser struct {
	s    *lexer.Stream
	errs *diag.List
}

// New creates a parser over an already-preprocessed token stream.
func New(s *lexer.Stream, errs *diag.List) *Parser {
	return &Parser{s: s, errs: errs}
}

// Parse consumes the entire stream and returns the resulting module. It
// never returns a nil module; check errs.HasErrors() for failure.
func (p *Parser) Parse() *ast.Module {
	mod := &ast.Module{}
	for !p.s.AtEOF() {
		if p.s.Peek(0).Kind == token.NewLine {
			p.s.Consume()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Statements = append(mod.Statements, stmt)
		}
	}
	return mod
}

func (p *Parser) errf(pos token.Position, format string, args ...any) {
	p.errs.Addf(pos, diag.ParseError, format, args...)
}

// synchronize discards tokens up to and including the next newline, or
// until EOF, so one bad statement doesn't cascade into spurious errors
// on every statement after it.
func (p *Parser) synchronize() {
	for !p.s.AtEOF() && p.s.Peek(0).Kind != token.NewLine {
		p.s.Consume()
	}
	if p.s.Peek(0).Kind == token.NewLine {
		p.s.Consume()
	}
}

func (p *Parser) expectStatementEnd() {
	if p.s.AtEOF() {
		return
	}
	if p.s.Peek(0).Kind != token.NewLine {
		p.errf(p.s.Peek(0).Pos, "expected end of line, found %s", p.s.Peek(0).Kind)
		p.synchronize()
		return
	}
	p.s.Consume()
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.s.Peek(0)

	switch tok.Kind {
	case token.Identifier:
		if p.s.Peek(1).Kind == token.Colon {
			p.s.Consume()
			p.s.Consume()
			return ast.NewLabelDefinition(tok.Pos, tok.Lexeme)
		}
		p.errf(tok.Pos, "unexpected identifier %q: not a label or instruction", tok.Lexeme)
		p.synchronize()
		return nil

	case token.Variable:
		if isAssignOp(p.s.Peek(1).Kind) {
			return p.parseVarAssignment()
		}
		p.errf(tok.Pos, "expected assignment operator after %q", tok.Lexeme)
		p.synchronize()
		return nil

	case token.Keyword:
		entry := keyword.At(tok.Keyword.ID)
		switch entry.Type {
		case keyword.InstructionMnemonic:
			return p.parseInstruction()
		case keyword.AssemblerDirective:
			return p.parseDirective(entry)
		default:
			p.errf(tok.Pos, "%q is not valid at the start of a statement", tok.Lexeme)
			p.synchronize()
			return nil
		}

	default:
		p.errf(tok.Pos, "unexpected token %s", tok.Kind)
		p.synchronize()
		return nil
	}
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.AssignEqual, token.AssignPlus, token.AssignMinus, token.AssignTimes,
		token.AssignExponent, token.AssignDivide, token.AssignModulo, token.AssignAnd,
		token.AssignOr, token.AssignXor, token.AssignShiftLeft, token.AssignShiftRight:
		return true
	default:
		return false
	}
}

func (p *Parser) parseVarAssignment() ast.Statement {
	name := p.s.Consume()
	op := p.s.Consume()
	expr := p.parseExpr()
	p.expectStatementEnd()
	return ast.NewVarAssignment(name.Pos, name.Lexeme[1:], op.Kind, expr)
}

func (p *Parser) parseInstruction() ast.Statement {
	tok := p.s.Consume()
	entry := keyword.At(tok.Keyword.ID)
	inst := ast.NewInstruction(tok.Pos, tok.Lexeme, entry.Param1)

	for !p.s.AtEOF() && p.s.Peek(0).Kind != token.NewLine && len(inst.Operands) < 2 {
		op := p.parseOperand()
		if op != nil {
			inst.Operands = append(inst.Operands, op)
		}
		if p.s.Peek(0).Kind == token.Comma {
			p.s.Consume()
			continue
		}
		break
	}
	p.expectStatementEnd()
	return inst
}

// parseOperand implements spec.md 4.4's operand dispatch: register and
// condition keywords map directly, '[' opens a memory operand, anything
// else is an immediate expression.
func (p *Parser) parseOperand() ast.Operand {
	tok := p.s.Peek(0)

	if tok.Kind == token.Keyword {
		entry := keyword.At(tok.Keyword.ID)
		switch entry.Type {
		case keyword.RegisterName:
			p.s.Consume()
			return ast.NewRegister(tok.Pos, entry.Param1>>4, entry.Param1&0x0F)
		case keyword.BranchingCondition:
			p.s.Consume()
			return ast.NewCondition(tok.Pos, entry.Param1)
		}
	}

	if tok.Kind == token.LeftBracket {
		p.s.Consume()
		inner := p.s.Peek(0)
		if inner.Kind == token.Keyword {
			if entry := keyword.At(inner.Keyword.ID); entry.Type == keyword.RegisterName {
				p.s.Consume()
				reg := ast.NewRegister(inner.Pos, entry.Param1>>4, entry.Param1&0x0F)
				p.expectCloseBracket()
				return ast.NewIndirectMemory(tok.Pos, reg)
			}
		}
		addr := p.parseExpr()
		p.expectCloseBracket()
		return ast.NewDirectMemory(tok.Pos, addr)
	}

	expr := p.parseExpr()
	return ast.NewImmediate(tok.Pos, expr)
}

func (p *Parser) expectCloseBracket() {
	if p.s.Peek(0).Kind != token.RightBracket {
		p.errf(p.s.Peek(0).Pos, "expected ']'")
		return
	}
	p.s.Consume()
}
