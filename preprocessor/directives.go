package preprocessor

import (
	"fmt"
	"os"

	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// dispatchKeyword consumes and handles tok if it names a preprocessor
// directive. Assembler directives, instruction mnemonics, registers, and
// conditions all fall through untouched: they belong to the parser, not
// the preprocessor.
func (p *Preprocessor) dispatchKeyword(s *lexer.Stream, tok token.Token) bool {
	entry := keyword.At(tok.Keyword.ID)
	if entry.Type != keyword.PreprocessorDirective {
		return false
	}
	s.Consume()
	p.handleDirective(s, entry.Param1, tok.Pos)
	return true
}

func (p *Preprocessor) handleDirective(s *lexer.Stream, id int, pos token.Position) {
	switch id {
	case keyword.DirPragma:
		p.handlePragma(s, pos)
	case keyword.DirInclude:
		p.handleInclude(s, pos)

	case keyword.DirDefine:
		if p.cond.active() {
			p.handleDefine(s, pos)
		} else {
			readLine(s)
		}
	case keyword.DirMacro:
		if p.cond.active() {
			p.handleMacroDef(s, pos)
		} else {
			readLine(s)
			p.capturePairedBody(s, keyword.DirMacro, keyword.DirEndMacro, pos)
		}
	case keyword.DirEndMacro:
		p.errf(pos, ".endmacro without matching .macro")
		readLine(s)
	case keyword.DirShift:
		readLine(s)
		if p.cond.active() {
			p.handleShift(pos)
		}
	case keyword.DirUndef:
		line := readLine(s)
		if p.cond.active() && len(line) > 0 {
			p.macros.undef(line[0].Lexeme)
		}

	case keyword.DirIfdef, keyword.DirIfndef, keyword.DirIf,
		keyword.DirElseif, keyword.DirElse, keyword.DirEndif:
		p.handleConditional(s, id, pos)

	case keyword.DirRepeat:
		p.handleRepeat(s, pos)
	case keyword.DirEndRepeat:
		p.errf(pos, ".endrepeat without matching .repeat")
		readLine(s)
	case keyword.DirFor:
		p.handleFor(s, pos)
	case keyword.DirEndFor:
		p.errf(pos, ".endfor without matching .for")
		readLine(s)
	case keyword.DirWhile:
		p.handleWhile(s, pos)
	case keyword.DirEndWhile:
		p.errf(pos, ".endwhile without matching .while")
		readLine(s)
	case keyword.DirContinue:
		readLine(s)
		if !p.cond.active() {
			break
		}
		if p.loopDepth == 0 {
			p.errf(pos, ".continue used outside a loop")
		} else {
			p.loopSignal = sigContinue
		}
	case keyword.DirBreak:
		readLine(s)
		if !p.cond.active() {
			break
		}
		if p.loopDepth == 0 {
			p.errf(pos, ".break used outside a loop")
		} else {
			p.loopSignal = sigBreak
		}

	case keyword.DirInfo, keyword.DirWarning, keyword.DirError, keyword.DirFatal:
		if p.cond.active() {
			p.handleDiag(s, id, pos)
		} else {
			readLine(s)
		}
	case keyword.DirAssert:
		if p.cond.active() {
			p.handleAssert(s, pos)
		} else {
			readLine(s)
		}

	default:
		p.errf(pos, "unexpected preprocessor directive here")
		readLine(s)
	}
}

// handleConditional evaluates an .if-chain directive. The condition
// expression is only evaluated when the enclosing context is itself
// active, so a false branch's dead code never trips over an undefined
// macro reference.
func (p *Preprocessor) handleConditional(s *lexer.Stream, id int, pos token.Position) {
	parentOK := p.cond.parentActive()

	switch id {
	case keyword.DirIf:
		line := readLine(s)
		cond := false
		if parentOK {
			cond = p.evalTokens(line).Truthy()
		}
		p.cond.pushIf(cond)

	case keyword.DirIfdef:
		line := readLine(s)
		cond := false
		if parentOK && len(line) > 0 {
			_, cond = p.macros.lookup(line[0].Lexeme)
		}
		p.cond.pushIf(cond)

	case keyword.DirIfndef:
		line := readLine(s)
		cond := false
		if parentOK && len(line) > 0 {
			_, found := p.macros.lookup(line[0].Lexeme)
			cond = !found
		}
		p.cond.pushIf(cond)

	case keyword.DirElseif:
		line := readLine(s)
		f := p.cond.top()
		cond := false
		if f != nil && f.parentOK && !f.chainTaken {
			cond = p.evalTokens(line).Truthy()
		}
		p.cond.elif(cond)

	case keyword.DirElse:
		readLine(s)
		p.cond.elseBranch()

	case keyword.DirEndif:
		readLine(s)
		if p.cond.depth() == 0 {
			p.errf(pos, ".endif without matching .if")
			return
		}
		p.cond.endif()
	}
}

func (p *Preprocessor) handlePragma(s *lexer.Stream, pos token.Position) {
	if !p.cond.active() {
		readLine(s)
		return
	}
	if s.AtEOF() || s.Peek(0).Kind != token.Keyword || keyword.At(s.Peek(0).Keyword.ID).Type != keyword.Pragma {
		p.errf(pos, ".pragma requires a pragma name")
		readLine(s)
		return
	}
	argTok := s.Consume()
	entry := keyword.At(argTok.Keyword.ID)

	switch entry.Param1 {
	case keyword.PragmaOnce:
		p.pragmaOnce()
	case keyword.PragmaMaxRecursionDepth:
		if !s.AtEOF() && s.Peek(0).Kind == token.IntegerLiteral {
			p.cfg.MaxRecursionDepth = int(s.Consume().IntValue)
		}
	case keyword.PragmaMaxIncludeDepth:
		if !s.AtEOF() && s.Peek(0).Kind == token.IntegerLiteral {
			p.cfg.MaxIncludeDepth = int(s.Consume().IntValue)
		}
	case keyword.PragmaPushFile, keyword.PragmaPopFile:
		// Compiler-internal bookkeeping: .include pushes and pops the
		// file stack itself, so user source never needs to write these.
	}
	readLine(s)
}

func (p *Preprocessor) handleDiag(s *lexer.Stream, id int, pos token.Position) {
	line := readLine(s)
	msg := p.renderLineText(line)
	switch id {
	case keyword.DirInfo:
		fmt.Fprintf(os.Stderr, "%s: info: %s\n", pos, msg)
	case keyword.DirWarning:
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", pos, msg)
	case keyword.DirError:
		p.errs.Add(diag.New(pos, diag.PreprocessError, msg))
	case keyword.DirFatal:
		p.errs.Add(diag.New(pos, diag.PreprocessError, msg))
		p.fatal = true
	}
}

func (p *Preprocessor) handleAssert(s *lexer.Stream, pos token.Position) {
	line := readLine(s)
	if !p.evalTokens(line).Truthy() {
		p.errf(pos, "assertion failed: %s", p.renderLineText(line))
	}
}
