package preprocessor

import (
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/ppvalue"
	"github.com/lookbusy1344/g10toolchain/token"
)

// loopSignal values let a nested .continue/.break cooperatively stop the
// walk() currently draining a loop-body or macro-body stream; the
// driving Go for-loop below checks and clears it between iterations.
const (
	sigNone = iota
	sigContinue
	sigBreak
)

// handleRepeat implements .repeat/.rept: unroll the captured body COUNT
// times, evaluated once up front.
func (p *Preprocessor) handleRepeat(s *lexer.Stream, pos token.Position) {
	line := readLine(s)
	body := p.capturePairedBody(s, keyword.DirRepeat, keyword.DirEndRepeat, pos)
	if !p.cond.active() {
		return
	}
	n, err := p.evalTokens(line).AsInt64()
	if err != nil {
		p.errf(pos, ".repeat count must be an integer: %s", err)
		return
	}

	p.loopDepth++
	for i := int64(0); i < n && !p.fatal; i++ {
		p.walk(lexer.NewStream(append([]token.Token{}, body...)))
		if p.loopSignal == sigBreak {
			p.loopSignal = sigNone
			break
		}
		p.loopSignal = sigNone
	}
	p.loopDepth--
}

// handleFor implements `.for $VAR = START, END[, STEP] ... .endfor`,
// rebinding $VAR before each pass so `{$VAR}` and `.if` conditions in the
// body see the current iteration's value.
func (p *Preprocessor) handleFor(s *lexer.Stream, pos token.Position) {
	line := readLine(s)
	body := p.capturePairedBody(s, keyword.DirFor, keyword.DirEndFor, pos)
	if !p.cond.active() {
		return
	}

	if len(line) == 0 || line[0].Kind != token.Variable {
		p.errf(pos, ".for requires a $variable")
		return
	}
	varName := line[0].Lexeme[1:]
	rest := line[1:]
	if len(rest) == 0 || rest[0].Kind != token.AssignEqual {
		p.errf(pos, ".for requires '=' after the loop variable")
		return
	}

	parts := splitTopLevelCommas(rest[1:])
	if len(parts) < 2 {
		p.errf(pos, ".for requires START and END bounds")
		return
	}
	start, err1 := p.evalTokens(parts[0]).AsInt64()
	end, err2 := p.evalTokens(parts[1]).AsInt64()
	step := int64(1)
	var err3 error
	if len(parts) >= 3 {
		step, err3 = p.evalTokens(parts[2]).AsInt64()
	}
	if err1 != nil || err2 != nil || err3 != nil {
		p.errf(pos, ".for bounds must be integers")
		return
	}
	if step == 0 {
		p.errf(pos, ".for step must not be zero")
		return
	}

	p.loopDepth++
	for i := start; !p.fatal && ((step > 0 && i <= end) || (step < 0 && i >= end)); i += step {
		p.vars[varName] = ppvalue.IntValue(i)
		p.walk(lexer.NewStream(append([]token.Token{}, body...)))
		if p.loopSignal == sigBreak {
			p.loopSignal = sigNone
			break
		}
		p.loopSignal = sigNone
	}
	delete(p.vars, varName)
	p.loopDepth--
}

// handleWhile implements .while/.endwhile, re-evaluating the condition
// before every pass.
func (p *Preprocessor) handleWhile(s *lexer.Stream, pos token.Position) {
	cond := readLine(s)
	body := p.capturePairedBody(s, keyword.DirWhile, keyword.DirEndWhile, pos)
	if !p.cond.active() {
		return
	}

	p.loopDepth++
	for !p.fatal {
		v := p.evalTokens(append([]token.Token{}, cond...))
		if !v.Truthy() {
			break
		}
		p.walk(lexer.NewStream(append([]token.Token{}, body...)))
		if p.loopSignal == sigBreak {
			p.loopSignal = sigNone
			break
		}
		p.loopSignal = sigNone
	}
	p.loopDepth--
}
