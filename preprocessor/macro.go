package preprocessor

import (
	"strings"

	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// macroDef is one .define (plain text substitution) or .macro
// (parameterized) binding. Body tokens are stored unexpanded; expansion
// happens fresh at every call site so a redefinition of something the
// body references is picked up by later calls.
type macroDef struct {
	name   string
	params []string
	body   []token.Token
	isFunc bool
}

type macroTable struct {
	defs map[string]*macroDef
}

func newMacroTable() *macroTable {
	return &macroTable{defs: make(map[string]*macroDef)}
}

func (t *macroTable) define(name string, body []token.Token) {
	t.defs[strings.ToLower(name)] = &macroDef{name: name, body: body}
}

func (t *macroTable) defineMacro(name string, params []string, body []token.Token) {
	t.defs[strings.ToLower(name)] = &macroDef{name: name, params: params, body: body, isFunc: true}
}

func (t *macroTable) undef(name string) {
	delete(t.defs, strings.ToLower(name))
}

func (t *macroTable) lookup(name string) (*macroDef, bool) {
	d, ok := t.defs[strings.ToLower(name)]
	return d, ok
}

// callFrame binds one active macro invocation's parameters to their
// argument token slices. .shift drops the first binding, per the
// original's variadic convention of consuming positional arguments off
// the front of the list.
type callFrame struct {
	paramNames []string
	args       [][]token.Token
}

func (f *callFrame) lookup(name string) ([]token.Token, bool) {
	for i, n := range f.paramNames {
		if n == name {
			return f.args[i], true
		}
	}
	return nil, false
}

func (f *callFrame) shift() {
	if len(f.paramNames) > 0 {
		f.paramNames = f.paramNames[1:]
	}
	if len(f.args) > 0 {
		f.args = f.args[1:]
	}
}

func (p *Preprocessor) handleDefine(s *lexer.Stream, pos token.Position) {
	if s.AtEOF() || s.Peek(0).Kind != token.Identifier {
		p.errf(pos, ".define requires a name")
		readLine(s)
		return
	}
	nameTok := s.Consume()
	body := readLine(s)
	p.macros.define(nameTok.Lexeme, body)
}

func (p *Preprocessor) handleMacroDef(s *lexer.Stream, pos token.Position) {
	if s.AtEOF() || s.Peek(0).Kind != token.Identifier {
		p.errf(pos, ".macro requires a name")
		p.capturePairedBody(s, keyword.DirMacro, keyword.DirEndMacro, pos)
		return
	}
	nameTok := s.Consume()

	var params []string
	if !s.AtEOF() && s.Peek(0).Kind == token.LeftParen {
		s.Consume()
		for !s.AtEOF() && s.Peek(0).Kind != token.RightParen {
			t := s.Consume()
			if t.Kind == token.Identifier {
				params = append(params, t.Lexeme)
			}
			if !s.AtEOF() && s.Peek(0).Kind == token.Comma {
				s.Consume()
			}
		}
		if !s.AtEOF() && s.Peek(0).Kind == token.RightParen {
			s.Consume()
		}
	}
	readLine(s)

	body := p.capturePairedBody(s, keyword.DirMacro, keyword.DirEndMacro, pos)
	p.macros.defineMacro(nameTok.Lexeme, params, body)
}

func (p *Preprocessor) handleShift(pos token.Position) {
	if len(p.frames) == 0 {
		p.errf(pos, ".shift used outside a macro body")
		return
	}
	p.frames[len(p.frames)-1].shift()
}

// expandMacroCall consumes a macro invocation (name, and for .macro
// definitions an optional parenthesized argument list) and, if the
// active conditional branch permits, recursively walks the macro's body
// with its parameters bound. Returns false if tok does not name a macro.
func (p *Preprocessor) expandMacroCall(s *lexer.Stream, tok token.Token) bool {
	def, ok := p.macros.lookup(tok.Lexeme)
	if !ok {
		return false
	}
	s.Consume()

	var args [][]token.Token
	if def.isFunc && !s.AtEOF() && s.Peek(0).Kind == token.LeftParen {
		s.Consume()
		args = p.parseArgList(s)
	}

	if !p.cond.active() {
		return true
	}
	if def.isFunc && len(args) != len(def.params) {
		p.errf(tok.Pos, "macro %q expects %d argument(s), got %d", tok.Lexeme, len(def.params), len(args))
		return true
	}
	if p.expandDepth >= p.cfg.MaxRecursionDepth {
		p.errf(tok.Pos, "macro %q expansion exceeded max_recursion_depth (%d)", tok.Lexeme, p.cfg.MaxRecursionDepth)
		return true
	}

	p.expandDepth++
	if def.isFunc {
		p.frames = append(p.frames, &callFrame{
			paramNames: append([]string{}, def.params...),
			args:       args,
		})
	}
	p.walk(lexer.NewStream(append([]token.Token{}, def.body...)))
	if def.isFunc {
		p.frames = p.frames[:len(p.frames)-1]
	}
	p.expandDepth--
	return true
}

// parseArgList reads a comma-separated, paren-delimited argument list
// starting just after the opening '(' (already consumed by the caller),
// respecting nested parentheses within each argument's own expression.
func (p *Preprocessor) parseArgList(s *lexer.Stream) [][]token.Token {
	var args [][]token.Token
	if !s.AtEOF() && s.Peek(0).Kind == token.RightParen {
		s.Consume()
		return args
	}

	var cur []token.Token
	depth := 0
	for !s.AtEOF() {
		t := s.Peek(0)
		switch {
		case t.Kind == token.LeftParen:
			depth++
			cur = append(cur, s.Consume())
		case t.Kind == token.RightParen:
			if depth == 0 {
				s.Consume()
				args = append(args, cur)
				return args
			}
			depth--
			cur = append(cur, s.Consume())
		case t.Kind == token.Comma && depth == 0:
			s.Consume()
			args = append(args, cur)
			cur = nil
		case t.Kind == token.NewLine || t.Kind == token.EOF:
			args = append(args, cur)
			return args
		default:
			cur = append(cur, s.Consume())
		}
	}
	return args
}

// expandPlaceholder resolves an @name token against the innermost active
// macro call frame, emitting the bound argument's tokens in its place.
func (p *Preprocessor) expandPlaceholder(s *lexer.Stream, tok token.Token) {
	s.Consume()
	if !p.cond.active() {
		return
	}
	name := strings.TrimPrefix(tok.Lexeme, "@")
	if len(p.frames) == 0 {
		p.errf(tok.Pos, "@%s used outside a macro body", name)
		return
	}
	args, ok := p.frames[len(p.frames)-1].lookup(name)
	if !ok {
		p.errf(tok.Pos, "undefined macro parameter %q", name)
		return
	}
	for _, at := range args {
		p.emit(at)
	}
}
