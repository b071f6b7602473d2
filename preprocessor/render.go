package preprocessor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// renderToken renders a token back to source text. String and character
// literals are re-quoted and re-escaped from their decoded content;
// every other kind's Lexeme is already the literal spelling.
func renderToken(tok token.Token) string {
	switch tok.Kind {
	case token.StringLiteral:
		return quoteString(tok.Lexeme)
	case token.CharacterLiteral:
		return quoteChar(tok.Lexeme)
	default:
		return tok.Lexeme
	}
}

func quoteString(s string) string { return `"` + escapeContent(s, '"') + `"` }
func quoteChar(s string) string   { return `'` + escapeContent(s, '\'') + `'` }

func escapeContent(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == quote:
			b.WriteByte('\\')
			b.WriteByte(quote)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == 0:
			b.WriteString(`\0`)
		case c < 0x20 || c == 0x7F:
			fmt.Fprintf(&b, `\x%02X`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// adjacent reports whether b began immediately after a ended in the
// original source, with no intervening whitespace.
func adjacent(a, b token.Token) bool {
	if a.Pos.Line != b.Pos.Line {
		return false
	}
	return b.Pos.Column == a.Pos.Column+utf8.RuneCountInString(a.Lexeme)
}

func suppressSpaceAfter(k token.Kind) bool {
	return k == token.LeftParen || k == token.LeftBracket
}

func suppressSpaceBefore(k token.Kind) bool {
	switch k {
	case token.RightParen, token.RightBracket, token.Comma, token.Colon:
		return true
	default:
		return false
	}
}

// emit appends tok's rendered text to the reconstructed source. A space
// separates it from the previous token unless the two were written
// adjacently in the original source (which is what lets identifier-
// adjacent interpolation paste into one token on re-lex) or a spacing-
// suppressing punctuation token is involved.
func (p *Preprocessor) emit(tok token.Token) {
	if !p.cond.active() {
		return
	}
	if tok.Kind == token.NewLine {
		p.out.WriteByte('\n')
		p.lastTok = tok
		p.havePrev = true
		return
	}

	var text string
	if tok.Kind == token.StringLiteral {
		text = quoteString(p.interpolateString(tok.Lexeme, tok.Pos))
	} else {
		text = renderToken(tok)
	}

	if p.havePrev && !adjacent(p.lastTok, tok) &&
		!suppressSpaceAfter(p.lastTok.Kind) && !suppressSpaceBefore(tok.Kind) {
		p.out.WriteByte(' ')
	}
	p.out.WriteString(text)
	p.lastTok = tok
	p.havePrev = true
}

// interpolateString scans a string literal's decoded content for
// `{ EXPR }` spans and splices in their evaluated, stringified value, so
// interpolation works both in bare source and inside string literals.
func (p *Preprocessor) interpolateString(s string, pos token.Position) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			b.WriteByte(s[i])
			i++
			continue
		}
		depth := 1
		j := i + 1
		for j < len(s) && depth > 0 {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth != 0 {
			p.errf(pos, "unterminated interpolation in string literal")
			b.WriteString(s[i:])
			return b.String()
		}
		inner := s[i+1 : j-1]
		toks, lexErrs := lexer.Scan(inner, "<interpolation>")
		p.absorb(lexErrs)
		val := p.evalTokens(toks)
		b.WriteString(val.String())
		i = j
	}
	return b.String()
}

// interpolate handles a bare `{ EXPR }` in the token stream: the
// bracketed expression is evaluated and its stringified value spliced
// directly into the output text, with no inserted space on either side
// when the braces were adjacent to their neighbors in the source, so
// `pre_{x}_post` re-lexes as a single concatenated identifier.
func (p *Preprocessor) interpolate(s *lexer.Stream) {
	lb := s.Consume()
	var exprToks []token.Token
	depth := 0
	var rb token.Token
	closed := false
	for !s.AtEOF() {
		t := s.Peek(0)
		if t.Kind == token.NewLine {
			break
		}
		if t.Kind == token.LeftBrace {
			depth++
			exprToks = append(exprToks, s.Consume())
			continue
		}
		if t.Kind == token.RightBrace {
			if depth == 0 {
				rb = s.Consume()
				closed = true
				break
			}
			depth--
			exprToks = append(exprToks, s.Consume())
			continue
		}
		exprToks = append(exprToks, s.Consume())
	}
	if !closed {
		p.errf(lb.Pos, "unterminated interpolation")
		return
	}
	if !p.cond.active() {
		return
	}

	val := p.evalTokens(exprToks)
	text := val.String()
	if p.havePrev && !adjacent(p.lastTok, lb) {
		p.out.WriteByte(' ')
	}
	p.out.WriteString(text)
	p.lastTok = rb
	p.havePrev = true
}
