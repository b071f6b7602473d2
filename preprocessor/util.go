package preprocessor

import (
	"strings"

	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// readLine consumes and returns every token up to (and including) the
// next NewLine, the NewLine itself excluded from the returned slice.
func readLine(s *lexer.Stream) []token.Token {
	var toks []token.Token
	for !s.AtEOF() && s.Peek(0).Kind != token.NewLine {
		toks = append(toks, s.Consume())
	}
	if !s.AtEOF() && s.Peek(0).Kind == token.NewLine {
		s.Consume()
	}
	return toks
}

// capturePairedBody reads and returns every token up to the matching
// close directive (tracking same-pair nesting only, e.g. nested
// .macro/.endm), consuming the close directive's own line as well. pos
// is used to report an unterminated block.
func (p *Preprocessor) capturePairedBody(s *lexer.Stream, openID, closeID int, pos token.Position) []token.Token {
	var body []token.Token
	depth := 0
	for !s.AtEOF() {
		t := s.Peek(0)
		if t.IsKeyword() {
			entry := keyword.At(t.Keyword.ID)
			if entry.Type == keyword.PreprocessorDirective {
				switch entry.Param1 {
				case openID:
					depth++
				case closeID:
					if depth == 0 {
						s.Consume()
						readLine(s)
						return body
					}
					depth--
				}
			}
		}
		body = append(body, s.Consume())
	}
	p.errf(pos, "unterminated block: missing matching end directive")
	return body
}

// splitTopLevelCommas splits tokens on commas that are not nested inside
// parentheses, so a function-call argument like min(a,b) in a .for bound
// expression isn't mistaken for two bounds.
func splitTopLevelCommas(tokens []token.Token) [][]token.Token {
	var parts [][]token.Token
	var cur []token.Token
	depth := 0
	for _, t := range tokens {
		switch {
		case t.Kind == token.LeftParen:
			depth++
			cur = append(cur, t)
		case t.Kind == token.RightParen:
			if depth > 0 {
				depth--
			}
			cur = append(cur, t)
		case t.Kind == token.Comma && depth == 0:
			parts = append(parts, cur)
			cur = nil
		default:
			cur = append(cur, t)
		}
	}
	parts = append(parts, cur)
	return parts
}

// renderLineText renders a directive's argument tokens for a diagnostic
// message: a single string literal contributes its raw content, anything
// else is rendered token-by-token and space-joined.
func (p *Preprocessor) renderLineText(line []token.Token) string {
	if len(line) == 1 && line[0].Kind == token.StringLiteral {
		return line[0].Lexeme
	}
	parts := make([]string, len(line))
	for i, t := range line {
		parts[i] = renderToken(t)
	}
	return strings.Join(parts, " ")
}
