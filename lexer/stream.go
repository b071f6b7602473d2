package lexer

import "github.com/lookbusy1344/g10toolchain/token"

// Stream is a mutable cursor over a token slice supporting the
// peek/consume/skip/inject/erase contract spec.md 4.1 requires: Inject and
// Erase splice tokens in and out at the cursor, so the backing slice
// supports insertion and deletion, not just linear advance. The
// preprocessor in this module does not use them; it walks macro bodies,
// loop bodies and included files as fresh Streams.
//
// Grounded on the injection/erasure need documented in spec.md 4.1 and 4.2;
// the teacher's lexer (parser/lexer.go TokenizeAll) only ever appends, so
// this type has no direct teacher analogue and is built from the spec's
// explicit operation list.
type Stream struct {
	tokens []token.Token
	pos    int
}

// NewStream wraps a token slice (as produced by Scan) in a Stream
// positioned at its first token. A slice that does not end in an EOF
// token (such as a captured macro or loop body) gets one appended.
func NewStream(tokens []token.Token) *Stream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Kind: token.EOF})
	}
	return &Stream{tokens: tokens}
}

// Peek returns the token `offset` positions ahead of the cursor (offset=0
// is the next token to be consumed). Past the end of the stream it returns
// the trailing EOF token.
func (s *Stream) Peek(offset int) token.Token {
	idx := s.pos + offset
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[idx]
}

// Consume returns the current token and advances the cursor past it,
// except at EOF where the cursor holds in place.
func (s *Stream) Consume() token.Token {
	tok := s.Peek(0)
	if tok.Kind != token.EOF {
		s.pos++
	}
	return tok
}

// AtEOF reports whether the cursor is positioned at the trailing EOF
// token.
func (s *Stream) AtEOF() bool {
	return s.Peek(0).Kind == token.EOF
}

// SkipCount advances the cursor past up to n tokens, stopping early at
// EOF.
func (s *Stream) SkipCount(n int) {
	for i := 0; i < n && !s.AtEOF(); i++ {
		s.Consume()
	}
}

// SkipUntil advances the cursor until the current token has the given
// kind or the stream reaches EOF.
func (s *Stream) SkipUntil(kind token.Kind) {
	for !s.AtEOF() && s.Peek(0).Kind != kind {
		s.Consume()
	}
}

// Inject splices a list of tokens at the cursor. If advance is true the
// cursor moves past the injected run, landing on whatever followed it;
// otherwise the cursor stays put so the injected tokens are read next.
func (s *Stream) Inject(tokens []token.Token, advance bool) {
	if len(tokens) == 0 {
		return
	}
	tail := append([]token.Token{}, s.tokens[s.pos:]...)
	s.tokens = append(append(s.tokens[:s.pos:s.pos], tokens...), tail...)
	if advance {
		s.pos += len(tokens)
	}
}

// Erase removes the current token from the stream without advancing past
// it logically: the token that followed now sits at the cursor.
func (s *Stream) Erase() {
	s.EraseN(1)
}

// EraseN removes up to n tokens starting at the cursor.
func (s *Stream) EraseN(n int) {
	end := s.pos + n
	if end > len(s.tokens) {
		end = len(s.tokens)
	}
	if end <= s.pos {
		return
	}
	s.tokens = append(s.tokens[:s.pos:s.pos], s.tokens[end:]...)
	if len(s.tokens) == 0 {
		s.tokens = []token.Token{{Kind: token.EOF}}
	}
}

// Rest returns the remaining tokens from the cursor to the end of the
// stream, including the trailing EOF.
func (s *Stream) Rest() []token.Token {
	return append([]token.Token{}, s.tokens[s.pos:]...)
}
