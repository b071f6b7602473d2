package lexer_test

import (
	"testing"

	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestScan_BasicInstruction(t *testing.T) {
	tokens, errs := lexer.Scan("ld l0, 42\n", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}

	want := []token.Kind{
		token.Keyword, token.Keyword, token.Comma, token.IntegerLiteral, token.NewLine, token.EOF,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestScan_Label(t *testing.T) {
	tokens, errs := lexer.Scan("loop: add d0, d1\n", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}

	if tokens[0].Kind != token.Identifier || tokens[0].Lexeme != "loop" {
		t.Errorf("expected identifier 'loop', got %v %q", tokens[0].Kind, tokens[0].Lexeme)
	}
	if tokens[1].Kind != token.Colon {
		t.Errorf("expected colon, got %v", tokens[1].Kind)
	}
}

func TestScan_LineComment(t *testing.T) {
	tokens, errs := lexer.Scan("nop ; a comment\nhalt\n", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	want := []token.Kind{token.Keyword, token.NewLine, token.Keyword, token.NewLine, token.EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
}

func TestScan_LineContinuation(t *testing.T) {
	tokens, errs := lexer.Scan("ld l0, \\\n1\nhalt\n", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	want := []token.Kind{token.Keyword, token.Keyword, token.Comma, token.IntegerLiteral, token.NewLine, token.Keyword, token.NewLine, token.EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestScan_Numbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"42", token.IntegerLiteral},
		{"0x2A", token.IntegerLiteral},
		{"0b101010", token.IntegerLiteral},
		{"0o52", token.IntegerLiteral},
		{"3.14", token.NumberLiteral},
	}

	for _, tt := range tests {
		tokens, errs := lexer.Scan(tt.input, "test.g10")
		if errs.HasErrors() {
			t.Fatalf("input %q: unexpected errors: %v", tt.input, errs.Error())
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.kind, tokens[0].Kind)
		}
	}
}

func TestScan_IntegerValue(t *testing.T) {
	tokens, errs := lexer.Scan("0x10", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if !tokens[0].HasInt || tokens[0].IntValue != 16 {
		t.Errorf("expected int value 16, got %+v", tokens[0])
	}
}

func TestScan_VariableAndPlaceholder(t *testing.T) {
	tokens, errs := lexer.Scan("$count @label @ld\n", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if tokens[0].Kind != token.Variable || tokens[0].Lexeme != "$count" {
		t.Errorf("expected variable $count, got %v %q", tokens[0].Kind, tokens[0].Lexeme)
	}
	if tokens[1].Kind != token.Placeholder || tokens[1].Lexeme != "@label" {
		t.Errorf("expected placeholder @label, got %v %q", tokens[1].Kind, tokens[1].Lexeme)
	}
	if tokens[2].Kind != token.PlaceholderKeyword {
		t.Errorf("expected placeholder_keyword for @ld, got %v", tokens[2].Kind)
	}
}

func TestScan_CharacterLiteralEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  byte
	}{
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\0'`, 0},
		{`'\x41'`, 'A'},
		{`'A'`, 'A'},
	}
	for _, tt := range tests {
		tokens, errs := lexer.Scan(tt.input, "test.g10")
		if errs.HasErrors() {
			t.Fatalf("input %q: unexpected errors: %v", tt.input, errs.Error())
		}
		if tokens[0].Kind != token.CharacterLiteral || byte(tokens[0].IntValue) != tt.want {
			t.Errorf("input %q: expected char %d, got %+v", tt.input, tt.want, tokens[0])
		}
	}
}

func TestScan_UnterminatedString(t *testing.T) {
	_, errs := lexer.Scan(`"unterminated`, "test.g10")
	if !errs.HasErrors() {
		t.Fatalf("expected an error for unterminated string")
	}
}

func TestScan_OperatorMaximalMunch(t *testing.T) {
	tokens, errs := lexer.Scan("<<= << < <= **= ** *", "test.g10")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	want := []token.Kind{
		token.AssignShiftLeft, token.ShiftLeft, token.CompareLess, token.CompareLessEqual,
		token.AssignExponent, token.Exponent, token.Times, token.EOF,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestStream_InjectAndErase(t *testing.T) {
	tokens, _ := lexer.Scan("a b c", "test.g10")
	s := lexer.NewStream(tokens)

	if s.Peek(0).Lexeme != "a" {
		t.Fatalf("expected first token 'a', got %q", s.Peek(0).Lexeme)
	}
	s.Consume()

	injected, _ := lexer.Scan("x y", "inject.g10")
	injected = injected[:len(injected)-1] // drop injected EOF
	s.Inject(injected, false)

	if s.Peek(0).Lexeme != "x" || s.Peek(1).Lexeme != "y" {
		t.Fatalf("expected injected tokens x y, got %q %q", s.Peek(0).Lexeme, s.Peek(1).Lexeme)
	}

	s.Erase() // drop "x"
	if s.Peek(0).Lexeme != "y" {
		t.Fatalf("expected y after erase, got %q", s.Peek(0).Lexeme)
	}

	s.Consume() // y
	if s.Peek(0).Lexeme != "b" {
		t.Fatalf("expected b after injected run, got %q", s.Peek(0).Lexeme)
	}
}

func TestStream_SkipUntil(t *testing.T) {
	tokens, _ := lexer.Scan("ld l0, 1\nhalt\n", "test.g10")
	s := lexer.NewStream(tokens)
	s.SkipUntil(token.NewLine)
	if s.Peek(0).Kind != token.NewLine {
		t.Fatalf("expected to land on new_line, got %v", s.Peek(0).Kind)
	}
	s.Consume()
	if s.Peek(0).Lexeme != "halt" {
		t.Fatalf("expected 'halt' next, got %q", s.Peek(0).Lexeme)
	}
}
