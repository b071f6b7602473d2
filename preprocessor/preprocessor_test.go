package preprocessor_test

import (
	"testing"

	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/preprocessor"
	"github.com/lookbusy1344/g10toolchain/token"
)

func process(t *testing.T, src string) ([]token.Token, *diag.List) {
	t.Helper()
	var errs diag.List
	s := preprocessor.Process(src, "test.g10", preprocessor.DefaultConfig(), &errs)
	var toks []token.Token
	for !s.AtEOF() {
		toks = append(toks, s.Consume())
	}
	return toks, &errs
}

func lexemes(toks []token.Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Kind == token.NewLine || tok.Kind == token.EOF {
			continue
		}
		out = append(out, tok.Lexeme)
	}
	return out
}

func containsLexeme(toks []token.Token, want string) bool {
	for _, l := range lexemes(toks) {
		if l == want {
			return true
		}
	}
	return false
}

func TestDefine_SimpleSubstitution(t *testing.T) {
	toks, errs := process(t, ".define WIDTH 32\nld l0, WIDTH\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if !containsLexeme(toks, "32") {
		t.Errorf("expected WIDTH to expand to 32, got %v", lexemes(toks))
	}
	if containsLexeme(toks, "WIDTH") {
		t.Errorf("expected WIDTH macro name to be fully expanded away, got %v", lexemes(toks))
	}
}

func TestMacro_FunctionLikeWithPlaceholder(t *testing.T) {
	src := ".macro double(x)\nld l0, @x\nld l1, @x\n.endmacro\ndouble(7)\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	count := 0
	for _, l := range lexemes(toks) {
		if l == "7" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected macro body expanded twice with arg substituted, got %d occurrences in %v", count, lexemes(toks))
	}
}

func TestConditional_IfdefTakesDefinedBranch(t *testing.T) {
	src := ".define FEATURE 1\n.ifdef FEATURE\nld l0, 1\n.else\nld l0, 0\n.endif\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	ls := lexemes(toks)
	if len(ls) == 0 || ls[len(ls)-1] != "1" {
		t.Errorf("expected the ifdef-true branch to survive, got %v", ls)
	}
}

func TestConditional_IfndefSkipsDefinedBranch(t *testing.T) {
	src := ".define FEATURE 1\n.ifndef FEATURE\nld l0, 1\n.else\nld l0, 0\n.endif\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	ls := lexemes(toks)
	if len(ls) == 0 || ls[len(ls)-1] != "0" {
		t.Errorf("expected the else branch to survive, got %v", ls)
	}
}

func TestRepeat_UnrollsBodyNTimes(t *testing.T) {
	src := ".repeat 3\nld l0, 1\n.endrepeat\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	count := 0
	for _, l := range lexemes(toks) {
		if l == "ld" {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 unrolled copies, got %d in %v", count, lexemes(toks))
	}
}

func TestFor_BindsLoopVariableEachIteration(t *testing.T) {
	src := ".for $i = 0, 2\nld l0, {i}\n.endfor\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	for _, want := range []string{"0", "1", "2"} {
		if !containsLexeme(toks, want) {
			t.Errorf("expected loop value %q in output, got %v", want, lexemes(toks))
		}
	}
}

func TestWhile_BreakStopsLoop(t *testing.T) {
	src := ".while 1\nld l0, 1\n.break\n.endwhile\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	count := 0
	for _, l := range lexemes(toks) {
		if l == "ld" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one iteration before .break, got %d in %v", count, lexemes(toks))
	}
}

func TestBreak_StopsLoopEarly(t *testing.T) {
	src := ".for $i = 0, 4\n.if $i == 2\n.break\n.endif\nld l0, 1\n.endfor\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	count := 0
	for _, l := range lexemes(toks) {
		if l == "ld" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected the loop to break after 2 iterations, got %d in %v", count, lexemes(toks))
	}
}

func TestUndef_RemovesMacro(t *testing.T) {
	src := ".define X 1\n.undef X\n.ifdef X\nld l0, 1\n.else\nld l0, 0\n.endif\n"
	toks, errs := process(t, src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	ls := lexemes(toks)
	if len(ls) == 0 || ls[len(ls)-1] != "0" {
		t.Errorf("expected X to be undefined after .undef, got %v", ls)
	}
}

func TestAssert_FailureReportsDiagnostic(t *testing.T) {
	_, errs := process(t, ".assert 1 == 2\n")
	if !errs.HasErrors() {
		t.Fatal("expected .assert 1 == 2 to fail")
	}
}

func TestFatal_StopsProcessingImmediately(t *testing.T) {
	_, errs := process(t, ".fatal \"stop here\"\nld l0, 1\n")
	if !errs.HasErrors() {
		t.Fatal("expected .fatal to record an error")
	}
}

func TestRecursionDepthLimitIsEnforced(t *testing.T) {
	cfg := preprocessor.DefaultConfig()
	cfg.MaxRecursionDepth = 4
	var errs diag.List
	preprocessor.Process(".macro recurse()\nrecurse()\n.endmacro\nrecurse()\n", "test.g10", cfg, &errs)
	if !errs.HasErrors() {
		t.Fatal("expected infinite macro recursion to be caught by max_recursion_depth")
	}
}
