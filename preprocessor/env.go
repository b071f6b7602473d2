package preprocessor

import (
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/eval"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/ppvalue"
	"github.com/lookbusy1344/g10toolchain/token"
)

// ppEnv resolves identifiers during expression evaluation (`.if`,
// `.for` bounds, `{expr}` interpolation) against loop-variable bindings
// first, then the text-substitution macro table. Grounded on the
// original's preprocessor_evaluator.cpp, which resolves a bare name via
// m_macro_table.lookup_text_sub_macro(name) and recursively evaluates
// its replacement text as an expression.
type ppEnv struct{ p *Preprocessor }

func (e ppEnv) Lookup(name string) (ppvalue.Value, bool) {
	if v, ok := e.p.vars[name]; ok {
		return v, true
	}
	def, ok := e.p.macros.lookup(name)
	if !ok || def.isFunc {
		return ppvalue.VoidValue(), false
	}
	sub := lexer.NewStream(append([]token.Token{}, def.body...))
	localErrs := &diag.List{}
	v := eval.Eval(sub, e, localErrs)
	if localErrs.HasErrors() {
		return ppvalue.VoidValue(), false
	}
	return v, true
}

func (p *Preprocessor) evalTokens(tokens []token.Token) ppvalue.Value {
	s := lexer.NewStream(append([]token.Token{}, tokens...))
	return eval.Eval(s, ppEnv{p}, p.errs)
}
