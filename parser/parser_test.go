package parser_test

import (
	"testing"

	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/parser"
)

func parseSource(t *testing.T, src string) (*ast.Module, *diag.List) {
	t.Helper()
	s, lexErrs := lexer.LoadFromString(src, "test.g10")
	if lexErrs.HasErrors() {
		t.Fatalf("lex error: %v", lexErrs.Error())
	}
	var errs diag.List
	mod := parser.New(s, &errs).Parse()
	return mod, &errs
}

func TestParse_LabelAndInstruction(t *testing.T) {
	mod, errs := parseSource(t, "start:\n  ld l0, 42\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(mod.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Statements))
	}
	label, ok := mod.Statements[0].(*ast.LabelDefinition)
	if !ok || label.Name != "start" {
		t.Errorf("expected label 'start', got %#v", mod.Statements[0])
	}
	inst, ok := mod.Statements[1].(*ast.Instruction)
	if !ok || inst.Mnemonic != "ld" {
		t.Fatalf("expected ld instruction, got %#v", mod.Statements[1])
	}
	if len(inst.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(inst.Operands))
	}
	if _, ok := inst.Operands[0].(*ast.Register); !ok {
		t.Errorf("expected first operand to be a register, got %#v", inst.Operands[0])
	}
	if _, ok := inst.Operands[1].(*ast.Immediate); !ok {
		t.Errorf("expected second operand to be an immediate, got %#v", inst.Operands[1])
	}
}

func TestParse_IndirectMemoryOperand(t *testing.T) {
	mod, errs := parseSource(t, "ld d0, [d1]\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	inst := mod.Statements[0].(*ast.Instruction)
	mem, ok := inst.Operands[1].(*ast.IndirectMemory)
	if !ok {
		t.Fatalf("expected indirect memory operand, got %#v", inst.Operands[1])
	}
	if mem.Register.Slot != 1 {
		t.Errorf("expected register slot 1, got %d", mem.Register.Slot)
	}
}

func TestParse_DirectMemoryOperand(t *testing.T) {
	mod, errs := parseSource(t, "ld d0, [0x1000]\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	inst := mod.Statements[0].(*ast.Instruction)
	if _, ok := inst.Operands[1].(*ast.DirectMemory); !ok {
		t.Fatalf("expected direct memory operand, got %#v", inst.Operands[1])
	}
}

func TestParse_ConditionOperand(t *testing.T) {
	mod, errs := parseSource(t, "jmp zs, done\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	inst := mod.Statements[0].(*ast.Instruction)
	cond, ok := inst.Operands[0].(*ast.Condition)
	if !ok {
		t.Fatalf("expected condition operand, got %#v", inst.Operands[0])
	}
	if cond.Code != 1 { // CondZS
		t.Errorf("expected ZS condition code 1, got %d", cond.Code)
	}
}

func TestParse_Directives(t *testing.T) {
	mod, errs := parseSource(t, ".org 0x2000\n.rom\n.byte 1, 2, 3\n.global foo, bar\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(mod.Statements) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(mod.Statements))
	}
	if _, ok := mod.Statements[0].(*ast.Org); !ok {
		t.Errorf("expected Org, got %#v", mod.Statements[0])
	}
	if _, ok := mod.Statements[1].(*ast.Rom); !ok {
		t.Errorf("expected Rom, got %#v", mod.Statements[1])
	}
	byteDir, ok := mod.Statements[2].(*ast.Byte)
	if !ok || len(byteDir.Values) != 3 {
		t.Errorf("expected Byte with 3 values, got %#v", mod.Statements[2])
	}
	global, ok := mod.Statements[3].(*ast.Global)
	if !ok || len(global.Names) != 2 {
		t.Errorf("expected Global with 2 names, got %#v", mod.Statements[3])
	}
}

func TestParse_LetAndConst(t *testing.T) {
	mod, errs := parseSource(t, ".let $x = 1 + 2\n.const $y = 5\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	let, ok := mod.Statements[0].(*ast.Let)
	if !ok || let.Name != "x" {
		t.Fatalf("expected Let 'x', got %#v", mod.Statements[0])
	}
	if _, ok := let.Expr.(*ast.Binary); !ok {
		t.Errorf("expected binary expression, got %#v", let.Expr)
	}
	c, ok := mod.Statements[1].(*ast.Const)
	if !ok || c.Name != "y" {
		t.Fatalf("expected Const 'y', got %#v", mod.Statements[1])
	}
}

func TestParse_ExpressionPrecedence(t *testing.T) {
	mod, errs := parseSource(t, ".let $x = 1 + 2 * 3\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	let := mod.Statements[0].(*ast.Let)
	bin, ok := let.Expr.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level Binary (+), got %#v", let.Expr)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Errorf("expected right side to be the nested 2*3 Binary, got %#v", bin.Right)
	}
}

func TestParse_RecoversFromError(t *testing.T) {
	mod, errs := parseSource(t, "!!! garbage\nhalt\n")
	if !errs.HasErrors() {
		t.Fatalf("expected a parse error for the garbage line")
	}
	found := false
	for _, stmt := range mod.Statements {
		if inst, ok := stmt.(*ast.Instruction); ok && inst.Mnemonic == "halt" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected parser to recover and still parse 'halt'")
	}
}

func TestParse_VarAssignment(t *testing.T) {
	mod, errs := parseSource(t, "$count = 0\n$count += 1\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(mod.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Statements))
	}
	va, ok := mod.Statements[1].(*ast.VarAssignment)
	if !ok || va.Name != "count" {
		t.Fatalf("expected VarAssignment 'count', got %#v", mod.Statements[1])
	}
}
