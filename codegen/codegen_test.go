package codegen_test

import (
	"testing"

	"github.com/lookbusy1344/g10toolchain/codegen"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/object"
	"github.com/lookbusy1344/g10toolchain/parser"
)

func generate(t *testing.T, src string) (*object.Object, *diag.List) {
	t.Helper()
	s, lexErrs := lexer.LoadFromString(src, "test.g10")
	if lexErrs.HasErrors() {
		t.Fatalf("lex error: %v", lexErrs.Error())
	}
	var errs diag.List
	mod := parser.New(s, &errs).Parse()
	if errs.HasErrors() {
		t.Fatalf("parse error: %v", errs.Error())
	}
	obj := codegen.Generate(mod, &errs)
	return obj, &errs
}

func TestGenerate_SimpleInstruction(t *testing.T) {
	obj, errs := generate(t, "start:\n  ld l0, 42\n  halt\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(obj.Sections) == 0 {
		t.Fatal("expected at least one section")
	}
	found := false
	for _, sym := range obj.Symbols {
		if sym.Name == "start" {
			found = true
			if sym.Value != 0 {
				t.Errorf("expected start at offset 0, got %d", sym.Value)
			}
		}
	}
	if !found {
		t.Error("expected 'start' symbol in output")
	}
}

func TestGenerate_GlobalEntryPoint(t *testing.T) {
	obj, errs := generate(t, ".global main\nmain:\n  halt\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if obj.Flags&object.FlagHasEntry == 0 {
		t.Error("expected FlagHasEntry when 'main' is declared global")
	}
	var sym *object.Symbol
	for i := range obj.Symbols {
		if obj.Symbols[i].Name == "main" {
			sym = &obj.Symbols[i]
		}
	}
	if sym == nil {
		t.Fatal("expected 'main' symbol in output")
	}
	if sym.Binding != object.BindingGlobal {
		t.Errorf("expected global binding, got %v", sym.Binding)
	}
}

func TestGenerate_UndefinedGlobalIsError(t *testing.T) {
	_, errs := generate(t, ".global never_defined\nhalt\n")
	if !errs.HasErrors() {
		t.Fatal("expected an error for a .global with no matching definition")
	}
}

func TestGenerate_ExternProducesUndefSymbol(t *testing.T) {
	obj, errs := generate(t, ".extern helper\n  halt\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	var sym *object.Symbol
	for i := range obj.Symbols {
		if obj.Symbols[i].Name == "helper" {
			sym = &obj.Symbols[i]
		}
	}
	if sym == nil {
		t.Fatal("expected 'helper' extern symbol in output")
	}
	if sym.Section != object.UndefSection {
		t.Errorf("expected UndefSection for extern, got %d", sym.Section)
	}
	if sym.Binding != object.BindingExtern {
		t.Errorf("expected extern binding, got %v", sym.Binding)
	}
}

func TestGenerate_RomDataSection(t *testing.T) {
	obj, errs := generate(t, ".rom\n.data\n.byte 1, 2, 3, 4\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	var sec *object.Section
	for i := range obj.Sections {
		if obj.Sections[i].Type == object.SectionData {
			sec = &obj.Sections[i]
		}
	}
	if sec == nil {
		t.Fatal("expected a data section")
	}
	if len(sec.Data) != 4 {
		t.Errorf("expected 4 bytes of data, got %d", len(sec.Data))
	}
}

func TestGenerate_RamBssSection(t *testing.T) {
	obj, errs := generate(t, ".bss\ncounter:\n.space 16\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	var sec *object.Section
	for i := range obj.Sections {
		if obj.Sections[i].Type == object.SectionBss {
			sec = &obj.Sections[i]
		}
	}
	if sec == nil {
		t.Fatal("expected a bss section")
	}
	if sec.Size != 16 {
		t.Errorf("expected bss size 16, got %d", sec.Size)
	}
}

func TestGenerate_LetConstantFoldedIntoOperand(t *testing.T) {
	obj, errs := generate(t, ".let $value = 10 + 5\nld l0, $value\nhalt\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(obj.Sections) == 0 || len(obj.Sections[0].Data) == 0 {
		t.Fatal("expected emitted instruction bytes")
	}
}
