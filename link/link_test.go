package link_test

import (
	"testing"

	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/link"
	"github.com/lookbusy1344/g10toolchain/object"
	"github.com/lookbusy1344/g10toolchain/program"
)

func TestLink_SingleObjectEntryPoint(t *testing.T) {
	obj := &object.Object{
		Flags: object.FlagRelocatable | object.FlagHasEntry,
		Sections: []object.Section{
			{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Flags: object.SectionAlloc | object.SectionExec, Data: []byte{0x00, 0x00, 0x00, 0x00}},
		},
		Symbols: []object.Symbol{
			{Name: "main", Value: 0, Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal},
		},
	}

	var errs diag.List
	prog := link.New([]*object.Object{obj}, &errs).Link()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if prog.EntryPoint != 0x2000 {
		t.Errorf("EntryPoint = %#x, want 0x2000", prog.EntryPoint)
	}
	if len(prog.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(prog.Segments))
	}
}

func TestLink_UndefinedExternIsError(t *testing.T) {
	obj := &object.Object{
		Sections: []object.Section{
			{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Flags: object.SectionAlloc | object.SectionExec, Data: []byte{0x00, 0x00, 0x00, 0x00}},
		},
		Symbols: []object.Symbol{
			{Name: "missing", Section: object.UndefSection, Type: object.SymbolNone, Binding: object.BindingExtern},
		},
		Relocations: []object.Relocation{
			{Offset: 0, Symbol: "missing", Section: 0, Type: object.RelAbs32},
		},
	}

	var errs diag.List
	link.New([]*object.Object{obj}, &errs).Link()
	if !errs.HasErrors() {
		t.Fatal("expected an error for an unresolved extern symbol")
	}
}

func TestLink_DuplicateGlobalIsError(t *testing.T) {
	mk := func() *object.Object {
		return &object.Object{
			Sections: []object.Section{{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Data: []byte{0, 0}}},
			Symbols:  []object.Symbol{{Name: "shared", Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal}},
		}
	}
	a, b := mk(), mk()
	b.Sections[0].VirtualAddr = 0x3000

	var errs diag.List
	link.New([]*object.Object{a, b}, &errs).Link()
	if !errs.HasErrors() {
		t.Fatal("expected a duplicate symbol error")
	}
}

func TestLink_CrossObjectRelocation(t *testing.T) {
	caller := &object.Object{
		Sections: []object.Section{
			{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Flags: object.SectionAlloc | object.SectionExec, Data: []byte{0x00, 0x00, 0x00, 0x00}},
		},
		Symbols: []object.Symbol{
			{Name: "_start", Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal},
			{Name: "helper", Section: object.UndefSection, Type: object.SymbolNone, Binding: object.BindingExtern},
		},
		Relocations: []object.Relocation{
			{Offset: 0, Symbol: "helper", Section: 0, Type: object.RelAbs32},
		},
	}
	callee := &object.Object{
		Sections: []object.Section{
			{Name: ".text", VirtualAddr: 0x2100, Type: object.SectionCode, Flags: object.SectionAlloc | object.SectionExec, Data: []byte{0x11, 0x22}},
		},
		Symbols: []object.Symbol{
			{Name: "helper", Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal},
		},
	}

	var errs diag.List
	prog := link.New([]*object.Object{caller, callee}, &errs).Link()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if prog.EntryPoint != 0x2000 {
		t.Errorf("EntryPoint = %#x, want 0x2000 (_start)", prog.EntryPoint)
	}
	if len(prog.Segments) != 2 {
		t.Fatalf("expected 2 segments at distinct addresses, got %d", len(prog.Segments))
	}
	callerSeg := prog.Segments[0]
	got := uint32(callerSeg.Data[0]) | uint32(callerSeg.Data[1])<<8 | uint32(callerSeg.Data[2])<<16 | uint32(callerSeg.Data[3])<<24
	if got != 0x2100 {
		t.Errorf("relocated field = %#x, want 0x2100 (helper's address)", got)
	}
}

func TestLink_MergesSectionsAtSameAddress(t *testing.T) {
	a := &object.Object{
		Sections: []object.Section{{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Data: []byte{1, 2}}},
		Symbols:  []object.Symbol{{Name: "main", Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal}},
	}
	b := &object.Object{
		Sections: []object.Section{{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Data: []byte{3, 4}}},
	}

	var errs diag.List
	prog := link.New([]*object.Object{a, b}, &errs).Link()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	if len(prog.Segments) != 1 {
		t.Fatalf("expected both sections at the same address merged into one segment, got %d", len(prog.Segments))
	}
	want := []byte{1, 2, 3, 4}
	if string(prog.Segments[0].Data) != string(want) {
		t.Errorf("merged segment data = %v, want %v", prog.Segments[0].Data, want)
	}
}

func TestLink_BssSegmentCarriesNoFileBytes(t *testing.T) {
	obj := &object.Object{
		Sections: []object.Section{
			{Name: ".text", VirtualAddr: 0x2000, Type: object.SectionCode, Data: []byte{0, 0}},
			{Name: ".bss", VirtualAddr: 0x80000000, Type: object.SectionBss, Size: 32},
		},
		Symbols: []object.Symbol{{Name: "main", Section: 0, Type: object.SymbolLabel, Binding: object.BindingGlobal}},
	}

	var errs diag.List
	prog := link.New([]*object.Object{obj}, &errs).Link()
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Error())
	}
	for _, seg := range prog.Segments {
		if seg.Type == program.SegmentBss {
			if len(seg.Data) != 0 || seg.FileSize != 0 {
				t.Errorf("expected bss segment with no file bytes, got %+v", seg)
			}
			if seg.MemorySize != 32 {
				t.Errorf("expected MemorySize=32, got %d", seg.MemorySize)
			}
		}
	}
}
