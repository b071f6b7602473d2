package object

import (
	"bytes"
	"testing"
)

func sampleObject() *Object {
	return &Object{
		Flags: FlagRelocatable | FlagHasEntry,
		Sections: []Section{
			{Name: ".text", VirtualAddr: 0x1000, Type: SectionCode, Flags: SectionAlloc | SectionExec, Data: []byte{0x01, 0x02, 0x03, 0x04}},
			{Name: ".data", VirtualAddr: 0x2000, Type: SectionData, Flags: SectionAlloc | SectionWrite, Data: []byte{0xAA, 0xBB}},
			{Name: ".bss", VirtualAddr: 0x3000, Type: SectionBss, Flags: SectionAlloc | SectionWrite, Size: 64},
		},
		Symbols: []Symbol{
			{Name: "_start", Value: 0, Section: 0, Type: SymbolLabel, Binding: BindingGlobal},
			{Name: "counter", Value: 0, Section: 1, Type: SymbolData, Binding: BindingLocal},
			{Name: "external_fn", Value: 0, Section: UndefSection, Type: SymbolNone, Binding: BindingExtern},
		},
		Relocations: []Relocation{
			{Offset: 0, Symbol: "_start", Section: 0, Type: RelAbs32, Addend: 0},
			{Offset: 2, Symbol: "external_fn", Section: 0, Type: RelRel16, Addend: -4},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	orig := sampleObject()

	buf, err := orig.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got.Flags != orig.Flags {
		t.Errorf("Flags = %v, want %v", got.Flags, orig.Flags)
	}
	if len(got.Sections) != len(orig.Sections) {
		t.Fatalf("Sections count = %d, want %d", len(got.Sections), len(orig.Sections))
	}
	for i, s := range orig.Sections {
		gs := got.Sections[i]
		if gs.Name != s.Name || gs.VirtualAddr != s.VirtualAddr || gs.Type != s.Type || gs.Flags != s.Flags {
			t.Errorf("Sections[%d] = %+v, want %+v", i, gs, s)
		}
		if s.Type == SectionBss {
			if gs.Size != s.Size {
				t.Errorf("Sections[%d].Size = %d, want %d", i, gs.Size, s.Size)
			}
		} else if !bytes.Equal(gs.Data, s.Data) {
			t.Errorf("Sections[%d].Data = %v, want %v", i, gs.Data, s.Data)
		}
	}

	if len(got.Symbols) != len(orig.Symbols) {
		t.Fatalf("Symbols count = %d, want %d", len(got.Symbols), len(orig.Symbols))
	}
	for i, sym := range orig.Symbols {
		if got.Symbols[i] != sym {
			t.Errorf("Symbols[%d] = %+v, want %+v", i, got.Symbols[i], sym)
		}
	}

	if len(got.Relocations) != len(orig.Relocations) {
		t.Fatalf("Relocations count = %d, want %d", len(got.Relocations), len(orig.Relocations))
	}
	for i, r := range orig.Relocations {
		if got.Relocations[i] != r {
			t.Errorf("Relocations[%d] = %+v, want %+v", i, got.Relocations[i], r)
		}
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := make([]byte, headerSize)
	if _, err := Read(buf); err == nil {
		t.Error("expected error for bad magic, got nil")
	}
}

func TestReadRejectsTruncated(t *testing.T) {
	orig := sampleObject()
	buf, err := orig.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := Read(buf[:headerSize/2]); err == nil {
		t.Error("expected error for truncated buffer, got nil")
	}
}

func TestEmptyObjectRoundTrip(t *testing.T) {
	orig := &Object{}
	buf, err := orig.Write()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got.Sections) != 0 || len(got.Symbols) != 0 || len(got.Relocations) != 0 {
		t.Errorf("expected empty object, got %+v", got)
	}
}

func TestRelocationTypeString(t *testing.T) {
	cases := map[RelocationType]string{
		RelAbs32:   "abs32",
		RelRel8:    "rel8",
		RelHi16:    "hi16",
		RelQuick16: "quick16",
		RelPort8:   "port8",
	}
	for rt, want := range cases {
		if got := rt.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", rt, got, want)
		}
	}
}
