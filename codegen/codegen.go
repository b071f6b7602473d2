// Package codegen translates a parsed ast.Module into a relocatable
// object.Object through three passes: variable resolution, address
// assignment, and instruction/data emission.
//
// Grounded on _examples/original_source/projects/g10asm/codegen.hpp for
// the pass structure (codegen_state's separate ROM/RAM location
// counters, label_map, global/extern symbol sets) and on
// _examples/lookbusy1344-arm_emulator/encoder/encoder.go for the Go
// idiom of a generator struct walking a statement list and appending
// bytes, rather than the C++ original's visitor classes.
package codegen

import (
	"fmt"

	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/object"
)

const (
	romBase = 0x00002000
	ramBase = 0x80000000
)

// varInfo is one .let/.const binding's resolved value.
type varInfo struct {
	value    int64
	constant bool
}

// labelInfo locates a bound label within the section under construction.
type labelInfo struct {
	section int
	offset  uint32
	isData  bool
}

// secBuilder accumulates one section's bytes (or size, for bss) as the
// emission pass walks the statement list.
type secBuilder struct {
	name        string
	virtualAddr uint32
	typ         object.SectionType
	flags       object.SectionFlags
	buf         []byte
	size        uint32
}

// stmtInfo is the address-pass outcome for one statement: where it
// lives and how big it is. The emission pass uses this instead of
// re-deriving section/offset bookkeeping.
type stmtInfo struct {
	section int
	offset  uint32
	size    uint32
}

// Generator holds all state threaded through the three passes.
type Generator struct {
	mod  *ast.Module
	errs *diag.List

	vars    map[string]varInfo
	labels  map[string]labelInfo
	globals map[string]bool
	externs map[string]bool

	sections    []*secBuilder
	stmts       []stmtInfo
	relocations []object.Relocation

	metadata map[string]string

	romPC, ramPC uint32
	inRom        bool
	pendingType  object.SectionType
	current      int // index into sections, -1 if none open
}

// Generate runs all three passes and returns the resulting object, or
// nil if any phase recorded a fatal error.
func Generate(mod *ast.Module, errs *diag.List) *object.Object {
	g := &Generator{
		mod:      mod,
		errs:     errs,
		vars:     make(map[string]varInfo),
		labels:   make(map[string]labelInfo),
		globals:  make(map[string]bool),
		externs:  make(map[string]bool),
		metadata: make(map[string]string),
		romPC:    romBase,
		ramPC:    ramBase,
		inRom:    true,
		current:  -1,
	}

	g.variablePass()
	if errs.HasErrors() {
		return nil
	}
	g.addressPass()
	if errs.HasErrors() {
		return nil
	}
	g.emissionPass()
	if errs.HasErrors() {
		return nil
	}

	obj := g.finalize()
	if errs.HasErrors() {
		return nil
	}
	return obj
}

func (g *Generator) finalize() *object.Object {
	obj := &object.Object{Flags: object.FlagRelocatable}

	for _, sb := range g.sections {
		sec := object.Section{
			Name:        sb.name,
			VirtualAddr: sb.virtualAddr,
			Type:        sb.typ,
			Flags:       sb.flags,
			Size:        sb.size,
		}
		if sb.typ != object.SectionBss {
			sec.Data = sb.buf
		}
		obj.Sections = append(obj.Sections, sec)
	}

	for name, li := range g.labels {
		binding := object.BindingLocal
		if g.globals[name] {
			binding = object.BindingGlobal
		}
		typ := object.SymbolLabel
		if li.isData {
			typ = object.SymbolData
		}
		obj.Symbols = append(obj.Symbols, object.Symbol{
			Name:    name,
			Value:   li.offset,
			Section: int32(li.section),
			Type:    typ,
			Binding: binding,
		})
	}

	for name := range g.globals {
		if _, ok := g.labels[name]; !ok {
			g.errs.Add(diag.NoPos(diag.CodegenError,
				fmt.Sprintf("%q declared .global but never defined in this file", name)))
		}
	}

	for name := range g.externs {
		obj.Symbols = append(obj.Symbols, object.Symbol{
			Name:    name,
			Section: object.UndefSection,
			Type:    object.SymbolNone,
			Binding: object.BindingExtern,
		})
	}

	for _, name := range []string{"main", "_start", "start"} {
		if g.globals[name] {
			obj.Flags |= object.FlagHasEntry
			break
		}
	}

	if len(g.metadata) > 0 {
		obj.Sections = append(obj.Sections, object.Section{
			Name:        ".meta",
			VirtualAddr: 0,
			Type:        object.SectionData,
			Flags:       object.SectionAlloc,
			Data:        encodeMetadata(g.metadata),
		})
	}

	obj.Relocations = g.relocations

	return obj
}

// encodeMetadata serializes the .metadata directive's fields into a
// simple length-prefixed blob: name, version, author, description, in
// that fixed order, each a uint32 byte length followed by UTF-8 bytes.
// The linker's metadata segment decoder expects exactly this layout.
func encodeMetadata(m map[string]string) []byte {
	var buf []byte
	for _, field := range []string{"name", "version", "author", "description"} {
		v := m[field]
		n := len(v)
		buf = append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
		buf = append(buf, v...)
	}
	return buf
}
