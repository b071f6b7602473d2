// Package link implements the G10 linker: it combines one or more
// relocatable object files into a single linked program image.
//
// Grounded on _examples/original_source/projects/g10-link/linker.cpp for
// the six-phase pipeline (build_symbol_table, merge_sections,
// assign_addresses, process_relocations, create_segments,
// select_entry_point) and its error-message conventions; diagnostics use
// diag.List the way _examples/lookbusy1344-arm_emulator/parser/errors.go
// accumulates per-file findings instead of failing on the first one.
package link

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/object"
	"github.com/lookbusy1344/g10toolchain/program"
)

// symbolRef locates a symbol's defining object/section.
type symbolRef struct {
	objIndex int
	sym      object.Symbol
}

// mergedSection groups input sections sharing a virtual address.
type mergedSection struct {
	VirtualAddr uint32
	Type        object.SectionType
	Flags       object.SectionFlags
	Data        []byte
	Size        uint32 // for bss
	// sourceOffset[objIndex][sectionIndexInObject] = byte offset within
	// this merged section where that source section's bytes begin.
	sourceOffset map[int]map[int]uint32
}

// Linker runs the six-phase pipeline over a set of input objects.
type Linker struct {
	objects []*object.Object
	errs    *diag.List

	globals map[string]symbolRef
	merged  []*mergedSection
	// finalAddr[objIndex][sectionIndex] = the absolute virtual address
	// that object/section pair now occupies after merging.
	finalAddr map[int]map[int]uint32
	// mergedIndexOf[objIndex][sectionIndex] = index into merged.
	mergedIndexOf map[int]map[int]int
}

// New creates a Linker over a set of parsed object files.
func New(objects []*object.Object, errs *diag.List) *Linker {
	return &Linker{objects: objects, errs: errs}
}

// Link runs all six phases and returns the resulting program, or nil if
// any phase recorded a fatal error.
func (l *Linker) Link() *program.Program {
	l.buildSymbolTable()
	if l.errs.HasErrors() {
		return nil
	}
	l.mergeSections()
	l.assignAddresses()
	l.processRelocations()
	if l.errs.HasErrors() {
		return nil
	}
	segments, info := l.createSegments()
	entry := l.selectEntryPoint()
	if l.errs.HasErrors() {
		return nil
	}

	p := &program.Program{
		EntryPoint:   entry,
		StackPointer: program.DefaultStackPointer,
		Segments:     segments,
		Info:         info,
	}
	return p
}

// buildSymbolTable is phase 1: a two-pass build of the global symbol
// table, checking for duplicate definitions and verifying every extern
// reference resolves against some object's global symbols.
func (l *Linker) buildSymbolTable() {
	l.globals = make(map[string]symbolRef)

	for oi, obj := range l.objects {
		for _, sym := range obj.Symbols {
			if sym.Binding != object.BindingGlobal {
				continue
			}
			if existing, ok := l.globals[sym.Name]; ok {
				l.errf("duplicate symbol definition: %q in object %d (already defined in object %d)",
					sym.Name, oi, existing.objIndex)
				continue
			}
			l.globals[sym.Name] = symbolRef{objIndex: oi, sym: sym}
		}
	}

	for oi, obj := range l.objects {
		for _, sym := range obj.Symbols {
			if sym.Binding != object.BindingExtern {
				continue
			}
			if _, ok := l.globals[sym.Name]; !ok {
				l.errf("undefined external symbol %q referenced in object %d", sym.Name, oi)
			}
		}
	}
}

// mergeSections is phase 2: sections sharing a virtual address across
// all input objects are concatenated, in input order, into one merged
// section. Flags union; alignment is not modeled since nothing in this
// assembler ever emits an alignment requirement narrower than a byte.
func (l *Linker) mergeSections() {
	byAddr := make(map[uint32]*mergedSection)
	var order []uint32

	l.mergedIndexOf = make(map[int]map[int]int)

	for oi, obj := range l.objects {
		l.mergedIndexOf[oi] = make(map[int]int)
		for si, sec := range obj.Sections {
			ms, ok := byAddr[sec.VirtualAddr]
			if !ok {
				ms = &mergedSection{
					VirtualAddr:  sec.VirtualAddr,
					Type:         sec.Type,
					sourceOffset: make(map[int]map[int]uint32),
				}
				byAddr[sec.VirtualAddr] = ms
				order = append(order, sec.VirtualAddr)
			}
			ms.Flags |= sec.Flags
			if _, ok := ms.sourceOffset[oi]; !ok {
				ms.sourceOffset[oi] = make(map[int]uint32)
			}
			if sec.Type == object.SectionBss {
				ms.sourceOffset[oi][si] = ms.Size
				ms.Size += sec.Size
			} else {
				ms.sourceOffset[oi][si] = uint32(len(ms.Data))
				ms.Data = append(ms.Data, sec.Data...)
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, addr := range order {
		ms := byAddr[addr]
		l.merged = append(l.merged, ms)
		idx := len(l.merged) - 1
		for oi, secs := range ms.sourceOffset {
			for si := range secs {
				l.mergedIndexOf[oi][si] = idx
			}
		}
	}
}

// assignAddresses is phase 3: every symbol's final address becomes the
// merged section's base plus the original section's offset within the
// merge plus the symbol's own offset within its original section.
func (l *Linker) assignAddresses() {
	l.finalAddr = make(map[int]map[int]uint32)
	for oi, obj := range l.objects {
		l.finalAddr[oi] = make(map[int]uint32)
		for si := range obj.Sections {
			mi := l.mergedIndexOf[oi][si]
			ms := l.merged[mi]
			l.finalAddr[oi][si] = ms.VirtualAddr + ms.sourceOffset[oi][si]
		}
	}
}

func (l *Linker) symbolAddress(oi int, sym object.Symbol) (uint32, bool) {
	if sym.Binding == object.BindingExtern {
		return 0, false
	}
	if sym.Section < 0 {
		return 0, false
	}
	base, ok := l.finalAddr[oi][int(sym.Section)]
	if !ok {
		return 0, false
	}
	return base + sym.Value, true
}

// resolveSymbol finds a relocation's target symbol, preferring the
// global table and falling back to a local symbol of the same name in
// the same object, per linker.cpp's find_symbol.
func (l *Linker) resolveSymbol(oi int, name string) (uint32, bool) {
	if ref, ok := l.globals[name]; ok {
		return l.symbolAddress(ref.objIndex, ref.sym)
	}
	for _, sym := range l.objects[oi].Symbols {
		if sym.Name == name && sym.Binding == object.BindingLocal {
			return l.symbolAddress(oi, sym)
		}
	}
	return 0, false
}

// processRelocations is phase 4: every relocation's target bytes are
// overwritten with its resolved symbol address plus addend, per
// spec.md's relocation-type table.
func (l *Linker) processRelocations() {
	for oi, obj := range l.objects {
		for _, reloc := range obj.Relocations {
			value, ok := l.resolveSymbol(oi, reloc.Symbol)
			if !ok {
				l.errf("cannot resolve relocation against %q in object %d", reloc.Symbol, oi)
				continue
			}
			mi := l.mergedIndexOf[oi][reloc.Section]
			ms := l.merged[mi]
			fieldOff := ms.sourceOffset[oi][reloc.Section] + reloc.Offset

			var pcRelBase uint32
			if reloc.Type == object.RelRel32 || reloc.Type == object.RelRel16 || reloc.Type == object.RelRel8 {
				pcRelBase = ms.VirtualAddr + fieldOff
			}

			final := int64(value) + int64(reloc.Addend) - int64(pcRelBase)

			switch reloc.Type {
			case object.RelAbs32, object.RelRel32:
				writeLE(ms.Data, fieldOff, uint32(final), 4)
			case object.RelAbs16, object.RelRel16:
				if final < -32768 || final > 65535 {
					l.errf("relocation against %q in object %d overflows 16 bits", reloc.Symbol, oi)
					continue
				}
				writeLE(ms.Data, fieldOff, uint32(final), 2)
			case object.RelAbs8, object.RelRel8:
				if final < -128 || final > 255 {
					l.errf("relocation against %q in object %d overflows 8 bits", reloc.Symbol, oi)
					continue
				}
				writeLE(ms.Data, fieldOff, uint32(final), 1)
			case object.RelHi16:
				writeLE(ms.Data, fieldOff, uint32(final)>>16, 2)
			case object.RelLo16:
				writeLE(ms.Data, fieldOff, uint32(final)&0xFFFF, 2)
			default:
				l.errf("unsupported relocation type: %s", reloc.Type)
			}
		}
	}
}

func writeLE(buf []byte, off uint32, v uint32, width int) {
	if int(off)+width > len(buf) {
		return
	}
	switch width {
	case 4:
		binary.LittleEndian.PutUint32(buf[off:], v)
	case 2:
		binary.LittleEndian.PutUint16(buf[off:], uint16(v))
	case 1:
		buf[off] = byte(v)
	}
}

// sectionFlagsToSegmentFlags maps object.SectionFlags onto
// program.SegmentFlags; the two enums use the same bit values (alloc 1,
// write 2, exec 4), so this is a straight cast kept as a named function
// for clarity.
func sectionFlagsToSegmentFlags(f object.SectionFlags) program.SegmentFlags {
	return program.SegmentFlags(f)
}

// createSegments is phase 5: each merged section becomes one loadable
// segment. A section whose base address falls in the metadata region
// (0x0000-0x0FFF) or the interrupt vector table (0x1000-0x1FFF) is typed
// accordingly instead of by its object.SectionType, and a metadata
// segment is additionally decoded into the program's info block.
func (l *Linker) createSegments() ([]program.Segment, *program.Info) {
	var segments []program.Segment
	var info *program.Info

	for _, ms := range l.merged {
		typ := segmentTypeFor(ms)
		seg := program.Segment{
			LoadAddress: ms.VirtualAddr,
			Flags:       sectionFlagsToSegmentFlags(ms.Flags),
			Type:        typ,
		}
		if ms.Type == object.SectionBss {
			seg.MemorySize = ms.Size
		} else {
			seg.Data = ms.Data
			seg.FileSize = uint32(len(ms.Data))
			seg.MemorySize = seg.FileSize
		}
		segments = append(segments, seg)

		if typ == program.SegmentMetadata {
			if decoded, ok := decodeMetadataSection(ms.Data); ok {
				info = decoded
			}
		}
	}

	return segments, info
}

func segmentTypeFor(ms *mergedSection) program.SegmentType {
	const metadataRegionEnd = 0x00001000
	const interruptRegionEnd = 0x00002000
	switch {
	case ms.VirtualAddr < metadataRegionEnd:
		return program.SegmentMetadata
	case ms.VirtualAddr < interruptRegionEnd:
		return program.SegmentInterrupt
	case ms.Type == object.SectionBss:
		return program.SegmentBss
	case ms.Type == object.SectionData:
		return program.SegmentData
	default:
		return program.SegmentCode
	}
}

// selectEntryPoint is phase 6: the entry point is the address of a
// reserved global symbol name, in order of preference, falling back to
// a scan of all objects' label symbols, and finally to the
// lowest-addressed read-only segment below the RAM boundary.
func (l *Linker) selectEntryPoint() uint32 {
	for _, name := range []string{"main", "_start", "start"} {
		if ref, ok := l.globals[name]; ok {
			if addr, ok := l.symbolAddress(ref.objIndex, ref.sym); ok {
				return addr
			}
		}
	}

	for oi, obj := range l.objects {
		for _, sym := range obj.Symbols {
			if sym.Type != object.SymbolLabel {
				continue
			}
			if addr, ok := l.symbolAddress(oi, sym); ok {
				return addr
			}
		}
	}

	best := uint32(0)
	found := false
	for _, ms := range l.merged {
		if ms.VirtualAddr >= 0x80000000 {
			continue
		}
		if ms.Flags&object.SectionWrite != 0 {
			continue
		}
		if !found || ms.VirtualAddr < best {
			best = ms.VirtualAddr
			found = true
		}
	}
	if found {
		return best
	}

	l.errf("no entry point found")
	return 0
}

// errf records a whole-link diagnostic with no single source position,
// since a relocation or symbol error spans object files rather than one
// source line.
func (l *Linker) errf(format string, args ...any) {
	l.errs.Add(diag.NoPos(diag.LinkError, fmt.Sprintf(format, args...)))
}

// decodeMetadataSection parses the TLV blob codegen writes for a
// .metadata section: four (uint32 length, UTF-8 bytes) fields in fixed
// order (name, version, author, description).
func decodeMetadataSection(buf []byte) (*program.Info, bool) {
	info := &program.Info{}
	fields := []*string{&info.Name, &info.Version, &info.Author, &info.Description}
	off := 0
	for _, f := range fields {
		if off+4 > len(buf) {
			return nil, false
		}
		n := int(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		if off+n > len(buf) {
			return nil, false
		}
		*f = string(buf[off : off+n])
		off += n
	}
	return info, true
}
