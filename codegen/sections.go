package codegen

import "github.com/lookbusy1344/g10toolchain/object"

// sectionTypeFor derives a new section's type from the active region and
// the pending .code/.data/.bss hint: RAM is always bss (spec.md 3's
// memory map reserves RAM exclusively for zero-initialized storage),
// ROM defaults to code unless .data was last seen.
func (g *Generator) sectionTypeFor() object.SectionType {
	if !g.inRom {
		return object.SectionBss
	}
	return g.pendingType
}

// ensureSection keeps the currently open section if it already ends at
// addr with the wanted type, otherwise starts a new one.
func (g *Generator) ensureSection(addr uint32) {
	typ := g.sectionTypeFor()
	if g.current >= 0 {
		cur := g.sections[g.current]
		atEnd := cur.virtualAddr+cur.size == addr
		if atEnd && cur.typ == typ {
			return
		}
	}
	g.startSection(addr, typ)
}

func (g *Generator) startSection(addr uint32, typ object.SectionType) {
	flags := object.SectionAlloc
	switch typ {
	case object.SectionCode:
		flags |= object.SectionExec
	case object.SectionBss:
		flags |= object.SectionWrite
	}
	name := sectionName(typ, len(g.sections))
	g.sections = append(g.sections, &secBuilder{
		name:        name,
		virtualAddr: addr,
		typ:         typ,
		flags:       flags,
	})
	g.current = len(g.sections) - 1
}

func sectionName(typ object.SectionType, index int) string {
	base := ".text"
	switch typ {
	case object.SectionData:
		base = ".data"
	case object.SectionBss:
		base = ".bss"
	}
	if index == 0 {
		return base
	}
	return base + "." + itoa(index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// advance records byte size consumed at the current location and moves
// the active region's location counter forward.
func (g *Generator) advance(size uint32) {
	cur := g.sections[g.current]
	cur.size += size
	if cur.typ != object.SectionBss {
		// buf grows lazily during emission; address pass only tracks size.
	}
	if g.inRom {
		g.romPC += size
	} else {
		g.ramPC += size
	}
}

func (g *Generator) locationCounter() uint32 {
	if g.inRom {
		return g.romPC
	}
	return g.ramPC
}
