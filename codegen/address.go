package codegen

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/object"
	"github.com/lookbusy1344/g10toolchain/token"
)

const vectorTableBase = 0x00001000
const vectorEntrySize = 0x80

// addressPass walks the statement list in source order, creating
// sections on .org/.rom/.ram/.int boundaries, binding labels to their
// (section, offset), and recording each statement's size. No expression
// referencing a label is evaluated here: per spec.md, instruction and
// directive sizes depend only on operand shape, not on symbol values,
// so a forward reference never needs a second address pass.
func (g *Generator) addressPass() {
	g.stmts = make([]stmtInfo, len(g.mod.Statements))
	g.pendingType = object.SectionCode

	for idx, stmt := range g.mod.Statements {
		var size uint32

		// A label or a statement that occupies space before any region
		// directive opens a section at the default (ROM) location counter.
		if g.current < 0 {
			switch stmt.(type) {
			case *ast.LabelDefinition, *ast.Instruction, *ast.Byte, *ast.Word, *ast.Dword, *ast.Space:
				g.ensureSection(g.locationCounter())
			}
		}

		switch n := stmt.(type) {
		case *ast.Org:
			addr := uint32(g.evalConst(n.Addr, n.Pos(), ".org"))
			if g.inRom {
				g.romPC = addr
			} else {
				g.ramPC = addr
			}
			g.ensureSection(addr)

		case *ast.Rom:
			g.inRom = true
			g.pendingType = object.SectionCode
			g.ensureSection(g.romPC)

		case *ast.Ram:
			g.inRom = false
			g.ensureSection(g.ramPC)

		case *ast.Code:
			g.pendingType = object.SectionCode
			g.ensureSection(g.locationCounter())

		case *ast.Data:
			g.pendingType = object.SectionData
			g.ensureSection(g.locationCounter())

		case *ast.Bss:
			g.inRom = false
			g.ensureSection(g.ramPC)

		case *ast.Int:
			vector := g.evalConst(n.Vector, n.Pos(), ".int")
			addr := uint32(vectorTableBase + vector*vectorEntrySize)
			g.romPC = addr
			g.inRom = true
			g.pendingType = object.SectionCode
			g.startSection(addr, object.SectionCode)

		case *ast.Global:
			for _, name := range n.Names {
				if g.externs[name] {
					g.errs.Addf(n.Pos(), diag.CodegenError, "%q cannot be both .global and .extern", name)
					continue
				}
				g.globals[name] = true
			}

		case *ast.Extern:
			for _, name := range n.Names {
				if g.globals[name] {
					g.errs.Addf(n.Pos(), diag.CodegenError, "%q cannot be both .global and .extern", name)
					continue
				}
				g.externs[name] = true
			}

		case *ast.Let, *ast.Const, *ast.VarAssignment, *ast.Metadata:
			// Resolved in the variable pass; no size, no address effect.

		case *ast.LabelDefinition:
			g.bindLabel(n, idx)

		case *ast.Byte:
			size = uint32(len(n.Values))
			g.requireNonBss(n.Pos(), ".byte")
		case *ast.Word:
			size = uint32(len(n.Values)) * 2
			g.requireNonBss(n.Pos(), ".word")
		case *ast.Dword:
			size = uint32(len(n.Values)) * 4
			g.requireNonBss(n.Pos(), ".dword")

		case *ast.Space:
			size = uint32(g.evalConst(n.Count, n.Pos(), ".space"))

		case *ast.Instruction:
			if g.current < 0 {
				g.errs.Addf(n.Pos(), diag.CodegenError, "instruction outside any section: use .org, .rom, or .ram first")
				continue
			}
			s, err := g.instructionSize(n)
			if err != nil {
				g.errs.Addf(n.Pos(), diag.CodegenError, "%s", err)
				continue
			}
			size = s
			g.requireNonBss(n.Pos(), n.Mnemonic)
		}

		if g.current >= 0 {
			g.stmts[idx] = stmtInfo{section: g.current, offset: g.sections[g.current].size, size: size}
			g.advance(size)
		}
	}
}

func (g *Generator) requireNonBss(pos token.Position, what string) {
	if g.current >= 0 && g.sections[g.current].typ == object.SectionBss {
		g.errs.Addf(pos, diag.CodegenError, "cannot emit %s in a bss section (RAM is reserved for uninitialized storage)", what)
	}
}

func (g *Generator) bindLabel(n *ast.LabelDefinition, idx int) {
	if g.current < 0 {
		g.errs.Addf(n.Pos(), diag.CodegenError, "label %q defined before any section is established", n.Name)
		return
	}
	if _, exists := g.labels[n.Name]; exists {
		g.errs.Addf(n.Pos(), diag.CodegenError, "duplicate label definition: %q", n.Name)
		return
	}
	g.labels[n.Name] = labelInfo{
		section: g.current,
		offset:  g.sections[g.current].size,
		isData:  g.nextIsData(idx),
	}
}

// nextIsData reports whether the next non-label statement after idx is
// a data directive, so the label's symbol type can be SymbolData
// instead of SymbolLabel.
func (g *Generator) nextIsData(idx int) bool {
	for i := idx + 1; i < len(g.mod.Statements); i++ {
		switch g.mod.Statements[i].(type) {
		case *ast.LabelDefinition:
			continue
		case *ast.Byte, *ast.Word, *ast.Dword, *ast.Space:
			return true
		default:
			return false
		}
	}
	return false
}
