package codegen

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/keyword"
	"github.com/lookbusy1344/g10toolchain/object"
	"github.com/lookbusy1344/g10toolchain/token"
)

// emissionPass re-walks the statement list, writing actual bytes into
// each section's buffer using the section/offset already computed by
// the address pass. Every label is fully resolved by this point, so the
// only relocations it can produce are against .extern symbols.
func (g *Generator) emissionPass() {
	for idx, stmt := range g.mod.Statements {
		info := g.stmts[idx]

		switch n := stmt.(type) {
		case *ast.Byte:
			g.emitValues(n.Values, 1, info)
		case *ast.Word:
			g.emitValues(n.Values, 2, info)
		case *ast.Dword:
			g.emitValues(n.Values, 4, info)
		case *ast.Space:
			// Reserved bytes only, nothing to write here: bss sections
			// carry no bytes at all, and the address pass does not check
			// .space against the section type, so in a code or data
			// section it only moves the offset past the reserved range.
		case *ast.Instruction:
			g.emitInstruction(n, info)
		}
	}
}

func (g *Generator) emitValues(values []ast.Expr, width int, info stmtInfo) {
	sec := g.sections[info.section]
	off := info.offset
	for _, expr := range values {
		g.emitField(sec, off, width, expr, expr.Pos())
		off += uint32(width)
	}
}

// emitField evaluates expr and writes width little-endian bytes at
// sec.buf[off:]. An extern-symbol reference writes a zero placeholder
// and records a relocation instead.
func (g *Generator) emitField(sec *secBuilder, off uint32, width int, expr ast.Expr, pos token.Position) {
	ensureLen(sec, off+uint32(width))

	v, err := g.evalExpr(expr)
	if err != nil {
		g.errs.Addf(pos, diag.CodegenError, "%s", err)
		return
	}

	if v.sym != "" {
		if v.value < -32768 || v.value > 32767 {
			g.errs.Addf(pos, diag.CodegenError, "relocation addend %d does not fit the 16-bit on-disk field", v.value)
			return
		}
		g.relocations = append(g.relocations, object.Relocation{
			Offset:  off,
			Symbol:  v.sym,
			Section: info2section(sec, g),
			Type:    relocTypeFor(width),
			Addend:  int32(v.value),
		})
		return
	}

	if err := checkRange(width, v.value); err != nil {
		g.errs.Addf(pos, diag.CodegenError, "%s", err)
		return
	}
	writeLEInto(sec.buf, off, uint32(v.value), width)
}

func relocTypeFor(width int) object.RelocationType {
	switch width {
	case 4:
		return object.RelAbs32
	case 2:
		return object.RelAbs16
	default:
		return object.RelAbs8
	}
}

func info2section(sec *secBuilder, g *Generator) int {
	for i, s := range g.sections {
		if s == sec {
			return i
		}
	}
	return -1
}

func checkRange(width int, v int64) error {
	switch width {
	case 1:
		if v < -128 || v > 255 {
			return rangeErr(v, "8-bit")
		}
	case 2:
		if v < -32768 || v > 65535 {
			return rangeErr(v, "16-bit")
		}
	}
	return nil
}

func rangeErr(v int64, what string) error {
	return &rangeError{v, what}
}

type rangeError struct {
	v    int64
	what string
}

func (e *rangeError) Error() string {
	return "value out of range for " + e.what + " field"
}

func ensureLen(sec *secBuilder, n uint32) {
	for uint32(len(sec.buf)) < n {
		sec.buf = append(sec.buf, 0)
	}
}

func writeLEInto(buf []byte, off uint32, v uint32, width int) {
	for i := 0; i < width; i++ {
		buf[off+uint32(i)] = byte(v >> (8 * uint(i)))
	}
}

// emitInstruction writes an instruction's opcode and operand bytes.
func (g *Generator) emitInstruction(inst *ast.Instruction, info stmtInfo) {
	mode, parts, err := g.layout(inst)
	if err != nil {
		g.errs.Addf(inst.Pos(), diag.CodegenError, "%s", err)
		return
	}

	sec := g.sections[info.section]
	opcode := opcodeBase(inst.MnemonicID) | mode
	ensureLen(sec, info.offset+2)
	writeLEInto(sec.buf, info.offset, uint32(opcode), 2)

	off := info.offset + 2
	for _, p := range parts {
		g.emitOperandField(sec, off, p, inst.Pos())
		off += uint32(p.Width)
	}
}

func (g *Generator) emitOperandField(sec *secBuilder, off uint32, p opPart, pos token.Position) {
	ensureLen(sec, off+uint32(p.Width))

	if p.Operand == nil {
		if p.IsCond {
			writeLEInto(sec.buf, off, uint32(keyword.CondNC), 1)
		}
		return
	}

	switch o := p.Operand.(type) {
	case *ast.Register:
		writeLEInto(sec.buf, off, uint32(keyword.RegisterByte(o.Size, o.Slot)), 1)
	case *ast.Condition:
		writeLEInto(sec.buf, off, uint32(o.Code), 1)
	case *ast.IndirectMemory:
		writeLEInto(sec.buf, off, uint32(keyword.RegisterByte(o.Register.Size, o.Register.Slot)), 1)
	case *ast.Immediate:
		g.emitField(sec, off, p.Width, o.Expr, pos)
	case *ast.DirectMemory:
		g.emitField(sec, off, p.Width, o.Addr, pos)
	}
}
