package codegen

import (
	"fmt"

	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/keyword"
)

// Addressing-mode nibbles, or'd into a mnemonic's opcode base. Per
// SPEC_FULL.md's OPCODE ASSIGNMENT, the low nibble of a 16-opcode family
// block selects how the instruction's variable operand is addressed.
const (
	modeImmediate = 0x0
	modeRegister  = 0x1
	modeDirectMem = 0x2
	modeIndirect  = 0x3
)

// opcodeBase computes a mnemonic's opcode, per SPEC_FULL.md: the eleven
// zero-operand mnemonics (nop..sev) get sequential opcodes 0x0000-0x000A;
// every other mnemonic, including aliases, gets a 16-opcode block
// starting at 0x0010 and advancing by 0x0010 in keyword-table order.
func opcodeBase(mnemonicID int) int {
	if mnemonicID <= keyword.InsSev {
		return mnemonicID
	}
	return 0x10 * (mnemonicID - keyword.InsLd + 1)
}

// opPart is one physical field of an encoded instruction: its byte
// width and the AST operand (if any) it comes from. A nil Operand with
// Width>0 means "write a zeroed/default field" (e.g. an omitted branch
// condition defaults to NC).
type opPart struct {
	Width   int
	Operand ast.Operand
	IsCond  bool // true if Operand is nil and this defaults to NC
}

// layout classifies inst by mnemonic family and returns the opcode mode
// nibble and the ordered list of physical operand fields. It performs
// no expression evaluation, so it is safe to call during the address
// pass (sizing) as well as during emission.
func (g *Generator) layout(inst *ast.Instruction) (mode int, parts []opPart, err error) {
	id := inst.MnemonicID
	ops := inst.Operands

	switch id {
	case keyword.InsNop, keyword.InsStop, keyword.InsHalt, keyword.InsDi, keyword.InsEi,
		keyword.InsEii, keyword.InsDaa, keyword.InsScf, keyword.InsCcf, keyword.InsClv,
		keyword.InsSev, keyword.InsTcf:
		return layoutZero(inst, ops)

	case keyword.InsInc, keyword.InsDec, keyword.InsNot, keyword.InsCpl,
		keyword.InsSla, keyword.InsSra, keyword.InsSrl, keyword.InsSwap,
		keyword.InsRla, keyword.InsRl, keyword.InsRlca, keyword.InsRlc,
		keyword.InsRra, keyword.InsRr, keyword.InsRrca, keyword.InsRrc:
		return layoutUnaryRegister(inst, ops)

	case keyword.InsPop:
		return layoutUnaryRegister(inst, ops)

	case keyword.InsAdd, keyword.InsAdc, keyword.InsSub, keyword.InsSbc,
		keyword.InsAnd, keyword.InsOr, keyword.InsXor, keyword.InsCmp, keyword.InsCp:
		return layoutALUBinary(inst, ops)

	case keyword.InsLd, keyword.InsLdq, keyword.InsLdp, keyword.InsMv,
		keyword.InsMwh, keyword.InsMwl:
		return layoutLoad(inst, ops)

	case keyword.InsSt, keyword.InsStq, keyword.InsStp:
		return layoutStore(inst, ops)

	case keyword.InsLsp, keyword.InsSsp, keyword.InsPush, keyword.InsSpo, keyword.InsSpi:
		return layoutStackOne(inst, ops)

	case keyword.InsJmp, keyword.InsJpb, keyword.InsCall, keyword.InsJp, keyword.InsJr:
		return layoutBranch(inst, ops)

	case keyword.InsRet, keyword.InsReti:
		return layoutReturn(inst, ops)

	case keyword.InsInt:
		return layoutInterrupt(inst, ops)

	case keyword.InsBit, keyword.InsSet, keyword.InsRes, keyword.InsTog:
		return layoutBitManip(inst, ops)

	default:
		return 0, nil, fmt.Errorf("%s: unhandled mnemonic", inst.Mnemonic)
	}
}

func layoutZero(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 0 {
		return 0, nil, fmt.Errorf("%s takes no operands", inst.Mnemonic)
	}
	return modeImmediate, nil, nil
}

func regWidth(size int) int {
	if size == keyword.SizeDword {
		return 4
	}
	if size == keyword.SizeWord {
		return 2
	}
	return 1
}

func asRegister(op ast.Operand) (*ast.Register, bool) {
	r, ok := op.(*ast.Register)
	return r, ok
}

func layoutUnaryRegister(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 1 {
		return 0, nil, fmt.Errorf("%s takes exactly one register operand", inst.Mnemonic)
	}
	reg, ok := asRegister(ops[0])
	if !ok {
		return 0, nil, fmt.Errorf("%s requires a register operand", inst.Mnemonic)
	}
	return modeRegister, []opPart{{Width: 1, Operand: reg}}, nil
}

// layoutALUBinary handles the accumulator-first family: operand 0 must
// be D0/W0/L0 (slot 0, any size), operand 1 supplies the addressing
// mode and matching width.
func layoutALUBinary(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 2 {
		return 0, nil, fmt.Errorf("%s takes exactly two operands", inst.Mnemonic)
	}
	dst, ok := asRegister(ops[0])
	if !ok || dst.Slot != 0 {
		return 0, nil, fmt.Errorf("%s: first operand must be the accumulator register (slot 0)", inst.Mnemonic)
	}
	mode, width, err := addressingMode(ops[1], regWidth(dst.Size))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", inst.Mnemonic, err)
	}
	return mode, []opPart{{Width: 1, Operand: dst}, {Width: width, Operand: ops[1]}}, nil
}

// layoutLoad handles ld/ldq/ldp/mv/mwh/mwl: operand 0 is the
// destination register, operand 1 supplies the addressing mode.
func layoutLoad(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 2 {
		return 0, nil, fmt.Errorf("%s takes exactly two operands", inst.Mnemonic)
	}
	dst, ok := asRegister(ops[0])
	if !ok {
		return 0, nil, fmt.Errorf("%s: first operand must be a register", inst.Mnemonic)
	}
	mode, width, err := addressingMode(ops[1], regWidth(dst.Size))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", inst.Mnemonic, err)
	}
	return mode, []opPart{{Width: 1, Operand: dst}, {Width: width, Operand: ops[1]}}, nil
}

// layoutStore handles st/stq/stp: operand 0 is a memory destination,
// operand 1 is the source register.
func layoutStore(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 2 {
		return 0, nil, fmt.Errorf("%s takes exactly two operands", inst.Mnemonic)
	}
	src, ok := asRegister(ops[1])
	if !ok {
		return 0, nil, fmt.Errorf("%s: second operand must be a register", inst.Mnemonic)
	}
	var mode, width int
	switch ops[0].(type) {
	case *ast.DirectMemory:
		mode, width = modeDirectMem, 4
	case *ast.IndirectMemory:
		mode, width = modeIndirect, 1
	default:
		return 0, nil, fmt.Errorf("%s: first operand must be a memory destination", inst.Mnemonic)
	}
	return mode, []opPart{{Width: width, Operand: ops[0]}, {Width: 1, Operand: src}}, nil
}

func layoutStackOne(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 1 {
		return 0, nil, fmt.Errorf("%s takes exactly one operand", inst.Mnemonic)
	}
	switch op := ops[0].(type) {
	case *ast.Register:
		return modeRegister, []opPart{{Width: 1, Operand: op}}, nil
	case *ast.Immediate:
		return modeImmediate, []opPart{{Width: 4, Operand: op}}, nil
	default:
		return 0, nil, fmt.Errorf("%s: operand must be a register or immediate", inst.Mnemonic)
	}
}

func layoutBranch(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	var cond ast.Operand
	var target ast.Operand
	switch len(ops) {
	case 2:
		c, ok := ops[0].(*ast.Condition)
		if !ok {
			return 0, nil, fmt.Errorf("%s: first of two operands must be a condition", inst.Mnemonic)
		}
		cond, target = c, ops[1]
	case 1:
		target = ops[0]
	default:
		return 0, nil, fmt.Errorf("%s takes one or two operands", inst.Mnemonic)
	}

	var mode, width int
	switch target.(type) {
	case *ast.Register:
		if inst.MnemonicID != keyword.InsJmp {
			return 0, nil, fmt.Errorf("%s: a bare register target is only valid for jmp", inst.Mnemonic)
		}
		mode, width = modeRegister, 1
	case *ast.Immediate:
		mode, width = modeImmediate, 4
	case *ast.DirectMemory:
		mode, width = modeDirectMem, 4
	default:
		return 0, nil, fmt.Errorf("%s: unsupported target operand", inst.Mnemonic)
	}

	condPart := opPart{Width: 1, Operand: cond, IsCond: true}
	return mode, []opPart{condPart, {Width: width, Operand: target}}, nil
}

func layoutReturn(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	var cond ast.Operand
	switch len(ops) {
	case 0:
	case 1:
		c, ok := ops[0].(*ast.Condition)
		if !ok {
			return 0, nil, fmt.Errorf("%s: operand must be a condition", inst.Mnemonic)
		}
		cond = c
	default:
		return 0, nil, fmt.Errorf("%s takes zero or one operand", inst.Mnemonic)
	}
	return modeImmediate, []opPart{{Width: 1, Operand: cond, IsCond: true}}, nil
}

func layoutInterrupt(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 1 {
		return 0, nil, fmt.Errorf("%s takes exactly one operand", inst.Mnemonic)
	}
	imm, ok := ops[0].(*ast.Immediate)
	if !ok {
		return 0, nil, fmt.Errorf("%s: operand must be an immediate vector number", inst.Mnemonic)
	}
	return modeImmediate, []opPart{{Width: 1, Operand: imm}}, nil
}

func layoutBitManip(inst *ast.Instruction, ops []ast.Operand) (int, []opPart, error) {
	if len(ops) != 2 {
		return 0, nil, fmt.Errorf("%s takes exactly two operands", inst.Mnemonic)
	}
	imm, ok := ops[0].(*ast.Immediate)
	if !ok {
		return 0, nil, fmt.Errorf("%s: first operand must be an immediate bit index", inst.Mnemonic)
	}
	reg, ok := asRegister(ops[1])
	if !ok {
		return 0, nil, fmt.Errorf("%s: second operand must be a register", inst.Mnemonic)
	}
	return modeRegister, []opPart{{Width: 1, Operand: imm}, {Width: 1, Operand: reg}}, nil
}

func addressingMode(op ast.Operand, immWidth int) (mode, width int, err error) {
	switch op.(type) {
	case *ast.Register:
		return modeRegister, 1, nil
	case *ast.Immediate:
		return modeImmediate, immWidth, nil
	case *ast.DirectMemory:
		return modeDirectMem, 4, nil
	case *ast.IndirectMemory:
		return modeIndirect, 1, nil
	default:
		return 0, 0, fmt.Errorf("unsupported operand kind %T", op)
	}
}

// instructionSize returns the total encoded size (2-byte opcode plus
// operand fields) of inst.
func (g *Generator) instructionSize(inst *ast.Instruction) (uint32, error) {
	_, parts, err := g.layout(inst)
	if err != nil {
		return 0, err
	}
	size := uint32(2)
	for _, p := range parts {
		size += uint32(p.Width)
	}
	return size, nil
}
