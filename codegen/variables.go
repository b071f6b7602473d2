package codegen

import (
	"github.com/lookbusy1344/g10toolchain/ast"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/token"
)

// variablePass resolves .let/.const bindings and variable assignments
// before address math begins, per codegen.hpp's variable_pass. Labels
// aren't visible yet, so a variable initializer referencing a label is
// an error (variables are source-order, labels are whole-module).
func (g *Generator) variablePass() {
	for _, stmt := range g.mod.Statements {
		switch n := stmt.(type) {
		case *ast.Let:
			v := g.evalConst(n.Expr, n.Pos(), "in .let "+n.Name)
			g.vars[n.Name] = varInfo{value: v, constant: false}
		case *ast.Const:
			v := g.evalConst(n.Expr, n.Pos(), "in .const "+n.Name)
			g.vars[n.Name] = varInfo{value: v, constant: true}
		case *ast.VarAssignment:
			g.variableAssignment(n)
		case *ast.Metadata:
			g.metadata[n.Field] = n.Value
		}
	}
}

func (g *Generator) variableAssignment(n *ast.VarAssignment) {
	cur, existed := g.vars[n.Name]
	if existed && cur.constant {
		g.errs.Addf(n.Pos(), diag.CodegenError, "cannot reassign $%s: declared with .const", n.Name)
		return
	}
	rhs := g.evalConst(n.Expr, n.Pos(), "in assignment to $"+n.Name)

	next := rhs
	if isCompoundAssign(n.Op) {
		if !existed {
			g.errs.Addf(n.Pos(), diag.CodegenError, "$%s is not yet defined", n.Name)
			return
		}
		next = applyCompound(n.Op, cur.value, rhs)
	}
	g.vars[n.Name] = varInfo{value: next, constant: false}
}

func isCompoundAssign(op token.Kind) bool {
	return op != token.AssignEqual
}

func applyCompound(op token.Kind, cur, rhs int64) int64 {
	switch op {
	case token.AssignPlus:
		return cur + rhs
	case token.AssignMinus:
		return cur - rhs
	case token.AssignTimes:
		return cur * rhs
	case token.AssignExponent:
		return intPow(cur, rhs)
	case token.AssignDivide:
		if rhs == 0 {
			return 0
		}
		return cur / rhs
	case token.AssignModulo:
		if rhs == 0 {
			return 0
		}
		return cur % rhs
	case token.AssignAnd:
		return cur & rhs
	case token.AssignOr:
		return cur | rhs
	case token.AssignXor:
		return cur ^ rhs
	case token.AssignShiftLeft:
		return cur << uint(rhs)
	case token.AssignShiftRight:
		return cur >> uint(rhs)
	default:
		return rhs
	}
}
