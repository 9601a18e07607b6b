package syntax

import (
	"encoding/json"
	"io"

	"github.com/you-not-fish/probec/internal/types"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

// object builds the common fields of a node; typed expressions carry
// their type under "resolved".
func object(kind string, n Node) map[string]interface{} {
	m := map[string]interface{}{
		"type": kind,
		"pos":  n.Pos().String(),
	}
	if e, ok := n.(Expr); ok {
		if t := e.Type(); !types.IsNone(t) {
			m["resolved"] = t.String()
		}
	}
	return m
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		m := object("Program", n)
		m["probes"] = mapSlice(n.Probes, func(p *Probe) interface{} { return toJSON(p) })
		return m

	case *Probe:
		m := object("Probe", n)
		m["attach"] = mapSlice(n.AttachPoints, func(ap *AttachPoint) interface{} { return ap.Raw })
		if n.Pred != nil {
			m["pred"] = toJSON(n.Pred)
		}
		m["body"] = toJSON(n.Body)
		return m

	case *AttachPoint:
		m := object("AttachPoint", n)
		m["provider"] = n.Provider
		m["raw"] = n.Raw
		return m

	case *Block:
		m := object("Block", n)
		m["stmts"] = mapSlice(n.Stmts, toJSONNode[Stmt])
		return m

	case *IfStmt:
		m := object("IfStmt", n)
		m["comptime"] = n.Comptime
		if n.Folded {
			m["folded"] = true
		}
		m["cond"] = toJSON(n.Cond)
		m["then"] = toJSON(n.Then)
		if n.Else != nil {
			m["else"] = toJSON(n.Else)
		}
		return m

	case *WhileStmt:
		m := object("WhileStmt", n)
		m["cond"] = toJSON(n.Cond)
		m["body"] = toJSON(n.Body)
		return m

	case *LetStmt:
		m := object("LetStmt", n)
		m["var"] = toJSON(n.Var)
		if n.Type != nil {
			m["vartype"] = toJSON(n.Type)
		}
		if n.Value != nil {
			m["value"] = toJSON(n.Value)
		}
		return m

	case *AssignStmt:
		m := object("AssignStmt", n)
		m["lhs"] = toJSON(n.LHS)
		m["rhs"] = toJSON(n.RHS)
		return m

	case *ExprStmt:
		m := object("ExprStmt", n)
		m["x"] = toJSON(n.X)
		return m

	case *BranchStmt:
		m := object("BranchStmt", n)
		m["token"] = n.Tok.String()
		return m

	case *IntLit:
		m := object("IntLit", n)
		m["value"] = n.Value
		if n.Negative {
			m["negative"] = true
		}
		return m

	case *StringLit:
		m := object("StringLit", n)
		m["value"] = n.Value
		return m

	case *BoolLit:
		m := object("BoolLit", n)
		m["value"] = n.Value
		return m

	case *Builtin:
		m := object("Builtin", n)
		m["name"] = n.Name
		return m

	case *Variable:
		m := object("Variable", n)
		m["name"] = n.Name
		return m

	case *Map:
		m := object("Map", n)
		m["name"] = n.Name
		if n.Key != nil {
			m["key"] = toJSON(n.Key)
		}
		if n.KeyType != nil && !types.IsNone(n.KeyType) {
			m["keytype"] = n.KeyType.String()
		}
		return m

	case *Call:
		m := object("Call", n)
		m["func"] = n.Func
		m["args"] = mapSlice(n.Args, toJSONNode[Expr])
		return m

	case *Binary:
		m := object("Binary", n)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		m["y"] = toJSON(n.Y)
		return m

	case *Unary:
		m := object("Unary", n)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		if n.Postfix {
			m["postfix"] = true
		}
		return m

	case *Ternary:
		m := object("Ternary", n)
		m["cond"] = toJSON(n.Cond)
		m["x"] = toJSON(n.X)
		m["y"] = toJSON(n.Y)
		return m

	case *FieldAccess:
		m := object("FieldAccess", n)
		m["x"] = toJSON(n.X)
		m["field"] = n.Field
		if n.Arrow {
			m["arrow"] = true
		}
		return m

	case *IndexExpr:
		m := object("IndexExpr", n)
		m["x"] = toJSON(n.X)
		m["index"] = toJSON(n.Index)
		return m

	case *Cast:
		m := object("Cast", n)
		m["to"] = toJSON(n.To)
		m["x"] = toJSON(n.X)
		return m

	case *TupleLit:
		m := object("TupleLit", n)
		m["elems"] = mapSlice(n.Elems, toJSONNode[Expr])
		return m

	case *RecordLit:
		m := object("RecordLit", n)
		m["fields"] = mapSlice(n.Fields, func(f *NamedExpr) interface{} { return toJSON(f) })
		return m

	case *NamedExpr:
		m := object("NamedExpr", n)
		m["name"] = n.Name
		m["value"] = toJSON(n.Value)
		return m

	case *Sizeof:
		m := object("Sizeof", n)
		if n.X != nil {
			m["x"] = toJSON(n.X)
		} else {
			m["of"] = toJSON(n.Of)
		}
		return m

	case *Offsetof:
		m := object("Offsetof", n)
		if n.X != nil {
			m["x"] = toJSON(n.X)
		} else {
			m["of"] = toJSON(n.Of)
		}
		m["field"] = n.Field
		return m

	case *Typeinfo:
		m := object("Typeinfo", n)
		m["x"] = toJSON(n.X)
		return m

	case *TypeExpr:
		m := object("TypeExpr", n)
		m["spelling"] = n.String()
		if n.Typeof != nil {
			m["typeof"] = toJSON(n.Typeof)
		}
		return m

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}

// Helper functions to map slices

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}

func toJSONNode[T Node](n T) interface{} {
	return toJSON(n)
}
