package ast

import (
	"golox/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *NumberLiteral:
		return m("NumberLiteral", n.Span, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *NilLiteral:
		return m("NilLiteral", n.Span)
	case *IdentExpr:
		return m("IdentExpr", n.Span, "name", n.Name)
	case *AssignExpr:
		return m("AssignExpr", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *GroupingExpr:
		return m("GroupingExpr", n.Span, "inner", NodeToMap(n.Inner))
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("LogicalExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return m("CallExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *GetExpr:
		return m("GetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"property", n.Property)
	case *SetExpr:
		return m("SetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"property", n.Property,
			"value", NodeToMap(n.Value))
	case *ThisExpr:
		return m("ThisExpr", n.Span)
	case *SuperExpr:
		return m("SuperExpr", n.Span, "method", n.Method)

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *PrintStmt:
		return m("PrintStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDeclStmt:
		result := m("VarDeclStmt", n.Span, "name", n.Name)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		result := m("WhileStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
		if n.Incr != nil {
			result["incr"] = NodeToMap(n.Incr)
		}
		return result
	case *FuncDeclStmt:
		return m("FuncDeclStmt", n.Span,
			"name", n.Name,
			"params", n.Params,
			"body", NodeToMap(n.Body))
	case *ClassDeclStmt:
		result := m("ClassDeclStmt", n.Span, "name", n.Name)
		if n.Super != nil {
			result["super"] = NodeToMap(n.Super)
		}
		if len(n.Methods) > 0 {
			methods := make([]interface{}, len(n.Methods))
			for i, md := range n.Methods {
				methods[i] = NodeToMap(md)
			}
			result["methods"] = methods
		}
		return result
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *BreakStmt:
		return m("BreakStmt", n.Span)
	case *ContinueStmt:
		return m("ContinueStmt", n.Span)

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
