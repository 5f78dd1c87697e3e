package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for every node. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, u := range n.Uses {
			Inspect(u, f)
		}
		if n.Block != nil {
			Inspect(n.Block, f)
		}
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *UseExpr, *Name, *BreakStmt, *StringLiteral, *CharLiteral, *IntLiteral,
		*FloatLiteral, *BoolLiteral, *HolePattern, *HoleTypeExpr:
	case *VarDef:
		inspectPattern(n.Pattern, f)
		inspectType(n.VarType, f)
		inspectExpr(n.Value, f)
	case *FnDef:
		Inspect(n.Name, f)
		inspectGenerics(n.Generics, f)
		for _, p := range n.Params {
			Inspect(p, f)
		}
		inspectType(n.ReturnType, f)
		if n.Block != nil {
			Inspect(n.Block, f)
		}
	case *TraitDef:
		Inspect(n.Name, f)
		inspectGenerics(n.Generics, f)
		Inspect(n.Block, f)
	case *ImplDef:
		inspectGenerics(n.Generics, f)
		if n.Identifier != nil {
			Inspect(n.Identifier, f)
		}
		if n.ForType != nil {
			Inspect(n.ForType, f)
		}
		Inspect(n.Block, f)
	case *TypeDef:
		Inspect(n.Name, f)
		inspectGenerics(n.Generics, f)
		for _, v := range n.Variants {
			Inspect(v, f)
		}
	case *Variant:
		Inspect(n.Name, f)
		for _, fd := range n.Fields {
			Inspect(fd, f)
		}
	case *FieldDef:
		Inspect(n.Name, f)
		inspectType(n.Type, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *Identifier:
		for _, t := range n.TypeArgs {
			inspectType(t, f)
		}
	case *StringInterpolation:
		for _, p := range n.Parts {
			inspectExpr(p, f)
		}
	case *ListExpr:
		for _, e := range n.Items {
			inspectExpr(e, f)
		}
	case *IfExpr:
		inspectExpr(n.Condition, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *IfLetExpr:
		inspectPattern(n.Pattern, f)
		inspectExpr(n.Value, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileExpr:
		inspectExpr(n.Condition, f)
		Inspect(n.Block, f)
	case *ForExpr:
		inspectPattern(n.Pattern, f)
		inspectExpr(n.Iterable, f)
		Inspect(n.Block, f)
	case *MatchExpr:
		inspectExpr(n.Value, f)
		for _, c := range n.Clauses {
			Inspect(c, f)
		}
	case *MatchClause:
		for _, p := range n.Patterns {
			inspectPattern(p, f)
		}
		inspectExpr(n.Guard, f)
		Inspect(n.Block, f)
	case *ClosureExpr:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		inspectType(n.ReturnType, f)
		Inspect(n.Block, f)
	case *UnaryExpr:
		inspectExpr(n.Operand, f)
	case *BinaryExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *CallExpr:
		inspectExpr(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *Arg:
		inspectExpr(n.Value, f)
	case *MethodCallExpr:
		inspectExpr(n.Receiver, f)
		for _, t := range n.TypeArgs {
			inspectType(t, f)
		}
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *FieldAccessExpr:
		inspectExpr(n.Receiver, f)
	case *UnwrapExpr:
		inspectExpr(n.Operand, f)
	case *BindExpr:
		inspectExpr(n.Operand, f)
	case *Param:
		inspectPattern(n.Pattern, f)
		inspectType(n.Type, f)
	case *Generic:
		for _, b := range n.Bounds {
			inspectType(b, f)
		}
	case *ConPattern:
		Inspect(n.Identifier, f)
		for _, fp := range n.Fields {
			Inspect(fp, f)
		}
	case *FieldPattern:
		inspectPattern(n.Pattern, f)
	case *LiteralPattern:
		inspectExpr(n.Value, f)
	case *TypeRef:
		for _, t := range n.TypeArgs {
			inspectType(t, f)
		}
	case *FnTypeExpr:
		inspectGenerics(n.Generics, f)
		for _, t := range n.Params {
			inspectType(t, f)
		}
		inspectType(n.ReturnType, f)
	}
}

func inspectExpr(e Expression, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectType(t TypeExpr, f func(Node) bool) {
	if t != nil {
		Inspect(t, f)
	}
}

func inspectPattern(p Pattern, f func(Node) bool) {
	if p != nil {
		Inspect(p, f)
	}
}

func inspectGenerics(gs []*Generic, f func(Node) bool) {
	for _, g := range gs {
		Inspect(g, f)
	}
}
