package java

import (
	"github.com/jward/lathe/tree"
)

// FirstEnclosingKind returns the nearest node of the given kind on the
// cursor's path, including the cursor's own node.
func FirstEnclosingKind(c *tree.Cursor, k Kind) J {
	link := c.FirstEnclosing(func(v any) bool {
		n, ok := v.(J)
		return ok && n.Kind() == k
	})
	if link == nil {
		return nil
	}
	return link.Value().(J)
}

func EnclosingClass(c *tree.Cursor) *ClassDecl {
	n, _ := tree.FirstEnclosingOf[*ClassDecl](c)
	return n
}

func EnclosingMethod(c *tree.Cursor) *MethodDecl {
	n, _ := tree.FirstEnclosingOf[*MethodDecl](c)
	return n
}

// EnclosingCompilationUnit returns the root of the file being visited.
func EnclosingCompilationUnit(c *tree.Cursor) *CompilationUnit {
	n, _ := tree.FirstEnclosingOf[*CompilationUnit](c)
	return n
}

// VisibleNames lists the simple names in scope at the cursor: locals declared
// earlier in each enclosing block, parameters of enclosing methods, and the
// fields and methods of enclosing classes. Inner scopes come first.
func VisibleNames(c *tree.Cursor) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	var child any
	for link := c; link != nil; link = link.Parent() {
		switch n := link.Value().(type) {
		case *Block:
			if isClassBody(link) {
				break
			}
			for _, s := range n.Statements {
				if any(s) == child {
					break
				}
				for _, name := range declaredNames(s.Element) {
					add(name)
				}
			}
		case *MethodDecl:
			for _, param := range n.Params.Values() {
				for _, name := range declaredNames(param) {
					add(name)
				}
			}
		case *ClassDecl:
			add(n.Name.Name)
			for _, s := range n.Body.Statements {
				for _, name := range declaredNames(s.Element) {
					add(name)
				}
			}
		}
		child = link.Value()
	}
	return names
}

func isClassBody(link *tree.Cursor) bool {
	_, ok := link.ParentTree().Value().(*ClassDecl)
	return ok
}

func declaredNames(n J) []string {
	switch n := n.(type) {
	case *VariableDecls:
		out := make([]string, 0, len(n.Vars))
		for _, v := range n.Vars {
			out = append(out, v.Element.Name.Name)
		}
		return out
	case *MethodDecl:
		return []string{n.Name.Name}
	case *ClassDecl:
		return []string{n.Name.Name}
	}
	return nil
}
