package recipes

import (
	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

type editor = java.Visitor[*recipe.ExecutionContext]

var changeIdentifierOptions = []recipe.Option{
	{Name: "from", DisplayName: "Old name", Type: recipe.StringOption, Required: true, Example: "foo"},
	{Name: "to", DisplayName: "New name", Type: recipe.StringOption, Required: true, Example: "bar"},
}

// ChangeIdentifier renames every identifier named from.
func ChangeIdentifier(from, to string) recipe.Recipe {
	return recipe.New(recipe.Definition{
		Name:        ChangeIdentifierName,
		DisplayName: "Change identifier",
		Description: "Renames `" + from + "` to `" + to + "`.",
		Options:     changeIdentifierOptions,
		Validate:    func() error { return validateRename(from, to) },
		Editor: func() recipe.TreeVisitor {
			return &editor{
				VisitIdentifier: func(_ *editor, n *java.Identifier, _ *tree.Cursor, _ *recipe.ExecutionContext) (java.J, error) {
					if n.Name != from {
						return n, nil
					}
					return n.WithName(to), nil
				},
			}
		},
	})
}

var changeMethodNameOptions = []recipe.Option{
	{Name: "type", DisplayName: "Declaring type", Description: "Fully qualified declaring class. Empty matches any.", Type: recipe.StringOption, Example: "com.example.Hello"},
	{Name: "from", DisplayName: "Old name", Type: recipe.StringOption, Required: true, Example: "greet"},
	{Name: "to", DisplayName: "New name", Type: recipe.StringOption, Required: true, Example: "welcome"},
}

// ChangeMethodName renames method from of declaring type typ at its
// declarations and call sites. An empty typ matches every declaring type.
// Calls whose target could not be resolved match by name only when typ is
// empty.
func ChangeMethodName(typ, from, to string) recipe.Recipe {
	return recipe.New(recipe.Definition{
		Name:        ChangeMethodNameName,
		DisplayName: "Change method name",
		Description: "Renames method `" + from + "` to `" + to + "`.",
		Options:     changeMethodNameOptions,
		Validate:    func() error { return validateRename(from, to) },
		Editor: func() recipe.TreeVisitor {
			return &editor{
				VisitMethodDecl: func(v *editor, n *java.MethodDecl, c *tree.Cursor, ec *recipe.ExecutionContext) (java.J, error) {
					out, err := v.DefaultMethodDecl(n, c, ec)
					if err != nil {
						return nil, err
					}
					m, ok := out.(*java.MethodDecl)
					if !ok || m.Name.Name != from {
						return out, nil
					}
					if typ != "" && !declaredIn(m.MethodType, java.EnclosingClass(c), typ) {
						return out, nil
					}
					return m.WithName(m.Name.WithName(to)), nil
				},
				VisitMethodInvocation: func(v *editor, n *java.MethodInvocation, c *tree.Cursor, ec *recipe.ExecutionContext) (java.J, error) {
					out, err := v.DefaultMethodInvocation(n, c, ec)
					if err != nil {
						return nil, err
					}
					m, ok := out.(*java.MethodInvocation)
					if !ok || !matchesCall(m, typ, from) {
						return out, nil
					}
					return m.WithName(m.Name.WithName(to)), nil
				},
			}
		},
	})
}

var findMethodsOptions = []recipe.Option{
	{Name: "type", DisplayName: "Declaring type", Description: "Fully qualified declaring class. Empty matches any.", Type: recipe.StringOption, Example: "java.io.PrintStream"},
	{Name: "name", DisplayName: "Method name", Type: recipe.StringOption, Required: true, Example: "println"},
}

// FindMethods marks each call of method name on typ with a search result.
// Marking is idempotent, so the recipe converges after one change.
func FindMethods(typ, name string) recipe.Recipe {
	desc := name
	if typ != "" {
		desc = typ + "#" + name
	}
	return recipe.New(recipe.Definition{
		Name:        FindMethodsName,
		DisplayName: "Find method invocations",
		Description: "Finds calls of `" + desc + "`.",
		Options:     findMethodsOptions,
		Validate: func() error {
			if name == "" {
				return errors.Mark(errors.New("name must not be empty"), recipe.ErrInvalidOption)
			}
			return nil
		},
		Editor: func() recipe.TreeVisitor {
			return &editor{
				VisitMethodInvocation: func(v *editor, n *java.MethodInvocation, c *tree.Cursor, ec *recipe.ExecutionContext) (java.J, error) {
					out, err := v.DefaultMethodInvocation(n, c, ec)
					if err != nil {
						return nil, err
					}
					m, ok := out.(*java.MethodInvocation)
					if !ok || !matchesCall(m, typ, name) {
						return out, nil
					}
					markers := tree.AddSearchResult(m.Markers(), desc)
					if markers.Equal(m.Markers()) {
						return out, nil
					}
					return m.WithMarkers(markers), nil
				},
			}
		},
	})
}

func matchesCall(m *java.MethodInvocation, typ, name string) bool {
	if m.Name.Name != name {
		return false
	}
	if typ == "" {
		return true
	}
	return m.MethodType != nil && m.MethodType.DeclaringType != nil &&
		m.MethodType.DeclaringType.FullyQualifiedName == typ
}

// declaredIn reports whether a method declaration belongs to typ, from its
// attributed type or else its enclosing class.
func declaredIn(mt *jtype.Method, class *java.ClassDecl, typ string) bool {
	if mt != nil && mt.DeclaringType != nil {
		return mt.DeclaringType.FullyQualifiedName == typ
	}
	return class != nil && class.Type != nil && class.Type.FullyQualifiedName == typ
}

func validateRename(from, to string) error {
	switch {
	case from == "":
		return errors.Mark(errors.New("from must not be empty"), recipe.ErrInvalidOption)
	case !isJavaIdentifier(to):
		return errors.Mark(errors.Newf("%q is not a Java identifier", to), recipe.ErrInvalidOption)
	}
	return nil
}

func isJavaIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}
