package java

// Kind tags each node type of the Java dialect. The set is closed: adding a
// kind means adding a node type, a printer case, a visitor hook and a codec.
type Kind uint8

const (
	KindCompilationUnit Kind = iota + 1
	KindPackage
	KindImport
	KindClassDecl
	KindMethodDecl
	KindVariableDecls
	KindNamedVariable
	KindBlock
	KindIdentifier
	KindLiteral
	KindFieldAccess
	KindMethodInvocation
	KindAssignment
	KindBinary
	KindReturn
	KindIf
	KindElse
	KindParens
	KindKeyword
	KindEmpty
	KindUnknown
)

var kindNames = map[Kind]string{
	KindCompilationUnit:  "CompilationUnit",
	KindPackage:          "Package",
	KindImport:           "Import",
	KindClassDecl:        "ClassDecl",
	KindMethodDecl:       "MethodDecl",
	KindVariableDecls:    "VariableDecls",
	KindNamedVariable:    "NamedVariable",
	KindBlock:            "Block",
	KindIdentifier:       "Identifier",
	KindLiteral:          "Literal",
	KindFieldAccess:      "FieldAccess",
	KindMethodInvocation: "MethodInvocation",
	KindAssignment:       "Assignment",
	KindBinary:           "Binary",
	KindReturn:           "Return",
	KindIf:               "If",
	KindElse:             "Else",
	KindParens:           "Parens",
	KindKeyword:          "Keyword",
	KindEmpty:            "Empty",
	KindUnknown:          "Unknown",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(?)"
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindCompilationUnit; k <= KindUnknown; k++ {
		out = append(out, k)
	}
	return out
}

// KindFromString parses the name of a kind.
func KindFromString(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}
