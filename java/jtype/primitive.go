package jtype

import "github.com/cockroachdb/errors"

// Primitive is a primitive type, or one of the pseudo types String, Null and None.
type Primitive uint8

const (
	Boolean Primitive = iota + 1
	Byte
	Char
	Double
	Float
	Int
	Long
	Short
	Void
	String
	Null
	None
)

var primitiveKeywords = map[string]Primitive{
	"boolean": Boolean,
	"byte":    Byte,
	"char":    Char,
	"double":  Double,
	"float":   Float,
	"int":     Int,
	"long":    Long,
	"short":   Short,
	"void":    Void,
	"String":  String,
	"null":    Null,
	"":        None,
}

var primitiveNames = [...]string{"", "boolean", "byte", "char", "double", "float", "int", "long", "short", "void", "String", "null", ""}

// LookupPrimitive maps a keyword to its primitive type.
func LookupPrimitive(keyword string) (Primitive, bool) {
	p, ok := primitiveKeywords[keyword]
	return p, ok
}

// PrimitiveFromKeyword maps a keyword to its primitive type. An unknown
// keyword is a parser bug and panics with an assertion failure.
func PrimitiveFromKeyword(keyword string) Primitive {
	p, ok := primitiveKeywords[keyword]
	if !ok {
		panic(errors.AssertionFailedf("jtype: unknown primitive keyword %q", keyword))
	}
	return p
}

// Keyword returns the source keyword of p.
func (p Primitive) Keyword() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return ""
}

func (p Primitive) String() string {
	if p == String {
		return "java.lang.String"
	}
	return p.Keyword()
}

// IsNumeric reports whether p is a numeric primitive.
func (p Primitive) IsNumeric() bool {
	switch p {
	case Byte, Char, Double, Float, Int, Long, Short:
		return true
	}
	return false
}

func (Primitive) isType() {}
