package jtype

import "strings"

// Flags is the set of declaration modifiers.
type Flags uint32

const (
	Public Flags = 1 << iota
	Private
	Protected
	Static
	Final
	Abstract
	Synchronized
	Native
	Transient
	Volatile
	Strictfp
	Default
	Sealed
	NonSealed
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Public, "public"},
	{Private, "private"},
	{Protected, "protected"},
	{Static, "static"},
	{Final, "final"},
	{Abstract, "abstract"},
	{Synchronized, "synchronized"},
	{Native, "native"},
	{Transient, "transient"},
	{Volatile, "volatile"},
	{Strictfp, "strictfp"},
	{Default, "default"},
	{Sealed, "sealed"},
	{NonSealed, "non-sealed"},
}

// FlagFromModifier maps a modifier keyword to its flag.
func FlagFromModifier(kw string) (Flags, bool) {
	for _, f := range flagNames {
		if f.name == kw {
			return f.flag, true
		}
	}
	return 0, false
}

// FlagsFromModifiers ORs together the flags of the recognised keywords.
func FlagsFromModifiers(kws ...string) Flags {
	var out Flags
	for _, kw := range kws {
		if f, ok := FlagFromModifier(kw); ok {
			out |= f
		}
	}
	return out
}

func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, " ")
}
