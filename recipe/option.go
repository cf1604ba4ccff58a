package recipe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidOption is wrapped by every configuration error.
var ErrInvalidOption = errors.New("invalid recipe option")

// OptionType is the declared type of an option value.
type OptionType int

const (
	StringOption OptionType = iota
	BoolOption
	IntOption
	StringListOption
)

func (t OptionType) String() string {
	switch t {
	case StringOption:
		return "string"
	case BoolOption:
		return "bool"
	case IntOption:
		return "int"
	case StringListOption:
		return "[]string"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

// Option declares one named configuration value of a recipe.
type Option struct {
	Name        string
	DisplayName string
	Description string
	Type        OptionType
	Required    bool
	// Default applies when the option is not set. It must already have the
	// declared type.
	Default any
	Example string
}

// Values holds configured option values, keyed by option name.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

// Configure checks raw values against the declared options, converts them to
// the declared types and fills in defaults. Unknown names, missing required
// options and values of the wrong shape are errors.
func Configure(opts []Option, raw map[string]any) (Values, error) {
	declared := make(map[string]Option, len(opts))
	for _, o := range opts {
		declared[o.Name] = o
	}

	var unknown []string
	for name := range raw {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Wrapf(ErrInvalidOption, "unknown option(s) %s", strings.Join(unknown, ", "))
	}

	out := make(Values, len(opts))
	for _, o := range opts {
		v, ok := raw[o.Name]
		if !ok || v == nil {
			if o.Required {
				return nil, errors.WithHintf(
					errors.Wrapf(ErrInvalidOption, "option %q is required", o.Name),
					"example: %s", o.Example)
			}
			if o.Default != nil {
				out[o.Name] = o.Default
			}
			continue
		}
		cv, err := o.coerce(v)
		if err != nil {
			return nil, err
		}
		out[o.Name] = cv
	}
	return out, nil
}

// coerce converts a decoded YAML or command-line value to the declared type.
func (o Option) coerce(v any) (any, error) {
	bad := func() error {
		return errors.Wrapf(ErrInvalidOption, "option %q: cannot use %v (%T) as %s", o.Name, v, v, o.Type)
	}
	switch o.Type {
	case StringOption:
		switch x := v.(type) {
		case string:
			return x, nil
		case int, bool, float64:
			return fmt.Sprint(x), nil
		}
	case BoolOption:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, bad()
			}
			return b, nil
		}
	case IntOption:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x == float64(int(x)) {
				return int(x), nil
			}
		case string:
			i, err := strconv.Atoi(x)
			if err != nil {
				return nil, bad()
			}
			return i, nil
		}
	case StringListOption:
		switch x := v.(type) {
		case []string:
			return x, nil
		case string:
			if x == "" {
				return []string{}, nil
			}
			parts := strings.Split(x, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts, nil
		case []any:
			out := make([]string, 0, len(x))
			for _, e := range x {
				s, ok := e.(string)
				if !ok {
					return nil, bad()
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, bad()
}

// ParseAssignments turns key=value pairs, as given on a command line, into
// raw option values.
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.Wrapf(ErrInvalidOption, "expected key=value, got %q", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func wrapInvalid(err error, recipe string) error {
	if errors.Is(err, ErrInvalidOption) {
		return errors.Wrapf(err, "recipe %s", recipe)
	}
	return errors.Wrapf(errors.Mark(err, ErrInvalidOption), "recipe %s", recipe)
}
