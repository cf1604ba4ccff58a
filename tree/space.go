package tree

import "strings"

// Comment is one comment inside a Space. Text excludes the delimiters.
type Comment struct {
	Multiline bool
	Text      string
	// Suffix is the whitespace between the end of the comment and the next
	// comment or token.
	Suffix string
}

// String renders the comment with its delimiters and suffix.
func (c Comment) String() string {
	if c.Multiline {
		return "/*" + c.Text + "*/" + c.Suffix
	}
	return "//" + c.Text + c.Suffix
}

// Space is the formatting that precedes a token: leading whitespace followed
// by any number of comments.
type Space struct {
	Whitespace string
	Comments   []Comment
}

// Format returns a Space holding only whitespace.
func Format(whitespace string) Space {
	return Space{Whitespace: whitespace}
}

// ParseSpace splits raw text found between two tokens into whitespace and
// comments. Text that is neither is kept verbatim as whitespace so that
// String always reproduces raw.
func ParseSpace(raw string) Space {
	i := skipWhitespace(raw, 0)
	s := Space{Whitespace: raw[:i]}
	for i < len(raw) {
		var c Comment
		switch {
		case strings.HasPrefix(raw[i:], "//"):
			end := strings.IndexByte(raw[i:], '\n')
			if end < 0 {
				end = len(raw) - i
			}
			c.Text = raw[i+2 : i+end]
			i += end
		case strings.HasPrefix(raw[i:], "/*"):
			end := strings.Index(raw[i+2:], "*/")
			if end < 0 {
				return Space{Whitespace: raw}
			}
			c.Multiline = true
			c.Text = raw[i+2 : i+2+end]
			i += end + 4
		default:
			return Space{Whitespace: raw}
		}
		j := skipWhitespace(raw, i)
		c.Suffix = raw[i:j]
		i = j
		s.Comments = append(s.Comments, c)
	}
	return s
}

func skipWhitespace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			i++
		default:
			return i
		}
	}
	return i
}

// String renders the space exactly as it appeared in source.
func (s Space) String() string {
	if len(s.Comments) == 0 {
		return s.Whitespace
	}
	var b strings.Builder
	b.WriteString(s.Whitespace)
	for _, c := range s.Comments {
		b.WriteString(c.String())
	}
	return b.String()
}

// IsEmpty reports whether the space prints as nothing.
func (s Space) IsEmpty() bool {
	return s.Whitespace == "" && len(s.Comments) == 0
}

// Equal reports whether two spaces print identically and hold the same comments.
func (s Space) Equal(o Space) bool {
	if s.Whitespace != o.Whitespace || len(s.Comments) != len(o.Comments) {
		return false
	}
	for i := range s.Comments {
		if s.Comments[i] != o.Comments[i] {
			return false
		}
	}
	return true
}

// Join returns the formatting left when the token between s and next is
// removed. The comments of s are kept and next's whitespace follows the
// last of them. Without comments s contributes nothing.
func (s Space) Join(next Space) Space {
	if len(s.Comments) == 0 {
		return next
	}
	comments := make([]Comment, len(s.Comments), len(s.Comments)+len(next.Comments))
	copy(comments, s.Comments)
	comments[len(comments)-1].Suffix = next.Whitespace
	return Space{Whitespace: s.Whitespace, Comments: append(comments, next.Comments...)}
}
