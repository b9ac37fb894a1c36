package engine

import "strings"

// preprocessSource rewrites a hull script into the dialect zygomys reads.
// Outside string literals:
//
//   - keyword arguments such as :dim, :label or :hull-points become the
//     string literals "__kw_dim", "__kw_label" and "__kw_hull-points", which
//     the argument helpers in args.go recognise;
//   - builtin names such as hull-size or hull-boundary become hull_size and
//     hull_boundary, since zygomys reads a hyphen as subtraction;
//   - ; and ;; comments become // comments.
//
// Negative coordinates like (point -5 0) and the := operator pass through.
func preprocessSource(source string) string {
	s := &scriptScanner{src: source}
	s.out.Grow(len(source) + len(source)/4)
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.keyword():
		case c == '-' && s.betweenIdents():
			s.out.WriteByte('_')
			s.pos++
		default:
			s.out.WriteByte(c)
			s.pos++
		}
	}
	return s.out.String()
}

type scriptScanner struct {
	src string
	pos int
	out strings.Builder
}

// quoted copies a literal delimited by q, honouring backslash escapes when
// escapes is set. An unterminated literal runs to the end of the source.
func (s *scriptScanner) quoted(q byte, escapes bool) {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && s.src[s.pos] != q {
		if escapes && s.src[s.pos] == '\\' && s.pos+1 < len(s.src) {
			s.pos++
		}
		s.pos++
	}
	if s.pos < len(s.src) {
		s.pos++
	}
	s.out.WriteString(s.src[start:s.pos])
}

func (s *scriptScanner) comment() {
	for s.pos < len(s.src) && s.src[s.pos] == ';' {
		s.pos++
	}
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src) - s.pos
	}
	s.out.WriteString("//")
	s.out.WriteString(s.src[s.pos : s.pos+end])
	s.pos += end
}

// keyword rewrites the keyword at pos, or copies := whole. It reports
// false, consuming nothing, when the colon starts neither.
func (s *scriptScanner) keyword() bool {
	if s.pos+1 >= len(s.src) {
		return false
	}
	next := s.src[s.pos+1]
	if next == '=' {
		s.out.WriteString(":=")
		s.pos += 2
		return true
	}
	if !isLetter(next) {
		return false
	}
	end := s.pos + 1
	for end < len(s.src) && isKWChar(s.src[end]) {
		end++
	}
	s.out.WriteString(`"` + kwPrefix + s.src[s.pos+1:end] + `"`)
	s.pos = end
	return true
}

// betweenIdents reports whether the hyphen at pos joins two parts of one
// identifier.
func (s *scriptScanner) betweenIdents() bool {
	return s.pos > 0 && s.pos+1 < len(s.src) &&
		isIdentChar(s.src[s.pos-1]) && isLetter(s.src[s.pos+1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
