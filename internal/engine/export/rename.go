package export

import (
	"regexp"
	"strings"

	"sweepq/internal/sweep"
)

var (
	// An optional ": annotation" may sit between the target and "=".
	constructorAssign = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=]+)?=\s*(?:[A-Za-z_][A-Za-z0-9_]*\.)*(Sweep0D|Sweep1D|Sweep2D|SimulSweep|SweepTo|GateLeakage)\s*\(`)
	plainAssign       = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=]+)?=[^=]`)
)

type renamed struct {
	name  string
	setup string
	start string
}

func renameEntry(index int, e sweep.Entry) renamed {
	name := SweepName(index, e.SweepType)
	old := sweepIdentifier(e.Code.Setup)
	if old == "" || old == name {
		return renamed{name: name, setup: e.Code.Setup, start: e.Code.Start}
	}
	return renamed{
		name:  name,
		setup: renameIdentifier(e.Code.Setup, old, name),
		start: renameIdentifier(e.Code.Start, old, name),
	}
}

// sweepIdentifier finds the variable the sweep object is bound to: the first
// top-level assignment from a MeasureIt constructor, else the first
// top-level assignment at all.
func sweepIdentifier(setup string) string {
	lines := strings.Split(setup, "\n")
	for _, line := range lines {
		if m := constructorAssign.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	for _, line := range lines {
		if m := plainAssign.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// renameIdentifier replaces every identifier token equal to old. Attribute
// names, keyword argument names, string literals and comments are copied
// unchanged, except for the replacement fields of f-strings.
func renameIdentifier(src, old, replacement string) string {
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '#':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			b.WriteString(src[i : i+j])
			i += j
		case c == '"' || c == '\'':
			j := stringEnd(src, i)
			b.WriteString(src[i:j])
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(src) && (isIdentChar(src[j]) || src[j] == '.') {
				j++
			}
			b.WriteString(src[i:j])
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			word := src[i:j]
			if j < len(src) && (src[j] == '"' || src[j] == '\'') && isStringPrefix(word) {
				end := stringEnd(src, j)
				b.WriteString(word)
				if strings.ContainsAny(word, "fF") {
					b.WriteString(renameFields(src[j:end], old, replacement))
				} else {
					b.WriteString(src[j:end])
				}
				i = end
				continue
			}
			if word == old && !afterDot(src, i) && !(depth > 0 && isKeywordName(src, j)) {
				b.WriteString(replacement)
			} else {
				b.WriteString(word)
			}
			i = j
		default:
			switch c {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			}
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// renameFields renames old inside the {...} replacement fields of an
// f-string literal. Doubled braces are literal text.
func renameFields(lit, old, replacement string) string {
	var b strings.Builder
	b.Grow(len(lit))
	i := 0
	for i < len(lit) {
		c := lit[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(lit) && lit[i+1] == '{' {
			b.WriteString("{{")
			i += 2
			continue
		}
		end := fieldEnd(lit, i)
		b.WriteByte('{')
		b.WriteString(renameIdentifier(lit[i+1:end], old, replacement))
		i = end
	}
	return b.String()
}

// fieldEnd returns the index of the brace closing the field opened at i,
// or len(lit) when it is unterminated.
func fieldEnd(lit string, i int) int {
	depth := 0
	for j := i; j < len(lit); j++ {
		switch lit[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(lit)
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "br", "rb", "f", "fr", "rf":
		return true
	}
	return false
}

// stringEnd returns the index just past the literal starting at i.
func stringEnd(src string, i int) int {
	quote := src[i]
	if strings.HasPrefix(src[i:], strings.Repeat(string(quote), 3)) {
		delim := strings.Repeat(string(quote), 3)
		end := strings.Index(src[i+3:], delim)
		if end < 0 {
			return len(src)
		}
		return i + 3 + end + 3
	}
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case quote:
			return j + 1
		case '\n':
			return j
		}
		j++
	}
	return len(src)
}

func afterDot(src string, i int) bool {
	for k := i - 1; k >= 0; k-- {
		switch src[k] {
		case ' ', '\t':
			continue
		case '.':
			return true
		default:
			return false
		}
	}
	return false
}

func isKeywordName(src string, j int) bool {
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	return j < len(src) && src[j] == '=' && (j+1 >= len(src) || src[j+1] != '=')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
