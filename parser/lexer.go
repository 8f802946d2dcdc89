package parser

import "strings"

// stripComment removes a trailing "#..." or ";..." comment from line,
// respecting neither strings nor escapes since ZKIR assembly has no
// string literals (spec.md §6 surface syntax).
func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

// splitLabel extracts a leading "name:" label from line, if present,
// returning the label name (empty if none) and the remainder of the line.
func splitLabel(line string) (label, rest string) {
	trimmed := strings.TrimLeft(line, " \t")
	i := strings.IndexByte(trimmed, ':')
	if i < 0 {
		return "", line
	}
	candidate := trimmed[:i]
	if !isLabelName(candidate) {
		return "", line
	}
	return candidate, trimmed[i+1:]
}

func isLabelName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// fields splits rest into whitespace/comma-separated tokens. A memory
// operand "imm(rs1)" is kept as a single token; the parser splits it.
func fields(rest string) []string {
	rest = strings.ReplaceAll(rest, ",", " ")
	return strings.Fields(rest)
}

// splitMemOperand splits a "imm(reg)" token into its immediate and
// register parts. ok is false if tok is not in that form.
func splitMemOperand(tok string) (imm, reg string, ok bool) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return "", "", false
	}
	return tok[:open], tok[open+1 : len(tok)-1], true
}
