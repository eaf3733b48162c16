package emit

import "strings"

// wrapWords re-wraps s (a single logical line, no embedded newlines),
// joining a word with cont instead of a plain space whenever that word
// would carry the current visual line past width columns. The characters
// of cont itself are not counted, and a word longer than width is never
// broken.
func wrapWords(s string, width int, cont string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var b strings.Builder
	col := 0
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			col = len(w)
			continue
		}
		if col+1+len(w) > width {
			b.WriteString(cont)
			col = len(w)
		} else {
			b.WriteByte(' ')
			col += 1 + len(w)
		}
		b.WriteString(w)
	}
	return b.String()
}

// wrapLines applies wrapWords independently to each '\n'-delimited line of
// a multi-line blob, preserving the hard breaks between records.
func wrapLines(blob string, width int, cont string) string {
	lines := strings.Split(blob, "\n")
	for i, line := range lines {
		lines[i] = wrapWords(line, width, cont)
	}
	return strings.Join(lines, "\n")
}
