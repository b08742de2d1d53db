package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes remote tool output safe to draw: escape sequences and
// control characters are dropped, CRLF becomes LF, and a lone CR overwrites
// the start of its line as a terminal would. Tabs and newlines survive.
func sanitize(s string) string {
	s = strings.ReplaceAll(ansi.Strip(s), "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = overwrite(line)
	}
	return strings.Join(lines, "\n")
}

// overwrite applies carriage returns within one line.
func overwrite(line string) string {
	parts := strings.Split(line, "\r")
	buf := []rune(parts[0])
	for _, p := range parts[1:] {
		for j, r := range []rune(p) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
