// Package tui provides a Bubble Tea terminal UI for Atelier.
package tui

import "strings"

// History keeps recent command lines for Up/Down recall and Tab completion.
type History struct {
	entries []string
	limit   int
	pos     int // len(entries) when not navigating
}

// NewHistory creates a history holding at most limit entries.
func NewHistory(limit int) *History {
	return &History{entries: make([]string, 0, limit), limit: limit}
}

// Push records a command line. Blank lines and consecutive duplicates are
// skipped; the oldest entry is dropped when full.
func (h *History) Push(line string) {
	defer h.ResetCursor()
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if h.limit > 0 && len(h.entries) == h.limit {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, line)
}

// Prev steps back to an older entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	h.pos = max(h.pos-1, 0)
	return h.entries[h.pos], true
}

// Next steps forward to a newer entry. It reports false once it moves past
// the newest entry, meaning the input should be cleared.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}

// Complete returns the newest entry that extends prefix.
func (h *History) Complete(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if e := h.entries[i]; len(e) > len(prefix) && strings.HasPrefix(e, prefix) {
			return e, true
		}
	}
	return "", false
}
