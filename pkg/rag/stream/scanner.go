// Package stream splits generated prose from inline book markers and drives
// the streaming answer of a chat turn.
package stream

import (
	"strconv"
	"strings"
)

const markerOpen = "BID["

// State is the position of a MarkerScanner relative to a marker.
type State int

const (
	// Scanning means no marker is pending.
	Scanning State = iota
	// AwaitingClose means "BID[" was seen and its "]" has not arrived yet.
	AwaitingClose
)

func (s State) String() string {
	if s == AwaitingClose {
		return "awaiting_close"
	}
	return "scanning"
}

// MarkerScanner consumes a chunked text stream and returns the prose with
// every BID[<id>] marker removed. Prose is never released while it could still
// turn out to be the start of a marker.
type MarkerScanner struct {
	buf   string
	state State
	ids   []int
	seen  map[int]struct{}
}

// NewMarkerScanner returns a scanner in the Scanning state.
func NewMarkerScanner() *MarkerScanner {
	return &MarkerScanner{seen: make(map[int]struct{})}
}

// State reports whether a marker is pending.
func (s *MarkerScanner) State() State {
	return s.state
}

// IDs returns the distinct numeric ids cited so far, in first-seen order.
func (s *MarkerScanner) IDs() []int {
	return append([]int(nil), s.ids...)
}

// Feed appends chunk and returns the prose fragments that are safe to release.
func (s *MarkerScanner) Feed(chunk string) []string {
	s.buf += chunk

	var out []string
	for {
		start := strings.Index(s.buf, markerOpen)
		if start < 0 {
			s.state = Scanning
			hold := partialOpenSuffix(s.buf)
			if safe := s.buf[:len(s.buf)-hold]; safe != "" {
				out = append(out, safe)
			}
			s.buf = s.buf[len(s.buf)-hold:]
			return out
		}

		if start > 0 {
			out = append(out, s.buf[:start])
			s.buf = s.buf[start:]
		}

		end := strings.IndexByte(s.buf[len(markerOpen):], ']')
		if end < 0 {
			s.state = AwaitingClose
			return out
		}

		s.collect(s.buf[len(markerOpen) : len(markerOpen)+end])
		s.buf = s.buf[len(markerOpen)+end+1:]
	}
}

// Finish releases whatever prose is still held. For an unterminated marker
// only the literal "BID[" is dropped; the text after it is prose.
func (s *MarkerScanner) Finish() []string {
	rest := s.buf
	s.buf = ""
	if s.state == AwaitingClose {
		s.state = Scanning
		rest = strings.ReplaceAll(rest, markerOpen, "")
	}
	if rest == "" {
		return nil
	}
	return []string{rest}
}

func (s *MarkerScanner) collect(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if _, dup := s.seen[id]; dup {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// partialOpenSuffix is the length of the longest suffix of s that is a proper
// prefix of "BID[".
func partialOpenSuffix(s string) int {
	for n := len(markerOpen) - 1; n > 0; n-- {
		if strings.HasSuffix(s, markerOpen[:n]) {
			return n
		}
	}
	return 0
}
