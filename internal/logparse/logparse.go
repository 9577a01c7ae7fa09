// Package logparse implements the strict log-line parser (spec §4.5).
// Grammar: "<ISO-8601 timestamp> SP <level token> SP <message body>".
package logparse

import (
	"strings"
	"time"
)

// Level enumerates the recognised severities. Anything that does not match
// one of Info/Warn/Error/Debug case-insensitively maps to Other and never
// fails parsing (STAT-001).
type Level int

const (
	Info Level = iota
	Warn
	Error
	Debug
	Other
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Debug:
		return "DEBUG"
	default:
		return "OTHER"
	}
}

// Line is the parsed form of one log line. MessageKey is a view into the
// input line passed to Parse and is valid only for the duration of the
// enclosing line callback (PRS-004); callers that need to retain it must
// copy it to a new string (converting to an owned string only when a
// message key is first seen, per spec §4.6 step 4).
type Line struct {
	Timestamp  time.Time
	Level      Level
	MessageKey []byte
	LatencyMs  int
	HasLatency bool
}

// timestampLayouts are the only shapes accepted, matching spec §4.5 exactly:
// an explicit zone designator ('Z' or '±HH:MM'), optionally with
// millisecond or 100-nanosecond fractional seconds. Using a small fixed set
// of layouts (rather than a permissive parser) keeps PRS-003 deterministic
// across platforms, per spec §9 design notes.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.0000000Z07:00",
}

// Parse parses one line per the grammar in spec §4.5. ok is false only when
// the first or second space is missing, or the timestamp fails to parse
// (PRS-001); all other deviations (unrecognised level, missing/malformed
// latency) are tolerated and never fail the line.
func Parse(line []byte) (Line, bool) {
	firstSpace := indexByte(line, ' ')
	if firstSpace < 0 {
		return Line{}, false
	}
	rest := line[firstSpace+1:]
	secondSpace := indexByte(rest, ' ')
	if secondSpace < 0 {
		return Line{}, false
	}

	tsToken := line[:firstSpace]
	levelToken := rest[:secondSpace]
	body := rest[secondSpace+1:]

	ts, ok := parseTimestamp(string(tsToken))
	if !ok {
		return Line{}, false
	}

	result := Line{
		Timestamp:  ts,
		Level:      parseLevel(levelToken),
		MessageKey: firstToken(body),
	}
	if ms, ok := parseLatency(line); ok {
		result.LatencyMs = ms
		result.HasLatency = true
	}
	return result, true
}

func parseTimestamp(s string) (time.Time, bool) {
	// time.Parse accepts a fraction of any length after the seconds field
	// even for a layout without one, so the fraction length is checked here.
	if len(s) > 19 && s[19] == '.' {
		n := 0
		for 20+n < len(s) && s[20+n] >= '0' && s[20+n] <= '9' {
			n++
		}
		if n != 3 && n != 7 {
			return time.Time{}, false
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseLevel(token []byte) Level {
	switch {
	case equalFoldASCII(token, "INFO"):
		return Info
	case equalFoldASCII(token, "WARN"):
		return Warn
	case equalFoldASCII(token, "ERROR"):
		return Error
	case equalFoldASCII(token, "DEBUG"):
		return Debug
	default:
		return Other
	}
}

// firstToken returns the first whitespace-delimited token of body, skipping
// any leading spaces or tabs, or an empty (non-nil-vs-nil is unspecified)
// slice if body is empty or holds only whitespace.
func firstToken(body []byte) []byte {
	start := 0
	for start < len(body) && isSpace(body[start]) {
		start++
	}
	end := start
	for end < len(body) && !isSpace(body[end]) {
		end++
	}
	return body[start:end]
}

const latencyPrefix = "latency_ms="

// parseLatency scans the full line for the literal (case-insensitive)
// prefix "latency_ms=" and parses the run of ASCII decimal digits
// immediately following it. Per spec §9 open questions, the match folds
// case over the whole prefix, not just its alphabetic portion. Absence,
// malformed digits, or numeric overflow all yield ok=false and never
// invalidate the line (PRS-001).
func parseLatency(line []byte) (int, bool) {
	idx := indexFold(line, latencyPrefix)
	if idx < 0 {
		return 0, false
	}
	digitsStart := idx + len(latencyPrefix)
	digitsEnd := digitsStart
	for digitsEnd < len(line) && line[digitsEnd] >= '0' && line[digitsEnd] <= '9' {
		digitsEnd++
	}
	if digitsEnd == digitsStart {
		return 0, false
	}
	value := 0
	for _, c := range line[digitsStart:digitsEnd] {
		value = value*10 + int(c-'0')
		if value > 1<<31 {
			return 0, false // guard against overflow on pathological input
		}
	}
	return value, true
}

func indexByte(s []byte, b byte) int {
	for i, c := range s {
		if c == b {
			return i
		}
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func equalFoldASCII(token []byte, want string) bool {
	if len(token) != len(want) {
		return false
	}
	for i := 0; i < len(token); i++ {
		if toUpperASCII(token[i]) != want[i] {
			return false
		}
	}
	return true
}

func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// indexFold finds the first case-insensitive occurrence of needle (ASCII) in
// haystack, or -1.
func indexFold(haystack []byte, needle string) int {
	n := len(needle)
	if n == 0 || n > len(haystack) {
		return -1
	}
	upperNeedle := strings.ToUpper(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if equalFoldASCII(haystack[i:i+n], upperNeedle) {
			return i
		}
	}
	return -1
}
