// Package deck reads plain-text input decks for quantum-chemistry
// calculations: one parameter per line as whitespace-separated
// "key value" pairs, with inline comments introduced by "!!" and
// blank lines permitted anywhere. Values are coerced to the narrowest
// applicable type (integer, then float, then string); the semantics
// of each parameter name belong to the engine that consumes the deck.
package deck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

// commentMarker starts an inline comment running to end of line.
const commentMarker = "!!"

// ParseError reports a malformed deck line: a key present without
// a value.
type ParseError struct {
	Line int    // 1-based line number
	Text string // the offending line, as read
	Key  string // the key that has no value
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("deck: line %d: parameter %q has no value", e.Line, e.Key)
}

// Parse reads an input deck from r. Blank lines and comment-only
// lines are skipped. A duplicated parameter name keeps the last
// value seen and logs a warning.
func Parse(r io.Reader) (*Deck, error) {
	d := NewDeck()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// Strip the inline comment before splitting.
		text := line
		if idx := strings.Index(text, commentMarker); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		key := text
		if idx := strings.IndexFunc(text, unicode.IsSpace); idx >= 0 {
			key = text[:idx]
		}
		rest := strings.TrimSpace(text[len(key):])
		if rest == "" {
			return nil, &ParseError{Line: lineNo, Text: line, Key: key}
		}
		if _, dup := d.Lookup(key); dup {
			logrus.WithFields(logrus.Fields{
				"parameter": key,
				"line":      lineNo,
			}).Warn("duplicate deck parameter, keeping last value")
		}
		d.Set(key, rest)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseBytes parses an input deck held in memory.
func ParseBytes(data []byte) (*Deck, error) {
	return Parse(bytes.NewReader(data))
}

// ParseString parses an input deck from a string.
func ParseString(s string) (*Deck, error) {
	return Parse(strings.NewReader(s))
}

// coerce converts raw value text to the narrowest applicable type.
// A multi-token remainder never parses as a number and stays a string.
func coerce(raw string) Value {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{kind: Int, i: i, raw: raw}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{kind: Float, f: f, raw: raw}
	}
	return Value{kind: String, raw: raw}
}
