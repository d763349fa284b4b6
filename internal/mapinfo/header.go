package mapinfo

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Generated map scripts open with a comment block; the fifth and sixth lines
// hold the map name and author after a 10 character label such as "// Name:   "
// and "// Author: ". Lengths and offsets count characters, not bytes.
const (
	minHeaderLines  = 5
	nameLineIndex   = 4
	authorLineIndex = 5
	headerLabelLen  = 10
)

// Header is the metadata parsed from a script header.
type Header struct {
	Name   string
	Author string
	// AuthorMissing is true when the author line was present but malformed.
	AuthorMissing bool
}

// HeaderError describes why a header could not be fully parsed.
type HeaderError struct {
	Kind MalformedKind
	// Line is the 0-based offending line index, or -1 for HeaderTooShort.
	Line int
	// Length is the offending line length, or the line count for HeaderTooShort.
	Length int
}

func (e *HeaderError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("%s: %d lines, need %d", e.Kind.Err(), e.Length, minHeaderLines)
	}
	return fmt.Sprintf("%s: line %d has %d characters, need %d", e.Kind.Err(), e.Line+1, e.Length, headerLabelLen)
}

func (e *HeaderError) Unwrap() error { return e.Kind.Err() }

// Fatal reports whether the header is unusable. A non-fatal error accompanies a
// valid Header whose author could not be read.
func (e *HeaderError) Fatal() bool { return e.Kind.Fatal() }

// ParseHeader parses the map name and author out of script text.
func ParseHeader(script string) (Header, error) {
	return ParseHeaderLines(strings.Split(script, "\n"))
}

// ParseHeaderLines parses an already split script. On a fatal *HeaderError the
// returned Header is zero. On an AuthorFieldTooShort error the Header carries
// the name with AuthorMissing set.
func ParseHeaderLines(lines []string) (Header, error) {
	if len(lines) < minHeaderLines {
		return Header{}, &HeaderError{Kind: KindHeaderTooShort, Line: -1, Length: len(lines)}
	}

	name, n, ok := fieldValue(lines[nameLineIndex])
	if !ok {
		return Header{}, &HeaderError{Kind: KindNameFieldTooShort, Line: nameLineIndex, Length: n}
	}
	header := Header{Name: name}

	if len(lines) <= authorLineIndex {
		header.Author = UnknownAuthor
		return header, nil
	}

	author, n, ok := fieldValue(lines[authorLineIndex])
	if !ok {
		header.AuthorMissing = true
		return header, &HeaderError{Kind: KindAuthorFieldTooShort, Line: authorLineIndex, Length: n}
	}
	header.Author = author
	return header, nil
}

// fieldValue returns the trimmed text after the label of a header line along
// with the line's character count. ok is false when the line is shorter than
// the label.
func fieldValue(line string) (value string, length int, ok bool) {
	length = utf8.RuneCountInString(line)
	if length < headerLabelLen {
		return "", length, false
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[headerLabelLen:])), length, true
}
