// ABOUTME: Minimal PDF text extraction for uploaded story documents.
// ABOUTME: Scans content streams for text-showing operators; falls back to plain text input.
package server

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

var pdfHeader = []byte("%PDF-")

// ErrNoText means the document contained no extractable text.
var ErrNoText = errors.New("no extractable text")

// ExtractText pulls readable text out of an uploaded document. PDF input is
// scanned stream by stream for text-showing operators, inflating
// Flate-compressed streams along the way. Non-PDF input that looks like plain
// text is returned as-is, so .txt uploads work too. Font subsetting and
// non-Latin encodings are out of scope; garbled glyph IDs are dropped.
func ExtractText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, pdfHeader) {
		if looksLikeText(data) {
			text := strings.TrimSpace(string(data))
			if text == "" {
				return "", ErrNoText
			}
			return text, nil
		}
		return "", fmt.Errorf("unrecognized document format")
	}

	var out strings.Builder
	for _, stream := range contentStreams(data) {
		s := &textScanner{src: stream}
		s.scan()
		if s.out.Len() > 0 {
			if out.Len() > 0 {
				out.WriteString("\n")
			}
			out.WriteString(s.out.String())
		}
	}

	text := normalizeText(out.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// contentStreams returns the payload of every stream object in the file,
// inflated when the stream is zlib-compressed.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	rest := data
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		body := rest[start+len("stream"):]
		// The keyword is followed by CRLF or LF before the data.
		if bytes.HasPrefix(body, []byte("\r\n")) {
			body = body[2:]
		} else if bytes.HasPrefix(body, []byte("\n")) {
			body = body[1:]
		}
		end := bytes.Index(body, []byte("endstream"))
		if end < 0 {
			break
		}
		// Trailing EOL before endstream is left in place; it is harmless to
		// the scanner and the inflater stops at the deflate stream's end.
		payload := body[:end]
		if inflated, err := inflate(payload); err == nil {
			payload = inflated
		}
		streams = append(streams, payload)
		rest = body[end+len("endstream"):]
	}
	return streams
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// textScanner walks a decoded content stream and collects the arguments of
// text-showing operators (Tj, ', ", TJ). Positioning operators turn into
// line breaks so paragraphs keep some shape.
type textScanner struct {
	src     []byte
	pos     int
	out     strings.Builder
	pending []string
	inArray bool
}

func (s *textScanner) scan() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '(':
			s.pending = append(s.pending, s.readLiteralString())
		case ch == '<' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '<':
			s.pos += 2 // dictionary open, not a hex string
		case ch == '<':
			s.pending = append(s.pending, s.readHexString())
		case ch == '[':
			s.inArray = true
			s.pending = s.pending[:0]
			s.pos++
		case ch == ']':
			s.inArray = false
			s.pos++
		case ch == '-' || (ch >= '0' && ch <= '9'):
			s.readNumber()
		case isOperatorByte(ch):
			s.readOperator()
		default:
			s.pos++
		}
	}
}

// readLiteralString consumes a (...) string, handling nesting and escapes.
func (s *textScanner) readLiteralString() string {
	s.pos++ // opening paren
	var b strings.Builder
	depth := 1
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch ch {
		case '\\':
			s.pos++
			if s.pos >= len(s.src) {
				return b.String()
			}
			esc := s.src[s.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// Ignored control glyphs.
			case '(', ')', '\\':
				b.WriteByte(esc)
			case '\r':
				if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\n' {
					s.pos++
				}
			case '\n':
				// Line continuation.
			default:
				if esc >= '0' && esc <= '7' {
					b.WriteByte(s.readOctal())
					continue
				}
				b.WriteByte(esc)
			}
			s.pos++
		case '(':
			depth++
			b.WriteByte(ch)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
			s.pos++
		}
	}
	return b.String()
}

// readOctal consumes up to three octal digits starting at the current byte.
func (s *textScanner) readOctal() byte {
	val := 0
	for n := 0; n < 3 && s.pos < len(s.src); n++ {
		ch := s.src[s.pos]
		if ch < '0' || ch > '7' {
			break
		}
		val = val*8 + int(ch-'0')
		s.pos++
	}
	return byte(val)
}

// readHexString consumes a <...> string. An odd final digit is padded with 0.
func (s *textScanner) readHexString() string {
	s.pos++ // opening angle
	var digits []byte
	for s.pos < len(s.src) && s.src[s.pos] != '>' {
		ch := s.src[s.pos]
		if isHexDigit(ch) {
			digits = append(digits, ch)
		}
		s.pos++
	}
	if s.pos < len(s.src) {
		s.pos++ // closing angle
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	decoded := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(decoded, digits); err != nil {
		return ""
	}
	var b strings.Builder
	for _, ch := range decoded {
		if ch >= 0x20 && ch < 0x7f {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// readNumber consumes a numeric operand. Inside a TJ array a large negative
// adjustment usually marks a word gap, so it becomes a space.
func (s *textScanner) readNumber() {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			s.pos++
			continue
		}
		break
	}
	if !s.inArray {
		return
	}
	if val, err := strconv.ParseFloat(string(s.src[start:s.pos]), 64); err == nil && val < -100 {
		s.pending = append(s.pending, " ")
	}
}

func (s *textScanner) readOperator() {
	start := s.pos
	for s.pos < len(s.src) && isOperatorByte(s.src[s.pos]) {
		s.pos++
	}
	switch string(s.src[start:s.pos]) {
	case "Tj", "TJ":
		s.emitPending("")
	case "'":
		s.emitPending("\n")
	case "\"":
		s.emitPending("\n")
	case "Td", "TD", "T*", "ET":
		s.pending = s.pending[:0]
		s.breakLine()
	default:
		// Operands for operators we do not handle are discarded.
		if !s.inArray {
			s.pending = s.pending[:0]
		}
	}
}

func (s *textScanner) emitPending(prefix string) {
	if len(s.pending) == 0 {
		return
	}
	if prefix != "" {
		s.breakLine()
	}
	for _, part := range s.pending {
		s.out.WriteString(part)
	}
	s.pending = s.pending[:0]
}

func (s *textScanner) breakLine() {
	if s.out.Len() > 0 && !strings.HasSuffix(s.out.String(), "\n") {
		s.out.WriteString("\n")
	}
}

func isOperatorByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '*' || ch == '\'' || ch == '"'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// normalizeText collapses runs of blank lines and trims trailing spaces.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(kept) > 0 {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		blank = false
		kept = append(kept, line)
	}
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, "\n")
}

// looksLikeText reports whether data is plausibly a plain text document.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return false
	}
	control := 0
	for _, ch := range data {
		if ch < 0x20 && ch != '\n' && ch != '\r' && ch != '\t' {
			control++
		}
	}
	return control*10 < len(data)
}
