package notation

import (
	"fmt"
	"strconv"
	"strings"
)

var noteOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// middleC anchors the uppercase letter octave; lowercase letters sit one
// octave above it.
const middleC = 60

// Parse converts melo source text into a Document. The only failure mode is
// a *SyntaxError carrying the offending source position. Parsing is a pure
// transformation; resolution and timing live in the sequence package.
func Parse(src string) (*Document, error) {
	s := &scanner{src: src, line: 1, col: 1}
	doc := &Document{}
	for {
		s.skipSpace()
		if s.eof() {
			return doc, nil
		}
		line, col := s.line, s.col
		word := s.ident()
		if word == "" {
			return nil, s.errf("unexpected character %q", rune(s.peek()))
		}
		switch word {
		case "voice":
			decl, err := s.voiceDecl(line, col)
			if err != nil {
				return nil, err
			}
			doc.Voices = append(doc.Voices, decl)
		case "play":
			pb, err := s.playBlock(line, col)
			if err != nil {
				return nil, err
			}
			doc.Plays = append(doc.Plays, pb)
		default:
			if err := s.pieceAttr(doc, word, line, col); err != nil {
				return nil, err
			}
		}
	}
}

func (s *scanner) voiceDecl(line, col int) (VoiceDecl, error) {
	s.skipSpace()
	name := s.ident()
	if name == "" {
		return VoiceDecl{}, s.errf("expected a voice name after \"voice\"")
	}
	decl := VoiceDecl{Name: name, Line: line, Col: col}
	if err := s.expect('{'); err != nil {
		return VoiceDecl{}, err
	}
	for {
		s.skipSpace()
		if s.eof() {
			return VoiceDecl{}, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("unterminated voice block %q", name)}
		}
		if s.peek() == '}' {
			s.advance()
			return decl, nil
		}
		keyLine, keyCol := s.line, s.col
		key := s.ident()
		if key == "" {
			return VoiceDecl{}, s.errf("unexpected character %q in voice block", rune(s.peek()))
		}
		if err := s.expect(':'); err != nil {
			return VoiceDecl{}, err
		}
		s.skipInlineSpace()
		switch key {
		case "program":
			v, err := s.number()
			if err != nil {
				return VoiceDecl{}, err
			}
			decl.Program = &v
		case "channel":
			v, err := s.number()
			if err != nil {
				return VoiceDecl{}, err
			}
			decl.Channel = &v
		case "volume":
			v, err := s.number()
			if err != nil {
				return VoiceDecl{}, err
			}
			decl.Volume = &v
		case "octave":
			v, err := s.number()
			if err != nil {
				return VoiceDecl{}, err
			}
			decl.Octave = &v
		case "drums":
			v, err := s.boolean()
			if err != nil {
				return VoiceDecl{}, err
			}
			decl.Drums = &v
		default:
			return VoiceDecl{}, &SyntaxError{Line: keyLine, Col: keyCol, Msg: fmt.Sprintf("unknown voice attribute %q", key)}
		}
		s.skipInlineSpace()
		if !s.eof() && (s.peek() == ',' || s.peek() == ';') {
			s.advance()
		}
	}
}

func (s *scanner) playBlock(line, col int) (PlayBlock, error) {
	s.skipSpace()
	name := s.ident()
	if name == "" {
		return PlayBlock{}, s.errf("expected a voice name after \"play\"")
	}
	pb := PlayBlock{Voice: name, Line: line, Col: col}
	if err := s.expect('{'); err != nil {
		return PlayBlock{}, err
	}
	var cur Bar
	barOpen := false
	for {
		s.skipSpace()
		if s.eof() {
			return PlayBlock{}, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("unterminated play block %q", name)}
		}
		switch s.peek() {
		case '}':
			if len(cur) > 0 {
				return PlayBlock{}, s.errf("bar not terminated by '|'")
			}
			s.advance()
			return pb, nil
		case ':':
			// Stave opener: the next `|` starts a new stave line rather
			// than closing a bar, so `:|` after a trailing `|` does not
			// read as an empty bar.
			s.advance()
			barOpen = false
		case '|':
			barLine, barCol := s.line, s.col
			s.advance()
			if !barOpen {
				barOpen = true
				break
			}
			if len(cur) == 0 {
				return PlayBlock{}, &SyntaxError{Line: barLine, Col: barCol, Msg: "empty bar"}
			}
			pb.Bars = append(pb.Bars, cur)
			cur = nil
		default:
			tok, err := s.noteToken()
			if err != nil {
				return PlayBlock{}, err
			}
			if !barOpen {
				return PlayBlock{}, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: "expected '|' to open a bar"}
			}
			cur = append(cur, tok)
		}
	}
}

func (s *scanner) pieceAttr(doc *Document, word string, line, col int) error {
	s.skipSpace()
	if s.eof() || s.peek() != ':' {
		return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("unexpected %q at top level (expected voice, play, or an attribute)", word)}
	}
	s.advance()
	s.skipInlineSpace()
	switch word {
	case "tempo":
		v, err := s.number()
		if err != nil {
			return err
		}
		doc.Tempo = v
	case "beats":
		v, err := s.number()
		if err != nil {
			return err
		}
		doc.Beats = v
	case "title":
		v, err := s.stringValue()
		if err != nil {
			return err
		}
		doc.Title = v
	case "composer":
		v, err := s.stringValue()
		if err != nil {
			return err
		}
		doc.Composer = v
	default:
		return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("unknown piece attribute %q", word)}
	}
	s.skipInlineSpace()
	if !s.eof() && (s.peek() == ',' || s.peek() == ';') {
		s.advance()
	}
	return nil
}

// noteToken scans one whitespace-delimited token inside a bar and classifies
// its shape: a rest `-`, a hold `.`, or a pitch letter with an optional
// accidental and octave markers.
func (s *scanner) noteToken() (Token, error) {
	line, col := s.line, s.col
	start := s.pos
	for !s.eof() && isTokenChar(s.peek()) {
		s.advance()
	}
	raw := s.src[start:s.pos]
	if raw == "" {
		return Token{}, s.errf("unexpected character %q in bar", rune(s.peek()))
	}
	tok, ok := classifyToken(raw)
	if !ok {
		return Token{}, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("unrecognized note token %q", raw)}
	}
	tok.Line, tok.Col = line, col
	return tok, nil
}

func classifyToken(raw string) (Token, bool) {
	switch raw {
	case ".":
		return Token{Kind: TokenHold}, true
	case "-":
		return Token{Kind: TokenRest}, true
	}
	c := raw[0]
	lo := lower(c)
	base, ok := noteOffsets[lo]
	if !ok {
		return Token{}, false
	}
	pitch := middleC + base
	if c == lo {
		pitch += 12
	}
	i := 1
	if i < len(raw) {
		switch raw[i] {
		case '#', '+':
			pitch++
			i++
		case 'b', '-':
			pitch--
			i++
		}
	}
	for ; i < len(raw); i++ {
		switch raw[i] {
		case '\'':
			pitch += 12
		case ',':
			pitch -= 12
		default:
			return Token{}, false
		}
	}
	return Token{Kind: TokenPitch, Pitch: pitch}, true
}

func isTokenChar(b byte) bool {
	if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return true
	}
	switch b {
	case '#', '+', '-', '.', '\'', ',':
		return true
	}
	return false
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) advance() byte {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

// skipSpace skips whitespace, newlines included, and // comments.
func (s *scanner) skipSpace() {
	for !s.eof() {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

// skipInlineSpace is skipSpace without crossing a line break, so attribute
// values can end at a newline.
func (s *scanner) skipInlineSpace() {
	for !s.eof() {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r':
			s.advance()
		case ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() {
		ch := s.peek()
		if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (s.pos > start && ch >= '0' && ch <= '9') {
			s.advance()
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

func (s *scanner) expect(ch byte) error {
	s.skipSpace()
	if s.eof() || s.peek() != ch {
		return s.errf("expected %q", string(ch))
	}
	s.advance()
	return nil
}

func (s *scanner) number() (int, error) {
	line, col := s.line, s.col
	start := s.pos
	if !s.eof() && (s.peek() == '-' || s.peek() == '+') {
		s.advance()
	}
	for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
		s.advance()
	}
	v, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		return 0, &SyntaxError{Line: line, Col: col, Msg: "expected a number"}
	}
	return v, nil
}

func (s *scanner) boolean() (bool, error) {
	line, col := s.line, s.col
	switch s.ident() {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &SyntaxError{Line: line, Col: col, Msg: "expected true or false"}
}

// stringValue reads a quoted string, or everything up to the end of the line
// for bare values.
func (s *scanner) stringValue() (string, error) {
	if !s.eof() && s.peek() == '"' {
		line, col := s.line, s.col
		s.advance()
		start := s.pos
		for !s.eof() && s.peek() != '"' && s.peek() != '\n' {
			s.advance()
		}
		if s.eof() || s.peek() != '"' {
			return "", &SyntaxError{Line: line, Col: col, Msg: "unclosed string"}
		}
		v := s.src[start:s.pos]
		s.advance()
		return v, nil
	}
	start := s.pos
	for !s.eof() && s.peek() != '\n' && s.peek() != ',' && s.peek() != ';' {
		s.advance()
	}
	return strings.TrimSpace(s.src[start:s.pos]), nil
}

func (s *scanner) errf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: s.line, Col: s.col, Msg: fmt.Sprintf(format, args...)}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
