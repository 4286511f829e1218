package notation

import "fmt"

// Document is the parsed form of one melo source file: the piece-level
// attributes, the voice declarations and the play blocks, in source order.
// It is purely structural; name resolution and timing happen in the
// sequence package.
type Document struct {
	Title    string
	Composer string
	Tempo    int // beats per minute, 0 = unset
	Beats    int // beats per bar, 0 = unset

	Voices []VoiceDecl
	Plays  []PlayBlock
}

// VoiceDecl is a `voice Name { ... }` block. Attribute pointers are nil when
// the key was omitted, so the registry can tell "unset" from "zero".
type VoiceDecl struct {
	Name string
	Line int
	Col  int

	Program *int
	Channel *int
	Volume  *int
	Octave  *int
	Drums   *bool
}

// PlayBlock is a `play Name { :| ... | }` block: the referenced voice name
// and the ordered bars.
type PlayBlock struct {
	Voice string
	Line  int
	Col   int
	Bars  []Bar
}

// Bar is the ordered token list between two `|` delimiters. A bar with no
// tokens is rejected at parse time, so a Bar is never empty.
type Bar []Token

type TokenKind int

const (
	// TokenPitch is a letter note, accidental and octave markers included.
	TokenPitch TokenKind = iota + 1
	// TokenRest is `-`: consumes its time slot, emits nothing.
	TokenRest
	// TokenHold is `.`: extends the previous note across its time slot.
	TokenHold
)

// Token is one atomic unit inside a bar. For TokenPitch, Pitch is the
// absolute MIDI note before any voice octave shift (uppercase letters sit in
// the middle octave, C = 60; lowercase one octave up, c = 72).
type Token struct {
	Kind  TokenKind
	Pitch int
	Line  int
	Col   int
}

// SyntaxError reports a grammar violation with its source position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}
