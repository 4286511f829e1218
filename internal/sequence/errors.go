package sequence

import "fmt"

// DuplicateVoiceError reports a voice name declared twice.
type DuplicateVoiceError struct {
	Name string
	Line int
	Col  int
}

func (e *DuplicateVoiceError) Error() string {
	return fmt.Sprintf("%d:%d: voice %q declared twice", e.Line, e.Col, e.Name)
}

// UnknownVoiceError reports a play block referencing an undeclared voice.
type UnknownVoiceError struct {
	Name string
	Line int
	Col  int
}

func (e *UnknownVoiceError) Error() string {
	return fmt.Sprintf("%d:%d: play block references undeclared voice %q", e.Line, e.Col, e.Name)
}

// InvalidAttributeError reports a voice attribute value outside its legal
// range, including an octave shift that pushes a note off the MIDI scale.
type InvalidAttributeError struct {
	Voice string
	Attr  string
	Value int
	Line  int
	Col   int
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("%d:%d: voice %q: %s value %d out of range", e.Line, e.Col, e.Voice, e.Attr, e.Value)
}

// DanglingSustainError reports a hold token at the very start of a play
// block, where there is no previous note to extend.
type DanglingSustainError struct {
	Voice string
	Line  int
	Col   int
}

func (e *DanglingSustainError) Error() string {
	return fmt.Sprintf("%d:%d: play block for %q starts with '.' but there is no note to extend", e.Line, e.Col, e.Voice)
}
