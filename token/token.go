// Package token defines Token, the lexical token produced by the scanner and
// consumed by the parser, resolver and interpreter.
package token

import (
	"cmp"
	"fmt"
)

//go:generate go tool stringer -type Type

// Type is the type of a lexical token of Lox code.
//
// The set is closed: single/double-character punctuators, the three
// literal kinds, the sixteen keywords and EOF. Nothing else is scanned.
type Type int

// The list of all token types.
const (
	illegal Type = iota // unused zero value; never produced by the scanner

	// Single-character punctuators.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One/two-character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	keywordsStart
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordsEnd

	EOF
)

var typeNames = map[Type]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Identifier:   "identifier",
	String:       "string",
	Number:       "number",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	Fun:          "fun",
	For:          "for",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	EOF:          "EOF",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "illegal"
}

// Format implements fmt.Formatter. All verbs behave normally except for 'm'
// (message), which quotes the type for use in a diagnostic.
func (t Type) Format(f fmt.State, verb rune) {
	if verb == 'm' {
		fmt.Fprintf(f, "'%s'", t)
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), t.String())
}

var keywordTypesByIdent = func() map[string]Type {
	m := make(map[string]Type, keywordsEnd-keywordsStart-1)
	for t := keywordsStart + 1; t < keywordsEnd; t++ {
		m[typeNames[t]] = t
	}
	return m
}()

// IdentType returns the keyword Type whose lexeme is ident, or Identifier if
// ident is not a keyword.
func IdentType(ident string) Type {
	if t, ok := keywordTypesByIdent[ident]; ok {
		return t
	}
	return Identifier
}

// Identifier names with special meaning to the language.
const (
	ThisIdent = "this"
	SuperIdent = "super"
	InitIdent  = "init"
)

// Token is a lexical token of Lox code.
//
// Literal holds the dynamic value carried by String and Number tokens: the
// text between the quotes (with no escape processing) or the parsed float64. It is nil for every other
// token type.
type Token struct {
	Type    Type
	Lexeme  string
	Literal any
	Start   Position
	End     Position
}

// IsZero reports whether t is the zero value.
func (t Token) IsZero() bool {
	return t == Token{}
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}

// Position is a position in a source file.
type Position struct {
	File   *File
	Line   int // 1-based
	Column int // 0-based byte offset from the start of the line
}

// Compare orders positions first by file name, then by line, then by column.
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.File.name, other.File.name); c != 0 {
		return c
	}
	if p.Line != other.Line {
		return cmp.Compare(p.Line, other.Line)
	}
	return cmp.Compare(p.Column, other.Column)
}

// File is a minimal representation of a source file: its name, contents and
// the byte offset of the start of each line, used to report 1-based line
// numbers and byte columns.
type File struct {
	name        string
	contents    []byte
	lineOffsets []int
}

// NewFile returns a new File named name with the given contents.
func NewFile(name string, contents []byte) *File {
	f := &File{name: name, contents: contents, lineOffsets: []int{0}}
	for i, b := range contents {
		if b == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// Name returns the name of the file.
func (f *File) Name() string {
	return f.name
}

// Contents returns the full contents of the file.
func (f *File) Contents() []byte {
	return f.contents
}

// Line returns the nth (1-based) line of the file, without its trailing
// newline.
func (f *File) Line(n int) []byte {
	low := f.lineOffsets[n-1]
	high := len(f.contents)
	if n < len(f.lineOffsets) {
		high = f.lineOffsets[n] - 1
	}
	if high < low {
		high = low
	}
	return f.contents[low:high]
}
