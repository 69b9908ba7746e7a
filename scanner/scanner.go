// Package scanner defines Scan, which turns Lox source code into a sequence
// of lexical tokens.
package scanner

import (
	"fmt"
	"strconv"

	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/token"
)

const nullChar = 0

type scanner struct {
	file     *token.File
	src      string
	reporter *loxerr.Reporter

	start     int // byte offset of the first character of the lexeme being scanned
	startLine int
	startCol  int
	pos       int // byte offset of the character currently being considered
	line      int
	col       int // 0-based byte offset from the start of the current line
}

// Scan scans the whole of file into a token sequence terminated by a single
// EOF token. Scanning is single pass, with one character of lookahead (two
// when deciding whether a '.' starts the fractional part of a number).
// Errors (unterminated strings, unexpected characters) are reported through
// reporter as they're found; scanning never stops early.
func Scan(file *token.File, reporter *loxerr.Reporter) []token.Token {
	s := &scanner{file: file, src: string(file.Contents()), reporter: reporter, line: 1}
	var tokens []token.Token
	for {
		tok := s.scanToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (s *scanner) scanToken() token.Token {
	for {
		s.skipWhitespace()
		s.start = s.pos
		s.startLine = s.line
		s.startCol = s.col
		c := s.advance()
		switch c {
		case nullChar:
			return s.newToken(token.EOF)
		case '(':
			return s.newToken(token.LeftParen)
		case ')':
			return s.newToken(token.RightParen)
		case '{':
			return s.newToken(token.LeftBrace)
		case '}':
			return s.newToken(token.RightBrace)
		case ',':
			return s.newToken(token.Comma)
		case '.':
			return s.newToken(token.Dot)
		case '-':
			return s.newToken(token.Minus)
		case '+':
			return s.newToken(token.Plus)
		case ';':
			return s.newToken(token.Semicolon)
		case '*':
			return s.newToken(token.Star)
		case '!':
			if s.match('=') {
				return s.newToken(token.BangEqual)
			}
			return s.newToken(token.Bang)
		case '=':
			if s.match('=') {
				return s.newToken(token.EqualEqual)
			}
			return s.newToken(token.Equal)
		case '<':
			if s.match('=') {
				return s.newToken(token.LessEqual)
			}
			return s.newToken(token.Less)
		case '>':
			if s.match('=') {
				return s.newToken(token.GreaterEqual)
			}
			return s.newToken(token.Greater)
		case '/':
			if s.match('/') {
				for s.peek() != '\n' && s.peek() != nullChar {
					s.advance()
				}
				continue
			}
			return s.newToken(token.Slash)
		case '"':
			if tok, ok := s.scanString(); ok {
				return tok
			}
			continue
		default:
			switch {
			case isDigit(c):
				return s.scanNumber()
			case isAlpha(c):
				return s.scanIdent()
			default:
				s.errorf("Unexpected character.")
				continue
			}
		}
	}
}

func (s *scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.advance()
		default:
			return
		}
	}
}

// scanString scans the body of a string literal, having already consumed
// the opening quote. It reports "Unterminated string." and returns false if
// the closing quote is never found.
func (s *scanner) scanString() (token.Token, bool) {
	for {
		c := s.peek()
		if c == nullChar {
			s.errorfAt(s.startLine, "Unterminated string.")
			return token.Token{}, false
		}
		if c == '"' {
			break
		}
		s.advance()
	}
	s.advance() // closing quote
	lexeme := s.src[s.start:s.pos]
	literal := lexeme[1 : len(lexeme)-1]
	return s.newTokenWithLiteral(token.String, literal), true
}

func (s *scanner) scanNumber() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	lexeme := s.src[s.start:s.pos]
	n, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		panic(fmt.Sprintf("scanner: number literal %q failed to parse: %s", lexeme, err))
	}
	return s.newTokenWithLiteral(token.Number, n)
}

func (s *scanner) scanIdent() token.Token {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	lexeme := s.src[s.start:s.pos]
	return s.newToken(token.IdentType(lexeme))
}

func (s *scanner) advance() byte {
	if s.pos >= len(s.src) {
		return nullChar
	}
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	return c
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return nullChar
	}
	return s.src[s.pos]
}

func (s *scanner) peekNext() byte {
	if s.pos+1 >= len(s.src) {
		return nullChar
	}
	return s.src[s.pos+1]
}

func (s *scanner) match(want byte) bool {
	if s.peek() != want {
		return false
	}
	s.advance()
	return true
}

func (s *scanner) newToken(t token.Type) token.Token {
	return s.newTokenWithLiteral(t, nil)
}

func (s *scanner) newTokenWithLiteral(t token.Type, literal any) token.Token {
	lexeme := s.src[s.start:s.pos]
	if t == token.EOF {
		lexeme = ""
	}
	start := token.Position{File: s.file, Line: s.startLine, Column: s.startCol}
	end := token.Position{File: s.file, Line: s.line, Column: s.col}
	return token.Token{Type: t, Lexeme: lexeme, Literal: literal, Start: start, End: end}
}

func (s *scanner) errorf(format string, args ...any) {
	s.errorfAt(s.startLine, format, args...)
}

func (s *scanner) errorfAt(line int, format string, args ...any) {
	s.reporter.Report(line, "", fmt.Sprintf(format, args...))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
