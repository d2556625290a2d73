// Package scanner scans Lox source code into a sequence of lexical tokens.
//
// Scanning is out of the interpreter's core (see spec §1): it is an external
// collaborator with a fixed contract (spec §6) that the parser consumes.
package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/token"
)

const nullChar = 0

// Scanner scans Lox source code into lexical tokens.
type Scanner struct {
	src string

	startPos, pos   int // byte offsets of the lexeme being scanned / character under consideration
	startLine, line int
	startCol, col   int
}

// New constructs a Scanner which will scan src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1, col: 1}
}

// Scan scans the source code into a sequence of tokens ending in a single EOF
// token. If any lexical errors occur, every error is collected and returned
// together rather than stopping at the first one; the returned token slice
// is nil in that case.
func (s *Scanner) Scan() ([]token.Token, error) {
	var tokens []token.Token
	var errs loxerr.Errors
	for {
		tok, err := s.consumeToken()
		if err != nil {
			errs = append(errs, err.(*loxerr.Error))
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *Scanner) consumeToken() (token.Token, error) {
	for {
		s.consumeWhitespace()
		s.startPos, s.startLine, s.startCol = s.pos, s.line, s.col
		switch c := s.consumeChar(); c {
		case nullChar:
			return s.newToken(token.EOF), nil
		case ';':
			return s.newToken(token.Semicolon), nil
		case ',':
			return s.newToken(token.Comma), nil
		case '.':
			return s.newToken(token.Dot), nil
		case '=':
			if s.matchChar('=') {
				return s.newToken(token.Equal), nil
			}
			return s.newToken(token.Assign), nil
		case '+':
			return s.newToken(token.Plus), nil
		case '-':
			return s.newToken(token.Minus), nil
		case '*':
			return s.newToken(token.Asterisk), nil
		case '/':
			if s.matchChar('/') {
				s.consumeLineComment()
				continue
			}
			if s.matchChar('*') {
				if err := s.consumeBlockComment(); err != nil {
					return token.Token{}, err
				}
				continue
			}
			return s.newToken(token.Slash), nil
		case '<':
			if s.matchChar('=') {
				return s.newToken(token.LessEqual), nil
			}
			return s.newToken(token.Less), nil
		case '>':
			if s.matchChar('=') {
				return s.newToken(token.GreaterEqual), nil
			}
			return s.newToken(token.Greater), nil
		case '!':
			if s.matchChar('=') {
				return s.newToken(token.NotEqual), nil
			}
			return s.newToken(token.Bang), nil
		case '(':
			return s.newToken(token.LeftParen), nil
		case ')':
			return s.newToken(token.RightParen), nil
		case '{':
			return s.newToken(token.LeftBrace), nil
		case '}':
			return s.newToken(token.RightBrace), nil
		case '"':
			return s.consumeStringToken()
		default:
			if isDigit(c) {
				return s.consumeNumberToken(), nil
			}
			if isAlpha(c) {
				ident := s.consumeIdent()
				return s.newToken(token.LookupIdent(ident)), nil
			}
			return token.Token{}, s.syntaxErrorf("unexpected character %q", c)
		}
	}
}

// consumeChar returns the character at the current position and advances
// past it, or nullChar if the end of the source has been reached.
func (s *Scanner) consumeChar() byte {
	if s.eof() {
		return nullChar
	}
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

// matchChar consumes the current character if it equals want, and reports
// whether it did.
func (s *Scanner) matchChar(want byte) bool {
	if s.peekChar() != want {
		return false
	}
	s.consumeChar()
	return true
}

func (s *Scanner) peekChar() byte {
	if s.eof() {
		return nullChar
	}
	return s.src[s.pos]
}

func (s *Scanner) peekNextChar() byte {
	if s.pos >= len(s.src)-1 {
		return nullChar
	}
	return s.src[s.pos+1]
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *Scanner) consumeWhitespace() {
	for isWhitespace(s.peekChar()) {
		s.consumeChar()
	}
}

func (s *Scanner) consumeLineComment() {
	for !s.eof() && s.peekChar() != '\n' {
		s.consumeChar()
	}
}

// consumeBlockComment consumes up to and including the closing "*/" of a
// block comment opened by the "/*" the caller already consumed. Block
// comments may be nested.
func (s *Scanner) consumeBlockComment() error {
	depth := 1
	for depth > 0 && !s.eof() {
		if s.peekChar() == '/' && s.peekNextChar() == '*' {
			s.consumeChar()
			s.consumeChar()
			depth++
		} else if s.peekChar() == '*' && s.peekNextChar() == '/' {
			s.consumeChar()
			s.consumeChar()
			depth--
		} else {
			s.consumeChar()
		}
	}
	if depth > 0 {
		return s.syntaxErrorf("unterminated block comment")
	}
	return nil
}

func (s *Scanner) consumeStringToken() (token.Token, error) {
	for {
		switch s.consumeChar() {
		case nullChar, '\n':
			return token.Token{}, s.syntaxErrorf("unterminated string literal")
		case '"':
			lexeme := s.scannedLexeme()
			literal := lexeme[1 : len(lexeme)-1] // trim the surrounding quotes
			return s.newTokenWithLiteral(token.String, literal), nil
		}
	}
}

func (s *Scanner) consumeNumberToken() token.Token {
	for isDigit(s.peekChar()) {
		s.consumeChar()
	}
	if s.peekChar() == '.' && isDigit(s.peekNextChar()) {
		s.consumeChar()
		for isDigit(s.peekChar()) {
			s.consumeChar()
		}
	}
	literal, err := strconv.ParseFloat(s.scannedLexeme(), 64)
	if err != nil {
		panic(fmt.Sprintf("scanning number literal: parsing %q as float64: %s", s.scannedLexeme(), err))
	}
	return s.newTokenWithLiteral(token.Number, literal)
}

func (s *Scanner) consumeIdent() string {
	for isAlphaNumeric(s.peekChar()) {
		s.consumeChar()
	}
	return s.scannedLexeme()
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func (s *Scanner) scannedLexeme() string {
	return s.src[s.startPos:s.pos]
}

func (s *Scanner) newTokenWithLiteral(typ token.Type, literal any) token.Token {
	return token.Token{
		Type:    typ,
		Lexeme:  s.scannedLexeme(),
		Literal: literal,
		Line:    s.startLine,
		Col:     s.startCol,
	}
}

func (s *Scanner) newToken(typ token.Type) token.Token {
	return s.newTokenWithLiteral(typ, nil)
}

func (s *Scanner) syntaxErrorf(format string, a ...any) error {
	replacer := strings.NewReplacer("\n", "", "\r", "")
	return loxerr.New(s.startLine, replacer.Replace(fmt.Sprintf(format, a...)))
}
