// Package token defines Token, which represents a lexical token of Lox
// source code, and Type, the enumeration of token kinds that the scanner,
// parser, resolver and interpreter all share.
package token

import "fmt"

// Type is the type of a lexical token of Lox code.
type Type uint8

// The list of all token types.
const (
	Illegal Type = iota
	EOF

	// Keywords
	keywordsStart
	Print    // print
	Var      // var
	True     // true
	False    // false
	Nil      // nil
	If       // if
	Else     // else
	And      // and
	Or       // or
	While    // while
	For      // for
	Function // fun
	Return   // return
	Class    // class
	This     // this
	Super    // super
	keywordsEnd

	// Literals
	Ident  // identifier
	String // string
	Number // number

	// Delimiters
	Semicolon // ;
	Comma     // ,
	Dot       // .

	// Operators
	Assign       // =
	Plus         // +
	Minus        // -
	Asterisk     // *
	Slash        // /
	Less         // <
	LessEqual    // <=
	Greater      // >
	GreaterEqual // >=
	Equal        // ==
	NotEqual     // !=
	Bang         // !

	// Brackets
	LeftParen  // (
	RightParen // )
	LeftBrace  // {
	RightBrace // }
)

var keywordTypesByIdent = func() map[string]Type {
	m := make(map[string]Type, keywordsEnd-keywordsStart-2)
	for i := keywordsStart + 1; i < keywordsEnd; i++ {
		m[Type(i).String()] = Type(i)
	}
	return m
}()

// LookupIdent returns the keyword Type associated with ident if it's a
// keyword, otherwise it returns Ident.
func LookupIdent(ident string) Type {
	if t, ok := keywordTypesByIdent[ident]; ok {
		return t
	}
	return Ident
}

// Format implements fmt.Formatter. All verbs have the default behaviour,
// except for 'm' (message), which quotes the token type for use in an error
// message, e.g. '+'.
func (t Type) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		fmt.Fprintf(f, "'%s'", t.String())
	case 's', 'v', 'q':
		fmt.Fprintf(f, fmt.FormatString(f, verb), t.String())
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), uint8(t))
	}
}

// Token is a lexical token of Lox code.
type Token struct {
	Type    Type
	Lexeme  string
	Literal any // number (float64), string, or nil
	Line    int // 1-based line on which the token starts
	Col     int // 1-based column on which the token starts, used for diagnostics
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d: %s %q", t.Line, t.Col, t.Type, t.Lexeme)
}
