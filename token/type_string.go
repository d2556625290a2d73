package token

// typeNames holds the string returned by Type.String, kept in sync with the
// const block in token.go by hand (update it after changing that block).
var typeNames = map[Type]string{
	Illegal:       "illegal",
	EOF:           "EOF",
	keywordsStart: "keywordsStart",
	Print:         "print",
	Var:           "var",
	True:          "true",
	False:         "false",
	Nil:           "nil",
	If:            "if",
	Else:          "else",
	And:           "and",
	Or:            "or",
	While:         "while",
	For:           "for",
	Function:      "fun",
	Return:        "return",
	Class:         "class",
	This:          "this",
	Super:         "super",
	keywordsEnd:   "keywordsEnd",
	Ident:         "identifier",
	String:        "string",
	Number:        "number",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	Assign:        "=",
	Plus:          "+",
	Minus:         "-",
	Asterisk:      "*",
	Slash:         "/",
	Less:          "<",
	LessEqual:     "<=",
	Greater:       ">",
	GreaterEqual:  ">=",
	Equal:         "==",
	NotEqual:      "!=",
	Bang:          "!",
	LeftParen:     "(",
	RightParen:    ")",
	LeftBrace:     "{",
	RightBrace:    "}",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}
