// Package token defines the lexical tokens produced by the G10 assembler's
// lexer and consumed by the preprocessor and parser.
package token

import "fmt"

// Position identifies a location in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsValid reports whether the position carries a non-empty file name.
func (p Position) IsValid() bool {
	return p.File != ""
}

// Kind enumerates the closed set of token kinds the lexer produces.
type Kind int

const (
	Unknown Kind = iota

	// Keywords and identifiers.
	Keyword
	Identifier
	Variable            // $name
	Placeholder         // @name
	PlaceholderKeyword  // @name where name is also a keyword lexeme

	// Literals.
	IntegerLiteral
	NumberLiteral
	CharacterLiteral
	StringLiteral

	// Arithmetic and bitwise operators.
	Plus
	Minus
	Times
	Exponent
	Divide
	Modulo
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNot
	ShiftLeft
	ShiftRight

	// Assignment operators.
	AssignEqual
	AssignPlus
	AssignMinus
	AssignTimes
	AssignExponent
	AssignDivide
	AssignModulo
	AssignAnd
	AssignOr
	AssignXor
	AssignShiftLeft
	AssignShiftRight

	// Comparison operators.
	CompareEqual
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual

	// Logical operators.
	LogicalAnd
	LogicalOr
	LogicalNot

	// Grouping.
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	LeftBrace
	RightBrace

	// Punctuation.
	Comma
	Colon

	// Control.
	NewLine
	EOF
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	Keyword:             "keyword",
	Identifier:          "identifier",
	Variable:            "variable",
	Placeholder:         "placeholder",
	PlaceholderKeyword:  "placeholder_keyword",
	IntegerLiteral:      "integer_literal",
	NumberLiteral:       "number_literal",
	CharacterLiteral:    "character_literal",
	StringLiteral:       "string_literal",
	Plus:                "plus",
	Minus:               "minus",
	Times:               "times",
	Exponent:            "exponent",
	Divide:              "divide",
	Modulo:              "modulo",
	BitwiseAnd:          "bitwise_and",
	BitwiseOr:           "bitwise_or",
	BitwiseXor:          "bitwise_xor",
	BitwiseNot:          "bitwise_not",
	ShiftLeft:           "shift_left",
	ShiftRight:          "shift_right",
	AssignEqual:         "assign_equal",
	AssignPlus:          "assign_plus",
	AssignMinus:         "assign_minus",
	AssignTimes:         "assign_times",
	AssignExponent:      "assign_exponent",
	AssignDivide:        "assign_divide",
	AssignModulo:        "assign_modulo",
	AssignAnd:           "assign_and",
	AssignOr:            "assign_or",
	AssignXor:           "assign_xor",
	AssignShiftLeft:     "assign_shift_left",
	AssignShiftRight:    "assign_shift_right",
	CompareEqual:        "compare_equal",
	CompareNotEqual:     "compare_not_equal",
	CompareLess:         "compare_less",
	CompareLessEqual:    "compare_less_equal",
	CompareGreater:      "compare_greater",
	CompareGreaterEqual: "compare_greater_equal",
	LogicalAnd:          "logical_and",
	LogicalOr:           "logical_or",
	LogicalNot:          "logical_not",
	LeftParen:           "left_parenthesis",
	RightParen:          "right_parenthesis",
	LeftBracket:         "left_bracket",
	RightBracket:        "right_bracket",
	LeftBrace:           "left_brace",
	RightBrace:          "right_brace",
	Comma:               "comma",
	Colon:               "colon",
	NewLine:             "new_line",
	EOF:                 "end_of_file",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KeywordRef is an optional reference into the keyword table: an id plus a
// validity flag, rather than a pointer, so tokens never pin keyword-table
// lifetime.
type KeywordRef struct {
	ID    int
	Valid bool
}

// Token is a single lexeme produced by the lexer.
type Token struct {
	Kind     Kind
	Lexeme   string
	Pos      Position
	IntValue    int64
	HasInt      bool
	FloatValue  float64
	HasFloat    bool
	Keyword     KeywordRef
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Lexeme, t.Pos)
}

// IsKeyword reports whether the token carries a valid keyword reference.
func (t Token) IsKeyword() bool {
	return (t.Kind == Keyword || t.Kind == PlaceholderKeyword) && t.Keyword.Valid
}
