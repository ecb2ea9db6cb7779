package asm

import (
    "fmt"
    "strconv"
    "strings"
    "unicode"
)

type TokenKind int

const (
    TokenIdentifier TokenKind = iota
    TokenNumber
    TokenString
    TokenDirective
    TokenHash
    TokenComma
    TokenOpenParen
    TokenCloseParen
    TokenColon
    TokenEquals
    TokenPlus
    TokenMinus
    TokenLess
    TokenGreater
)

func (kind TokenKind) String() string {
    switch kind {
        case TokenIdentifier: return "identifier"
        case TokenNumber: return "number"
        case TokenString: return "string"
        case TokenDirective: return "directive"
        case TokenHash: return "'#'"
        case TokenComma: return "','"
        case TokenOpenParen: return "'('"
        case TokenCloseParen: return "')'"
        case TokenColon: return "':'"
        case TokenEquals: return "'='"
        case TokenPlus: return "'+'"
        case TokenMinus: return "'-'"
        case TokenLess: return "'<'"
        case TokenGreater: return "'>'"
    }
    return "unknown"
}

type Token struct {
    Kind TokenKind
    Text string
    /* only set for numbers */
    Value int
    /* a number written wider than a byte, like $0005, which always means
     * a full 16 bit address
     */
    Wide bool
    /* 1 based */
    Column int
}

func (token Token) String() string {
    return fmt.Sprintf("%v '%v'", token.Kind, token.Text)
}

func isIdentifierStart(c rune) bool {
    return c == '_' || unicode.IsLetter(c)
}

func isIdentifierPart(c rune) bool {
    return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isHexDigit(c rune) bool {
    return strings.ContainsRune("0123456789abcdefABCDEF", c)
}

var punctuation = map[rune]TokenKind{
    '#': TokenHash,
    ',': TokenComma,
    '(': TokenOpenParen,
    ')': TokenCloseParen,
    ':': TokenColon,
    '=': TokenEquals,
    '+': TokenPlus,
    '-': TokenMinus,
    '<': TokenLess,
    '>': TokenGreater,
}

/* split one line of source into tokens. everything after a ';' is a comment */
func lexLine(line string, lineNumber int) ([]Token, error) {
    var tokens []Token
    runes := []rune(line)

    position := 0
    for position < len(runes) {
        c := runes[position]
        column := position + 1

        if unicode.IsSpace(c) {
            position += 1
            continue
        }

        if c == ';' {
            break
        }

        if kind, ok := punctuation[c]; ok {
            tokens = append(tokens, Token{Kind: kind, Text: string(c), Column: column})
            position += 1
            continue
        }

        switch {
            case isIdentifierStart(c):
                end := position
                for end < len(runes) && isIdentifierPart(runes[end]) {
                    end += 1
                }
                tokens = append(tokens, Token{Kind: TokenIdentifier, Text: string(runes[position:end]), Column: column})
                position = end

            case c == '.':
                end := position + 1
                for end < len(runes) && isIdentifierPart(runes[end]) {
                    end += 1
                }
                if end == position + 1 {
                    return nil, &Error{Line: lineNumber, Column: column, Message: "expected a directive name after '.'"}
                }
                tokens = append(tokens, Token{Kind: TokenDirective, Text: strings.ToUpper(string(runes[position:end])), Column: column})
                position = end

            case c == '$' || c == '%' || unicode.IsDigit(c):
                base := 10
                start := position
                if c == '$' {
                    base = 16
                    start += 1
                } else if c == '%' {
                    base = 2
                    start += 1
                }

                end := start
                for end < len(runes) && (isHexDigit(runes[end]) || runes[end] == '_') {
                    end += 1
                }

                digits := strings.ReplaceAll(string(runes[start:end]), "_", "")
                if digits == "" {
                    return nil, &Error{Line: lineNumber, Column: column, Message: fmt.Sprintf("expected digits after '%c'", c)}
                }

                value, err := strconv.ParseUint(digits, base, 16)
                if err != nil {
                    return nil, &Error{Line: lineNumber, Column: column, Message: fmt.Sprintf("invalid number '%v'", string(runes[position:end]))}
                }

                wide := (base == 16 && len(digits) > 2) || (base == 2 && len(digits) > 8)
                tokens = append(tokens, Token{Kind: TokenNumber, Text: string(runes[position:end]), Value: int(value), Wide: wide, Column: column})
                position = end

            case c == '"':
                end := position + 1
                for end < len(runes) && runes[end] != '"' {
                    end += 1
                }
                if end >= len(runes) {
                    return nil, &Error{Line: lineNumber, Column: column, Message: "unterminated string"}
                }
                tokens = append(tokens, Token{Kind: TokenString, Text: string(runes[position + 1:end]), Column: column})
                position = end + 1

            default:
                return nil, &Error{Line: lineNumber, Column: column, Message: fmt.Sprintf("unexpected character '%c'", c)}
        }
    }

    return tokens, nil
}
