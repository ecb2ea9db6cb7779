package asm

import (
    "strings"

    "github.com/kazzmir/m6502/lib"
)

/* the shape of an operand as written, before a concrete addressing mode
 * is picked
 */
type OperandSyntax int

const (
    SyntaxNone OperandSyntax = iota
    SyntaxAccumulator
    SyntaxImmediate
    SyntaxAddress
    SyntaxAddressX
    SyntaxAddressY
    SyntaxIndirect
    SyntaxIndirectX
    SyntaxIndirectY
)

type term struct {
    Negative bool
    Number int
    Symbol string
    Wide bool
    Column int
}

/* a sum of numbers and symbols, optionally narrowed to its low (<) or
 * high (>) byte
 */
type Expression struct {
    Selector TokenKind
    Terms []term
    Column int
}

/* returns the symbol name if the expression is exactly one symbol */
func (expression *Expression) singleSymbol() (string, bool) {
    if len(expression.Terms) == 1 && expression.Selector != TokenLess && expression.Selector != TokenGreater {
        first := expression.Terms[0]
        if first.Symbol != "" && !first.Negative {
            return first.Symbol, true
        }
    }
    return "", false
}

/* true if a number in the expression was written with more than two hex
 * digits. taking the low or high byte makes it narrow again.
 */
func (expression *Expression) wide() bool {
    if expression.Selector == TokenLess || expression.Selector == TokenGreater {
        return false
    }
    for _, part := range expression.Terms {
        if part.Wide {
            return true
        }
    }
    return false
}

/* compute the value. known is false if a symbol has not been defined yet,
 * in which case missing is the first such symbol.
 */
func (expression *Expression) evaluate(symbols map[string]*Symbol) (value int, known bool, missing term) {
    total := 0
    for _, part := range expression.Terms {
        current := part.Number
        if part.Symbol != "" {
            symbol, ok := symbols[part.Symbol]
            if !ok {
                return 0, false, part
            }
            current = int(symbol.Value)
        }

        if part.Negative {
            total -= current
        } else {
            total += current
        }
    }

    switch expression.Selector {
        case TokenLess: total = total & 0xff
        case TokenGreater: total = (total >> 8) & 0xff
    }

    return total, true, term{}
}

type Argument struct {
    Text string
    IsString bool
    Expression Expression
}

/* one line of source */
type Statement struct {
    Line int

    Label string
    LabelColumn int

    /* NAME = value. Syntax is SyntaxImmediate if the value was written with '#' */
    Constant string
    ConstantColumn int

    Directive string
    DirectiveColumn int
    Arguments []Argument

    Mnemonic string
    MnemonicColumn int

    Syntax OperandSyntax
    Operand Expression

    /* decided in the first pass */
    mode lib.AddressingMode
    address uint16
    size int
}

type lineParser struct {
    tokens []Token
    position int
    line int
    table *lib.InstructionTable
}

func (parser *lineParser) atEnd() bool {
    return parser.position >= len(parser.tokens)
}

func (parser *lineParser) peek() (Token, bool) {
    if parser.atEnd() {
        return Token{}, false
    }
    return parser.tokens[parser.position], true
}

func (parser *lineParser) peekKind(kind TokenKind) bool {
    token, ok := parser.peek()
    return ok && token.Kind == kind
}

func (parser *lineParser) next() Token {
    token := parser.tokens[parser.position]
    parser.position += 1
    return token
}

/* column to report when the line ends too early */
func (parser *lineParser) endColumn() int {
    if len(parser.tokens) == 0 {
        return 0
    }
    last := parser.tokens[len(parser.tokens) - 1]
    return last.Column + len(last.Text)
}

func (parser *lineParser) expect(kind TokenKind) (Token, error) {
    token, ok := parser.peek()
    if !ok {
        return Token{}, errorAt(parser.line, parser.endColumn(), "expected %v at end of line", kind)
    }
    if token.Kind != kind {
        return Token{}, errorAt(parser.line, token.Column, "expected %v but found %v", kind, token)
    }
    return parser.next(), nil
}

func (parser *lineParser) expectRegister(name string) error {
    token, err := parser.expect(TokenIdentifier)
    if err != nil {
        return err
    }
    if !strings.EqualFold(token.Text, name) {
        return errorAt(parser.line, token.Column, "expected register %v but found '%v'", name, token.Text)
    }
    return nil
}

func (parser *lineParser) expectEnd() error {
    token, ok := parser.peek()
    if ok {
        return errorAt(parser.line, token.Column, "unexpected %v", token)
    }
    return nil
}

func (parser *lineParser) parseTerm() (term, error) {
    negative := false
    if parser.peekKind(TokenMinus) {
        parser.next()
        negative = true
    }

    token, ok := parser.peek()
    if !ok {
        return term{}, errorAt(parser.line, parser.endColumn(), "expected a value at end of line")
    }

    switch token.Kind {
        case TokenNumber:
            parser.next()
            return term{Negative: negative, Number: token.Value, Wide: token.Wide, Column: token.Column}, nil
        case TokenIdentifier:
            parser.next()
            return term{Negative: negative, Symbol: token.Text, Column: token.Column}, nil
    }

    return term{}, errorAt(parser.line, token.Column, "expected a number or a symbol but found %v", token)
}

func (parser *lineParser) parseExpression() (Expression, error) {
    var expression Expression

    token, ok := parser.peek()
    if ok {
        expression.Column = token.Column
        if token.Kind == TokenLess || token.Kind == TokenGreater {
            expression.Selector = token.Kind
            parser.next()
        }
    }

    first, err := parser.parseTerm()
    if err != nil {
        return expression, err
    }
    expression.Terms = append(expression.Terms, first)

    for parser.peekKind(TokenPlus) || parser.peekKind(TokenMinus) {
        operator := parser.next()
        /* a - b is parsed as a + (-b) */
        if operator.Kind == TokenMinus {
            parser.position -= 1
        }
        more, err := parser.parseTerm()
        if err != nil {
            return expression, err
        }
        expression.Terms = append(expression.Terms, more)
    }

    return expression, nil
}

func (parser *lineParser) parseOperand(statement *Statement) error {
    token, ok := parser.peek()
    if !ok {
        statement.Syntax = SyntaxNone
        return nil
    }

    switch token.Kind {
        case TokenHash:
            parser.next()
            expression, err := parser.parseExpression()
            if err != nil {
                return err
            }
            statement.Syntax = SyntaxImmediate
            statement.Operand = expression

        case TokenOpenParen:
            parser.next()
            expression, err := parser.parseExpression()
            if err != nil {
                return err
            }
            statement.Operand = expression

            if parser.peekKind(TokenComma) {
                parser.next()
                err = parser.expectRegister("X")
                if err != nil {
                    return err
                }
                _, err = parser.expect(TokenCloseParen)
                if err != nil {
                    return err
                }
                statement.Syntax = SyntaxIndirectX
            } else {
                _, err = parser.expect(TokenCloseParen)
                if err != nil {
                    return err
                }
                if parser.peekKind(TokenComma) {
                    parser.next()
                    err = parser.expectRegister("Y")
                    if err != nil {
                        return err
                    }
                    statement.Syntax = SyntaxIndirectY
                } else {
                    statement.Syntax = SyntaxIndirect
                }
            }

        default:
            if token.Kind == TokenIdentifier && strings.EqualFold(token.Text, "A") && parser.position + 1 == len(parser.tokens) {
                parser.next()
                statement.Syntax = SyntaxAccumulator
                return nil
            }

            expression, err := parser.parseExpression()
            if err != nil {
                return err
            }
            statement.Operand = expression
            statement.Syntax = SyntaxAddress

            if parser.peekKind(TokenComma) {
                parser.next()
                register, err := parser.expect(TokenIdentifier)
                if err != nil {
                    return err
                }
                switch strings.ToUpper(register.Text) {
                    case "X": statement.Syntax = SyntaxAddressX
                    case "Y": statement.Syntax = SyntaxAddressY
                    default:
                        return errorAt(parser.line, register.Column, "expected register X or Y but found '%v'", register.Text)
                }
            }
    }

    return parser.expectEnd()
}

func (parser *lineParser) parseArguments(statement *Statement) error {
    if parser.atEnd() {
        return nil
    }

    for {
        if parser.peekKind(TokenString) {
            token := parser.next()
            statement.Arguments = append(statement.Arguments, Argument{Text: token.Text, IsString: true})
        } else {
            expression, err := parser.parseExpression()
            if err != nil {
                return err
            }
            statement.Arguments = append(statement.Arguments, Argument{Expression: expression})
        }

        if !parser.peekKind(TokenComma) {
            break
        }
        parser.next()
    }

    return parser.expectEnd()
}

/* a label is either NAME: or a bare identifier that is not a mnemonic,
 * followed by nothing, a mnemonic or a directive
 */
func (parser *lineParser) parseLabel(statement *Statement) error {
    first, ok := parser.peek()
    if !ok || first.Kind != TokenIdentifier {
        return nil
    }

    if len(parser.tokens) > 1 && parser.tokens[1].Kind == TokenColon {
        statement.Label = first.Text
        statement.LabelColumn = first.Column
        parser.position += 2
        return nil
    }

    if parser.table.HasMnemonic(first.Text) {
        return nil
    }

    if len(parser.tokens) == 1 || parser.tokens[1].Kind == TokenIdentifier || parser.tokens[1].Kind == TokenDirective {
        statement.Label = first.Text
        statement.LabelColumn = first.Column
        parser.position += 1
        return nil
    }

    return errorAt(parser.line, first.Column, "unknown instruction '%v'", first.Text)
}

func parseStatement(tokens []Token, line int, table *lib.InstructionTable) (Statement, error) {
    statement := Statement{Line: line}
    parser := lineParser{tokens: tokens, line: line, table: table}

    if len(tokens) == 0 {
        return statement, nil
    }

    /* NAME = value */
    if len(tokens) > 1 && tokens[0].Kind == TokenIdentifier && tokens[1].Kind == TokenEquals {
        statement.Constant = tokens[0].Text
        statement.ConstantColumn = tokens[0].Column
        parser.position = 2

        statement.Syntax = SyntaxAddress
        if parser.peekKind(TokenHash) {
            parser.next()
            statement.Syntax = SyntaxImmediate
        }

        expression, err := parser.parseExpression()
        if err != nil {
            return statement, err
        }
        statement.Operand = expression
        return statement, parser.expectEnd()
    }

    err := parser.parseLabel(&statement)
    if err != nil {
        return statement, err
    }

    if parser.atEnd() {
        return statement, nil
    }

    token := parser.next()
    switch token.Kind {
        case TokenDirective:
            statement.Directive = token.Text
            statement.DirectiveColumn = token.Column
            return statement, parser.parseArguments(&statement)
        case TokenIdentifier:
            if !table.HasMnemonic(token.Text) {
                return statement, errorAt(line, token.Column, "unknown instruction '%v'", token.Text)
            }
            statement.Mnemonic = strings.ToLower(token.Text)
            statement.MnemonicColumn = token.Column
            return statement, parser.parseOperand(&statement)
    }

    return statement, errorAt(line, token.Column, "unexpected %v", token)
}
