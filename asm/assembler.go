package asm

/* a two pass 6502 assembler.
 *
 * the first pass parses every line, records the address of each label and
 * the value of each constant, and decides the addressing mode (and so the
 * size) of every instruction. the second pass evaluates operands and emits
 * bytes. opcodes come from the same table the cpu executes from.
 */

import (
    "fmt"
    "os"
    "sort"
    "strings"

    "github.com/kazzmir/m6502/lib"
)

type Symbol struct {
    Name string
    Value uint16
    /* defined as NAME = #value, so a bare use is an immediate operand */
    Immediate bool
    /* a label rather than a constant */
    Label bool
    Line int
}

type Program struct {
    Segments []lib.Segment
    Symbols map[string]*Symbol
}

/* address of the first byte emitted */
func (program *Program) Origin() uint16 {
    if len(program.Segments) == 0 {
        return 0
    }
    return program.Segments[0].Address
}

/* total number of bytes emitted */
func (program *Program) Size() int {
    total := 0
    for _, segment := range program.Segments {
        total += len(segment.Data)
    }
    return total
}

/* the program as one flat image starting at the lowest segment address.
 * gaps between segments are zero filled.
 */
func (program *Program) Bytes() []byte {
    if len(program.Segments) == 0 {
        return nil
    }

    low := int(program.Segments[0].Address)
    high := low
    for _, segment := range program.Segments {
        low = min(low, int(segment.Address))
        high = max(high, int(segment.Address) + len(segment.Data))
    }

    out := make([]byte, high - low)
    for _, segment := range program.Segments {
        copy(out[int(segment.Address) - low:], segment.Data)
    }
    return out
}

/* labels sorted by address, for listings and the debugger */
func (program *Program) Labels() []*Symbol {
    var out []*Symbol
    for _, symbol := range program.Symbols {
        if symbol.Label {
            out = append(out, symbol)
        }
    }
    sort.Slice(out, func(i int, j int) bool {
        if out[i].Value == out[j].Value {
            return out[i].Name < out[j].Name
        }
        return out[i].Value < out[j].Value
    })
    return out
}

type assembler struct {
    table *lib.InstructionTable
    symbols map[string]*Symbol
    origin uint16
}

/* assemble source text. origin is where code goes until the first .ORG */
func Assemble(source string, origin uint16) (*Program, error) {
    table := lib.MakeInstructionTable()

    var statements []Statement
    for i, line := range strings.Split(source, "\n") {
        line = strings.TrimRight(line, "\r")
        tokens, err := lexLine(line, i + 1)
        if err != nil {
            return nil, err
        }

        statement, err := parseStatement(tokens, i + 1, table)
        if err != nil {
            return nil, err
        }
        statements = append(statements, statement)
    }

    assembler := assembler{
        table: table,
        symbols: make(map[string]*Symbol),
        origin: origin,
    }

    err := assembler.firstPass(statements)
    if err != nil {
        return nil, err
    }

    return assembler.secondPass(statements)
}

func AssembleFile(path string, origin uint16) (*Program, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }

    program, err := Assemble(string(data), origin)
    if err != nil {
        return nil, fmt.Errorf("%v: %w", path, err)
    }
    return program, nil
}

func (assembler *assembler) define(name string, value int, line int, column int, label bool, immediate bool) error {
    if existing, ok := assembler.symbols[name]; ok {
        return errorAt(line, column, "symbol '%v' already defined on line %v", name, existing.Line)
    }

    if value < 0 || value > 0xffff {
        return errorAt(line, column, "value of '%v' does not fit in 16 bits: %v", name, value)
    }

    assembler.symbols[name] = &Symbol{
        Name: name,
        Value: uint16(value),
        Immediate: immediate,
        Label: label,
        Line: line,
    }
    return nil
}

/* evaluate an expression whose symbols must all be defined */
func (assembler *assembler) resolve(line int, expression *Expression) (int, error) {
    value, known, missing := expression.evaluate(assembler.symbols)
    if !known {
        return 0, errorAt(line, missing.Column, "undefined symbol '%v'", missing.Symbol)
    }
    return value, nil
}

func (assembler *assembler) hasMode(name string, mode lib.AddressingMode) bool {
    _, ok := assembler.table.Encode(name, mode)
    return ok
}

/* zero page when the value is already known and fits in a byte, otherwise
 * the absolute form. forward references always get the absolute form so
 * the size decided here cannot change in the second pass, and so does a
 * value written with 3 or 4 hex digits.
 */
func (assembler *assembler) zeroOrAbsolute(statement *Statement, zero lib.AddressingMode, absolute lib.AddressingMode) lib.AddressingMode {
    value, known, _ := statement.Operand.evaluate(assembler.symbols)
    if known && !statement.Operand.wide() && value >= 0 && value <= 0xff && assembler.hasMode(statement.Mnemonic, zero) {
        return zero
    }
    if assembler.hasMode(statement.Mnemonic, absolute) {
        return absolute
    }
    return zero
}

func (assembler *assembler) chooseMode(statement *Statement) (lib.AddressingMode, error) {
    name := statement.Mnemonic
    mode := lib.ModeImplicit

    switch statement.Syntax {
        case SyntaxNone:
            if assembler.hasMode(name, lib.ModeImplicit) {
                mode = lib.ModeImplicit
            } else if assembler.hasMode(name, lib.ModeAccumulator) {
                mode = lib.ModeAccumulator
            } else {
                return mode, errorAt(statement.Line, statement.MnemonicColumn, "%v needs an operand", strings.ToUpper(name))
            }
        case SyntaxAccumulator:
            mode = lib.ModeAccumulator
        case SyntaxImmediate:
            mode = lib.ModeImmediate
        case SyntaxAddress:
            if symbolName, ok := statement.Operand.singleSymbol(); ok {
                symbol, defined := assembler.symbols[symbolName]
                if defined && symbol.Immediate {
                    mode = lib.ModeImmediate
                    break
                }
            }

            if assembler.hasMode(name, lib.ModeRelative) {
                mode = lib.ModeRelative
            } else {
                mode = assembler.zeroOrAbsolute(statement, lib.ModeZeroPage, lib.ModeAbsolute)
            }
        case SyntaxAddressX:
            mode = assembler.zeroOrAbsolute(statement, lib.ModeZeroPageX, lib.ModeAbsoluteX)
        case SyntaxAddressY:
            mode = assembler.zeroOrAbsolute(statement, lib.ModeZeroPageY, lib.ModeAbsoluteY)
        case SyntaxIndirect:
            mode = lib.ModeIndirect
        case SyntaxIndirectX:
            mode = lib.ModeIndirectX
        case SyntaxIndirectY:
            mode = lib.ModeIndirectY
    }

    if !assembler.hasMode(name, mode) {
        column := statement.Operand.Column
        if column == 0 {
            column = statement.MnemonicColumn
        }
        return mode, errorAt(statement.Line, column, "%v does not support %v addressing", strings.ToUpper(name), mode)
    }

    return mode, nil
}

func (assembler *assembler) firstPass(statements []Statement) error {
    pc := int(assembler.origin)

    for i := range statements {
        statement := &statements[i]

        if statement.Label != "" {
            err := assembler.define(statement.Label, pc, statement.Line, statement.LabelColumn, true, false)
            if err != nil {
                return err
            }
        }

        if statement.Constant != "" {
            value, err := assembler.resolve(statement.Line, &statement.Operand)
            if err != nil {
                return err
            }
            err = assembler.define(statement.Constant, value, statement.Line, statement.ConstantColumn, false, statement.Syntax == SyntaxImmediate)
            if err != nil {
                return err
            }
            continue
        }

        statement.address = uint16(pc)

        switch statement.Directive {
            case "":
            case ".ORG":
                if len(statement.Arguments) != 1 || statement.Arguments[0].IsString {
                    return errorAt(statement.Line, statement.DirectiveColumn, ".ORG takes one address")
                }
                value, err := assembler.resolve(statement.Line, &statement.Arguments[0].Expression)
                if err != nil {
                    return err
                }
                if value < 0 || value > 0xffff {
                    return errorAt(statement.Line, statement.Arguments[0].Expression.Column, "origin 0x%x is outside of memory", value)
                }
                pc = value
                statement.address = uint16(pc)
                continue
            case ".BYTE":
                if len(statement.Arguments) == 0 {
                    return errorAt(statement.Line, statement.DirectiveColumn, ".BYTE needs at least one value")
                }
                for _, argument := range statement.Arguments {
                    if argument.IsString {
                        statement.size += len(argument.Text)
                    } else {
                        statement.size += 1
                    }
                }
            case ".WORD":
                if len(statement.Arguments) == 0 {
                    return errorAt(statement.Line, statement.DirectiveColumn, ".WORD needs at least one value")
                }
                statement.size = 2 * len(statement.Arguments)
            default:
                return errorAt(statement.Line, statement.DirectiveColumn, "unknown directive %v", statement.Directive)
        }

        if statement.Mnemonic != "" {
            mode, err := assembler.chooseMode(statement)
            if err != nil {
                return err
            }
            statement.mode = mode
            statement.size = 1 + int(mode.OperandLength())
        }

        pc += statement.size
        if pc > lib.MemorySize {
            return errorAt(statement.Line, 0, "program runs past the end of memory")
        }
    }

    return nil
}

func checkRange(line int, column int, value int, low int, high int, what string) error {
    if value < low || value > high {
        return errorAt(line, column, "%v out of range: %v", what, value)
    }
    return nil
}

func (assembler *assembler) encode(statement *Statement) ([]byte, error) {
    opcode, ok := assembler.table.Encode(statement.Mnemonic, statement.mode)
    if !ok {
        return nil, errorAt(statement.Line, statement.MnemonicColumn, "%v does not support %v addressing", strings.ToUpper(statement.Mnemonic), statement.mode)
    }

    out := []byte{byte(opcode)}

    if statement.mode == lib.ModeImplicit || statement.mode == lib.ModeAccumulator {
        return out, nil
    }

    line := statement.Line
    column := statement.Operand.Column

    value, err := assembler.resolve(line, &statement.Operand)
    if err != nil {
        return nil, err
    }

    switch statement.mode {
        case lib.ModeImmediate:
            err = checkRange(line, column, value, -128, 0xff, "immediate value")
            out = append(out, byte(value))
        case lib.ModeZeroPage, lib.ModeZeroPageX, lib.ModeZeroPageY, lib.ModeIndirectX, lib.ModeIndirectY:
            err = checkRange(line, column, value, 0, 0xff, "zero page address")
            out = append(out, byte(value))
        case lib.ModeRelative:
            offset := value - (int(statement.address) + 2)
            err = checkRange(line, column, offset, -128, 127, "branch distance")
            out = append(out, byte(int8(offset)))
        default:
            err = checkRange(line, column, value, 0, 0xffff, "address")
            out = append(out, byte(value & 0xff), byte(value >> 8))
    }

    if err != nil {
        return nil, err
    }

    return out, nil
}

func (assembler *assembler) encodeData(statement *Statement) ([]byte, error) {
    var out []byte
    for _, argument := range statement.Arguments {
        if argument.IsString {
            out = append(out, []byte(argument.Text)...)
            continue
        }

        value, err := assembler.resolve(statement.Line, &argument.Expression)
        if err != nil {
            return nil, err
        }

        if statement.Directive == ".WORD" {
            err = checkRange(statement.Line, argument.Expression.Column, value, 0, 0xffff, "word")
            if err != nil {
                return nil, err
            }
            out = append(out, byte(value & 0xff), byte(value >> 8))
        } else {
            err = checkRange(statement.Line, argument.Expression.Column, value, -128, 0xff, "byte")
            if err != nil {
                return nil, err
            }
            out = append(out, byte(value))
        }
    }
    return out, nil
}

func (assembler *assembler) secondPass(statements []Statement) (*Program, error) {
    program := &Program{Symbols: assembler.symbols}
    current := lib.Segment{Address: assembler.origin}

    for i := range statements {
        statement := &statements[i]

        var data []byte
        var err error

        switch {
            case statement.Directive == ".ORG":
                if len(current.Data) > 0 {
                    program.Segments = append(program.Segments, current)
                }
                current = lib.Segment{Address: statement.address}
                continue
            case statement.Directive != "":
                data, err = assembler.encodeData(statement)
            case statement.Mnemonic != "":
                data, err = assembler.encode(statement)
        }

        if err != nil {
            return nil, err
        }

        current.Data = append(current.Data, data...)
    }

    if len(current.Data) > 0 || len(program.Segments) == 0 {
        program.Segments = append(program.Segments, current)
    }

    return program, nil
}
