package disasm

/* turns 6502 machine code back into assembly text that the asm package
 * accepts. decoding goes through the cpu's own instruction table.
 */

import (
    "fmt"
    "io"
    "strings"

    "github.com/kazzmir/m6502/lib"
    "github.com/fatih/color"
)

type Line struct {
    Address uint16
    Bytes []byte
    Text string
    /* nil when the bytes could not be decoded and are shown as .BYTE */
    Instruction *lib.Instruction
}

/* branch or jump destination, if the line has one */
func (line *Line) Target() (uint16, bool) {
    if line.Instruction == nil {
        return 0, false
    }

    switch line.Instruction.Mode {
        case lib.ModeRelative:
            return lib.ComputeRelative(line.Address + line.Instruction.Length(), line.Instruction.OperandByte()), true
        case lib.ModeAbsolute:
            switch line.Instruction.Name {
                case "jmp", "jsr":
                    return line.Instruction.OperandWord(), true
            }
    }

    return 0, false
}

/* the operand as assembly text. relative branches are shown as the absolute
 * address they go to.
 */
func FormatOperand(instruction lib.Instruction) string {
    switch instruction.Mode {
        case lib.ModeImplicit, lib.ModeAccumulator:
            return ""
        case lib.ModeImmediate:
            return fmt.Sprintf("#$%02X", instruction.OperandByte())
        case lib.ModeZeroPage:
            return fmt.Sprintf("$%02X", instruction.OperandByte())
        case lib.ModeZeroPageX:
            return fmt.Sprintf("$%02X,X", instruction.OperandByte())
        case lib.ModeZeroPageY:
            return fmt.Sprintf("$%02X,Y", instruction.OperandByte())
        case lib.ModeRelative:
            return fmt.Sprintf("$%04X", lib.ComputeRelative(instruction.Address + instruction.Length(), instruction.OperandByte()))
        case lib.ModeAbsolute:
            return fmt.Sprintf("$%04X", instruction.OperandWord())
        case lib.ModeAbsoluteX:
            return fmt.Sprintf("$%04X,X", instruction.OperandWord())
        case lib.ModeAbsoluteY:
            return fmt.Sprintf("$%04X,Y", instruction.OperandWord())
        case lib.ModeIndirect:
            return fmt.Sprintf("($%04X)", instruction.OperandWord())
        case lib.ModeIndirectX:
            return fmt.Sprintf("($%02X,X)", instruction.OperandByte())
        case lib.ModeIndirectY:
            return fmt.Sprintf("($%02X),Y", instruction.OperandByte())
    }
    return ""
}

func Format(instruction lib.Instruction) string {
    name := strings.ToUpper(instruction.Name)
    operand := FormatOperand(instruction)
    if operand == "" {
        return name
    }
    return name + " " + operand
}

/* the listing line for an instruction that has already been decoded */
func MakeLine(instruction lib.Instruction) Line {
    return Line{
        Address: instruction.Address,
        Bytes: instruction.Bytes(),
        Text: Format(instruction),
        Instruction: &instruction,
    }
}

func dataLine(address uint16, value byte) Line {
    return Line{
        Address: address,
        Bytes: []byte{value},
        Text: fmt.Sprintf(".BYTE $%02X", value),
    }
}

/* decode instructions until the data runs out or limit lines have been
 * produced. a limit of 0 means no limit.
 */
func decode(code []byte, origin uint16, limit int) []Line {
    var out []Line
    reader := lib.NewInstructionReader(code, origin)

    for limit == 0 || len(out) < limit {
        offset := reader.Offset()
        address := reader.Address()

        instruction, err := reader.ReadInstruction()
        if err == io.EOF {
            break
        }

        if err != nil {
            if lib.IsDecodeError(err) {
                out = append(out, dataLine(address, code[offset]))
                continue
            }

            /* the last instruction is missing operand bytes */
            for i := offset; i < len(code); i++ {
                if limit != 0 && len(out) >= limit {
                    break
                }
                out = append(out, dataLine(origin + uint16(i), code[i]))
            }
            break
        }

        out = append(out, MakeLine(instruction))
    }

    return out
}

/* disassemble code as if it were loaded at origin. bytes that are not
 * instructions come out as .BYTE lines.
 */
func Disassemble(code []byte, origin uint16) ([]Line, error) {
    if int(origin) + len(code) > lib.MemorySize {
        return nil, &lib.AddressResolutionError{Offset: int(origin), Length: len(code)}
    }

    return decode(code, origin, 0), nil
}

/* disassemble count instructions straight out of memory, starting at
 * address. reads wrap around the top of memory.
 */
func DisassembleMemory(memory *lib.Memory, address uint16, count int) []Line {
    /* no instruction is longer than 3 bytes */
    window := make([]byte, count * 3)
    for i := range window {
        window[i] = memory.Load(address + uint16(i))
    }

    return decode(window, address, count)
}

type Options struct {
    /* show the address column */
    Addresses bool
    /* show the raw bytes column */
    Bytes bool
    /* replace jump and branch targets with label names */
    Labels map[uint16]string
    /* color each column with terminal escapes */
    Color bool
}

var (
    labelColor = color.New(color.FgGreen)
    addressColor = color.New(color.FgYellow)
    bytesColor = color.New(color.Faint)
    instructionColor = color.New(color.FgCyan)
    dataColor = color.New(color.FgMagenta)
)

func (options Options) paint(paint *color.Color, text string) string {
    if !options.Color {
        return text
    }
    return paint.Sprint(text)
}

/* format a single line according to options. a line with a label is
 * preceded by the label on its own line.
 */
func (options Options) FormatLine(line Line) string {
    var out strings.Builder

    if label, ok := options.Labels[line.Address]; ok {
        out.WriteString(options.paint(labelColor, label + ":"))
        out.WriteString("\n")
    }

    if options.Addresses {
        out.WriteString(options.paint(addressColor, fmt.Sprintf("%04X", line.Address)))
        out.WriteString("  ")
    }

    if options.Bytes {
        var hex []string
        for _, value := range line.Bytes {
            hex = append(hex, fmt.Sprintf("%02X", value))
        }
        out.WriteString(options.paint(bytesColor, fmt.Sprintf("%-8s", strings.Join(hex, " "))))
        out.WriteString("  ")
    }

    text := line.Text
    if target, ok := line.Target(); ok {
        if label, ok := options.Labels[target]; ok {
            text = strings.ToUpper(line.Instruction.Name) + " " + label
        }
    }

    if line.Instruction == nil {
        out.WriteString(options.paint(dataColor, text))
    } else {
        out.WriteString(options.paint(instructionColor, text))
    }

    return out.String()
}

/* the whole listing, one line per instruction */
func Listing(lines []Line, options Options) string {
    var out strings.Builder
    for _, line := range lines {
        out.WriteString(options.FormatLine(line))
        out.WriteString("\n")
    }
    return out.String()
}

/* Write is Listing to an io.Writer */
func Write(writer io.Writer, lines []Line, options Options) error {
    for _, line := range lines {
        _, err := fmt.Fprintln(writer, options.FormatLine(line))
        if err != nil {
            return err
        }
    }
    return nil
}

/* code only listing, as accepted by the assembler */
func Text(code []byte, origin uint16) (string, error) {
    lines, err := Disassemble(code, origin)
    if err != nil {
        return "", err
    }
    return Listing(lines, Options{}), nil
}
