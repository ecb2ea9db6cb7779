package main

import (
    "fmt"
    "os"
    "strings"

    "github.com/kazzmir/m6502/cmd/m6502/common"
    "github.com/kazzmir/m6502/disasm"
    "github.com/kazzmir/m6502/lib"

    "github.com/fatih/color"
    "golang.org/x/term"
)

/* decide whether output gets colored. in auto mode only a terminal does */
func setupColor(mode string) bool {
    switch mode {
        case common.ColorAlways:
            color.NoColor = false
        case common.ColorNever:
            color.NoColor = true
        default:
            color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
    }
    return !color.NoColor
}

/* NV-BDIZC with set flags in upper case */
func flagString(status byte) string {
    names := "nv-bdizc"
    var out strings.Builder
    for i, name := range names {
        bit := byte(0x80) >> i
        if status & bit != 0 {
            out.WriteString(strings.ToUpper(string(name)))
        } else {
            out.WriteRune(name)
        }
    }
    return out.String()
}

func registers(cpu *lib.CPUState) string {
    return fmt.Sprintf("A:%02X X:%02X Y:%02X SP:%02X P:%02X %v", cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.Status, flagString(cpu.Status))
}

var registerColor = color.New(color.FgWhite, color.Bold).SprintFunc()

/* one line of run -trace output: the instruction that just ran and the
 * registers it left behind
 */
func traceLine(last lib.Instruction, cpu *lib.CPUState, options disasm.Options) string {
    line := options.FormatLine(disasm.MakeLine(last))
    /* pad by the uncolored width so the register column lines up */
    plain := disasm.Options{Addresses: options.Addresses, Bytes: options.Bytes}.FormatLine(disasm.MakeLine(last))
    padding := ""
    if len(plain) < 32 {
        padding = strings.Repeat(" ", 32 - len(plain))
    }
    if options.Color {
        return line + padding + registerColor(registers(cpu))
    }
    return line + padding + registers(cpu)
}
