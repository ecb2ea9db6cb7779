package programs

import (
    "fmt"
    "log"

    "github.com/kazzmir/m6502/asm"
    "github.com/kazzmir/m6502/lib"
    test_utils "github.com/kazzmir/m6502/test/all-test/utils"
)

/* Self checking 6502 programs. Each one starts by clearing ResultAddress,
 * jumps to PASS when every check holds and to FAIL otherwise. PASS writes
 * a 1 to ResultAddress, FAIL writes 0xff, and both end in a jmp to
 * themselves which stops the run.
 */

const ResultAddress = 0xf8
const Origin = 0x0600

/* no program needs anywhere near this many */
const maxSteps = 100000

const header = `
RESULT = $F8
        LDA #$00
        STA RESULT
`

const footer = `
PASS    LDA #$01
        STA RESULT
DONE    JMP DONE
FAIL    LDA #$FF
        STA RESULT
FAILED  JMP FAILED
`

type Program struct {
    Name string
    Source string
}

var Branches = Program{
    Name: "branches",
    Source: `
        LDA #$00
        BNE BAD1
        BEQ OK1
BAD1    JMP FAIL
OK1     LDA #$01
        BEQ BAD2
        BNE OK2
BAD2    JMP FAIL
OK2     SEC
        BCC BAD3
        BCS OK3
BAD3    JMP FAIL
OK3     CLC
        BCS BAD4
        BCC OK4
BAD4    JMP FAIL
OK4     LDA #$80
        BPL BAD5
        BMI OK5
BAD5    JMP FAIL
OK5     LDA #$7F
        BMI BAD6
        BPL OK6
BAD6    JMP FAIL
OK6     LDA #$40
        ADC #$40
        BVC BAD7
        BVS OK7
BAD7    JMP FAIL
OK7     CLV
        BVS BAD8
        BVC OK8
BAD8    JMP FAIL
OK8     LDX #$05
LOOP    DEX
        BNE LOOP
        CPX #$00
        BNE BAD9
        JMP PASS
BAD9    JMP FAIL
`,
}

var Stack = Program{
    Name: "stack",
    Source: `
        LDX #$FF
        TXS
        LDA #$11
        PHA
        LDA #$22
        PHA
        TSX
        CPX #$FD
        BEQ S1
        JMP FAIL
S1      PLA
        CMP #$22
        BEQ S2
        JMP FAIL
S2      PLA
        CMP #$11
        BEQ S3
        JMP FAIL
S3      SEC
        SED
        PHP
        CLC
        CLD
        PLA
        AND #$09
        CMP #$09
        BEQ S4
        JMP FAIL
S4      JSR SUB
        CPY #$42
        BEQ S5
        JMP FAIL
S5      TSX
        CPX #$FF
        BEQ S6
        JMP FAIL
S6      JMP PASS
SUB     LDY #$42
        RTS
`,
}

var Decimal = Program{
    Name: "decimal",
    Source: `
        SED
        CLC
        LDA #$58
        ADC #$46
        BCS D1
        JMP FAIL
D1      CMP #$04
        BEQ D2
        JMP FAIL
D2      SEC
        LDA #$12
        SBC #$21
        BCC D3
        JMP FAIL
D3      CMP #$91
        BEQ D4
        JMP FAIL
D4      CLC
        LDA #$99
        ADC #$01
        BCS D5
        JMP FAIL
D5      CMP #$00
        BEQ D6
        JMP FAIL
D6      CLD
        JMP PASS
`,
}

var Indirect = Program{
    Name: "indirect",
    Source: `
PTR = $10
        LDA #$00
        STA PTR
        LDA #$03
        STA PTR+1
        LDY #$05
        LDA #$AB
        STA (PTR),Y
        LDA $0305
        CMP #$AB
        BEQ I1
        JMP FAIL
I1      LDX #$04
        LDA #$05
        STA PTR+4
        LDA #$03
        STA PTR+5
        LDA #$00
        LDA (PTR,X)
        CMP #$AB
        BEQ I2
        JMP FAIL
; the pointer at $02FF takes its high byte from $0200, not $0300
I2      LDA #<TARGET
        STA $02FF
        LDA #>TARGET
        STA $0200
        LDA #$00
        STA $0300
        JMP ($02FF)
TARGET  JMP PASS
`,
}

var Shifts = Program{
    Name: "shifts",
    Source: `
        LDA #$81
        ASL A
        BCS H1
        JMP FAIL
H1      CMP #$02
        BEQ H2
        JMP FAIL
H2      ROR A
        BCC H3
        JMP FAIL
H3      CMP #$81
        BEQ H4
        JMP FAIL
H4      LSR A
        BCS H5
        JMP FAIL
H5      CMP #$40
        BEQ H6
        JMP FAIL
H6      JMP PASS
`,
}

var Interrupt = Program{
    Name: "brk",
    Source: `
        LDA #<HANDLER
        STA $FFFE
        LDA #>HANDLER
        STA $FFFF
        LDX #$00
        BRK
        .BYTE $EA
        CPX #$01
        BEQ K1
        JMP FAIL
K1      JMP PASS
HANDLER INX
        PLA
        PHA
        AND #$10
        BNE K2
        JMP FAIL
K2      RTI
`,
}

var All = []Program{Branches, Stack, Decimal, Indirect, Shifts, Interrupt}

/* assemble and run one program, true if it wrote 1 to ResultAddress */
func doTest(program Program, debug bool) (bool, error) {
    assembled, err := asm.Assemble(header + program.Source + footer, Origin)
    if err != nil {
        return false, fmt.Errorf("%v: %w", program.Name, err)
    }

    cpu, err := lib.NewCPU(Origin, assembled.Segments...)
    if err != nil {
        return false, err
    }

    if debug {
        cpu.Debug = 1
    }

    _, err = cpu.Run(maxSteps, lib.StopOnTrap())
    if err != nil {
        return false, fmt.Errorf("%v: %w", program.Name, err)
    }

    return cpu.LoadMemory(ResultAddress) == 1, nil
}

func Run(debug bool) (bool, error) {
    all := true
    for _, program := range All {
        ok, err := doTest(program, debug)
        if err != nil {
            return false, err
        }

        log.Print(test_utils.Result(fmt.Sprintf("Program %v", program.Name), ok))
        all = all && ok
    }

    return all, nil
}
