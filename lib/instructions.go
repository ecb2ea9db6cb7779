package lib

import (
    "bytes"
    "fmt"
    "sort"
    "strings"
    "sync"
)

/* opcode references
 * https://www.masswerk.at/6502/6502_instruction_set.html
 * http://www.6502.org/tutorials/6502opcodes.html
 * http://bbc.nvg.org/doc/6502OpList.txt
 *
 * only the 151 documented opcodes are defined. every other byte is a
 * decode error.
 */

type InstructionType byte

const (
    Instruction_BRK             InstructionType = 0x00
    Instruction_ORA_indirect_x  InstructionType = 0x01
    Instruction_ORA_zero        InstructionType = 0x05
    Instruction_ASL_zero        InstructionType = 0x06
    Instruction_PHP             InstructionType = 0x08
    Instruction_ORA_immediate   InstructionType = 0x09
    Instruction_ASL_accumulator InstructionType = 0x0a
    Instruction_ORA_absolute    InstructionType = 0x0d
    Instruction_ASL_absolute    InstructionType = 0x0e
    Instruction_BPL_relative    InstructionType = 0x10
    Instruction_ORA_indirect_y  InstructionType = 0x11
    Instruction_ORA_zero_x      InstructionType = 0x15
    Instruction_ASL_zero_x      InstructionType = 0x16
    Instruction_CLC             InstructionType = 0x18
    Instruction_ORA_absolute_y  InstructionType = 0x19
    Instruction_ORA_absolute_x  InstructionType = 0x1d
    Instruction_ASL_absolute_x  InstructionType = 0x1e
    Instruction_JSR_absolute    InstructionType = 0x20
    Instruction_AND_indirect_x  InstructionType = 0x21
    Instruction_BIT_zero        InstructionType = 0x24
    Instruction_AND_zero        InstructionType = 0x25
    Instruction_ROL_zero        InstructionType = 0x26
    Instruction_PLP             InstructionType = 0x28
    Instruction_AND_immediate   InstructionType = 0x29
    Instruction_ROL_accumulator InstructionType = 0x2a
    Instruction_BIT_absolute    InstructionType = 0x2c
    Instruction_AND_absolute    InstructionType = 0x2d
    Instruction_ROL_absolute    InstructionType = 0x2e
    Instruction_BMI_relative    InstructionType = 0x30
    Instruction_AND_indirect_y  InstructionType = 0x31
    Instruction_AND_zero_x      InstructionType = 0x35
    Instruction_ROL_zero_x      InstructionType = 0x36
    Instruction_SEC             InstructionType = 0x38
    Instruction_AND_absolute_y  InstructionType = 0x39
    Instruction_AND_absolute_x  InstructionType = 0x3d
    Instruction_ROL_absolute_x  InstructionType = 0x3e
    Instruction_RTI             InstructionType = 0x40
    Instruction_EOR_indirect_x  InstructionType = 0x41
    Instruction_EOR_zero        InstructionType = 0x45
    Instruction_LSR_zero        InstructionType = 0x46
    Instruction_PHA             InstructionType = 0x48
    Instruction_EOR_immediate   InstructionType = 0x49
    Instruction_LSR_accumulator InstructionType = 0x4a
    Instruction_JMP_absolute    InstructionType = 0x4c
    Instruction_EOR_absolute    InstructionType = 0x4d
    Instruction_LSR_absolute    InstructionType = 0x4e
    Instruction_BVC_relative    InstructionType = 0x50
    Instruction_EOR_indirect_y  InstructionType = 0x51
    Instruction_EOR_zero_x      InstructionType = 0x55
    Instruction_LSR_zero_x      InstructionType = 0x56
    Instruction_CLI             InstructionType = 0x58
    Instruction_EOR_absolute_y  InstructionType = 0x59
    Instruction_EOR_absolute_x  InstructionType = 0x5d
    Instruction_LSR_absolute_x  InstructionType = 0x5e
    Instruction_RTS             InstructionType = 0x60
    Instruction_ADC_indirect_x  InstructionType = 0x61
    Instruction_ADC_zero        InstructionType = 0x65
    Instruction_ROR_zero        InstructionType = 0x66
    Instruction_PLA             InstructionType = 0x68
    Instruction_ADC_immediate   InstructionType = 0x69
    Instruction_ROR_accumulator InstructionType = 0x6a
    Instruction_JMP_indirect    InstructionType = 0x6c
    Instruction_ADC_absolute    InstructionType = 0x6d
    Instruction_ROR_absolute    InstructionType = 0x6e
    Instruction_BVS_relative    InstructionType = 0x70
    Instruction_ADC_indirect_y  InstructionType = 0x71
    Instruction_ADC_zero_x      InstructionType = 0x75
    Instruction_ROR_zero_x      InstructionType = 0x76
    Instruction_SEI             InstructionType = 0x78
    Instruction_ADC_absolute_y  InstructionType = 0x79
    Instruction_ADC_absolute_x  InstructionType = 0x7d
    Instruction_ROR_absolute_x  InstructionType = 0x7e
    Instruction_STA_indirect_x  InstructionType = 0x81
    Instruction_STY_zero        InstructionType = 0x84
    Instruction_STA_zero        InstructionType = 0x85
    Instruction_STX_zero        InstructionType = 0x86
    Instruction_DEY             InstructionType = 0x88
    Instruction_TXA             InstructionType = 0x8a
    Instruction_STY_absolute    InstructionType = 0x8c
    Instruction_STA_absolute    InstructionType = 0x8d
    Instruction_STX_absolute    InstructionType = 0x8e
    Instruction_BCC_relative    InstructionType = 0x90
    Instruction_STA_indirect_y  InstructionType = 0x91
    Instruction_STY_zero_x      InstructionType = 0x94
    Instruction_STA_zero_x      InstructionType = 0x95
    Instruction_STX_zero_y      InstructionType = 0x96
    Instruction_TYA             InstructionType = 0x98
    Instruction_STA_absolute_y  InstructionType = 0x99
    Instruction_TXS             InstructionType = 0x9a
    Instruction_STA_absolute_x  InstructionType = 0x9d
    Instruction_LDY_immediate   InstructionType = 0xa0
    Instruction_LDA_indirect_x  InstructionType = 0xa1
    Instruction_LDX_immediate   InstructionType = 0xa2
    Instruction_LDY_zero        InstructionType = 0xa4
    Instruction_LDA_zero        InstructionType = 0xa5
    Instruction_LDX_zero        InstructionType = 0xa6
    Instruction_TAY             InstructionType = 0xa8
    Instruction_LDA_immediate   InstructionType = 0xa9
    Instruction_TAX             InstructionType = 0xaa
    Instruction_LDY_absolute    InstructionType = 0xac
    Instruction_LDA_absolute    InstructionType = 0xad
    Instruction_LDX_absolute    InstructionType = 0xae
    Instruction_BCS_relative    InstructionType = 0xb0
    Instruction_LDA_indirect_y  InstructionType = 0xb1
    Instruction_LDY_zero_x      InstructionType = 0xb4
    Instruction_LDA_zero_x      InstructionType = 0xb5
    Instruction_LDX_zero_y      InstructionType = 0xb6
    Instruction_CLV             InstructionType = 0xb8
    Instruction_LDA_absolute_y  InstructionType = 0xb9
    Instruction_TSX             InstructionType = 0xba
    Instruction_LDY_absolute_x  InstructionType = 0xbc
    Instruction_LDA_absolute_x  InstructionType = 0xbd
    Instruction_LDX_absolute_y  InstructionType = 0xbe
    Instruction_CPY_immediate   InstructionType = 0xc0
    Instruction_CMP_indirect_x  InstructionType = 0xc1
    Instruction_CPY_zero        InstructionType = 0xc4
    Instruction_CMP_zero        InstructionType = 0xc5
    Instruction_DEC_zero        InstructionType = 0xc6
    Instruction_INY             InstructionType = 0xc8
    Instruction_CMP_immediate   InstructionType = 0xc9
    Instruction_DEX             InstructionType = 0xca
    Instruction_CPY_absolute    InstructionType = 0xcc
    Instruction_CMP_absolute    InstructionType = 0xcd
    Instruction_DEC_absolute    InstructionType = 0xce
    Instruction_BNE_relative    InstructionType = 0xd0
    Instruction_CMP_indirect_y  InstructionType = 0xd1
    Instruction_CMP_zero_x      InstructionType = 0xd5
    Instruction_DEC_zero_x      InstructionType = 0xd6
    Instruction_CLD             InstructionType = 0xd8
    Instruction_CMP_absolute_y  InstructionType = 0xd9
    Instruction_CMP_absolute_x  InstructionType = 0xdd
    Instruction_DEC_absolute_x  InstructionType = 0xde
    Instruction_CPX_immediate   InstructionType = 0xe0
    Instruction_SBC_indirect_x  InstructionType = 0xe1
    Instruction_CPX_zero        InstructionType = 0xe4
    Instruction_SBC_zero        InstructionType = 0xe5
    Instruction_INC_zero        InstructionType = 0xe6
    Instruction_INX             InstructionType = 0xe8
    Instruction_SBC_immediate   InstructionType = 0xe9
    Instruction_NOP             InstructionType = 0xea
    Instruction_CPX_absolute    InstructionType = 0xec
    Instruction_SBC_absolute    InstructionType = 0xed
    Instruction_INC_absolute    InstructionType = 0xee
    Instruction_BEQ_relative    InstructionType = 0xf0
    Instruction_SBC_indirect_y  InstructionType = 0xf1
    Instruction_SBC_zero_x      InstructionType = 0xf5
    Instruction_INC_zero_x      InstructionType = 0xf6
    Instruction_SED             InstructionType = 0xf8
    Instruction_SBC_absolute_y  InstructionType = 0xf9
    Instruction_SBC_absolute_x  InstructionType = 0xfd
    Instruction_INC_absolute_x  InstructionType = 0xfe
)

/* executes one decoded instruction. the operand has already been resolved
 * and cpu.PC already points at the next instruction.
 */
type Operation func(cpu *CPUState, operand Operand)

type InstructionDescription struct {
    Name string
    Kind InstructionType
    Mode AddressingMode
    /* number of bytes following the opcode */
    Operands byte
    execute Operation
}

func (description InstructionDescription) Valid() bool {
    return description.execute != nil
}

func (description InstructionDescription) Length() uint16 {
    return 1 + uint16(description.Operands)
}

/* a decoded instruction, as read out of memory or a byte stream */
type Instruction struct {
    Name string
    Kind InstructionType
    Mode AddressingMode
    /* where the opcode byte was read from */
    Address uint16
    Operands [2]byte
    Size byte
}

func (instruction *Instruction) Equals(other Instruction) bool {
    return instruction.Name == other.Name &&
           instruction.Kind == other.Kind &&
           instruction.Size == other.Size &&
           instruction.Operands == other.Operands
}

func (instruction *Instruction) Length() uint16 {
    return 1 + uint16(instruction.Size)
}

func (instruction *Instruction) OperandByte() byte {
    return instruction.Operands[0]
}

func (instruction *Instruction) OperandWord() uint16 {
    high := instruction.Operands[1]
    low := instruction.Operands[0]
    return (uint16(high) << 8) | uint16(low)
}

/* the raw bytes of the instruction, opcode first */
func (instruction *Instruction) Bytes() []byte {
    out := []byte{byte(instruction.Kind)}
    return append(out, instruction.Operands[:instruction.Size]...)
}

func (instruction *Instruction) String() string {
    var out bytes.Buffer
    out.WriteString(fmt.Sprintf("%02X ", byte(instruction.Kind)))
    out.WriteString(instruction.Name)
    for _, operand := range instruction.Operands[:instruction.Size] {
        out.WriteRune(' ')
        out.WriteString(fmt.Sprintf("0x%x", operand))
    }
    return out.String()
}

/* indexed directly by opcode byte. built once and shared read-only by the
 * cpu, the assembler and the disassembler.
 */
type InstructionTable struct {
    descriptions [256]InstructionDescription
    encode map[string]map[AddressingMode]InstructionType
}

func (table *InstructionTable) add(kind InstructionType, name string, mode AddressingMode, execute Operation){
    if table.descriptions[kind].Valid() {
        panic(fmt.Sprintf("internal error: opcode 0x%02x defined twice (%v and %v)", byte(kind), table.descriptions[kind].Name, name))
    }

    table.descriptions[kind] = InstructionDescription{
        Name: name,
        Kind: kind,
        Mode: mode,
        Operands: mode.OperandLength(),
        execute: execute,
    }

    modes, ok := table.encode[name]
    if !ok {
        modes = make(map[AddressingMode]InstructionType)
        table.encode[name] = modes
    }
    modes[mode] = kind
}

func (table *InstructionTable) Lookup(kind InstructionType) (InstructionDescription, bool) {
    description := table.descriptions[kind]
    return description, description.Valid()
}

/* find the opcode for a mnemonic in a given addressing mode. the mnemonic
 * is matched case insensitively.
 */
func (table *InstructionTable) Encode(name string, mode AddressingMode) (InstructionType, bool) {
    modes, ok := table.encode[strings.ToLower(name)]
    if !ok {
        return 0, false
    }
    kind, ok := modes[mode]
    return kind, ok
}

func (table *InstructionTable) HasMnemonic(name string) bool {
    _, ok := table.encode[strings.ToLower(name)]
    return ok
}

/* the addressing modes a mnemonic supports */
func (table *InstructionTable) Modes(name string) []AddressingMode {
    var out []AddressingMode
    for mode := range table.encode[strings.ToLower(name)] {
        out = append(out, mode)
    }
    sort.Slice(out, func(i int, j int) bool {
        return out[i] < out[j]
    })
    return out
}

/* all the defined instructions in opcode order */
func (table *InstructionTable) All() []InstructionDescription {
    var out []InstructionDescription
    for _, description := range table.descriptions {
        if description.Valid() {
            out = append(out, description)
        }
    }
    return out
}

var instructionTable *InstructionTable
var instructionTableOnce sync.Once

/* returns the shared instruction table, building it on first use */
func MakeInstructionTable() *InstructionTable {
    instructionTableOnce.Do(func(){
        instructionTable = buildInstructionTable()
    })
    return instructionTable
}

func buildInstructionTable() *InstructionTable {
    table := &InstructionTable{
        encode: make(map[string]map[AddressingMode]InstructionType),
    }

    table.add(Instruction_ADC_immediate, "adc", ModeImmediate, doAdc)
    table.add(Instruction_ADC_zero, "adc", ModeZeroPage, doAdc)
    table.add(Instruction_ADC_zero_x, "adc", ModeZeroPageX, doAdc)
    table.add(Instruction_ADC_absolute, "adc", ModeAbsolute, doAdc)
    table.add(Instruction_ADC_absolute_x, "adc", ModeAbsoluteX, doAdc)
    table.add(Instruction_ADC_absolute_y, "adc", ModeAbsoluteY, doAdc)
    table.add(Instruction_ADC_indirect_x, "adc", ModeIndirectX, doAdc)
    table.add(Instruction_ADC_indirect_y, "adc", ModeIndirectY, doAdc)

    table.add(Instruction_AND_immediate, "and", ModeImmediate, doAnd)
    table.add(Instruction_AND_zero, "and", ModeZeroPage, doAnd)
    table.add(Instruction_AND_zero_x, "and", ModeZeroPageX, doAnd)
    table.add(Instruction_AND_absolute, "and", ModeAbsolute, doAnd)
    table.add(Instruction_AND_absolute_x, "and", ModeAbsoluteX, doAnd)
    table.add(Instruction_AND_absolute_y, "and", ModeAbsoluteY, doAnd)
    table.add(Instruction_AND_indirect_x, "and", ModeIndirectX, doAnd)
    table.add(Instruction_AND_indirect_y, "and", ModeIndirectY, doAnd)

    table.add(Instruction_ASL_accumulator, "asl", ModeAccumulator, doAsl)
    table.add(Instruction_ASL_zero, "asl", ModeZeroPage, doAsl)
    table.add(Instruction_ASL_zero_x, "asl", ModeZeroPageX, doAsl)
    table.add(Instruction_ASL_absolute, "asl", ModeAbsolute, doAsl)
    table.add(Instruction_ASL_absolute_x, "asl", ModeAbsoluteX, doAsl)

    table.add(Instruction_BCC_relative, "bcc", ModeRelative, doBcc)

    table.add(Instruction_BCS_relative, "bcs", ModeRelative, doBcs)

    table.add(Instruction_BEQ_relative, "beq", ModeRelative, doBeq)

    table.add(Instruction_BIT_zero, "bit", ModeZeroPage, doBit)
    table.add(Instruction_BIT_absolute, "bit", ModeAbsolute, doBit)

    table.add(Instruction_BMI_relative, "bmi", ModeRelative, doBmi)

    table.add(Instruction_BNE_relative, "bne", ModeRelative, doBne)

    table.add(Instruction_BPL_relative, "bpl", ModeRelative, doBpl)

    table.add(Instruction_BRK, "brk", ModeImplicit, doBrk)

    table.add(Instruction_BVC_relative, "bvc", ModeRelative, doBvc)

    table.add(Instruction_BVS_relative, "bvs", ModeRelative, doBvs)

    table.add(Instruction_CLC, "clc", ModeImplicit, doClc)

    table.add(Instruction_CLD, "cld", ModeImplicit, doCld)

    table.add(Instruction_CLI, "cli", ModeImplicit, doCli)

    table.add(Instruction_CLV, "clv", ModeImplicit, doClv)

    table.add(Instruction_CMP_immediate, "cmp", ModeImmediate, doCmp)
    table.add(Instruction_CMP_zero, "cmp", ModeZeroPage, doCmp)
    table.add(Instruction_CMP_zero_x, "cmp", ModeZeroPageX, doCmp)
    table.add(Instruction_CMP_absolute, "cmp", ModeAbsolute, doCmp)
    table.add(Instruction_CMP_absolute_x, "cmp", ModeAbsoluteX, doCmp)
    table.add(Instruction_CMP_absolute_y, "cmp", ModeAbsoluteY, doCmp)
    table.add(Instruction_CMP_indirect_x, "cmp", ModeIndirectX, doCmp)
    table.add(Instruction_CMP_indirect_y, "cmp", ModeIndirectY, doCmp)

    table.add(Instruction_CPX_immediate, "cpx", ModeImmediate, doCpx)
    table.add(Instruction_CPX_zero, "cpx", ModeZeroPage, doCpx)
    table.add(Instruction_CPX_absolute, "cpx", ModeAbsolute, doCpx)

    table.add(Instruction_CPY_immediate, "cpy", ModeImmediate, doCpy)
    table.add(Instruction_CPY_zero, "cpy", ModeZeroPage, doCpy)
    table.add(Instruction_CPY_absolute, "cpy", ModeAbsolute, doCpy)

    table.add(Instruction_DEC_zero, "dec", ModeZeroPage, doDec)
    table.add(Instruction_DEC_zero_x, "dec", ModeZeroPageX, doDec)
    table.add(Instruction_DEC_absolute, "dec", ModeAbsolute, doDec)
    table.add(Instruction_DEC_absolute_x, "dec", ModeAbsoluteX, doDec)

    table.add(Instruction_DEX, "dex", ModeImplicit, doDex)

    table.add(Instruction_DEY, "dey", ModeImplicit, doDey)

    table.add(Instruction_EOR_immediate, "eor", ModeImmediate, doEor)
    table.add(Instruction_EOR_zero, "eor", ModeZeroPage, doEor)
    table.add(Instruction_EOR_zero_x, "eor", ModeZeroPageX, doEor)
    table.add(Instruction_EOR_absolute, "eor", ModeAbsolute, doEor)
    table.add(Instruction_EOR_absolute_x, "eor", ModeAbsoluteX, doEor)
    table.add(Instruction_EOR_absolute_y, "eor", ModeAbsoluteY, doEor)
    table.add(Instruction_EOR_indirect_x, "eor", ModeIndirectX, doEor)
    table.add(Instruction_EOR_indirect_y, "eor", ModeIndirectY, doEor)

    table.add(Instruction_INC_zero, "inc", ModeZeroPage, doInc)
    table.add(Instruction_INC_zero_x, "inc", ModeZeroPageX, doInc)
    table.add(Instruction_INC_absolute, "inc", ModeAbsolute, doInc)
    table.add(Instruction_INC_absolute_x, "inc", ModeAbsoluteX, doInc)

    table.add(Instruction_INX, "inx", ModeImplicit, doInx)

    table.add(Instruction_INY, "iny", ModeImplicit, doIny)

    table.add(Instruction_JMP_absolute, "jmp", ModeAbsolute, doJmp)
    table.add(Instruction_JMP_indirect, "jmp", ModeIndirect, doJmp)

    table.add(Instruction_JSR_absolute, "jsr", ModeAbsolute, doJsr)

    table.add(Instruction_LDA_immediate, "lda", ModeImmediate, doLda)
    table.add(Instruction_LDA_zero, "lda", ModeZeroPage, doLda)
    table.add(Instruction_LDA_zero_x, "lda", ModeZeroPageX, doLda)
    table.add(Instruction_LDA_absolute, "lda", ModeAbsolute, doLda)
    table.add(Instruction_LDA_absolute_x, "lda", ModeAbsoluteX, doLda)
    table.add(Instruction_LDA_absolute_y, "lda", ModeAbsoluteY, doLda)
    table.add(Instruction_LDA_indirect_x, "lda", ModeIndirectX, doLda)
    table.add(Instruction_LDA_indirect_y, "lda", ModeIndirectY, doLda)

    table.add(Instruction_LDX_immediate, "ldx", ModeImmediate, doLdx)
    table.add(Instruction_LDX_zero, "ldx", ModeZeroPage, doLdx)
    table.add(Instruction_LDX_zero_y, "ldx", ModeZeroPageY, doLdx)
    table.add(Instruction_LDX_absolute, "ldx", ModeAbsolute, doLdx)
    table.add(Instruction_LDX_absolute_y, "ldx", ModeAbsoluteY, doLdx)

    table.add(Instruction_LDY_immediate, "ldy", ModeImmediate, doLdy)
    table.add(Instruction_LDY_zero, "ldy", ModeZeroPage, doLdy)
    table.add(Instruction_LDY_zero_x, "ldy", ModeZeroPageX, doLdy)
    table.add(Instruction_LDY_absolute, "ldy", ModeAbsolute, doLdy)
    table.add(Instruction_LDY_absolute_x, "ldy", ModeAbsoluteX, doLdy)

    table.add(Instruction_LSR_accumulator, "lsr", ModeAccumulator, doLsr)
    table.add(Instruction_LSR_zero, "lsr", ModeZeroPage, doLsr)
    table.add(Instruction_LSR_zero_x, "lsr", ModeZeroPageX, doLsr)
    table.add(Instruction_LSR_absolute, "lsr", ModeAbsolute, doLsr)
    table.add(Instruction_LSR_absolute_x, "lsr", ModeAbsoluteX, doLsr)

    table.add(Instruction_NOP, "nop", ModeImplicit, doNop)

    table.add(Instruction_ORA_immediate, "ora", ModeImmediate, doOra)
    table.add(Instruction_ORA_zero, "ora", ModeZeroPage, doOra)
    table.add(Instruction_ORA_zero_x, "ora", ModeZeroPageX, doOra)
    table.add(Instruction_ORA_absolute, "ora", ModeAbsolute, doOra)
    table.add(Instruction_ORA_absolute_x, "ora", ModeAbsoluteX, doOra)
    table.add(Instruction_ORA_absolute_y, "ora", ModeAbsoluteY, doOra)
    table.add(Instruction_ORA_indirect_x, "ora", ModeIndirectX, doOra)
    table.add(Instruction_ORA_indirect_y, "ora", ModeIndirectY, doOra)

    table.add(Instruction_PHA, "pha", ModeImplicit, doPha)

    table.add(Instruction_PHP, "php", ModeImplicit, doPhp)

    table.add(Instruction_PLA, "pla", ModeImplicit, doPla)

    table.add(Instruction_PLP, "plp", ModeImplicit, doPlp)

    table.add(Instruction_ROL_accumulator, "rol", ModeAccumulator, doRol)
    table.add(Instruction_ROL_zero, "rol", ModeZeroPage, doRol)
    table.add(Instruction_ROL_zero_x, "rol", ModeZeroPageX, doRol)
    table.add(Instruction_ROL_absolute, "rol", ModeAbsolute, doRol)
    table.add(Instruction_ROL_absolute_x, "rol", ModeAbsoluteX, doRol)

    table.add(Instruction_ROR_accumulator, "ror", ModeAccumulator, doRor)
    table.add(Instruction_ROR_zero, "ror", ModeZeroPage, doRor)
    table.add(Instruction_ROR_zero_x, "ror", ModeZeroPageX, doRor)
    table.add(Instruction_ROR_absolute, "ror", ModeAbsolute, doRor)
    table.add(Instruction_ROR_absolute_x, "ror", ModeAbsoluteX, doRor)

    table.add(Instruction_RTI, "rti", ModeImplicit, doRti)

    table.add(Instruction_RTS, "rts", ModeImplicit, doRts)

    table.add(Instruction_SBC_immediate, "sbc", ModeImmediate, doSbc)
    table.add(Instruction_SBC_zero, "sbc", ModeZeroPage, doSbc)
    table.add(Instruction_SBC_zero_x, "sbc", ModeZeroPageX, doSbc)
    table.add(Instruction_SBC_absolute, "sbc", ModeAbsolute, doSbc)
    table.add(Instruction_SBC_absolute_x, "sbc", ModeAbsoluteX, doSbc)
    table.add(Instruction_SBC_absolute_y, "sbc", ModeAbsoluteY, doSbc)
    table.add(Instruction_SBC_indirect_x, "sbc", ModeIndirectX, doSbc)
    table.add(Instruction_SBC_indirect_y, "sbc", ModeIndirectY, doSbc)

    table.add(Instruction_SEC, "sec", ModeImplicit, doSec)

    table.add(Instruction_SED, "sed", ModeImplicit, doSed)

    table.add(Instruction_SEI, "sei", ModeImplicit, doSei)

    table.add(Instruction_STA_zero, "sta", ModeZeroPage, doSta)
    table.add(Instruction_STA_zero_x, "sta", ModeZeroPageX, doSta)
    table.add(Instruction_STA_absolute, "sta", ModeAbsolute, doSta)
    table.add(Instruction_STA_absolute_x, "sta", ModeAbsoluteX, doSta)
    table.add(Instruction_STA_absolute_y, "sta", ModeAbsoluteY, doSta)
    table.add(Instruction_STA_indirect_x, "sta", ModeIndirectX, doSta)
    table.add(Instruction_STA_indirect_y, "sta", ModeIndirectY, doSta)

    table.add(Instruction_STX_zero, "stx", ModeZeroPage, doStx)
    table.add(Instruction_STX_zero_y, "stx", ModeZeroPageY, doStx)
    table.add(Instruction_STX_absolute, "stx", ModeAbsolute, doStx)

    table.add(Instruction_STY_zero, "sty", ModeZeroPage, doSty)
    table.add(Instruction_STY_zero_x, "sty", ModeZeroPageX, doSty)
    table.add(Instruction_STY_absolute, "sty", ModeAbsolute, doSty)

    table.add(Instruction_TAX, "tax", ModeImplicit, doTax)

    table.add(Instruction_TAY, "tay", ModeImplicit, doTay)

    table.add(Instruction_TSX, "tsx", ModeImplicit, doTsx)

    table.add(Instruction_TXA, "txa", ModeImplicit, doTxa)

    table.add(Instruction_TXS, "txs", ModeImplicit, doTxs)

    table.add(Instruction_TYA, "tya", ModeImplicit, doTya)

    /* make sure I don't do something dumb */
    for _, description := range table.All() {
        if description.Operands > 2 {
            panic(fmt.Sprintf("internal error: operands cannot be more than 2 for instruction %v: %v", description.Kind, description.Name))
        }
    }

    return table
}
