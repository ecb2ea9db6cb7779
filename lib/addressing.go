package lib

/* https://www.masswerk.at/6502/6502_instruction_set.html
 * A = accumulator
 * abs = absolute
 * # = immediate
 * impl = implied
 * ind = indirect
 * rel = relative
 * zpg = zeropage
 */

type AddressingMode int

const (
    ModeImplicit AddressingMode = iota
    ModeAccumulator
    ModeImmediate
    ModeZeroPage
    ModeZeroPageX
    ModeZeroPageY
    ModeRelative
    ModeAbsolute
    ModeAbsoluteX
    ModeAbsoluteY
    ModeIndirect
    ModeIndirectX
    ModeIndirectY
)

func AllAddressingModes() []AddressingMode {
    return []AddressingMode{ModeImplicit, ModeAccumulator, ModeImmediate,
                            ModeZeroPage, ModeZeroPageX, ModeZeroPageY,
                            ModeRelative, ModeAbsolute, ModeAbsoluteX,
                            ModeAbsoluteY, ModeIndirect, ModeIndirectX,
                            ModeIndirectY}
}

/* number of bytes that follow the opcode */
func (mode AddressingMode) OperandLength() byte {
    switch mode {
        case ModeImplicit, ModeAccumulator:
            return 0
        case ModeImmediate, ModeZeroPage, ModeZeroPageX, ModeZeroPageY,
             ModeRelative, ModeIndirectX, ModeIndirectY:
            return 1
        case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect:
            return 2
    }

    return 0
}

func (mode AddressingMode) String() string {
    switch mode {
        case ModeImplicit: return "implied"
        case ModeAccumulator: return "accumulator"
        case ModeImmediate: return "immediate"
        case ModeZeroPage: return "zero"
        case ModeZeroPageX: return "zero,x"
        case ModeZeroPageY: return "zero,y"
        case ModeRelative: return "relative"
        case ModeAbsolute: return "absolute"
        case ModeAbsoluteX: return "absolute,x"
        case ModeAbsoluteY: return "absolute,y"
        case ModeIndirect: return "indirect"
        case ModeIndirectX: return "(indirect,x)"
        case ModeIndirectY: return "(indirect),y"
    }
    return "unknown"
}

type OperandKind int

const (
    OperandNone OperandKind = iota
    OperandAccumulator
    OperandImmediate
    OperandAddress
)

/* the result of resolving an addressing mode. for OperandImmediate the
 * value is in Value, for OperandAddress the effective address is in Address.
 */
type Operand struct {
    Kind OperandKind
    Address uint16
    Value byte
    /* the indexed address landed on a different page than its base. the
     * real chip spends an extra cycle here, we only report it.
     */
    PageCrossed bool
}

/* index wraps within page 0, so 0xff + 2 is 0x01, not 0x101 */
func ComputeZeroPageIndexed(zero byte, index byte) uint16 {
    return uint16(zero + index)
}

/* returns a new address and whether a page boundary was crossed */
func ComputeAbsoluteIndexed(address uint16, index byte) (uint16, bool) {
    full := address + uint16(index)
    return full, (full >> 8) != (address >> 8)
}

/* pc is the address of the instruction following the branch */
func ComputeRelative(pc uint16, offset byte) uint16 {
    return pc + uint16(int16(int8(offset)))
}

/* jmp ($xxff) reads the high byte from $xx00, not from the next page.
 * this reproduces the nmos indirect jump bug.
 */
func (cpu *CPUState) ComputeIndirect(pointer uint16) uint16 {
    low := uint16(cpu.LoadMemory(pointer))
    highAddress := (pointer & 0xff00) | uint16(byte(pointer) + 1)
    high := uint16(cpu.LoadMemory(highAddress))
    return (high << 8) | low
}

/* returns a new address and whether a page boundary was crossed */
func (cpu *CPUState) ComputeIndirectY(relative byte) (uint16, bool) {
    /* Load two values from the zero page at (relative, relative+1)
     * Then construct a new address where low=(relative) and high=(relative+1)
     * Then add cpu.Y to the new address
     */
    low := uint16(cpu.LoadMemory(uint16(relative)))
    /* keeping 'relative' as a byte ensures wrap around works correctly */
    high := uint16(cpu.LoadMemory(uint16(relative + 1)))
    address := (high << 8) | low

    return ComputeAbsoluteIndexed(address, cpu.Y)
}

func (cpu *CPUState) ComputeIndirectX(relative byte) uint16 {
    zero := relative + cpu.X
    /* Load the two bytes at address $(relative+X) to
     * construct a 16-bit address. both reads stay in the zero page.
     */
    low := cpu.LoadMemory(uint16(zero))
    high := cpu.LoadMemory(uint16(zero + 1))

    return (uint16(high) << 8) | uint16(low)
}

/* compute the effective operand for an instruction. cpu.PC must already
 * point past the instruction so relative targets come out right.
 */
func (cpu *CPUState) ResolveOperand(mode AddressingMode, instruction Instruction) Operand {
    switch mode {
        case ModeImplicit:
            return Operand{Kind: OperandNone}
        case ModeAccumulator:
            return Operand{Kind: OperandAccumulator}
        case ModeImmediate:
            return Operand{Kind: OperandImmediate, Value: instruction.Operands[0]}
        case ModeZeroPage:
            return Operand{Kind: OperandAddress, Address: uint16(instruction.Operands[0])}
        case ModeZeroPageX:
            return Operand{Kind: OperandAddress, Address: ComputeZeroPageIndexed(instruction.Operands[0], cpu.X)}
        case ModeZeroPageY:
            return Operand{Kind: OperandAddress, Address: ComputeZeroPageIndexed(instruction.Operands[0], cpu.Y)}
        case ModeRelative:
            return Operand{Kind: OperandAddress, Address: ComputeRelative(cpu.PC, instruction.Operands[0])}
        case ModeAbsolute:
            return Operand{Kind: OperandAddress, Address: instruction.OperandWord()}
        case ModeAbsoluteX:
            address, pageCross := ComputeAbsoluteIndexed(instruction.OperandWord(), cpu.X)
            return Operand{Kind: OperandAddress, Address: address, PageCrossed: pageCross}
        case ModeAbsoluteY:
            address, pageCross := ComputeAbsoluteIndexed(instruction.OperandWord(), cpu.Y)
            return Operand{Kind: OperandAddress, Address: address, PageCrossed: pageCross}
        case ModeIndirect:
            return Operand{Kind: OperandAddress, Address: cpu.ComputeIndirect(instruction.OperandWord())}
        case ModeIndirectX:
            return Operand{Kind: OperandAddress, Address: cpu.ComputeIndirectX(instruction.Operands[0])}
        case ModeIndirectY:
            address, pageCross := cpu.ComputeIndirectY(instruction.Operands[0])
            return Operand{Kind: OperandAddress, Address: address, PageCrossed: pageCross}
    }

    return Operand{Kind: OperandNone}
}
