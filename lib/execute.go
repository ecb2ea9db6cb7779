package lib

/* instruction semantics. each operation receives the operand already
 * resolved by the addressing mode, and PC already points at the next
 * instruction.
 */

/* the byte an instruction reads: the immediate value, the accumulator or
 * the byte at the effective address
 */
func (cpu *CPUState) operandValue(operand Operand) byte {
    switch operand.Kind {
        case OperandImmediate:
            return operand.Value
        case OperandAccumulator:
            return cpu.A
        case OperandAddress:
            return cpu.LoadMemory(operand.Address)
    }
    return 0
}

/* write back for the read-modify-write instructions */
func (cpu *CPUState) storeOperand(operand Operand, value byte){
    switch operand.Kind {
        case OperandAccumulator:
            cpu.A = value
        case OperandAddress:
            cpu.StoreMemory(operand.Address, value)
    }
}

func (cpu *CPUState) loadA(value byte){
    cpu.A = value
    cpu.setZeroNegative(value)
}

func (cpu *CPUState) loadX(value byte){
    cpu.X = value
    cpu.setZeroNegative(value)
}

func (cpu *CPUState) loadY(value byte){
    cpu.Y = value
    cpu.setZeroNegative(value)
}

func (cpu *CPUState) applyArithmetic(result ArithmeticResult){
    cpu.A = result.Value
    cpu.SetCarryFlag(result.Carry)
    cpu.SetOverflowFlag(result.Overflow)
    cpu.SetZeroFlag(result.Zero)
    cpu.SetNegativeFlag(result.Negative)
}

func (cpu *CPUState) doCompare(register byte, operand Operand){
    result := Compare(register, cpu.operandValue(operand))
    cpu.SetCarryFlag(result.Carry)
    cpu.SetZeroFlag(result.Zero)
    cpu.SetNegativeFlag(result.Negative)
}

func (cpu *CPUState) doBranch(taken bool, operand Operand){
    if taken {
        cpu.PC = operand.Address
    }
}

func doAdc(cpu *CPUState, operand Operand){
    cpu.applyArithmetic(AddWithCarry(cpu.A, cpu.operandValue(operand), cpu.GetCarryFlag(), cpu.GetDecimalFlag()))
}

func doSbc(cpu *CPUState, operand Operand){
    cpu.applyArithmetic(SubtractWithCarry(cpu.A, cpu.operandValue(operand), cpu.GetCarryFlag(), cpu.GetDecimalFlag()))
}

func doAnd(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.A & cpu.operandValue(operand))
}

func doOra(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.A | cpu.operandValue(operand))
}

func doEor(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.A ^ cpu.operandValue(operand))
}

func doAsl(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand)
    cpu.SetCarryFlag(value & 0x80 == 0x80)
    value = value << 1
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

func doLsr(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand)
    cpu.SetCarryFlag(value & 0x1 == 0x1)
    value = value >> 1
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

func doRol(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand)
    var carryBit byte
    if cpu.GetCarryFlag() {
        carryBit = 1
    }
    cpu.SetCarryFlag(value & 0x80 == 0x80)
    value = (value << 1) | carryBit
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

func doRor(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand)
    var carryBit byte
    if cpu.GetCarryFlag() {
        carryBit = 0x80
    }
    cpu.SetCarryFlag(value & 0x1 == 0x1)
    value = (value >> 1) | carryBit
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

/* N and V are copied from bits 7 and 6 of memory, Z from A & memory */
func doBit(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand)
    cpu.SetZeroFlag(cpu.A & value == 0)
    cpu.SetNegativeFlag(value & FlagNegative == FlagNegative)
    cpu.SetOverflowFlag(value & FlagOverflow == FlagOverflow)
}

func doBcc(cpu *CPUState, operand Operand){
    cpu.doBranch(!cpu.GetCarryFlag(), operand)
}

func doBcs(cpu *CPUState, operand Operand){
    cpu.doBranch(cpu.GetCarryFlag(), operand)
}

func doBeq(cpu *CPUState, operand Operand){
    cpu.doBranch(cpu.GetZeroFlag(), operand)
}

func doBne(cpu *CPUState, operand Operand){
    cpu.doBranch(!cpu.GetZeroFlag(), operand)
}

func doBmi(cpu *CPUState, operand Operand){
    cpu.doBranch(cpu.GetNegativeFlag(), operand)
}

func doBpl(cpu *CPUState, operand Operand){
    cpu.doBranch(!cpu.GetNegativeFlag(), operand)
}

func doBvc(cpu *CPUState, operand Operand){
    cpu.doBranch(!cpu.GetOverflowFlag(), operand)
}

func doBvs(cpu *CPUState, operand Operand){
    cpu.doBranch(cpu.GetOverflowFlag(), operand)
}

/* brk is two bytes long, the second byte is padding. the pushed return
 * address skips it.
 */
func doBrk(cpu *CPUState, operand Operand){
    cpu.PushStackWord(cpu.PC + 1)
    cpu.PushStack(cpu.pushedStatus())
    cpu.SetInterruptDisableFlag(true)
    cpu.PC = cpu.Memory.LoadWord(BRKVector)
}

func doRti(cpu *CPUState, operand Operand){
    cpu.restoreStatus(cpu.PopStack())
    cpu.PC = cpu.PopStackWord()
}

func doClc(cpu *CPUState, operand Operand){
    cpu.SetCarryFlag(false)
}

func doCld(cpu *CPUState, operand Operand){
    cpu.SetDecimalFlag(false)
}

func doCli(cpu *CPUState, operand Operand){
    cpu.SetInterruptDisableFlag(false)
}

func doClv(cpu *CPUState, operand Operand){
    cpu.SetOverflowFlag(false)
}

func doSec(cpu *CPUState, operand Operand){
    cpu.SetCarryFlag(true)
}

func doSed(cpu *CPUState, operand Operand){
    cpu.SetDecimalFlag(true)
}

func doSei(cpu *CPUState, operand Operand){
    cpu.SetInterruptDisableFlag(true)
}

func doCmp(cpu *CPUState, operand Operand){
    cpu.doCompare(cpu.A, operand)
}

func doCpx(cpu *CPUState, operand Operand){
    cpu.doCompare(cpu.X, operand)
}

func doCpy(cpu *CPUState, operand Operand){
    cpu.doCompare(cpu.Y, operand)
}

func doDec(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand) - 1
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

func doInc(cpu *CPUState, operand Operand){
    value := cpu.operandValue(operand) + 1
    cpu.storeOperand(operand, value)
    cpu.setZeroNegative(value)
}

func doDex(cpu *CPUState, operand Operand){
    cpu.loadX(cpu.X - 1)
}

func doDey(cpu *CPUState, operand Operand){
    cpu.loadY(cpu.Y - 1)
}

func doInx(cpu *CPUState, operand Operand){
    cpu.loadX(cpu.X + 1)
}

func doIny(cpu *CPUState, operand Operand){
    cpu.loadY(cpu.Y + 1)
}

func doJmp(cpu *CPUState, operand Operand){
    cpu.PC = operand.Address
}

/* the pushed address is the last byte of the jsr, rts adds the 1 back */
func doJsr(cpu *CPUState, operand Operand){
    cpu.PushStackWord(cpu.PC - 1)
    cpu.PC = operand.Address
}

func doRts(cpu *CPUState, operand Operand){
    cpu.PC = cpu.PopStackWord() + 1
}

func doLda(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.operandValue(operand))
}

func doLdx(cpu *CPUState, operand Operand){
    cpu.loadX(cpu.operandValue(operand))
}

func doLdy(cpu *CPUState, operand Operand){
    cpu.loadY(cpu.operandValue(operand))
}

func doNop(cpu *CPUState, operand Operand){
}

func doPha(cpu *CPUState, operand Operand){
    cpu.PushStack(cpu.A)
}

func doPhp(cpu *CPUState, operand Operand){
    cpu.PushStack(cpu.pushedStatus())
}

func doPla(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.PopStack())
}

func doPlp(cpu *CPUState, operand Operand){
    cpu.restoreStatus(cpu.PopStack())
}

func doSta(cpu *CPUState, operand Operand){
    cpu.StoreMemory(operand.Address, cpu.A)
}

func doStx(cpu *CPUState, operand Operand){
    cpu.StoreMemory(operand.Address, cpu.X)
}

func doSty(cpu *CPUState, operand Operand){
    cpu.StoreMemory(operand.Address, cpu.Y)
}

func doTax(cpu *CPUState, operand Operand){
    cpu.loadX(cpu.A)
}

func doTay(cpu *CPUState, operand Operand){
    cpu.loadY(cpu.A)
}

func doTxa(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.X)
}

func doTya(cpu *CPUState, operand Operand){
    cpu.loadA(cpu.Y)
}

func doTsx(cpu *CPUState, operand Operand){
    cpu.loadX(cpu.SP)
}

/* txs does not touch the flags */
func doTxs(cpu *CPUState, operand Operand){
    cpu.SP = cpu.X
}
