package lib

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log"
)

const ResetVector uint16 = 0xfffc
const BRKVector uint16 = 0xfffe

/* where code is placed when no address is given, leaving the low 48k for data */
const DefaultCodeAddress uint16 = 0xc000

/* the stack lives in page 1 */
const StackBase uint16 = 0x100

/* status register bits, NV-BDIZC */
const (
    FlagCarry byte = 1 << 0
    FlagZero byte = 1 << 1
    FlagInterruptDisable byte = 1 << 2
    FlagDecimal byte = 1 << 3
    FlagBreak byte = 1 << 4
    /* bit 5 has no flag behind it and always reads as 1 */
    FlagUnused byte = 1 << 5
    FlagOverflow byte = 1 << 6
    FlagNegative byte = 1 << 7
)

type CPUState struct {
    A byte `json:"a"`
    X byte `json:"x"`
    Y byte `json:"y"`
    SP byte `json:"sp"`
    PC uint16 `json:"pc"`
    Status byte `json:"status"`

    Memory *Memory `json:"-"`
    Debug uint `json:"debug,omitempty"`

    table *InstructionTable
}

/* power up state: registers cleared, stack at the top of page 1 and
 * every flag clear except the unused bit
 */
func StartupState(pc uint16) CPUState {
    return CPUState{
        A: 0,
        X: 0,
        Y: 0,
        SP: 0xff,
        PC: pc,
        Status: FlagUnused,
        Memory: NewMemory(),
        table: MakeInstructionTable(),
    }
}

/* build a cpu with the given program image loaded. the image is checked
 * before anything is written.
 */
func NewCPU(pc uint16, image ...Segment) (*CPUState, error) {
    cpu := StartupState(pc)
    err := cpu.Memory.LoadImage(image)
    if err != nil {
        return nil, err
    }
    return &cpu, nil
}

func (cpu *CPUState) instructions() *InstructionTable {
    if cpu.table == nil {
        cpu.table = MakeInstructionTable()
    }
    return cpu.table
}

/* swap in a different memory bus, for example to reuse a cpu between runs */
func (cpu *CPUState) SetMemory(memory *Memory){
    cpu.Memory = memory
}

/* copy code into memory at address. registers are left alone */
func (cpu *CPUState) Load(code []byte, address uint16) error {
    return cpu.Memory.WriteSegment(address, code)
}

func (cpu *CPUState) LoadDefault(code []byte) error {
    return cpu.Load(code, DefaultCodeAddress)
}

/* put the registers back to their power up values and jump through the
 * reset vector. memory is not touched.
 */
func (cpu *CPUState) Reset() {
    cpu.ResetTo(cpu.Memory.LoadWord(ResetVector))
}

func (cpu *CPUState) ResetTo(pc uint16) {
    cpu.A = 0
    cpu.X = 0
    cpu.Y = 0
    cpu.SP = 0xff
    cpu.Status = FlagUnused
    cpu.PC = pc
}

type stateSnapshot struct {
    CPUState
    Memory []byte `json:"memory,omitempty"`
}

/* write the registers as json. memory is included if withMemory is set */
func (cpu *CPUState) Serialize(writer io.Writer, withMemory bool) error {
    snapshot := stateSnapshot{CPUState: *cpu}
    if withMemory && cpu.Memory != nil {
        snapshot.Memory = cpu.Memory.Data[:]
    }
    encoder := json.NewEncoder(writer)
    encoder.SetIndent("", "  ")
    return encoder.Encode(&snapshot)
}

/* read a state written by Serialize. if the snapshot has no memory the cpu
 * gets a fresh zeroed memory bus.
 */
func LoadState(reader io.Reader) (*CPUState, error) {
    var snapshot stateSnapshot
    err := json.NewDecoder(reader).Decode(&snapshot)
    if err != nil {
        return nil, err
    }

    cpu := snapshot.CPUState
    cpu.Memory = NewMemory()
    cpu.table = MakeInstructionTable()

    if len(snapshot.Memory) > 0 {
        if len(snapshot.Memory) != MemorySize {
            return nil, &AddressResolutionError{Offset: 0, Length: len(snapshot.Memory)}
        }
        copy(cpu.Memory.Data[:], snapshot.Memory)
    }

    return &cpu, nil
}

/* deep copy, including memory */
func (cpu *CPUState) Copy() CPUState {
    var memory *Memory
    if cpu.Memory != nil {
        memory = cpu.Memory.Copy()
    }
    return CPUState{
        A: cpu.A,
        X: cpu.X,
        Y: cpu.Y,
        SP: cpu.SP,
        PC: cpu.PC,
        Status: cpu.Status,
        Memory: memory,
        Debug: cpu.Debug,
        table: cpu.table,
    }
}

/* compares registers only */
func (cpu *CPUState) Equals(other CPUState) bool {
    return cpu.A == other.A &&
           cpu.X == other.X &&
           cpu.Y == other.Y &&
           cpu.SP == other.SP &&
           cpu.PC == other.PC &&
           cpu.Status == other.Status
}

func (cpu *CPUState) String() string {
    return fmt.Sprintf("A:0x%X X:0x%X Y:0x%X SP:0x%X P:0x%X PC:0x%X", cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.Status, cpu.PC)
}

func (cpu *CPUState) LoadMemory(address uint16) byte {
    return cpu.Memory.Load(address)
}

func (cpu *CPUState) StoreMemory(address uint16, value byte){
    cpu.Memory.Store(address, value)
}

/* the stack pointer wraps within page 1, there is no overflow */
func (cpu *CPUState) PushStack(value byte) {
    cpu.StoreMemory(StackBase + uint16(cpu.SP), value)
    cpu.SP -= 1
}

func (cpu *CPUState) PopStack() byte {
    cpu.SP += 1
    return cpu.LoadMemory(StackBase + uint16(cpu.SP))
}

/* high byte first so the word ends up little endian in memory */
func (cpu *CPUState) PushStackWord(value uint16) {
    cpu.PushStack(byte(value >> 8))
    cpu.PushStack(byte(value & 0xff))
}

func (cpu *CPUState) PopStackWord() uint16 {
    low := uint16(cpu.PopStack())
    high := uint16(cpu.PopStack())
    return (high << 8) | low
}

/* decode the instruction at PC without changing any state */
func (cpu *CPUState) Fetch() (Instruction, error) {
    first := cpu.LoadMemory(cpu.PC)

    description, ok := cpu.instructions().Lookup(InstructionType(first))
    if !ok {
        return Instruction{}, &DecodeError{Address: cpu.PC, Opcode: first}
    }

    instruction := Instruction{
        Name: description.Name,
        Kind: description.Kind,
        Mode: description.Mode,
        Address: cpu.PC,
        Size: description.Operands,
    }

    for i := 0; i < int(description.Operands); i++ {
        instruction.Operands[i] = cpu.LoadMemory(cpu.PC + uint16(i + 1))
    }

    return instruction, nil
}

/* run a decoded instruction. the program counter moves past the instruction
 * before the operand is resolved, so branches and jsr see the address of the
 * next instruction.
 */
func (cpu *CPUState) Execute(instruction Instruction) error {
    description, ok := cpu.instructions().Lookup(instruction.Kind)
    if !ok {
        return &DecodeError{Address: instruction.Address, Opcode: byte(instruction.Kind)}
    }

    cpu.PC += description.Length()
    operand := cpu.ResolveOperand(description.Mode, instruction)
    description.execute(cpu, operand)

    return nil
}

/* execute exactly one instruction and return what was executed. on a
 * decode error nothing is changed.
 */
func (cpu *CPUState) Step() (Instruction, error) {
    instruction, err := cpu.Fetch()
    if err != nil {
        return instruction, err
    }

    if cpu.Debug > 0 {
        log.Printf("PC: 0x%x Execute instruction %v A:%X X:%X Y:%X P:%X SP:%X\n", cpu.PC, instruction.String(), cpu.A, cpu.X, cpu.Y, cpu.Status, cpu.SP)
    }

    err = cpu.Execute(instruction)
    return instruction, err
}

/* step n times, stopping at the first error */
func (cpu *CPUState) StepN(count int) error {
    for i := 0; i < count; i++ {
        _, err := cpu.Step()
        if err != nil {
            return err
        }
    }
    return nil
}

/* called after every instruction. return true to stop running */
type StopFunc func(cpu *CPUState, last Instruction) bool

/* stop once the given instruction has been executed */
func StopAfter(kind InstructionType) StopFunc {
    return func(cpu *CPUState, last Instruction) bool {
        return last.Kind == kind
    }
}

/* stop when PC reaches address, before the instruction there runs */
func StopAtPC(address uint16) StopFunc {
    return func(cpu *CPUState, last Instruction) bool {
        return cpu.PC == address
    }
}

/* stop when an instruction leaves PC on itself, such as a jmp or a taken
 * branch to its own address. test programs use this to signal they are done.
 */
func StopOnTrap() StopFunc {
    return func(cpu *CPUState, last Instruction) bool {
        return last.Address == cpu.PC
    }
}

/* stop as soon as any of the given predicates does. nil entries are ignored */
func StopAny(stops ...StopFunc) StopFunc {
    return func(cpu *CPUState, last Instruction) bool {
        for _, stop := range stops {
            if stop != nil && stop(cpu, last) {
                return true
            }
        }
        return false
    }
}

/* step until maxSteps instructions have run or stop returns true. a
 * maxSteps of 0 means no limit, in which case stop should eventually fire.
 * returns the number of instructions executed.
 */
func (cpu *CPUState) Run(maxSteps uint64, stop StopFunc) (uint64, error) {
    var count uint64
    for maxSteps == 0 || count < maxSteps {
        instruction, err := cpu.Step()
        if err != nil {
            return count, err
        }
        count += 1

        if stop != nil && stop(cpu, instruction) {
            break
        }
    }

    return count, nil
}

/* how often RunContext looks at the context */
const contextCheckInterval = 1024

/* like Run but also stops when quit is cancelled. the context is only
 * checked between instructions.
 */
func (cpu *CPUState) RunContext(quit context.Context, maxSteps uint64, stop StopFunc) (uint64, error) {
    var count uint64
    for maxSteps == 0 || count < maxSteps {
        if count % contextCheckInterval == 0 {
            select {
                case <-quit.Done():
                    return count, quit.Err()
                default:
            }
        }

        instruction, err := cpu.Step()
        if err != nil {
            return count, err
        }
        count += 1

        if stop != nil && stop(cpu, instruction) {
            break
        }
    }

    return count, nil
}

func (cpu *CPUState) setBit(bit byte, set bool){
    if set {
        cpu.Status = cpu.Status | bit
    } else {
        cpu.Status = cpu.Status & (^bit)
    }
}

func (cpu *CPUState) getBit(bit byte) bool {
    return (cpu.Status & bit) == bit
}

func (cpu *CPUState) GetInterruptDisableFlag() bool {
    return cpu.getBit(FlagInterruptDisable)
}

func (cpu *CPUState) SetInterruptDisableFlag(set bool){
    cpu.setBit(FlagInterruptDisable, set)
}

func (cpu *CPUState) GetZeroFlag() bool {
    return cpu.getBit(FlagZero)
}

func (cpu *CPUState) SetZeroFlag(zero bool){
    cpu.setBit(FlagZero, zero)
}

func (cpu *CPUState) SetCarryFlag(set bool){
    cpu.setBit(FlagCarry, set)
}

func (cpu *CPUState) GetCarryFlag() bool {
    return cpu.getBit(FlagCarry)
}

func (cpu *CPUState) GetNegativeFlag() bool {
    return cpu.getBit(FlagNegative)
}

func (cpu *CPUState) SetNegativeFlag(set bool) {
    cpu.setBit(FlagNegative, set)
}

func (cpu *CPUState) GetOverflowFlag() bool {
    return cpu.getBit(FlagOverflow)
}

func (cpu *CPUState) SetOverflowFlag(set bool) {
    cpu.setBit(FlagOverflow, set)
}

func (cpu *CPUState) SetDecimalFlag(set bool) {
    cpu.setBit(FlagDecimal, set)
}

func (cpu *CPUState) GetDecimalFlag() bool {
    return cpu.getBit(FlagDecimal)
}

func (cpu *CPUState) GetBreakFlag() bool {
    return cpu.getBit(FlagBreak)
}

func (cpu *CPUState) SetBreakFlag(set bool) {
    cpu.setBit(FlagBreak, set)
}

/* zero and negative both come straight from a result byte */
func (cpu *CPUState) setZeroNegative(value byte){
    cpu.SetZeroFlag(value == 0)
    cpu.SetNegativeFlag(int8(value) < 0)
}

/* status as it appears on the stack after php or brk */
func (cpu *CPUState) pushedStatus() byte {
    return cpu.Status | FlagBreak | FlagUnused
}

/* status popped by plp or rti. break only exists on the stack copy */
func (cpu *CPUState) restoreStatus(value byte) {
    cpu.Status = (value &^ FlagBreak) | FlagUnused
}
