package lib

import (
    "bytes"
    "context"
    "errors"
    "io"
    "testing"
)

func readAllInstructions(reader *InstructionReader) ([]Instruction, error) {
    var out []Instruction

    for {
        instruction, err := reader.ReadInstruction()
        if err != nil {
            return out, err
        }

        out = append(out, instruction)
    }
}

func checkInstructions(test *testing.T, instructions []Instruction, kinds []InstructionType) {
    if len(kinds) != len(instructions) {
        test.Fatalf("unequal number of instructions %v vs expected %v", len(instructions), len(kinds))
    }

    for i := 0; i < len(instructions); i++ {
        if instructions[i].Kind != kinds[i] {
            test.Fatalf("invalid instruction %v: %v vs %v\n", i, instructions[i].String(), kinds[i])
        }
    }
}

func makeCPU(test *testing.T, address uint16, code []byte) *CPUState {
    cpu, err := NewCPU(address, Segment{Address: address, Data: code})
    if err != nil {
        test.Fatalf("could not create cpu: %v", err)
    }
    return cpu
}

func TestCPUDecode(test *testing.T){
    bytes := []byte{0xa9, 0x01, 0x8d, 0x00, 0x02, 0xa9, 0x05, 0x8d, 0x01, 0x02, 0xa9, 0x08, 0x8d, 0x02, 0x02}

    reader := NewInstructionReader(bytes, 0x600)
    instructions, err := readAllInstructions(reader)

    if err != io.EOF {
        test.Fatalf("could not read instructions: %v", err)
    }

    checkInstructions(test, instructions, []InstructionType{
        Instruction_LDA_immediate,
        Instruction_STA_absolute,
        Instruction_LDA_immediate,
        Instruction_STA_absolute,
        Instruction_LDA_immediate,
        Instruction_STA_absolute,
    })

    if instructions[3].Address != 0x607 {
        test.Fatalf("address of instruction 3 expected to be 0x607 but was 0x%x", instructions[3].Address)
    }

    if instructions[1].OperandWord() != 0x200 {
        test.Fatalf("operand of instruction 1 expected to be 0x200 but was 0x%x", instructions[1].OperandWord())
    }
}

func TestReaderErrors(test *testing.T){
    reader := NewInstructionReader([]byte{0xea, 0x02, 0xea}, 0x10)
    _, err := reader.ReadInstruction()
    if err != nil {
        test.Fatalf("unexpected error %v", err)
    }

    _, err = reader.ReadInstruction()
    var decode *DecodeError
    if !errors.As(err, &decode) {
        test.Fatalf("expected a decode error but got %v", err)
    }
    if decode.Address != 0x11 || decode.Opcode != 0x02 {
        test.Fatalf("decode error had wrong location: %v", decode)
    }

    /* the bad byte was skipped */
    instruction, err := reader.ReadInstruction()
    if err != nil || instruction.Kind != Instruction_NOP {
        test.Fatalf("expected nop after bad byte: %v %v", instruction.String(), err)
    }

    /* lda absolute missing its high byte */
    reader = NewInstructionReader([]byte{0xad, 0x00}, 0)
    _, err = reader.ReadInstruction()
    if err == nil || errors.Is(err, io.EOF) {
        test.Fatalf("expected a truncation error but got %v", err)
    }
}

func TestCPUSimple(test *testing.T){
    bytes := []byte{
        0xa9, 0x01,       // lda #$01
        0x8d, 0x00, 0x02, // sta $200
        0xa9, 0x05,       // lda #$05
        0x8d, 0x01, 0x02, // sta $201
        0xa9, 0x08,       // lda #$08
        0x8d, 0x02, 0x02, // sta $202
    }

    cpu := makeCPU(test, 0x600, bytes)

    err := cpu.StepN(6)
    if err != nil {
        test.Fatalf("could not execute: %v", err)
    }

    if cpu.A != 0x8 {
        test.Fatalf("A register expected to be 0x8 but was 0x%x\n", cpu.A)
    }

    if cpu.X != 0x0 {
        test.Fatalf("X register expected to be 0x0 but was 0x%x\n", cpu.X)
    }

    if cpu.Y != 0x0 {
        test.Fatalf("Y register expected to be 0x0 but was 0x%x\n", cpu.Y)
    }

    if cpu.PC != 0x60f {
        test.Fatalf("PC register expected to be 0x60f but was 0x%x\n", cpu.PC)
    }

    if cpu.LoadMemory(0x200) != 0x1 {
        test.Fatalf("Memory location 0x200 expected to be 0x1 but was 0x%x\n", cpu.LoadMemory(0x200))
    }

    if cpu.LoadMemory(0x201) != 0x5 {
        test.Fatalf("Memory location 0x201 expected to be 0x5 but was 0x%x\n", cpu.LoadMemory(0x201))
    }

    if cpu.LoadMemory(0x202) != 0x8 {
        test.Fatalf("Memory location 0x202 expected to be 0x8 but was 0x%x\n", cpu.LoadMemory(0x202))
    }
}

func TestStartupState(test *testing.T){
    cpu := StartupState(0x1234)
    if cpu.A != 0 || cpu.X != 0 || cpu.Y != 0 {
        test.Fatalf("registers should start at 0: %v", cpu.String())
    }
    if cpu.SP != 0xff {
        test.Fatalf("SP expected to be 0xff but was 0x%x", cpu.SP)
    }
    if cpu.Status != FlagUnused {
        test.Fatalf("status expected to be 0x%x but was 0x%x", FlagUnused, cpu.Status)
    }
    if cpu.PC != 0x1234 {
        test.Fatalf("PC expected to be 0x1234 but was 0x%x", cpu.PC)
    }
}

/* the concrete clear memory loop: zero 256 bytes through ($ff),y. the pointer
 * high byte comes from address 0 (wrapping) which holds the lda opcode 0xa9,
 * so the loop clears 0xa900-0xa9ff
 */
func TestClearMemoryLoop(test *testing.T){
    code := []byte{0xa9, 0x00, 0xa8, 0x91, 0xff, 0xc8, 0xca, 0xd0, 0xfa, 0x60}
    cpu := makeCPU(test, 0x0, code)

    for i := 0xa900; i <= 0xa9ff; i++ {
        cpu.StoreMemory(uint16(i), 0xee)
    }

    /* rts returns to the address after the one on the stack */
    cpu.PushStackWord(0x0009)

    count, err := cpu.Run(10000, StopAfter(Instruction_RTS))
    if err != nil {
        test.Fatalf("run failed: %v", err)
    }

    if count != 2 + 256 * 4 + 1 {
        test.Fatalf("expected %v instructions but ran %v", 2 + 256 * 4 + 1, count)
    }

    if cpu.A != 0 {
        test.Fatalf("A expected to be 0x0 but was 0x%x", cpu.A)
    }
    if cpu.Y != 0 {
        test.Fatalf("Y expected to be 0x0 but was 0x%x", cpu.Y)
    }
    if cpu.X != 0 {
        test.Fatalf("X expected to be 0x0 but was 0x%x", cpu.X)
    }
    if cpu.PC != 0x000a {
        test.Fatalf("PC expected to be 0xa but was 0x%x", cpu.PC)
    }
    if cpu.SP != 0xff {
        test.Fatalf("SP expected to be 0xff but was 0x%x", cpu.SP)
    }
    if !cpu.GetZeroFlag() {
        test.Fatalf("zero flag should be set after the final dex")
    }

    for i := 0xa900; i <= 0xa9ff; i++ {
        if cpu.LoadMemory(uint16(i)) != 0 {
            test.Fatalf("memory 0x%x expected to be 0x0 but was 0x%x", i, cpu.LoadMemory(uint16(i)))
        }
    }

    if cpu.LoadMemory(0xa8ff) != 0 || cpu.LoadMemory(0xaa00) != 0 {
        test.Fatalf("loop wrote outside of its page")
    }
}

func TestProgramCounterAdvance(test *testing.T){
    table := MakeInstructionTable()
    for _, description := range table.All() {
        switch description.Kind {
            case Instruction_JMP_absolute, Instruction_JMP_indirect, Instruction_JSR_absolute,
                 Instruction_RTS, Instruction_RTI, Instruction_BRK:
                continue
        }

        /* operand bytes are 0, so a branch offset is 0 and lands on the next
         * instruction whether or not it is taken
         */
        cpu := makeCPU(test, 0x400, []byte{byte(description.Kind), 0, 0})
        instruction, err := cpu.Step()
        if err != nil {
            test.Fatalf("step failed for %v: %v", description.Name, err)
        }

        if instruction.Kind != description.Kind {
            test.Fatalf("executed 0x%x but expected 0x%x", instruction.Kind, description.Kind)
        }

        expected := 0x400 + description.Length()
        if cpu.PC != expected {
            test.Fatalf("PC after %v %v expected to be 0x%x but was 0x%x", description.Name, description.Mode, expected, cpu.PC)
        }
    }
}

func TestBranchTarget(test *testing.T){
    /* sec; bcs -4 loops back to the sec */
    cpu := makeCPU(test, 0x400, []byte{0x38, 0xb0, 0xfd})
    cpu.StepN(2)
    if cpu.PC != 0x400 {
        test.Fatalf("PC expected to be 0x400 but was 0x%x", cpu.PC)
    }

    /* clc; bcs is not taken */
    cpu = makeCPU(test, 0x400, []byte{0x18, 0xb0, 0xfd})
    cpu.StepN(2)
    if cpu.PC != 0x403 {
        test.Fatalf("PC expected to be 0x403 but was 0x%x", cpu.PC)
    }

    /* forward branch across a page */
    cpu = makeCPU(test, 0x4f0, []byte{0xd0, 0x7f})
    cpu.Step()
    if cpu.PC != 0x571 {
        test.Fatalf("PC expected to be 0x571 but was 0x%x", cpu.PC)
    }
}

func TestDecodeErrorLeavesState(test *testing.T){
    table := MakeInstructionTable()
    for opcode := 0; opcode < 256; opcode++ {
        _, ok := table.Lookup(InstructionType(opcode))
        if ok {
            continue
        }

        cpu := makeCPU(test, 0x300, []byte{byte(opcode), 0x12, 0x34})
        cpu.A = 0x11
        cpu.X = 0x22
        cpu.Y = 0x33
        cpu.Status = 0xe3
        before := cpu.Copy()

        _, err := cpu.Step()
        if !IsDecodeError(err) {
            test.Fatalf("opcode 0x%x expected a decode error but got %v", opcode, err)
        }

        var decode *DecodeError
        errors.As(err, &decode)
        if decode.Opcode != byte(opcode) || decode.Address != 0x300 {
            test.Fatalf("decode error had wrong contents: %v", err)
        }

        if !cpu.Equals(before) {
            test.Fatalf("state changed after decode error: %v vs %v", cpu.String(), before.String())
        }

        if !bytes.Equal(cpu.Memory.Data[:], before.Memory.Data[:]) {
            test.Fatalf("memory changed after decode error for opcode 0x%x", opcode)
        }
    }
}

func TestStackWrap(test *testing.T){
    cpu := StartupState(0)

    for i := 0; i < 8; i++ {
        cpu.PushStack(byte(i + 1))
    }

    if cpu.SP != 0xf7 {
        test.Fatalf("SP expected to be 0xf7 but was 0x%x", cpu.SP)
    }

    for i := 8; i > 0; i-- {
        value := cpu.PopStack()
        if value != byte(i) {
            test.Fatalf("popped value expected to be 0x%x but was 0x%x", i, value)
        }
    }

    if cpu.SP != 0xff {
        test.Fatalf("SP expected to be 0xff but was 0x%x", cpu.SP)
    }

    /* popping an empty stack wraps to the bottom of page 1 */
    cpu.StoreMemory(0x100, 0x99)
    value := cpu.PopStack()
    if value != 0x99 || cpu.SP != 0x00 {
        test.Fatalf("pop from empty stack expected 0x99 with SP 0x0 but got 0x%x SP 0x%x", value, cpu.SP)
    }

    cpu.PushStack(0x42)
    if cpu.LoadMemory(0x100) != 0x42 || cpu.SP != 0xff {
        test.Fatalf("push at SP 0 expected to wrap to 0xff but SP was 0x%x", cpu.SP)
    }
}

func TestJSRRTS(test *testing.T){
    code := []byte{
        0x20, 0x06, 0x03, // jsr $306
        0xa2, 0x07,       // ldx #$07
        0x00,             // brk
        0xa9, 0x42,       // lda #$42
        0x60,             // rts
    }

    cpu := makeCPU(test, 0x300, code)

    cpu.Step()
    if cpu.PC != 0x306 {
        test.Fatalf("PC expected to be 0x306 but was 0x%x", cpu.PC)
    }
    if cpu.SP != 0xfd {
        test.Fatalf("SP expected to be 0xfd but was 0x%x", cpu.SP)
    }
    /* the return address is the last byte of the jsr */
    if cpu.LoadMemory(0x1ff) != 0x03 || cpu.LoadMemory(0x1fe) != 0x02 {
        test.Fatalf("return address on stack was 0x%x%02x", cpu.LoadMemory(0x1ff), cpu.LoadMemory(0x1fe))
    }

    cpu.StepN(2)
    if cpu.PC != 0x303 {
        test.Fatalf("PC expected to be 0x303 but was 0x%x", cpu.PC)
    }
    if cpu.SP != 0xff {
        test.Fatalf("SP expected to be 0xff but was 0x%x", cpu.SP)
    }

    cpu.Step()
    if cpu.A != 0x42 || cpu.X != 0x7 {
        test.Fatalf("unexpected registers %v", cpu.String())
    }
}

func TestBRKRTI(test *testing.T){
    cpu := makeCPU(test, 0x200, []byte{0x00, 0xff, 0xa9, 0x42})
    cpu.Memory.StoreWord(BRKVector, 0x300)
    cpu.StoreMemory(0x300, byte(Instruction_RTI))

    cpu.Step()
    if cpu.PC != 0x300 {
        test.Fatalf("PC expected to be 0x300 but was 0x%x", cpu.PC)
    }
    if !cpu.GetInterruptDisableFlag() {
        test.Fatalf("interrupt disable should be set after brk")
    }
    if cpu.SP != 0xfc {
        test.Fatalf("SP expected to be 0xfc but was 0x%x", cpu.SP)
    }
    pushed := cpu.LoadMemory(0x1fd)
    if pushed != FlagUnused | FlagBreak {
        test.Fatalf("pushed status expected to be 0x30 but was 0x%x", pushed)
    }
    if cpu.Memory.LoadWord(0x1fe) != 0x202 {
        test.Fatalf("pushed PC expected to be 0x202 but was 0x%x", cpu.Memory.LoadWord(0x1fe))
    }

    cpu.Step()
    if cpu.PC != 0x202 {
        test.Fatalf("PC expected to be 0x202 but was 0x%x", cpu.PC)
    }
    if cpu.Status != FlagUnused {
        test.Fatalf("status expected to be 0x20 but was 0x%x", cpu.Status)
    }

    cpu.Step()
    if cpu.A != 0x42 {
        test.Fatalf("A expected to be 0x42 but was 0x%x", cpu.A)
    }
}

func TestPHPPLP(test *testing.T){
    /* sec; sed; php; clc; cld; plp */
    cpu := makeCPU(test, 0x200, []byte{0x38, 0xf8, 0x08, 0x18, 0xd8, 0x28})
    cpu.StepN(3)

    if cpu.LoadMemory(0x1ff) != FlagCarry | FlagDecimal | FlagBreak | FlagUnused {
        test.Fatalf("pushed status was 0x%x", cpu.LoadMemory(0x1ff))
    }

    cpu.StepN(2)
    if cpu.GetCarryFlag() || cpu.GetDecimalFlag() {
        test.Fatalf("flags should be clear")
    }

    cpu.Step()
    if cpu.Status != FlagCarry | FlagDecimal | FlagUnused {
        test.Fatalf("status expected to be 0x29 but was 0x%x", cpu.Status)
    }
}

func TestPLPForcesUnusedBit(test *testing.T){
    /* lda #$00; pha; plp */
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x00, 0x48, 0x28})
    cpu.StepN(3)
    if cpu.Status != FlagUnused {
        test.Fatalf("status expected to be 0x20 but was 0x%x", cpu.Status)
    }
}

func TestBIT(test *testing.T){
    /* lda #$01; bit $10 */
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x01, 0x24, 0x10})
    cpu.StoreMemory(0x10, 0xc0)
    cpu.StepN(2)

    if !cpu.GetZeroFlag() || !cpu.GetNegativeFlag() || !cpu.GetOverflowFlag() {
        test.Fatalf("bit should set Z N V: status 0x%x", cpu.Status)
    }
    if cpu.A != 0x01 {
        test.Fatalf("bit should not change A")
    }
}

func TestTransfers(test *testing.T){
    /* ldx #$80; txs; tsx; txa; ldy #$00; tay */
    cpu := makeCPU(test, 0x200, []byte{0xa2, 0x80, 0x9a, 0xba, 0x8a, 0xa0, 0x00, 0xa8})

    cpu.StepN(2)
    if cpu.SP != 0x80 {
        test.Fatalf("SP expected to be 0x80 but was 0x%x", cpu.SP)
    }

    /* txs leaves flags as they were after ldx */
    if !cpu.GetNegativeFlag() {
        test.Fatalf("negative flag from ldx should survive txs")
    }

    cpu.StepN(2)
    if cpu.A != 0x80 || cpu.X != 0x80 {
        test.Fatalf("unexpected registers %v", cpu.String())
    }

    cpu.StepN(2)
    if cpu.Y != 0x80 || !cpu.GetNegativeFlag() || cpu.GetZeroFlag() {
        test.Fatalf("tay expected Y=0x80 with N set: %v", cpu.String())
    }
}

func TestShiftsAndRotates(test *testing.T){
    /* lda #$81; asl a; rol a; lsr a; ror a */
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x81, 0x0a, 0x2a, 0x4a, 0x6a})
    cpu.StepN(2)
    if cpu.A != 0x02 || !cpu.GetCarryFlag() {
        test.Fatalf("asl expected A=0x02 with carry: %v", cpu.String())
    }

    cpu.Step()
    if cpu.A != 0x05 || cpu.GetCarryFlag() {
        test.Fatalf("rol expected A=0x05 without carry: %v", cpu.String())
    }

    cpu.Step()
    if cpu.A != 0x02 || !cpu.GetCarryFlag() {
        test.Fatalf("lsr expected A=0x02 with carry: %v", cpu.String())
    }

    cpu.Step()
    if cpu.A != 0x81 || cpu.GetCarryFlag() || !cpu.GetNegativeFlag() {
        test.Fatalf("ror expected A=0x81 with N and no carry: %v", cpu.String())
    }
}

func TestIncDecMemory(test *testing.T){
    /* inc $20; dec $21; dec $21 */
    cpu := makeCPU(test, 0x200, []byte{0xe6, 0x20, 0xc6, 0x21, 0xc6, 0x21})
    cpu.StoreMemory(0x20, 0xff)
    cpu.StoreMemory(0x21, 0x01)

    cpu.Step()
    if cpu.LoadMemory(0x20) != 0 || !cpu.GetZeroFlag() {
        test.Fatalf("inc should wrap to 0 and set zero")
    }

    cpu.StepN(2)
    if cpu.LoadMemory(0x21) != 0xff || !cpu.GetNegativeFlag() {
        test.Fatalf("dec should wrap to 0xff and set negative")
    }
}

func TestCompare(test *testing.T){
    /* lda #$10; cmp #$20; cmp #$10; cmp #$08 */
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x10, 0xc9, 0x20, 0xc9, 0x10, 0xc9, 0x08})
    cpu.StepN(2)
    if cpu.GetCarryFlag() || cpu.GetZeroFlag() || !cpu.GetNegativeFlag() {
        test.Fatalf("0x10 < 0x20: status 0x%x", cpu.Status)
    }

    cpu.Step()
    if !cpu.GetCarryFlag() || !cpu.GetZeroFlag() {
        test.Fatalf("0x10 == 0x10: status 0x%x", cpu.Status)
    }

    cpu.Step()
    if !cpu.GetCarryFlag() || cpu.GetZeroFlag() || cpu.GetNegativeFlag() {
        test.Fatalf("0x10 > 0x08: status 0x%x", cpu.Status)
    }
}

func TestDecimalInstructions(test *testing.T){
    /* sed; clc; lda #$19; adc #$28; sec; sbc #$48 */
    cpu := makeCPU(test, 0x200, []byte{0xf8, 0x18, 0xa9, 0x19, 0x69, 0x28, 0x38, 0xe9, 0x48})
    cpu.StepN(4)
    if cpu.A != 0x47 {
        test.Fatalf("A expected to be 0x47 but was 0x%x", cpu.A)
    }

    cpu.StepN(2)
    if cpu.A != 0x99 || cpu.GetCarryFlag() {
        test.Fatalf("A expected to be 0x99 with borrow but was 0x%x carry %v", cpu.A, cpu.GetCarryFlag())
    }
}

func TestJMPIndirectPageWrap(test *testing.T){
    cpu := makeCPU(test, 0x200, []byte{0x6c, 0xff, 0x30})
    cpu.StoreMemory(0x30ff, 0x80)
    cpu.StoreMemory(0x3000, 0x50)
    cpu.StoreMemory(0x3100, 0x40)

    cpu.Step()
    if cpu.PC != 0x5080 {
        test.Fatalf("PC expected to be 0x5080 but was 0x%x", cpu.PC)
    }
}

func TestLoad(test *testing.T){
    cpu := StartupState(0)
    err := cpu.LoadDefault([]byte{0xa9, 0x01})
    if err != nil {
        test.Fatalf("load failed: %v", err)
    }
    if cpu.LoadMemory(DefaultCodeAddress) != 0xa9 || cpu.LoadMemory(DefaultCodeAddress + 1) != 0x01 {
        test.Fatalf("code was not placed at 0x%x", DefaultCodeAddress)
    }

    /* exactly fits at the top */
    err = cpu.Load([]byte{1, 2}, 0xfffe)
    if err != nil {
        test.Fatalf("load at 0xfffe failed: %v", err)
    }

    err = cpu.Load([]byte{3, 4, 5}, 0xfffe)
    if !IsAddressResolutionError(err) {
        test.Fatalf("expected an address error but got %v", err)
    }
    if cpu.LoadMemory(0xfffe) != 1 || cpu.LoadMemory(0x0000) != 0 {
        test.Fatalf("failed load changed memory")
    }

    _, err = NewCPU(0, Segment{Address: 0x10, Data: []byte{1}}, Segment{Address: 0xff00, Data: make([]byte, 0x101)})
    if !IsAddressResolutionError(err) {
        test.Fatalf("expected an address error but got %v", err)
    }
}

func TestReset(test *testing.T){
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x42, 0x38, 0x48})
    cpu.Memory.StoreWord(ResetVector, 0x200)
    cpu.StepN(3)

    cpu.Reset()
    if cpu.PC != 0x200 || cpu.A != 0 || cpu.SP != 0xff || cpu.Status != FlagUnused {
        test.Fatalf("unexpected state after reset: %v", cpu.String())
    }

    /* memory is left alone */
    if cpu.LoadMemory(0x1ff) != 0x42 {
        test.Fatalf("reset should not clear memory")
    }

    cpu.ResetTo(0x1234)
    if cpu.PC != 0x1234 {
        test.Fatalf("PC expected to be 0x1234 but was 0x%x", cpu.PC)
    }

    cpu.Memory.Reset()
    if cpu.LoadMemory(0x200) != 0 {
        test.Fatalf("memory reset should zero memory")
    }
}

func TestRunLimits(test *testing.T){
    /* inx; jmp $200 */
    cpu := makeCPU(test, 0x200, []byte{0xe8, 0x4c, 0x00, 0x02})

    count, err := cpu.Run(10, nil)
    if err != nil {
        test.Fatalf("run failed: %v", err)
    }
    if count != 10 || cpu.X != 5 {
        test.Fatalf("expected 10 steps and X=5 but got %v steps X=0x%x", count, cpu.X)
    }

    count, err = cpu.Run(0, func(cpu *CPUState, last Instruction) bool {
        return cpu.X == 0x20
    })
    if err != nil || cpu.X != 0x20 {
        test.Fatalf("run did not stop on predicate: %v %v", count, err)
    }

    count, _ = cpu.Run(100, StopAtPC(0x201))
    if count != 2 || cpu.PC != 0x201 {
        test.Fatalf("run should stop at 0x201 after 2 steps but ran %v, PC 0x%x", count, cpu.PC)
    }

    /* running into a bad opcode stops with an error */
    cpu = makeCPU(test, 0x200, []byte{0xe8, 0x02})
    count, err = cpu.Run(100, nil)
    if !IsDecodeError(err) || count != 1 {
        test.Fatalf("expected decode error after 1 step but got %v after %v", err, count)
    }
}

func TestStopOnTrap(test *testing.T){
    /* ldx #2; loop: dex; bne loop; done: jmp done */
    cpu := makeCPU(test, 0x200, []byte{0xa2, 0x02, 0xca, 0xd0, 0xfd, 0x4c, 0x05, 0x02})

    count, err := cpu.Run(100, StopOnTrap())
    if err != nil {
        test.Fatalf("run failed: %v", err)
    }
    /* ldx, two rounds of dex bne, then the jmp onto itself */
    if count != 6 || cpu.PC != 0x205 {
        test.Fatalf("expected to trap at 0x205 after 6 steps but got PC 0x%x after %v", cpu.PC, count)
    }

    cpu = makeCPU(test, 0x200, []byte{0xa2, 0x02, 0xca, 0xd0, 0xfd, 0x4c, 0x05, 0x02})
    count, _ = cpu.Run(100, StopAny(nil, StopAtPC(0x203), StopOnTrap()))
    if count != 2 || cpu.PC != 0x203 {
        test.Fatalf("expected to stop at 0x203 after 2 steps but got PC 0x%x after %v", cpu.PC, count)
    }
}

func TestRunContext(test *testing.T){
    /* jmp $200 forever */
    cpu := makeCPU(test, 0x200, []byte{0x4c, 0x00, 0x02})

    quit, cancel := context.WithCancel(context.Background())
    cancel()

    count, err := cpu.RunContext(quit, 0, nil)
    if !errors.Is(err, context.Canceled) {
        test.Fatalf("expected context cancelled but got %v", err)
    }
    if count != 0 {
        test.Fatalf("no instructions should run with a cancelled context but ran %v", count)
    }

    count, err = cpu.RunContext(context.Background(), 5000, nil)
    if err != nil || count != 5000 {
        test.Fatalf("expected 5000 steps but got %v %v", count, err)
    }
}

func TestSerialize(test *testing.T){
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x42, 0xaa, 0x38})
    cpu.StepN(3)

    var buffer bytes.Buffer
    err := cpu.Serialize(&buffer, true)
    if err != nil {
        test.Fatalf("serialize failed: %v", err)
    }

    loaded, err := LoadState(&buffer)
    if err != nil {
        test.Fatalf("load failed: %v", err)
    }

    if !loaded.Equals(*cpu) {
        test.Fatalf("loaded state %v differs from %v", loaded.String(), cpu.String())
    }

    if loaded.LoadMemory(0x200) != 0xa9 {
        test.Fatalf("memory was not restored")
    }

    /* registers only */
    buffer.Reset()
    cpu.Serialize(&buffer, false)
    loaded, err = LoadState(&buffer)
    if err != nil {
        test.Fatalf("load failed: %v", err)
    }
    if !loaded.Equals(*cpu) || loaded.LoadMemory(0x200) != 0 {
        test.Fatalf("register only snapshot was wrong")
    }

    /* the loaded cpu keeps executing */
    loaded.Memory.WriteSegment(loaded.PC, []byte{0xe8})
    _, err = loaded.Step()
    if err != nil || loaded.X != 0x43 {
        test.Fatalf("loaded cpu did not execute: %v X=0x%x", err, loaded.X)
    }
}

func TestCopy(test *testing.T){
    cpu := makeCPU(test, 0x200, []byte{0xa9, 0x42})
    other := cpu.Copy()
    cpu.Step()

    if other.A != 0 || other.PC != 0x200 {
        test.Fatalf("copy should not see later changes: %v", other.String())
    }

    other.StoreMemory(0x200, 0xea)
    if cpu.LoadMemory(0x200) != 0xa9 {
        test.Fatalf("copy should have its own memory")
    }

    if cpu.String() != "A:0x42 X:0x0 Y:0x0 SP:0xFF P:0x20 PC:0x202" {
        test.Fatalf("unexpected string %v", cpu.String())
    }
}

func BenchmarkStep(benchmark *testing.B){
    /* inx; dey; adc #$01; jmp $200 */
    cpu, _ := NewCPU(0x200, Segment{Address: 0x200, Data: []byte{0xe8, 0x88, 0x69, 0x01, 0x4c, 0x00, 0x02}})

    benchmark.ResetTimer()
    for i := 0; i < benchmark.N; i++ {
        cpu.Step()
    }
}
