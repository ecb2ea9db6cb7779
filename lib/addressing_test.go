package lib

import (
    "testing"
)

func TestZeroPageIndexedWrap(test *testing.T){
    if ComputeZeroPageIndexed(0xff, 0x02) != 0x01 {
        test.Fatalf("0xff + 2 expected to be 0x1 but was 0x%x", ComputeZeroPageIndexed(0xff, 0x02))
    }

    /* lda $f0,x with x = 0x20 reads 0x10 */
    cpu := makeCPU(test, 0x200, []byte{0xb5, 0xf0})
    cpu.X = 0x20
    cpu.StoreMemory(0x10, 0x77)
    cpu.StoreMemory(0x110, 0x99)
    cpu.Step()
    if cpu.A != 0x77 {
        test.Fatalf("A expected to be 0x77 but was 0x%x", cpu.A)
    }

    /* ldx $ff,y */
    cpu = makeCPU(test, 0x200, []byte{0xb6, 0xff})
    cpu.Y = 0x01
    cpu.StoreMemory(0x00, 0x33)
    cpu.Step()
    if cpu.X != 0x33 {
        test.Fatalf("X expected to be 0x33 but was 0x%x", cpu.X)
    }
}

func TestAbsoluteIndexed(test *testing.T){
    address, crossed := ComputeAbsoluteIndexed(0x20f0, 0x20)
    if address != 0x2110 || !crossed {
        test.Fatalf("0x20f0 + 0x20 expected to be 0x2110 crossing a page but was 0x%x %v", address, crossed)
    }

    address, crossed = ComputeAbsoluteIndexed(0x2000, 0x20)
    if address != 0x2020 || crossed {
        test.Fatalf("0x2000 + 0x20 expected to be 0x2020 but was 0x%x %v", address, crossed)
    }

    /* wraps around the top of memory */
    address, _ = ComputeAbsoluteIndexed(0xfff0, 0x20)
    if address != 0x0010 {
        test.Fatalf("0xfff0 + 0x20 expected to be 0x10 but was 0x%x", address)
    }
}

func TestRelative(test *testing.T){
    if ComputeRelative(0x1000, 0x10) != 0x1010 {
        test.Fatalf("forward branch was wrong")
    }
    if ComputeRelative(0x1000, 0xfe) != 0x0ffe {
        test.Fatalf("backward branch was wrong")
    }
    if ComputeRelative(0x0001, 0x80) != 0xff81 {
        test.Fatalf("branch below 0 should wrap but was 0x%x", ComputeRelative(0x0001, 0x80))
    }
}

func TestIndirectX(test *testing.T){
    cpu := StartupState(0)

    /* pointer at 0x24 */
    cpu.X = 0x04
    cpu.StoreMemory(0x24, 0x74)
    cpu.StoreMemory(0x25, 0x20)
    if cpu.ComputeIndirectX(0x20) != 0x2074 {
        test.Fatalf("(0x20,x) expected to be 0x2074 but was 0x%x", cpu.ComputeIndirectX(0x20))
    }

    /* base + x wraps in page 0 */
    cpu.X = 0x10
    cpu.StoreMemory(0x0f, 0x34)
    cpu.StoreMemory(0x10, 0x12)
    if cpu.ComputeIndirectX(0xff) != 0x1234 {
        test.Fatalf("(0xff,x) expected to be 0x1234 but was 0x%x", cpu.ComputeIndirectX(0xff))
    }

    /* pointer at 0xff takes its high byte from 0x00 */
    cpu.X = 0
    cpu.StoreMemory(0xff, 0x78)
    cpu.StoreMemory(0x00, 0x56)
    cpu.StoreMemory(0x100, 0x99)
    if cpu.ComputeIndirectX(0xff) != 0x5678 {
        test.Fatalf("(0xff,x) expected to be 0x5678 but was 0x%x", cpu.ComputeIndirectX(0xff))
    }
}

func TestIndirectY(test *testing.T){
    cpu := StartupState(0)

    cpu.Y = 0x10
    cpu.StoreMemory(0x86, 0x28)
    cpu.StoreMemory(0x87, 0x40)
    address, crossed := cpu.ComputeIndirectY(0x86)
    if address != 0x4038 || crossed {
        test.Fatalf("(0x86),y expected to be 0x4038 but was 0x%x", address)
    }

    cpu.Y = 0xff
    address, crossed = cpu.ComputeIndirectY(0x86)
    if address != 0x4127 || !crossed {
        test.Fatalf("(0x86),y expected to be 0x4127 crossing a page but was 0x%x %v", address, crossed)
    }

    /* pointer at 0xff wraps to 0x00 for the high byte */
    cpu.Y = 0x01
    cpu.StoreMemory(0xff, 0x00)
    cpu.StoreMemory(0x00, 0x30)
    cpu.StoreMemory(0x100, 0x99)
    address, _ = cpu.ComputeIndirectY(0xff)
    if address != 0x3001 {
        test.Fatalf("(0xff),y expected to be 0x3001 but was 0x%x", address)
    }
}

func TestIndirectPageBug(test *testing.T){
    cpu := StartupState(0)
    cpu.StoreMemory(0x02ff, 0x34)
    cpu.StoreMemory(0x0200, 0x12)
    cpu.StoreMemory(0x0300, 0x99)

    if cpu.ComputeIndirect(0x02ff) != 0x1234 {
        test.Fatalf("jmp ($2ff) expected to be 0x1234 but was 0x%x", cpu.ComputeIndirect(0x02ff))
    }

    cpu.StoreMemory(0x0280, 0xcd)
    cpu.StoreMemory(0x0281, 0xab)
    if cpu.ComputeIndirect(0x0280) != 0xabcd {
        test.Fatalf("jmp ($280) expected to be 0xabcd but was 0x%x", cpu.ComputeIndirect(0x0280))
    }
}

func TestResolveOperand(test *testing.T){
    cpu := StartupState(0x1002)
    cpu.X = 0x01
    cpu.Y = 0x02

    type testCase struct {
        Mode AddressingMode
        Operands [2]byte
        Kind OperandKind
        Address uint16
        Value byte
    }

    cases := []testCase{
        {Mode: ModeImplicit, Kind: OperandNone},
        {Mode: ModeAccumulator, Kind: OperandAccumulator},
        {Mode: ModeImmediate, Operands: [2]byte{0x42, 0}, Kind: OperandImmediate, Value: 0x42},
        {Mode: ModeZeroPage, Operands: [2]byte{0x42, 0}, Kind: OperandAddress, Address: 0x42},
        {Mode: ModeZeroPageX, Operands: [2]byte{0x42, 0}, Kind: OperandAddress, Address: 0x43},
        {Mode: ModeZeroPageY, Operands: [2]byte{0x42, 0}, Kind: OperandAddress, Address: 0x44},
        {Mode: ModeRelative, Operands: [2]byte{0x10, 0}, Kind: OperandAddress, Address: 0x1012},
        {Mode: ModeAbsolute, Operands: [2]byte{0x34, 0x12}, Kind: OperandAddress, Address: 0x1234},
        {Mode: ModeAbsoluteX, Operands: [2]byte{0x34, 0x12}, Kind: OperandAddress, Address: 0x1235},
        {Mode: ModeAbsoluteY, Operands: [2]byte{0x34, 0x12}, Kind: OperandAddress, Address: 0x1236},
    }

    for _, check := range cases {
        instruction := Instruction{Mode: check.Mode, Operands: check.Operands, Size: check.Mode.OperandLength()}
        operand := cpu.ResolveOperand(check.Mode, instruction)
        if operand.Kind != check.Kind {
            test.Fatalf("mode %v: kind expected to be %v but was %v", check.Mode, check.Kind, operand.Kind)
        }
        if operand.Address != check.Address {
            test.Fatalf("mode %v: address expected to be 0x%x but was 0x%x", check.Mode, check.Address, operand.Address)
        }
        if operand.Value != check.Value {
            test.Fatalf("mode %v: value expected to be 0x%x but was 0x%x", check.Mode, check.Value, operand.Value)
        }
    }
}

func TestOperandLength(test *testing.T){
    expected := map[AddressingMode]byte{
        ModeImplicit: 0,
        ModeAccumulator: 0,
        ModeImmediate: 1,
        ModeZeroPage: 1,
        ModeZeroPageX: 1,
        ModeZeroPageY: 1,
        ModeRelative: 1,
        ModeAbsolute: 2,
        ModeAbsoluteX: 2,
        ModeAbsoluteY: 2,
        ModeIndirect: 2,
        ModeIndirectX: 1,
        ModeIndirectY: 1,
    }

    for _, mode := range AllAddressingModes() {
        if mode.OperandLength() != expected[mode] {
            test.Fatalf("mode %v expected length %v but was %v", mode, expected[mode], mode.OperandLength())
        }
    }
}
