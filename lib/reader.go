package lib

import (
    "bytes"
    "fmt"
    "io"
)

/* decodes instructions out of a byte stream rather than out of cpu memory */
type InstructionReader struct {
    data *bytes.Reader
    origin uint16
    table *InstructionTable
}

/* origin is the address the first byte of data would be loaded at */
func NewInstructionReader(data []byte, origin uint16) *InstructionReader {
    return &InstructionReader{
        data: bytes.NewReader(data),
        origin: origin,
        table: MakeInstructionTable(),
    }
}

/* offset of the next byte to be read */
func (reader *InstructionReader) Offset() int {
    return int(reader.data.Size()) - reader.data.Len()
}

func (reader *InstructionReader) Address() uint16 {
    return reader.origin + uint16(reader.Offset())
}

/* read one instruction. returns io.EOF at the end of the data. on a
 * DecodeError the bad byte has already been consumed so the caller can
 * skip it and keep reading.
 */
func (reader *InstructionReader) ReadInstruction() (Instruction, error) {
    address := reader.Address()

    first, err := reader.data.ReadByte()
    if err != nil {
        return Instruction{}, err
    }

    kind := InstructionType(first)

    description, ok := reader.table.Lookup(kind)
    if !ok {
        return Instruction{}, &DecodeError{Address: address, Opcode: first}
    }

    out := Instruction{
        Name: description.Name,
        Kind: kind,
        Mode: description.Mode,
        Address: address,
        Size: description.Operands,
    }

    _, err = io.ReadFull(reader.data, out.Operands[:description.Operands])
    if err != nil {
        return Instruction{}, fmt.Errorf("unable to read %v operands for instruction %v at 0x%04x: %w", description.Operands, description.Name, address, err)
    }

    return out, nil
}
