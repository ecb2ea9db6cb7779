package lib

import (
    "errors"
    "fmt"
)

/* the byte at Address is not a documented 6502 opcode */
type DecodeError struct {
    Address uint16
    Opcode byte
}

func (err *DecodeError) Error() string {
    return fmt.Sprintf("unknown instruction 0x%02x at 0x%04x", err.Opcode, err.Address)
}

/* a memory image segment that does not fit in the 64k address space */
type AddressResolutionError struct {
    Offset int
    Length int
}

func (err *AddressResolutionError) Error() string {
    return fmt.Sprintf("segment of %v bytes at 0x%04x runs past the end of memory", err.Length, err.Offset)
}

func IsDecodeError(err error) bool {
    var decode *DecodeError
    return errors.As(err, &decode)
}

func IsAddressResolutionError(err error) bool {
    var resolution *AddressResolutionError
    return errors.As(err, &resolution)
}
