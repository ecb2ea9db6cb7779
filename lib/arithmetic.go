package lib

/* adc/sbc are kept as pure functions of their byte inputs so they can be
 * checked against every possible input without building a cpu.
 */

type ArithmeticResult struct {
    Value byte
    Carry bool
    Overflow bool
    Zero bool
    Negative bool
}

/* signed overflow happened when both inputs have the same sign and the
 * result has a different one. http://www.6502.org/tutorials/vflag.html
 */
func signedOverflow(a byte, b byte, result byte) bool {
    return (^(a ^ b) & (a ^ result) & 0x80) != 0
}

func makeResult(value byte, carry bool, overflow bool) ArithmeticResult {
    return ArithmeticResult{
        Value: value,
        Carry: carry,
        Overflow: overflow,
        Zero: value == 0,
        Negative: value & 0x80 != 0,
    }
}

func AddBinary(a byte, value byte, carry bool) ArithmeticResult {
    var carryBit uint16
    if carry {
        carryBit = 1
    }

    full := uint16(a) + uint16(value) + carryBit
    result := byte(full)
    return makeResult(result, full > 0xff, signedOverflow(a, value, result))
}

/* a - value - borrow is a + ^value + carry */
func SubtractBinary(a byte, value byte, carry bool) ArithmeticResult {
    return AddBinary(a, ^value, carry)
}

/* packed bcd addition. the low digit is corrected first and its carry fed
 * into the high digit, then the high digit is corrected.
 */
func AddDecimal(a byte, value byte, carry bool) ArithmeticResult {
    var carryBit uint16
    if carry {
        carryBit = 1
    }

    low := uint16(a & 0xf) + uint16(value & 0xf) + carryBit
    if low > 9 {
        low += 6
    }

    var lowCarry uint16
    if low > 0xf {
        lowCarry = 1
    }

    high := uint16(a >> 4) + uint16(value >> 4) + lowCarry

    /* nmos parts compute V from the high digit before it is adjusted */
    intermediate := byte((high << 4) | (low & 0xf))
    overflow := signedOverflow(a, value, intermediate)

    if high > 9 {
        high += 6
    }

    result := byte((high << 4) | (low & 0xf))
    return makeResult(result, high > 0xf, overflow)
}

func SubtractDecimal(a byte, value byte, carry bool) ArithmeticResult {
    borrow := 0
    if !carry {
        borrow = 1
    }

    low := int(a & 0xf) - int(value & 0xf) - borrow
    high := int(a >> 4) - int(value >> 4)
    if low < 0 {
        low += 10
        high -= 1
    }

    noBorrow := true
    if high < 0 {
        high += 10
        noBorrow = false
    }

    /* overflow is the same as the binary subtraction */
    binary := SubtractBinary(a, value, carry)

    result := byte((high << 4) | (low & 0xf))
    return makeResult(result, noBorrow, binary.Overflow)
}

func AddWithCarry(a byte, value byte, carry bool, decimal bool) ArithmeticResult {
    if decimal {
        return AddDecimal(a, value, carry)
    }
    return AddBinary(a, value, carry)
}

func SubtractWithCarry(a byte, value byte, carry bool, decimal bool) ArithmeticResult {
    if decimal {
        return SubtractDecimal(a, value, carry)
    }
    return SubtractBinary(a, value, carry)
}

/* register - value without storing the result */
func Compare(register byte, value byte) ArithmeticResult {
    result := register - value
    return makeResult(result, register >= value, false)
}
