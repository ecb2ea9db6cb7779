package functional

import (
    "errors"
    "io/fs"
    "log"
    "os"

    "github.com/kazzmir/m6502/lib"
    test_utils "github.com/kazzmir/m6502/test/all-test/utils"
)

/* Run Klaus Dormann's 6502 functional test. Assemble it with its default
 * options and put the 64k image at test-roms/6502_functional_test.bin.
 * The test starts at 0x400 and loops on itself at SuccessAddress when
 * every check passed. Any other self loop is a failure.
 */

const RomPath = "test-roms/6502_functional_test.bin"
const StartAddress = 0x0400
const SuccessAddress = 0x3469

/* the full test runs around 30 million instructions */
const maxSteps = 100_000_000

func doTest(image []byte, debug bool) (bool, error) {
    cpu, err := lib.NewCPU(StartAddress, lib.Segment{Address: 0, Data: image})
    if err != nil {
        return false, err
    }

    if debug {
        cpu.Debug = 1
    }

    count, err := cpu.Run(maxSteps, lib.StopOnTrap())
    if err != nil {
        return false, err
    }

    if cpu.PC != SuccessAddress {
        log.Printf("Trapped at 0x%04x after %v instructions", cpu.PC, count)
        return false, nil
    }

    return true, nil
}

func Run(debug bool) (bool, error) {
    image, err := os.ReadFile(RomPath)
    if errors.Is(err, fs.ErrNotExist) {
        log.Print(test_utils.Skipped("6502 functional test"))
        return true, nil
    }
    if err != nil {
        return false, err
    }

    ok, err := doTest(image, debug)
    if err != nil {
        return false, err
    }

    log.Print(test_utils.Result("6502 functional test", ok))
    return ok, nil
}
