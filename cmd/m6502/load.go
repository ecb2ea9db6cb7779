package main

import (
    "fmt"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    "github.com/kazzmir/m6502/asm"
    "github.com/kazzmir/m6502/lib"
)

/* a program ready to be put into memory, either assembled from source or
 * read as a raw binary
 */
type Program struct {
    Path string
    Segments []lib.Segment
    /* where execution begins unless -pc says otherwise */
    Start uint16
    Labels map[uint16]string
}

func isSource(path string) bool {
    switch strings.ToLower(filepath.Ext(path)) {
        case ".s", ".asm":
            return true
    }
    return false
}

func loadProgram(path string, origin uint16) (*Program, error) {
    if isSource(path) {
        assembled, err := asm.AssembleFile(path, origin)
        if err != nil {
            return nil, err
        }

        labels := make(map[uint16]string)
        for _, symbol := range assembled.Labels() {
            /* first label at an address wins */
            if _, ok := labels[symbol.Value]; !ok {
                labels[symbol.Value] = symbol.Name
            }
        }

        return &Program{
            Path: path,
            Segments: assembled.Segments,
            Start: assembled.Origin(),
            Labels: labels,
        }, nil
    }

    data, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }

    if int(origin) + len(data) > lib.MemorySize {
        return nil, fmt.Errorf("%v: %w", path, &lib.AddressResolutionError{Offset: int(origin), Length: len(data)})
    }

    return &Program{
        Path: path,
        Segments: []lib.Segment{{Address: origin, Data: data}},
        Start: origin,
    }, nil
}

func (program *Program) MakeCPU(pc uint16) (*lib.CPUState, error) {
    return lib.NewCPU(pc, program.Segments...)
}

/* accepts $c000, 0xc000 or 49152 */
func parseAddress(text string) (uint16, error) {
    base := 10
    digits := text
    switch {
        case strings.HasPrefix(text, "$"):
            base = 16
            digits = text[1:]
        case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
            base = 16
            digits = text[2:]
    }

    value, err := strconv.ParseUint(digits, base, 16)
    if err != nil {
        return 0, fmt.Errorf("invalid address '%v'", text)
    }
    return uint16(value), nil
}

/* a flag holding an address that remembers whether it was given */
type addressFlag struct {
    Value uint16
    Given bool
}

func (address *addressFlag) String() string {
    return fmt.Sprintf("$%04X", address.Value)
}

func (address *addressFlag) Set(text string) error {
    value, err := parseAddress(text)
    if err != nil {
        return err
    }
    address.Value = value
    address.Given = true
    return nil
}

/* repeatable address flag */
type addressList []uint16

func (list *addressList) String() string {
    var parts []string
    for _, address := range *list {
        parts = append(parts, fmt.Sprintf("$%04X", address))
    }
    return strings.Join(parts, ",")
}

func (list *addressList) Set(text string) error {
    value, err := parseAddress(text)
    if err != nil {
        return err
    }
    *list = append(*list, value)
    return nil
}
