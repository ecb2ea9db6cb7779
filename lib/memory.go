package lib

/* the 6502 sees a flat 64k address space. addresses are uint16 so every
 * index is in range and all address arithmetic wraps at 0xffff.
 */
const MemorySize = 0x10000

type Memory struct {
    Data [MemorySize]byte
}

/* a chunk of a program image to be placed at Address */
type Segment struct {
    Address uint16
    Data []byte
}

func NewMemory() *Memory {
    /* by default the data initializes to all 0's */
    return &Memory{}
}

func (memory *Memory) Load(address uint16) byte {
    return memory.Data[address]
}

func (memory *Memory) Store(address uint16, value byte){
    memory.Data[address] = value
}

/* little endian: low byte at address, high byte at address+1. each byte
 * fetch wraps independently, so reading at 0xffff takes the high byte from 0x0000
 */
func (memory *Memory) LoadWord(address uint16) uint16 {
    low := uint16(memory.Data[address])
    high := uint16(memory.Data[address + 1])
    return (high << 8) | low
}

func (memory *Memory) StoreWord(address uint16, value uint16){
    memory.Data[address] = byte(value & 0xff)
    memory.Data[address + 1] = byte(value >> 8)
}

/* check that a segment of the given length fits in the address space
 * without wrapping around past 0xffff
 */
func checkSegment(address uint16, length int) error {
    if int(address) + length > MemorySize {
        return &AddressResolutionError{Offset: int(address), Length: length}
    }
    return nil
}

/* copy data into memory starting at address. nothing is written if the
 * data would run off the end of the address space.
 */
func (memory *Memory) WriteSegment(address uint16, data []byte) error {
    err := checkSegment(address, len(data))
    if err != nil {
        return err
    }

    copy(memory.Data[address:], data)
    return nil
}

func (memory *Memory) LoadImage(segments []Segment) error {
    /* validate everything first so a bad image leaves memory untouched */
    for _, segment := range segments {
        err := checkSegment(segment.Address, len(segment.Data))
        if err != nil {
            return err
        }
    }

    for _, segment := range segments {
        copy(memory.Data[segment.Address:], segment.Data)
    }

    return nil
}

/* returns the 256 bytes of the given page. the slice aliases the memory */
func (memory *Memory) Page(page byte) []byte {
    start := int(page) << 8
    return memory.Data[start:start + 256]
}

func (memory *Memory) Reset() {
    memory.Data = [MemorySize]byte{}
}

func (memory *Memory) Copy() *Memory {
    out := *memory
    return &out
}
