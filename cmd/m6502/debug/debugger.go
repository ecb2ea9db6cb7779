package debug

import (
    "context"
    "log"
    "sort"
    "sync"

    "github.com/kazzmir/m6502/lib"
)

type DebugCommand interface {
    Name() string
}

type DebugCommandSimple struct {
    name string
}

func (command *DebugCommandSimple) Name() string {
    return command.name
}

func makeCommand(name string) DebugCommand {
    return &DebugCommandSimple{name: name}
}

var DebugCommandStep DebugCommand = makeCommand("step")
var DebugCommandContinue DebugCommand = makeCommand("continue")

/* break when the cpu's PC is at a specific value */
type Breakpoint struct {
    PC uint16
    Id uint64
}

func (breakpoint *Breakpoint) Hit(cpu *lib.CPUState) bool {
    return breakpoint.PC == cpu.PC
}

type Debugger interface {
    /* called before every instruction. returns false if the cpu should
     * not run anymore.
     */
    Handle(quit context.Context, cpu *lib.CPUState) bool
}

type DefaultDebugger struct {
    Commands chan DebugCommand
    Stopped bool
    Breakpoints []Breakpoint
    BreakpointId uint64

    /* called from the running thread each time execution is paused */
    OnStop func(cpu *lib.CPUState)

    lock sync.Mutex
}

func (debugger *DefaultDebugger) IsStopped() bool {
    debugger.lock.Lock()
    defer debugger.lock.Unlock()
    return debugger.Stopped
}

func (debugger *DefaultDebugger) ContinueUntilBreak(){
    debugger.lock.Lock()
    defer debugger.lock.Unlock()
    debugger.Stopped = false
}

func (debugger *DefaultDebugger) Stop(){
    debugger.lock.Lock()
    defer debugger.lock.Unlock()
    debugger.Stopped = true
}

/* returns the id of the new breakpoint. adding the same PC twice returns
 * the existing id.
 */
func (debugger *DefaultDebugger) AddPCBreakpoint(pc uint16) uint64 {
    debugger.lock.Lock()
    defer debugger.lock.Unlock()
    return debugger.addBreakpoint(pc)
}

func (debugger *DefaultDebugger) RemoveBreakpoint(id uint64){
    debugger.lock.Lock()
    defer debugger.lock.Unlock()
    debugger.removeBreakpoint(id)
}

/* add a breakpoint at pc, or remove the one that is already there.
 * returns true if pc now has a breakpoint.
 */
func (debugger *DefaultDebugger) Toggle(pc uint16) bool {
    debugger.lock.Lock()
    defer debugger.lock.Unlock()

    for _, breakpoint := range debugger.Breakpoints {
        if breakpoint.PC == pc {
            debugger.removeBreakpoint(breakpoint.Id)
            return false
        }
    }

    debugger.addBreakpoint(pc)
    return true
}

/* must hold the lock */
func (debugger *DefaultDebugger) addBreakpoint(pc uint16) uint64 {
    for _, breakpoint := range debugger.Breakpoints {
        if breakpoint.PC == pc {
            return breakpoint.Id
        }
    }

    id := debugger.BreakpointId
    debugger.Breakpoints = append(debugger.Breakpoints, Breakpoint{
        PC: pc,
        Id: id,
    })
    debugger.BreakpointId += 1
    return id
}

/* must hold the lock */
func (debugger *DefaultDebugger) removeBreakpoint(id uint64){
    var out []Breakpoint
    for _, breakpoint := range debugger.Breakpoints {
        if breakpoint.Id != id {
            out = append(out, breakpoint)
        }
    }
    debugger.Breakpoints = out
}

/* the breakpoints ordered by address */
func (debugger *DefaultDebugger) List() []Breakpoint {
    debugger.lock.Lock()
    out := make([]Breakpoint, len(debugger.Breakpoints))
    copy(out, debugger.Breakpoints)
    debugger.lock.Unlock()

    sort.Slice(out, func(i, j int) bool {
        return out[i].PC < out[j].PC
    })
    return out
}

func (debugger *DefaultDebugger) hitBreakpoint(cpu *lib.CPUState) (Breakpoint, bool) {
    debugger.lock.Lock()
    defer debugger.lock.Unlock()

    for _, breakpoint := range debugger.Breakpoints {
        if breakpoint.Hit(cpu) {
            return breakpoint, true
        }
    }
    return Breakpoint{}, false
}

/* a stop predicate for lib's Run that fires when PC lands on a breakpoint */
func (debugger *DefaultDebugger) StopPredicate() lib.StopFunc {
    return func(cpu *lib.CPUState, last lib.Instruction) bool {
        _, hit := debugger.hitBreakpoint(cpu)
        return hit
    }
}

/* breakpoints are checked before the instruction at PC runs. once stopped
 * this blocks until a command arrives or quit is cancelled. the instruction
 * at the stopped PC always runs after a command, so continuing from a
 * breakpoint does not hit the same breakpoint again.
 */
func (debugger *DefaultDebugger) Handle(quit context.Context, cpu *lib.CPUState) bool {
    if !debugger.IsStopped() {
        breakpoint, hit := debugger.hitBreakpoint(cpu)
        if !hit {
            select {
                case <-quit.Done():
                    return false
                default:
                    return true
            }
        }
        log.Printf("[debug] breakpoint %v at 0x%04x", breakpoint.Id, breakpoint.PC)
        debugger.Stop()
    }

    if debugger.OnStop != nil {
        debugger.OnStop(cpu)
    }

    select {
        case <-quit.Done():
            return false
        case command := <-debugger.Commands:
            if command == DebugCommandStep {
                log.Printf("[debug] step")
                return true
            }
            if command == DebugCommandContinue {
                log.Printf("[debug] continue")
                debugger.ContinueUntilBreak()
                return true
            }
            log.Printf("[debug] unknown command %v", command.Name())
            return true
    }
}

/* step the cpu under the control of debugger until quit is cancelled or
 * an instruction fails
 */
func Run(quit context.Context, cpu *lib.CPUState, debugger Debugger) error {
    for debugger.Handle(quit, cpu) {
        _, err := cpu.Step()
        if err != nil {
            return err
        }
    }
    return nil
}

/* a debugger that starts out stopped */
func MakeDebugger() *DefaultDebugger {
    return &DefaultDebugger{
        Commands: make(chan DebugCommand, 5),
        Stopped: true,
        BreakpointId: 1,
    }
}
