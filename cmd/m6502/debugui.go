package main

import (
    "context"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "sync"

    "github.com/kazzmir/m6502/cmd/m6502/common"
    "github.com/kazzmir/m6502/cmd/m6502/debug"
    "github.com/kazzmir/m6502/cmd/m6502/thread"
    "github.com/kazzmir/m6502/disasm"
    "github.com/kazzmir/m6502/lib"

    "github.com/jroimartin/gocui"
    "golang.org/x/term"
)

const minimumWidth = 80
const minimumHeight = 24

/* the most lines kept in the log view */
const maxLogLines = 500

const helpText = "s step  c continue  p pause  b breakpoint  up/down select  [ ] memory  r reset  q quit"

func checkTerminal() error {
    fd := int(os.Stdout.Fd())
    if !term.IsTerminal(fd) {
        return fmt.Errorf("the debugger needs a terminal")
    }

    width, height, err := term.GetSize(fd)
    if err != nil {
        return err
    }

    if width < minimumWidth || height < minimumHeight {
        return fmt.Errorf("terminal is %vx%v but the debugger needs at least %vx%v", width, height, minimumWidth, minimumHeight)
    }

    return nil
}

type debugUI struct {
    gui *gocui.Gui
    group *thread.ThreadGroup

    cpu *lib.CPUState
    debugger *debug.DefaultDebugger
    program *Program
    start uint16

    config common.ConfigData
    configKey string

    /* everything below is only touched by the gui thread */

    /* copy of the cpu taken the last time it stopped */
    snapshot lib.CPUState
    /* the runner is blocked waiting for a command */
    waiting bool
    /* the runner exited, with the error that stopped it */
    halted bool
    haltError error

    memoryAddress uint16
    cursor int
    lines []disasm.Line

    logLock sync.Mutex
    logLines []string
}

/* log output goes to the log view while the debugger is up */
func (ui *debugUI) Write(data []byte) (int, error) {
    ui.logLock.Lock()
    for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
        ui.logLines = append(ui.logLines, line)
    }
    if len(ui.logLines) > maxLogLines {
        ui.logLines = ui.logLines[len(ui.logLines) - maxLogLines:]
    }
    ui.logLock.Unlock()

    ui.gui.Update(func(*gocui.Gui) error {
        return nil
    })

    return len(data), nil
}

/* start the thread that executes instructions under the debugger */
func (ui *debugUI) spawnRunner(){
    ui.halted = false
    ui.haltError = nil
    ui.debugger.Stop()

    ui.group.Spawn(func(quit context.Context){
        err := debug.Run(quit, ui.cpu, ui.debugger)
        if quit.Err() != nil {
            return
        }

        snapshot := ui.cpu.Copy()
        if err != nil {
            log.Printf("Stopped: %v", err)
        }
        ui.gui.Update(func(*gocui.Gui) error {
            ui.snapshot = snapshot
            ui.waiting = false
            ui.halted = true
            ui.haltError = err
            return nil
        })
    })
}

/* called from the runner thread, which does not touch the cpu again until
 * it receives a command
 */
func (ui *debugUI) onStop(cpu *lib.CPUState){
    snapshot := cpu.Copy()
    ui.gui.Update(func(*gocui.Gui) error {
        ui.snapshot = snapshot
        ui.waiting = true
        return nil
    })
}

func (ui *debugUI) send(command debug.DebugCommand){
    if !ui.waiting {
        return
    }
    select {
        case ui.debugger.Commands <- command:
            ui.waiting = false
        default:
    }
}

func (ui *debugUI) state() string {
    switch {
        case ui.halted && ui.haltError != nil:
            return fmt.Sprintf("halted: %v", ui.haltError)
        case ui.halted:
            return "halted"
        case ui.waiting:
            return "stopped"
    }
    return "running"
}

func (ui *debugUI) drawRegisters(view *gocui.View){
    cpu := &ui.snapshot
    view.Clear()
    fmt.Fprintf(view, " PC:%04X  A:%02X  X:%02X  Y:%02X  SP:%02X\n", cpu.PC, cpu.A, cpu.X, cpu.Y, cpu.SP)
    fmt.Fprintf(view, " P:%02X  %v\n", cpu.Status, flagString(cpu.Status))
    fmt.Fprintf(view, " %v\n", ui.state())
}

func (ui *debugUI) hasBreakpoint(address uint16) bool {
    for _, breakpoint := range ui.debugger.List() {
        if breakpoint.PC == address {
            return true
        }
    }
    return false
}

func (ui *debugUI) drawDisassembly(view *gocui.View){
    view.Clear()

    _, rows := view.Size()
    if rows < 1 || ui.snapshot.Memory == nil {
        return
    }

    ui.lines = disasm.DisassembleMemory(ui.snapshot.Memory, ui.snapshot.PC, rows)
    if ui.cursor >= len(ui.lines) {
        ui.cursor = len(ui.lines) - 1
    }
    if ui.cursor < 0 {
        ui.cursor = 0
    }

    options := disasm.Options{Addresses: true, Bytes: true}
    for _, line := range ui.lines {
        marker := " "
        if line.Address == ui.snapshot.PC {
            marker = ">"
        }
        breakpoint := " "
        if ui.hasBreakpoint(line.Address) {
            breakpoint = "*"
        }
        fmt.Fprintf(view, "%v%v %-8s %v\n", marker, breakpoint, ui.program.Labels[line.Address], options.FormatLine(line))
    }

    view.SetCursor(0, ui.cursor)
}

func (ui *debugUI) drawMemory(view *gocui.View){
    view.Clear()
    if ui.snapshot.Memory == nil {
        return
    }

    view.Title = fmt.Sprintf("Memory $%04X", ui.memoryAddress)
    _, rows := view.Size()
    for row := 0; row < rows; row++ {
        address := ui.memoryAddress + uint16(row * 8)
        var hex []string
        for i := uint16(0); i < 8; i++ {
            hex = append(hex, fmt.Sprintf("%02X", ui.snapshot.Memory.Load(address + i)))
        }
        fmt.Fprintf(view, "%04X: %v\n", address, strings.Join(hex, " "))
    }
}

func (ui *debugUI) drawLog(view *gocui.View){
    view.Clear()

    _, rows := view.Size()
    ui.logLock.Lock()
    lines := ui.logLines
    if len(lines) > rows {
        lines = lines[len(lines) - rows:]
    }
    for _, line := range lines {
        fmt.Fprintln(view, line)
    }
    ui.logLock.Unlock()
}

/* create the view the first time, return it every time */
func makeView(gui *gocui.Gui, name string, title string, x0, y0, x1, y1 int) (*gocui.View, error) {
    view, err := gui.SetView(name, x0, y0, x1, y1)
    if err != nil {
        if err != gocui.ErrUnknownView {
            return nil, err
        }
        view.Title = title
    }
    return view, nil
}

func (ui *debugUI) layout(gui *gocui.Gui) error {
    width, height := gui.Size()
    split := width / 2 + 8
    logTop := height - 9

    registers, err := makeView(gui, "registers", "Registers", 0, 0, split - 1, 4)
    if err != nil {
        return err
    }
    ui.drawRegisters(registers)

    disassembly, err := makeView(gui, "disassembly", "Code", 0, 5, split - 1, logTop - 1)
    if err != nil {
        return err
    }
    disassembly.Highlight = true
    disassembly.SelBgColor = gocui.ColorBlue
    ui.drawDisassembly(disassembly)

    memory, err := makeView(gui, "memory", "Memory", split, 0, width - 1, logTop - 1)
    if err != nil {
        return err
    }
    ui.drawMemory(memory)

    logView, err := makeView(gui, "log", helpText, 0, logTop, width - 1, height - 1)
    if err != nil {
        return err
    }
    ui.drawLog(logView)

    return nil
}

func (ui *debugUI) toggleBreakpoint(){
    if ui.cursor >= len(ui.lines) {
        return
    }

    address := ui.lines[ui.cursor].Address
    if ui.debugger.Toggle(address) {
        log.Printf("Breakpoint set at $%04X", address)
    } else {
        log.Printf("Breakpoint removed at $%04X", address)
    }

    var addresses []uint16
    for _, breakpoint := range ui.debugger.List() {
        addresses = append(addresses, breakpoint.PC)
    }
    ui.config.SetBreakpoints(ui.configKey, addresses)
    err := common.SaveConfigData(ui.config)
    if err != nil {
        log.Printf("Could not save breakpoints: %v", err)
    }
}

/* reload the program and start over. only allowed while the runner is
 * not executing.
 */
func (ui *debugUI) reset(){
    if !ui.waiting && !ui.halted {
        log.Printf("Pause before resetting")
        return
    }

    ui.cpu.Memory.Reset()
    err := ui.cpu.Memory.LoadImage(ui.program.Segments)
    if err != nil {
        log.Printf("Could not reload the program: %v", err)
        return
    }
    ui.cpu.ResetTo(ui.start)
    ui.snapshot = ui.cpu.Copy()
    ui.cursor = 0
    log.Printf("Reset to $%04X", ui.start)

    if ui.halted {
        ui.spawnRunner()
    }
}

func (ui *debugUI) bindKeys() error {
    type binding struct {
        Key interface{}
        Action func()
    }

    bindings := []binding{
        {'s', func(){ ui.send(debug.DebugCommandStep) }},
        {gocui.KeySpace, func(){ ui.send(debug.DebugCommandStep) }},
        {'c', func(){ ui.send(debug.DebugCommandContinue) }},
        {'p', func(){ ui.debugger.Stop() }},
        {'b', ui.toggleBreakpoint},
        {'r', ui.reset},
        {gocui.KeyArrowUp, func(){ ui.cursor -= 1 }},
        {gocui.KeyArrowDown, func(){ ui.cursor += 1 }},
        {'[', func(){ ui.memoryAddress -= 0x80 }},
        {']', func(){ ui.memoryAddress += 0x80 }},
    }

    for _, use := range bindings {
        action := use.Action
        err := ui.gui.SetKeybinding("", use.Key, gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
            action()
            return nil
        })
        if err != nil {
            return err
        }
    }

    quit := func(*gocui.Gui, *gocui.View) error {
        return gocui.ErrQuit
    }

    err := ui.gui.SetKeybinding("", 'q', gocui.ModNone, quit)
    if err != nil {
        return err
    }
    return ui.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit)
}

func runDebugger(config common.ConfigData, program *Program, start uint16) error {
    cpu, err := program.MakeCPU(start)
    if err != nil {
        return err
    }

    key, err := filepath.Abs(program.Path)
    if err != nil {
        key = program.Path
    }

    debugger := debug.MakeDebugger()
    for _, address := range config.GetBreakpoints(key) {
        debugger.AddPCBreakpoint(address)
    }

    gui, err := gocui.NewGui(gocui.OutputNormal)
    if err != nil {
        return err
    }
    defer gui.Close()

    group := thread.NewThreadGroup(context.Background())

    ui := &debugUI{
        gui: gui,
        group: group,
        cpu: cpu,
        debugger: debugger,
        program: program,
        start: start,
        config: config,
        configKey: key,
        snapshot: cpu.Copy(),
    }
    debugger.OnStop = ui.onStop

    log.SetOutput(ui)
    log.SetFlags(log.Ltime)
    defer func(){
        log.SetOutput(os.Stderr)
        log.SetFlags(log.Lshortfile | log.Lmicroseconds)
    }()

    gui.SetManagerFunc(ui.layout)

    err = ui.bindKeys()
    if err != nil {
        return err
    }

    log.Printf("Loaded %v at $%04X", filepath.Base(program.Path), start)
    ui.spawnRunner()

    err = gui.MainLoop()

    group.Stop()

    if err != nil && !errors.Is(err, gocui.ErrQuit) {
        return err
    }
    return nil
}
