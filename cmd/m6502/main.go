package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "io/fs"
    "log"
    "os"
    "os/signal"
    "path/filepath"
    "strings"

    "github.com/kazzmir/m6502/asm"
    "github.com/kazzmir/m6502/cmd/m6502/common"
    "github.com/kazzmir/m6502/cmd/m6502/debug"
    "github.com/kazzmir/m6502/disasm"
    "github.com/kazzmir/m6502/lib"
)

func usage(){
    fmt.Printf("Usage: %v <command> [options] file\n", filepath.Base(os.Args[0]))
    fmt.Printf("\n")
    fmt.Printf("Commands:\n")
    fmt.Printf("  run     execute a program (.s/.asm is assembled first, anything else is raw machine code)\n")
    fmt.Printf("  asm     assemble a source file into a binary\n")
    fmt.Printf("  disasm  disassemble a binary\n")
    fmt.Printf("  debug   step through a program in the terminal debugger\n")
    fmt.Printf("\n")
    fmt.Printf("Addresses may be given as $c000, 0xc000 or 49152\n")
    fmt.Printf("Run '%v <command> -h' to see the options of a command\n", filepath.Base(os.Args[0]))
}

/* parse the flags of a sub-command, which must be followed by exactly one file */
func parseCommand(flags *flag.FlagSet, arguments []string) (string, error) {
    err := flags.Parse(arguments)
    if err != nil {
        return "", err
    }
    if flags.NArg() != 1 {
        return "", fmt.Errorf("%v expects one file but got %v", flags.Name(), flags.NArg())
    }
    return flags.Arg(0), nil
}

func runCommand(config common.ConfigData, arguments []string) error {
    flags := flag.NewFlagSet("run", flag.ContinueOnError)
    origin := addressFlag{Value: config.Origin}
    var pc addressFlag
    var breakpoints addressList
    flags.Var(&origin, "org", "address the program is loaded at")
    flags.Var(&pc, "pc", "address execution starts at, defaults to the load address")
    flags.Var(&breakpoints, "break", "stop when PC reaches this address, may be repeated")
    maxSteps := flags.Uint64("steps", config.MaxSteps, "stop after this many instructions, 0 for no limit")
    trace := flags.Bool("trace", config.Trace, "print every instruction as it runs")
    debugLog := flags.Bool("debug", false, "log every instruction through the engine's debug output")
    untilRts := flags.Bool("until-rts", false, "stop after the first rts")
    trap := flags.Bool("trap", true, "stop when an instruction jumps to itself")
    statePath := flags.String("state", "", "write the final cpu state as json to this file")
    stateMemory := flags.Bool("state-memory", false, "include memory in the -state file")
    resume := flags.String("resume", "", "start from a cpu state written by -state")
    colorMode := flags.String("color", config.Color, "auto, always or never")

    path, err := parseCommand(flags, arguments)
    if err != nil {
        return err
    }

    program, err := loadProgram(path, origin.Value)
    if err != nil {
        return err
    }

    start := program.Start
    if pc.Given {
        start = pc.Value
    }

    var cpu *lib.CPUState
    if *resume != "" {
        cpu, err = resumeState(*resume, program)
    } else {
        cpu, err = program.MakeCPU(start)
    }
    if err != nil {
        return err
    }

    if *debugLog {
        cpu.Debug = 1
    }

    colored := setupColor(*colorMode)
    traceOptions := disasm.Options{Addresses: true, Bytes: true, Color: colored}

    debugger := debug.MakeDebugger()
    for _, address := range breakpoints {
        debugger.AddPCBreakpoint(address)
    }

    var stops []lib.StopFunc
    if *trace {
        stops = append(stops, func(cpu *lib.CPUState, last lib.Instruction) bool {
            fmt.Println(traceLine(last, cpu, traceOptions))
            return false
        })
    }
    if *untilRts {
        stops = append(stops, lib.StopAfter(lib.Instruction_RTS))
    }
    if *trap {
        stops = append(stops, lib.StopOnTrap())
    }
    stops = append(stops, debugger.StopPredicate())

    quit, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
    defer cancel()

    count, runErr := cpu.RunContext(quit, *maxSteps, lib.StopAny(stops...))

    switch {
        case errors.Is(runErr, context.Canceled):
            log.Printf("Interrupted")
            runErr = nil
        case runErr == nil && *maxSteps > 0 && count == *maxSteps:
            log.Printf("Stopped after the limit of %v instructions", count)
    }

    fmt.Printf("%v instructions\n", count)
    fmt.Println(registerColor(cpu.String()))

    if *statePath != "" {
        err = writeState(*statePath, cpu, *stateMemory)
        if err != nil {
            return err
        }
    }

    return runErr
}

/* registers come from the state file. the program is loaded on top of the
 * state's memory.
 */
func resumeState(path string, program *Program) (*lib.CPUState, error) {
    file, err := os.Open(path)
    if err != nil {
        return nil, err
    }
    defer file.Close()

    cpu, err := lib.LoadState(file)
    if err != nil {
        return nil, fmt.Errorf("%v: %w", path, err)
    }

    err = cpu.Memory.LoadImage(program.Segments)
    if err != nil {
        return nil, err
    }
    return cpu, nil
}

func writeState(path string, cpu *lib.CPUState, withMemory bool) error {
    file, err := os.Create(path)
    if err != nil {
        return err
    }
    defer file.Close()
    return cpu.Serialize(file, withMemory)
}

func asmCommand(config common.ConfigData, arguments []string) error {
    flags := flag.NewFlagSet("asm", flag.ContinueOnError)
    origin := addressFlag{Value: config.Origin}
    flags.Var(&origin, "org", "address of the code until the first .org")
    output := flags.String("o", "", "output file, defaults to the source name with .bin")
    showLabels := flags.Bool("labels", false, "print the label table")

    path, err := parseCommand(flags, arguments)
    if err != nil {
        return err
    }

    program, err := asm.AssembleFile(path, origin.Value)
    if err != nil {
        return err
    }

    out := *output
    if out == "" {
        out = strings.TrimSuffix(path, filepath.Ext(path)) + ".bin"
    }

    err = os.WriteFile(out, program.Bytes(), 0644)
    if err != nil {
        return err
    }

    log.Printf("Wrote %v bytes at $%04X to %v", len(program.Bytes()), program.Origin(), out)

    if *showLabels {
        for _, label := range program.Labels() {
            fmt.Printf("$%04X  %v\n", label.Value, label.Name)
        }
    }

    return nil
}

func disasmCommand(config common.ConfigData, arguments []string) error {
    flags := flag.NewFlagSet("disasm", flag.ContinueOnError)
    origin := addressFlag{Value: config.Origin}
    flags.Var(&origin, "org", "address the binary is loaded at")
    showBytes := flags.Bool("bytes", false, "show the address and raw byte columns")
    colorMode := flags.String("color", config.Color, "auto, always or never")

    path, err := parseCommand(flags, arguments)
    if err != nil {
        return err
    }

    code, err := os.ReadFile(path)
    if err != nil {
        return err
    }

    lines, err := disasm.Disassemble(code, origin.Value)
    if err != nil {
        return err
    }

    options := disasm.Options{
        Addresses: *showBytes,
        Bytes: *showBytes,
        Color: setupColor(*colorMode),
    }

    return disasm.Write(os.Stdout, lines, options)
}

func debugCommand(config common.ConfigData, arguments []string) error {
    flags := flag.NewFlagSet("debug", flag.ContinueOnError)
    origin := addressFlag{Value: config.Origin}
    var pc addressFlag
    flags.Var(&origin, "org", "address the program is loaded at")
    flags.Var(&pc, "pc", "address execution starts at, defaults to the load address")

    path, err := parseCommand(flags, arguments)
    if err != nil {
        return err
    }

    err = checkTerminal()
    if err != nil {
        return err
    }

    program, err := loadProgram(path, origin.Value)
    if err != nil {
        return err
    }

    start := program.Start
    if pc.Given {
        start = pc.Value
    }

    return runDebugger(config, program, start)
}

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds)

    if len(os.Args) < 2 {
        usage()
        os.Exit(1)
    }

    config, err := common.LoadConfigData()
    if err != nil && !errors.Is(err, fs.ErrNotExist) {
        log.Printf("Warning: using the default configuration: %v", err)
    }

    command := os.Args[1]
    arguments := os.Args[2:]

    switch command {
        case "run":
            err = runCommand(config, arguments)
        case "asm":
            err = asmCommand(config, arguments)
        case "disasm":
            err = disasmCommand(config, arguments)
        case "debug":
            err = debugCommand(config, arguments)
        case "help", "-h", "-help", "--help":
            usage()
            return
        default:
            fmt.Printf("Unknown command '%v'\n\n", command)
            usage()
            os.Exit(1)
    }

    if errors.Is(err, flag.ErrHelp) {
        return
    }

    if err != nil {
        log.Printf("Error: %v", err)
        os.Exit(1)
    }
}
