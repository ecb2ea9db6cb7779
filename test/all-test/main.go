package main

import (
    "flag"
    "log"
    "os"

    "github.com/kazzmir/m6502/test/all-test/functional"
    "github.com/kazzmir/m6502/test/all-test/programs"
)

func main(){
    log.SetFlags(log.Lshortfile | log.Lmicroseconds)

    debug := flag.Bool("debug", false, "trace every instruction")
    flag.Parse()

    passed := true

    ok, err := programs.Run(*debug)
    if err != nil {
        log.Printf("Error: programs failed with an error: %v", err)
    }
    if !ok {
        log.Printf("program tests failed")
        passed = false
    }

    ok, err = functional.Run(*debug)
    if err != nil {
        log.Printf("Error: functional test failed with an error: %v", err)
    }
    if !ok {
        log.Printf("functional test failed")
        passed = false
    }

    if !passed {
        os.Exit(1)
    }
}
