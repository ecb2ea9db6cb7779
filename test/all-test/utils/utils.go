package utils

import (
    "fmt"
    "github.com/fatih/color"
)

func Failure(message string) string {
    red := color.New(color.FgRed).SprintFunc()
    return fmt.Sprintf("%v %v", message, red("failed"))
}

func Success(message string) string {
    green := color.New(color.FgGreen).SprintFunc()
    return fmt.Sprintf("%v %v", message, green("passed"))
}

func Skipped(message string) string {
    yellow := color.New(color.FgYellow).SprintFunc()
    return fmt.Sprintf("%v %v", message, yellow("skipped"))
}

func Result(message string, ok bool) string {
    if ok {
        return Success(message)
    }
    return Failure(message)
}
