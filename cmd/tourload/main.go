package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/tourload/internal/cli"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(tourload.ExitPanic)
		}
	}()

	if os.Getenv("TOURLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(tourload.ExitCodeForError(err))
	}
}
