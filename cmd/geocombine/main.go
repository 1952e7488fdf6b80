package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/geocombine/geocombine/internal/cli"
	"github.com/golang/glog"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			glog.Flush()
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cli.ExitPanic)
		}
	}()

	err := cli.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
