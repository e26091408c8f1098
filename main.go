package main

import (
	"fmt"
	"os"

	"t0ast.cc/floorpier/cli"
	uerror "t0ast.cc/floorpier/util/error"
)

func main() {
	err := cli.Run(os.Args)
	if err != nil {
		if cli.CLI.Verbose {
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			fmt.Fprintln(os.Stderr, uerror.Message(err))
		}
		if exitCode, hasExitCode := uerror.GetExitCode(err); hasExitCode {
			os.Exit(int(exitCode))
		}
		os.Exit(int(uerror.ExitCodeGeneric))
	}
}
