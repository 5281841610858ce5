// Package main provides the formdump CLI, which decodes raw multipart/form-data bodies.
//
// Usage:
//
//	formdump decode [options] FILE|-
//
// Exit codes:
//   - 0: success
//   - 1: internal failure (I/O, storage)
//   - 2: the body is malformed or exceeds the configured limits
//   - 3: invalid usage
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set via ldflags at build time.
var version = "dev"

const (
	exitInternal  = 1
	exitMalformed = 2
	exitUsage     = 3
)

func main() {
	app := &cli.App{
		Name:           "formdump",
		Usage:          "Inspect and unpack multipart/form-data bodies",
		Version:        version,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			decodeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(exitInternal)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		if msg := exitCoder.Error(); msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitInternal)
}
