package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const usage = `usage: audiocryptor <command> [flags]

commands:
  serve     run the HTTP API
  encode    hide an encrypted message in an audio file
  decode    recover a hidden message
  capacity  report how much fits in an audio file
  analyze   probe an audio file for an embedded payload
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(command string, args []string, stdout io.Writer) error {
	switch command {
	case "serve":
		return handleServe(args)
	case "encode":
		return handleEncode(args, stdout)
	case "decode":
		return handleDecode(args, stdout)
	case "capacity":
		return handleCapacity(args, stdout)
	case "analyze":
		return handleAnalyze(args, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", command, usage)
}
