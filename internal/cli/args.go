// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the top-level command to run.
type Command int

const (
	CmdTUI Command = iota // default: full-screen chat
	CmdChat               // plain REPL chat
	CmdInit               // write a default config file
	CmdVersion
	CmdHelp
)

// Args holds parsed command-line options.
type Args struct {
	// Model overrides the configured model identifier.
	Model string
}

// Parse reads os.Args and returns the command plus its options.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(rest []string) (Command, Args) {
	args := Args{}
	cmd := CmdTUI

	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		switch rest[0] {
		case "chat":
			cmd = CmdChat
		case "init":
			cmd = CmdInit
		case "version":
			cmd = CmdVersion
		case "help":
			cmd = CmdHelp
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", rest[0])
			cmd = CmdHelp
		}
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-m", "--model":
			if i+1 < len(rest) {
				args.Model = rest[i+1]
				i++
			}
		case "-h", "--help":
			cmd = CmdHelp
		case "-v", "--version":
			cmd = CmdVersion
		}
	}

	return cmd, args
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("webchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`webchat - streaming chat client

Usage:
  webchat [flags]          Start the full-screen chat interface
  webchat chat [flags]     Start a plain-terminal chat REPL
  webchat init             Write a default config file
  webchat version          Print version information
  webchat help             Show this help

Flags:
  -m, --model NAME    Use a specific model (overrides config)
  -h, --help          Show help
  -v, --version       Print version

Interactive commands (during chat):
  /history            Show the conversation so far
  /clear              Clear the conversation
  /status             Show session status
  /quit, /q           Exit chat
`)
}
