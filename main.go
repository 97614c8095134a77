// webchat TUI - a terminal client for a streaming chat-completion service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/trustleast/webchat-tui/internal/auth"
	"github.com/trustleast/webchat-tui/internal/cli"
	"github.com/trustleast/webchat-tui/internal/client"
	"github.com/trustleast/webchat-tui/internal/config"
	"github.com/trustleast/webchat-tui/internal/store"
	"github.com/trustleast/webchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdInit:
		path, err := config.WriteDefault()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", path)

	case cli.CmdVersion:
		cli.HandleVersion()

	case cli.CmdHelp:
		cli.HandleHelp()

	case cli.CmdChat:
		runREPL(args)

	default:
		runTUI(args)
	}
}

// setup loads configuration and wires the store, credential watcher and
// retry coordinator shared by both frontends.
func setup(args cli.Args) (*config.Config, *store.Store, *client.Coordinator) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if args.Model != "" {
		cfg.Service.Model = args.Model
	}

	st := store.New(cfg.History.StoragePath)
	st.Load()

	creds := auth.NewHolder(cfg.Auth.CredentialPath)
	creds.Watch(context.Background())

	cl := client.New(cfg.Service.Endpoint).
		WithModel(cfg.Service.Model).
		WithRedirectPath(cfg.Service.RedirectPath)

	co := client.NewCoordinator(st, cl, creds, navigator(cfg.Service.Endpoint), client.Callbacks{}).
		WithWindowSize(cfg.History.WindowSize).
		WithMaxAttempts(cfg.Retry.MaxAttempts).
		WithBaseDelay(cfg.Retry.BaseDelay())

	return cfg, st, co
}

// navigator returns the auth-redirect handler: resolve the target against
// the service endpoint and hand it to the system browser so the external
// auth flow can run. The flow writes the credential file on completion,
// which the watcher picks up.
func navigator(endpoint string) func(target string) {
	return func(target string) {
		full := resolveRedirect(endpoint, target)
		log.Printf("auth: redirecting to %s", full)
		if err := openBrowser(full); err != nil {
			log.Printf("auth: could not open browser: %v", err)
		}
	}
}

// resolveRedirect makes a relative Location absolute against the endpoint.
func resolveRedirect(endpoint, target string) string {
	base, err := url.Parse(endpoint)
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

func openBrowser(u string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u).Start()
	default:
		return exec.Command("xdg-open", u).Start()
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: not a terminal; use 'webchat chat' in a terminal session")
		os.Exit(1)
	}

	// The alternate screen owns stdout; send the standard logger to a file.
	logPath := filepath.Join(filepath.Dir(config.ConfigPath()), "webchat.log")
	if f, err := tea.LogToFile(logPath, "webchat"); err == nil {
		defer f.Close()
	}

	_, st, co := setup(args)

	p := tea.NewProgram(
		chat.New(st, co),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running webchat: %v\n", err)
		os.Exit(1)
	}
}

// runREPL starts the plain-terminal chat loop.
func runREPL(args cli.Args) {
	_, st, co := setup(args)

	historyDir := filepath.Dir(config.ConfigPath())
	if err := os.MkdirAll(historyDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.RunChat(st, co, historyDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
