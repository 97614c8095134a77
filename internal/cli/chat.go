// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the webchat CLI.
//
// Handles the "webchat chat" command: a line-oriented alternative to the
// full-screen TUI. Streamed responses print incrementally; Ctrl+C cancels
// the in-flight exchange, Ctrl+D or /quit exits.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/trustleast/webchat-tui/internal/client"
	"github.com/trustleast/webchat-tui/internal/model"
	"github.com/trustleast/webchat-tui/internal/store"
	"github.com/trustleast/webchat-tui/internal/ui/styles"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
)

// replInput wraps liner with persistent history.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newREPLInput(historyDir string) *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &replInput{
		line:        line,
		historyFile: filepath.Join(historyDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *replInput) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *replInput) close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// streamPrinter writes streamed response text incrementally. The response
// buffer is append-only within one attempt, so each partial prints only its
// new suffix; a status notice terminates the current line and resets the
// counter so the next partial re-prints the response from the start instead
// of continuing a broken line.
type streamPrinter struct {
	w       io.Writer
	printed int
}

func (p *streamPrinter) reset() {
	p.printed = 0
}

func (p *streamPrinter) partial(text string) {
	if len(text) < p.printed {
		// A retry attempt restarted the buffer from empty.
		p.printed = 0
	}
	if len(text) > p.printed {
		fmt.Fprint(p.w, text[p.printed:])
		p.printed = len(text)
	}
}

func (p *streamPrinter) status(message string) {
	if p.printed > 0 {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w, infoStyle.Render(message))
	p.printed = 0
}

// RunChat runs the interactive REPL over the given store and coordinator.
// historyDir is where the input history file lives.
func RunChat(st *store.Store, co *client.Coordinator, historyDir string) error {
	input := newREPLInput(historyDir)
	defer input.close()

	fmt.Println(welcomeStyle.Render("webchat " + Version))
	fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()

	printer := &streamPrinter{w: os.Stdout}
	co.WithCallbacks(client.Callbacks{
		RenderPartial: func(text, _ string) { printer.partial(text) },
		ReportStatus:  func(message string) { printer.status(message) },
	})

	for {
		line, err := input.read(promptStyle.Render("you> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			// io.EOF on Ctrl+D.
			fmt.Println()
			return nil
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := handleSlashCommand(text, st); quit {
				return nil
			}
			continue
		}

		st.Append(model.NewUserMessage(text))

		// Ctrl+C during the exchange cancels it; the coordinator rolls the
		// user turn back.
		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()

		printer.reset()
		ok := co.Send(ctx)
		cancel()
		signal.Stop(sigCh)

		if ok && printer.printed > 0 {
			fmt.Println()
		}
		fmt.Println()
	}
}

// handleSlashCommand dispatches an interactive /command. Returns true when
// the session should end.
func handleSlashCommand(text string, st *store.Store) bool {
	cmd := strings.Fields(text)[0]
	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/clear", "/c":
		st.Clear()
		fmt.Println(infoStyle.Render("Conversation cleared."))

	case "/history":
		msgs := st.Messages()
		if len(msgs) == 0 {
			fmt.Println(infoStyle.Render("No messages yet."))
			break
		}
		for _, m := range msgs {
			label := m.Role.DisplayName()
			if m.Role == model.RoleAssistant && m.Model != "" {
				label += " (" + m.Model + ")"
			}
			fmt.Printf("%s: %s\n", promptStyle.Render(label), m.Preview(120))
		}

	case "/status", "/s":
		fmt.Println(infoStyle.Render(fmt.Sprintf("%d messages in conversation, stored at %s", st.Len(), st.Path())))

	case "/help", "/h":
		fmt.Println(infoStyle.Render("/history  show conversation\n/clear    clear conversation\n/status   session status\n/quit     exit"))

	default:
		fmt.Println(warningStyle.Render("Unknown command: " + cmd))
	}
	return false
}
