package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"codesight/internal/apperr"
	"codesight/internal/files"
	"codesight/internal/models"
	"codesight/internal/sniff"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Clipboard access, replaceable in tests.
var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

const helpText = "/attach <file>  /paste  /agent [xt|sentinel]  /copy  /save [dir]  /code  /files [dir]  /clear  /quit"

func parseCommand(input string) (name, arg string) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	name, arg, _ = strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// describe strips the kind prefix from typed errors for display.
func describe(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), string(apperr.KindOf(err))+": ")
}

func (m *Model) fail(what string, err error) tea.Cmd {
	m.Log.Warn(strings.ToLower(what), zap.Error(err))
	return m.notify(what + ": " + describe(err))
}

func (m *Model) runCommand(input string) tea.Cmd {
	ctx := context.Background()
	name, arg := parseCommand(input)

	switch name {
	case "attach":
		if arg == "" {
			return m.notify("Usage: /attach <file>")
		}
		code, err := files.ReadCode(arg)
		if err != nil {
			return m.fail("Attach failed", err)
		}
		if err := m.Session.Attach(ctx, code); err != nil {
			return m.fail("Attach failed", err)
		}
		m.UpdateViewport()
		return m.notify(files.Summary(arg, code))

	case "paste":
		code, err := readClipboard()
		if err != nil {
			return m.fail("Paste failed", err)
		}
		if err := m.Session.Attach(ctx, code); err != nil {
			return m.fail("Paste failed", err)
		}
		m.UpdateViewport()
		return m.notify("Code pasted")

	case "agent":
		agent := m.Session.Agent().Next()
		if arg != "" {
			a, ok := models.ParseAgent(arg)
			if !ok {
				return m.notify(fmt.Sprintf("Unknown agent %q", arg))
			}
			agent = a
		}
		if err := m.Session.SelectAgent(ctx, agent); err != nil {
			return m.fail("Switch failed", err)
		}
		m.UpdateViewport()
		return m.notify("Talking to " + agent.DisplayName())

	case "clear", "reset":
		if err := m.Session.Clear(ctx); err != nil {
			return m.fail("Clear failed", err)
		}
		m.ShowCode = false
		m.UpdateViewport()
		return m.notify("Chat cleared")

	case "copy":
		out := m.Session.OutputCode()
		if out == "" {
			return m.notify("No optimized code to copy")
		}
		if err := writeClipboard(out); err != nil {
			return m.fail("Copy failed", err)
		}
		return m.notify("Code copied")

	case "save", "download":
		dir := arg
		if dir == "" {
			dir = m.SaveDir
		}
		out := m.Session.OutputCode()
		path, err := files.SaveOutput(dir, out, sniff.Detect(out), m.now())
		if err != nil {
			return m.fail("Save failed", err)
		}
		m.Log.Info("saved optimized code", zap.String("path", path))
		return m.notify("Code downloaded to " + path)

	case "code":
		m.ShowCode = !m.ShowCode
		m.UpdateViewport()
		return nil

	case "files":
		found, err := files.ListCode(arg)
		if err != nil {
			return m.fail("List failed", err)
		}
		if len(found) == 0 {
			return m.notify("No code files found")
		}
		names := make([]string, 0, 5)
		for i, f := range found {
			if i == 5 {
				names = append(names, fmt.Sprintf("+%d more", len(found)-5))
				break
			}
			names = append(names, filepath.Base(f))
		}
		return m.notify(strings.Join(names, ", "))

	case "help", "?":
		return m.notify(helpText)

	case "quit", "exit":
		return tea.Quit

	default:
		return m.notify(fmt.Sprintf("Unknown command /%s. Try /help", name))
	}
}
