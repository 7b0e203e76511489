// Package cli provides command-line interface definitions using cobra, including all
// subcommands and their flag definitions.
package cli

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleConflict = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleSkipped  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleBranch   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
)

// isInteractive reports whether stdin/stdout are both real terminals; prompts are skipped
// (callers fall back to their default or to returning an error) when this is false, so
// `chain` behaves predictably under CI and scripting.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// confirm prompts y/n, defaulting to defaultYes when not interactive or when the user hits enter.
func confirm(message string, defaultYes bool) (bool, error) {
	if !isInteractive() {
		return defaultYes, nil
	}
	answer := defaultYes
	prompt := &survey.Confirm{Message: message, Default: defaultYes}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, fmt.Errorf("canceled")
	}
	return answer, nil
}

// selectOne prompts for one of options, returning options[0] when not interactive.
func selectOne(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options to choose from")
	}
	if !isInteractive() {
		return options[0], nil
	}
	var choice string
	prompt := &survey.Select{Message: message, Options: options}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", fmt.Errorf("canceled")
	}
	return choice, nil
}

func colorBranch(name string) string   { return styleBranch.Render(name) }
func colorSuccess(text string) string  { return styleSuccess.Render(text) }
func colorConflict(text string) string { return styleConflict.Render(text) }
func colorSkipped(text string) string  { return styleSkipped.Render(text) }
