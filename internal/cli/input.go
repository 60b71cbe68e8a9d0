package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readPIN prompts on the command's error stream and reads a PIN without
// echo. When stdin is not a terminal a single line is read instead, so
// scripts can pipe the PIN in.
func (a *App) readPIN(cmd *cobra.Command, prompt string) (string, error) {
	w := cmd.ErrOrStderr()
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}

	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		pin, err := readPassword(fd)
		defer clear(pin)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(pin)), nil
	}

	line, err := a.input(cmd).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", fmt.Errorf("read PIN: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// input returns the buffered command input shared by every prompt.
func (a *App) input(cmd *cobra.Command) *bufio.Reader {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return a.stdin
}

// requireUnlocked asks for the PIN when security is enabled.
func (a *App) requireUnlocked(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if !a.settings.Locked(ctx) {
		return nil
	}
	pin, err := a.readPIN(cmd, "PIN: ")
	if err != nil {
		return err
	}
	if err := a.settings.Unlock(ctx, pin); err != nil {
		if errors.Is(err, common.ErrLocked) {
			return fmt.Errorf("%w: wrong PIN", err)
		}
		return err
	}
	return nil
}
