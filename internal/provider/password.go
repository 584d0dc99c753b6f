package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// PasswordEnv overrides the interactive prompt.
const PasswordEnv = "WALLET_PASSWORD"

var ErrNoTerminal = errors.New("no terminal to read the wallet password from; set " + PasswordEnv)

// PromptPassword reads the password from PasswordEnv, or from the terminal
// without echo.
func PromptPassword(prompt string) PasswordFunc {
	return func(ctx context.Context) (string, error) {
		if pw := os.Getenv(PasswordEnv); pw != "" {
			return pw, nil
		}
		return ReadTerminalPassword(prompt)
	}
}

// FixedOrPrompt uses password when it is set and prompts otherwise.
func FixedOrPrompt(password, prompt string) PasswordFunc {
	if password != "" {
		return StaticPassword(password)
	}
	return PromptPassword(prompt)
}

// ReadTerminalPassword prints prompt to stderr and reads a line from stdin
// without echo.
func ReadTerminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
