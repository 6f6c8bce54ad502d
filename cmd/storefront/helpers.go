package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/joss/storefront/internal/cart"
	"github.com/joss/storefront/internal/logging"
	"github.com/joss/storefront/internal/render"
)

// errLoginRequired gates the product management commands.
var errLoginRequired = errors.New("login required: run 'storefront login' first")

// exit is swapped in tests.
var exit = os.Exit

// exitOnError prints err to stderr, releases the store and exits.
func exitOnError(err error) {
	cliLog.Error("command_failed", nil, err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	teardown()
	exit(1)
}

// panicGuard turns a panic anywhere in a command into a logged failure
// with a non-zero exit, after the store is closed.
func panicGuard() *logging.RecoveryHandler {
	h := logging.NewRecoveryHandler("cli")
	h.OnPanic = func(rec interface{}, _ string) {
		exitOnError(fmt.Errorf("internal error: %v", rec))
	}
	return h
}

// warnOnPersist reports a failed cart save without failing the command.
// The in-memory change already happened; anything else is fatal.
func warnOnPersist(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, cart.ErrPersist) {
		render.Stderr().Warn("%v", err)
		return
	}
	exitOnError(err)
}

func requireLogin() {
	if !app.sessions.Authenticated() {
		exitOnError(errLoginRequired)
	}
}

func printJSON(v any) {
	if err := render.Stdout().JSON(v); err != nil {
		exitOnError(err)
	}
}

// parseID parses a product id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func mustParseID(s string) int {
	id, err := parseID(s)
	if err != nil {
		exitOnError(err)
	}
	return id
}

// readPassword prompts without echo on a terminal, or reads one line from
// stdin when piped.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	return readLine(bufio.NewReader(os.Stdin))
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
