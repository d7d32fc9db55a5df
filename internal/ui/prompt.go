package ui

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// ReadSecret reads a line of hidden input from stdin, used for entering a
// signing key without echoing it to the terminal or leaving it in shell
// history. Falls back to plain input when stdin is not a terminal (e.g.
// piped input in a CI job).
func ReadSecret(message string) (string, error) {
	fmt.Fprint(os.Stderr, message+": ")

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(input), nil
	}

	oldState, err := term.GetState(fd)
	if err != nil {
		return "", err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	type result struct {
		value []byte
		err   error
	}
	resultCh := make(chan result, 1)
	go func() {
		value, err := term.ReadPassword(fd)
		resultCh <- result{value, err}
	}()

	select {
	case sig := <-sigCh:
		term.Restore(fd, oldState)
		fmt.Fprintln(os.Stderr)
		signal.Stop(sigCh)
		p, _ := os.FindProcess(os.Getpid())
		p.Signal(sig)
		return "", fmt.Errorf("interrupted")
	case r := <-resultCh:
		fmt.Fprintln(os.Stderr)
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimSpace(string(r.value)), nil
	}
}
