// Shared helpers for keeper CLI commands.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/keeper/internal/auth"
	"github.com/mesh-intelligence/keeper/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for an error returned by a
// command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error to a process exit code. Errors without an explicit
// code are classified by category: bad input is a user error, everything
// else a system error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrConfiguration) || errors.Is(err, types.ErrNotFound) {
		return exitUserError
	}
	return exitSysError
}

// classify wraps err with the exit code its category implies.
func classify(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitCode(err), err: err}
}

// openStore builds the credential store from the resolved settings.
func (a *app) openStore() (*auth.Store, error) {
	s, err := auth.NewStore(types.StoreConfig{
		Path:       a.settings.UsersFile,
		BcryptCost: a.settings.BcryptCost,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

// loaderConfig builds the bulk loader config from the resolved settings.
func (a *app) loaderConfig() types.LoaderConfig {
	return types.LoaderConfig{
		DBPath:    a.settings.DBPath,
		Timeout:   a.settings.Timeout,
		BatchSize: a.settings.BatchSize,
		Logger:    a.logger,
	}
}

// readSecret returns flagValue when set, otherwise the first line of in
// with the trailing newline removed.
func readSecret(in io.Reader, flagValue, what string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return readLine(bufio.NewReader(in), what)
}

// readConfirmedSecret returns the secret and its confirmation. With
// flagValue set, confirmValue is optional and compared only when given.
// Otherwise both are read from in, one per line.
func readConfirmedSecret(in io.Reader, flagValue, confirmValue, what string) (string, error) {
	if flagValue != "" {
		if confirmValue != "" && confirmValue != flagValue {
			return "", userError(fmt.Errorf("%ss do not match", what))
		}
		return flagValue, nil
	}
	br := bufio.NewReader(in)
	secret, err := readLine(br, what)
	if err != nil {
		return "", err
	}
	confirm, err := readLine(br, what+" confirmation")
	if err != nil {
		return "", err
	}
	if confirm != secret {
		return "", userError(fmt.Errorf("%ss do not match", what))
	}
	return secret, nil
}

func readLine(br *bufio.Reader, what string) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", sysError(fmt.Errorf("read %s: %w", what, err))
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", userError(fmt.Errorf("%s is required (flag or stdin)", what))
	}
	return line, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitColumns parses a comma-separated --columns value.
func splitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}
