package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errShellExit = errors.New("shell exit")

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Keep the session open and read commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.lines != nil {
				return errors.New("already in the shell")
			}
			return a.runShell(cmd.Context())
		},
	}
}

// runShell reads commands until exit, end of input or a signal. Autosave
// runs in the background and the session is saved once more on the way out.
func (a *app) runShell(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.svc.StartAutosave(a.autosaveInterval(ctx)); err != nil {
		return fmt.Errorf("starting autosave: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	lines := readLines(a.in, done)
	a.lines = lines
	defer func() { a.lines = nil }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.printf("Escriba help para ver los comandos, exit para salir.\n")
		for {
			a.printf("inventario> ")
			var line string
			var ok bool
			select {
			case <-gctx.Done():
				return nil
			case line, ok = <-lines:
			}
			if !ok {
				a.printf("\n")
				return errShellExit
			}
			args, err := splitArgs(line)
			if err != nil {
				fmt.Fprintf(a.errOut, "error: %v\n", err)
				continue
			}
			if len(args) == 0 {
				continue
			}
			if args[0] == "exit" || args[0] == "quit" {
				return errShellExit
			}
			if err := a.runLine(gctx, args); err != nil {
				fmt.Fprintf(a.errOut, "error: %v\n", err)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := a.svc.Save(context.WithoutCancel(gctx)); err != nil {
			slog.Error("final save failed", "error", err)
			return err
		}
		slog.Debug("session saved on exit")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShellExit) {
		return err
	}
	return nil
}

// readLines feeds r line by line into the returned channel, which is
// closed at the end of input or once done is closed.
func readLines(r *bufio.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// runLine runs one shell line through a fresh command tree.
func (a *app) runLine(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	defer func() { a.lineYes = false }()
	return root.ExecuteContext(ctx)
}

// splitArgs splits a line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inWord := false
	var quote rune
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
