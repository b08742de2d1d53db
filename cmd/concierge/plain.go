package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/concierge"
	bt "github.com/fwojciec/concierge/bubbletea"
)

// runOnce asks a single question and prints the answer. An aborted episode
// is returned as the error.
func runOnce(ctx context.Context, w io.Writer, ask bt.AskFunc, query string) error {
	out, err := ask(ctx, query, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out.Answer)
	return nil
}

// runPlain reads one question per line until EOF, exit or quit. Blank lines
// are skipped and episode failures are printed without ending the loop.
func runPlain(ctx context.Context, r io.Reader, w io.Writer, ask bt.AskFunc) error {
	fmt.Fprintln(w, "Ask about the menu, tables or opening hours. Type exit to quit.")
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Goodbye!")
			return nil
		}

		out, err := ask(ctx, line, func(e concierge.Event) {
			if c, ok := e.(concierge.EventToolCall); ok {
				fmt.Fprintf(w, "  → %s %s\n", c.Call.Name, compactArgs(c.Call.Arguments))
			}
		})
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(w, out.Answer)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(w, "Goodbye!")
	return nil
}

func compactArgs(args []byte) string {
	s := strings.TrimSpace(string(args))
	if s == "" || s == "{}" {
		return ""
	}
	return s
}
