package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// shell runs commands read line by line until EOF, exit or cancellation.
// Command errors are printed and the session continues.
func (a *app) shell(ctx context.Context, in io.Reader) error {
	if _, err := a.catalog.Refresh(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not load products: %v\n", err)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(a.out, "claydohscope [%d]> ", a.cart.Count())
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		args, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			continue
		}
		if err := a.run(ctx, args); err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

// splitArgs splits a line on whitespace, keeping single- or double-quoted runs together
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
