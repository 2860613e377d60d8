package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mcpjungle/mathtools/internal"
	"github.com/mcpjungle/mathtools/internal/service/toolhost"
	"github.com/mcpjungle/mathtools/pkg/types"
)

// Prompt is printed before every line the REPL reads.
const Prompt = "> "

// Invoker executes a named tool. *Session satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args ...any) (*types.InvokeResult, error)
}

// RunREPL reads "<a> <b>" lines from in, multiplies them through the invoker and prints
// the summary to out. It returns nil when the user quits, on EOF or when ctx is cancelled.
// Errors are never fatal: they are printed and the loop continues.
func RunREPL(ctx context.Context, invoker Invoker, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	// Scan cannot be interrupted, so after a cancellation the reader stays blocked until in
	// yields another line or EOF, then sees done and exits. in is owned by the caller and
	// is not closed here; for the CLI it is stdin and the process exits right after.
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	fmt.Fprintln(out, "Enter two numbers separated by a space, or 'exit' to quit.")
	for {
		fmt.Fprint(out, Prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "", "exit", "quit":
			return nil
		}

		a, b, err := internal.ParseOperands(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		res, err := invoker.Invoke(ctx, toolhost.MultiplyToolName, a, b)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		var m types.MultiplyResult
		if err := res.Decode(&m); err != nil {
			fmt.Fprintf(out, "error: unexpected result from %s: %v\n", res.Tool, err)
			continue
		}
		fmt.Fprintln(out, m.Summary)
	}
}
