// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package batch validates many public keys concurrently with a bounded
// number of workers. Every key is independent, so the only coordination is
// the worker limit.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/internal/restrict"
	"github.com/toeirei/keyprint/internal/sshkey"
	"golang.org/x/sync/errgroup"
)

const (
	// maxLineSize bounds a single input line; large RSA keys with long
	// comments stay far below it.
	maxLineSize = 64 * 1024
	// maxWrappedLines and maxWrappedSize bound how much input is joined
	// into one wrapped key.
	maxWrappedLines = 64
	maxWrappedSize  = 16 * 1024
)

// Input is one key candidate and the line it started on.
type Input struct {
	Line int
	Text string
}

// Result pairs an input with its classification.
type Result struct {
	Input
	Options string
	Key     *sshkey.PublicKey
	Verdict restrict.Verdict
}

// ReadLines reads authorized_keys style input. Blank lines and lines
// starting with '#' are skipped. A line without any algorithm identifier
// that follows an incomplete key is treated as a wrapped continuation of
// that key, as produced by copying keys out of terminals or e-mails. When the
// joined lines still do not form a valid key they are returned separately,
// each with its own line number.
func ReadLines(r io.Reader) ([]Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	var (
		out   []Input
		group wrapped
	)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if group.accepts(line) {
			group.add(Input{Line: lineNo, Text: line})
			continue
		}
		out = append(out, group.settle()...)
		group = wrapped{}
		group.add(Input{Line: lineNo, Text: line})
	}
	out = append(out, group.settle()...)
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("reading keys: %w", err)
	}
	return out, nil
}

// FromStrings wraps plain key texts as inputs numbered from 1.
func FromStrings(keys []string) []Input {
	out := make([]Input, len(keys))
	for i, k := range keys {
		out[i] = Input{Line: i + 1, Text: k}
	}
	return out
}

// Check classifies inputs with at most workers running at once; workers <= 0
// means one per CPU. Results keep the input order. When ctx is cancelled no
// new work is started and ctx.Err() is returned with the partial results.
func Check(ctx context.Context, inputs []Input, policy *restrict.Policy, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = checkOne(in, policy)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	logging.Debugf("batch: checked %d keys with %d workers", len(inputs), workers)
	return results, nil
}

func checkOne(in Input, policy *restrict.Policy) Result {
	options, text := sshkey.StripOptions(in.Text)
	if options == "" {
		// Keep the caller's text verbatim so KeyText reflects the input.
		text = in.Text
	}
	k := sshkey.New(text)
	return Result{Input: in, Options: options, Key: k, Verdict: policy.Evaluate(k)}
}

// wrapped collects the lines of one key that may have been wrapped.
type wrapped struct {
	lines    []Input
	size     int
	complete bool
}

func (w *wrapped) add(in Input) {
	w.lines = append(w.lines, in)
	w.size += len(in.Text) + 1
	w.complete = complete(w.text())
}

func (w *wrapped) text() string {
	parts := make([]string, len(w.lines))
	for i, in := range w.lines {
		parts[i] = in.Text
	}
	return strings.Join(parts, "\n")
}

// accepts reports whether line continues the open key.
func (w *wrapped) accepts(line string) bool {
	if len(w.lines) == 0 || w.complete || !hasIdentifier(w.lines[0].Text) {
		return false
	}
	if len(w.lines) >= maxWrappedLines || w.size+len(line) > maxWrappedSize {
		return false
	}
	return !hasIdentifier(line) && startsWithBase64(line)
}

// settle returns the group as one input when the joined lines form a valid
// key and as the individual lines otherwise.
func (w *wrapped) settle() []Input {
	switch {
	case len(w.lines) == 0:
		return nil
	case len(w.lines) == 1 || w.complete:
		return []Input{{Line: w.lines[0].Line, Text: w.text()}}
	default:
		return w.lines
	}
}

func startsWithBase64(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, c := range fields[0] {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/', c == '=':
		default:
			return false
		}
	}
	return true
}

func hasIdentifier(line string) bool {
	for _, f := range strings.Fields(line) {
		if _, ok := sshkey.ForIdentifier(f); ok {
			return true
		}
	}
	return false
}

func complete(text string) bool {
	_, key := sshkey.StripOptions(text)
	return sshkey.New(key).Valid()
}
