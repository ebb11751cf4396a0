package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"LLMBridge/internal/apperr"
)

const stderrTail = 256

// ProcessExtractor runs an external command with "--json-file <path>" appended
// to its arguments and treats stdout as the raw profile.
type ProcessExtractor struct {
	command string
	args    []string
}

// NewProcessExtractor builds a ProcessExtractor.
func NewProcessExtractor(command string, args []string) *ProcessExtractor {
	return &ProcessExtractor{command: command, args: append([]string(nil), args...)}
}

// Extract runs the command. It is killed when ctx ends.
func (p *ProcessExtractor) Extract(ctx context.Context, artifactPath string) ([]byte, error) {
	const op = "run extractor"

	args := append(append(make([]string, 0, len(p.args)+2), p.args...), "--json-file", artifactPath)
	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperr.WrapExternal(op, ctxErr)
		}
		return nil, apperr.WrapExternal(op, fmt.Errorf("%w: %s", err, tail(stderr.String(), stderrTail)))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, apperr.WrapExternal(op, ErrEmptyOutput)
	}
	return out, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
