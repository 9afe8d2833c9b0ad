// Package prompt assembles prompt text from files and a literal string.
package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinPath names standard input as a prompt source.
const StdinPath = "-"

// Collector reads prompt sources. A zero Collector reads "-" from os.Stdin.
type Collector struct {
	Stdin io.Reader
}

// Collect joins the contents of paths, in order, followed by literal when it
// is non-nil. Sources are separated by a single newline and used verbatim.
func (c Collector) Collect(paths []string, literal *string) (string, error) {
	parts := make([]string, 0, len(paths)+1)
	stdinUsed := false

	for _, path := range paths {
		if path == StdinPath {
			if stdinUsed {
				return "", fmt.Errorf("standard input %q given more than once", StdinPath)
			}
			stdinUsed = true
			text, err := c.readStdin()
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read prompt file %q: %w", path, err)
		}
		parts = append(parts, string(data))
	}

	if literal != nil {
		parts = append(parts, *literal)
	}
	return strings.Join(parts, "\n"), nil
}

// Collect is Collector{}.Collect.
func Collect(paths []string, literal *string) (string, error) {
	return Collector{}.Collect(paths, literal)
}

func (c Collector) readStdin() (string, error) {
	r := c.Stdin
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read prompt from standard input: %w", err)
	}
	return string(data), nil
}
