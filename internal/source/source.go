// Package source decides where the LLM output comes from: an explicit file,
// piped stdin, or the system clipboard.
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Provider retrieves the raw input text for one apply call.
type Provider struct {
	// FilePath, when set, wins over stdin and clipboard.
	FilePath string
}

// Name describes where GetContent will read from, for status output.
func (p *Provider) Name() string {
	switch {
	case p.FilePath != "":
		return p.FilePath
	case stdinPiped():
		return "stdin"
	default:
		return "clipboard"
	}
}

// GetContent reads from the file if set, from stdin when piped, and from the
// clipboard otherwise.
func (p *Provider) GetContent() (string, error) {
	if p.FilePath != "" {
		data, err := os.ReadFile(p.FilePath)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}

	if stdinPiped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return content, nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
