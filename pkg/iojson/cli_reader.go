package iojson

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads command input from the file named by its flag, or from
// stdin when the flag is unset.
type FileReader struct {
	fileFlagValue string
	stdin         io.Reader
}

func (fr *FileReader) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to input file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// ReadAll returns the whole input. Reading from an interactive terminal is
// refused.
func (fr *FileReader) ReadAll() ([]byte, error) {
	if fr.fileFlagValue != "" {
		data, err := os.ReadFile(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}

	reader := fr.stdin
	if reader == nil {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe input")
		}
		reader = os.Stdin
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
