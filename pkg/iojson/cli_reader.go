package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document of type T from the file named by its
// --file flag, falling back to a piped stdin.
type FileReader[T any] struct {
	fileFlagValue string

	// Stdin overrides os.Stdin. Tests set it to skip the terminal check.
	Stdin io.Reader
}

// Flag returns the --file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Provided reports whether a file was given or stdin is piped.
func (fr *FileReader[T]) Provided() bool {
	if fr.fileFlagValue != "" || fr.Stdin != nil {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// Read decodes the input.
func (fr *FileReader[T]) Read() (T, error) {
	var (
		reader io.Reader
		input  T
	)

	switch {
	case fr.fileFlagValue != "":
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case fr.Stdin != nil:
		reader = fr.Stdin
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
