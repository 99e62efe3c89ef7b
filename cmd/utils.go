package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/mktorrent/internal/torrent"
)

var errAborted = errors.New("aborted by user")

// prompter asks yes/no questions on the command's streams. With force set
// every question is answered yes without being shown.
type prompter struct {
	in    *bufio.Reader
	out   io.Writer
	force bool
}

func newPrompter(cmd *cobra.Command, force bool) *prompter {
	return &prompter{
		in:    bufio.NewReader(cmd.InOrStdin()),
		out:   cmd.ErrOrStderr(),
		force: force,
	}
}

// confirm returns true only when the answer is exactly "yes".
func (p *prompter) confirm(question string) bool {
	if p.force {
		return true
	}
	fmt.Fprintf(p.out, "%s Type yes to confirm: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	return strings.TrimSpace(line) == "yes"
}

// resolveOutputPath returns where the torrent named name is written. An
// empty output means <name>.torrent in the working directory; an existing
// directory receives <name>.torrent; anything else is used as the file path.
func resolveOutputPath(output, name string) (string, error) {
	file := name + ".torrent"
	if output == "" {
		output = file
	} else if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		output = filepath.Join(output, file)
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("%w: resolving output path: %w", torrent.ErrIO, err)
	}
	return abs, nil
}
