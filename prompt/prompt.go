// Package prompt asks the user to pick from a list or type a value.
//
// Prompts draw on stderr because the shell wrapper captures stdout to learn
// which directory to change into.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt (Ctrl-C or EOF).
var ErrCancelled = errors.New("cancelled")

// Selector picks one of several options and returns its index.
type Selector interface {
	Select(label string, options []string) (int, error)
}

// Prompter reads a line of free text.
type Prompter interface {
	Input(label string) (string, error)
}

// Terminal implements Selector and Prompter with promptui.
type Terminal struct {
	In  io.ReadCloser
	Out io.Writer
}

// NewTerminal returns a terminal prompter reading stdin and drawing on stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) Select(label string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to select")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "{{ cyan \"▸\" }} {{ cyan . }}",
		Inactive: "  {{ . }}",
		Selected: "{{ cyan \"✔\" }} {{ . }}",
	}
	sel := promptui.Select{
		Label:        label,
		Items:        options,
		Templates:    templates,
		Size:         min(len(options), 10),
		HideSelected: true,
		Stdin:        t.In,
		Stdout:       &bellFilterWriter{w: t.Out},
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(options[index]), strings.ToLower(input))
		},
	}
	index, _, err := sel.Run()
	if err != nil {
		return 0, translate(err)
	}
	return index, nil
}

func (t *Terminal) Input(label string) (string, error) {
	p := promptui.Prompt{
		Label:  label,
		Stdin:  t.In,
		Stdout: &bellFilterWriter{w: t.Out},
	}
	value, err := p.Run()
	if err != nil {
		return "", translate(err)
	}
	return strings.TrimSpace(value), nil
}

func translate(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return ErrCancelled
	}
	return err
}

// bellFilterWriter drops the terminal bell promptui emits on every keystroke
// that does not move the cursor.
type bellFilterWriter struct {
	w io.Writer
}

func (b *bellFilterWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\a') == -1 {
		if _, err := b.w.Write(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	filtered := bytes.ReplaceAll(p, []byte{'\a'}, nil)
	if _, err := b.w.Write(filtered); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *bellFilterWriter) Close() error {
	return nil
}

// Static answers prompts with fixed values. It records what it was asked.
type Static struct {
	Choice int    // Index returned by Select
	Text   string // Value returned by Input
	Err    error  // Returned by both when set

	Labels  []string   // Labels passed to Select and Input, in order
	Options [][]string // Options passed to Select, in order
}

func (s *Static) Select(label string, options []string) (int, error) {
	s.Labels = append(s.Labels, label)
	s.Options = append(s.Options, append([]string(nil), options...))
	if s.Err != nil {
		return 0, s.Err
	}
	if s.Choice < 0 || s.Choice >= len(options) {
		return 0, fmt.Errorf("choice %d out of range (%d options)", s.Choice, len(options))
	}
	return s.Choice, nil
}

func (s *Static) Input(label string) (string, error) {
	s.Labels = append(s.Labels, label)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

var (
	_ Selector = (*Terminal)(nil)
	_ Prompter = (*Terminal)(nil)
	_ Selector = (*Static)(nil)
	_ Prompter = (*Static)(nil)
)
