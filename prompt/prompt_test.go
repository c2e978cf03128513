package prompt

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/manifoldco/promptui"
)

func TestBellFilterWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &bellFilterWriter{w: &buf}

	n, err := w.Write([]byte("a\ab\a"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 4 {
		t.Errorf("n = %d, want the input length", n)
	}
	if buf.String() != "ab" {
		t.Errorf("written = %q, want bells removed", buf.String())
	}
}

func TestTranslate(t *testing.T) {
	for _, err := range []error{promptui.ErrInterrupt, promptui.ErrEOF, promptui.ErrAbort} {
		if !errors.Is(translate(err), ErrCancelled) {
			t.Errorf("translate(%v) should be ErrCancelled", err)
		}
	}
	other := errors.New("boom")
	if translate(other) != other {
		t.Error("other errors pass through unchanged")
	}
}

func TestTerminalSelect_Empty(t *testing.T) {
	term := &Terminal{Out: &bytes.Buffer{}}
	if _, err := term.Select("Pick", nil); err == nil {
		t.Error("selecting from no options should fail")
	}
}

func TestStatic(t *testing.T) {
	s := &Static{Choice: 1, Text: "my-feature"}

	idx, err := s.Select("Select worktree", []string{"a", "b"})
	if err != nil || idx != 1 {
		t.Errorf("Select = %d, %v", idx, err)
	}
	text, err := s.Input("Suffix")
	if err != nil || text != "my-feature" {
		t.Errorf("Input = %q, %v", text, err)
	}

	if !reflect.DeepEqual(s.Labels, []string{"Select worktree", "Suffix"}) {
		t.Errorf("Labels = %v", s.Labels)
	}
	if !reflect.DeepEqual(s.Options, [][]string{{"a", "b"}}) {
		t.Errorf("Options = %v", s.Options)
	}

	if _, err := s.Select("x", []string{"only"}); err == nil {
		t.Error("out-of-range choice should fail")
	}

	s.Err = ErrCancelled
	if _, err := s.Input("again"); !errors.Is(err, ErrCancelled) {
		t.Errorf("Input with Err set = %v", err)
	}
}
