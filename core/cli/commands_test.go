package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
)

func execute(t *testing.T, opts *Options, sub *cobra.Command, args ...string) error {
	t.Helper()
	root := NewRootCmd("test", opts)
	root.AddCommand(sub)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestAnalyzeCmd(t *testing.T) {
	called := false
	opts := &Options{}
	cmd := NewAnalyzeCmd(func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := execute(t, opts, cmd, "--project-dir", "/tmp/proj", "analyze"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !called {
		t.Error("analyze run func not called")
	}
	if opts.ProjectDir != "/tmp/proj" {
		t.Errorf("ProjectDir = %q, want /tmp/proj", opts.ProjectDir)
	}
}

func TestAnalyzeCmd_RejectsArgs(t *testing.T) {
	cmd := NewAnalyzeCmd(func(ctx context.Context) error { return nil })
	if err := execute(t, &Options{}, cmd, "analyze", "extra"); err == nil {
		t.Fatal("analyze accepted positional arguments")
	}
}

func TestAcceptBreakCmd(t *testing.T) {
	var gotCode, gotJustification string
	cmd := NewAcceptBreakCmd(func(ctx context.Context, code, justification string) error {
		gotCode, gotJustification = code, justification
		return nil
	})

	if err := execute(t, &Options{}, cmd, "acceptBreak", "RemoveMethod: x", "we meant to"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotCode != "RemoveMethod: x" || gotJustification != "we meant to" {
		t.Errorf("args = %q, %q", gotCode, gotJustification)
	}
}

func TestAcceptBreakCmd_RequiresBothArgs(t *testing.T) {
	cmd := NewAcceptBreakCmd(func(ctx context.Context, code, justification string) error { return nil })
	if err := execute(t, &Options{}, cmd, "acceptBreak", "only-code"); err == nil {
		t.Fatal("acceptBreak accepted a single argument")
	}
}

func TestAcceptAllBreaksCmd(t *testing.T) {
	var got string
	cmd := NewAcceptAllBreaksCmd(func(ctx context.Context, justification string) error {
		got = justification
		return nil
	})

	if err := execute(t, &Options{}, cmd, "acceptAllBreaks", "big refactor"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "big refactor" {
		t.Errorf("justification = %q", got)
	}
}

func TestVersionOverrideCmd(t *testing.T) {
	var got string
	cmd := NewVersionOverrideCmd(func(ctx context.Context, baselineVersion string) error {
		got = baselineVersion
		return nil
	})

	if err := execute(t, &Options{}, cmd, "versionOverride", "1.2.3"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "1.2.3" {
		t.Errorf("baseline version = %q", got)
	}
}
