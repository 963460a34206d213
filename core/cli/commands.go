package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Run function signatures injected by the wiring layer (cmd/pyapi/main.go).
type (
	AnalyzeRunFunc         func(ctx context.Context) error
	AcceptBreakRunFunc     func(ctx context.Context, code, justification string) error
	AcceptAllBreaksRunFunc func(ctx context.Context, justification string) error
	VersionOverrideRunFunc func(ctx context.Context, baselineVersion string) error
)

// NewAnalyzeCmd creates the "analyze" subcommand.
func NewAnalyzeCmd(runFunc AnalyzeRunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Detect unaccepted API breaks against the last published release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context())
		},
	}
}

// NewAcceptBreakCmd creates the "acceptBreak" subcommand.
func NewAcceptBreakCmd(runFunc AcceptBreakRunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "acceptBreak <break-code> <justification>",
		Short: "Accept one detected API break as intentional",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), args[0], args[1])
		},
	}
}

// NewAcceptAllBreaksCmd creates the "acceptAllBreaks" subcommand.
func NewAcceptAllBreaksCmd(runFunc AcceptAllBreaksRunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "acceptAllBreaks <justification>",
		Short: "Accept every detected API break under one justification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), args[0])
		},
	}
}

// NewVersionOverrideCmd creates the "versionOverride" subcommand.
func NewVersionOverrideCmd(runFunc VersionOverrideRunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "versionOverride <baseline-version>",
		Short: "Diff against a specific published version instead of the latest tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), args[0])
		},
	}
}
