package cli

import (
	"github.com/spf13/cobra"
)

// Options holds the flags shared by every pyapi command.
type Options struct {
	ProjectDir string
}

// NewRootCmd creates the top-level pyapi command.
func NewRootCmd(version string, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyapi",
		Short: "Python API break detector",
		Long:  "pyapi compares the working tree's public interface against the most recently published release and reports breaking changes.",

		// Failures print their own diagnostics; main maps errors to exit 1.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&opts.ProjectDir, "project-dir", ".", "Directory containing pyproject.toml")

	return cmd
}
