package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kirinctl",
	Short: "Diagnostic CLI for the kirin composable compiler IR",
	Long: `kirinctl is a diagnostic and demonstration tool for kirin, a
multi-level, multi-stage intermediate representation for building
families of composable embedded DSLs.

It does not compile real programs: kirin is a library for host programs
that build IR directly, not a standalone compiler with its own source
language. kirinctl instead builds small, fixed example pipelines in
process (a counting loop, an interval-widening analysis, a cross-stage
call) and reports on them, to make the core's behavior inspectable
without writing a Go program.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
