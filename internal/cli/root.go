// Package cli defines the genoscope command surface: building, executing,
// and replaying pipeline plans.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "genoscope",
	Short:   "Multi-agent genomic variant interpretation pipeline",
	Long:    `Genoscope compiles a VCF analysis run into a task plan and drives each stage through its agent: filtering, sequence context, embedding, scoring, evidence retrieval, report generation, and consistency review.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
