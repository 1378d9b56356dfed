package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genoscope/genoscope/internal/config"
	"github.com/genoscope/genoscope/internal/logging"
	"github.com/genoscope/genoscope/internal/plan"
)

var (
	runVCF       string
	runOutput    string
	runSample    string
	runPhenotype string
	runConfig    string
	runPlanOnly  bool
	runTUI       bool
)

func init() {
	runCmd.Flags().StringVar(&runVCF, "vcf", "", "Input VCF file path (required)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Run output directory (required)")
	runCmd.Flags().StringVar(&runSample, "sample", "sample", "Sample name")
	runCmd.Flags().StringVar(&runPhenotype, "phenotype", "", "Phenotype description (comma separated)")
	runCmd.Flags().StringVar(&runConfig, "config", config.DefaultPath, "Pipeline configuration file")
	runCmd.Flags().BoolVar(&runPlanOnly, "plan-only", false, "Build and persist the plan without executing it")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show a live progress view while the plan runs")
	_ = runCmd.MarkFlagRequired("vcf")
	_ = runCmd.MarkFlagRequired("output")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a plan for a VCF and execute it",
	Long:  `Build the seven-stage analysis plan from the active configuration, persist it to <output>/plan.yaml, and execute it. With --plan-only the plan is saved but not run.`,
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfig)
	if err != nil {
		return err
	}

	log, err := logging.New(runOutput)
	if err != nil {
		return err
	}
	defer log.Close()
	if !runTUI {
		log.EchoTo(os.Stderr)
	}

	planner := plan.NewPlanner(cfg, log)
	p, err := planner.CreatePlan(runVCF, runOutput, runSample, runPhenotype)
	if err != nil {
		return err
	}
	if !planner.ValidatePlan(p) {
		return fmt.Errorf("plan validation failed, see %s", filepath.Join(runOutput, "pipeline.log"))
	}

	planPath := filepath.Join(runOutput, plan.DefaultFileName)
	if err := plan.Save(p, planPath); err != nil {
		return err
	}
	if runPlanOnly {
		fmt.Printf("Plan saved: %s\nExecute it with: genoscope exec %s\n", planPath, planPath)
		return nil
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return executePlan(ctx, p, log, runTUI)
}
