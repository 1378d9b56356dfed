package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genoscope/genoscope/internal/logging"
	"github.com/genoscope/genoscope/internal/plan"
)

var execTUI bool

func init() {
	execCmd.Flags().BoolVar(&execTUI, "tui", false, "Show a live progress view while the plan runs")
}

var execCmd = &cobra.Command{
	Use:   "exec <plan.yaml>",
	Short: "Execute a previously saved plan",
	Long:  `Load a persisted plan and execute it as-is. Agents are rebuilt from the configuration snapshot embedded in the plan, so the run reproduces its original parameterization even if the on-disk configuration has changed since.`,
	Args:  cobra.ExactArgs(1),
	RunE:  execPlan,
}

func execPlan(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	log, err := logging.New(p.Metadata.OutputDir)
	if err != nil {
		return err
	}
	defer log.Close()
	if !execTUI {
		log.EchoTo(os.Stderr)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return executePlan(ctx, p, log, execTUI)
}
