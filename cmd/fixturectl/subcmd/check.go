package subcmd

import (
	"fmt"

	"github.com/chenyanchen/fixture/plan"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewCheckCommand())
}

func NewCheckCommand() *cobra.Command {
	checkCmd := &CheckCommand{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check every suite of a plan for missing fixtures and cycles",
		RunE:  checkCmd.check,
	}

	cmd.Flags().StringVarP(&checkCmd.PlanPath, "plan", "p", "", "path to YAML plan file")
	cmd.MarkFlagRequired("plan")

	return cmd
}

type CheckCommand struct {
	PlanPath string
}

func (c *CheckCommand) check(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(c.PlanPath)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	reg, err := p.Registry()
	if err != nil {
		return fmt.Errorf("invalid fixture declarations: %w", err)
	}

	failed := 0
	for _, suite := range p.SuiteNames() {
		g, err := p.Graph(reg, suite)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", suite, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d fixtures)\n", suite, len(g.TopoOrder))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d suite(s) failed", failed, len(p.SuiteNames()))
	}
	logrus.Debugf("check: all %d suite(s) planned", len(p.SuiteNames()))
	return nil
}
