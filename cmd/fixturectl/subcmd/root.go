package subcmd

import (
	"fmt"

	"github.com/chenyanchen/fixture"
	"github.com/chenyanchen/fixture/plan"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var RootCmd = &cobra.Command{
	Use:           "fixturectl",
	Short:         "Inspect fixture plans: setup order, dependency graphs and cycles",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() error {
	return RootCmd.Execute()
}

// loadSuite loads a plan file and plans one suite. An empty suite is allowed
// when the plan has exactly one.
func loadSuite(path string, suite string) (string, fixture.Graph, error) {
	p, err := plan.Load(path)
	if err != nil {
		return "", fixture.Graph{}, fmt.Errorf("failed to load plan: %w", err)
	}
	if suite == "" {
		suites := p.SuiteNames()
		if len(suites) != 1 {
			return "", fixture.Graph{}, fmt.Errorf("plan has %d suites, pick one with --suite", len(suites))
		}
		suite = suites[0]
	}

	reg, err := p.Registry()
	if err != nil {
		return "", fixture.Graph{}, fmt.Errorf("invalid fixture declarations: %w", err)
	}
	g, err := p.Graph(reg, suite)
	if err != nil {
		return "", fixture.Graph{}, fmt.Errorf("suite %q: %w", suite, err)
	}
	logrus.Debugf("planned suite '%s': %d fixture(s)", suite, len(g.TopoOrder))
	return suite, g, nil
}
