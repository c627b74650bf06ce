package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewGraphCommand())
}

func NewGraphCommand() *cobra.Command {
	graphCmd := &GraphCommand{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the dependency graph of a suite as DOT or Mermaid",
		RunE:  graphCmd.graph,
	}

	cmd.Flags().StringVarP(&graphCmd.PlanPath, "plan", "p", "", "path to YAML plan file")
	cmd.Flags().StringVarP(&graphCmd.Suite, "suite", "s", "", "suite to plan")
	cmd.Flags().StringVarP(&graphCmd.Format, "format", "f", "dot", "output format: dot or mermaid")
	cmd.MarkFlagRequired("plan")

	return cmd
}

type GraphCommand struct {
	PlanPath string
	Suite    string
	Format   string
}

func (g *GraphCommand) graph(cmd *cobra.Command, args []string) error {
	_, graph, err := loadSuite(g.PlanPath, g.Suite)
	if err != nil {
		return err
	}

	switch g.Format {
	case "dot":
		fmt.Fprint(cmd.OutOrStdout(), graph.DOT())
	case "mermaid":
		fmt.Fprint(cmd.OutOrStdout(), graph.Mermaid())
	default:
		return fmt.Errorf("unknown format %q (want dot or mermaid)", g.Format)
	}
	return nil
}
