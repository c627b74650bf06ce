package subcmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewOrderCommand())
}

func NewOrderCommand() *cobra.Command {
	orderCmd := &OrderCommand{}

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the setup order of a suite",
		RunE:  orderCmd.order,
	}

	cmd.Flags().StringVarP(&orderCmd.PlanPath, "plan", "p", "", "path to YAML plan file")
	cmd.Flags().StringVarP(&orderCmd.Suite, "suite", "s", "", "suite to plan")
	cmd.Flags().BoolVar(&orderCmd.Teardown, "teardown", false, "print teardown order instead")
	cmd.MarkFlagRequired("plan")

	return cmd
}

type OrderCommand struct {
	PlanPath string
	Suite    string
	Teardown bool
}

func (o *OrderCommand) order(cmd *cobra.Command, args []string) error {
	suite, g, err := loadSuite(o.PlanPath, o.Suite)
	if err != nil {
		return err
	}

	order := g.TopoOrder
	title := "setup order: " + suite
	if o.Teardown {
		order = make([]string, 0, len(g.TopoOrder))
		for i := len(g.TopoOrder) - 1; i >= 0; i-- {
			order = append(order, g.TopoOrder[i])
		}
		title = "teardown order: " + suite
	}

	requested := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		requested[n.Name] = n.Requested
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Fixture", "Requested", "Depends On"})
	for i, name := range order {
		t.AppendRow(table.Row{i + 1, name, requested[name], strings.Join(g.Deps(name), ", ")})
	}
	t.Render()
	return nil
}
