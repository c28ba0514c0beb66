package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ngone6325/gofac/v2/internal/config"
	"github.com/Ngone6325/gofac/v2/model"
)

func newPlanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Discover services and print the registration plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := a.engine().Discover(cmd.Context(), a.src)
			if err != nil {
				return err
			}
			return renderPlan(out(cmd), plan, a.cfg.Output)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output format: text, yaml, json")
	_ = a.v.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Discover, bind and resolve every discovered contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, plan, err := a.compose(cmd.Context())
			if err != nil {
				return err
			}
			scope := c.NewScope()
			for i, d := range plan.All() {
				if _, err := scope.ResolveType(d.Contract()); err != nil {
					fmt.Fprintln(out(cmd), ErrorStyle.Render("✗ "+d.String()))
					return fmt.Errorf("resolve declaration #%d (%s): %w", i, d, err)
				}
				fmt.Fprintln(out(cmd), SuccessStyle.Render("✓ "+d.String()))
			}
			fmt.Fprintln(out(cmd), SubtitleStyle.Render(fmt.Sprintf("%d service(s) resolved", plan.Len())))
			return nil
		},
	}
}

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compose the sample application and exercise its services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.compose(cmd.Context())
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = workDir()
			}
			fmt.Fprintln(out(cmd), TitleStyle.Render(config.AppName+" demo"))
			return model.Demo(cmd.Context(), c, out(cmd), dir)
		},
	}
	cmd.Flags().String("dir", "", "directory for files written by the demo (default: working directory)")
	cmd.Flags().Duration("delay", 0, "simulated storage delay before each file write, e.g. 5s")
	_ = a.v.BindPFlag("files.delay", cmd.Flags().Lookup("delay"))
	return cmd
}
