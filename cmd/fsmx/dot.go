package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx/internal/cliconfig"
	"github.com/comalice/fsmx/internal/definition"
	"github.com/comalice/fsmx/internal/extensibility"
	"github.com/comalice/fsmx/internal/production"
)

func newDotCommand(g *globalFlags) *cobra.Command {
	var (
		asJSON bool
		ticks  uint64
	)
	cfg := cliconfig.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "dot [definition]",
		Short: "Render a definition as Graphviz DOT or JSON",
		Long: "Render a definition as Graphviz DOT or JSON. With --ticks, the configured number of\n" +
			"instances is stepped first so the output shows where they stand.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.resolve(cmd, args, &cfg); err != nil {
				return err
			}
			log, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}

			doc, err := definition.Load(cfg.Definition)
			if err != nil {
				return err
			}
			m, names, err := definition.Hydrate(doc, extensibility.NewCatalog(nil, log))
			if err != nil {
				return err
			}
			defer m.Delete()

			if ticks > 0 {
				for i := 0; i < cfg.Instances; i++ {
					if _, err := m.CreateInstance(); err != nil {
						return err
					}
				}
				for i := uint64(0); i < ticks; i++ {
					if err := m.Update(); err != nil {
						return err
					}
				}
				defer func() {
					for _, inst := range m.Instances() {
						_ = inst.Delete()
					}
				}()
			}

			v := &production.Visualizer{Names: names}
			if asJSON {
				data, err := v.ExportJSON(m)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), v.ExportDOT(m))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the graph as JSON instead of DOT")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "step instances this many times before rendering")
	cmd.Flags().IntVar(&cfg.Instances, "instances", cfg.Instances, "instances to create when --ticks is set")
	return cmd
}
