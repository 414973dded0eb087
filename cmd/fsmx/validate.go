package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmx/internal/cliconfig"
	"github.com/comalice/fsmx/internal/definition"
	"github.com/comalice/fsmx/internal/extensibility"
)

func newValidateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [definition]",
		Short: "Check a definition and resolve its actions and conditions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cliconfig.DefaultConfig()
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
			catalog := extensibility.NewCatalog(nil, log)
			m, _, err := definition.Hydrate(doc, catalog)
			if err != nil {
				return err
			}
			defer m.Delete()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d states, %d links, initial %q, version %s)\n",
				doc.Name, m.StateCount(), m.LinkCount(), doc.InitialState(), definition.ComputeVersion(doc))
			return nil
		},
	}
}
