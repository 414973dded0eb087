package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/comalice/fsmx/internal/cliconfig"
)

var longHelp = strings.TrimSpace(`
fsmx loads finite state machine definitions (YAML, TOML, or JSON), checks them,
renders them as Graphviz, and runs them on a fixed tick.

Configuration is layered: ~/.fsmx/config.toml (or --config), then FSMX_*
environment variables (a .env file in the working directory is read first),
then command-line flags.
`)

var exampleUsage = strings.TrimSpace(`
  fsmx validate traffic.yaml
  fsmx dot traffic.yaml | dot -Tsvg > traffic.svg
  fsmx run traffic.yaml --instances 4 --tick-rate 250ms --watch
  fsmx run traffic.yaml --ticks 100 --snapshots sqlite:fsmx.db
`)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dotenvPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "fsmx",
		Short:         "Validate, visualize, and run finite state machines",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to TOML config (default ~/.fsmx/config.toml)")
	pf.StringVar(&g.dotenvPath, "env-file", ".env", "dotenv file loaded before reading FSMX_* variables")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "console", "log format (console or json)")

	root.AddCommand(
		newValidateCommand(g),
		newDotCommand(g),
		newRunCommand(g),
	)
	return root
}

// resolve layers file, environment, and flag values into cfg. The positional
// definition argument counts as an explicitly set flag.
func (g *globalFlags) resolve(cmd *cobra.Command, args []string, cfg *cliconfig.Config) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfg.LogLevel = g.logLevel
	cfg.LogFormat = g.logFormat
	if len(args) > 0 {
		cfg.Definition = args[0]
		changed["definition"] = true
	}

	cfgFile := g.configPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if g.configPath != "" {
		return fmt.Errorf("config file %s not found", g.configPath)
	}

	if err := cliconfig.LoadDotEnv(g.dotenvPath); err != nil {
		return err
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func (g *globalFlags) logger(cmd *cobra.Command, cfg cliconfig.Config) (zerolog.Logger, error) {
	return cliconfig.Logger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}
