package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/cliconfig"
	"github.com/comalice/fsmx/internal/production"
	"github.com/comalice/fsmx/realtime"
)

func newRunCommand(g *globalFlags) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run [definition]",
		Short: "Run a definition on a fixed tick",
		Long: "Run a definition on a fixed tick until interrupted or until --ticks have elapsed.\n" +
			"With --snapshots, instance positions are restored on start and saved on exit.\n" +
			"With --watch, edits to the definition file are applied without a restart.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.resolve(cmd, args, &cfg); err != nil {
				return err
			}
			log, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runDefinition(ctx, cmd, cfg, log)
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Instances, "instances", cfg.Instances, "instances to create when no snapshot is restored")
	f.DurationVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "time between ticks")
	f.Uint64Var(&cfg.Ticks, "ticks", cfg.Ticks, "stop after this many ticks (0 runs until interrupted)")
	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload the definition when its file changes")
	f.StringVar(&cfg.Snapshots, "snapshots", cfg.Snapshots, "snapshot store: json:<dir>, yaml:<dir>, or sqlite:<file>")
	return cmd
}

func runDefinition(ctx context.Context, cmd *cobra.Command, cfg cliconfig.Config, log zerolog.Logger) error {
	var store production.Persister
	if cfg.Snapshots != "" {
		p, closer, err := openSnapshotStore(cfg.Snapshots)
		if err != nil {
			return err
		}
		defer closer.Close()
		store = p
	}

	transitions := make(chan fsmx.Transition, 256)
	pub := production.NewChannelPublisher(transitions)
	sess := newSession(log, pub.Observer(), store)
	defer sess.close()

	if err := sess.load(ctx, cfg.Definition, cfg.Instances); err != nil {
		return err
	}

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for t := range transitions {
			ev := log.Debug().Str("instance", t.InstanceID.String()).Str("to", sess.stateName(t.To))
			if !t.Entered {
				ev = ev.Str("from", sess.stateName(t.From))
			}
			ev.Msg("transition")
		}
	}()

	sess.runner = realtime.NewRunner(realtime.Config{
		TickRate: cfg.TickRate,
		MaxTicks: cfg.Ticks,
		Logger:   log,
	}, sess.mod)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Watch {
		w, err := newDefinitionWatcher(cfg.Definition, log, sess.reload)
		if err != nil {
			return err
		}
		go w.run(runCtx)
	}

	if err := sess.runner.Start(runCtx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		log.Info().Msg("interrupted, stopping")
	case <-sess.runner.Done():
	}
	sess.runner.Stop()
	cancel()

	_ = pub.Close()
	<-consumed
	if dropped := pub.Dropped(); dropped > 0 {
		log.Warn().Uint64("dropped", dropped).Msg("transition log fell behind")
	}

	if err := sess.save(context.Background()); err != nil {
		return err
	}
	printSummary(cmd, sess)
	return nil
}

func printSummary(cmd *cobra.Command, sess *session) {
	counts := sess.summary()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks: %d\n", sess.runner.TickNum())
	for _, name := range names {
		fmt.Fprintf(out, "%s: %d\n", name, counts[name])
	}
}
