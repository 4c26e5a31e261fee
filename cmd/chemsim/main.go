package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/chemsim/internal/config"
	"github.com/san-kum/chemsim/internal/telemetry"
	"github.com/spf13/cobra"
)

// app carries what every command shares: environment defaults, the run
// telemetry and the values bound to flags.
type app struct {
	env       config.Env
	registry  *prometheus.Registry
	telemetry *telemetry.Metrics

	dataDir     string
	storeKind   string
	metricsFile string

	configFile string
	preset     string
	timeEnd    float64
	steps      int
	integrator string

	plot    bool
	svgFile string
	save    bool
	outFile string

	reaction int
	from     float64
	to       float64
	count    int
	workers  int
	target   string
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "environment: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.SetupLogger(os.Stderr, env.LogLevel, env.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = telemetry.WithLogger(ctx, logger)

	rootCmd, a := newRootCmd(env)
	if err := a.execute(ctx, rootCmd); err != nil {
		logger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// execute runs the command tree and then writes the metrics textfile, also
// when the command failed.
func (a *app) execute(ctx context.Context, rootCmd *cobra.Command) error {
	err := rootCmd.ExecuteContext(ctx)
	if a.metricsFile == "" {
		return err
	}
	if werr := telemetry.WriteTextfile(a.metricsFile, a.registry); werr != nil {
		return errors.Join(err, fmt.Errorf("write metrics: %w", werr))
	}
	return err
}

func newRootCmd(env config.Env) (*cobra.Command, *app) {
	reg := prometheus.NewRegistry()
	a := &app{
		env:       env,
		registry:  reg,
		telemetry: telemetry.NewMetrics(reg),
	}

	rootCmd := &cobra.Command{
		Use:           "chemsim",
		Short:         "chemical reaction kinetics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&a.storeKind, "store", env.Store, "run store (file or sqlite)")
	rootCmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write prometheus metrics to this textfile on exit")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  a.runSimulation,
	}
	a.systemFlags(runCmd)
	runCmd.Flags().BoolVar(&a.plot, "plot", false, "plot concentrations in the terminal")
	runCmd.Flags().StringVar(&a.svgFile, "svg", "", "write an svg chart to this file")
	runCmd.Flags().BoolVar(&a.save, "save", false, "save the run to the store")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "show compounds and reactions",
		Args:  cobra.NoArgs,
		RunE:  a.showInfo,
	}
	infoCmd.Flags().StringVar(&a.configFile, "config", "", "config file path (json or yaml)")
	infoCmd.Flags().StringVar(&a.preset, "preset", "", "use preset configuration")

	exampleCmd := &cobra.Command{
		Use:   "example [path]",
		Short: "write an example config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "example_config.json"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example config written to %s\n", path)
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset systems",
		Args:  cobra.NoArgs,
		RunE:  a.listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  a.listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.plotRun,
	}
	plotCmd.Flags().StringVar(&a.svgFile, "svg", "", "write an svg chart to this file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportRun,
	}
	exportCmd.Flags().StringVarP(&a.outFile, "out", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the rate constant of one reaction",
		Args:  cobra.NoArgs,
		RunE:  a.runSweep,
	}
	a.systemFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&a.reaction, "reaction", 0, "index of the reaction to sweep")
	sweepCmd.Flags().Float64Var(&a.from, "from", 0.01, "first rate constant")
	sweepCmd.Flags().Float64Var(&a.to, "to", 1.0, "last rate constant")
	sweepCmd.Flags().IntVar(&a.count, "count", 10, "number of rate constants")
	sweepCmd.Flags().IntVar(&a.workers, "workers", env.Workers, "concurrent runs")
	sweepCmd.Flags().StringVar(&a.target, "target", "", "report the rate constant maximizing this species")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same system (default: all)",
		Args:  cobra.ArbitraryArgs,
		RunE:  a.compareIntegrators,
	}
	a.systemFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  a.runLive,
	}
	a.systemFlags(liveCmd)

	rootCmd.AddCommand(runCmd, infoCmd, exampleCmd, presetsCmd, listCmd, plotCmd, exportCmd, sweepCmd, compareCmd, liveCmd)
	return rootCmd, a
}

// systemFlags binds the flags that select and tune a reaction system.
func (a *app) systemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.configFile, "config", "", "config file path (json or yaml)")
	cmd.Flags().StringVar(&a.preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&a.timeEnd, "time", config.DefaultTime, "simulation time (seconds)")
	cmd.Flags().IntVar(&a.steps, "steps", config.DefaultSteps, "number of time points")
	cmd.Flags().StringVar(&a.integrator, "integrator", config.DefaultIntegrator, "integrator (euler, heun, rk4)")
}
