package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chemsim/internal/config"
	"github.com/san-kum/chemsim/internal/experiment"
	"github.com/san-kum/chemsim/internal/export"
	"github.com/san-kum/chemsim/internal/integrators"
	"github.com/san-kum/chemsim/internal/kinetics"
	"github.com/san-kum/chemsim/internal/storage"
	"github.com/san-kum/chemsim/internal/sweep"
	"github.com/san-kum/chemsim/internal/telemetry"
	"github.com/san-kum/chemsim/internal/viz"
	"github.com/spf13/cobra"
)

const (
	plotWidth  = 80
	plotHeight = 15
	svgWidth   = 1000
	svgHeight  = 600
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// loadSystem resolves the config for a command: a config file wins over a
// preset, which wins over the built-in example. Flags the user set win over
// all of them.
func (a *app) loadSystem(cmd *cobra.Command) (*config.Config, string, error) {
	var (
		cfg    *config.Config
		source string
	)
	switch {
	case a.configFile != "":
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, source = loaded, "config:"+a.configFile
	case a.preset != "":
		cfg = config.GetPreset(a.preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", a.preset, config.ListPresets())
		}
		source = "preset:" + a.preset
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), "No configuration file provided. Using default example reaction: A + B → C")
		cfg, source = config.Example(), "example"
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Time = a.timeEnd
	}
	if flags.Changed("steps") {
		cfg.Steps = a.steps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = a.integrator
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

func (a *app) buildExperiment(cmd *cobra.Command) (*experiment.Experiment, *config.Config, string, error) {
	cfg, source, err := a.loadSystem(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	exp, err := experiment.FromConfig(cfg, experiment.WithTelemetry(a.telemetry))
	if err != nil {
		return nil, nil, "", err
	}
	return exp, cfg, source, nil
}

func (a *app) runSimulation(cmd *cobra.Command, args []string) error {
	exp, cfg, source, err := a.buildExperiment(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printInfo(out, exp.Info())

	fmt.Fprintf(out, "\nRunning simulation for %g seconds with %d steps (%s)...\n", cfg.Time, cfg.Steps, cfg.Integrator)
	res, err := exp.Run(cmd.Context(), experiment.RunConfig{
		Time:       cfg.Time,
		Steps:      cfg.Steps,
		Integrator: cfg.Integrator,
	})
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}

	fmt.Fprintln(out, "\nFinal concentrations:")
	final := res.Trajectory.Final()
	for _, c := range res.Trajectory.Species {
		fmt.Fprintf(out, "  %s: %.6f mol/L\n", c, final[c.Formula()])
	}
	fmt.Fprintf(out, "\ncompleted in %v\n", res.Elapsed)
	fmt.Fprintln(out, "metrics:")
	for _, name := range []string{"mass_drift", "min_concentration"} {
		fmt.Fprintf(out, "  %s: %.6g\n", name, res.Trajectory.Metrics[name])
	}

	if a.plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, export.Plot(res.Trajectory, plotWidth, plotHeight))
	}
	if a.svgFile != "" {
		if err := export.WriteSVG(a.svgFile, res.Trajectory, svgWidth, svgHeight); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plot saved to %s\n", a.svgFile)
	}
	if a.save {
		st, err := storage.Open(a.storeKind, a.dataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.Save(cmd.Context(), storage.NewMetadata(source, exp.Reactions(), res), res.Trajectory)
		if err != nil {
			return err
		}
		telemetry.WithRunID(telemetry.FromContext(cmd.Context()), runID).Info("run saved", "store", a.storeKind)
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	return nil
}

func printInfo(w io.Writer, info experiment.Info) {
	text := info.String()
	header, rest, _ := strings.Cut(text, "\n")
	fmt.Fprintln(w, titleStyle.Render(header))
	fmt.Fprint(w, rest)
}

func (a *app) showInfo(cmd *cobra.Command, args []string) error {
	exp, _, _, err := a.buildExperiment(cmd)
	if err != nil {
		return err
	}
	printInfo(cmd.OutOrStdout(), exp.Info())
	return nil
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIME\tSTEPS\tREACTIONS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		exp, err := experiment.FromConfig(cfg)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		eqs := make([]string, 0, len(cfg.Reactions))
		for _, r := range exp.Reactions() {
			eqs = append(eqs, r.String())
		}
		fmt.Fprintf(w, "%s\t%g\t%d\t%s\n", name, cfg.Time, cfg.Steps, strings.Join(eqs, "; "))
	}
	return w.Flush()
}

func (a *app) openStore() (storage.Store, error) {
	return storage.Open(a.storeKind, a.dataDir)
}

func (a *app) listRuns(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIMESTAMP\tT_END\tSTEPS\tINTEG\tSPECIES")
	for _, run := range runs {
		formulas := make([]string, len(run.Species))
		for i, sp := range run.Species {
			formulas[i] = sp.Formula
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%s\n",
			run.ID,
			run.Source,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Time,
			run.Steps,
			run.Integrator,
			strings.Join(formulas, ","),
		)
	}
	return w.Flush()
}

func (a *app) plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "source: %s\n", meta.Source)
	for _, r := range meta.Reactions {
		fmt.Fprintf(out, "  %s\n", r)
	}
	fmt.Fprintf(out, "samples: %d\n\n", traj.Len())
	fmt.Fprintln(out, export.Plot(traj, plotWidth, plotHeight))

	if a.svgFile != "" {
		if err := export.WriteSVG(a.svgFile, traj, svgWidth, svgHeight); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plot saved to %s\n", a.svgFile)
	}
	return nil
}

func (a *app) exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if a.outFile != "" {
		return storage.ExportJSON(a.outFile, meta, traj)
	}
	return storage.WriteJSON(cmd.OutOrStdout(), meta, traj)
}

func (a *app) runSweep(cmd *cobra.Command, args []string) error {
	exp, cfg, _, err := a.buildExperiment(cmd)
	if err != nil {
		return err
	}

	res, err := sweep.Run(cmd.Context(), exp, sweep.Config{
		Reaction:   a.reaction,
		From:       a.from,
		To:         a.to,
		Count:      a.count,
		Workers:    a.workers,
		Time:       cfg.Time,
		Steps:      cfg.Steps,
		Integrator: cfg.Integrator,
		Telemetry:  a.telemetry,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping k of %s over [%g, %g]\n\n", res.Reaction, a.from, a.to)

	species := exp.System().Species()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"K"}
	for _, c := range species {
		header = append(header, c.Formula())
	}
	header = append(header, "MASS_DRIFT", "TIME")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, p := range res.Points {
		row := []string{fmt.Sprintf("%.4g", p.RateConstant)}
		for _, c := range species {
			row = append(row, fmt.Sprintf("%.6f", p.Final[c.Formula()]))
		}
		row = append(row, fmt.Sprintf("%.3g", p.Metrics["mass_drift"]), p.Elapsed.String())
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if a.target != "" {
		best, ok := res.Best(a.target)
		if !ok {
			return fmt.Errorf("unknown species: %s", a.target)
		}
		fmt.Fprintf(out, "\nbest k for %s: %.4g (final %.6f mol/L)\n", a.target, best.RateConstant, best.Final[a.target])
	}
	return nil
}

func (a *app) compareIntegrators(cmd *cobra.Command, args []string) error {
	exp, cfg, _, err := a.buildExperiment(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = integrators.Names()
	}
	for _, name := range args {
		if _, err := integrators.New(name); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators over %g seconds with %d steps\n\n", cfg.Time, cfg.Steps)

	species := exp.System().Species()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"INTEGRATOR"}
	for _, c := range species {
		header = append(header, c.Formula())
	}
	header = append(header, "MASS_DRIFT", "TIME")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, name := range args {
		res, err := exp.Run(cmd.Context(), experiment.RunConfig{Time: cfg.Time, Steps: cfg.Steps, Integrator: name})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		final := res.Trajectory.Final()
		row := []string{name}
		for _, c := range species {
			row = append(row, fmt.Sprintf("%.6f", final[c.Formula()]))
		}
		row = append(row, fmt.Sprintf("%.3g", res.Trajectory.Metrics["mass_drift"]), res.Elapsed.String())
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (a *app) runLive(cmd *cobra.Command, args []string) error {
	exp, cfg, source, err := a.buildExperiment(cmd)
	if err != nil {
		return err
	}
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(exp.System(), stepper, exp.InitialConcentrations(), kinetics.Linspace(0, cfg.Time, cfg.Steps), source)
	if err != nil {
		return err
	}
	final, err := viz.Run(m)
	if err != nil {
		return err
	}
	if err := final.Err(); err != nil {
		return err
	}
	if final.Done() {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Final concentrations:")
		conc := final.Concentrations()
		for _, c := range exp.System().Species() {
			fmt.Fprintf(out, "  %s: %.6f mol/L\n", c, conc[c.Formula()])
		}
	}
	return nil
}
