package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/loft/internal/config"
	"github.com/san-kum/loft/internal/metrics"
	"github.com/san-kum/loft/internal/export"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/storage"
	"github.com/san-kum/loft/internal/viz"
)

var (
	configFile  string
	dt          float64
	duration    float64
	sampleEvery int
	collisions  bool
	verbose     bool
	theme       string
	plotBodies  string
	output      string
	dataDir     string
	save        bool
	svgFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loft",
		Short: "rigid bodies under gravity",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return viz.RunMenu(sim.WithLogger(logger))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log collisions and debug output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".loft", "data directory for saved runs")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample", 0, "record every n-th step (0 uses the config)")
	runCmd.Flags().StringVar(&plotBodies, "plot", "", "body to plot speed of, or a,b to plot their separation")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	checkCmd := &cobra.Command{
		Use:   "check [preset]",
		Short: "report conservation drift at dt, dt/2 and dt/4",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkScenario,
	}
	addScenarioFlags(checkCmd)

	saveCmd := &cobra.Command{
		Use:   "save [preset]",
		Short: "write a scenario as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  saveScenario,
	}
	addScenarioFlags(saveCmd)
	saveCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.yaml)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotBodies, "plot", "", "body to plot speed of, or a,b to plot their separation")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the x-y trajectories to an svg file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write a saved run as json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, checkCmd, saveCmd, runsCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "scenario file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().BoolVar(&collisions, "collisions", false, "capture bodies on contact")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads the scenario named by --config or the preset argument, then applies
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case len(args) == 1:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		return nil, errors.New("need a preset name or --config")
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("collisions") {
		cfg.Collisions = collisions
	}
	if flags.Lookup("sample") != nil && flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	return cfg, nil
}

func newSimulator(cfg *config.Config, logger *zap.Logger) (*sim.Simulator, sim.Config, error) {
	s, err := cfg.Build(sim.WithLogger(logger))
	if err != nil {
		return nil, sim.Config{}, err
	}
	simulator := sim.New(s.Universe)
	simulator.AddMetric(metrics.NewEnergy())
	simulator.AddMetric(metrics.NewEnergyDrift())
	simulator.AddMetric(metrics.NewLinearMomentumDrift())
	simulator.AddMetric(metrics.NewAngularMomentumDrift())
	return simulator, s.Sim, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	simulator, simCfg, err := newSimulator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %gs...\n", cfg.Name, cfg.Duration)
	start := time.Now()
	result, err := simulator.Run(ctx, simCfg)
	if err != nil {
		return err
	}
	logger.Info("run complete",
		zap.String("scenario", cfg.Name),
		zap.Int("steps", result.StepsTaken),
		zap.Duration("elapsed", time.Since(start)),
	)

	fmt.Printf("steps: %d\n\n", result.StepsTaken)
	if err := printBodies(result); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if chart := plotResult(cfg, result); chart != "" {
		fmt.Println()
		fmt.Println(chart)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func printBodies(result *sim.Result) error {
	if len(result.Samples) == 0 {
		return nil
	}
	last := result.Samples[len(result.Samples)-1]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BODY\tMASS\tCM\tVELOCITY\tSPIN\t(t=%gs)\n", last.Time)
	for _, b := range last.Bodies {
		fmt.Fprintf(w, "%s\t%.4g\t%v\t%v\t%v\t\n", b.Name, b.Mass, b.CM, b.Velocity, b.Omega)
	}
	return w.Flush()
}

// plotResult charts --plot, or by default the separation of the first two bodies in
// the config, or the speed of the only one.
func plotResult(cfg *config.Config, result *sim.Result) string {
	names := strings.Split(plotBodies, ",")
	if plotBodies == "" {
		names = nil
		for _, b := range cfg.Bodies[:min(2, len(cfg.Bodies))] {
			names = append(names, b.Name)
		}
	}

	switch len(names) {
	case 1:
		return viz.Plot(viz.Series(result, names[0], viz.Speed), names[0]+" speed (m/s)", 80, 10)
	case 2:
		return viz.Plot(viz.Separation(result, names[0], names[1]), names[0]+"-"+names[1]+" separation (m)", 80, 10)
	}
	return ""
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// The terminal belongs to the view, so only warnings and errors go to stderr.
	logger, err := zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		return err
	}
	defer logger.Sync()
	return viz.RunLive(cfg, theme, sim.WithLogger(logger))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tCAPTURES\tDT\tDURATION\tCOLLISIONS")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%gs\t%gs\t%t\n",
			name, len(p.Bodies), len(p.Captures), p.Dt, p.Duration, p.Collisions)
	}
	return w.Flush()
}

// checkScenario runs the scenario at three timesteps in parallel. Drift that does not
// shrink with dt points at a conservation bug rather than integration error.
func checkScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	steps := []float64{cfg.Dt, cfg.Dt / 2, cfg.Dt / 4}
	ensemble := sim.NewEnsemble(len(steps), func(run int) (*sim.Simulator, sim.Config, error) {
		c := *cfg
		c.Dt = steps[run]
		return newSimulator(&c, logger.With(zap.Int("run", run)))
	})

	results, err := ensemble.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tLINEAR\tANGULAR\tENERGY\tERRORS")
	for i, res := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3g\t%.3g\t%.3g\t%d\n",
			steps[i], res.StepsTaken,
			res.Metrics["linear_momentum_drift"],
			res.Metrics["angular_momentum_drift"],
			res.Metrics["energy_drift"],
			len(res.Errors))
	}
	return w.Flush()
}

func saveScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	path := output
	if path == "" {
		path = cfg.Name + ".yaml"
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSTEPS\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%gs\t%gs\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			len(run.Errors),
		)
	}
	return w.Flush()
}

// runID returns the run named in args, or the latest saved run.
func runID(st *storage.Store, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runID(st, args)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(id)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(id)
	if err != nil {
		return err
	}

	result := &sim.Result{Samples: samples}
	if chart := plotResult(cfg, result); chart != "" {
		fmt.Println(chart)
	} else {
		fmt.Println("nothing to plot")
	}

	if svgFile != "" {
		svg := export.Trajectories(samples, 800, 800)
		if svg == "" {
			return errors.New("no trajectories to export")
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runID(st, args)
	if err != nil {
		return err
	}
	if output == "" {
		return st.ExportJSON(os.Stdout, id)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return st.ExportJSON(f, id)
}
