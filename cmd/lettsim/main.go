package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verdantlab/lettsim/internal/config"
	"github.com/verdantlab/lettsim/internal/crop"
	"github.com/verdantlab/lettsim/internal/export"
	"github.com/verdantlab/lettsim/internal/layout"
	"github.com/verdantlab/lettsim/internal/logging"
	"github.com/verdantlab/lettsim/internal/metrics"
	"github.com/verdantlab/lettsim/internal/render"
	"github.com/verdantlab/lettsim/internal/sim"
	"github.com/verdantlab/lettsim/internal/strategy"
	"github.com/verdantlab/lettsim/internal/telemetry"
	"github.com/verdantlab/lettsim/internal/viz"
)

const (
	renderImageWidth  = 512
	renderImageHeight = 512
	chartWidth        = 70
	chartHeight       = 12
)

var (
	configFile string
	presetName string
	logLevel   string

	dryWeight    float64
	density      float64
	interval     time.Duration
	interception string
	external     float64
	paramsFile   string
	integrator   string

	strategyFile string
	days         int

	csvOut    string
	jsonOut   string
	svgOut    string
	recordOut string

	renderOn  bool
	renderURL string
	outDir    string

	telemetryOn bool
	broker      string
	plotID      string

	seedFlag int64
	speed    int

	calibFile string
	paramsOut string

	layoutDryWeight float64
	layoutStep      int
	layoutDay       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lettsim",
		Short: "lettuce dry-matter growth simulator",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "run config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "preset, e.g. greenhouse/winter")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a cultivation simulation",
		RunE:  runSimulation,
	}
	addCropFlags(runCmd)
	runCmd.Flags().StringVar(&strategyFile, "strategy", "", "control strategy csv")
	runCmd.Flags().IntVar(&days, "days", 0, "days of synthetic day/night cycle")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (rk4|euler)")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "stream steps to csv file")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "stream steps to json-lines file")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write growth curve svg")
	runCmd.Flags().StringVar(&recordOut, "record", "", "write run record json")
	runCmd.Flags().BoolVar(&renderOn, "render", false, "forward daily frames to the renderer")
	runCmd.Flags().StringVar(&renderURL, "render-url", "", "renderer endpoint")
	runCmd.Flags().StringVar(&outDir, "out", "", "directory for rendered images")
	runCmd.Flags().BoolVar(&telemetryOn, "telemetry", false, "publish biomass over mqtt")
	runCmd.Flags().StringVar(&broker, "broker", "", "mqtt broker url")
	runCmd.Flags().StringVar(&plotID, "plot-id", "", "telemetry plot identifier")
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "layout jitter seed")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the stand grow in the terminal",
		RunE:  runLive,
	}
	addCropFlags(liveCmd)
	liveCmd.Flags().StringVar(&strategyFile, "strategy", "", "control strategy csv")
	liveCmd.Flags().IntVar(&days, "days", 0, "days of synthetic day/night cycle")
	liveCmd.Flags().IntVar(&speed, "speed", 0, "simulation steps per frame")
	liveCmd.Flags().Int64Var(&seedFlag, "seed", 0, "layout jitter seed")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run every integrator over the same schedule",
		RunE:  compareIntegrators,
	}
	addCropFlags(compareCmd)
	compareCmd.Flags().StringVar(&strategyFile, "strategy", "", "control strategy csv")
	compareCmd.Flags().IntVar(&days, "days", 0, "days of synthetic day/night cycle")

	presetsCmd := &cobra.Command{
		Use:   "presets [system/name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "show the model coefficient set",
		RunE:  showParams,
	}
	paramsCmd.Flags().StringVar(&paramsFile, "params", "", "coefficient overrides (yaml)")
	paramsCmd.Flags().StringVar(&calibFile, "calibrate", "", "calibration result to apply (json)")
	paramsCmd.Flags().StringVar(&paramsOut, "out", "", "write merged set to yaml file")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "print a planting frame as json",
		RunE:  printLayout,
	}
	layoutCmd.Flags().Float64Var(&layoutDryWeight, "dry-weight", 1.0, "per-plant dry weight (g)")
	layoutCmd.Flags().Float64Var(&density, "density", 0, "plants per m2")
	layoutCmd.Flags().IntVar(&layoutStep, "step", 0, "frame step index")
	layoutCmd.Flags().IntVar(&layoutDay, "day", 0, "frame day index")
	layoutCmd.Flags().Int64Var(&seedFlag, "seed", 0, "layout jitter seed")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, presetsCmd, paramsCmd, layoutCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addCropFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dryWeight, "dry-weight", 0, "initial per-plant dry weight (g)")
	cmd.Flags().Float64Var(&density, "density", 0, "plants per m2")
	cmd.Flags().DurationVar(&interval, "interval", 0, "control interval, e.g. 5m")
	cmd.Flags().StringVar(&interception, "interception", "", "light interception (beer-lambert|external)")
	cmd.Flags().Float64Var(&external, "external", 0, "external canopy closure fraction")
	cmd.Flags().StringVar(&paramsFile, "params", "", "coefficient overrides (yaml or json)")
}

// loadConfig resolves preset, config file and CLI flags, in ascending
// precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if presetName != "" {
		system, name, ok := strings.Cut(presetName, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be system/name, got %q", presetName)
		}
		preset := config.GetPreset(system, name)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q (systems: %v)", presetName, config.ListSystems())
		}
		cfg = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dry-weight") {
		cfg.Crop.InitialDryWeight = dryWeight
	}
	if flags.Changed("density") {
		cfg.Crop.Density = density
	}
	if flags.Changed("interval") {
		cfg.Crop.Interval = config.Duration(interval)
	}
	if flags.Changed("interception") {
		cfg.Crop.Interception = interception
	}
	if flags.Changed("external") {
		cfg.Crop.ExternalFraction = external
	}
	if flags.Changed("params") {
		cfg.Crop.ParamFile = paramsFile
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("strategy") {
		cfg.Strategy.File = strategyFile
	}
	if flags.Changed("days") {
		cfg.Strategy.Daily.Days = days
	}
	if flags.Changed("csv") {
		cfg.Export.CSV = csvOut
	}
	if flags.Changed("json") {
		cfg.Export.JSON = jsonOut
	}
	if flags.Changed("svg") {
		cfg.Export.SVG = svgOut
	}
	if flags.Changed("record") {
		cfg.Export.Record = recordOut
	}
	if flags.Changed("render") {
		cfg.Render.Enabled = renderOn
	}
	if flags.Changed("render-url") {
		cfg.Render.URL = renderURL
	}
	if flags.Changed("out") {
		cfg.Render.OutDir = outDir
	}
	if flags.Changed("telemetry") {
		cfg.Telemetry.Enabled = telemetryOn
	}
	if flags.Changed("broker") {
		cfg.Telemetry.Broker = broker
	}
	if flags.Changed("plot-id") {
		cfg.Telemetry.PlotID = plotID
	}
	if flags.Changed("seed") {
		cfg.Seed = seedFlag
	}
	return cfg, nil
}

func buildModel(cfg *config.Config) (*crop.Model, error) {
	params := crop.DefaultParameters()
	if cfg.Crop.ParamFile != "" {
		overrides, err := crop.LoadParamSet(cfg.Crop.ParamFile)
		if err != nil {
			return nil, err
		}
		for k, v := range overrides {
			params[k] = v
		}
	}

	mode, err := crop.ParseInterceptionMode(cfg.Crop.Interception)
	if err != nil {
		return nil, err
	}

	model, err := crop.New(crop.Config{
		InitialDryWeight: cfg.Crop.InitialDryWeight,
		PlantDensity:     cfg.Crop.Density,
		Parameters:       params,
		ControlInterval:  cfg.Crop.Interval.Std(),
		Interception:     mode,
	})
	if err != nil {
		return nil, err
	}

	if mode == crop.External {
		if err := model.SetExternalLightInterception(cfg.Crop.ExternalFraction); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func buildSchedule(cfg *config.Config) (strategy.Schedule, string, error) {
	if cfg.Strategy.File != "" {
		sched, err := strategy.LoadCSV(cfg.Strategy.File)
		return sched, cfg.Strategy.File, err
	}

	daily := cfg.Strategy.Daily
	sched := strategy.Daily(strategy.DailySpec{
		Days:        daily.Days,
		Interval:    cfg.Crop.Interval.Std(),
		Sunrise:     daily.Sunrise,
		Photoperiod: daily.Photoperiod,
		DayTemp:     daily.DayTemp,
		NightTemp:   daily.NightTemp,
		PeakRad:     daily.PeakRad,
		DayCO2:      daily.DayCO2,
		NightCO2:    daily.NightCO2,
		Density:     cfg.Crop.Density,
	})
	return sched, "daily cycle", nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	sched, stratName, err := buildSchedule(cfg)
	if err != nil {
		return err
	}

	integ, err := sim.NewIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger(logLevel, os.Stderr)
	params := model.Params()

	runner := sim.NewRunner(integ)
	runner.AddMetric(metrics.NewFinalDryWeight())
	runner.AddMetric(metrics.NewPeakLAI(params["c_lar"], params["c_t"], model.Density()))
	runner.AddMetric(metrics.NewMeanClosure(params["c_k"], params["c_lar"], params["c_t"], model.Density()))
	runner.AddMetric(metrics.NewGrowthRate())

	// One chart sample per simulated hour keeps long runs plottable.
	perHour := int(time.Hour / cfg.Crop.Interval.Std())
	if perHour < 1 {
		perHour = 1
	}
	series := export.NewSeries(perHour)
	runner.AddObserver(series)

	var csvObs *export.CSVObserver
	if cfg.Export.CSV != "" {
		file, err := os.Create(cfg.Export.CSV)
		if err != nil {
			return err
		}
		defer file.Close()
		csvObs = export.NewCSVObserver(file)
		runner.AddObserver(csvObs)
	}

	var jsonObs *export.JSONObserver
	if cfg.Export.JSON != "" {
		file, err := os.Create(cfg.Export.JSON)
		if err != nil {
			return err
		}
		defer file.Close()
		jsonObs = export.NewJSONObserver(file)
		runner.AddObserver(jsonObs)
	}

	if cfg.Telemetry.Enabled {
		conn, err := telemetry.Connect(ctx, cfg.Telemetry.Broker, "lettsim-"+cfg.Telemetry.PlotID)
		if err != nil {
			return err
		}
		geom := telemetry.Geometry{
			LAR:          params["c_lar"],
			RootFraction: params["c_t"],
			Density:      model.Density(),
			K:            params["c_k"],
			External:     -1,
		}
		if model.Mode() == crop.External {
			geom.External = model.Override()
		}
		pub := telemetry.NewPublisher(conn, cfg.Telemetry.PlotID, cfg.Telemetry.QoS, geom, logger)
		defer pub.Close()
		runner.AddObserver(pub)
	}

	runCfg := sim.RunConfig{
		Dt:            cfg.Crop.Interval.Std().Seconds(),
		ValidateState: true,
	}

	if cfg.Render.Enabled {
		client := render.NewClient(cfg.Render.URL, cfg.Render.Timeout.Std(), logger)
		if err := client.Handshake(ctx); err != nil {
			return err
		}
		if err := client.Initialize(ctx, renderImageWidth, renderImageHeight); err != nil {
			return err
		}
		defer func() {
			if err := client.Shutdown(); err != nil {
				logger.Warn("renderer shutdown failed", "err", err)
			}
		}()

		gen := layout.NewGenerator(cfg.Plot.Length, cfg.Plot.Width, cfg.Seed)
		frameNo := 0
		runCfg.OnDay = func(day int, x sim.State) error {
			frameNo++
			frame := gen.Frame(x.Sum(), model.Density(), frameNo, day)
			resp, err := client.Simulate(ctx, frame)
			if err != nil {
				// A dead renderer should not kill a multi-day run.
				logger.Warn("frame render failed", "day", day, "err", err)
				return nil
			}
			if err := render.SaveImages(cfg.Render.OutDir, resp); err != nil {
				logger.Warn("image save failed", "day", day, "err", err)
			}
			return nil
		}
	}

	start := time.Now()
	summary, err := runner.Run(ctx, model, model.InitialState(), sched.Frames(), runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if csvObs != nil {
		if err := csvObs.Flush(); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	if jsonObs != nil {
		if err := jsonObs.Err(); err != nil {
			return fmt.Errorf("json export: %w", err)
		}
	}
	if cfg.Export.SVG != "" {
		svg := export.GrowthCurveSVG(series, 800, 400)
		if err := os.WriteFile(cfg.Export.SVG, []byte(svg), 0644); err != nil {
			return err
		}
	}
	if cfg.Export.Record != "" {
		rec := export.RunRecord{
			Timestamp:  time.Now(),
			Strategy:   stratName,
			Integrator: cfg.Integrator,
			DtSeconds:  runCfg.Dt,
			Steps:      summary.StepsTaken,
			FinalState: summary.Final,
			DryWeight:  summary.Final.Sum(),
			Metrics:    summary.Metrics,
		}
		if err := export.WriteRunRecord(cfg.Export.Record, rec); err != nil {
			return err
		}
	}

	if chart := viz.GrowthChart(series.Weights, chartWidth, chartHeight, "dry weight g/plant"); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "strategy\t%s\n", stratName)
	fmt.Fprintf(w, "integrator\t%s\n", cfg.Integrator)
	fmt.Fprintf(w, "steps\t%d (%d days)\n", summary.StepsTaken, sched.Days())
	fmt.Fprintf(w, "assimilate\t%.4f g/plant\n", summary.Final[0])
	fmt.Fprintf(w, "structural\t%.4f g/plant\n", summary.Final[1])
	for _, name := range sortedKeys(summary.Metrics) {
		fmt.Fprintf(w, "%s\t%.4g\n", name, summary.Metrics[name])
	}
	fmt.Fprintf(w, "wall time\t%s\n", elapsed.Round(time.Millisecond))
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	sched, stratName, err := buildSchedule(cfg)
	if err != nil {
		return err
	}

	return viz.Run(viz.LiveConfig{
		Crop:         model,
		Schedule:     sched.Frames(),
		PlotLength:   cfg.Plot.Length,
		PlotWidth:    cfg.Plot.Width,
		Seed:         cfg.Seed,
		StepsPerTick: speed,
		Title:        stratName,
	})
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sched, stratName, err := buildSchedule(cfg)
	if err != nil {
		return err
	}
	frames := sched.Frames()

	perHour := int(time.Hour / cfg.Crop.Interval.Std())
	if perHour < 1 {
		perHour = 1
	}

	names := sim.Integrators()
	jobs := make([]sim.Job, 0, len(names))
	curves := make(map[string]*export.Series, len(names))
	for _, name := range names {
		model, err := buildModel(cfg)
		if err != nil {
			return err
		}
		integ, err := sim.NewIntegrator(name)
		if err != nil {
			return err
		}
		series := export.NewSeries(perHour)
		curves[name] = series
		jobs = append(jobs, sim.Job{
			Name:       name,
			Dyn:        model,
			Integrator: integ,
			X0:         model.InitialState(),
			Schedule:   frames,
			Config:     sim.RunConfig{Dt: cfg.Crop.Interval.Std().Seconds(), ValidateState: true},
			Observers:  []sim.Observer{series},
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summaries, err := sim.RunBatch(ctx, jobs)
	if err != nil {
		return err
	}

	series := make([][]float64, 0, len(names))
	for _, name := range names {
		series = append(series, curves[name].Weights)
	}
	caption := fmt.Sprintf("dry weight g/plant (%s)", strings.Join(names, " vs "))
	if chart := viz.CompareChart(series, chartWidth, chartHeight, caption); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}

	ref := summaries["rk4"]
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "strategy\t%s\n", stratName)
	fmt.Fprintln(w, "integrator\tfinal dw (g)\tdeviation from rk4")
	for _, name := range names {
		s := summaries[name]
		fmt.Fprintf(w, "%s\t%.6f\t%+.3g\n", name, s.Final.Sum(), s.Final.Sum()-ref.Final.Sum())
	}
	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		system, name, ok := strings.Cut(args[0], "/")
		if !ok {
			return fmt.Errorf("preset must be system/name, got %q", args[0])
		}
		preset := config.GetPreset(system, name)
		if preset == nil {
			return fmt.Errorf("unknown preset %q (systems: %v)", args[0], config.ListSystems())
		}
		data, err := yaml.Marshal(preset)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "preset\tdays\tdensity\tphotoperiod\tday/night temp")
	for _, system := range config.ListSystems() {
		for _, name := range config.ListPresets(system) {
			p := config.GetPreset(system, name)
			d := p.Strategy.Daily
			fmt.Fprintf(w, "%s/%s\t%d\t%.0f\t%dh\t%.0f/%.0f C\n",
				system, name, d.Days, p.Crop.Density, d.Photoperiod, d.DayTemp, d.NightTemp)
		}
	}
	return w.Flush()
}

func showParams(cmd *cobra.Command, args []string) error {
	params := crop.DefaultParameters()
	if paramsFile != "" {
		overrides, err := crop.LoadParamSet(paramsFile)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			params[k] = v
		}
	}

	if calibFile != "" {
		calib, err := crop.LoadParamSet(calibFile)
		if err != nil {
			return err
		}
		if err := crop.NewStore(params).Update(calib); err != nil {
			return err
		}
	}

	if paramsOut != "" {
		return crop.SaveParamSet(paramsOut, params)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, key := range sortedKeys(params) {
		fmt.Fprintf(w, "%s\t%g\n", key, params[key])
	}
	return w.Flush()
}

func printLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gen := layout.NewGenerator(cfg.Plot.Length, cfg.Plot.Width, cfg.Seed)
	frame := gen.Frame(layoutDryWeight, cfg.Crop.Density, layoutStep, layoutDay)

	data, err := json.MarshalIndent(frame, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sortedKeys[M ~map[string]float64](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
