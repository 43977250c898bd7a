package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/galpot/internal/config"
	"github.com/san-kum/galpot/internal/pipeline"
	"github.com/san-kum/galpot/internal/potential"
	"github.com/san-kum/galpot/internal/render"
	"github.com/san-kum/galpot/internal/storage"
	"github.com/san-kum/galpot/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	preset     string
	configFile string
	withPhi    bool
	method     string
	theta      float64
	workers    int
	outDir     string
	noPNG      bool
	svg        bool
	save       bool

	chartWidth int
	field      string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// main registers the command tree and exits with status 1 when a command
// returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "galpot",
		Short:         "galactic density profile and gravitational potential",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galpot", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build the model, write figures and print terminal charts",
		RunE:  runModel,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&outDir, "out", config.DefaultOutputDir, "figure output directory")
	runCmd.Flags().BoolVar(&noPNG, "no-png", false, "skip writing PNG figures")
	runCmd.Flags().BoolVar(&svg, "svg", false, "also write SVG figures")
	runCmd.Flags().BoolVar(&save, "save", false, "persist the run under --data")

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "print the density profile chart",
		RunE:  printProfile,
	}
	profileCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	profileCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	profileCmd.Flags().IntVar(&chartWidth, "width", 80, "chart width")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "build the model and browse it interactively",
		RunE:  viewModel,
	}
	addModelFlags(viewCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				phi := "off"
				if cfg.Potential.Enabled {
					phi = cfg.Potential.Method
				}
				fmt.Printf("  %-10s %dx%d grid, half width %g kpc, potential %s\n",
					name, cfg.Grid.UpscaleFactor, cfg.Grid.UpscaleFactor, cfg.Grid.PixelAxisSize, phi)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&chartWidth, "width", 80, "chart width")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&field, "field", storage.FieldDensity, "density, potential or profile")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, profileCmd, viewCmd, presetsCmd, listCmd, plotCmd, exportCSVCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().BoolVar(&withPhi, "potential", false, "compute the gravitational potential")
	cmd.Flags().StringVar(&method, "method", potential.MethodDirect, fmt.Sprintf("potential method %v", potential.Methods()))
	cmd.Flags().Float64Var(&theta, "theta", potential.DefaultTheta, "barnes-hut opening angle")
	cmd.Flags().IntVar(&workers, "workers", 0, "direct sum workers (0 or 1 runs serially)")
}

// loadConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", configFile, err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("potential") {
		cfg.Potential.Enabled = withPhi
	}
	if flags.Changed("method") {
		cfg.Potential.Method = method
		cfg.Potential.Enabled = true
	}
	if flags.Changed("theta") {
		cfg.Potential.Theta = theta
	}
	if flags.Changed("workers") {
		cfg.Potential.Workers = workers
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("no-png") {
		cfg.Output.PNG = !noPNG
	}
	return cfg, cfg.Validate()
}

func execute(cmd *cobra.Command) (*pipeline.Result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return p.Run(ctx)
}

func runModel(cmd *cobra.Command, args []string) error {
	res, err := execute(cmd)
	if err != nil {
		return err
	}
	cfg := res.Config

	if cfg.Output.PNG {
		files, err := render.SaveAll(cfg.Output.Dir, res, svg)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			logger.Info("figure written", "figure", name, "path", files[name])
		}
	}

	if cfg.Output.Terminal {
		fmt.Println(render.ProfileASCII(res.Curves, 80, 15))
		fmt.Println()
		fmt.Println("density")
		fmt.Println(render.FieldANSI(res.Density, 40))
		if res.HasPotential() {
			fmt.Println()
			fmt.Println("potential")
			fmt.Println(render.FieldANSI(res.Potential, 40))
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID, "dir", filepath.Join(dataDir, runID))
	}

	fmt.Printf("\ncompleted in %v\n", res.Elapsed)
	return nil
}

func printProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Potential.Enabled = false
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := p.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(render.ProfileASCII(res.Curves, chartWidth, 15))
	return nil
}

func viewModel(cmd *cobra.Command, args []string) error {
	res, err := execute(cmd)
	if err != nil {
		return err
	}
	return viz.Run(res)
}
