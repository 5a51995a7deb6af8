package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/fc-shift-sim/sim"
	"github.com/inference-sim/fc-shift-sim/sim/catalog"
	"github.com/inference-sim/fc-shift-sim/sim/control"
	"github.com/inference-sim/fc-shift-sim/sim/trace"
)

var (
	// CLI flags shared by run and serve
	seed        int64  // Seed for the shift RNG (low 32 bits are used)
	scenarioKey string // Scenario id or catalog index
	catalogPath string // Optional custom scenario catalog (YAML)
	logLevel    string // Log verbosity level

	// CLI flags for run
	actionsPath  string // Optional action script (YAML)
	traceOutPath string // Optional trace export path (.jsonl.zst)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fc-shift-sim",
	Short: "Tick-driven fulfillment-center shift simulator",
}

// setupLogging applies --log or exits.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadCatalog returns the custom catalog if --catalog is set, else the embedded one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// newController resolves the scenario flag against the catalog.
func newController() (*control.Controller, error) {
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	_, idx, err := cat.Lookup(scenarioKey)
	if err != nil {
		return nil, err
	}
	return control.New(cat, idx, uint32(sim.NewSimulationKey(seed)))
}

// runCmd plays one shift headless and prints metrics, score and recap
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one shift to completion without a wall clock",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		ctl, err := newController()
		if err != nil {
			logrus.Fatalf("unable to set up shift: %v", err)
		}

		var script *control.Script
		if actionsPath != "" {
			script, err = control.LoadScript(actionsPath)
			if err != nil {
				logrus.Fatalf("unable to read action script: %v", err)
			}
			logrus.Infof("Loaded %d scripted actions from %s", len(script.Actions), actionsPath)
		}

		v := ctl.RunToEnd(script)
		st := ctl.Trace()
		printReport(os.Stdout, v, trace.Summarize(st))

		if traceOutPath != "" {
			if err := trace.WriteJSONLZstd(traceOutPath, st); err != nil {
				logrus.Fatalf("unable to write trace: %v", err)
			}
			logrus.Infof("Trace written to %s", traceOutPath)
		}
		logrus.Info("Simulation complete.")
	},
}

// printReport writes the end-of-shift report.
func printReport(w io.Writer, v control.View, summary *trace.TraceSummary) {
	fmt.Fprintf(w, "Scenario: %s (%s), seed %d, run %s\n\n", v.ScenarioName, v.ScenarioID, v.Seed, v.RunID)
	v.Metrics.Print(w)

	if v.Score != nil {
		s := v.Score
		fmt.Fprintln(w, "\n=== Score ===")
		fmt.Fprintf(w, "Total   : %.1f (%s)\n", s.Total, s.Rank)
		fmt.Fprintf(w, "Service : %.1f\n", s.Service)
		fmt.Fprintf(w, "Cost    : %.1f\n", s.Cost)
		fmt.Fprintf(w, "Quality : %.1f\n", s.Quality)
		fmt.Fprintf(w, "Safety  : %.1f\n", s.Safety)
		fmt.Fprintf(w, "People  : %.1f\n", s.People)
	}
	if v.Recap != nil {
		fmt.Fprintln(w, "\n=== Recap ===")
		fmt.Fprint(w, v.Recap.String())
	}
	if summary != nil {
		printTraceSummary(w, summary)
	}
}

// printTraceSummary writes the trace aggregates, actions sorted by name.
func printTraceSummary(w io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintln(w, "\n=== Trace ===")
	fmt.Fprintf(w, "Ticks: %d, actions accepted/rejected: %d/%d, peak exceptions: %d (tick %d)\n",
		summary.Ticks, summary.AcceptedActions, summary.RejectedActions, summary.PeakExceptions, summary.PeakTick)
	if summary.BottleneckStage >= 0 {
		fmt.Fprintf(w, "Bottleneck: %s (mean input queue %.1f)\n", sim.Stage(summary.BottleneckStage), summary.BottleneckMean)
	}
	kinds := make([]string, 0, len(summary.ActionsByKind))
	for k := range summary.ActionsByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-20s %d\n", k, summary.ActionsByKind[k])
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, serveCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for the shift RNG")
		c.Flags().StringVar(&scenarioKey, "scenario", "baseline", "Scenario id or catalog index")
		c.Flags().StringVar(&catalogPath, "catalog", "", "Path to a custom scenario catalog (YAML)")
		c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}
	scenariosCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a custom scenario catalog (YAML)")

	runCmd.Flags().StringVar(&actionsPath, "actions", "", "Path to an action script (YAML)")
	runCmd.Flags().StringVar(&traceOutPath, "trace-out", "", "Write a zstd-compressed JSONL trace to this path")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address (loopback only)")
	serveCmd.Flags().IntVar(&serveSpeed, "speed", 1, "Initial speed multiplier (1-4)")

	rootCmd.AddCommand(runCmd, scenariosCmd, serveCmd)
}
