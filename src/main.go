// Command visualize fetches bandwidth measurements from the NanoPi API and
// renders the full set of bandwidth report charts into the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/adamkpickering/living-lab-visualize/src/api"
	"github.com/adamkpickering/living-lab-visualize/src/charts"
	"github.com/adamkpickering/living-lab-visualize/src/table"
)

type options struct {
	configPath string
	baseURL    string
	outDir     string
	chartWidth int
	timezone   string
	username   string
	savePath   string
}

func main() {
	var opts options
	var logLevel string
	flag.StringVar(&opts.configPath, "config", "visualize.yaml", "Path to YAML config file (optional)")
	flag.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides config)")
	flag.StringVar(&opts.outDir, "out-dir", ".", "Directory chart files are written to")
	flag.IntVar(&opts.chartWidth, "chart-width", 1000, "Chart width in pixels")
	flag.StringVar(&opts.timezone, "timezone", "", "Report timezone (overrides config)")
	flag.StringVar(&opts.username, "username", "", "API username (prompts when empty)")
	flag.StringVar(&opts.savePath, "save", "", "Also save the built bandwidth table to this file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()
	api.SetLogLevel(logLevel)

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// .env is optional; environment beats config file, flags beat both.
	_ = godotenv.Load()
	cfg, err := api.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.FromEnv()
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	if opts.username != "" {
		cfg.Username = opts.username
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	auth, err := api.PromptCredentials(cfg.Username)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := api.NewClient(cfg, auth)
	devices, err := client.Nanopis(ctx)
	if err != nil {
		return err
	}
	labels := api.LabelsFromDevices(devices)

	records, err := client.BandwidthRecords(ctx, nil)
	if err != nil {
		return err
	}
	api.Infof("building bandwidth table from %d records", len(records))
	bw := table.Bandwidth(records)
	if opts.savePath != "" {
		if err := bw.Save(opts.savePath); err != nil {
			return err
		}
		api.Infof("saved bandwidth table to %s", opts.savePath)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	out := func(name string) string { return filepath.Join(opts.outDir, name) }
	w := opts.chartWidth

	renderers := []func() error{
		func() error {
			return charts.Average(bw, labels, out("average_bandwidth.svg"), "Average Bandwidth by Location", w)
		},
		func() error {
			return charts.HourlyAggregate(bw, loc, out("24h_average_bandwidth.svg"), "Average Bandwidth by Hour (Aggregate)", w)
		},
		func() error {
			return charts.Hourly(bw, labels, loc, out("24h_bandwidth.svg"), "Average Bandwidth by Hour (Individual)", w)
		},
		func() error {
			return charts.DayOfWeekAggregate(bw, loc, out("dow_average_bandwidth.svg"), "Average Bandwidth by Day of Week (Aggregate)", w)
		},
		func() error {
			return charts.DayOfWeek(bw, labels, loc, out("dow_bandwidth.svg"), "Average Bandwidth by Day of Week (Individual)", w)
		},
		func() error {
			return charts.FullRangeAggregate(bw, out("all_average_bandwidth.svg"), "Bandwidth over Entire Trial (Aggregate)", w)
		},
		func() error {
			return charts.FullRange(bw, labels, out("all_bandwidth.svg"), "Bandwidth over Entire Trial (Individual)", w)
		},
		func() error {
			return charts.Coverage(bw, labels, out("coverage_bandwidth.png"), "Bandwidth Test Coverage", w)
		},
	}
	for _, render := range renderers {
		if err := render(); err != nil {
			return err
		}
	}
	return nil
}
