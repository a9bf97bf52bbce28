// Command snapshot fetches all four measurement kinds, builds their tables,
// and saves them under a data directory for offline reuse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/adamkpickering/living-lab-visualize/src/api"
	"github.com/adamkpickering/living-lab-visualize/src/table"
)

func main() {
	configPath := flag.String("config", "visualize.yaml", "Path to YAML config file (optional)")
	baseURL := flag.String("base-url", "", "API base URL (overrides config)")
	outDir := flag.String("out-dir", "data", "Directory snapshot files are written to")
	timezone := flag.String("timezone", "", "Report timezone (overrides config)")
	username := flag.String("username", "", "API username (prompts when empty)")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()
	api.SetLogLevel(*logLevel)

	if err := run(*configPath, *baseURL, *timezone, *username, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, baseURL, timezone, username, outDir string) error {
	_ = godotenv.Load()
	cfg, err := api.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = cfg.FromEnv()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timezone != "" {
		cfg.Timezone = timezone
	}
	if username != "" {
		cfg.Username = username
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	auth, err := api.PromptCredentials(cfg.Username)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	ctx := context.Background()
	client := api.NewClient(cfg, auth)

	bandwidth, err := client.BandwidthRecords(ctx, nil)
	if err != nil {
		return err
	}
	if err := table.Bandwidth(bandwidth).Save(filepath.Join(outDir, "bandwidth.gob")); err != nil {
		return err
	}

	jitter, err := client.JitterRecords(ctx, nil)
	if err != nil {
		return err
	}
	if err := table.Jitter(jitter).Save(filepath.Join(outDir, "jitter.gob")); err != nil {
		return err
	}

	latency, err := client.LatencyRecords(ctx, nil)
	if err != nil {
		return err
	}
	if err := table.Latency(latency).Save(filepath.Join(outDir, "latency.gob")); err != nil {
		return err
	}

	ping, err := client.PingRecords(ctx, nil)
	if err != nil {
		return err
	}
	if err := table.Ping(ping, loc).Save(filepath.Join(outDir, "ping.gob")); err != nil {
		return err
	}

	api.Infof("snapshots written to %s", outDir)
	return nil
}
