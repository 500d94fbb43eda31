package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sdnsim/internal/config"
	"sdnsim/internal/flowlog"
	"sdnsim/internal/store"
)

const usage = `sdnsim - energy-aware SDN routing simulator

Usage:
  sdnsim config init --out <path>
  sdnsim run --config <path> [--seed <n>] [--duration <sec>] [--nodes <n>]
  sdnsim sweep --config <path> --seeds 1,2,3 [--out-dir <dir>]
  sdnsim stats --path <flows.csv> [--since <duration>]
  sdnsim export csv --path <flows.csv> --out <file>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
	case "config":
		handleConfig(os.Args[2:])
	case "run":
		handleRun(os.Args[2:])
	case "sweep":
		handleSweep(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "export":
		handleExport(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func handleConfig(args []string) {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, "config subcommand required\n")
		os.Exit(2)
	}
	if args[0] != "init" {
		fmt.Fprintf(os.Stderr, "unknown config subcommand %q\n", args[0])
		os.Exit(2)
	}

	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	out := fs.String("out", "sdnsim.yaml", "output config path")
	_ = fs.Parse(args[1:])

	if err := config.Save(*out, config.Config{}); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", *out)
}

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	seed := fs.Int64("seed", 0, "seed override")
	duration := fs.Float64("duration", 0, "duration override in seconds")
	nodes := fs.Int("nodes", 0, "node count override")
	flows := fs.String("flows", "", "flows CSV path override")
	snapshot := fs.String("snapshot", "", "run snapshot path override")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	config.ApplyDefaults(&cfg)
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if *duration != 0 {
		cfg.Sim.DurationSec = *duration
	}
	if *nodes != 0 {
		cfg.Sim.Nodes = *nodes
	}
	if *flows != "" {
		cfg.Sim.FlowsPath = *flows
	}
	if *snapshot != "" {
		cfg.Sim.SnapshotPath = *snapshot
	}
	if err := config.Validate(cfg); err != nil {
		fatal(err)
	}

	snap, err := runSimulation(cfg)
	if err != nil {
		fatal(err)
	}
	printSnapshot(snap)
}

func handleSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	seedList := fs.String("seeds", "", "comma-separated seeds")
	outDir := fs.String("out-dir", "sweep", "output directory")
	duration := fs.Float64("duration", 0, "duration override in seconds")
	_ = fs.Parse(args)

	seeds, err := splitSeeds(*seedList)
	if err != nil {
		fatal(err)
	}
	if len(seeds) == 0 {
		fatal(errors.New("--seeds is required"))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	config.ApplyDefaults(&cfg)
	if *duration != 0 {
		cfg.Sim.DurationSec = *duration
	}
	if err := config.Validate(cfg); err != nil {
		fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal(err)
	}

	snaps := make([]*store.Snapshot, len(seeds))
	var g errgroup.Group
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			simCfg := *cfg.Sim
			simCfg.Seed = seed
			simCfg.FlowsPath = filepath.Join(*outDir, fmt.Sprintf("flows-%d.csv", seed))
			simCfg.SnapshotPath = filepath.Join(*outDir, fmt.Sprintf("run-%d.yaml", seed))
			runCfg := cfg
			runCfg.Sim = &simCfg

			snap, err := runSimulation(runCfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatal(err)
	}

	for i, snap := range snaps {
		fmt.Fprintf(os.Stdout, "seed=%d flows=%d dropped=%d trained=%v\n",
			seeds[i], snap.FlowsProcessed, snap.FlowsDropped, snap.ModelTrained)
	}
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	path := fs.String("path", "", "flows CSV path")
	since := fs.Duration("since", 0, "only count flows at or after this sim time")
	_ = fs.Parse(args)

	if *path == "" {
		fatal(errors.New("--path is required"))
	}

	items, err := flowlog.ReadCSV(*path)
	if err != nil {
		fatal(err)
	}

	summary := flowlog.Summarize(items, *since)
	if summary.Count == 0 {
		fmt.Fprintln(os.Stdout, "no flows in window")
		return
	}

	fmt.Fprintf(os.Stdout, "flows=%d from=%.3fs to=%.3fs\n",
		summary.Count, summary.From.Seconds(), summary.To.Seconds())
	fmt.Fprintf(os.Stdout, "quality avg=%.2f p95=%.2f min=%.2f max=%.2f\n",
		summary.AvgQuality, summary.P95Quality, summary.MinQuality, summary.MaxQuality)
	fmt.Fprintf(os.Stdout, "delay avg=%.6fs\n", summary.AvgDelay)
	fmt.Fprintf(os.Stdout, "flows by link: %s\n", formatLinkCounts(summary.FlowsByLink))
}

func handleExport(args []string) {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, "export subcommand required\n")
		os.Exit(2)
	}
	if args[0] != "csv" {
		fmt.Fprintf(os.Stderr, "unknown export format %q\n", args[0])
		os.Exit(2)
	}

	fs := flag.NewFlagSet("export csv", flag.ExitOnError)
	path := fs.String("path", "", "flows CSV path")
	out := fs.String("out", "", "output file")
	_ = fs.Parse(args[1:])

	if *path == "" || *out == "" {
		fatal(errors.New("--path and --out are required"))
	}

	// Re-encoding instead of copying validates every record on the way out.
	items, err := flowlog.ReadCSV(*path)
	if err != nil {
		fatal(err)
	}
	file, err := os.Create(*out)
	if err != nil {
		fatal(err)
	}
	if err := flowlog.WriteCSV(file, items); err != nil {
		file.Close()
		fatal(err)
	}
	if err := file.Close(); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stdout, "exported %d flows to %s\n", len(items), *out)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}
	return config.Load(path)
}

func printSnapshot(snap *store.Snapshot) {
	fmt.Fprintf(os.Stdout, "sim time=%.1fs nodes_seen=%d\n", snap.SimTimeSec, snap.NodesSeen)
	fmt.Fprintf(os.Stdout, "flows processed=%d dropped=%d recorded=%d trained=%v\n",
		snap.FlowsProcessed, snap.FlowsDropped, snap.FlowsRecorded, snap.ModelTrained)
	for _, ns := range snap.Nodes {
		fmt.Fprintf(os.Stdout, "node %d: battery=%.1f%% state=%s sent=%d forwarded=%d delivered=%d dropped=%d\n",
			ns.Addr, ns.BatteryLevel, ns.BatteryState, ns.Sent, ns.Forwarded, ns.Delivered, ns.Dropped)
	}
}

func formatLinkCounts(byLink map[int]int) string {
	links := make([]int, 0, len(byLink))
	for link := range byLink {
		links = append(links, link)
	}
	sort.Ints(links)

	parts := make([]string, 0, len(links))
	for _, link := range links {
		parts = append(parts, fmt.Sprintf("%d=%d", link, byLink[link]))
	}
	return strings.Join(parts, " ")
}

func splitSeeds(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	seeds := make([]int64, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		seed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", trimmed, err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

func fatal(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
