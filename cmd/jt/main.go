package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"jobtree/pkg/analysis"
	"jobtree/pkg/config"
	"jobtree/pkg/loader"
	"jobtree/pkg/model"
	"jobtree/pkg/tree"
	"jobtree/pkg/ui"
	"jobtree/pkg/watcher"
)

const version = "0.1.0"

func main() {
	var (
		path       = flag.String("path", ".", "Project root containing the .jobtree directory")
		channel    = flag.String("channel", "", "Restrict to one job channel")
		summary    = flag.Bool("summary", false, "Print a job summary and exit")
		stuck      = flag.Bool("stuck", false, "List stuck pending jobs and exit")
		clearStuck = flag.Bool("clear-stuck", false, "Clear stuck and expired jobs (dry run unless -force)")
		force      = flag.Bool("force", false, "Actually write when clearing stuck jobs")
		treeOut    = flag.Bool("tree", false, "Print the group tree and exit")
		showVer    = flag.Bool("version", false, "Show version")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Println("Usage: jt [options]")
		fmt.Println("\nA terminal viewer for job snapshots organized by group hierarchy.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println("jt version " + version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *channel != "" {
		cfg.Channel = *channel
	}

	root := *path
	if cfg.DataDir != "" {
		root = cfg.DataDir
	}

	ctx := context.Background()
	snap, err := loader.LoadSnapshot(ctx, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		fmt.Fprintln(os.Stderr, "Make sure a .jobtree directory exists here, or pass -path.")
		os.Exit(1)
	}

	jobs := filterChannel(snap.Jobs, cfg.Channel)

	// Robot modes print and exit; the TUI is for interactive use only.
	switch {
	case *summary:
		printSummary(analysis.Summarize(jobs))
		return
	case *stuck:
		printStuck(jobs, cfg)
		return
	case *clearStuck:
		runClearStuck(root, jobs, cfg, *force)
		return
	case *treeOut:
		printTree(snap, jobs, cfg)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal. Use -summary, -stuck, or -tree for scripted output.")
		os.Exit(1)
	}

	m := ui.NewModel(snap, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.Watch {
		w := watcher.New(root, cfg.Debounce, func() {
			reloaded, err := loader.LoadSnapshot(ctx, root)
			if err != nil {
				p.Send(ui.ErrMsg{Err: err})
				return
			}
			p.Send(ui.SnapshotMsg{Snapshot: reloaded})
		}, logger)

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := w.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
				logger.Warn("watcher stopped", "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

func filterChannel(jobs []model.Job, channel string) []model.Job {
	if channel == "" {
		return jobs
	}
	var out []model.Job
	for _, j := range jobs {
		if j.Channel == channel {
			out = append(out, j)
		}
	}
	return out
}

func printSummary(s analysis.Summary) {
	fmt.Printf("%d jobs\n", s.Total)
	for _, ch := range s.Channels() {
		fmt.Printf("  %-20s %d\n", ch, s.ByChannel[ch])
	}
	for status, count := range s.ByStatus {
		fmt.Printf("  %-12s %d\n", status, count)
	}
	if s.OldestPending != nil {
		fmt.Printf("oldest pending: %s (created %s)\n",
			s.OldestPending.ID, s.OldestPending.Created.Format(time.RFC3339))
	}
}

func printStuck(jobs []model.Job, cfg config.Config) {
	healthCfg := analysis.HealthConfig{
		StaleThreshold:   cfg.StaleThreshold,
		RunningThreshold: cfg.RunningThreshold,
	}
	stale := analysis.Stale(jobs, time.Now().UTC(), healthCfg)
	if len(stale) == 0 {
		fmt.Println("no stuck jobs")
		return
	}
	for _, j := range stale {
		fmt.Printf("%s  %-10s %-16s created %s\n",
			j.ID, j.Status, j.Channel, j.Created.Format(time.RFC3339))
	}
}

func runClearStuck(root string, jobs []model.Job, cfg config.Config, force bool) {
	opts := analysis.ClearOptions{
		DryRun:           !force,
		Channel:          cfg.Channel,
		Threshold:        cfg.StaleThreshold,
		RunningThreshold: cfg.RunningThreshold,
	}

	var db *loader.DB
	if force {
		var err error
		db, err = loader.OpenDB(filepath.Join(loader.Dir(root), loader.DBFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	result, err := analysis.ClearStuck(db, jobs, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing stuck jobs: %v\n", err)
		os.Exit(1)
	}

	verb := "cleared"
	if result.DryRun {
		verb = "would clear"
	}
	fmt.Printf("%s %d jobs\n", verb, len(result.Cleared))
	for _, j := range result.Cleared {
		fmt.Printf("  %s  %s\n", j.ID, j.LastError)
	}
	if result.DryRun && len(result.Cleared) > 0 {
		fmt.Println("run again with -force to write")
	}
}

func printTree(snap *loader.Snapshot, jobs []model.Job, cfg config.Config) {
	healthCfg := analysis.HealthConfig{
		StaleThreshold:   cfg.StaleThreshold,
		RunningThreshold: cfg.RunningThreshold,
	}
	rollups := analysis.RollupJobs(snap.Groups, jobs, time.Now().UTC(), healthCfg)

	for _, n := range tree.Flatten(snap.Groups) {
		name := n.Group.Name
		if name == "" {
			name = n.Group.ID
		}
		line := tree.Prefix(n) + name
		if r := rollups[n.Group.ID]; r != nil && r.Subtree > 0 {
			line += fmt.Sprintf("  (%d)", r.Subtree)
		}
		fmt.Println(line)
	}
}
