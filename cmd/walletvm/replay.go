package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/clydemeng/walletvm/internal/scenario"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/olekukonko/tablewriter"
	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli/v2"
)

var (
	parallelFlag = &cli.IntFlag{
		Name:  "parallel",
		Usage: "Number of scenarios replayed concurrently",
		Value: 4,
	}
	watchFlag = &cli.BoolFlag{
		Name:  "watch",
		Usage: "Replay a scenario again whenever its file changes",
	}
)

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay scenario files against a fresh ledger",
	ArgsUsage: "<scenario.toml|scenario.yaml>...",
	Flags: []cli.Flag{
		datadirFlag,
		dbEngineFlag,
		parallelFlag,
		watchFlag,
	},
	Action: replay,
}

var errMismatch = errors.New("scenario outcomes did not match expectations")

func replay(ctx *cli.Context) error {
	files := ctx.Args().Slice()
	if len(files) == 0 {
		return errors.New("no scenario files given")
	}
	pool, err := ants.NewPool(ctx.Int(parallelFlag.Name))
	if err != nil {
		return err
	}
	defer pool.Release()

	err = replayAll(ctx, pool, files)
	if !ctx.Bool(watchFlag.Name) {
		return err
	}
	return watch(ctx, pool, files)
}

// replayAll replays files on the pool and prints each result as it is done.
func replayAll(ctx *cli.Context, pool *ants.Pool, files []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, file := range files {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			err := replayFile(ctx, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

var printMu sync.Mutex

func replayFile(ctx *cli.Context, file string) error {
	s, err := scenario.Load(file)
	if err != nil {
		return err
	}
	res, err := scenario.Run(s)
	if err != nil {
		return err
	}
	printMu.Lock()
	printResult(res)
	printMu.Unlock()

	if datadir := ctx.String(datadirFlag.Name); datadir != "" {
		archive, err := scenario.OpenArchive(filepath.Join(datadir, s.Name), ctx.String(dbEngineFlag.Name), false)
		if err != nil {
			return err
		}
		defer archive.Close()
		if err := archive.Store(res); err != nil {
			return err
		}
	}
	if n := res.Mismatches(); n > 0 {
		return fmt.Errorf("%w: %d of %d steps", errMismatch, n, len(res.Steps))
	}
	return nil
}

func printResult(res *scenario.Result) {
	var (
		ok   = color.New(color.FgGreen).SprintFunc()
		fail = color.New(color.FgRed).SprintFunc()
	)
	fmt.Printf("Scenario %s (run %s)\n", res.Scenario, res.RunID)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Op", "Status", "Expected", "Output"})
	table.SetAutoWrapText(false)
	for _, step := range res.Steps {
		status, output := ok("ok"), step.Output
		if step.Err != nil {
			status, output = fail("reverted"), step.Err.Error()
		}
		expected := ok("yes")
		if !step.Expected {
			expected = fail("no")
		}
		table.Append([]string{fmt.Sprint(step.Index), step.Op, status, expected, output})
	}
	table.Render()

	stats := res.Snapshot.Stats
	fmt.Printf("wallets=%d active=%d contributions=%d rewards=%s pool=%s\n\n",
		stats.TotalWallets, stats.ActiveWallets, stats.TotalContributions,
		stats.TotalRewardsDistributed.Dec(), res.Snapshot.RewardPool.Dec())
}

// watch replays a file each time it is written, until interrupted.
func watch(ctx *cli.Context, pool *ants.Pool, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, file := range files {
		if err := watcher.Add(file); err != nil {
			return err
		}
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Watching scenarios", "files", len(files))
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := replayAll(ctx, pool, []string{ev.Name}); err != nil {
				log.Error("Replay failed", "file", ev.Name, "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "err", err)
		case <-sigc:
			log.Info("Stopped watching")
			return nil
		}
	}
}
