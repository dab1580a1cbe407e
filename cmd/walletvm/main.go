// walletvm replays wallet factory scenarios and inspects their archives.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a rotated file instead of the terminal",
	}
	logMaxSizeFlag = &cli.IntFlag{
		Name:  "log.maxsize",
		Usage: "Maximum size in MB of a log file before it is rotated",
		Value: 100,
	}
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Directory for ledger archives",
	}
	dbEngineFlag = &cli.StringFlag{
		Name:  "db.engine",
		Usage: "Archive database engine (leveldb or pebble)",
		Value: "leveldb",
	}
)

var app = &cli.App{
	Name:  "walletvm",
	Usage: "feature-gated smart wallet ledger simulator",
	Flags: []cli.Flag{
		verbosityFlag,
		logFileFlag,
		logMaxSizeFlag,
	},
	Before: setupLogging,
	Commands: []*cli.Command{
		replayCommand,
		inspectCommand,
		featuresCommand,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))

	if file := ctx.String(logFileFlag.Name); file != "" {
		out := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    ctx.Int(logMaxSizeFlag.Name),
			MaxBackups: 5,
			Compress:   true,
		}
		log.SetDefault(log.NewLogger(log.LogfmtHandlerWithLevel(out, level)))
		return nil
	}
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorable(os.Stderr)
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, level, usecolor)))
	return nil
}
