package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var ledgerScenario = filepath.Join("..", "..", "internal", "scenario", "testdata", "ledger.toml")

func TestReplayAndInspect(t *testing.T) {
	datadir := t.TempDir()
	require.NoError(t, app.Run([]string{"walletvm", "--verbosity", "0", "replay", "--datadir", datadir, ledgerScenario}))

	archive := filepath.Join(datadir, "ledger")
	require.DirExists(t, filepath.Join(archive, "ledger"))
	require.DirExists(t, filepath.Join(archive, "receipts"))

	require.NoError(t, app.Run([]string{"walletvm", "--verbosity", "0", "inspect", archive}))
	require.NoError(t, app.Run([]string{"walletvm", "--verbosity", "0", "inspect", "--owner", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", archive}))
	require.Error(t, app.Run([]string{"walletvm", "--verbosity", "0", "inspect", "--owner", "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", archive}))
}

func TestReplayReportsMismatch(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mismatch.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[Factory]
Owner = "0x00000000000000000000000000000000000ad111"

[[Steps]]
Op = "createWallet"
From = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
Expect = "revert"
`), 0o644))

	err := app.Run([]string{"walletvm", "--verbosity", "0", "replay", file})
	require.ErrorIs(t, err, errMismatch)
}

func TestReplayNeedsFiles(t *testing.T) {
	require.Error(t, app.Run([]string{"walletvm", "--verbosity", "0", "replay"}))
}

func TestFeatures(t *testing.T) {
	require.NoError(t, app.Run([]string{"walletvm", "--verbosity", "0", "features"}))
}
