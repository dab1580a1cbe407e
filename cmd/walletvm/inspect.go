package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/factory"
	"github.com/clydemeng/walletvm/internal/scenario"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var (
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the full archived ledger structure",
	}
	ownerFlag = &cli.StringFlag{
		Name:  "owner",
		Usage: "Only show the wallet of this owner",
	}
)

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "Print an archived ledger",
	ArgsUsage: "<archive dir>",
	Flags: []cli.Flag{
		dbEngineFlag,
		dumpFlag,
		ownerFlag,
	},
	Action: inspect,
}

var featuresCommand = &cli.Command{
	Name:   "features",
	Usage:  "Print the default feature catalog and the reward table",
	Action: features,
}

func inspect(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one archive directory")
	}
	archive, err := scenario.OpenArchive(ctx.Args().First(), ctx.String(dbEngineFlag.Name), true)
	if err != nil {
		return err
	}
	defer archive.Close()

	if owner := ctx.String(ownerFlag.Name); owner != "" {
		if !common.IsHexAddress(owner) {
			return fmt.Errorf("invalid owner %q", owner)
		}
		reader, err := archive.Reader(0)
		if err != nil {
			return err
		}
		rec, ok := reader.WalletByOwner(common.HexToAddress(owner))
		if !ok {
			return fmt.Errorf("%w: %s", factory.ErrNoWallet, owner)
		}
		printWallets([]*types.WalletRecord{rec})
		return nil
	}
	snap, err := archive.Ledger()
	if err != nil {
		return err
	}
	if ctx.Bool(dumpFlag.Name) {
		fmt.Print(spew.Sdump(snap))
		return nil
	}
	receipts, err := archive.Receipts()
	if err != nil {
		return err
	}
	var failed int
	for _, r := range receipts {
		if !r.Succeeded() {
			failed++
		}
	}
	fmt.Printf("factory=%s owner=%s version=%d pool=%s\n", snap.Factory, snap.Owner, snap.Version, snap.RewardPool.Dec())
	fmt.Printf("wallets=%d active=%d contributions=%d rewards=%s\n",
		snap.Stats.TotalWallets, snap.Stats.ActiveWallets, snap.Stats.TotalContributions, snap.Stats.TotalRewardsDistributed.Dec())
	fmt.Printf("receipts=%d failed=%d\n\n", len(receipts), failed)

	catalog := tablewriter.NewWriter(os.Stdout)
	catalog.SetHeader([]string{"Feature", "Available"})
	for _, e := range snap.Catalog {
		catalog.Append([]string{e.Name, fmt.Sprint(e.Available)})
	}
	catalog.Render()
	fmt.Println()

	printWallets(snap.Wallets)
	return nil
}

func printWallets(records []*types.WalletRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Owner", "Wallet", "Version", "Active", "Score", "Last activity", "Features"})
	table.SetAutoWrapText(false)
	for _, rec := range records {
		table.Append([]string{
			fmt.Sprint(rec.WalletID),
			rec.Owner.Hex(),
			rec.Address.Hex(),
			fmt.Sprint(rec.Version),
			fmt.Sprint(rec.IsActive),
			rec.ContributionScore.Dec(),
			fmt.Sprint(rec.LastActivity),
			fmt.Sprint(rec.ActiveFeatures),
		})
	}
	table.Render()
}

func features(ctx *cli.Context) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Feature"})
	for _, name := range types.DefaultFeatures {
		table.Append([]string{name})
	}
	table.Render()
	fmt.Println()

	rewards := tablewriter.NewWriter(os.Stdout)
	rewards.SetHeader([]string{"Data type", "Reward"})
	for _, t := range []types.DataType{types.DataTransaction, types.DataDeFi, types.DataCrossChain, types.DataAIInsight, types.DataUnknown} {
		rewards.Append([]string{fmt.Sprintf("%d (%s)", uint8(t), t), factory.RewardFor(t).Dec()})
	}
	rewards.Render()
	return nil
}
