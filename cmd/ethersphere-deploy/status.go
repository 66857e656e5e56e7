package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/ethersphere-game/ethersphere-contract/journal"
	"github.com/ethersphere-game/ethersphere-contract/rpc/ethersphere"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/urfave/cli"
)

// latestRun returns records of the last deployment run in the given history.
func latestRun(recs []journal.Record) []journal.Record {
	if len(recs) == 0 {
		return nil
	}

	run := recs[len(recs)-1].Run
	i := len(recs) - 1

	for i > 0 && recs[i-1].Run == run {
		i--
	}

	return recs[i:]
}

func printStatus(c *cli.Context) error {
	network, err := requireNetwork(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	netCfg, ok := cfg.Networks[network]
	if !ok {
		return fmt.Errorf("%w: %q", deploy.ErrUnknownNetwork, network)
	}

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open deployment journal: %w", err)
	}

	defer j.Close()

	recs, err := j.List(network)
	if err != nil {
		return fmt.Errorf("read deployment journal: %w", err)
	}

	recs = latestRun(recs)
	if len(recs) == 0 {
		return fmt.Errorf("no contracts were deployed to network %q", network)
	}

	ctx, cancel := signalContext()
	defer cancel()

	prm := netCfg.NetworkPrm()
	if prm.DialTimeout <= 0 {
		prm.DialTimeout = deploy.DefaultDialTimeout
	}
	if prm.RequestTimeout <= 0 {
		prm.RequestTimeout = deploy.DefaultRequestTimeout
	}

	rpc, err := rpcclient.New(ctx, prm.Endpoint, rpcclient.Options{
		DialTimeout:    prm.DialTimeout,
		RequestTimeout: prm.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("RPC client dial: %w", err)
	}

	defer rpc.Close()

	return writeStatus(c.App.Writer, invoker.New(rpc, nil), recs)
}

// writeStatus reads version and owner of every contract from recs and prints
// them as a table.
func writeStatus(w io.Writer, inv ethersphere.Invoker, recs []journal.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN %s\n", recs[0].Run)
	fmt.Fprintln(tw, "STEP\tCONTRACT\tADDRESS\tVERSION\tOWNER")

	for i := range recs {
		r := ethersphere.NewReader(inv, recs[i].Address)

		ver, err := r.Version()
		if err != nil {
			return fmt.Errorf("read version of %s contract: %w", recs[i].Contract, err)
		}

		owner, err := r.Owner()
		if err != nil {
			return fmt.Errorf("read owner of %s contract: %w", recs[i].Contract, err)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", recs[i].Step, recs[i].Contract,
			address.Uint160ToString(recs[i].Address), ver, address.Uint160ToString(owner))
	}

	return tw.Flush()
}
