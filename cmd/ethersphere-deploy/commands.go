package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethersphere-game/ethersphere-contract/config"
	"github.com/ethersphere-game/ethersphere-contract/contracts"
	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/ethersphere-game/ethersphere-contract/journal"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if lvl := c.GlobalString("log-level"); lvl != "" {
		cfg.Logger.Level = lvl
	}

	return cfg, nil
}

func newLogger(cfg config.Logger) (*zap.Logger, error) {
	var lvl zapcore.Level

	err := lvl.UnmarshalText([]byte(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}

// requireNetwork returns the network name from the command flags. Configured
// network keys are lowercased when loaded, so the name is lowercased too; this
// also keeps one journal bucket per network whatever case the flag is given in.
func requireNetwork(c *cli.Context) (string, error) {
	network := c.String("network")
	if network == "" {
		return "", errors.New("missing network, use --network flag")
	}
	return strings.ToLower(network), nil
}

func deployContracts(c *cli.Context) error {
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

	log, err := newLogger(cfg.Logger)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	artifacts := os.DirFS(cfg.Artifacts)

	// all artifacts are checked before the first deployment
	_, err = contracts.Read(artifacts)
	if err != nil {
		return fmt.Errorf("read compiled contracts from %s: %w", cfg.Artifacts, err)
	}

	w, acc, err := openAccount(netCfg)
	if err != nil {
		return fmt.Errorf("network %q: %w", network, err)
	}

	defer w.Close()

	log.Info("using account", zap.String("network", network), zap.String("address", acc.Address))

	netPrm := netCfg.NetworkPrm()
	netPrm.Account = acc

	backend := deploy.NewNeoBackend(deploy.NeoBackendPrm{
		Logger:    log,
		Artifacts: artifacts,
		Networks:  map[string]deploy.NetworkPrm{network: netPrm},
	})

	defer backend.Close()

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open deployment journal: %w", err)
	}

	defer func() {
		err := j.Close()
		if err != nil {
			log.Warn("failed to close deployment journal", zap.Error(err))
		}
	}()

	run := j.NewRun(network)

	log.Info("starting deployment", zap.Stringer("run", run.ID))

	ctx, cancel := signalContext()
	defer cancel()

	return deploy.Deploy(ctx, deploy.Prm{
		Logger:  log,
		Backend: backend,
		Network: network,
		Journal: run,
	})
}

func listArtifacts(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	cs, err := contracts.Read(os.DirFS(cfg.Artifacts))
	if err != nil {
		return fmt.Errorf("read compiled contracts from %s: %w", cfg.Artifacts, err)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCONTRACT\tMANIFEST NAME\tNEF CHECKSUM\tCOMPILER")

	for i := range cs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			i+1, cs[i].Name, cs[i].Manifest.Name, cs[i].NEF.Checksum, cs[i].NEF.Compiler)
	}

	return tw.Flush()
}

func printHistory(c *cli.Context) error {
	network, err := requireNetwork(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
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

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPLOYED AT\tRUN\tSTEP\tCONTRACT\tADDRESS\tTX")

	for i := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			recs[i].DeployedAt.Format("2006-01-02 15:04:05"), recs[i].Run, recs[i].Step, recs[i].Contract,
			address.Uint160ToString(recs[i].Address), recs[i].TxHash.StringLE())
	}

	return tw.Flush()
}
