package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

// run executes the application and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	err := newApp().Run(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = version

	app.Name = "Ethersphere contracts deployment"
	app.HelpName = "ethersphere-deploy"
	app.Usage = "Deploy Ethersphere contracts to Neo networks"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "Path to the YAML configuration file",
			EnvVar: "ETHERSPHERE_CONFIG",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Logging level overriding the configured one (debug, info, warn, error)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:   "deploy",
			Usage:  "Deploy all contracts one by one: AccessControl, Base, Cube, Finance, Minting",
			Flags:  []cli.Flag{networkFlag},
			Action: deployContracts,
		},
		{
			Name:   "artifacts",
			Usage:  "Check compiled contracts and print them in deployment order",
			Action: listArtifacts,
		},
		{
			Name:   "history",
			Usage:  "Print contracts deployed to the network",
			Flags:  []cli.Flag{networkFlag},
			Action: printHistory,
		},
		{
			Name:   "status",
			Usage:  "Read version and owner of the contracts deployed by the latest run",
			Flags:  []cli.Flag{networkFlag},
			Action: printStatus,
		},
	}

	return app
}

var networkFlag = cli.StringFlag{
	Name:  "network, n",
	Usage: "Name of the target network from the configuration",
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
