package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ethersphere-game/ethersphere-contract/contracts"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

var (
	// ErrUnknownNetwork is returned by NeoBackend for networks missing in
	// NeoBackendPrm.Networks.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrTxExpired is returned when deploying transaction is not persisted
	// until its ValidUntilBlock.
	ErrTxExpired = errors.New("transaction expired")

	// ErrTxFault is returned when deploying transaction is persisted with
	// non-HALT VM state.
	ErrTxFault = errors.New("transaction execution failed")
)

// Default timings of the Neo network connection.
const (
	DefaultDialTimeout    = 15 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultPollInterval   = time.Second
)

// NetworkPrm groups parameters of the particular Neo network.
type NetworkPrm struct {
	// Neo RPC server address.
	Endpoint string

	// Account used to sign deploying transactions (must be unlocked). The
	// account pays for the deployment and defines contract addresses.
	Account *wallet.Account

	// Optional timeouts, DefaultDialTimeout and DefaultRequestTimeout are used
	// if unset.
	DialTimeout    time.Duration
	RequestTimeout time.Duration

	// Optional interval between transaction status requests,
	// DefaultPollInterval if unset.
	PollInterval time.Duration
}

// NeoBackendPrm groups parameters of NeoBackend.
type NeoBackendPrm struct {
	Logger *zap.Logger

	// Tree of compiled contracts, see contracts.Get.
	Artifacts fs.FS

	// Networks by their identifiers.
	Networks map[string]NetworkPrm
}

// NeoBackend is a Backend deploying contracts through the native Management
// contract of Neo networks. Connections are opened on the first deployment to
// the particular network and kept until Close.
//
// NeoBackend is not safe for concurrent use.
type NeoBackend struct {
	logger    *zap.Logger
	artifacts fs.FS
	networks  map[string]NetworkPrm

	conns map[string]*neoConn
}

// txWatcher reads status of the sent transactions.
type txWatcher interface {
	GetBlockCount() (uint32, error)
	GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error)
}

// contractDeployer sends Management 'deploy' transactions, it's implemented
// by management.Contract.
type contractDeployer interface {
	Deploy(exe *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

type neoConn struct {
	watcher      txWatcher
	deployer     contractDeployer
	sender       util.Uint160
	pollInterval time.Duration
	close        func()
}

// NewNeoBackend constructs NeoBackend. No connections are opened.
func NewNeoBackend(prm NeoBackendPrm) *NeoBackend {
	l := prm.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &NeoBackend{
		logger:    l,
		artifacts: prm.Artifacts,
		networks:  prm.Networks,
		conns:     make(map[string]*neoConn),
	}
}

// Deploy implements Backend interface. It sends deploying transaction for
// the named artifact and waits until the transaction is persisted.
func (x *NeoBackend) Deploy(ctx context.Context, artifact, network string) (Deployed, error) {
	var res Deployed

	c, err := contracts.Get(x.artifacts, artifact)
	if err != nil {
		return res, fmt.Errorf("resolve artifact: %w", err)
	}

	conn, err := x.connect(ctx, network)
	if err != nil {
		return res, err
	}

	txHash, vub, err := conn.deployer.Deploy(&c.NEF, &c.Manifest, nil)
	if err != nil {
		return res, fmt.Errorf("send deploying transaction: %w", err)
	}

	x.logger.Debug("deploying transaction sent, waiting for it to be persisted...",
		zap.String("contract", artifact), zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	exec, err := waitTx(ctx, conn.watcher, txHash, vub, conn.pollInterval)
	if err != nil {
		return res, fmt.Errorf("wait for deploying transaction %s: %w", txHash.StringLE(), err)
	}

	if exec.VMState != vmstate.Halt {
		return res, fmt.Errorf("%w: tx %s, state %s, exception: %s",
			ErrTxFault, txHash.StringLE(), exec.VMState, exec.FaultException)
	}

	res.TxHash = txHash
	res.Address = state.CreateContractHash(conn.sender, c.NEF.Checksum, c.Manifest.Name)

	return res, nil
}

// Close closes all opened network connections.
func (x *NeoBackend) Close() {
	for network, c := range x.conns {
		c.close()
		delete(x.conns, network)
	}
}

func (x *NeoBackend) connect(ctx context.Context, network string) (*neoConn, error) {
	if c, ok := x.conns[network]; ok {
		return c, nil
	}

	prm, ok := x.networks[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}

	x.logger.Info("connecting to the Neo network...",
		zap.String("network", network), zap.String("endpoint", prm.Endpoint))

	c, err := dialNeo(ctx, prm)
	if err != nil {
		return nil, fmt.Errorf("connect to network %q: %w", network, err)
	}

	x.conns[network] = c

	return c, nil
}

func dialNeo(ctx context.Context, prm NetworkPrm) (*neoConn, error) {
	if prm.Account == nil {
		return nil, errors.New("missing account")
	}

	if prm.DialTimeout <= 0 {
		prm.DialTimeout = DefaultDialTimeout
	}

	if prm.RequestTimeout <= 0 {
		prm.RequestTimeout = DefaultRequestTimeout
	}

	if prm.PollInterval <= 0 {
		prm.PollInterval = DefaultPollInterval
	}

	c, err := rpcclient.New(ctx, prm.Endpoint, rpcclient.Options{
		DialTimeout:    prm.DialTimeout,
		RequestTimeout: prm.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	act, err := actor.NewSimple(c, prm.Account)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return &neoConn{
		watcher:      c,
		deployer:     management.New(act),
		sender:       act.Sender(),
		pollInterval: prm.PollInterval,
		close:        c.Close,
	}, nil
}

// waitTx polls the chain until the transaction is persisted and returns its
// application execution. Transaction is considered expired when the chain
// height reaches its ValidUntilBlock and the transaction is still missing.
func waitTx(ctx context.Context, w txWatcher, txHash util.Uint256, vub uint32, pollInterval time.Duration) (*state.Execution, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	trig := trigger.Application

	for {
		// height is requested before the log so that missing log at height
		// >= vub means that the transaction will never be accepted
		count, err := w.GetBlockCount()
		if err != nil {
			return nil, fmt.Errorf("get block count: %w", err)
		}

		appLog, err := w.GetApplicationLog(txHash, &trig)
		if err == nil {
			if len(appLog.Executions) == 0 {
				return nil, errors.New("empty application log")
			}

			return &appLog.Executions[0], nil
		}

		if count > 0 && count-1 >= vub {
			return nil, fmt.Errorf("%w: height %d, valid until %d", ErrTxExpired, count-1, vub)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
