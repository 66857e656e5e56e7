package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethersphere-game/ethersphere-contract/config"
	"github.com/ethersphere-game/ethersphere-contract/contracts"
	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/ethersphere-game/ethersphere-contract/journal"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
)

var artifactDirs = []string{"accesscontrol", "base", "cube", "finance", "minting"}

func writeArtifacts(t *testing.T, root string, dirs []string) {
	_nef, err := nef.NewFile(make([]byte, 32))
	require.NoError(t, err)

	bNEF, err := _nef.Bytes()
	require.NoError(t, err)

	for _, dir := range dirs {
		jManifest, err := json.Marshal(manifest.NewManifest("Ethersphere " + dir))
		require.NoError(t, err)

		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0700))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, "contract.nef"), bNEF, 0600))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, "manifest.json"), jManifest, 0600))
	}
}

// prepareEnv writes configuration with a single "test" network and returns
// its path.
func prepareEnv(t *testing.T, dirs []string) string {
	return prepareNetworkEnv(t, dirs, "test")
}

func prepareNetworkEnv(t *testing.T, dirs []string, network string) string {
	tmp := t.TempDir()
	artifacts := filepath.Join(tmp, "build")

	writeArtifacts(t, artifacts, dirs)

	cfg := fmt.Sprintf(`
artifacts: %s
journal: %s
networks:
  %s:
    endpoint: http://127.0.0.1:1
    wallet: %s
`, artifacts, filepath.Join(tmp, "journal.db"), network, filepath.Join(tmp, "wallet.json"))

	path := filepath.Join(tmp, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))

	return path
}

func runApp(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"ethersphere-deploy"}, args...))

	return out.String(), err
}

func TestArtifactsCommand(t *testing.T) {
	out, err := runApp("--config", prepareEnv(t, artifactDirs), "artifacts")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)

	for i, name := range contracts.Names() {
		require.Contains(t, lines[i+1], name)
		require.Contains(t, lines[i+1], "Ethersphere "+artifactDirs[i])
	}

	_, err = runApp("--config", prepareEnv(t, artifactDirs[:3]), "artifacts")
	require.ErrorContains(t, err, contracts.Finance)
}

func TestDeployCommandErrors(t *testing.T) {
	cfgPath := prepareEnv(t, artifactDirs)

	_, err := runApp("--config", cfgPath, "deploy")
	require.ErrorContains(t, err, "missing network")

	_, err = runApp("--config", cfgPath, "deploy", "--network", "main")
	require.ErrorIs(t, err, deploy.ErrUnknownNetwork)

	// artifacts are checked before any wallet or network access
	_, err = runApp("--config", prepareEnv(t, artifactDirs[:4]), "deploy", "--network", "test")
	require.ErrorContains(t, err, contracts.Minting)

	// wallet file is missing
	_, err = runApp("--config", cfgPath, "deploy", "--network", "test")
	require.ErrorContains(t, err, "open wallet")

	_, err = runApp("--config", cfgPath, "--log-level", "loud", "deploy", "--network", "test")
	require.ErrorContains(t, err, "invalid log level")
}

func TestHistoryCommand(t *testing.T) {
	cfgPath := prepareEnv(t, artifactDirs)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	j, err := journal.Open(cfg.Journal)
	require.NoError(t, err)

	for i, name := range contracts.Names() {
		require.NoError(t, j.Append(journal.Record{
			Network:  "test",
			Step:     i + 1,
			Contract: name,
			TxHash:   util.Uint256{byte(i + 1)},
		}))
	}
	require.NoError(t, j.Close())

	out, err := runApp("--config", cfgPath, "history", "-n", "test")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)

	for i, name := range contracts.Names() {
		require.Contains(t, lines[i+1], name)
		require.Contains(t, lines[i+1], util.Uint256{byte(i + 1)}.StringLE())
	}

	out, err = runApp("--config", cfgPath, "history", "-n", "main")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestOpenAccount(t *testing.T) {
	walletPath := filepath.Join(t.TempDir(), "wallet.json")

	w, err := wallet.NewWallet(walletPath)
	require.NoError(t, err)

	acc1, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc1.Encrypt("one", keys.NEP2ScryptParams()))

	acc2, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc2.Encrypt("two", keys.NEP2ScryptParams()))

	w.AddAccount(acc1)
	w.AddAccount(acc2)
	require.NoError(t, w.Save())
	w.Close()

	t.Run("default", func(t *testing.T) {
		w, acc, err := openAccount(config.Network{Wallet: walletPath, Password: "one"})
		require.NoError(t, err)
		defer w.Close()
		require.Equal(t, acc1.Address, acc.Address)
		require.NotNil(t, acc.PrivateKey())
	})

	t.Run("by address", func(t *testing.T) {
		w, acc, err := openAccount(config.Network{Wallet: walletPath, Address: acc2.Address, Password: "two"})
		require.NoError(t, err)
		defer w.Close()
		require.Equal(t, acc2.Address, acc.Address)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := openAccount(config.Network{Wallet: walletPath, Address: acc2.Address, Password: "one"})
		require.ErrorContains(t, err, "unlock account")
	})

	t.Run("unknown address", func(t *testing.T) {
		other, err := wallet.NewAccount()
		require.NoError(t, err)

		_, _, err = openAccount(config.Network{Wallet: walletPath, Address: other.Address})
		require.ErrorContains(t, err, "missing in the wallet")
	})

	t.Run("invalid address", func(t *testing.T) {
		_, _, err := openAccount(config.Network{Wallet: walletPath, Address: "not an address"})
		require.ErrorContains(t, err, "invalid account address")
	})
}

func TestLatestRun(t *testing.T) {
	require.Empty(t, latestRun(nil))

	r1, r2 := uuid.New(), uuid.New()
	recs := []journal.Record{
		{Run: r1, Step: 1}, {Run: r1, Step: 2}, {Run: r1, Step: 3},
		{Run: r2, Step: 1}, {Run: r2, Step: 2},
	}

	require.Equal(t, recs[3:], latestRun(recs))
	require.Equal(t, recs[:3], latestRun(recs[:3]))
}

func TestStatusCommandErrors(t *testing.T) {
	cfgPath := prepareEnv(t, artifactDirs)

	_, err := runApp("--config", cfgPath, "status")
	require.ErrorContains(t, err, "missing network")

	_, err = runApp("--config", cfgPath, "status", "-n", "main")
	require.ErrorIs(t, err, deploy.ErrUnknownNetwork)

	_, err = runApp("--config", cfgPath, "status", "-n", "test")
	require.ErrorContains(t, err, "no contracts were deployed")
}

func TestRunExitCode(t *testing.T) {
	cfgPath := prepareEnv(t, artifactDirs)

	var stderr bytes.Buffer

	require.Equal(t, 1, run([]string{"ethersphere-deploy", "--config", cfgPath, "deploy"}, &stderr))
	require.Contains(t, stderr.String(), "missing network")

	stderr.Reset()
	require.Equal(t, 1, run([]string{"ethersphere-deploy", "--config", cfgPath, "deploy", "-n", "main"}, &stderr))
	require.Contains(t, stderr.String(), deploy.ErrUnknownNetwork.Error())

	stderr.Reset()
	require.Equal(t, 0, run([]string{"ethersphere-deploy", "--config", cfgPath, "history", "-n", "test"}, &stderr))
	require.Empty(t, stderr.String())
}

func TestNetworkNameCase(t *testing.T) {
	cfgPath := prepareNetworkEnv(t, artifactDirs, "TestNet")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	j, err := journal.Open(cfg.Journal)
	require.NoError(t, err)
	require.NoError(t, j.NewRun("testnet").Record(context.Background(), deploy.Result{
		Step:     1,
		Artifact: contracts.AccessControl,
	}))
	require.NoError(t, j.Close())

	for _, name := range []string{"TestNet", "testnet", "TESTNET"} {
		// network is resolved, wallet file is missing
		_, err = runApp("--config", cfgPath, "deploy", "-n", name)
		require.ErrorContains(t, err, "open wallet", name)
		require.NotErrorIs(t, err, deploy.ErrUnknownNetwork, name)

		out, err := runApp("--config", cfgPath, "history", "-n", name)
		require.NoError(t, err, name)
		require.Contains(t, out, contracts.AccessControl, name)
	}
}

// testInvoker serves contract methods from the fixed results.
type testInvoker struct {
	owners   map[util.Uint160]util.Uint160
	versions map[util.Uint160]int
}

func (x *testInvoker) Call(contract util.Uint160, method string, _ ...any) (*result.Invoke, error) {
	var item stackitem.Item

	switch method {
	case "owner":
		owner, ok := x.owners[contract]
		if !ok {
			return nil, errors.New("unknown contract")
		}
		item = stackitem.NewByteArray(owner.BytesBE())
	case "version":
		ver, ok := x.versions[contract]
		if !ok {
			return nil, errors.New("unknown contract")
		}
		item = stackitem.Make(ver)
	default:
		return &result.Invoke{State: "FAULT", FaultException: "method not found"}, nil
	}

	return &result.Invoke{State: "HALT", Stack: []stackitem.Item{item}}, nil
}

func TestWriteStatus(t *testing.T) {
	runID := uuid.New()
	owner := util.Uint160{0xaa}

	inv := &testInvoker{
		owners:   make(map[util.Uint160]util.Uint160),
		versions: make(map[util.Uint160]int),
	}

	var recs []journal.Record

	for i, name := range contracts.Names() {
		addr := util.Uint160{byte(i + 1)}
		inv.owners[addr] = owner
		inv.versions[addr] = 1_000

		recs = append(recs, journal.Record{Run: runID, Step: i + 1, Contract: name, Address: addr})
	}

	var out bytes.Buffer
	require.NoError(t, writeStatus(&out, inv, recs))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	require.Contains(t, lines[0], runID.String())

	for i, name := range contracts.Names() {
		line := lines[i+2]
		require.Contains(t, line, name)
		require.Contains(t, line, address.Uint160ToString(recs[i].Address))
		require.Contains(t, line, "1000")
		require.Contains(t, line, address.Uint160ToString(owner))
	}

	delete(inv.versions, recs[3].Address)

	err := writeStatus(&out, inv, recs)
	require.ErrorContains(t, err, "read version of "+contracts.Finance)
}
