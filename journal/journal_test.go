package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethersphere-game/ethersphere-contract/contracts"
	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	return j
}

func TestJournal(t *testing.T) {
	j := openTestJournal(t)

	recs, err := j.List("test")
	require.NoError(t, err)
	require.Empty(t, recs)

	nets, err := j.Networks()
	require.NoError(t, err)
	require.Empty(t, nets)

	for i, name := range contracts.Names() {
		require.NoError(t, j.Append(Record{
			Network:  "test",
			Step:     i + 1,
			Contract: name,
			Address:  util.Uint160{byte(i)},
		}))
	}

	require.NoError(t, j.Append(Record{Network: "main", Step: 1, Contract: contracts.AccessControl}))

	recs, err = j.List("test")
	require.NoError(t, err)
	require.Len(t, recs, 5)

	for i, name := range contracts.Names() {
		require.Equal(t, name, recs[i].Contract)
		require.Equal(t, i+1, recs[i].Step)
		require.Equal(t, util.Uint160{byte(i)}, recs[i].Address)
	}

	nets, err = j.Networks()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"test", "main"}, nets)

	require.Error(t, j.Append(Record{Contract: contracts.Base}))
}

func TestJournalPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Record{Network: "test", Step: 1, Contract: contracts.AccessControl}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)

	defer j.Close()

	recs, err := j.List("test")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, contracts.AccessControl, recs[0].Contract)
}

func TestRun(t *testing.T) {
	j := openTestJournal(t)

	deployedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return deployedAt }

	r1 := j.NewRun("test")
	r2 := j.NewRun("test")
	require.NotEqual(t, r1.ID, r2.ID)

	res := deploy.Result{
		Step:     3,
		Artifact: contracts.Cube,
		Deployed: deploy.Deployed{
			Address: util.Uint160{1, 2, 3},
			TxHash:  util.Uint256{4, 5, 6},
		},
	}

	// same contract twice is not deduplicated
	require.NoError(t, r1.Record(context.Background(), res))
	require.NoError(t, r2.Record(context.Background(), res))

	recs, err := j.List("test")
	require.NoError(t, err)
	require.Equal(t, []Record{
		{
			Run:        r1.ID,
			Network:    "test",
			Step:       3,
			Contract:   contracts.Cube,
			Address:    util.Uint160{1, 2, 3},
			TxHash:     util.Uint256{4, 5, 6},
			DeployedAt: deployedAt,
		},
		{
			Run:        r2.ID,
			Network:    "test",
			Step:       3,
			Contract:   contracts.Cube,
			Address:    util.Uint160{1, 2, 3},
			TxHash:     util.Uint256{4, 5, 6},
			DeployedAt: deployedAt,
		},
	}, recs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r1.Record(ctx, res))

	recs, err = j.List("test")
	require.NoError(t, err)
	require.Len(t, recs, 3)
}

func TestRunWithDeploy(t *testing.T) {
	j := openTestJournal(t)
	run := j.NewRun("test")

	err := deploy.Deploy(context.Background(), deploy.Prm{
		Backend: backendFunc(func(artifact string) (deploy.Deployed, error) {
			return deploy.Deployed{}, nil
		}),
		Network: "test",
		Journal: run,
	})
	require.NoError(t, err)

	recs, err := j.List("test")
	require.NoError(t, err)
	require.Len(t, recs, 5)

	for i := range recs {
		require.Equal(t, run.ID, recs[i].Run)
		require.Equal(t, contracts.Names()[i], recs[i].Contract)
	}
}

func TestRunWithInterruptedDeploy(t *testing.T) {
	j := openTestJournal(t)
	run := j.NewRun("test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deployed int

	err := deploy.Deploy(ctx, deploy.Prm{
		Backend: backendFunc(func(artifact string) (deploy.Deployed, error) {
			deployed++
			if artifact == contracts.Base {
				// interrupted right after the contract got on chain
				cancel()
			}
			return deploy.Deployed{Address: util.Uint160{byte(deployed)}}, nil
		}),
		Network: "test",
		Journal: run,
	})
	require.ErrorIs(t, err, context.Canceled)

	var f *deploy.Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, contracts.Cube, f.Artifact)

	recs, err := j.List("test")
	require.NoError(t, err)
	require.Len(t, recs, deployed)
	require.Equal(t, contracts.Base, recs[1].Contract)
	require.Equal(t, util.Uint160{2}, recs[1].Address)
}

type backendFunc func(artifact string) (deploy.Deployed, error)

func (f backendFunc) Deploy(_ context.Context, artifact, _ string) (deploy.Deployed, error) {
	return f(artifact)
}
