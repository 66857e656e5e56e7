/*
Package journal stores history of Ethersphere contract deployments.

Every successful deployment is appended to the bbolt database as a Record.
Records are grouped by network and never deduplicated: repeated deployment of
the same contract produces a new record.
*/
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.etcd.io/bbolt"
)

// Record describes single deployed contract.
type Record struct {
	Run        uuid.UUID    `json:"run"`
	Network    string       `json:"network"`
	Step       int          `json:"step"`
	Contract   string       `json:"contract"`
	Address    util.Uint160 `json:"address"`
	TxHash     util.Uint256 `json:"tx"`
	DeployedAt time.Time    `json:"deployed_at"`
}

// Journal is a bbolt-based deployment history.
type Journal struct {
	db *bbolt.DB

	// overridden in tests
	now func() time.Time
}

// Open opens the journal file (creating it if needed). Resulting Journal must
// be closed after use.
func Open(path string) (*Journal, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt database: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (x *Journal) Close() error {
	return x.db.Close()
}

// Append stores given record at the end of the network history.
func (x *Journal) Append(rec Record) error {
	if rec.Network == "" {
		return errors.New("missing network")
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return x.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rec.Network))
		if err != nil {
			return fmt.Errorf("create network bucket: %w", err)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		return b.Put(key, val)
	})
}

// List returns all records of the network in the order they were appended.
func (x *Journal) List(network string) ([]Record, error) {
	var res []Record

	err := x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(network))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var rec Record

			err := json.Unmarshal(v, &rec)
			if err != nil {
				return fmt.Errorf("decode record #%d: %w", binary.BigEndian.Uint64(k), err)
			}

			res = append(res, rec)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Networks returns names of all networks having at least one record.
func (x *Journal) Networks() ([]string, error) {
	var res []string

	err := x.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			res = append(res, string(name))
			return nil
		})
	})

	return res, err
}

// Run is a deploy.Journal appending results of the single deployment run.
type Run struct {
	ID      uuid.UUID
	network string
	j       *Journal
}

// NewRun starts new deployment run to the given network.
func (x *Journal) NewRun(network string) *Run {
	return &Run{
		ID:      uuid.New(),
		network: network,
		j:       x,
	}
}

// Record implements deploy.Journal interface. The result is written even if
// the context is done since the contract has already been deployed.
func (x *Run) Record(_ context.Context, res deploy.Result) error {
	return x.j.Append(Record{
		Run:        x.ID,
		Network:    x.network,
		Step:       res.Step,
		Contract:   res.Artifact,
		Address:    res.Address,
		TxHash:     res.TxHash,
		DeployedAt: x.j.now().UTC(),
	})
}
