/*
Package contracts provides access to compiled Ethersphere contracts.

Contract sources live in the sub-packages of this directory. They are compiled
by neo-go into the artifact tree read here:

	<root>/accesscontrol/contract.nef
	<root>/accesscontrol/manifest.json
	<root>/base/...
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

// Names of the Ethersphere contracts.
const (
	AccessControl = "AccessControl"
	Base          = "Base"
	Cube          = "Cube"
	Finance       = "Finance"
	Minting       = "Minting"
)

const (
	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about compiled Neo contract.
type Contract struct {
	Name     string
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")

	// ErrUnknownContract is returned for names missing in Names.
	ErrUnknownContract = errors.New("unknown contract")

	// deployment order, contracts dependent on others come after.
	ordered = []struct {
		name string
		dir  string
	}{
		{AccessControl, "accesscontrol"},
		{Base, "base"},
		{Cube, "cube"},
		{Finance, "finance"},
		{Minting, "minting"},
	}
)

// Names returns names of all Ethersphere contracts in the order they're
// supposed to be deployed starting from AccessControl.
func Names() []string {
	res := make([]string, len(ordered))
	for i := range ordered {
		res[i] = ordered[i].name
	}
	return res
}

// Read reads all Ethersphere contracts from the given artifact tree. They're
// returned in the order they're supposed to be deployed.
func Read(fsys fs.FS) ([]Contract, error) {
	var res = make([]Contract, 0, len(ordered))

	for i := range ordered {
		c, err := readContractFromDir(fsys, ordered[i].dir)
		if err != nil {
			return nil, fmt.Errorf("read contract %s: %w", ordered[i].name, err)
		}

		c.Name = ordered[i].name
		res = append(res, c)
	}

	return res, nil
}

// Get reads single named contract from the given artifact tree.
func Get(fsys fs.FS, name string) (Contract, error) {
	for i := range ordered {
		if ordered[i].name != name {
			continue
		}

		c, err := readContractFromDir(fsys, ordered[i].dir)
		if err != nil {
			return c, fmt.Errorf("read contract %s: %w", name, err)
		}

		c.Name = name
		return c, nil
	}

	return Contract{}, fmt.Errorf("%w: %q", ErrUnknownContract, name)
}

func readContractFromDir(fsys fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS always uses "/", so filepath.Join() is not applicable.
	fNEF, err := fsys.Open(dir + "/" + nefName)
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := fsys.Open(dir + "/" + manifestName)
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
