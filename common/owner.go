package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// ErrOwnerWitnessFailed appears when the method must be called by the
// contract owner but was not.
const ErrOwnerWitnessFailed = "owner witness check failed"

const ownerKey = "owner"

// InitOwner stores the sender of the deploying transaction as the contract
// owner. It must be called from _deploy only.
func InitOwner() {
	tx := runtime.GetScriptContainer()
	storage.Put(storage.GetContext(), ownerKey, tx.Sender)
}

// Owner returns the address stored by InitOwner.
func Owner() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), ownerKey).(interop.Hash160)
}

// HasUpdateAccess returns true if contract can be updated.
func HasUpdateAccess() bool {
	return runtime.CheckWitness(Owner())
}

// CheckOwnerWitness panics with ErrOwnerWitnessFailed message if the
// invocation is not witnessed by the contract owner.
func CheckOwnerWitness() {
	if !HasUpdateAccess() {
		panic(ErrOwnerWitnessFailed)
	}
}
