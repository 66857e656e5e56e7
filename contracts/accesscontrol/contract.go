package accesscontrol

import (
	"github.com/ethersphere-game/ethersphere-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	common.InitOwner()

	runtime.Log("accesscontrol contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(script []byte, manifest []byte, data any) {
	common.CheckOwnerWitness()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("accesscontrol contract updated")
}

// Owner returns the address of the account which deployed the contract.
func Owner() interop.Hash160 {
	return common.Owner()
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}
