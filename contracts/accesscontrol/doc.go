/*
Package accesscontrol implements AccessControl contract which is the first
Ethersphere contract deployed to the chain.

Every other Ethersphere contract is deployed after AccessControl, so its
address is known to all of them once the whole set is on the chain. The
account which sends the deploying transaction becomes the contract owner and
is the only one allowed to update it.

# Contract notifications

AccessControl contract does not produce notifications to process.
*/
package accesscontrol

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'owner' -> interop.Hash160
    sender of the deploying transaction
*/
