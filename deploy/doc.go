/*
Package deploy deploys Ethersphere contracts to Neo networks.

Contracts are deployed strictly one by one in the order defined by
contracts.Names, see Deploy. Single deployments are done by Backend,
NeoBackend is the one working with real Neo networks through RPC.
*/
package deploy
