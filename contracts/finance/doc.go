/*
Package finance implements Finance contract. It is deployed after Cube and
before Minting. Only the owner (deployer) may update it.

# Contract notifications

Finance contract does not produce notifications to process.
*/
package finance
