/*
Package base implements Base contract. It is deployed right after
AccessControl and before Cube.

# Contract notifications

Base contract does not produce notifications to process.
*/
package base
