// Package minting implements Minting contract, the last one deployed.
package minting
