package main

import (
	"errors"
	"fmt"

	"github.com/ethersphere-game/ethersphere-contract/config"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// openAccount opens the network wallet and unlocks the configured account
// (default wallet account if address is not set). Wallet must be closed after
// use.
func openAccount(n config.Network) (*wallet.Wallet, *wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(n.Wallet)
	if err != nil {
		return nil, nil, fmt.Errorf("open wallet: %w", err)
	}

	var h util.Uint160

	if n.Address != "" {
		h, err = address.StringToUint160(n.Address)
		if err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("invalid account address: %w", err)
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		w.Close()
		return nil, nil, errors.New("account is missing in the wallet")
	}

	err = acc.Decrypt(n.Password, w.Scrypt)
	if err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("unlock account %s: %w", acc.Address, err)
	}

	return w, acc, nil
}
