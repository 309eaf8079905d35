// Package chain signs and submits edit transactions and waits for them to be
// mined.
package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// Wallet is a signing key and its address.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// LoadKey parses a hex private key, with or without the 0x prefix.
func LoadKey(hexKey string) (*Wallet, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("%w: private key is empty", errors.ErrMissingConfig)
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// never echo the key
		return nil, fmt.Errorf("%w: private key is not a valid secp256k1 key", errors.ErrInvalidInput)
	}
	return &Wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (w *Wallet) Address() common.Address { return w.address }

// Owns reports whether addr, in any hex casing, is the wallet's address.
func (w *Wallet) Owns(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	return common.HexToAddress(addr) == w.address
}
