package bip32

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ExtendedKey wraps a BIP-32 extended key.
type ExtendedKey interface {
	// String returns the Base58 encoded key (xprv... / xpub...)
	String() string

	// ECPubKey returns the underlying EC public key
	ECPubKey() (*btcec.PublicKey, error)
	// ECPrivKey returns the underlying EC private key (for signing)
	ECPrivKey() (*btcec.PrivateKey, error)
	// Derive derives a child key at index
	Derive(index uint32) (ExtendedKey, error)
	// IsPrivate reports whether the key contains private material
	IsPrivate() bool
	// Neuter returns the corresponding extended public key
	Neuter() (ExtendedKey, error)
}

// HDWallet is a hierarchical deterministic wallet.
type HDWallet interface {
	// MasterKey returns the master extended key
	MasterKey() ExtendedKey
	// DerivePath derives a key at a path like "m/44'/60'/0'/0/0"
	DerivePath(path string) (ExtendedKey, error)
}

// SessionKeyPath is the default derivation path for the gateway session key.
const SessionKeyPath = "m/44'/60'/0'/0/0"

var (
	ErrInvalidSeed = errors.New("invalid seed")
	ErrInvalidPath = errors.New("invalid derivation path")
)
