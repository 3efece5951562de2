package service

import (
	"errors"

	"smartwallet-core/pkg/address"
	"smartwallet-core/pkg/bip32"
	"smartwallet-core/pkg/bip39"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// SessionKey is the key material for one gateway session.
type SessionKey struct {
	PrivateKeyHex string // hex encoded, no 0x prefix
	Address       string // EIP-55 checksummed key address
}

// KeyService derives gateway session keys from BIP-39 mnemonics. The
// mnemonic never leaves this layer; callers only see the derived key.
type KeyService struct {
	mnemonics *bip39.MnemonicService
	addresses *address.ETHGenerator
}

func NewKeyService() *KeyService {
	return &KeyService{
		mnemonics: bip39.NewMnemonicService(),
		addresses: address.NewETHGenerator(),
	}
}

// GenerateMnemonic creates a fresh 12-word mnemonic.
func (s *KeyService) GenerateMnemonic() (string, error) {
	return s.mnemonics.GenerateMnemonic(128)
}

// SessionKey derives the session key at the fixed wallet path.
func (s *KeyService) SessionKey(mnemonic, passphrase string) (*SessionKey, error) {
	if !s.mnemonics.ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed := s.mnemonics.MnemonicToSeed(mnemonic, passphrase)
	wallet, err := bip32.NewMasterKeyFromSeed(seed, nil)
	if err != nil {
		return nil, err
	}

	privHex, err := wallet.SessionPrivateKeyHex()
	if err != nil {
		return nil, err
	}

	key, err := wallet.DerivePath(bip32.SessionKeyPath)
	if err != nil {
		return nil, err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return nil, err
	}
	addr, err := s.addresses.PubKeyToAddress(pub.SerializeUncompressed())
	if err != nil {
		return nil, err
	}

	return &SessionKey{PrivateKeyHex: privHex, Address: addr}, nil
}
