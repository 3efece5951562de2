package bip32

import (
	"encoding/hex"
	"testing"

	"smartwallet-core/pkg/bip39"

	"github.com/btcsuite/btcd/chaincfg"
)

func TestNewMasterKeyFromSeed(t *testing.T) {
	mnemonicService := bip39.NewMnemonicService()
	mnemonic, err := mnemonicService.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("generating mnemonic failed: %v", err)
	}
	seed := mnemonicService.MnemonicToSeed(mnemonic, "")

	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("creating master key failed: %v", err)
	}

	if wallet.MasterKey() == nil {
		t.Fatal("master key is nil")
	}
}

func TestNewMasterKeyFromSeedRejectsShortSeed(t *testing.T) {
	if _, err := NewMasterKeyFromSeed([]byte{0x01, 0x02}, nil); err != ErrInvalidSeed {
		t.Errorf("expected ErrInvalidSeed, got %v", err)
	}
}

func TestDerivePath(t *testing.T) {
	seed, _ := hex.DecodeString("fffcf9f6da3247d8a846f4b6113e6173")

	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("creating master key failed: %v", err)
	}

	for _, path := range []string{"m/0", "m/0'", SessionKeyPath} {
		child, err := wallet.DerivePath(path)
		if err != nil {
			t.Errorf("deriving path %s failed: %v", path, err)
			continue
		}
		if !child.IsPrivate() {
			t.Errorf("derived key at %s lost private material", path)
		}
	}

	if _, err := wallet.DerivePath("m/abc"); err == nil {
		t.Error("expected error for malformed path segment")
	}
}

func TestSessionPrivateKeyHex(t *testing.T) {
	seed, _ := hex.DecodeString("fffcf9f6da3247d8a846f4b6113e6173")

	wallet, err := NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("creating master key failed: %v", err)
	}

	keyHex, err := wallet.SessionPrivateKeyHex()
	if err != nil {
		t.Fatalf("SessionPrivateKeyHex failed: %v", err)
	}
	if len(keyHex) != 64 {
		t.Errorf("session key hex length = %d, want 64", len(keyHex))
	}

	// deterministic for the same seed
	again, _ := wallet.SessionPrivateKeyHex()
	if keyHex != again {
		t.Error("session key derivation is not deterministic")
	}
}
