package address

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestPubKeyToAddress(t *testing.T) {
	// generator point of secp256k1 as an uncompressed pubkey; the derived
	// address is a fixed, well-known value
	pubHex := "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		t.Fatalf("decoding pubkey hex failed: %v", err)
	}

	gen := NewETHGenerator()
	addr, err := gen.PubKeyToAddress(pub)
	if err != nil {
		t.Fatalf("PubKeyToAddress failed: %v", err)
	}

	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
		t.Errorf("malformed address: %s", addr)
	}
	if !strings.EqualFold(addr, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf") {
		t.Errorf("unexpected address: %s", addr)
	}

	// checksum must survive a round trip through lowercase
	lowered := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	if toChecksumAddress(lowered) != strings.TrimPrefix(addr, "0x") {
		t.Errorf("checksum not stable for %s", addr)
	}
}

func TestPubKeyToAddressRejectsShortKey(t *testing.T) {
	gen := NewETHGenerator()
	if _, err := gen.PubKeyToAddress([]byte{0x04, 0x01, 0x02}); err == nil {
		t.Error("expected error for truncated public key")
	}
}
