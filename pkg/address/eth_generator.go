package address

import (
	"encoding/hex"
	"errors"
	"strings"

	"smartwallet-core/pkg/crypto_util"
)

var ErrInvalidPubKey = errors.New("invalid public key bytes")

// ETHGenerator derives EIP-55 checksummed Ethereum addresses from
// uncompressed secp256k1 public keys.
type ETHGenerator struct{}

func NewETHGenerator() *ETHGenerator {
	return &ETHGenerator{}
}

// PubKeyToAddress converts an uncompressed public key (65 bytes, 0x04
// prefixed) to a checksummed address.
func (g *ETHGenerator) PubKeyToAddress(pubKeyBytes []byte) (string, error) {
	if len(pubKeyBytes) == 65 && pubKeyBytes[0] == 0x04 {
		pubKeyBytes = pubKeyBytes[1:]
	}
	if len(pubKeyBytes) != 64 {
		return "", ErrInvalidPubKey
	}

	hash := crypto_util.Keccak256(pubKeyBytes)
	addressBytes := hash[12:] // low 20 bytes

	return "0x" + toChecksumAddress(hex.EncodeToString(addressBytes)), nil
}

// toChecksumAddress applies EIP-55 mixed-case checksumming.
func toChecksumAddress(address string) string {
	address = strings.ToLower(address)
	hexHash := crypto_util.CalculateKeccak256([]byte(address))

	var sb strings.Builder
	for i := 0; i < len(address); i++ {
		char := address[i]
		if hexCharToInt(hexHash[i]) >= 8 {
			sb.WriteString(strings.ToUpper(string(char)))
		} else {
			sb.WriteByte(char)
		}
	}
	return sb.String()
}

func hexCharToInt(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	}
	return 0
}
