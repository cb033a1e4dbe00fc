package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

const (
	addressVersion = 0x41
	subaccountSize = 32
)

var ErrKeyMismatch = errors.New("custody key does not match account address")

// Custody is the key material of a user's frontend account plus the vault
// subaccount the backend holds on the user's behalf.
type Custody struct {
	PrivateKey      string
	Address         string
	VaultSubaccount string
}

// GenerateCustody creates a new key pair for principal and derives its vault subaccount.
func GenerateCustody(principal string) (*Custody, error) {
	if principal == "" {
		return nil, errors.New("principal is required")
	}
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	address, err := addressFromPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	return &Custody{
		PrivateKey:      hex.EncodeToString(crypto.FromECDSA(privateKey)),
		Address:         address,
		VaultSubaccount: VaultSubaccount(principal, 0),
	}, nil
}

// VaultSubaccount derives the 32-byte vault subaccount for principal. Index
// allows one principal to own several vault slots.
func VaultSubaccount(principal string, index uint32) string {
	buf := make([]byte, 0, len(principal)+4)
	buf = append(buf, principal...)
	buf = binary.BigEndian.AppendUint32(buf, index)
	sum := crypto.Keccak256(buf)
	return hex.EncodeToString(sum[:subaccountSize])
}

// AddressFromPrivateKey recovers the base58check address of a stored key.
func AddressFromPrivateKey(privKeyHex string) (string, error) {
	privBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode private key hex: %v", err)
	}

	privKey, err := crypto.ToECDSA(privBytes)
	if err != nil {
		return "", fmt.Errorf("failed to convert to ECDSA: %v", err)
	}
	return addressFromPublicKey(&privKey.PublicKey)
}

// ValidAddress checks the version byte and the double-sha256 checksum.
func ValidAddress(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != 25 || decoded[0] != addressVersion {
		return false
	}
	sum := checksum(decoded[:21])
	return string(sum) == string(decoded[21:])
}

// VerifyCustody checks that a stored key still derives the stored address.
func VerifyCustody(privKeyHex, address string) error {
	if !ValidAddress(address) {
		return fmt.Errorf("malformed custody address %q", address)
	}
	derived, err := AddressFromPrivateKey(privKeyHex)
	if err != nil {
		return err
	}
	if derived != address {
		return ErrKeyMismatch
	}
	return nil
}

func addressFromPublicKey(pub *ecdsa.PublicKey) (string, error) {
	pubBytes := crypto.FromECDSAPub(pub)[1:]
	if len(pubBytes) != 64 {
		return "", errors.New("invalid public key length")
	}

	hash := crypto.Keccak256(pubBytes)
	raw := append([]byte{addressVersion}, hash[12:]...)

	return base58.Encode(append(raw, checksum(raw)...)), nil
}

func checksum(raw []byte) []byte {
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// Sign signs the sha256 digest of payload with a stored hex key and returns the
// hex signature.
func Sign(privKeyHex string, payload []byte) (string, error) {
	privBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode private key hex: %v", err)
	}
	privKey, err := crypto.ToECDSA(privBytes)
	if err != nil {
		return "", fmt.Errorf("failed to convert to ECDSA: %v", err)
	}

	hash := sha256.Sum256(payload)
	sig, err := crypto.Sign(hash[:], privKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %v", err)
	}
	return hex.EncodeToString(sig), nil
}
