package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/setavenger/go-silentpayments/utils"
)

// SecretKey and PublicKey are JSON-friendly fixed-length byte arrays for
// wallet configuration and persistence; cryptographic operations live in
// package bip352 and take their own Scalar/Point types.
type SecretKey [32]byte

func (s SecretKey) String() string {
	return hex.EncodeToString(s[:])
}

func (s SecretKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SecretKey) UnmarshalJSON(data []byte) error {
	dataCleanString := strings.ReplaceAll(string(data), "\"", "")
	dataBytes, err := hex.DecodeString(dataCleanString)
	if err != nil {
		return err
	}
	key := utils.ConvertToFixedLength32(dataBytes)
	copy(s[:], key[:])
	return err
}

func (s SecretKey) ToArray() [32]byte {
	return [32]byte(s)
}

// PublicKey is a 33-byte compressed public key
type PublicKey [33]byte

func (s PublicKey) String() string {
	return hex.EncodeToString(s[:])
}

func (s PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PublicKey) UnmarshalJSON(data []byte) error {
	dataCleanString := strings.ReplaceAll(string(data), "\"", "")
	dataBytes, err := hex.DecodeString(dataCleanString)
	if err != nil {
		return err
	}
	key := utils.ConvertToFixedLength33(dataBytes)
	copy(s[:], key[:])
	return err
}

func (s PublicKey) ToArray() [33]byte {
	return [33]byte(s)
}
