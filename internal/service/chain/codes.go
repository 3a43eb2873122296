package chain

import (
	"bytes"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/crypto"

	"CountrySwipe/internal/domain/models"
)

// CodeHash is the on-chain key of a country index: keccak256 of the code's bytes.
func CodeHash(code models.CountryCode) [32]byte {
	return crypto.Keccak256Hash([]byte(code))
}

var codeByHash = func() map[[32]byte]models.CountryCode {
	m := make(map[[32]byte]models.CountryCode, len(models.AllCountryCodes))
	for _, c := range models.AllCountryCodes {
		m[CodeHash(c)] = c
	}
	return m
}()

// DecodeCode recovers a readable code from a bytes32 key. Known hashes map back to
// their code; otherwise the value is read as a null-padded string.
func DecodeCode(raw [32]byte) string {
	if c, ok := codeByHash[raw]; ok {
		return string(c)
	}
	trimmed := bytes.TrimRight(raw[:], "\x00")
	if len(trimmed) == 0 || !utf8.Valid(trimmed) {
		return "Unknown"
	}
	for _, b := range trimmed {
		if b < 0x20 || b == 0x7f {
			return "Unknown"
		}
	}
	return string(trimmed)
}
