package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"

	everrors "github.com/envault/envault/internal/errors"
)

// payloadDelimiter separates the hex-encoded salt from the raw ciphertext.
const payloadDelimiter = ':'

// EncodePayload assembles the stored blob format: hex(salt) + ":" + ciphertext.
func EncodePayload(salt, ciphertext []byte) []byte {
	encoded := make([]byte, 0, hex.EncodedLen(len(salt))+1+len(ciphertext))
	encoded = append(encoded, []byte(hex.EncodeToString(salt))...)
	encoded = append(encoded, payloadDelimiter)
	encoded = append(encoded, ciphertext...)
	return encoded
}

// DecodePayload splits a stored blob into its salt and ciphertext parts.
// The split happens at the first delimiter only: the ciphertext bytes may
// themselves contain the delimiter and are passed through untouched.
// Malformed payloads (no delimiter, non-hex salt) fail with
// errors.ErrInvalidCiphertext.
func DecodePayload(payload []byte) (salt, ciphertext []byte, err error) {
	idx := bytes.IndexByte(payload, payloadDelimiter)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: missing salt delimiter", everrors.ErrInvalidCiphertext)
	}
	salt, err = hex.DecodeString(string(payload[:idx]))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: salt is not hex encoded", everrors.ErrInvalidCiphertext)
	}
	if len(salt) == 0 {
		return nil, nil, fmt.Errorf("%w: empty salt", everrors.ErrInvalidCiphertext)
	}
	return salt, payload[idx+1:], nil
}
