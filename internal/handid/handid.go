package handid

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Crockford-style base32 alphabet, lowercase
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail bytes. Tests inject a seeded source
// for reproducible identifiers.
type RandSource interface {
	Intn(n int) int
}

// New returns a fresh hand identifier: a UUIDv7 rendered as 26 base32
// characters. Identifiers generated in sequence sort lexicographically by
// creation time, so hand journals order naturally by ID.
func New() string {
	return NewWithRand(nil)
}

// NewWithRand generates an identifier using src for the random bytes, or
// crypto/rand when src is nil.
func NewWithRand(src RandSource) string {
	return encodeBase32(newUUIDv7(src))
}

// newUUIDv7 builds a 128-bit UUIDv7: 48-bit millisecond timestamp, then
// version and variant bits over random data.
func newUUIDv7(src RandSource) [16]byte {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if src != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(src.Intn(256))
		}
	} else {
		if _, err := rand.Read(uuid[6:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return uuid
}

// encodeBase32 renders 128 bits as 26 characters of 5 bits each, MSB first.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks that id is a well-formed hand identifier.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("hand ID must be exactly 26 characters, got %d", len(id))
	}

	// The leading character encodes the top 5 of 130 bits; anything above
	// '7' would overflow 128 bits.
	if id[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		valid := false
		for _, validChar := range alphabet {
			if char == validChar {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
