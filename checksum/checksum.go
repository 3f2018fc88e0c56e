// Package checksum computes and validates the short integrity markers carried
// by restricted-form text fields: an unpadded-base64 CRC32 marker of the form
// [crc32:VALUE] and an even-parity bit marker of the form [parity:0|1], both
// anchored as trailing suffixes. When both are present the checksum marker
// precedes the parity marker.
package checksum

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math/bits"
	"regexp"
	"strings"
)

var (
	markerRe = regexp.MustCompile(`\[crc32:([A-Za-z0-9+/=]+)\]$`)
	parityRe = regexp.MustCompile(`\[parity:([01])\]$`)
)

// Sum computes the CRC32 of the UTF-8 bytes of text and returns the 4
// checksum bytes big-endian in base64 without padding.
func Sum(text string) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], crc32.ChecksumIEEE([]byte(text)))
	return base64.RawStdEncoding.EncodeToString(buf[:])
}

// Extract splits a trailing [crc32:VALUE] marker from its preceding content.
// When no marker is present it returns ("", text) unchanged.
func Extract(text string) (mark, content string) {
	if m := markerRe.FindStringSubmatchIndex(text); m != nil {
		return text[m[2]:m[3]], text[:m[0]]
	}
	return "", text
}

// Stamp strips any existing trailing checksum marker, recomputes the checksum
// over the remaining content and appends a fresh marker.
func Stamp(text string) string {
	_, content := Extract(text)
	return content + "[crc32:" + Sum(content) + "]"
}

// Validate checks the trailing checksum marker of text, if any. A missing
// marker is valid; checksums are opt-in, never mandatory. A present marker
// that does not match the recomputed checksum yields an error naming both
// values. Base64 padding is normalized on both sides before comparing.
func Validate(text string) error {
	mark, content := Extract(text)
	if mark == "" {
		return nil
	}
	expected := Sum(content)
	if padBase64(expected) != padBase64(mark) {
		return fmt.Errorf("crc32 mismatch: expected %s, got %s", expected, mark)
	}
	return nil
}

func padBase64(s string) string {
	if rem := len(s) % 4; rem != 0 {
		return s + strings.Repeat("=", 4-rem)
	}
	return s
}

// Parity returns the total count of set bits across the UTF-8 bytes of text,
// modulo 2 (even-parity convention).
func Parity(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		n += bits.OnesCount8(text[i])
	}
	return n % 2
}

// AppendParity appends a [parity:N] marker computed over the value as it
// stands, checksum marker included when one is present.
func AppendParity(text string) string {
	return fmt.Sprintf("%s[parity:%d]", text, Parity(text))
}

// ExtractParity splits a trailing [parity:N] marker from its preceding
// content. ok is false when no well-formed marker is present.
func ExtractParity(text string) (bit int, content string, ok bool) {
	m := parityRe.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, text, false
	}
	if text[m[2]] == '1' {
		bit = 1
	}
	return bit, text[:m[0]], true
}

// HasParityShape reports whether text ends in something shaped like a parity
// marker, well-formed or not. Used to distinguish a malformed marker from an
// absent one.
func HasParityShape(text string) bool {
	i := strings.LastIndex(text, "[parity:")
	return i >= 0 && strings.HasSuffix(text, "]")
}

// HasChecksumShape reports whether text ends in something shaped like a
// checksum marker, well-formed or not.
func HasChecksumShape(text string) bool {
	i := strings.LastIndex(text, "[crc32:")
	return i >= 0 && strings.HasSuffix(text, "]")
}
