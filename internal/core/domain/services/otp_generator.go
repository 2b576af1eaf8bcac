package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"fulfillment/internal/pkg/errs"
)

const (
	// DefaultOtpLength is the number of digits in a delivery code.
	DefaultOtpLength = 6

	maxOtpLength = 12
)

var ten = big.NewInt(10)

// OtpGenerator issues numeric one-time codes. Each digit is drawn
// independently and uniformly from a cryptographically secure source;
// leading zeros are kept.
type OtpGenerator struct {
	random io.Reader
}

// NewOtpGenerator uses crypto/rand.
func NewOtpGenerator() OtpGenerator {
	return OtpGenerator{random: rand.Reader}
}

// NewOtpGeneratorWithSource is for tests that need a deterministic reader.
func NewOtpGeneratorWithSource(random io.Reader) OtpGenerator {
	return OtpGenerator{random: random}
}

// Generate returns a code of exactly length digits.
func (g OtpGenerator) Generate(length int) (string, error) {
	if length < 1 || length > maxOtpLength {
		return "", errs.NewValueIsOutOfRangeError("otp length", length, 1, maxOtpLength)
	}
	random := g.random
	if random == nil {
		random = rand.Reader
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(random, ten)
		if err != nil {
			return "", fmt.Errorf("read random digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
