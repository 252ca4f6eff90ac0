// Package otpcode produces six-digit one-time passcodes.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	low  = 100000
	span = 900000 // codes fall in [100000, 999999]
)

// Generator produces one passcode per call.
type Generator interface {
	Generate() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

func (f GeneratorFunc) Generate() string { return f() }

// Default draws from crypto/rand.
var Default Generator = GeneratorFunc(Generate)

// Generate returns a uniformly distributed code in [100000, 999999].
func Generate() string {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is unavailable.
		panic(fmt.Sprintf("otpcode: read random: %v", err))
	}
	return fmt.Sprintf("%d", low+n.Int64())
}

// Fixed always returns code. Intended for tests and local tooling.
func Fixed(code string) Generator {
	return GeneratorFunc(func() string { return code })
}
