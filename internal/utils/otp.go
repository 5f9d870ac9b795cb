package utils

import (
	"math/rand"
	"sync"
	"time"
)

var (
	otpMu   sync.Mutex
	otpRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// GenerateOTP generates a random numeric one-time code of the given length.
func GenerateOTP(length int) string {
	if length <= 0 {
		return ""
	}
	const charset = "0123456789"
	b := make([]byte, length)
	otpMu.Lock()
	for i := range b {
		b[i] = charset[otpRand.Intn(len(charset))]
	}
	otpMu.Unlock()
	return string(b)
}
