package utils

import (
	"crypto/rand"
	"fmt"
	"log"
	"time"
)

const sessionAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// FallbackSessionID builds a server-side stand-in session id for tracking calls
// that arrive without one, in the form "server-<millis>-<random suffix>".
// Browser-generated session ids stay as the client sent them.
func FallbackSessionID() string {
	return fmt.Sprintf("server-%d-%s", time.Now().UnixMilli(), randomSuffix(9))
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Printf("ERROR: failed to generate random session suffix: %v", err)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	for i := range b {
		b[i] = sessionAlphabet[int(b[i])%len(sessionAlphabet)]
	}
	return string(b)
}
