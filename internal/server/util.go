package server

import "crypto/rand"

// newSessionCode returns a 6-character join code. The alphabet omits
// characters that read ambiguously on a shared screen (I, O, 0, 1).
func newSessionCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
