package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const tokenTTL = 24 * time.Hour

// issuePlayerToken binds a player to a session code. The token travels with
// every authenticated request and survives reconnects.
func issuePlayerToken(secret, playerID, code string, issuedAt time.Time) string {
	payload := fmt.Sprintf("%s:%s:%d", playerID, code, issuedAt.Unix())
	signed := payload + ":" + signToken(secret, payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed))
}

func verifyPlayerToken(secret, token, playerID, code string, now time.Time) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return errf(errUnauthorized, "invalid player token")
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return errf(errUnauthorized, "invalid player token")
	}
	tokenPlayer, tokenCode, tokenStamp, signature := parts[0], parts[1], parts[2], parts[3]
	payload := tokenPlayer + ":" + tokenCode + ":" + tokenStamp
	expected := signToken(secret, payload)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return errf(errUnauthorized, "invalid player token")
	}
	if tokenPlayer != playerID || tokenCode != code {
		return errf(errUnauthorized, "player token does not match session")
	}
	issued, err := strconv.ParseInt(tokenStamp, 10, 64)
	if err != nil {
		return errf(errUnauthorized, "invalid player token")
	}
	if now.Sub(time.Unix(issued, 0)) > tokenTTL {
		return errf(errUnauthorized, "player token expired")
	}
	return nil
}

func signToken(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
