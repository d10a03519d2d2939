// Package identity derives a stable voter identifier from request-level
// signals, so repeat votes from the same client resolve to the same vote
// row without requiring login.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"net"
)

// agentHashLen is the number of hex characters of the user-agent hash
// kept in the identifier.
const agentHashLen = 8

// Resolve builds the voter identifier: origin host, a short hash of the
// client-agent string to tell apart devices behind the same address, and
// the display name when the client supplied one. It never fails; an
// empty agent string hashes to a fixed value.
func Resolve(remoteAddr, userAgent, username string) string {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	sum := md5.Sum([]byte(userAgent))
	id := host + "_" + hex.EncodeToString(sum[:])[:agentHashLen]

	if username != "" {
		id += "_" + username
	}

	return id
}
