package entity

import "time"

// Vote is one voter's current choice on one poll. At most one vote
// exists per (poll, voter id) pair; a repeat vote from the same voter
// id replaces the option in place.
type Vote struct {
	ID            int64
	PollID        int64
	Option        int
	VoterID       string
	VoterUsername string
	CreatedAt     time.Time
}

// VoterInfo is one entry of a poll's per-option voter list.
type VoterInfo struct {
	Username string    `json:"username,omitempty"`
	VotedAt  time.Time `json:"voted_at"`
}
