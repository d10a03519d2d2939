package entity

import "time"

// Poll is a titled question with an ordered list of 2-4 options.
// Polls are immutable after creation.
type Poll struct {
	ID              int64
	Title           string
	Description     string
	Options         []string
	CreatorUsername string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VoteStats holds the current vote count per option slot, zero-filled
// for slots the poll does not define.
type VoteStats struct {
	Option1 int `json:"option1"`
	Option2 int `json:"option2"`
	Option3 int `json:"option3"`
	Option4 int `json:"option4"`
}
