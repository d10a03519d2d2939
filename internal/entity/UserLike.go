package entity

import "time"

// UserLike is a directed "liker likes liked" edge between two display
// names, unique per ordered pair.
type UserLike struct {
	ID            int64
	LikerUsername string
	LikedUsername string
	CreatedAt     time.Time
}
