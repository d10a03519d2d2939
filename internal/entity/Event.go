package entity

type EventType string

const (
	EventVoteUpdate       EventType = "vote_update"
	EventPollDeleted      EventType = "poll_deleted"
	EventUserLikeUpdate   EventType = "user_like_update"
	EventLikeToggleUpdate EventType = "like_toggle_update"
)

// GlobalPollID tags events that are not scoped to a single poll.
const GlobalPollID int64 = 0

// Event describes one notification to fan out to subscribers. Services
// return events alongside their results; dispatch is a separate step.
type Event struct {
	Type   EventType
	PollID int64
	Data   any
}

type VoteUpdatePayload struct {
	Votes VoteStats `json:"votes"`
}

type PollDeletedPayload struct {
	PollID int64 `json:"poll_id"`
}

type UserLikeUpdatePayload struct {
	Username   string `json:"username"`
	LikesCount int    `json:"likes_count"`
}

type LikeToggleUpdatePayload struct {
	LikerUsername string `json:"liker_username"`
	LikedUsername string `json:"liked_username"`
	IsLiked       bool   `json:"is_liked"`
}
