package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/repo"
	"github.com/realtimepolls/poll-service/utils"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrInvalidOption = errors.New("invalid vote option")
	ErrAlreadyLiked  = errors.New("user already liked")
	ErrSelfLike      = errors.New("cannot like yourself")
	ErrLikeNotFound  = errors.New("like not found")
)

type Polling struct {
	log         *slog.Logger
	pollStorage PollStorage
	voteStorage VoteStorage
	likeStorage LikeStorage
}

type PollStorage interface {
	SavePoll(ctx context.Context, title, description string, options []string, creatorUsername string) (entity.Poll, error)
	GetPollByID(ctx context.Context, id int64) (entity.Poll, error)
	GetPolls(ctx context.Context, skip, limit int) ([]entity.Poll, error)
	DeletePoll(ctx context.Context, id int64) error
	CountPollsByCreator(ctx context.Context, username string) (int, error)
}

type VoteStorage interface {
	UpsertVote(ctx context.Context, pollID int64, option int, voterID, voterUsername string) error
	GetVotesByPollID(ctx context.Context, pollID int64) ([]entity.Vote, error)
	DeleteVotesByPollID(ctx context.Context, pollID int64) error
	CountVotesByUsername(ctx context.Context, username string) (int, error)
}

type LikeStorage interface {
	SaveLike(ctx context.Context, likerUsername, likedUsername string) error
	DeleteLike(ctx context.Context, likerUsername, likedUsername string) error
	CountLikesReceived(ctx context.Context, username string) (int, error)
	GetLikedUsernames(ctx context.Context, likerUsername string) ([]string, error)
}

// PollSummary is a poll joined with its current vote statistics.
type PollSummary struct {
	Poll  entity.Poll
	Votes entity.VoteStats
}

// UserProfile holds a user's aggregate activity counters.
type UserProfile struct {
	PollsCreated  int
	TotalVotes    int
	LikesReceived int
}

func NewPolling(
	log *slog.Logger,
	pollStorage PollStorage,
	voteStorage VoteStorage,
	likeStorage LikeStorage,
) *Polling {
	return &Polling{
		log:         log,
		pollStorage: pollStorage,
		voteStorage: voteStorage,
		likeStorage: likeStorage,
	}
}

func (p *Polling) CreatePoll(ctx context.Context, title, description string, options []string, creatorUsername string) (PollSummary, error) {
	const op = "polling.CreatePoll"

	poll, err := p.pollStorage.SavePoll(ctx, title, description, options, creatorUsername)
	if err != nil {
		return PollSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("poll created", slog.Int64("poll_id", poll.ID), slog.String("creator", creatorUsername))

	return PollSummary{Poll: poll}, nil
}

func (p *Polling) ListPolls(ctx context.Context, skip, limit int) ([]PollSummary, error) {
	const op = "polling.ListPolls"

	polls, err := p.pollStorage.GetPolls(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summaries := make([]PollSummary, 0, len(polls))
	for _, poll := range polls {
		stats, err := p.voteStats(ctx, poll.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summaries = append(summaries, PollSummary{Poll: poll, Votes: stats})
	}

	return summaries, nil
}

func (p *Polling) GetPollByID(ctx context.Context, id int64) (PollSummary, error) {
	const op = "polling.GetPollByID"

	poll, err := p.pollStorage.GetPollByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			return PollSummary{}, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return PollSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := p.voteStats(ctx, id)
	if err != nil {
		return PollSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	return PollSummary{Poll: poll, Votes: stats}, nil
}

// CastVote records or switches a vote and returns the updated stats plus
// the events to broadcast. A voter already present on the poll has their
// option replaced in place, so the total vote count is unchanged.
func (p *Polling) CastVote(ctx context.Context, pollID int64, option int, voterID, voterUsername string) (entity.VoteStats, []entity.Event, error) {
	const op = "polling.CastVote"

	poll, err := p.pollStorage.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if option < 1 || option > len(poll.Options) {
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, ErrInvalidOption)
	}

	if err := p.voteStorage.UpsertVote(ctx, pollID, option, voterID, voterUsername); err != nil {
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := p.voteStats(ctx, pollID)
	if err != nil {
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("vote recorded",
		slog.Int64("poll_id", pollID),
		slog.Int("option", option),
		slog.String("voter_id", voterID),
	)

	events := []entity.Event{{
		Type:   entity.EventVoteUpdate,
		PollID: pollID,
		Data:   entity.VoteUpdatePayload{Votes: stats},
	}}

	return stats, events, nil
}

// ResetVotes clears all votes on a poll. Intended for non-production use.
func (p *Polling) ResetVotes(ctx context.Context, pollID int64) (entity.VoteStats, []entity.Event, error) {
	const op = "polling.ResetVotes"

	if _, err := p.pollStorage.GetPollByID(ctx, pollID); err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := p.voteStorage.DeleteVotesByPollID(ctx, pollID); err != nil {
		return entity.VoteStats{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Warn("votes reset", slog.Int64("poll_id", pollID))

	stats := entity.VoteStats{}
	events := []entity.Event{{
		Type:   entity.EventVoteUpdate,
		PollID: pollID,
		Data:   entity.VoteUpdatePayload{Votes: stats},
	}}

	return stats, events, nil
}

func (p *Polling) DeletePoll(ctx context.Context, pollID int64) ([]entity.Event, error) {
	const op = "polling.DeletePoll"

	if err := p.pollStorage.DeletePoll(ctx, pollID); err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("poll deleted", slog.Int64("poll_id", pollID))

	events := []entity.Event{{
		Type:   entity.EventPollDeleted,
		PollID: pollID,
		Data:   entity.PollDeletedPayload{PollID: pollID},
	}}

	return events, nil
}

// LikeUser records the liker->liked edge and returns the liked user's new
// likes-received count. The pollID, when non-zero, scopes an extra
// like_toggle_update event to the poll card the like came from.
func (p *Polling) LikeUser(ctx context.Context, likerUsername, likedUsername string, pollID int64) (int, []entity.Event, error) {
	const op = "polling.LikeUser"

	if likerUsername == likedUsername {
		return 0, nil, fmt.Errorf("%s: %w", op, ErrSelfLike)
	}

	if err := p.likeStorage.SaveLike(ctx, likerUsername, likedUsername); err != nil {
		if errors.Is(err, repo.ErrLikeExists) {
			return 0, nil, fmt.Errorf("%s: %w", op, ErrAlreadyLiked)
		}
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := p.likeStorage.CountLikesReceived(ctx, likedUsername)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}

	return count, p.likeEvents(likerUsername, likedUsername, pollID, count, true), nil
}

func (p *Polling) UnlikeUser(ctx context.Context, likerUsername, likedUsername string, pollID int64) (int, []entity.Event, error) {
	const op = "polling.UnlikeUser"

	if err := p.likeStorage.DeleteLike(ctx, likerUsername, likedUsername); err != nil {
		if errors.Is(err, repo.ErrLikeNotFound) {
			return 0, nil, fmt.Errorf("%s: %w", op, ErrLikeNotFound)
		}
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := p.likeStorage.CountLikesReceived(ctx, likedUsername)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}

	return count, p.likeEvents(likerUsername, likedUsername, pollID, count, false), nil
}

// GetPollVoters returns insertion-ordered voter lists for option slots
// 1..4, empty for slots without votes.
func (p *Polling) GetPollVoters(ctx context.Context, pollID int64) ([4][]entity.VoterInfo, error) {
	const op = "polling.GetPollVoters"

	var voters [4][]entity.VoterInfo
	for i := range voters {
		voters[i] = []entity.VoterInfo{}
	}

	if _, err := p.pollStorage.GetPollByID(ctx, pollID); err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			return voters, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return voters, fmt.Errorf("%s: %w", op, err)
	}

	votes, err := p.voteStorage.GetVotesByPollID(ctx, pollID)
	if err != nil {
		return voters, fmt.Errorf("%s: %w", op, err)
	}

	for _, vote := range votes {
		if vote.Option < 1 || vote.Option > 4 {
			continue
		}
		voters[vote.Option-1] = append(voters[vote.Option-1], entity.VoterInfo{
			Username: vote.VoterUsername,
			VotedAt:  vote.CreatedAt,
		})
	}

	return voters, nil
}

// GetUserProfile never fails on unknown users: all counters are zero.
func (p *Polling) GetUserProfile(ctx context.Context, username string) (UserProfile, error) {
	const op = "polling.GetUserProfile"

	pollsCreated, err := p.pollStorage.CountPollsByCreator(ctx, username)
	if err != nil {
		return UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	totalVotes, err := p.voteStorage.CountVotesByUsername(ctx, username)
	if err != nil {
		return UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	likesReceived, err := p.likeStorage.CountLikesReceived(ctx, username)
	if err != nil {
		return UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return UserProfile{
		PollsCreated:  pollsCreated,
		TotalVotes:    totalVotes,
		LikesReceived: likesReceived,
	}, nil
}

func (p *Polling) GetUserLikes(ctx context.Context, username string) (int, error) {
	const op = "polling.GetUserLikes"

	count, err := p.likeStorage.CountLikesReceived(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (p *Polling) GetLikesGiven(ctx context.Context, username string) ([]string, error) {
	const op = "polling.GetLikesGiven"

	usernames, err := p.likeStorage.GetLikedUsernames(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if usernames == nil {
		usernames = []string{}
	}

	return usernames, nil
}

func (p *Polling) voteStats(ctx context.Context, pollID int64) (entity.VoteStats, error) {
	votes, err := p.voteStorage.GetVotesByPollID(ctx, pollID)
	if err != nil {
		p.log.Error("failed to load votes", slog.Int64("poll_id", pollID), utils.Err(err))
		return entity.VoteStats{}, err
	}

	var stats entity.VoteStats
	for _, vote := range votes {
		switch vote.Option {
		case 1:
			stats.Option1++
		case 2:
			stats.Option2++
		case 3:
			stats.Option3++
		case 4:
			stats.Option4++
		}
	}

	return stats, nil
}

func (p *Polling) likeEvents(likerUsername, likedUsername string, pollID int64, count int, isLiked bool) []entity.Event {
	events := []entity.Event{{
		Type:   entity.EventUserLikeUpdate,
		PollID: entity.GlobalPollID,
		Data: entity.UserLikeUpdatePayload{
			Username:   likedUsername,
			LikesCount: count,
		},
	}}

	if pollID != entity.GlobalPollID {
		events = append(events, entity.Event{
			Type:   entity.EventLikeToggleUpdate,
			PollID: pollID,
			Data: entity.LikeToggleUpdatePayload{
				LikerUsername: likerUsername,
				LikedUsername: likedUsername,
				IsLiked:       isLiked,
			},
		})
	}

	return events
}
