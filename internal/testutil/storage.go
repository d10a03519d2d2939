// Package testutil provides an in-memory storage used by service and
// handler tests in place of Postgres. It mirrors the storage contract,
// including the cascade from poll deletion to votes and the unique
// constraints on votes and likes.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/repo"
)

type Storage struct {
	mu         sync.Mutex
	nextPollID int64
	nextVoteID int64
	nextLikeID int64
	polls      map[int64]entity.Poll
	votes      []entity.Vote
	likes      []entity.UserLike
}

func NewStorage() *Storage {
	return &Storage{
		polls: make(map[int64]entity.Poll),
	}
}

// DiscardLogger returns a logger for tests that should stay quiet.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *Storage) SavePoll(_ context.Context, title, description string, options []string, creatorUsername string) (entity.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPollID++
	now := time.Now()
	poll := entity.Poll{
		ID:              s.nextPollID,
		Title:           title,
		Description:     description,
		Options:         append([]string(nil), options...),
		CreatorUsername: creatorUsername,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.polls[poll.ID] = poll

	return poll, nil
}

func (s *Storage) GetPollByID(_ context.Context, id int64) (entity.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return entity.Poll{}, repo.ErrPollNotFound
	}
	return poll, nil
}

func (s *Storage) GetPolls(_ context.Context, skip, limit int) ([]entity.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	polls := make([]entity.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		polls = append(polls, poll)
	}
	// Newest first, matching the Postgres query.
	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].ID > polls[j].ID
		}
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})

	if skip >= len(polls) {
		return nil, nil
	}
	polls = polls[skip:]
	if limit < len(polls) {
		polls = polls[:limit]
	}
	return polls, nil
}

func (s *Storage) DeletePoll(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[id]; !ok {
		return repo.ErrPollNotFound
	}
	delete(s.polls, id)

	// Cascade, as the schema's FK does.
	kept := s.votes[:0]
	for _, vote := range s.votes {
		if vote.PollID != id {
			kept = append(kept, vote)
		}
	}
	s.votes = kept

	return nil
}

func (s *Storage) CountPollsByCreator(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, poll := range s.polls {
		if poll.CreatorUsername == username {
			count++
		}
	}
	return count, nil
}

func (s *Storage) UpsertVote(_ context.Context, pollID int64, option int, voterID, voterUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.votes {
		if s.votes[i].PollID == pollID && s.votes[i].VoterID == voterID {
			s.votes[i].Option = option
			s.votes[i].VoterUsername = voterUsername
			return nil
		}
	}

	s.nextVoteID++
	s.votes = append(s.votes, entity.Vote{
		ID:            s.nextVoteID,
		PollID:        pollID,
		Option:        option,
		VoterID:       voterID,
		VoterUsername: voterUsername,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (s *Storage) GetVotesByPollID(_ context.Context, pollID int64) ([]entity.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var votes []entity.Vote
	for _, vote := range s.votes {
		if vote.PollID == pollID {
			votes = append(votes, vote)
		}
	}
	return votes, nil
}

func (s *Storage) DeleteVotesByPollID(_ context.Context, pollID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.votes[:0]
	for _, vote := range s.votes {
		if vote.PollID != pollID {
			kept = append(kept, vote)
		}
	}
	s.votes = kept
	return nil
}

func (s *Storage) CountVotesByUsername(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, vote := range s.votes {
		if vote.VoterUsername == username {
			count++
		}
	}
	return count, nil
}

func (s *Storage) SaveLike(_ context.Context, likerUsername, likedUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, like := range s.likes {
		if like.LikerUsername == likerUsername && like.LikedUsername == likedUsername {
			return repo.ErrLikeExists
		}
	}

	s.nextLikeID++
	s.likes = append(s.likes, entity.UserLike{
		ID:            s.nextLikeID,
		LikerUsername: likerUsername,
		LikedUsername: likedUsername,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (s *Storage) DeleteLike(_ context.Context, likerUsername, likedUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, like := range s.likes {
		if like.LikerUsername == likerUsername && like.LikedUsername == likedUsername {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return nil
		}
	}
	return repo.ErrLikeNotFound
}

func (s *Storage) CountLikesReceived(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, like := range s.likes {
		if like.LikedUsername == username {
			count++
		}
	}
	return count, nil
}

func (s *Storage) GetLikedUsernames(_ context.Context, likerUsername string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var usernames []string
	for _, like := range s.likes {
		if like.LikerUsername == likerUsername {
			usernames = append(usernames, like.LikedUsername)
		}
	}
	return usernames, nil
}
