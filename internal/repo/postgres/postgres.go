package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/repo"
)

// uniqueViolation is the Postgres error code for a broken unique constraint.
const uniqueViolation = "23505"

type Storage struct {
	db *sql.DB
}

func New(postgresURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SavePoll(ctx context.Context, title, description string, options []string, creatorUsername string) (entity.Poll, error) {
	const op = "storage.postgres.SavePoll"

	query := `INSERT INTO polls (title, description, options, creator_username)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	poll := entity.Poll{
		Title:           title,
		Description:     description,
		Options:         options,
		CreatorUsername: creatorUsername,
	}
	err := s.db.QueryRowContext(ctx, query, title, description, pq.Array(options), creatorUsername).
		Scan(&poll.ID, &poll.CreatedAt, &poll.UpdatedAt)
	if err != nil {
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

func (s *Storage) GetPollByID(ctx context.Context, id int64) (entity.Poll, error) {
	const op = "storage.postgres.GetPollByID"

	query := `SELECT id, title, description, options, creator_username, created_at, updated_at FROM polls WHERE id = $1`

	var poll entity.Poll
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.Title, &poll.Description, pq.Array(&poll.Options),
		&poll.CreatorUsername, &poll.CreatedAt, &poll.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Poll{}, fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
		}
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

func (s *Storage) GetPolls(ctx context.Context, skip, limit int) ([]entity.Poll, error) {
	const op = "storage.postgres.GetPolls"

	query := `SELECT id, title, description, options, creator_username, created_at, updated_at
		FROM polls ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var polls []entity.Poll
	for rows.Next() {
		var poll entity.Poll
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.Description, pq.Array(&poll.Options),
			&poll.CreatorUsername, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		polls = append(polls, poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return polls, nil
}

// DeletePoll removes the poll row; votes go with it via the ON DELETE
// CASCADE constraint, so the whole cascade is a single statement.
func (s *Storage) DeletePoll(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeletePoll"

	query := `DELETE FROM polls WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrPollNotFound
	}

	return nil
}

func (s *Storage) CountPollsByCreator(ctx context.Context, username string) (int, error) {
	const op = "storage.postgres.CountPollsByCreator"

	query := `SELECT COUNT(*) FROM polls WHERE creator_username = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// UpsertVote inserts a vote or, when the (poll_id, voter_id) pair already
// exists, switches the stored option in place. The unique index keeps the
// one-vote-per-voter invariant even under concurrent requests.
func (s *Storage) UpsertVote(ctx context.Context, pollID int64, option int, voterID, voterUsername string) error {
	const op = "storage.postgres.UpsertVote"

	query := `INSERT INTO votes (poll_id, option, voter_id, voter_username)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, voter_id)
		DO UPDATE SET option = EXCLUDED.option, voter_username = EXCLUDED.voter_username`

	if _, err := s.db.ExecContext(ctx, query, pollID, option, voterID, voterUsername); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetVotesByPollID(ctx context.Context, pollID int64) ([]entity.Vote, error) {
	const op = "storage.postgres.GetVotesByPollID"

	query := `SELECT id, poll_id, option, voter_id, voter_username, created_at
		FROM votes WHERE poll_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var votes []entity.Vote
	for rows.Next() {
		var vote entity.Vote
		if err := rows.Scan(&vote.ID, &vote.PollID, &vote.Option, &vote.VoterID, &vote.VoterUsername, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		votes = append(votes, vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return votes, nil
}

func (s *Storage) DeleteVotesByPollID(ctx context.Context, pollID int64) error {
	const op = "storage.postgres.DeleteVotesByPollID"

	query := `DELETE FROM votes WHERE poll_id = $1`

	if _, err := s.db.ExecContext(ctx, query, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) CountVotesByUsername(ctx context.Context, username string) (int, error) {
	const op = "storage.postgres.CountVotesByUsername"

	query := `SELECT COUNT(*) FROM votes WHERE voter_username = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *Storage) SaveLike(ctx context.Context, likerUsername, likedUsername string) error {
	const op = "storage.postgres.SaveLike"

	query := `INSERT INTO user_likes (liker_username, liked_username) VALUES ($1, $2)`

	if _, err := s.db.ExecContext(ctx, query, likerUsername, likedUsername); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", op, repo.ErrLikeExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteLike(ctx context.Context, likerUsername, likedUsername string) error {
	const op = "storage.postgres.DeleteLike"

	query := `DELETE FROM user_likes WHERE liker_username = $1 AND liked_username = $2`

	res, err := s.db.ExecContext(ctx, query, likerUsername, likedUsername)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrLikeNotFound
	}

	return nil
}

func (s *Storage) CountLikesReceived(ctx context.Context, username string) (int, error) {
	const op = "storage.postgres.CountLikesReceived"

	query := `SELECT COUNT(*) FROM user_likes WHERE liked_username = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *Storage) GetLikedUsernames(ctx context.Context, likerUsername string) ([]string, error) {
	const op = "storage.postgres.GetLikedUsernames"

	query := `SELECT liked_username FROM user_likes WHERE liker_username = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, likerUsername)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		usernames = append(usernames, username)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return usernames, nil
}
