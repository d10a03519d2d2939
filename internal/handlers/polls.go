package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/identity"
	"github.com/realtimepolls/poll-service/internal/services"
	"github.com/realtimepolls/poll-service/utils"
)

const defaultListLimit = 100

// Broadcaster fans an event out to live subscribers. The handler layer
// dispatches the events a service call returns; business logic never
// touches the transport.
type Broadcaster interface {
	Broadcast(ev entity.Event)
}

type PollingHandler struct {
	log     *slog.Logger
	polling *services.Polling
	events  Broadcaster
}

func NewPollingHandler(log *slog.Logger, polling *services.Polling, events Broadcaster) *PollingHandler {
	return &PollingHandler{log: log, polling: polling, events: events}
}

type CreatePollRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Option1         string `json:"option1" binding:"required"`
	Option2         string `json:"option2" binding:"required"`
	Option3         string `json:"option3"`
	Option4         string `json:"option4"`
	CreatorUsername string `json:"creator_username"`
}

type CastVoteRequest struct {
	Option        int    `json:"option" binding:"required"`
	VoterUsername string `json:"voter_username"`
}

type PollResponse struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Option1         string           `json:"option1"`
	Option2         string           `json:"option2"`
	Option3         string           `json:"option3,omitempty"`
	Option4         string           `json:"option4,omitempty"`
	CreatorUsername string           `json:"creator_username,omitempty"`
	Votes           entity.VoteStats `json:"votes"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type VoteResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Votes   entity.VoteStats `json:"votes"`
}

type PollVotersResponse struct {
	PollID        int64              `json:"poll_id"`
	Option1Voters []entity.VoterInfo `json:"option1_voters"`
	Option2Voters []entity.VoterInfo `json:"option2_voters"`
	Option3Voters []entity.VoterInfo `json:"option3_voters"`
	Option4Voters []entity.VoterInfo `json:"option4_voters"`
}

func (h *PollingHandler) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	options := []string{req.Option1, req.Option2}
	for _, opt := range []string{req.Option3, req.Option4} {
		if opt != "" {
			options = append(options, opt)
		}
	}

	summary, err := h.polling.CreatePoll(c.Request.Context(), req.Title, req.Description, options, req.CreatorUsername)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pollResponse(summary))
}

func (h *PollingHandler) GetPolls(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	summaries, err := h.polling.ListPolls(c.Request.Context(), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	polls := make([]PollResponse, 0, len(summaries))
	for _, summary := range summaries {
		polls = append(polls, pollResponse(summary))
	}

	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

func (h *PollingHandler) GetPollByID(c *gin.Context) {
	pollID, ok := h.pollID(c)
	if !ok {
		return
	}

	summary, err := h.polling.GetPollByID(c.Request.Context(), pollID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pollResponse(summary))
}

func (h *PollingHandler) DeletePoll(c *gin.Context) {
	pollID, ok := h.pollID(c)
	if !ok {
		return
	}

	events, err := h.polling.DeletePoll(c.Request.Context(), pollID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(events)

	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully"})
}

func (h *PollingHandler) CastVote(c *gin.Context) {
	pollID, ok := h.pollID(c)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	voterID := identity.Resolve(c.ClientIP(), c.GetHeader("User-Agent"), req.VoterUsername)

	stats, events, err := h.polling.CastVote(c.Request.Context(), pollID, req.Option, voterID, req.VoterUsername)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(events)

	c.JSON(http.StatusOK, VoteResponse{
		Success: true,
		Message: "Vote recorded successfully",
		Votes:   stats,
	})
}

func (h *PollingHandler) ResetVotes(c *gin.Context) {
	pollID, ok := h.pollID(c)
	if !ok {
		return
	}

	stats, events, err := h.polling.ResetVotes(c.Request.Context(), pollID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(events)

	c.JSON(http.StatusOK, gin.H{"message": "Votes reset successfully", "votes": stats})
}

func (h *PollingHandler) GetPollVoters(c *gin.Context) {
	pollID, ok := h.pollID(c)
	if !ok {
		return
	}

	voters, err := h.polling.GetPollVoters(c.Request.Context(), pollID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PollVotersResponse{
		PollID:        pollID,
		Option1Voters: voters[0],
		Option2Voters: voters[1],
		Option3Voters: voters[2],
		Option4Voters: voters[3],
	})
}

func (h *PollingHandler) pollID(c *gin.Context) (int64, bool) {
	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return 0, false
	}
	return pollID, true
}

func (h *PollingHandler) dispatch(events []entity.Event) {
	for _, ev := range events {
		h.events.Broadcast(ev)
	}
}

func (h *PollingHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
	case errors.Is(err, services.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vote option"})
	case errors.Is(err, services.ErrSelfLike), errors.Is(err, services.ErrAlreadyLiked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already liked this user or cannot like yourself"})
	case errors.Is(err, services.ErrLikeNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "like doesn't exist"})
	default:
		h.log.Error("request failed", utils.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pollResponse(summary services.PollSummary) PollResponse {
	poll := summary.Poll

	resp := PollResponse{
		ID:              poll.ID,
		Title:           poll.Title,
		Description:     poll.Description,
		CreatorUsername: poll.CreatorUsername,
		Votes:           summary.Votes,
		CreatedAt:       poll.CreatedAt,
		UpdatedAt:       poll.UpdatedAt,
	}

	slots := []*string{&resp.Option1, &resp.Option2, &resp.Option3, &resp.Option4}
	for i, opt := range poll.Options {
		if i >= len(slots) {
			break
		}
		*slots[i] = opt
	}

	return resp
}
