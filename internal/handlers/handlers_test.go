package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/realtimepolls/poll-service/internal/entity"
	"github.com/realtimepolls/poll-service/internal/handlers"
	"github.com/realtimepolls/poll-service/internal/routes"
	"github.com/realtimepolls/poll-service/internal/services"
	"github.com/realtimepolls/poll-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroadcaster captures dispatched events instead of fanning out.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []entity.Event
}

func (r *recordingBroadcaster) Broadcast(ev entity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBroadcaster) all() []entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Event(nil), r.events...)
}

func newTestRouter() (*gin.Engine, *recordingBroadcaster) {
	gin.SetMode(gin.TestMode)

	storage := testutil.NewStorage()
	broadcaster := &recordingBroadcaster{}

	polling := services.NewPolling(testutil.DiscardLogger(), storage, storage, storage)
	handler := handlers.NewPollingHandler(testutil.DiscardLogger(), polling, broadcaster)

	engine := gin.New()
	api := engine.Group("/api")
	routes.RegisterPollRoutes(api, handler)
	routes.RegisterUserRoutes(api, handler)

	return engine, broadcaster
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.RemoteAddr = "192.0.2.10:40000"

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func createPoll(t *testing.T, engine *gin.Engine) handlers.PollResponse {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/api/polls", gin.H{
		"title":            "Pizza?",
		"option1":          "Yes",
		"option2":          "No",
		"creator_username": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var poll handlers.PollResponse
	decode(t, w, &poll)
	return poll
}

func TestCreatePoll(t *testing.T) {
	engine, _ := newTestRouter()

	poll := createPoll(t, engine)

	assert.NotZero(t, poll.ID)
	assert.Equal(t, "Pizza?", poll.Title)
	assert.Equal(t, "Yes", poll.Option1)
	assert.Equal(t, "No", poll.Option2)
	assert.Empty(t, poll.Option3)
	assert.Equal(t, "alice", poll.CreatorUsername)
	assert.Equal(t, entity.VoteStats{}, poll.Votes)
}

func TestCreatePoll_MissingOptions(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodPost, "/api/polls", gin.H{
		"title":   "Pizza?",
		"option1": "Yes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPoll_NotFound(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodGet, "/api/polls/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPolls_List(t *testing.T) {
	engine, _ := newTestRouter()
	createPoll(t, engine)
	createPoll(t, engine)

	w := doJSON(t, engine, http.MethodGet, "/api/polls?skip=0&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Polls []handlers.PollResponse `json:"polls"`
	}
	decode(t, w, &resp)
	assert.Len(t, resp.Polls, 2)
}

func TestCastVote_FlowAndBroadcast(t *testing.T) {
	engine, broadcaster := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option":         1,
		"voter_username": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.VoteResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, entity.VoteStats{Option1: 1}, resp.Votes)

	events := broadcaster.all()
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventVoteUpdate, events[0].Type)
	assert.Equal(t, poll.ID, events[0].PollID)
}

func TestCastVote_SwitchFromSameClient(t *testing.T) {
	engine, _ := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option":         1,
		"voter_username": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Same origin, agent and username: the vote switches, total stays 1.
	w = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option":         2,
		"voter_username": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.VoteResponse
	decode(t, w, &resp)
	assert.Equal(t, entity.VoteStats{Option2: 1}, resp.Votes)
}

func TestCastVote_InvalidOption(t *testing.T) {
	engine, _ := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCastVote_UnknownPoll(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodPost, "/api/polls/404/vote", gin.H{"option": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetVotes(t *testing.T) {
	engine, broadcaster := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{"option": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/reset-votes", poll.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	events := broadcaster.all()
	require.Len(t, events, 2)
	assert.Equal(t, entity.EventVoteUpdate, events[1].Type)

	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/polls/%d", poll.ID), nil)
	var resp handlers.PollResponse
	decode(t, w, &resp)
	assert.Equal(t, entity.VoteStats{}, resp.Votes)
}

func TestDeletePoll(t *testing.T) {
	engine, broadcaster := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/polls/%d", poll.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	events := broadcaster.all()
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventPollDeleted, events[0].Type)
	assert.Equal(t, poll.ID, events[0].PollID)

	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/polls/%d/voters", poll.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPollVoters(t *testing.T) {
	engine, _ := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID), gin.H{
		"option":         1,
		"voter_username": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/polls/%d/voters", poll.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.PollVotersResponse
	decode(t, w, &resp)
	assert.Equal(t, poll.ID, resp.PollID)
	require.Len(t, resp.Option1Voters, 1)
	assert.Equal(t, "bob", resp.Option1Voters[0].Username)
	assert.Empty(t, resp.Option2Voters)
}

func TestLikeUser_FlowAndBroadcast(t *testing.T) {
	engine, broadcaster := newTestRouter()
	poll := createPoll(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
		"poll_id":        poll.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.UserLikeResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.LikesCount)

	events := broadcaster.all()
	require.Len(t, events, 2)
	assert.Equal(t, entity.EventUserLikeUpdate, events[0].Type)
	assert.Equal(t, entity.GlobalPollID, events[0].PollID)
	assert.Equal(t, entity.EventLikeToggleUpdate, events[1].Type)
	assert.Equal(t, poll.ID, events[1].PollID)
}

func TestLikeUser_SelfAndDuplicate(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnlikeUser(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodDelete, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/api/users/like", gin.H{
		"liker_username": "bob",
		"liked_username": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.UserLikeResponse
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.LikesCount)
}

func TestGetUserProfile(t *testing.T) {
	engine, _ := newTestRouter()

	w := doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
		"liker_username": "alice",
		"liked_username": "bob",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/users/bob/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.UserProfileResponse
	decode(t, w, &resp)
	assert.Equal(t, "bob", resp.Username)
	assert.Equal(t, 1, resp.LikesReceived)
	assert.Zero(t, resp.PollsCreated)
	assert.Zero(t, resp.TotalVotes)
}

func TestGetLikesGiven(t *testing.T) {
	engine, _ := newTestRouter()

	for _, liked := range []string{"bob", "carol"} {
		w := doJSON(t, engine, http.MethodPost, "/api/users/like", gin.H{
			"liker_username": "alice",
			"liked_username": liked,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/users/alice/likes-given", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Username   string   `json:"username"`
		LikedUsers []string `json:"liked_users"`
	}
	decode(t, w, &resp)
	assert.Equal(t, []string{"bob", "carol"}, resp.LikedUsers)
}
