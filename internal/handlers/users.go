package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserLikeRequest struct {
	LikerUsername string `json:"liker_username" binding:"required"`
	LikedUsername string `json:"liked_username" binding:"required"`
	PollID        int64  `json:"poll_id"`
}

type UserLikeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	LikesCount int    `json:"likes_count"`
}

type UserProfileResponse struct {
	Username      string `json:"username"`
	LikesReceived int    `json:"likes_received"`
	PollsCreated  int    `json:"polls_created"`
	TotalVotes    int    `json:"total_votes"`
}

func (h *PollingHandler) LikeUser(c *gin.Context) {
	var req UserLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	count, events, err := h.polling.LikeUser(c.Request.Context(), req.LikerUsername, req.LikedUsername, req.PollID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(events)

	c.JSON(http.StatusOK, UserLikeResponse{
		Success:    true,
		Message:    fmt.Sprintf("You liked %s!", req.LikedUsername),
		LikesCount: count,
	})
}

func (h *PollingHandler) UnlikeUser(c *gin.Context) {
	var req UserLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	count, events, err := h.polling.UnlikeUser(c.Request.Context(), req.LikerUsername, req.LikedUsername, req.PollID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(events)

	c.JSON(http.StatusOK, UserLikeResponse{
		Success:    true,
		Message:    fmt.Sprintf("You unliked %s!", req.LikedUsername),
		LikesCount: count,
	})
}

func (h *PollingHandler) GetUserProfile(c *gin.Context) {
	username := c.Param("username")

	profile, err := h.polling.GetUserProfile(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserProfileResponse{
		Username:      username,
		LikesReceived: profile.LikesReceived,
		PollsCreated:  profile.PollsCreated,
		TotalVotes:    profile.TotalVotes,
	})
}

func (h *PollingHandler) GetUserLikes(c *gin.Context) {
	username := c.Param("username")

	count, err := h.polling.GetUserLikes(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "likes_count": count})
}

func (h *PollingHandler) GetLikesGiven(c *gin.Context) {
	username := c.Param("username")

	likedUsers, err := h.polling.GetLikesGiven(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "liked_users": likedUsers})
}
