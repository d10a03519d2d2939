package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/realtimepolls/poll-service/internal/handlers"
)

func RegisterPollRoutes(rg *gin.RouterGroup, handler *handlers.PollingHandler) {
	{
		rg.POST("/polls", handler.CreatePoll)
		rg.GET("/polls", handler.GetPolls)
		rg.GET("/polls/:id", handler.GetPollByID)
		rg.DELETE("/polls/:id", handler.DeletePoll)
		rg.GET("/polls/:id/voters", handler.GetPollVoters)

		rg.POST("/polls/:id/vote", handler.CastVote)
		rg.POST("/polls/:id/reset-votes", handler.ResetVotes)
	}
}

func RegisterUserRoutes(rg *gin.RouterGroup, handler *handlers.PollingHandler) {
	{
		rg.POST("/users/like", handler.LikeUser)
		rg.DELETE("/users/like", handler.UnlikeUser)

		rg.GET("/users/:username/profile", handler.GetUserProfile)
		rg.GET("/users/:username/likes", handler.GetUserLikes)
		rg.GET("/users/:username/likes-given", handler.GetLikesGiven)
	}
}
