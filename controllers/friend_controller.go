package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zyncchat-api/middleware"
	"zyncchat-api/services"
	"zyncchat-api/utils"
)

type FriendController struct {
	friends *services.FriendService
}

func NewFriendController(friends *services.FriendService) *FriendController {
	return &FriendController{friends: friends}
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	req, err := fc.friends.SendRequest(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendCreated(c, "Friend request sent successfully", gin.H{"request": req})
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	req, err := fc.friends.AcceptRequest(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "Friend request accepted", gin.H{"request": req})
}

func (fc *FriendController) RejectFriendRequest(c *gin.Context) {
	req, err := fc.friends.RejectRequest(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "Friend request rejected", gin.H{"request": req})
}

func (fc *FriendController) GetFriendRequests(c *gin.Context) {
	lists, err := fc.friends.Requests(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{
		"incomingReqs": lists.Incoming,
		"acceptedReqs": lists.Accepted,
	})
}

func (fc *FriendController) GetOutgoingRequests(c *gin.Context) {
	reqs, err := fc.friends.OutgoingRequests(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"outgoingRequests": reqs})
}

// GetFriends answers a bare array of friend summaries.
func (fc *FriendController) GetFriends(c *gin.Context) {
	friends, err := fc.friends.Friends(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, friends)
}
