package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

type followRequest struct {
	User       string `json:"user" binding:"required"`
	Follower   string `json:"user_follower" binding:"required"`
	Visibility string `json:"visibility" binding:"omitempty,visibility"`
}

type friendRequest struct {
	User  string `json:"user" binding:"required"`
	Other string `json:"user_friend" binding:"required"`
}

// Follow 建立关注（同事务写冗余粉丝行，并扇出关注事件）
// @Summary 关注用户
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body followRequest true "关注信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/follows [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.follows.Add(c.Request.Context(), req.User, req.Follower, model.Visibility(req.Visibility))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, f)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Param user path string true "被关注者"
// @Param follower path string true "关注者"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{user}/{follower} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.follows.Remove(c.Request.Context(), c.Param("user"), c.Param("follower")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetFollow 按 id 取关注边（受边上可见性标签约束）
func (h *Handler) GetFollow(c *gin.Context) {
	f, err := h.follows.Get(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, f)
}

// ListFollowers 查询某用户的粉丝（来自冗余表）
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	userID := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.follows.ListFollowers(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowing 查询某用户关注的人
func (h *Handler) ListFollowing(c *gin.Context) {
	userID := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.follows.ListFollowing(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// AddFriend 建立好友（双向两行 + 双方时间线各一条 friend item）
// @Summary 加好友
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body friendRequest true "好友信息"
// @Success 200 {object} response.Response
// @Router /api/v1/friends [post]
func (h *Handler) AddFriend(c *gin.Context) {
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.friends.Add(c.Request.Context(), req.User, req.Other)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, f)
}

// RemoveFriend 解除好友（两行一起删）
func (h *Handler) RemoveFriend(c *gin.Context) {
	if err := h.friends.Remove(c.Request.Context(), c.Param("user"), c.Param("other")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetFriend 好友边只对双方可见
func (h *Handler) GetFriend(c *gin.Context) {
	f, err := h.friends.Get(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, f)
}

// ListFriends 好友列表
func (h *Handler) ListFriends(c *gin.Context) {
	userID := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.friends.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
