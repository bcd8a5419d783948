package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

type addLikeRequest struct {
	User       string `json:"user" binding:"required"`
	Item       string `json:"item" binding:"required"`
	Visibility string `json:"visibility" binding:"omitempty,visibility"`
}

// AddLike 点赞
func (h *Handler) AddLike(c *gin.Context) {
	var req addLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	l, err := h.likes.Add(c.Request.Context(), req.User, req.Item, model.Visibility(req.Visibility))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// GetLike 按 id 取赞
func (h *Handler) GetLike(c *gin.Context) {
	l, err := h.likes.Get(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// GetLikeByUserItem 查某用户是否赞过某对象
func (h *Handler) GetLikeByUserItem(c *gin.Context) {
	l, err := h.likes.GetByUserItem(c.Request.Context(), middleware.Viewer(c), c.Param("user"), c.Query("item"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, l)
}

// RemoveLike 取消赞
func (h *Handler) RemoveLike(c *gin.Context) {
	if err := h.likes.Remove(c.Request.Context(), c.Param("user"), c.Query("item")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
