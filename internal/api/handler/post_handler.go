package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

type addPostRequest struct {
	User       string     `json:"user" binding:"required"`
	Content    string     `json:"content" binding:"required"`
	Visibility string     `json:"visibility" binding:"omitempty,visibility"`
	AltID      *string    `json:"altid"`
	Posted     *time.Time `json:"posted"`
}

type updatePostRequest struct {
	Content    string `json:"content" binding:"required"`
	Visibility string `json:"visibility" binding:"required,visibility"`
}

// AddPost 发帖（内容先消毒，@mention 触发额外扇出）
// @Summary 发帖
// @Tags 内容
// @Accept json
// @Produce json
// @Param request body addPostRequest true "帖子"
// @Success 200 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) AddPost(c *gin.Context) {
	var req addPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	vis := model.Visibility(req.Visibility)
	if vis == "" {
		vis = model.VisibilityPublic
	}
	posted := time.Now()
	if req.Posted != nil {
		posted = *req.Posted
	}
	p, err := h.posts.Add(c.Request.Context(), req.User, req.Content, vis, req.AltID, posted)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// GetPost 单帖直取：不可见时返回 403，与 feed 的静默过滤不同
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.posts.Get(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// GetPostByAltID 按外部 id 取帖
func (h *Handler) GetPostByAltID(c *gin.Context) {
	p, err := h.posts.GetByAltID(c.Request.Context(), middleware.Viewer(c), c.Param("altid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdatePost 改内容/可见性（时间线快照不动，读取按当前标签过滤）
func (h *Handler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.posts.Update(c.Request.Context(), c.Param("id"), req.Content, model.Visibility(req.Visibility))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// RemovePost 软删帖并清理全网时间线引用
func (h *Handler) RemovePost(c *gin.Context) {
	if err := h.posts.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
