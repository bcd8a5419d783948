package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/pkg/response"
)

type addUserRequest struct {
	Username string                 `json:"username" binding:"required"`
	AltID    *string                `json:"altid"`
	Userdata map[string]interface{} `json:"userdata"`
}

type updateUserRequest struct {
	Username string                 `json:"username"`
	AltID    *string                `json:"altid"`
	Userdata map[string]interface{} `json:"userdata"`
}

// AddUser 注册用户
// @Summary 注册用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body addUserRequest true "用户信息"
// @Success 200 {object} response.Response
// @Router /api/v1/users [post]
func (h *Handler) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.Add(c.Request.Context(), req.Username, req.AltID, req.Userdata)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// GetUser 按 id / username / altid 查用户
// @Summary 查询用户
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if username := c.Query("username"); username != "" && id == "" {
		u, err := h.users.GetByUsername(ctx, username)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, u)
		return
	}
	u, err := h.users.Get(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// GetUserByAltID 按外部系统 id 查用户
func (h *Handler) GetUserByAltID(c *gin.Context) {
	u, err := h.users.GetByAltID(c.Request.Context(), c.Param("altid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateUser 更新用户资料
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), req.Username, req.AltID, req.Userdata)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// RemoveUser 墓碑化用户
func (h *Handler) RemoveUser(c *gin.Context) {
	if err := h.users.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
