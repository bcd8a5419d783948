package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

// GetFeed 聚合 feed（自己的 + 扇入的），按请求者身份做读时过滤
// @Summary 聚合时间线
// @Tags Feed
// @Param id path string true "feed 所有者"
// @Param cursor query int false "上一页返回的游标"
// @Param limit query int false "页大小" default(50)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed/{id} [get]
func (h *Handler) GetFeed(c *gin.Context) {
	h.serveFeed(c, false)
}

// GetUserFeed 仅本人直发条目（profile 页）
// @Summary 用户直发时间线
// @Tags Feed
// @Param id path string true "feed 所有者"
// @Router /api/v1/feed/{id}/direct [get]
func (h *Handler) GetUserFeed(c *gin.Context) {
	h.serveFeed(c, true)
}

func (h *Handler) serveFeed(c *gin.Context, direct bool) {
	ownerID := c.Param("id")
	viewerID := middleware.Viewer(c)
	cursor, _ := strconv.ParseInt(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))

	var (
		items []*service.FeedItem
		next  *int64
		err   error
	)
	if direct {
		items, next, err = h.feed.GetUserFeed(c.Request.Context(), viewerID, ownerID, cursor, limit)
	} else {
		items, next, err = h.feed.GetFeed(c.Request.Context(), viewerID, ownerID, cursor, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"feed": items, "next_cursor": next})
}
