package handler

import (
	"github.com/d60-Lab/feedgraph/internal/service"
)

// Handler 聚合全部 REST 处理器
type Handler struct {
	users   service.UserService
	posts   service.PostService
	likes   service.LikeService
	friends service.FriendService
	follows service.FollowService
	feed    *service.FeedAssembler
}

func New(
	users service.UserService,
	posts service.PostService,
	likes service.LikeService,
	friends service.FriendService,
	follows service.FollowService,
	feed *service.FeedAssembler,
) *Handler {
	return &Handler{
		users:   users,
		posts:   posts,
		likes:   likes,
		friends: friends,
		follows: follows,
		feed:    feed,
	}
}
