package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/internal/api/handler"
	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/internal/model"
)

// NewRouter 组装 gin 引擎与全部路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("feedgraph"))
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RateLimit(rate.Limit(100), 200))
	r.Use(middleware.Identity(cfg.Auth.JWTSecret))

	registerVisibilityValidator()

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users", h.AddUser)
		v1.GET("/users/:id", h.GetUser)
		v1.GET("/users/altid/:altid", h.GetUserByAltID)
		v1.PUT("/users/:id", h.UpdateUser)
		v1.DELETE("/users/:id", h.RemoveUser)
		v1.GET("/users/:id/followers", h.ListFollowers)
		v1.GET("/users/:id/following", h.ListFollowing)
		v1.GET("/users/:id/friends", h.ListFriends)

		v1.POST("/posts", h.AddPost)
		v1.GET("/posts/:id", h.GetPost)
		v1.GET("/posts/altid/:altid", h.GetPostByAltID)
		v1.PUT("/posts/:id", h.UpdatePost)
		v1.DELETE("/posts/:id", h.RemovePost)

		v1.POST("/likes", h.AddLike)
		v1.GET("/likes/:id", h.GetLike)
		v1.GET("/likes/user/:user", h.GetLikeByUserItem)
		v1.DELETE("/likes/user/:user", h.RemoveLike)

		v1.POST("/friends", h.AddFriend)
		v1.GET("/friends/:id", h.GetFriend)
		v1.DELETE("/friends/:user/:other", h.RemoveFriend)

		v1.POST("/follows", h.Follow)
		v1.GET("/follows/:id", h.GetFollow)
		v1.DELETE("/follows/:user/:follower", h.Unfollow)

		v1.GET("/feed/:id", h.GetFeed)
		v1.GET("/feed/:id/direct", h.GetUserFeed)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	return r
}

// registerVisibilityValidator 给 binding 引擎挂 visibility 标签校验
func registerVisibilityValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
			_, err := model.ParseVisibility(fl.Field().String())
			return err == nil
		})
	}
}
