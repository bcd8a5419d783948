package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/internal/api/handler"
	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/internal/service"
)

const testSecret = "test-secret"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Friend{}, &model.Follow{}, &model.Fan{},
		&model.Post{}, &model.Like{}, &model.TimelineEntry{}, &model.UserTimelineEntry{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	entityCache := cache.New(client, time.Minute)

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)

	graph := service.NewGraph(friendRepo, followRepo)
	engine := service.NewFanoutEngine(timelineRepo, followRepo, userRepo, graph, 4, 100)
	feed := service.NewFeedAssembler(timelineRepo, postRepo, likeRepo, friendRepo,
		followRepo, userRepo, graph, entityCache)

	h := handler.New(
		service.NewUserService(userRepo, postRepo, likeRepo, engine, entityCache),
		service.NewPostService(postRepo, userRepo, graph, engine, entityCache),
		service.NewLikeService(likeRepo, userRepo, graph, engine),
		service.NewFriendService(friendRepo, userRepo, engine),
		service.NewFollowService(followRepo, userRepo, graph, engine),
		feed,
	)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Auth.JWTSecret = testSecret
	return NewRouter(cfg, h)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": userID}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, auth string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func createUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/users",
		gin.H{"username": username}, "")
	require.Equal(t, http.StatusOK, w.Code)
	return body["data"].(map[string]interface{})["user"].(string)
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	r := setupRouter(t)

	id := createUser(t, r, "alice")

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", body["data"].(map[string]interface{})["username"])

	// 重复用户名
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"username": "alice"}, "")
	require.Equal(t, http.StatusConflict, w.Code)

	// 缺字段
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/users/no-such-id", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostVisibilityOverHTTP(t *testing.T) {
	r := setupRouter(t)
	alice := createUser(t, r, "alice")
	bob := createUser(t, r, "bob")

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/posts",
		gin.H{"user": alice, "content": "friends only", "visibility": "private"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	postID := body["data"].(map[string]interface{})["post"].(string)

	// 非好友：403
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/posts/"+postID, nil, bearer(t, bob))
	require.Equal(t, http.StatusForbidden, w.Code)

	// 结为好友后可见
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/friends",
		gin.H{"user": alice, "user_friend": bob}, bearer(t, alice))
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/posts/"+postID, nil, bearer(t, bob))
	require.Equal(t, http.StatusOK, w.Code)

	// 未知可见性标签被 binding 校验挡掉
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/posts",
		gin.H{"user": alice, "content": "x", "visibility": "secret"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedOverHTTP(t *testing.T) {
	r := setupRouter(t)
	alice := createUser(t, r, "alice")
	bob := createUser(t, r, "bob")

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/follows",
		gin.H{"user": alice, "user_follower": bob}, bearer(t, bob))
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/posts",
		gin.H{"user": alice, "content": "hello world"}, bearer(t, alice))
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/feed/"+bob, nil, bearer(t, bob))
	require.Equal(t, http.StatusOK, w.Code)
	feed := body["data"].(map[string]interface{})["feed"].([]interface{})
	require.Len(t, feed, 2) // 关注事件 + 帖子
	require.Nil(t, body["data"].(map[string]interface{})["next_cursor"])

	// 无效 token：401
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/"+bob, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusUnauthorized, w2.Code)
}
