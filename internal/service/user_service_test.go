package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/internal/model"
)

func TestUserAdd(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	alt := "ext-42"
	u, err := e.userSvc.Add(ctx, "alice", &alt, map[string]interface{}{"bio": "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	got, err := e.userSvc.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = e.userSvc.GetByAltID(ctx, alt)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "hi", got.Userdata["bio"])
}

func TestUserAddValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.userSvc.Add(ctx, "   ", nil, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.userSvc.Add(ctx, "alice", nil, nil)
	require.NoError(t, err)
	_, err = e.userSvc.Add(ctx, "alice", nil, nil)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUserGetReadsThroughCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	_, err := e.userSvc.Get(ctx, alice.ID)
	require.NoError(t, err)

	// 底层行没了缓存还在：证明第二次读走的是缓存
	require.NoError(t, e.db.Exec("DELETE FROM users WHERE id = ?", alice.ID).Error)
	got, err := e.userSvc.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestUserUpdateInvalidatesCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	_, err := e.userSvc.Get(ctx, alice.ID) // 预热缓存
	require.NoError(t, err)

	_, err = e.userSvc.Update(ctx, alice.ID, "alicia", nil, nil)
	require.NoError(t, err)

	got, err := e.userSvc.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alicia", got.Username)
}

func TestUserRemoveCascades(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")
	_, err := e.follows.Create(ctx, alice.ID, bob.ID, model.VisibilityPublic)
	require.NoError(t, err)

	p := e.addPost(t, alice.ID, "hello", model.VisibilityPublic)
	_, err = e.likeSvc.Add(ctx, alice.ID, "http://example.com", model.VisibilityPublic)
	require.NoError(t, err)

	require.NoError(t, e.userSvc.Remove(ctx, alice.ID))

	_, err = e.userSvc.Get(ctx, alice.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.postSvc.Get(ctx, "", p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// 粉丝的 feed 不再引用任何已删用户的 item
	items, _, err := e.feed.GetFeed(ctx, bob.ID, bob.ID, 0, 10)
	require.NoError(t, err)
	require.Empty(t, items)

	_, _, err = e.feed.GetFeed(ctx, alice.ID, alice.ID, 0, 10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserRemoveMissing(t *testing.T) {
	e := newTestEnv(t)
	require.ErrorIs(t, e.userSvc.Remove(context.Background(), "no-such-user"), ErrNotFound)
}
