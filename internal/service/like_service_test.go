package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/internal/model"
)

func TestLikeAddFansOut(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")
	_, err := e.follows.Create(ctx, alice.ID, bob.ID, model.VisibilityPublic)
	require.NoError(t, err)

	l, err := e.likeSvc.Add(ctx, alice.ID, "http://example.com/cats", model.VisibilityPublic)
	require.NoError(t, err)

	items, _, err := e.feed.GetFeed(ctx, bob.ID, bob.ID, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{l.ID}, feedItemIDs(items))
	require.True(t, items[0].IsLike)
	require.Equal(t, "alice", items[0].Actor.Username)
}

func TestLikeDefaultsToPublic(t *testing.T) {
	e := newTestEnv(t)
	alice := e.addUser(t, "alice")
	l, err := e.likeSvc.Add(context.Background(), alice.ID, "http://example.com", "")
	require.NoError(t, err)
	require.Equal(t, model.VisibilityPublic, l.Visibility)
}

func TestLikeDuplicate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	_, err := e.likeSvc.Add(ctx, alice.ID, "http://example.com", model.VisibilityPublic)
	require.NoError(t, err)
	_, err = e.likeSvc.Add(ctx, alice.ID, "http://example.com", model.VisibilityPublic)
	require.ErrorIs(t, err, ErrConflict)
}

func TestLikeRejectsEmptyItem(t *testing.T) {
	e := newTestEnv(t)
	alice := e.addUser(t, "alice")
	_, err := e.likeSvc.Add(context.Background(), alice.ID, "", model.VisibilityPublic)
	require.ErrorIs(t, err, ErrValidation)
}

func TestLikeGetByUserItemVisibility(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")

	_, err := e.likeSvc.Add(ctx, alice.ID, "http://example.com", model.VisibilityPrivate)
	require.NoError(t, err)

	got, err := e.likeSvc.GetByUserItem(ctx, alice.ID, alice.ID, "http://example.com")
	require.NoError(t, err)
	require.Equal(t, "http://example.com", got.Item)

	_, err = e.likeSvc.GetByUserItem(ctx, bob.ID, alice.ID, "http://example.com")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestLikeRemovePropagates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")
	_, err := e.follows.Create(ctx, alice.ID, bob.ID, model.VisibilityPublic)
	require.NoError(t, err)

	l, err := e.likeSvc.Add(ctx, alice.ID, "http://example.com", model.VisibilityPublic)
	require.NoError(t, err)
	require.NoError(t, e.likeSvc.Remove(ctx, alice.ID, "http://example.com"))

	_, err = e.likeSvc.Get(ctx, alice.ID, l.ID)
	require.ErrorIs(t, err, ErrNotFound)

	for _, uid := range []string{alice.ID, bob.ID} {
		items, _, err := e.feed.GetFeed(ctx, uid, uid, 0, 10)
		require.NoError(t, err)
		require.Empty(t, items)
	}

	require.ErrorIs(t, e.likeSvc.Remove(ctx, alice.ID, "http://example.com"), ErrNotFound)
}
