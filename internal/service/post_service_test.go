package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/internal/model"
)

func TestPostAddSanitizesContent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	p, err := e.postSvc.Add(ctx, alice.ID, `hello <script>alert(1)</script>world`, model.VisibilityPublic, nil, time.Now())
	require.NoError(t, err)
	require.NotContains(t, p.Content, "<script>")
	require.Contains(t, p.Content, "hello")
}

func TestPostAddRejectsEmptyContent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	for _, content := range []string{"", "   ", "<script>alert(1)</script>"} {
		_, err := e.postSvc.Add(ctx, alice.ID, content, model.VisibilityPublic, nil, time.Now())
		require.ErrorIs(t, err, ErrValidation, "content %q", content)
	}
}

func TestPostAddUnknownVisibility(t *testing.T) {
	e := newTestEnv(t)
	alice := e.addUser(t, "alice")
	_, err := e.postSvc.Add(context.Background(), alice.ID, "hi", model.Visibility("secret"), nil, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestPostAddUnknownUser(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.postSvc.Add(context.Background(), "no-such-user", "hi", model.VisibilityPublic, nil, time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostGetVisibility(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")
	carol := e.addUser(t, "carol")
	_, err := e.friendSvc.Add(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	personal := e.addPost(t, alice.ID, "personal note", model.VisibilityPersonal)
	private := e.addPost(t, alice.ID, "friends only", model.VisibilityPrivate)

	// personal：只有本人
	_, err = e.postSvc.Get(ctx, alice.ID, personal.ID)
	require.NoError(t, err)
	_, err = e.postSvc.Get(ctx, carol.ID, personal.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// private：本人 + 好友
	_, err = e.postSvc.Get(ctx, carol.ID, private.ID)
	require.NoError(t, err)
	_, err = e.postSvc.Get(ctx, bob.ID, private.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.postSvc.Get(ctx, "", private.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPostAltID(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	alt := "ext-123"
	p, err := e.postSvc.Add(ctx, alice.ID, "hello", model.VisibilityPublic, &alt, time.Now())
	require.NoError(t, err)

	got, err := e.postSvc.GetByAltID(ctx, "", alt)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = e.postSvc.Add(ctx, alice.ID, "again", model.VisibilityPublic, &alt, time.Now())
	require.ErrorIs(t, err, ErrConflict)

	_, err = e.postSvc.GetByAltID(ctx, "", "no-such-alt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")

	p := e.addPost(t, alice.ID, "original", model.VisibilityPublic)
	got, err := e.postSvc.Update(ctx, p.ID, "edited", model.VisibilityPrivate)
	require.NoError(t, err)
	require.Equal(t, "edited", got.Content)
	require.Equal(t, model.VisibilityPrivate, got.Visibility)

	_, err = e.postSvc.Update(ctx, "no-such-post", "x", model.VisibilityPublic)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostRemovePropagates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")
	_, err := e.follows.Create(ctx, alice.ID, bob.ID, model.VisibilityPublic)
	require.NoError(t, err)

	p := e.addPost(t, alice.ID, "soon gone", model.VisibilityPublic)
	require.NoError(t, e.postSvc.Remove(ctx, p.ID))

	_, err = e.postSvc.Get(ctx, alice.ID, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	for _, uid := range []string{alice.ID, bob.ID} {
		items, _, err := e.feed.GetFeed(ctx, uid, uid, 0, 10)
		require.NoError(t, err)
		require.Empty(t, items)
	}

	require.ErrorIs(t, e.postSvc.Remove(ctx, p.ID), ErrNotFound)
}
