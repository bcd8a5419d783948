package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVisibility(t *testing.T) {
	for _, s := range []string{"public", "private", "personal"} {
		v, err := ParseVisibility(s)
		require.NoError(t, err)
		require.Equal(t, Visibility(s), v)
	}
	for _, s := range []string{"", "Public", "friends", "secret"} {
		_, err := ParseVisibility(s)
		require.Error(t, err, "tag %q must be rejected", s)
	}
}

func TestCanSee(t *testing.T) {
	cases := []struct {
		vis           Visibility
		owner, friend bool
		want          bool
	}{
		{VisibilityPublic, false, false, true},
		{VisibilityPublic, false, true, true},
		{VisibilityPublic, true, false, true},

		{VisibilityPrivate, false, false, false},
		{VisibilityPrivate, false, true, true},
		{VisibilityPrivate, true, false, true},

		{VisibilityPersonal, false, false, false},
		{VisibilityPersonal, false, true, false},
		{VisibilityPersonal, true, false, true},
	}
	for _, c := range cases {
		got, err := c.vis.CanSee(c.owner, c.friend)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "%s owner=%v friend=%v", c.vis, c.owner, c.friend)
	}

	_, err := Visibility("wat").CanSee(true, true)
	require.Error(t, err)
}

func TestParseItemType(t *testing.T) {
	for _, s := range []string{"post", "like", "friend", "follow"} {
		it, err := ParseItemType(s)
		require.NoError(t, err)
		require.Equal(t, ItemType(s), it)
	}
	_, err := ParseItemType("comment")
	require.Error(t, err)
}
