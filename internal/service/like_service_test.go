package service

import (
	"context"
	"testing"

	"campusbridge/internal/models"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_ToggleTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	author := env.user(t, models.User{})
	post := env.post(t, author.ID)

	first, err := env.likes.ToggleLike(ctx, models.SubjectPost, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: true, Count: 1}, first)

	second, err := env.likes.ToggleLike(ctx, models.SubjectPost, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: false, Count: 0}, second)
}

func TestLikeService_Errors(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	author := env.user(t, models.User{})

	_, err := env.likes.ToggleLike(ctx, "poll", 1, author.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = env.likes.ToggleLike(ctx, models.SubjectTestimonial, 31, author.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = env.likes.ToggleLike(ctx, models.SubjectPost, 1, 0)
	assert.True(t, models.IsCode(err, models.CodePermissionDenied))
}

func TestLikeService_MutedActorLeavesLedgerUntouched(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	author := env.user(t, models.User{})
	fan := env.user(t, models.User{})
	post := env.post(t, author.ID)
	_, err := env.likes.ToggleLike(ctx, models.SubjectPost, post.ID, fan.ID)
	require.NoError(t, err)

	env.mute(t, fan.ID)
	env.mute(t, author.ID)

	for _, actor := range []uint{fan.ID, author.ID} {
		_, err := env.likes.ToggleLike(ctx, models.SubjectPost, post.ID, actor)
		assert.True(t, models.IsCode(err, models.CodePermissionDenied))
	}

	assert.EqualValues(t, 1, testutil.CountRows(t, env.db, &models.LikeEntry{}, "subject_id = ?", post.ID))
	assert.EqualValues(t, 1, testutil.CountRows(t, env.db, &models.LikeEntry{}, "subject_id = ? AND actor_id = ?", post.ID, fan.ID))
	assert.Equal(t, 1, testutil.ReloadPost(t, env.db, post.ID).LikeCount)
}
