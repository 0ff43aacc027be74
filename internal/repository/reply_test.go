package repository

import (
	"context"
	"testing"

	"campusbridge/internal/models"
	"campusbridge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addReply(t *testing.T, repo ReplyRepository, postID uint, parent *uint, content string) *models.Reply {
	t.Helper()
	r := &models.Reply{PostID: postID, ParentReplyID: parent, Content: content}
	fellBack, err := repo.Create(context.Background(), r, true)
	require.NoError(t, err)
	require.False(t, fellBack)
	return r
}

func TestReplyRepository_SubtreeDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	replies := NewReplyRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	fan := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)

	a := addReply(t, replies, post.ID, nil, "a")
	b := addReply(t, replies, post.ID, &a.ID, "b")
	c := addReply(t, replies, post.ID, nil, "c")
	assert.EqualValues(t, 3, testutil.ReloadPost(t, db, post.ID).ReplyCount)

	for _, id := range []uint{a.ID, b.ID, c.ID} {
		_, err := likes.Toggle(ctx, models.SubjectReply, id, fan.ID)
		require.NoError(t, err)
	}

	removed, err := replies.DeleteSubtree(ctx, post.ID, a.ID, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, removed)

	assert.EqualValues(t, 1, testutil.ReloadPost(t, db, post.ID).ReplyCount)
	left, err := replies.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, c.ID, left[0].ID)

	assert.Zero(t, testutil.CountRows(t, db, &models.LikeEntry{}, "subject_kind = ? AND subject_id IN ?", models.SubjectReply, []uint{a.ID, b.ID}))
	assert.EqualValues(t, 1, testutil.CountRows(t, db, &models.LikeEntry{}, ""))

	_, err = replies.GetByID(ctx, post.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestReplyRepository_DeepChain(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)

	root := addReply(t, replies, post.ID, nil, "root")
	parent := root
	for i := 0; i < 25; i++ {
		parent = addReply(t, replies, post.ID, &parent.ID, "nested")
		addReply(t, replies, post.ID, &parent.ID, "sibling leaf")
	}
	other := addReply(t, replies, post.ID, nil, "unrelated")
	assert.EqualValues(t, 52, testutil.ReloadPost(t, db, post.ID).ReplyCount)

	removed, err := replies.DeleteSubtree(ctx, post.ID, root.ID, nil)
	require.NoError(t, err)
	assert.Len(t, removed, 51)
	assert.EqualValues(t, 1, testutil.ReloadPost(t, db, post.ID).ReplyCount)

	_, err = replies.GetByID(ctx, post.ID, other.ID)
	assert.NoError(t, err)
}

func TestReplyRepository_ParentResolution(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	elsewhere := testutil.CreatePost(t, db, author.ID)
	foreign := addReply(t, replies, elsewhere.ID, nil, "other thread")

	t.Run("falls back to top level", func(t *testing.T) {
		r := &models.Reply{PostID: post.ID, ParentReplyID: &foreign.ID, Content: "cross-post parent"}
		fellBack, err := replies.Create(ctx, r, false)
		require.NoError(t, err)
		assert.True(t, fellBack)
		assert.Nil(t, r.ParentReplyID)
		assert.EqualValues(t, 1, testutil.ReloadPost(t, db, post.ID).ReplyCount)
	})

	t.Run("strict parent rejects", func(t *testing.T) {
		missing := uint(4242)
		r := &models.Reply{PostID: post.ID, ParentReplyID: &missing, Content: "dangling"}
		_, err := replies.Create(ctx, r, true)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		assert.EqualValues(t, 1, testutil.ReloadPost(t, db, post.ID).ReplyCount)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := replies.Create(ctx, &models.Reply{PostID: 777, Content: "orphan"}, false)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestReplyRepository_DeleteGuards(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	elsewhere := testutil.CreatePost(t, db, author.ID)
	r := addReply(t, replies, post.ID, nil, "keep me")

	_, err := replies.DeleteSubtree(ctx, post.ID, r.ID, func(*models.Reply) error {
		return models.NewPermissionDeniedError("only the author can delete this reply")
	})
	assert.True(t, models.IsCode(err, models.CodePermissionDenied))
	assert.EqualValues(t, 1, testutil.ReloadPost(t, db, post.ID).ReplyCount)

	_, err = replies.DeleteSubtree(ctx, elsewhere.ID, r.ID, nil)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "reply must belong to the addressed post")

	_, err = replies.DeleteSubtree(ctx, post.ID, 999, nil)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestReplyRepository_ReplyCountNeverNegative(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	replies := NewReplyRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, models.User{})
	post := testutil.CreatePost(t, db, author.ID)
	r := addReply(t, replies, post.ID, nil, "x")
	addReply(t, replies, post.ID, &r.ID, "y")

	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("reply_count", gorm.Expr("0")).Error)

	_, err := replies.DeleteSubtree(ctx, post.ID, r.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, testutil.ReloadPost(t, db, post.ID).ReplyCount)
}

func ptr(v uint) *uint { return &v }

func TestCollectSubtree(t *testing.T) {
	links := []replyLink{
		{ID: 1},
		{ID: 2, ParentReplyID: ptr(1)},
		{ID: 3, ParentReplyID: ptr(2)},
		{ID: 4},
		{ID: 5, ParentReplyID: ptr(4)},
	}
	assert.ElementsMatch(t, []uint{1, 2, 3}, collectSubtree(links, 1))
	assert.ElementsMatch(t, []uint{3}, collectSubtree(links, 3))

	t.Run("cycle terminates", func(t *testing.T) {
		cyclic := []replyLink{
			{ID: 7, ParentReplyID: ptr(8)},
			{ID: 8, ParentReplyID: ptr(7)},
			{ID: 9, ParentReplyID: ptr(8)},
		}
		assert.ElementsMatch(t, []uint{7, 8, 9}, collectSubtree(cyclic, 7))
	})
}
