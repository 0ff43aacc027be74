package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"campusbridge/internal/cache"
	"campusbridge/internal/featureflags"
	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxReplyLen = 10000

type ReplyService struct {
	gate    *WriteGate
	posts   repository.PostRepository
	replies repository.ReplyRepository
	likes   repository.LikeRepository
	flags   *featureflags.Manager
}

type AddReplyInput struct {
	PostID        uint
	ParentReplyID *uint
	Content       string
	ActorID       uint
	IsAnonymous   bool
}

type DeleteReplyInput struct {
	PostID          uint
	ReplyID         uint
	ActorID         uint
	IsAdminOverride bool
}

func NewReplyService(
	gate *WriteGate,
	posts repository.PostRepository,
	replies repository.ReplyRepository,
	likes repository.LikeRepository,
	flags *featureflags.Manager,
) *ReplyService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &ReplyService{gate: gate, posts: posts, replies: replies, likes: likes, flags: flags}
}

func (s *ReplyService) AddReply(ctx context.Context, in AddReplyInput) (reply *models.Reply, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReplyService", "AddReply",
		attribute.Int64("post.id", int64(in.PostID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.gate.require(ctx, in.ActorID, "add_reply"); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxReplyLen {
		return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxReplyLen))
	}

	reply = &models.Reply{
		PostID:        in.PostID,
		ParentReplyID: in.ParentReplyID,
		Content:       content,
		IsAnonymous:   in.IsAnonymous,
	}
	if !in.IsAnonymous {
		actorID := in.ActorID
		reply.AuthorID = &actorID
	}

	strict := s.flags.Enabled(featureflags.StrictReplyParent, in.ActorID)
	fellBack, err := s.replies.Create(ctx, reply, strict)
	if err != nil {
		return nil, storageErr(err)
	}
	if fellBack {
		slog.WarnContext(ctx, "reply parent did not resolve under post; inserted at top level",
			slog.Uint64("post_id", uint64(in.PostID)),
			slog.Uint64("requested_parent_id", uint64(*in.ParentReplyID)),
			slog.Uint64("reply_id", uint64(reply.ID)),
		)
	}
	observability.RepliesCreated.WithLabelValues(strconv.FormatBool(fellBack)).Inc()
	return reply, nil
}

// DeleteReply removes the reply and its whole subtree. It is not gated so
// moderators can clean up after muted accounts.
func (s *ReplyService) DeleteReply(ctx context.Context, in DeleteReplyInput) (ok bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ReplyService", "DeleteReply",
		attribute.Int64("post.id", int64(in.PostID)),
		attribute.Int64("reply.id", int64(in.ReplyID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	removed, err := s.replies.DeleteSubtree(ctx, in.PostID, in.ReplyID, func(r *models.Reply) error {
		return authorizeOwner(r.AuthorID, in.ActorID, in.IsAdminOverride, "reply")
	})
	if err != nil {
		return false, storageErr(err)
	}
	observability.ReplyNodesRemoved.Add(float64(len(removed)))
	return true, nil
}

// GetReply returns a reply of postID. A reply that exists under a different
// post is reported as not found.
func (s *ReplyService) GetReply(ctx context.Context, postID, replyID uint) (*models.Reply, error) {
	reply, err := s.replies.GetByID(ctx, postID, replyID)
	if err != nil {
		return nil, storageErr(err)
	}
	return reply, nil
}

// GetThread returns the post with its nested reply forest, annotated for the
// viewer. The unannotated reply arena may be served from cache.
func (s *ReplyService) GetThread(ctx context.Context, postID uint, viewer Viewer) (*models.Thread, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storageErr(err)
	}

	var replies []*models.Reply
	fetch := func() error {
		var err error
		replies, err = s.replies.ListByPost(ctx, postID)
		return err
	}
	if s.flags.Enabled(featureflags.ThreadCache, viewer.ID) {
		err = cache.Aside(ctx, cache.ThreadKey(postID), &replies, cache.ThreadTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, storageErr(err)
	}

	if viewer.ID != 0 {
		likedPost, err := s.likes.LikedSubjectIDs(ctx, models.SubjectPost, viewer.ID, []uint{post.ID})
		if err != nil {
			return nil, storageErr(err)
		}
		post.Liked = likedPost[post.ID]

		ids := make([]uint, len(replies))
		for i, r := range replies {
			ids[i] = r.ID
		}
		likedReplies, err := s.likes.LikedSubjectIDs(ctx, models.SubjectReply, viewer.ID, ids)
		if err != nil {
			return nil, storageErr(err)
		}
		for _, r := range replies {
			r.Liked = likedReplies[r.ID]
		}
	}

	maskPost(post)
	for _, r := range replies {
		if r.IsAnonymous {
			r.AuthorID = nil
		}
	}
	return &models.Thread{Post: post, Replies: BuildForest(replies)}, nil
}
