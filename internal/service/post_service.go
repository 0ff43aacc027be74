package service

import (
	"context"
	"fmt"
	"strings"

	"campusbridge/internal/models"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen    = 300
	maxContentLen  = 50000 // 50K characters
	maxCategoryLen = 64
)

type PostService struct {
	gate    *WriteGate
	posts   repository.PostRepository
	likes   repository.LikeRepository
	schools repository.CatalogRepository[models.School]
	majors  repository.CatalogRepository[models.Major]
}

type CreatePostInput struct {
	ActorID     uint
	Title       string
	Content     string
	IsAnonymous bool
	Scope       models.PostScope
	SchoolID    *uint
	MajorID     *uint
	Category    string
}

type ListPostsInput struct {
	Scope    models.PostScope
	SchoolID uint
	MajorID  uint
	Category string
	AuthorID uint
	Limit    int
	Offset   int
	ViewerID uint
}

type DeletePostInput struct {
	PostID          uint
	ActorID         uint
	IsAdminOverride bool
}

func NewPostService(
	gate *WriteGate,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	schools repository.CatalogRepository[models.School],
	majors repository.CatalogRepository[models.Major],
) *PostService {
	return &PostService{gate: gate, posts: posts, likes: likes, schools: schools, majors: majors}
}

func maskPost(p *models.Post) {
	if p.IsAnonymous {
		p.AuthorID = nil
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost",
		attribute.String("post.scope", string(in.Scope)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.gate.require(ctx, in.ActorID, "create_post"); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	category := strings.TrimSpace(in.Category)
	scope := in.Scope
	if scope == "" {
		scope = models.ScopePublic
	}

	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if len(category) > maxCategoryLen {
		return nil, models.NewValidationError(fmt.Sprintf("Category too long (max %d characters)", maxCategoryLen))
	}
	if err := s.validateScope(ctx, scope, in.SchoolID, in.MajorID, category); err != nil {
		return nil, err
	}

	post = &models.Post{
		Title:       title,
		Content:     content,
		IsAnonymous: in.IsAnonymous,
		Scope:       scope,
		SchoolID:    in.SchoolID,
		MajorID:     in.MajorID,
		Category:    category,
	}
	if !in.IsAnonymous {
		actorID := in.ActorID
		post.AuthorID = &actorID
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storageErr(err)
	}
	return post, nil
}

// validateScope enforces that exactly the reference matching the scope is set
// and that it names an approved catalog entry.
func (s *PostService) validateScope(ctx context.Context, scope models.PostScope, schoolID, majorID *uint, category string) error {
	switch scope {
	case models.ScopePublic:
		if schoolID != nil || majorID != nil {
			return models.NewValidationError("public posts cannot reference a school or major")
		}
		if category == "" {
			return models.NewValidationError("Category is required for public posts")
		}
	case models.ScopeUniversity:
		if schoolID == nil || majorID != nil {
			return models.NewValidationError("university posts must reference exactly one school")
		}
		school, err := s.schools.GetByID(ctx, *schoolID)
		if err != nil {
			return storageErr(err)
		}
		if school.ReviewStatus != models.ReviewApproved {
			return models.NewValidationError("school is not an approved catalog entry")
		}
	case models.ScopeMajor:
		if majorID == nil || schoolID != nil {
			return models.NewValidationError("major posts must reference exactly one major")
		}
		major, err := s.majors.GetByID(ctx, *majorID)
		if err != nil {
			return storageErr(err)
		}
		if major.ReviewStatus != models.ReviewApproved {
			return models.NewValidationError("major is not an approved catalog entry")
		}
	default:
		return models.NewValidationError("Invalid scope")
	}
	return nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.annotateLiked(ctx, []*models.Post{post}, viewerID); err != nil {
		return nil, err
	}
	maskPost(post)
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.Scope != "" && !in.Scope.Valid() {
		return nil, models.NewValidationError("Invalid scope")
	}
	posts, err := s.posts.List(ctx, repository.PostFilter{
		Scope:    in.Scope,
		SchoolID: in.SchoolID,
		MajorID:  in.MajorID,
		Category: in.Category,
		AuthorID: in.AuthorID,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.annotateLiked(ctx, posts, in.ViewerID); err != nil {
		return nil, err
	}
	for _, p := range posts {
		maskPost(p)
	}
	return posts, nil
}

func (s *PostService) annotateLiked(ctx context.Context, posts []*models.Post, viewerID uint) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.likes.LikedSubjectIDs(ctx, models.SubjectPost, viewerID, ids)
	if err != nil {
		return storageErr(err)
	}
	for _, p := range posts {
		p.Liked = liked[p.ID]
	}
	return nil
}

// DeletePost removes the post with its reply tree and every like entry. It is
// not gated.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (ok bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "DeletePost",
		attribute.Int64("post.id", int64(in.PostID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	removed, err := s.posts.Delete(ctx, in.PostID, func(p *models.Post) error {
		return authorizeOwner(p.AuthorID, in.ActorID, in.IsAdminOverride, "post")
	})
	if err != nil {
		return false, storageErr(err)
	}
	observability.ReplyNodesRemoved.Add(float64(removed))
	return true, nil
}
