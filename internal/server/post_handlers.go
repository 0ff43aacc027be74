package server

import (
	"campusbridge/internal/models"
	"campusbridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	IsAnonymous bool             `json:"is_anonymous"`
	Scope       models.PostScope `json:"scope"`
	SchoolID    *uint            `json:"school_id"`
	MajorID     *uint            `json:"major_id"`
	Category    string           `json:"category"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Scope == "" {
		req.Scope = models.ScopePublic
	}

	post, err := s.posts.CreatePost(c.UserContext(), service.CreatePostInput{
		ActorID:     currentUserID(c),
		Title:       req.Title,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
		Scope:       req.Scope,
		SchoolID:    req.SchoolID,
		MajorID:     req.MajorID,
		Category:    req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts?scope=&school_id=&major_id=&category=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	schoolID, err := parseOptionalID(c, "school_id")
	if err != nil {
		return nil
	}
	majorID, err := parseOptionalID(c, "major_id")
	if err != nil {
		return nil
	}
	authorID, err := parseOptionalID(c, "author_id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.posts.ListPosts(c.UserContext(), service.ListPostsInput{
		Scope:    models.PostScope(c.Query("scope")),
		SchoolID: schoolID,
		MajorID:  majorID,
		Category: c.Query("category"),
		AuthorID: authorID,
		Limit:    page.Limit,
		Offset:   page.Offset,
		ViewerID: currentUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetThread handles GET /api/posts/:id/thread
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	thread, err := s.replies.GetThread(c.UserContext(), id, currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(thread)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	return s.deletePost(c, false)
}

// AdminDeletePost handles DELETE /api/admin/posts/:id
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	return s.deletePost(c, true)
}

func (s *Server) deletePost(c *fiber.Ctx, override bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.posts.DeletePost(c.UserContext(), service.DeletePostInput{
		PostID:          id,
		ActorID:         currentUserID(c),
		IsAdminOverride: override,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type createReplyRequest struct {
	ParentReplyID *uint  `json:"parent_reply_id"`
	Content       string `json:"content"`
	IsAnonymous   bool   `json:"is_anonymous"`
}

// CreateReply handles POST /api/posts/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createReplyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	reply, err := s.replies.AddReply(c.UserContext(), service.AddReplyInput{
		PostID:        postID,
		ParentReplyID: req.ParentReplyID,
		Content:       req.Content,
		ActorID:       currentUserID(c),
		IsAnonymous:   req.IsAnonymous,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// DeleteReply handles DELETE /api/posts/:id/replies/:replyId
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	return s.deleteReply(c, false)
}

// AdminDeleteReply handles DELETE /api/admin/posts/:id/replies/:replyId
func (s *Server) AdminDeleteReply(c *fiber.Ctx) error {
	return s.deleteReply(c, true)
}

func (s *Server) deleteReply(c *fiber.Ctx, override bool) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	replyID, err := parseID(c, "replyId")
	if err != nil {
		return nil
	}
	if _, err := s.replies.DeleteReply(c.UserContext(), service.DeleteReplyInput{
		PostID:          postID,
		ReplyID:         replyID,
		ActorID:         currentUserID(c),
		IsAdminOverride: override,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TogglePostLike handles POST /api/posts/:id/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.toggleLike(c, models.SubjectPost, postID)
}

// ToggleReplyLike handles POST /api/posts/:id/replies/:replyId/like
func (s *Server) ToggleReplyLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	replyID, err := parseID(c, "replyId")
	if err != nil {
		return nil
	}
	if _, err := s.replies.GetReply(c.UserContext(), postID, replyID); err != nil {
		return respondError(c, err)
	}
	return s.toggleLike(c, models.SubjectReply, replyID)
}

// ToggleTestimonialLike handles POST /api/testimonials/:id/like
func (s *Server) ToggleTestimonialLike(c *fiber.Ctx) error {
	testimonialID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.toggleLike(c, models.SubjectTestimonial, testimonialID)
}

func (s *Server) toggleLike(c *fiber.Ctx, kind models.SubjectKind, subjectID uint) error {
	result, err := s.likes.ToggleLike(c.UserContext(), kind, subjectID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
