package server

import "github.com/gofiber/fiber/v2"

type createTestimonialRequest struct {
	Content string `json:"content"`
}

// CreateTestimonial handles POST /api/testimonials
func (s *Server) CreateTestimonial(c *fiber.Ctx) error {
	var req createTestimonialRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	t, err := s.testimonials.CreateTestimonial(c.UserContext(), currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// GetTestimonials handles GET /api/testimonials
func (s *Server) GetTestimonials(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	list, err := s.testimonials.ListTestimonials(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// DeleteTestimonial handles DELETE /api/testimonials/:id
func (s *Server) DeleteTestimonial(c *fiber.Ctx) error {
	return s.deleteTestimonial(c, false)
}

// AdminDeleteTestimonial handles DELETE /api/admin/testimonials/:id
func (s *Server) AdminDeleteTestimonial(c *fiber.Ctx) error {
	return s.deleteTestimonial(c, true)
}

func (s *Server) deleteTestimonial(c *fiber.Ctx, override bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.testimonials.DeleteTestimonial(c.UserContext(), id, currentUserID(c), override); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
