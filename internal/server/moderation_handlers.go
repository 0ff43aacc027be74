package server

import (
	"campusbridge/internal/models"
	"campusbridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createReportRequest struct {
	TargetKind models.ReportTargetKind `json:"target_kind"`
	TargetID   uint                    `json:"target_id"`
	Reason     string                  `json:"reason"`
}

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req createReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.reports.CreateReport(c.UserContext(), service.CreateReportInput{
		TargetKind: req.TargetKind,
		TargetID:   req.TargetID,
		ReporterID: currentUserID(c),
		Reason:     req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports?status=
func (s *Server) GetReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	reports, err := s.reports.ListReports(c.UserContext(), models.ReportStatus(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reports)
}

// GetReport handles GET /api/admin/reports/:id
func (s *Server) GetReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	report, err := s.reports.GetReport(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

type resolveReportRequest struct {
	Outcome models.ReportStatus `json:"outcome"`
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req resolveReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.reports.ResolveReport(c.UserContext(), id, req.Outcome, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// MuteUser handles POST /api/admin/users/:id/mute
func (s *Server) MuteUser(c *fiber.Ctx) error {
	return s.setMuted(c, true)
}

// UnmuteUser handles POST /api/admin/users/:id/unmute
func (s *Server) UnmuteUser(c *fiber.Ctx) error {
	return s.setMuted(c, false)
}

func (s *Server) setMuted(c *fiber.Ctx, muted bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.gate.SetMuted(c.UserContext(), id, muted); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": id, "is_muted": muted})
}

// GetFeatureFlags returns configured feature flags and their evaluated state
// for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}

// RunReconcile handles POST /api/admin/reconcile. It repairs denormalized
// counters synchronously and reports what changed.
func (s *Server) RunReconcile(c *fiber.Ctx) error {
	report, err := s.reconciler.RunOnce(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"drift":          report.Drift,
		"orphaned_likes": report.OrphanedLikes,
		"repaired_posts": report.RepairedPosts,
	})
}
