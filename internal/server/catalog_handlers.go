package server

import (
	"campusbridge/internal/models"
	"campusbridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Catalog handlers are generic over the reviewed entity so schools and majors
// share one set of routes.

func registerCatalogReads[E any, P models.ReviewablePtr[E]](r fiber.Router, wf *service.ReviewWorkflow[E, P]) {
	r.Get("/", listCatalog(wf))
	r.Get("/:id", getCatalog(wf))
}

func registerCatalogAdmin[E any, P models.ReviewablePtr[E]](r fiber.Router, wf *service.ReviewWorkflow[E, P]) {
	r.Post("/:id/approve", approveCatalog(wf))
	r.Post("/:id/reject", rejectCatalog(wf))
	r.Patch("/:id", editCatalog(wf))
}

func listCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := parsePagination(c, 50)
		list, err := wf.List(c.UserContext(), currentViewer(c), models.ReviewStatus(c.Query("status")), page.Limit, page.Offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

func getCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		entity, err := wf.Get(c.UserContext(), id, currentViewer(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entity)
	}
}

func submitCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P], decode func(*fiber.Ctx) (*E, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entity, err := decode(c)
		if err != nil {
			return nil
		}
		created, err := wf.Submit(c.UserContext(), entity, currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func approveCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		entity, err := wf.Approve(c.UserContext(), id, currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entity)
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func rejectCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		var req rejectRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		entity, err := wf.Reject(c.UserContext(), id, currentUserID(c), req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entity)
	}
}

func editCatalog[E any, P models.ReviewablePtr[E]](wf *service.ReviewWorkflow[E, P]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		fields := map[string]interface{}{}
		if err := parseBody(c, &fields); err != nil {
			return nil
		}
		entity, err := wf.Edit(c.UserContext(), id, fields)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entity)
	}
}

type schoolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

func schoolFromRequest(c *fiber.Ctx) (*models.School, error) {
	var req schoolRequest
	if err := parseBody(c, &req); err != nil {
		return nil, err
	}
	return &models.School{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Website:     req.Website,
	}, nil
}

type majorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Discipline  string `json:"discipline"`
	DegreeLevel string `json:"degree_level"`
}

func majorFromRequest(c *fiber.Ctx) (*models.Major, error) {
	var req majorRequest
	if err := parseBody(c, &req); err != nil {
		return nil, err
	}
	return &models.Major{
		Name:        req.Name,
		Description: req.Description,
		Discipline:  req.Discipline,
		DegreeLevel: req.DegreeLevel,
	}, nil
}
