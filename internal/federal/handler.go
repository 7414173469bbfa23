package federal

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/misdis-backend/internal/apperror"
	"github.com/wichananm65/misdis-backend/internal/validation"
)

type Handler struct {
	services []*Service
	validate *validation.Validator
}

func NewHandler(v *validation.Validator, services ...*Service) *Handler {
	return &Handler{services: services, validate: v}
}

// divisionRequest accepts the parent key of every level; only the one
// matching the target level is read.
type divisionRequest struct {
	Title    *string `json:"title" validate:"omitnil,max=255"`
	TitleNe  *string `json:"title_ne" validate:"omitnil,max=255"`
	Code     *string `json:"code" validate:"omitnil,max=25"`
	Order    *int    `json:"order" validate:"omitnil,min=0,max=2147483647"`
	Country  *int    `json:"country" validate:"omitnil,min=1"`
	Province *int    `json:"province" validate:"omitnil,min=1"`
	District *int    `json:"district" validate:"omitnil,min=1"`
}

func (r divisionRequest) parentID(l *Level) *int {
	switch l.Parent {
	case Country:
		return r.Country
	case Province:
		return r.Province
	case District:
		return r.District
	}
	return nil
}

// RegisterRoutes mounts every level on r. mw runs before each handler.
func (h *Handler) RegisterRoutes(r fiber.Router, mw ...fiber.Handler) {
	for _, s := range h.services {
		l := s.Level()
		item := "/" + l.Table + "/:id<int>/"

		r.Post("/"+l.Table+"/", chain(mw, h.create(s))...)
		r.Get("/"+l.Plural+"/", chain(mw, h.list(s))...)
		r.Get(item, chain(mw, h.get(s))...)
		r.Put(item, chain(mw, h.update(s, true))...)
		r.Patch(item, chain(mw, h.update(s, false))...)
		r.Delete(item, chain(mw, h.delete(s))...)
	}
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

func (h *Handler) create(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.parse(c, s.Level(), true)
		if err != nil {
			return err
		}
		d := p.Apply(Division{})
		created, err := s.Create(c.UserContext(), d)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(present(s.Level(), created))
	}
}

func (h *Handler) list(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := s.List(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]fiber.Map, 0, len(items))
		for _, d := range items {
			out = append(out, present(s.Level(), d))
		}
		return c.JSON(out)
	}
}

func (h *Handler) get(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, s.Level())
		if err != nil {
			return err
		}
		d, err := s.GetByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(present(s.Level(), d))
	}
}

// update serves PUT when replace is set and PATCH otherwise.
func (h *Handler) update(s *Service, replace bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, s.Level())
		if err != nil {
			return err
		}
		p, err := h.parse(c, s.Level(), false)
		if err != nil {
			return err
		}

		var d Division
		if replace {
			d, err = s.Update(c.UserContext(), id, p)
		} else {
			d, err = s.PartialUpdate(c.UserContext(), id, p)
		}
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(present(s.Level(), d))
	}
}

func (h *Handler) delete(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, s.Level())
		if err != nil {
			return err
		}
		if err := s.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": s.Level().Name + " deleted successfully"})
	}
}

// paramID reads the :id segment. Ids that overflow int are reported as not
// found, the same as any other id without a row.
func paramID(c *fiber.Ctx, l *Level) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, apperror.NotFound("%s with the id %s is not found", l.Name, c.Params("id"))
	}
	return id, nil
}

// parse decodes a create or update body. On create the title and parent key
// are required.
func (h *Handler) parse(c *fiber.Ctx, l *Level, create bool) (Patch, error) {
	var req divisionRequest
	if err := c.BodyParser(&req); err != nil {
		return Patch{}, apperror.BadRequest("Invalid request body")
	}

	details := map[string]string{}
	if err := h.validate.Struct(req); err != nil {
		appErr, ok := apperror.As(err)
		if !ok {
			return Patch{}, err
		}
		for field, msg := range appErr.Details {
			details[field] = msg
		}
	}
	parentID := req.parentID(l)
	if create && req.Title == nil {
		details["title"] = "This field is required"
	}
	if create && l.Parent != nil && parentID == nil {
		details[l.ParentColumn()] = "This field is required"
	}

	nulls := explicitNulls(c)
	for _, field := range []string{"title", "order", l.ParentColumn()} {
		if field != "" && nulls[field] {
			details[field] = "Must not be null"
		}
	}
	if len(details) > 0 {
		return Patch{}, apperror.Validation(details)
	}

	return Patch{
		Title:        req.Title,
		TitleNe:      req.TitleNe,
		Code:         req.Code,
		Order:        req.Order,
		ParentID:     parentID,
		ClearTitleNe: nulls["title_ne"],
		ClearCode:    nulls["code"],
	}, nil
}

// explicitNulls reports the keys of a JSON body that are present with the
// value null. Pointer fields cannot tell those apart from missing keys.
func explicitNulls(c *fiber.Ctx) map[string]bool {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return nil
	}
	out := map[string]bool{}
	for k, v := range raw {
		if string(bytes.TrimSpace(v)) == "null" {
			out[k] = true
		}
	}
	return out
}

func present(l *Level, d Division) fiber.Map {
	m := fiber.Map{
		"id":       d.ID,
		"title":    d.Title,
		"title_ne": d.TitleNe,
		"code":     d.Code,
		"order":    d.Order,
	}
	if pc := l.ParentColumn(); pc != "" {
		m[pc] = d.ParentID
	}
	return m
}
