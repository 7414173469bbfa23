package account

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/misdis-backend/internal/apperror"
	"github.com/wichananm65/misdis-backend/internal/auth"
	"github.com/wichananm65/misdis-backend/internal/validation"
)

type Handler struct {
	service  *Service
	validate *validation.Validator
}

// loginRequest accepts the OAuth2 password form as well as JSON.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func NewHandler(service *Service, v *validation.Validator) *Handler {
	return &Handler{service: service, validate: v}
}

// RegisterPublicRoutes mounts account creation and login.
func (h *Handler) RegisterPublicRoutes(r fiber.Router, mw ...fiber.Handler) {
	r.Post("/", chain(mw, h.create)...)
	r.Post("/login/", chain(mw, h.login)...)
}

// RegisterProtectedRoutes mounts the read routes. The caller decides whether
// mw includes an auth guard.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router, mw ...fiber.Handler) {
	r.Get("/", chain(mw, h.list)...)
	r.Get("/:id<int>/", chain(mw, h.get)...)
}

// RegisterMeRoute mounts /me/. guard is always applied.
func (h *Handler) RegisterMeRoute(r fiber.Router, guard fiber.Handler, mw ...fiber.Handler) {
	r.Get("/me/", chain(append([]fiber.Handler{guard}, mw...), h.me)...)
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

func (h *Handler) create(c *fiber.Ctx) error {
	var payload UserCreate
	if err := c.BodyParser(&payload); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validate.Struct(payload); err != nil {
		return err
	}

	user, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperror.NotFound("User with the id %s is not found", c.Params("id"))
	}
	user, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) login(c *fiber.Ctx) error {
	var payload loginRequest
	if err := c.BodyParser(&payload); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validate.Struct(payload); err != nil {
		return err
	}

	token, err := h.service.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}
	return c.JSON(token)
}

func (h *Handler) me(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromCtx(c)
	if !ok {
		return apperror.Unauthorized("Not authenticated")
	}
	user, err := h.service.Me(c.UserContext(), subject)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
