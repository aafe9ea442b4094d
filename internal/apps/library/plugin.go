// Package library serves the paid course library. Every route sits behind
// the subscription gate.
package library

import (
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "library" }

func (p *Plugin) Models() []interface{} { return nil }

func (p *Plugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	h := &handler{catalog: deps.Catalog}
	router.Use(middleware.RequireAccess(deps.Access))
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

type handler struct {
	catalog *catalog.Registry
}

func (h *handler) list(c *fiber.Ctx) error {
	products := h.catalog.Products()
	items := make([]dto.LibraryItem, 0, len(products))
	for _, p := range products {
		items = append(items, toItem(p))
	}

	verdict, _ := session.GetVerdict(c)
	return c.JSON(dto.LibraryResponse{
		OK:     true,
		Items:  items,
		Access: services.VerdictResponse(verdict),
	})
}

func (h *handler) get(c *fiber.Ctx) error {
	p := h.catalog.Product(c.Params("id"))
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not_found"})
	}
	return c.JSON(fiber.Map{"ok": true, "item": toItem(p), "contents": p.Contents, "description": p.FullDesc})
}

func toItem(p *catalog.Product) dto.LibraryItem {
	return dto.LibraryItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.ShortDesc,
		Category:    p.Category,
		Lessons:     p.Lessons,
	}
}
