package apps

import (
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Deps are the shared services handed to every plugin.
type Deps struct {
	Config  *config.Config
	Catalog *catalog.Registry
	Access  middleware.AccessChecker
}

// Plugin defines the interface every content area must implement.
type Plugin interface {
	// ID returns the unique plugin identifier, also its route prefix.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts plugin routes on the given Fiber group.
	// The group is already prefixed with /api/<ID> and resolves the
	// caller's identity.
	RegisterRoutes(router fiber.Router, deps Deps)
}
