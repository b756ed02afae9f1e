// file: internals/features/visits/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"visitorku_backend/internals/constants"
	visitController "visitorku_backend/internals/features/visits/controller"
	"visitorku_backend/internals/features/visits/reconcile"
	authMiddleware "visitorku_backend/internals/middlewares/auth"
)

// AdminVisitRoutes mounts the staff dashboard API.
// Base: /api/a/visitor-registrations (JWT + role check)
func AdminVisitRoutes(app *fiber.App, db *gorm.DB, hub *visitController.DashboardHub, feed reconcile.Feed) {
	admin := visitController.NewAdminController(hub)
	stream := visitController.NewStreamController(feed)

	grp := app.Group("/api/a/visitor-registrations",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles("Only admins can access the visitor dashboard", constants.AdminOnly...),
	)

	grp.Get("/", admin.List)
	grp.Get("/stream", stream.Stream)
	grp.Post("/refresh", admin.Refresh)

	// inline end-time edit session
	grp.Post("/:id/edit", admin.StartEdit)
	grp.Patch("/edit", admin.SetEditDraft)
	grp.Post("/edit/save", admin.SaveEdit)
	grp.Delete("/edit", admin.CancelEdit)

	grp.Patch("/:id/endtime", admin.UpdateEndTime)
	grp.Get("/:id", admin.GetByID)
	grp.Delete("/:id", admin.Delete)
}
