// file: internals/features/visits/route/kiosk_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	visitController "visitorku_backend/internals/features/visits/controller"
	"visitorku_backend/internals/features/visits/service"
	rateLimiter "visitorku_backend/internals/middlewares"
)

// KioskRoutes mounts the anonymous wizard API used by the lobby tablet.
// Base: /api/kiosk
func KioskRoutes(app *fiber.App, submit *service.SubmitService) {
	ctrl := visitController.NewKioskController(submit)

	kiosk := app.Group("/api/kiosk", rateLimiter.GlobalRateLimiter())

	sessions := kiosk.Group("/sessions")
	sessions.Post("/", ctrl.CreateSession)
	sessions.Get("/:id", ctrl.GetSession)
	sessions.Delete("/:id", ctrl.EndSession)

	sessions.Post("/:id/advance", ctrl.Advance)
	sessions.Post("/:id/retreat", ctrl.Retreat)
	sessions.Patch("/:id/draft", ctrl.PatchDraft)

	sessions.Post("/:id/people/increment", ctrl.IncrementPeople)
	sessions.Post("/:id/people/decrement", ctrl.DecrementPeople)

	sessions.Post("/:id/files/:slot", ctrl.StageFile)
	sessions.Delete("/:id/files/:slot", ctrl.ClearFile)

	sessions.Post("/:id/submit", ctrl.SubmitSession)
}
