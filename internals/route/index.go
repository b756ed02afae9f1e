// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userRoute "visitorku_backend/internals/features/users/route"
	visitController "visitorku_backend/internals/features/visits/controller"
	visitRoute "visitorku_backend/internals/features/visits/route"
	"visitorku_backend/internals/features/visits/reconcile"
	visitService "visitorku_backend/internals/features/visits/service"
	"visitorku_backend/internals/helpers/mailer"
	"visitorku_backend/internals/helpers/storage"
)

var startTime time.Time

// SetupRoutes wires the shared singletons (change feed, blob store, mailer)
// and mounts every feature group.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// one change feed for the whole process: the write path publishes, the
	// dashboard cache and every SSE client subscribe
	feed := reconcile.NewBus()
	blobs := storage.NewSupabaseBlobServiceFromEnv()
	notify := visitService.NewNotifyService(mailer.NewSMTPMailerFromEnv())

	submit := visitService.NewSubmitService(db, blobs, feed, notify)
	store := visitService.NewRegistrationStore(db, blobs, feed)
	hub := visitController.NewDashboardHub(store, feed)

	log.Println("[INFO] Mounting base routes...")
	BaseRoutes(app, db)

	log.Println("[INFO] Mounting Auth routes...")
	userRoute.AuthRoutes(app, db)

	log.Println("[INFO] Mounting Kiosk routes...")
	visitRoute.KioskRoutes(app, submit)

	log.Println("[INFO] Mounting Admin visit routes...")
	visitRoute.AdminVisitRoutes(app, db, hub, feed)
}
