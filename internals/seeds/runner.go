package seeds

import (
	"gorm.io/gorm"

	users "visitorku_backend/internals/seeds/users"
)

func RunAllSeeds(db *gorm.DB) {
	users.SeedUsersFromJSON(db, "internals/seeds/users/data_users.json")
}
