package user

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"visitorku_backend/internals/constants"
	"visitorku_backend/internals/features/users/model"
)

type UserSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedUsersFromJSON provisions the initial staff accounts. Existing emails
// are skipped, so re-running is safe.
func SeedUsersFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Reading user seed file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Failed to read JSON file: %v", err)
	}

	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Fatalf("❌ Failed to decode JSON: %v", err)
	}

	for _, data := range inputs {
		if !constants.ValidRole(data.Role) {
			log.Printf("❌ Unknown role '%s' for '%s', skipped.", data.Role, data.Email)
			continue
		}

		var existing model.UserModel
		if err := db.Where("email = ?", data.Email).First(&existing).Error; err == nil {
			log.Printf("ℹ️ User with email '%s' already exists, skipped.", data.Email)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password for '%s': %v", data.Email, err)
			continue
		}

		newUser := model.UserModel{
			ID:        uuid.New(),
			UserName:  data.UserName,
			Email:     data.Email,
			Password:  string(hashed),
			Role:      data.Role,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := db.Create(&newUser).Error; err != nil {
			log.Printf("❌ Failed to insert user '%s': %v", data.Email, err)
		} else {
			log.Printf("✅ Inserted user '%s'", data.Email)
		}
	}
}
