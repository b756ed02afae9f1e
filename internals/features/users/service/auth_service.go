package service

import (
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"visitorku_backend/internals/configs"
	userModel "visitorku_backend/internals/features/users/model"
	helper "visitorku_backend/internals/helpers"
)

const accessTTL = 24 * time.Hour

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET is not set")
	}
	return secret, nil
}

/* ==========================
   LOGIN (email + password)
========================== */

func Login(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Identifier = strings.TrimSpace(input.Identifier)
	if input.Identifier == "" || input.Password == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Identifier and password are required")
	}

	var user userModel.UserModel
	if err := db.
		Where("email = ? OR user_name = ?", strings.ToLower(input.Identifier), input.Identifier).
		First(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid identifier or password")
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid identifier or password")
	}

	return issueToken(c, user)
}

/* ==========================
   LOGIN GOOGLE
========================== */

func LoginGoogle(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		IDToken string `json:"id_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid Google ID Token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to decode ID Token")
	}
	email, googleID := strings.ToLower(claimSet.Email), claimSet.Sub

	// Staff accounts are provisioned by the seed/admin; Google sign-in only
	// links, it never creates.
	var user userModel.UserModel
	err = db.Where("google_id = ?", googleID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		if err = db.Where("email = ?", email).First(&user).Error; err != nil {
			return helper.JsonError(c, fiber.StatusForbidden, "No staff account for this Google email")
		}
		if err := db.Model(&user).Update("google_id", googleID).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to link Google account")
		}
	} else if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to look up user")
	}

	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
	}
	return issueToken(c, user)
}

/* ==========================
   ISSUE TOKEN + Response
========================== */

func issueToken(c *fiber.Ctx, user userModel.UserModel) error {
	secret, err := getJWTSecret()
	if err != nil {
		return err
	}
	now := nowUTC()

	claims := jwt.MapClaims{
		"typ":       "access",
		"sub":       user.ID.String(),
		"id":        user.ID.String(),
		"user_name": user.UserName,
		"role":      user.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(accessTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to sign access token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTL),
	})

	return helper.JsonOK(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"user_name": user.UserName,
			"email":     user.Email,
			"role":      user.Role,
		},
		"access_token": token,
	})
}

/* ==========================
   LOGOUT
========================== */

func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
	})
	return helper.JsonOK(c, "Logged out", nil)
}
