// handlers/auth.go
package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"discjourney/middleware"
	"discjourney/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	HomeCourse  string `json:"home_course"`
	PDGANumber  string `json:"pdga_number"`
}

type GuestLoginRequest struct {
	GuestName string `json:"guest_name,omitempty"`
}

type UpgradeGuestRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type UserInfo struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	HomeCourse  string    `json:"home_course"`
	PDGANumber  string    `json:"pdga_number,omitempty"`
	IsGuest     bool      `json:"is_guest"`
	CreatedAt   time.Time `json:"created_at"`
}

func userInfo(user models.User) *UserInfo {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return &UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       email,
		DisplayName: user.PublicName(),
		HomeCourse:  user.HomeCourse,
		PDGANumber:  user.PDGANumber,
		IsGuest:     user.IsGuest,
		CreatedAt:   user.CreatedAt,
	}
}

func authError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(AuthResponse{Success: false, Error: message})
}

func (h *Handler) issue(c *fiber.Ctx, user models.User) error {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.log.Error("failed to sign token", zap.Uint("user_id", user.ID), zap.Error(err))
		return authError(c, 500, "Failed to generate token")
	}
	return c.JSON(AuthResponse{Success: true, Token: token, User: userInfo(user)})
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// GuestLogin creates a new guest session
func (h *Handler) GuestLogin(c *fiber.Ctx) error {
	var req GuestLoginRequest
	// An empty body is fine here.
	_ = c.BodyParser(&req)

	guestName := strings.TrimSpace(req.GuestName)
	if guestName == "" {
		guestName = fmt.Sprintf("Guest_%s", uuid.New().String()[:8])
	}

	user := models.User{
		// The display name is free-form; the username stays unique.
		Username:    fmt.Sprintf("guest_%s", uuid.New().String()[:12]),
		DisplayName: guestName,
		IsGuest:     true,
		LastLogin:   time.Now(),
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		h.log.Error("failed to create guest", zap.Error(err))
		return authError(c, 500, "Failed to create guest account")
	}
	return h.issue(c, user)
}

// Login authenticates a registered user
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return authError(c, 400, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return authError(c, 400, "Username and password required")
	}

	db := h.db.WithContext(c.UserContext())
	var user models.User
	if err := db.Where("username = ? AND is_guest = ?", req.Username, false).First(&user).Error; err != nil {
		return authError(c, 401, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return authError(c, 401, "Invalid credentials")
	}
	if user.IsBanned {
		return authError(c, 403, "Account is banned")
	}

	user.LastLogin = time.Now()
	if err := db.Model(&user).Update("last_login", user.LastLogin).Error; err != nil {
		h.log.Warn("failed to record login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return h.issue(c, user)
}

// Register creates a new user account
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return authError(c, 400, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return authError(c, 400, "Username and password required")
	}
	if len(req.Password) < minPasswordLength {
		return authError(c, 400, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	db := h.db.WithContext(c.UserContext())
	taken, err := h.usernameTaken(db, req.Username, 0)
	if err != nil {
		return authError(c, 500, "Database error")
	}
	if taken {
		return authError(c, 400, "Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return authError(c, 500, "Failed to hash password")
	}

	user := models.User{
		Username:    req.Username,
		Email:       optional(req.Email),
		Password:    string(hashedPassword),
		DisplayName: strings.TrimSpace(req.DisplayName),
		HomeCourse:  strings.TrimSpace(req.HomeCourse),
		PDGANumber:  strings.TrimSpace(req.PDGANumber),
		LastLogin:   time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		h.log.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		return authError(c, 500, "Failed to create account")
	}
	return h.issue(c, user)
}

// UpgradeGuest converts a guest account to a registered account
func (h *Handler) UpgradeGuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return authError(c, 401, "Unauthorized")
	}

	var req UpgradeGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return authError(c, 400, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return authError(c, 400, "Username and password required")
	}
	if len(req.Password) < minPasswordLength {
		return authError(c, 400, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	db := h.db.WithContext(c.UserContext())
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return authError(c, 404, "User not found")
	}
	if !user.IsGuest {
		return authError(c, 400, "Account is already registered")
	}

	taken, err := h.usernameTaken(db, req.Username, userID)
	if err != nil {
		return authError(c, 500, "Database error")
	}
	if taken {
		return authError(c, 400, "Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return authError(c, 500, "Failed to hash password")
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"username": req.Username,
		"email":    optional(req.Email),
		"password": string(hashedPassword),
		"is_guest": false,
	}).Error; err != nil {
		return authError(c, 500, "Failed to upgrade account")
	}

	if err := db.First(&user, userID).Error; err != nil {
		return authError(c, 500, "Failed to reload account")
	}
	return h.issue(c, user)
}

func (h *Handler) usernameTaken(db *gorm.DB, username string, exceptID uint) (bool, error) {
	var existing models.User
	err := db.Where("username = ? AND id <> ?", username, exceptID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
