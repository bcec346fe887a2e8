// middleware/auth.go
package middleware

import (
	"errors"
	"strings"
	"time"

	"discjourney/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

var errNoToken = errors.New("missing token")

// Auth validates and issues the HMAC tokens used by the API and the
// websocket feed.
type Auth struct {
	secret []byte
	db     *gorm.DB
	log    *zap.Logger
	now    func() time.Time
}

// NewAuth builds the middleware. db may be nil, in which case last
// activity is not tracked.
func NewAuth(secret string, db *gorm.DB, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{secret: []byte(secret), db: db, log: log, now: time.Now}
}

// IssueToken signs a token for user.
func (a *Auth) IssueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_guest": user.IsGuest,
		"exp":      a.now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) parse(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errNoToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if _, ok := claims["exp"].(float64); !ok {
		return nil, errors.New("token has no expiry")
	}
	return claims, nil
}

func bearer(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func setLocals(c *fiber.Ctx, claims jwt.MapClaims) {
	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	c.Locals("isGuest", claims["is_guest"])
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing authorization header"})
	}
	tokenString, ok := bearer(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid authorization header format"})
	}

	claims, err := a.parse(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
	}

	setLocals(c, claims)
	a.touch(claims["user_id"])
	return c.Next()
}

// WebSocket authenticates an upgrade request. Browsers cannot set headers
// on a websocket handshake, so the token may also come from the "token"
// query parameter or cookie. There is no guest fallback: the event feed
// is per user.
func (a *Auth) WebSocket(c *fiber.Ctx) error {
	tokenString, _ := bearer(c)
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}

	claims, err := a.parse(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
	}
	setLocals(c, claims)
	return c.Next()
}

// touch updates the user's last activity timestamp.
func (a *Auth) touch(userID interface{}) {
	if a.db == nil {
		return
	}
	id, ok := toUint(userID)
	if !ok {
		return
	}
	if err := a.db.Model(&models.User{}).Where("id = ?", id).Update("last_activity", a.now()).Error; err != nil {
		a.log.Warn("failed to update last activity", zap.Uint("user_id", id), zap.Error(err))
	}
}

func toUint(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	case uint:
		return id, id > 0
	}
	return 0, false
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return 0, fiber.NewError(401, "User not authenticated")
	}
	if id, ok := toUint(userID); ok {
		return id, nil
	}
	return 0, fiber.NewError(401, "Invalid user ID format")
}

func GetUsername(c *fiber.Ctx) (string, error) {
	username := c.Locals("username")
	if username == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}
	if name, ok := username.(string); ok {
		return name, nil
	}
	return "", fiber.NewError(401, "Invalid username format")
}

func IsGuest(c *fiber.Ctx) bool {
	if guest, ok := c.Locals("isGuest").(bool); ok {
		return guest
	}
	return false
}
