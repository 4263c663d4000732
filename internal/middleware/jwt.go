package middleware

import (
	"net/http"
	"strings"
	"time"

	"timesheet/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	JWTSecret = []byte("timesheet-dev-secret")
	TokenTTL  = 8 * time.Hour
)

// renewWithin is how close to expiry a token must be before a fresh one is
// returned in X-New-Token.
const renewWithin = time.Hour

const claimsKey = "claims"

type Claims struct {
	UserID int        `json:"uid"`
	TeamID *int       `json:"team_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Email() string { return c.Subject }

func IssueToken(m *model.TeamMember) (string, error) {
	return sign(Claims{UserID: m.ID, TeamID: m.TeamID, Role: m.Role, RegisteredClaims: jwt.RegisteredClaims{Subject: m.Email}})
}

func sign(c Claims) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(TokenTTL))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(JWTSecret)
}

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(auth[7:], claims, func(t *jwt.Token) (interface{}, error) {
			return JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Subject)

		if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < renewWithin {
			if fresh, err := sign(*claims); err == nil {
				c.Header("X-New-Token", fresh)
			}
		}

		c.Next()
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func CurrentClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// CanActFor reports whether the caller may read or write email's timesheet.
// Plain users are limited to their own; managers and admins are not.
func CanActFor(c *gin.Context, email string) bool {
	claims := CurrentClaims(c)
	if claims == nil {
		return false
	}
	if claims.Role == model.RoleManager || claims.Role == model.RoleAdmin {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(email), claims.Subject)
}
