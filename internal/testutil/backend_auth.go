package testutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"finadvisor/internal/models"
	"finadvisor/internal/uuid"
	"finadvisor/internal/validator"
)

const (
	accessTokenExpiry  = 30 * time.Minute
	refreshTokenExpiry = 7 * 24 * time.Hour
)

// tokenClaims are the claims in tokens issued by the fake backend.
type tokenClaims struct {
	TokenType  string `json:"type"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

func (b *Backend) issueToken(userID int, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		TokenType:  tokenType,
		Generation: b.tokenGen,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New(),
			Issuer:    "finadvisor-test",
			Subject:   strconv.Itoa(userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) parseToken(tokenString, tokenType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch")
	}
	return claims, nil
}

// Token issues an access token for userID without a login round trip.
func (b *Backend) Token(userID int) string {
	b.t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	token, err := b.issueToken(userID, "access", accessTokenExpiry)
	if err != nil {
		b.t.Fatalf("issuing token: %v", err)
	}
	return token
}

func (b *Backend) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := b.parseToken(strings.TrimPrefix(header, "Bearer "), "access")
		if err != nil {
			fail(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}

		b.mu.Lock()
		stale := claims.Generation < b.tokenGen
		userID, _ := strconv.Atoi(claims.Subject)
		_, exists := b.users[userID]
		b.mu.Unlock()

		if stale || !exists {
			fail(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func (b *Backend) register(c *gin.Context) {
	var in models.RegisterRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	in.ConfirmPassword = in.Password
	if err := validator.Struct(in); err != nil {
		respondValidation(c, err)
		return
	}

	id, err := b.createUser(in.Email, in.Username, in.FullName, in.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RegisterResponse{Message: "User created successfully", UserID: id})
}

func (b *Backend) login(c *gin.Context) {
	var in models.LoginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.userByEmail(in.Email)
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !u.IsActive {
		fail(c, http.StatusForbidden, "User account is inactive")
		return
	}

	access, err := b.issueToken(u.ID, "access", accessTokenExpiry)
	if err != nil {
		respondWithError(c, err)
		return
	}
	refresh, err := b.issueToken(u.ID, "refresh", refreshTokenExpiry)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		UserName:     u.FullName,
		UserID:       u.ID,
		Email:        u.Email,
	})
}

func (b *Backend) refresh(c *gin.Context) {
	claims, err := b.parseToken(c.Query("refresh_token"), "refresh")
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := strconv.Atoi(claims.Subject)
	u, ok := b.users[userID]
	if !ok {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	if !u.IsActive {
		fail(c, http.StatusForbidden, "User account is inactive")
		return
	}

	access, err := b.issueToken(userID, "access", accessTokenExpiry)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RefreshResponse{AccessToken: access, TokenType: "bearer"})
}

func (b *Backend) logout(c *gin.Context) {
	c.JSON(http.StatusOK, models.Message{Message: "Successfully logged out. Please remove tokens from client storage."})
}

// userByEmail must be called with b.mu held.
func (b *Backend) userByEmail(email string) *user {
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// userByUsername must be called with b.mu held.
func (b *Backend) userByUsername(username string) *user {
	for _, u := range b.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}
