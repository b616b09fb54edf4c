package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	DB     *gorm.DB
	Secret []byte
}

func NewHandler(db *gorm.DB, secret string) *Handler {
	return &Handler{DB: db, Secret: []byte(secret)}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  LoginUserPayload `json:"user"`
}

type LoginUserPayload struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid JSON body",
		})
		return
	}

	// 1. Cari user by email
	// gunakan struct lokal agar tidak mengimpor package `user` (menghindari import cycle)
	type authUser struct {
		ID           int64
		Email        string
		PasswordHash string
		FullName     string
		AuthID       *string
		Role         string
		Active       bool
	}

	var u authUser
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.DB.Table("users").Where("LOWER(email) = ? AND active = ?", email, true).First(&u).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "email atau password salah",
		})
		return
	}

	// 2. Cek password
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "email atau password salah",
		})
		return
	}

	// 3. Siapkan claims JWT; subject = auth id kalau ada, selain itu id internal
	subject := strconv.FormatInt(u.ID, 10)
	if u.AuthID != nil && *u.AuthID != "" {
		subject = *u.AuthID
	}

	claims := UserClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := h.Sign(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_error",
			"message": "failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: tokenString,
		User: LoginUserPayload{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		},
	})
}

// Sign issues an HS256 token for claims.
func (h *Handler) Sign(claims UserClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.Secret)
}
