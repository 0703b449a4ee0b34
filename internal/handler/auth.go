package handler

import (
	"net/http"
	"strings"
	"time"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

type registerReq struct {
	Nome  string `json:"nome" binding:"required"`
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Register creates a new user account. Passwords are only ever stored as
// bcrypt hashes.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.TrimSpace(req.Email)

	if err := util.ValidateNome(req.Nome); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Nome inválido.")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email inválido.")
		return
	}
	if len(req.Senha) < 8 || len(req.Senha) > 64 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "A senha deve ter entre 8 e 64 caracteres.")
		return
	}

	// e-mail is unique, case-insensitive
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar usuário.")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email já cadastrado.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao processar senha.")
		return
	}

	user := models.User{
		Nome:      req.Nome,
		Email:     req.Email,
		SenhaHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criar usuário.")
		return
	}

	util.Success(c, util.Response{
		"message": "Usuário cadastrado com sucesso.",
		"user": gin.H{
			"id":    user.ID,
			"nome":  user.Nome,
			"email": user.Email,
		},
	})
}

type loginReq struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Login checks credentials, opens a session and returns a JWT bound to it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	var user models.User
	if err := h.DB.Where("LOWER(email) = LOWER(?)", req.Email).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Email ou senha incorretos.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar usuário.")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.Senha)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Email ou senha incorretos.")
		return
	}

	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(h.TokenTTL),
	}
	if err := h.DB.Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criar sessão.")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, session.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao gerar token.")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user": gin.H{
			"id":      user.ID,
			"nome":    user.Nome,
			"email":   user.Email,
			"isAdmin": user.IsAdmin,
		},
	})
}

// Logout revokes the current session; the JWT stops working immediately.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	if err := h.DB.Model(session).Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao encerrar sessão.")
		return
	}

	util.Success(c, util.Response{
		"message": "Sessão encerrada.",
	})
}
