package handler

import (
	"net/http"
	"strconv"
	"strings"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoriaHandler handles the user-scoped category CRUD.
type CategoriaHandler struct {
	DB *gorm.DB
}

func NewCategoriaHandler(db *gorm.DB) *CategoriaHandler {
	return &CategoriaHandler{DB: db}
}

type categoriaReq struct {
	Nome string `json:"nome" binding:"required"`
}

// ListCategorias returns all categories of the current user.
func (h *CategoriaHandler) ListCategorias(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	var categorias []models.Categoria
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("nome ASC").
		Find(&categorias).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categorias.")
		return
	}

	c.JSON(http.StatusOK, categorias)
}

// CreateCategoria creates a category owned by the current user.
func (h *CategoriaHandler) CreateCategoria(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	var req categoriaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	if err := util.ValidateNome(req.Nome); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Nome de categoria inválido.")
		return
	}

	categoria := models.Categoria{
		UserID: user.ID,
		Nome:   req.Nome,
	}
	if err := h.DB.Create(&categoria).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criar categoria.")
		return
	}

	util.Success(c, util.Response{
		"categoria": categoria,
	})
}

// UpdateCategoria renames a category (only the owner's).
func (h *CategoriaHandler) UpdateCategoria(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido.")
		return
	}

	var req categoriaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	if err := util.ValidateNome(req.Nome); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Nome de categoria inválido.")
		return
	}

	var categoria models.Categoria
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&categoria).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Categoria não encontrada.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categoria.")
		}
		return
	}

	categoria.Nome = req.Nome
	if err := h.DB.Save(&categoria).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao atualizar categoria.")
		return
	}

	util.Success(c, util.Response{
		"categoria": categoria,
	})
}

// DeleteCategoria removes a category. Deletion is refused while any
// transaction link still references it; history never cascades away.
func (h *CategoriaHandler) DeleteCategoria(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido.")
		return
	}

	var categoria models.Categoria
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&categoria).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Categoria não encontrada.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categoria.")
		}
		return
	}

	var linkCount int64
	if err := h.DB.Model(&models.CategoriaTransacao{}).
		Where("categoria_id = ?", categoria.ID).
		Count(&linkCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao verificar transações.")
		return
	}
	if linkCount > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "Categoria em uso por transações e não pode ser excluída.")
		return
	}

	if err := h.DB.Delete(&categoria).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao excluir categoria.")
		return
	}

	util.Success(c, util.Response{
		"message": "Categoria excluída com sucesso.",
	})
}
