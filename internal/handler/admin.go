package handler

import (
	"net/http"
	"strconv"

	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler exposes the read-only admin listings. The admin gate runs
// in middleware before any of these.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// ListUsuarios lists every user, without password hashes.
func (h *AdminHandler) ListUsuarios(c *gin.Context) {
	var usuarios []models.User
	if err := h.DB.Order("id ASC").Find(&usuarios).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar usuários.")
		return
	}
	c.JSON(http.StatusOK, usuarios)
}

// ListCategorias lists every category of every user.
func (h *AdminHandler) ListCategorias(c *gin.Context) {
	var categorias []models.Categoria
	if err := h.DB.Order("id ASC").Find(&categorias).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categorias.")
		return
	}
	c.JSON(http.StatusOK, categorias)
}

// ListTransacoes lists every transaction of every user.
func (h *AdminHandler) ListTransacoes(c *gin.Context) {
	var transacoes []models.Transacao
	if err := h.DB.Order("id ASC").Find(&transacoes).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	resp := make([]transacaoResp, 0, len(transacoes))
	for i := range transacoes {
		resp = append(resp, toTransacaoResp(&transacoes[i], nil))
	}
	c.JSON(http.StatusOK, resp)
}

// ListCategoriaTransacoes lists every category-transaction link.
func (h *AdminHandler) ListCategoriaTransacoes(c *gin.Context) {
	var links []models.CategoriaTransacao
	if err := h.DB.Order("id ASC").Find(&links).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categorias de transações.")
		return
	}

	resp := make([]gin.H, 0, len(links))
	for _, link := range links {
		resp = append(resp, gin.H{
			"id":          link.ID,
			"idTransacao": link.TransacaoID,
			"idCategoria": link.CategoriaID,
			"valor":       util.CentavosToReais(link.ValorCentavos),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// ListLogs lists the audit trail, newest first, paginated.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if size <= 0 || size > 200 {
		size = 50
	}

	var total int64
	if err := h.DB.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar registros.")
		return
	}

	var logs []models.AuditLog
	if err := h.DB.Order("id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar registros.")
		return
	}

	util.Success(c, util.Response{
		"items": logs,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
