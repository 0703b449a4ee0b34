package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransacaoHandler handles the transaction CRUD and the dashboard
// aggregation endpoints.
type TransacaoHandler struct {
	DB *gorm.DB
}

func NewTransacaoHandler(db *gorm.DB) *TransacaoHandler {
	return &TransacaoHandler{DB: db}
}

// ---------- request/response shapes ----------

type transacaoBody struct {
	Descricao string  `json:"descricao" binding:"required"`
	Valor     float64 `json:"valor"` // ignored: the total is computed from the splits
	Data      string  `json:"data" binding:"required"`
	Tipo      string  `json:"tipo" binding:"required"`
}

type categoriaSplit struct {
	IDCategoria uint    `json:"idCategoria" binding:"required"`
	Valor       float64 `json:"valor"`
}

type transacaoReq struct {
	Transacao  transacaoBody    `json:"transacao" binding:"required"`
	Categorias []categoriaSplit `json:"categorias" binding:"required"`
}

type categoriaSplitResp struct {
	IDCategoria uint    `json:"idCategoria"`
	Nome        string  `json:"nome"`
	Valor       float64 `json:"valor"`
}

type transacaoResp struct {
	ID         uint                 `json:"id"`
	Descricao  string               `json:"descricao"`
	Valor      float64              `json:"valor"`
	Data       time.Time            `json:"data"`
	Tipo       string               `json:"tipo"`
	Categorias []categoriaSplitResp `json:"categorias"`
}

func toTransacaoResp(t *models.Transacao, nomes map[uint]string) transacaoResp {
	resp := transacaoResp{
		ID:         t.ID,
		Descricao:  t.Descricao,
		Valor:      util.CentavosToReais(t.ValorCentavos),
		Data:       t.Data,
		Tipo:       t.Tipo,
		Categorias: make([]categoriaSplitResp, 0, len(t.Categorias)),
	}
	for _, link := range t.Categorias {
		nome := link.Categoria.Nome
		if nome == "" {
			nome = nomes[link.CategoriaID]
		}
		resp.Categorias = append(resp.Categorias, categoriaSplitResp{
			IDCategoria: link.CategoriaID,
			Nome:        nome,
			Valor:       util.CentavosToReais(link.ValorCentavos),
		})
	}
	return resp
}

// ---------- validation ----------

// parseSplits validates the category split list against the requesting
// user's categories and converts it to link rows. The transaction total is
// the sum of the split values; a client-supplied total is never trusted.
func (h *TransacaoHandler) parseSplits(userID uint, splits []categoriaSplit) ([]models.CategoriaTransacao, int64, string) {
	if len(splits) == 0 {
		return nil, 0, "Informe ao menos uma categoria."
	}

	ids := make([]uint, 0, len(splits))
	seen := make(map[uint]bool, len(splits))
	for _, s := range splits {
		if !seen[s.IDCategoria] {
			seen[s.IDCategoria] = true
			ids = append(ids, s.IDCategoria)
		}
	}

	// every referenced category must belong to the requesting user
	var owned int64
	if err := h.DB.Model(&models.Categoria{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Count(&owned).Error; err != nil {
		return nil, 0, "Erro ao verificar categorias."
	}
	if owned != int64(len(ids)) {
		return nil, 0, "Categoria inválida ou de outro usuário."
	}

	links := make([]models.CategoriaTransacao, 0, len(splits))
	var total int64
	for _, s := range splits {
		if s.Valor < 0 {
			return nil, 0, "Valor de categoria não pode ser negativo."
		}
		centavos, err := util.ReaisToCentavos(s.Valor)
		if err != nil {
			return nil, 0, "Valor de categoria inválido."
		}
		links = append(links, models.CategoriaTransacao{
			CategoriaID:   s.IDCategoria,
			ValorCentavos: centavos,
		})
		total += centavos
	}
	return links, total, ""
}

func (h *TransacaoHandler) parseHeader(body *transacaoBody) (time.Time, string) {
	body.Descricao = strings.TrimSpace(body.Descricao)
	if body.Descricao == "" {
		return time.Time{}, "Informe uma descrição."
	}
	if err := util.ValidateTipo(body.Tipo); err != nil {
		return time.Time{}, "Tipo de transação inválido."
	}
	data, err := util.ParseData(body.Data)
	if err != nil {
		return time.Time{}, "Data inválida."
	}
	return data, ""
}

// ---------- CRUD ----------

// ListTransacoes returns all of the user's transactions with their splits.
func (h *TransacaoHandler) ListTransacoes(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	var transacoes []models.Transacao
	if err := h.DB.Where("user_id = ?", user.ID).
		Preload("Categorias.Categoria").
		Order("data DESC, id DESC").
		Find(&transacoes).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	resp := make([]transacaoResp, 0, len(transacoes))
	for i := range transacoes {
		resp = append(resp, toTransacaoResp(&transacoes[i], nil))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTransacao returns one transaction (only the owner's).
func (h *TransacaoHandler) GetTransacao(c *gin.Context) {
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

	var transacao models.Transacao
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		Preload("Categorias.Categoria").
		First(&transacao).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Transação não encontrada.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transação.")
		}
		return
	}

	c.JSON(http.StatusOK, toTransacaoResp(&transacao, nil))
}

// CreateTransacao records a transaction and its category splits in one DB
// transaction: either the header and every link land, or nothing does.
func (h *TransacaoHandler) CreateTransacao(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	var req transacaoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	data, msg := h.parseHeader(&req.Transacao)
	if msg != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
		return
	}
	links, total, msg := h.parseSplits(user.ID, req.Categorias)
	if msg != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
		return
	}

	transacao := models.Transacao{
		UserID:        user.ID,
		Descricao:     req.Transacao.Descricao,
		ValorCentavos: total,
		Data:          data,
		Tipo:          req.Transacao.Tipo,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transacao).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].TransacaoID = transacao.ID
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao salvar transação.")
		return
	}

	transacao.Categorias = links
	util.Success(c, util.Response{
		"transacao": toTransacaoResp(&transacao, h.categoriaNomes(links)),
	})
}

// UpdateTransacao replaces the header and the whole split set atomically,
// so readers never observe a partial link set.
func (h *TransacaoHandler) UpdateTransacao(c *gin.Context) {
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

	var req transacaoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	var transacao models.Transacao
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&transacao).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Transação não encontrada.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transação.")
		}
		return
	}

	data, msg := h.parseHeader(&req.Transacao)
	if msg != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
		return
	}
	links, total, msg := h.parseSplits(user.ID, req.Categorias)
	if msg != "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
		return
	}

	transacao.Descricao = req.Transacao.Descricao
	transacao.ValorCentavos = total
	transacao.Data = data
	transacao.Tipo = req.Transacao.Tipo

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transacao_id = ?", transacao.ID).
			Delete(&models.CategoriaTransacao{}).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].TransacaoID = transacao.ID
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
		return tx.Save(&transacao).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao atualizar transação.")
		return
	}

	transacao.Categorias = links
	util.Success(c, util.Response{
		"transacao": toTransacaoResp(&transacao, h.categoriaNomes(links)),
	})
}

// DeleteTransacao removes a transaction and its splits atomically.
func (h *TransacaoHandler) DeleteTransacao(c *gin.Context) {
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

	var transacao models.Transacao
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&transacao).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Transação não encontrada.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transação.")
		}
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transacao_id = ?", transacao.ID).
			Delete(&models.CategoriaTransacao{}).Error; err != nil {
			return err
		}
		return tx.Delete(&transacao).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao excluir transação.")
		return
	}

	util.Success(c, util.Response{
		"message": "Transação excluída com sucesso.",
	})
}

// categoriaNomes resolves category names for the given links, for responses
// built right after a write (no preload available).
func (h *TransacaoHandler) categoriaNomes(links []models.CategoriaTransacao) map[uint]string {
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CategoriaID)
	}
	var categorias []models.Categoria
	if err := h.DB.Where("id IN ?", ids).Find(&categorias).Error; err != nil {
		return nil
	}
	nomes := make(map[uint]string, len(categorias))
	for _, cat := range categorias {
		nomes[cat.ID] = cat.Nome
	}
	return nomes
}
