package handler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// Report kinds accepted in the ?tipo= query parameter.
const (
	RelatorioTransacoes         = "transacoes"
	RelatorioTransacaoCategoria = "transacaoCategoria"
	RelatorioGastosCategoria    = "gastosCategoria"
)

// RelatorioHandler renders the PDF reports.
type RelatorioHandler struct {
	DB *gorm.DB
}

func NewRelatorioHandler(db *gorm.DB) *RelatorioHandler {
	return &RelatorioHandler{DB: db}
}

type relatorioReq struct {
	DataInicio    string `json:"dataInicio" binding:"required"`
	DataFim       string `json:"dataFim" binding:"required"`
	IDCategoria   string `json:"idCategoria"`
	TipoTransacao string `json:"tipoTransacao"`
}

// Generate serves POST /relatorio?tipo={kind}. All validation happens
// before any data is read; the response body is the base64-encoded PDF.
func (h *RelatorioHandler) Generate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	kind := c.Query("tipo")

	var req relatorioReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos.")
		return
	}

	inicio, err := time.Parse("2006-01-02", req.DataInicio)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Data de início inválida, use YYYY-MM-DD.")
		return
	}
	fim, err := time.Parse("2006-01-02", req.DataFim)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Data final inválida, use YYYY-MM-DD.")
		return
	}
	if inicio.After(fim) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Data de início não pode ser posterior à data final.")
		return
	}
	// dataFim is inclusive
	fimExclusivo := fim.AddDate(0, 0, 1)

	var pdf *gofpdf.Fpdf
	switch kind {
	case RelatorioTransacoes:
		tipo := req.TipoTransacao
		if tipo != "1" && tipo != "2" && tipo != "3" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Tipo de transação deve ser 1, 2 ou 3.")
			return
		}
		pdf, err = h.relatorioTransacoes(user.ID, inicio, fimExclusivo, tipo)
	case RelatorioTransacaoCategoria:
		if req.IDCategoria == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Informe a categoria do relatório.")
			return
		}
		idCategoria, errID := strconv.ParseUint(req.IDCategoria, 10, 32)
		if errID != nil || idCategoria == 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Categoria inválida.")
			return
		}
		var categoria models.Categoria
		if errCat := h.DB.Where("id = ? AND user_id = ?", uint(idCategoria), user.ID).
			First(&categoria).Error; errCat != nil {
			if errCat == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "Categoria não encontrada.")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categoria.")
			}
			return
		}
		pdf, err = h.relatorioTransacaoCategoria(user.ID, categoria, inicio, fimExclusivo)
	case RelatorioGastosCategoria:
		pdf, err = h.relatorioGastosCategoria(user.ID, inicio, fimExclusivo)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Tipo de relatório inválido.")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao gerar relatório.")
		return
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao gerar relatório.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"relatorio_%s_%s.pdf\"",
		kind, time.Now().Format("20060102")))
	c.String(http.StatusOK, base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// ---------- report builders ----------

// novoPDF also returns the cp1252 translator: the core fonts are not
// UTF-8, so every text cell must go through it or accents come out garbled.
func novoPDF(titulo, periodo string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(titulo), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, tr(periodo), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func cabecalhoTabela(pdf *gofpdf.Fpdf, tr func(string) string, colunas []string, larguras []float64) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range colunas {
		pdf.CellFormat(larguras[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
}

func linhaTotal(pdf *gofpdf.Fpdf, tr func(string) string, rotulo string, larguras []float64, valor string) {
	var resto float64
	for _, w := range larguras[:len(larguras)-1] {
		resto += w
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(resto, 8, tr(rotulo), "1", 0, "R", false, 0, "")
	pdf.CellFormat(larguras[len(larguras)-1], 8, valor, "1", 1, "R", false, 0, "")
}

func periodoLabel(inicio, fimExclusivo time.Time) string {
	fim := fimExclusivo.AddDate(0, 0, -1)
	return fmt.Sprintf("Período: %s a %s", inicio.Format("02/01/2006"), fim.Format("02/01/2006"))
}

func tipoLabel(tipo string) string {
	if tipo == models.TipoReceita {
		return "Receita"
	}
	return "Despesa"
}

// relatorioTransacoes lists the user's transactions in range, filtered by
// type (1 despesas, 2 receitas, 3 both). For mixed reports the total is the
// signed balance, matching the running-balance rules.
func (h *RelatorioHandler) relatorioTransacoes(userID uint, inicio, fimExclusivo time.Time, tipo string) (*gofpdf.Fpdf, error) {
	query := h.DB.Where("user_id = ? AND data >= ? AND data < ?", userID, inicio, fimExclusivo)
	if tipo != "3" {
		query = query.Where("tipo = ?", tipo)
	}

	var transacoes []models.Transacao
	if err := query.Order("data ASC, id ASC").Find(&transacoes).Error; err != nil {
		return nil, err
	}

	pdf, tr := novoPDF("Relatório de Transações", periodoLabel(inicio, fimExclusivo))
	larguras := []float64{30, 80, 30, 50}
	cabecalhoTabela(pdf, tr, []string{"Data", "Descrição", "Tipo", "Valor (R$)"}, larguras)

	var receitas, despesas int64
	for i := range transacoes {
		t := &transacoes[i]
		if t.Tipo == models.TipoReceita {
			receitas += t.ValorCentavos
		} else {
			despesas += t.ValorCentavos
		}
		pdf.CellFormat(larguras[0], 8, t.Data.Format("02/01/2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(larguras[1], 8, tr(t.Descricao), "1", 0, "L", false, 0, "")
		pdf.CellFormat(larguras[2], 8, tipoLabel(t.Tipo), "1", 0, "C", false, 0, "")
		pdf.CellFormat(larguras[3], 8, util.FormatCentavos(t.ValorCentavos), "1", 1, "R", false, 0, "")
	}

	switch tipo {
	case models.TipoReceita:
		linhaTotal(pdf, tr, "Total de receitas", larguras, util.FormatCentavos(receitas))
	case models.TipoDespesa:
		linhaTotal(pdf, tr, "Total de despesas", larguras, util.FormatCentavos(despesas))
	default:
		linhaTotal(pdf, tr, "Total de receitas", larguras, util.FormatCentavos(receitas))
		linhaTotal(pdf, tr, "Total de despesas", larguras, util.FormatCentavos(despesas))
		linhaTotal(pdf, tr, "Saldo", larguras, util.FormatCentavos(receitas-despesas))
	}
	return pdf, nil
}

// relatorioTransacaoCategoria lists the transactions linked to one category
// in range; each row carries the portion attributed to that category and the
// total sums those portions.
func (h *RelatorioHandler) relatorioTransacaoCategoria(userID uint, categoria models.Categoria, inicio, fimExclusivo time.Time) (*gofpdf.Fpdf, error) {
	var transacoes []models.Transacao
	if err := h.DB.Where("user_id = ? AND data >= ? AND data < ?", userID, inicio, fimExclusivo).
		Preload("Categorias").
		Order("data ASC, id ASC").
		Find(&transacoes).Error; err != nil {
		return nil, err
	}

	pdf, tr := novoPDF("Relatório de Transações por Categoria", periodoLabel(inicio, fimExclusivo))
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr("Categoria: "+categoria.Nome), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	larguras := []float64{30, 70, 30, 30, 30}
	cabecalhoTabela(pdf, tr, []string{"Data", "Descrição", "Tipo", "Total (R$)", "Na categoria"}, larguras)

	var total int64
	for i := range transacoes {
		t := &transacoes[i]
		var naCategoria int64
		var vinculada bool
		for _, link := range t.Categorias {
			if link.CategoriaID == categoria.ID {
				naCategoria += link.ValorCentavos
				vinculada = true
			}
		}
		if !vinculada {
			continue
		}
		total += naCategoria
		pdf.CellFormat(larguras[0], 8, t.Data.Format("02/01/2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(larguras[1], 8, tr(t.Descricao), "1", 0, "L", false, 0, "")
		pdf.CellFormat(larguras[2], 8, tipoLabel(t.Tipo), "1", 0, "C", false, 0, "")
		pdf.CellFormat(larguras[3], 8, util.FormatCentavos(t.ValorCentavos), "1", 0, "R", false, 0, "")
		pdf.CellFormat(larguras[4], 8, util.FormatCentavos(naCategoria), "1", 1, "R", false, 0, "")
	}

	linhaTotal(pdf, tr, "Total na categoria", larguras, util.FormatCentavos(total))
	return pdf, nil
}

// relatorioGastosCategoria sums link values per category over the range.
func (h *RelatorioHandler) relatorioGastosCategoria(userID uint, inicio, fimExclusivo time.Time) (*gofpdf.Fpdf, error) {
	var transacoes []models.Transacao
	if err := h.DB.Where("user_id = ? AND data >= ? AND data < ?", userID, inicio, fimExclusivo).
		Preload("Categorias").
		Find(&transacoes).Error; err != nil {
		return nil, err
	}

	var categorias []models.Categoria
	if err := h.DB.Where("user_id = ?", userID).Find(&categorias).Error; err != nil {
		return nil, err
	}
	nomes := make(map[uint]string, len(categorias))
	for _, cat := range categorias {
		nomes[cat.ID] = cat.Nome
	}

	var links []models.CategoriaTransacao
	for i := range transacoes {
		links = append(links, transacoes[i].Categorias...)
	}
	totais := somaPorCategoria(links, nomes)

	pdf, tr := novoPDF("Relatório de Totais por Categoria", periodoLabel(inicio, fimExclusivo))
	larguras := []float64{120, 70}
	cabecalhoTabela(pdf, tr, []string{"Categoria", "Total (R$)"}, larguras)

	var total int64
	for _, t := range totais {
		total += t.Centavos
		pdf.CellFormat(larguras[0], 8, tr(t.Nome), "1", 0, "L", false, 0, "")
		pdf.CellFormat(larguras[1], 8, util.FormatCentavos(t.Centavos), "1", 1, "R", false, 0, "")
	}

	linhaTotal(pdf, tr, "Total geral", larguras, util.FormatCentavos(total))
	return pdf, nil
}
