package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves the ledger downloads (CSV and XLSX).
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) loadTransacoes(userID uint) ([]models.Transacao, error) {
	var transacoes []models.Transacao
	err := h.DB.Where("user_id = ?", userID).
		Preload("Categorias.Categoria").
		Order("data DESC, id DESC").
		Find(&transacoes).Error
	return transacoes, err
}

func categoriasLabel(t *models.Transacao) string {
	nomes := make([]string, 0, len(t.Categorias))
	for _, link := range t.Categorias {
		nomes = append(nomes, link.Categoria.Nome)
	}
	return strings.Join(nomes, ", ")
}

// ExportCSV exports the user's transactions as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	transacoes, err := h.loadTransacoes(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transacoes_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel picks up accented characters
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Data", "Tipo", "Descrição", "Valor (R$)", "Categorias"})

	for i := range transacoes {
		t := &transacoes[i]
		writer.Write([]string{
			t.Data.Format("2006-01-02"),
			tipoLabel(t.Tipo),
			t.Descricao,
			util.FormatCentavos(t.ValorCentavos),
			categoriasLabel(t),
		})
	}
}

// ExportXLSX exports the user's transactions as an XLSX workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	transacoes, err := h.loadTransacoes(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	f := excelize.NewFile()
	sheetName := "Transações"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criar planilha.")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Data", "Tipo", "Descrição", "Valor (R$)", "Categorias"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range transacoes {
		t := &transacoes[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.Data.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), tipoLabel(t.Tipo))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), t.Descricao)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), util.FormatCentavos(t.ValorCentavos))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), categoriasLabel(t))
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transacoes_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao exportar planilha.")
	}
}
