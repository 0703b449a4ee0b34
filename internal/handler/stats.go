package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"fincontrol/internal/middleware"
	"fincontrol/internal/models"
	"fincontrol/internal/util"

	"github.com/gin-gonic/gin"
)

// Dashboard aggregations. Everything is recomputed from the stored
// transactions on every call; there is no cache to invalidate.

// monthlyTotals buckets transactions of one calendar year by month and
// type. Months without activity stay at zero.
func monthlyTotals(transacoes []models.Transacao, ano int) (receitas, despesas [12]int64) {
	for i := range transacoes {
		t := &transacoes[i]
		if t.Data.Year() != ano {
			continue
		}
		m := int(t.Data.Month()) - 1
		switch t.Tipo {
		case models.TipoReceita:
			receitas[m] += t.ValorCentavos
		case models.TipoDespesa:
			despesas[m] += t.ValorCentavos
		}
	}
	return receitas, despesas
}

// categoriaTotal is one row of the per-category aggregation.
type categoriaTotal struct {
	CategoriaID uint
	Nome        string
	Centavos    int64
}

// somaPorCategoria sums link values per category, regardless of transaction
// type. Categories without links are omitted. Rows come back ordered by
// category ID so output is deterministic.
func somaPorCategoria(links []models.CategoriaTransacao, nomes map[uint]string) []categoriaTotal {
	porCategoria := make(map[uint]int64)
	for i := range links {
		porCategoria[links[i].CategoriaID] += links[i].ValorCentavos
	}

	totais := make([]categoriaTotal, 0, len(porCategoria))
	for id, centavos := range porCategoria {
		totais = append(totais, categoriaTotal{
			CategoriaID: id,
			Nome:        nomes[id],
			Centavos:    centavos,
		})
	}
	sort.Slice(totais, func(i, j int) bool { return totais[i].CategoriaID < totais[j].CategoriaID })
	return totais
}

// saldoPonto is one point of the running balance series.
type saldoPonto struct {
	Data     string // YYYY-MM-DD
	Centavos int64
}

// saldoDiario walks the transactions in (data, id) order accumulating a
// signed balance: receitas add, despesas subtract. Same-day transactions
// collapse into one point carrying the day's final cumulative value, so
// identical inputs always produce identical output.
func saldoDiario(transacoes []models.Transacao) []saldoPonto {
	ordenadas := make([]models.Transacao, len(transacoes))
	copy(ordenadas, transacoes)
	sort.SliceStable(ordenadas, func(i, j int) bool {
		di, dj := ordenadas[i].Data, ordenadas[j].Data
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ordenadas[i].ID < ordenadas[j].ID
	})

	var pontos []saldoPonto
	var acumulado int64
	for i := range ordenadas {
		t := &ordenadas[i]
		if t.Tipo == models.TipoReceita {
			acumulado += t.ValorCentavos
		} else {
			acumulado -= t.ValorCentavos
		}

		dia := t.Data.Format("2006-01-02")
		if n := len(pontos); n > 0 && pontos[n-1].Data == dia {
			pontos[n-1].Centavos = acumulado
		} else {
			pontos = append(pontos, saldoPonto{Data: dia, Centavos: acumulado})
		}
	}
	return pontos
}

// ---------- endpoints ----------

// MonthlyIncomeExpense serves GET /transacoes/relacao-receitas-despesas-mensal.
func (h *TransacaoHandler) MonthlyIncomeExpense(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	ano := time.Now().Year()
	if anoStr := c.Query("ano"); anoStr != "" {
		parsed, err := strconv.Atoi(anoStr)
		if err != nil || parsed < 1900 || parsed > 9999 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Ano inválido.")
			return
		}
		ano = parsed
	}

	inicio := time.Date(ano, time.January, 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(1, 0, 0)

	var transacoes []models.Transacao
	if err := h.DB.Where("user_id = ? AND data >= ? AND data < ?", user.ID, inicio, fim).
		Find(&transacoes).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	receitasCent, despesasCent := monthlyTotals(transacoes, ano)
	receitas := make([]float64, 12)
	despesas := make([]float64, 12)
	for i := 0; i < 12; i++ {
		receitas[i] = util.CentavosToReais(receitasCent[i])
		despesas[i] = util.CentavosToReais(despesasCent[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"receitas": receitas,
		"despesas": despesas,
	})
}

// CategoryTotals serves GET /transacoes/valor-total-transacoes-categoria.
func (h *TransacaoHandler) CategoryTotals(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	links, nomes, ok := h.loadUserLinks(c, user.ID)
	if !ok {
		return
	}

	totais := somaPorCategoria(links, nomes)
	resp := make([]gin.H, 0, len(totais))
	for _, t := range totais {
		resp = append(resp, gin.H{
			"id":    t.CategoriaID,
			"nome":  t.Nome,
			"valor": util.CentavosToReais(t.Centavos),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DailyBalance serves GET /transacoes/saldo-diario.
func (h *TransacaoHandler) DailyBalance(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Não autenticado.")
		return
	}

	var transacoes []models.Transacao
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("data ASC, id ASC").
		Find(&transacoes).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return
	}

	pontos := saldoDiario(transacoes)
	resp := make([]gin.H, 0, len(pontos))
	for _, p := range pontos {
		resp = append(resp, gin.H{
			"data":  p.Data,
			"saldo": util.CentavosToReais(p.Centavos),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// loadUserLinks loads every category link of the user's transactions plus a
// category-ID to name map. Writes an error response and returns ok=false on
// failure.
func (h *TransacaoHandler) loadUserLinks(c *gin.Context, userID uint) ([]models.CategoriaTransacao, map[uint]string, bool) {
	var transacaoIDs []uint
	if err := h.DB.Model(&models.Transacao{}).
		Where("user_id = ?", userID).
		Pluck("id", &transacaoIDs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar transações.")
		return nil, nil, false
	}
	if len(transacaoIDs) == 0 {
		return nil, map[uint]string{}, true
	}

	var links []models.CategoriaTransacao
	if err := h.DB.Where("transacao_id IN ?", transacaoIDs).
		Find(&links).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categorias de transações.")
		return nil, nil, false
	}

	var categorias []models.Categoria
	if err := h.DB.Where("user_id = ?", userID).Find(&categorias).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao buscar categorias.")
		return nil, nil, false
	}
	nomes := make(map[uint]string, len(categorias))
	for _, cat := range categorias {
		nomes[cat.ID] = cat.Nome
	}
	return links, nomes, true
}
