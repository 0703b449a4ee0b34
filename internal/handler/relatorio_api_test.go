package handler_test

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"fincontrol/internal/models"

	"github.com/gin-gonic/gin"
)

func TestGenerateRelatorioValidation(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")

	testCases := []struct {
		name   string
		path   string
		body   gin.H
		status int
	}{
		{
			name:   "unknown kind",
			path:   "/relatorio?tipo=inexistente",
			body:   gin.H{"dataInicio": "2024-01-01", "dataFim": "2024-01-31"},
			status: http.StatusBadRequest,
		},
		{
			name:   "inverted period",
			path:   "/relatorio?tipo=transacoes",
			body:   gin.H{"dataInicio": "2024-02-01", "dataFim": "2024-01-01", "tipoTransacao": "3"},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed date",
			path:   "/relatorio?tipo=transacoes",
			body:   gin.H{"dataInicio": "01/01/2024", "dataFim": "2024-01-31", "tipoTransacao": "3"},
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid transaction type",
			path:   "/relatorio?tipo=transacoes",
			body:   gin.H{"dataInicio": "2024-01-01", "dataFim": "2024-01-31", "tipoTransacao": "7"},
			status: http.StatusBadRequest,
		},
		{
			name:   "category report without category",
			path:   "/relatorio?tipo=transacaoCategoria",
			body:   gin.H{"dataInicio": "2024-01-01", "dataFim": "2024-01-31"},
			status: http.StatusBadRequest,
		},
		{
			name:   "category report with non-numeric category",
			path:   "/relatorio?tipo=transacaoCategoria",
			body:   gin.H{"dataInicio": "2024-01-01", "dataFim": "2024-01-31", "idCategoria": "abc"},
			status: http.StatusBadRequest,
		},
		{
			name:   "category report with unknown category",
			path:   "/relatorio?tipo=transacaoCategoria",
			body:   gin.H{"dataInicio": "2024-01-01", "dataFim": "2024-01-31", "idCategoria": "9999"},
			status: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		w := doJSON(t, r, http.MethodPost, tc.path, token, tc.body)
		if w.Code != tc.status {
			t.Errorf("%s: status = %d, want %d (body %s)", tc.name, w.Code, tc.status, w.Body.String())
		}
	}
}

// assertPDF decodes a report response body and checks the PDF magic bytes.
func assertPDF(t *testing.T, body string) {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		t.Fatalf("response is not valid base64: %v", err)
	}
	if !strings.HasPrefix(string(raw), "%PDF") {
		t.Fatalf("decoded payload is not a PDF (starts with %q)", string(raw[:min(8, len(raw))]))
	}
}

func TestGenerateRelatorioTransacoes(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	cat := createCategoria(t, r, token, "Salário")

	createTransacao(t, r, token, "Pagamento", "2024-01-15", models.TipoReceita, []gin.H{
		{"idCategoria": cat, "valor": 3500.00},
	})
	createTransacao(t, r, token, "Mercado", "2024-01-20", models.TipoDespesa, []gin.H{
		{"idCategoria": cat, "valor": 420.50},
	})

	w := doJSON(t, r, http.MethodPost, "/relatorio?tipo=transacoes", token, gin.H{
		"dataInicio":    "2024-01-01",
		"dataFim":       "2024-01-31",
		"tipoTransacao": "3",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", w.Code, w.Body.String())
	}
	assertPDF(t, w.Body.String())

	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "relatorio_transacoes") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestGenerateRelatorioTransacaoCategoria(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	cat := createCategoria(t, r, token, "Lazer")

	createTransacao(t, r, token, "Cinema", "2024-03-05", models.TipoDespesa, []gin.H{
		{"idCategoria": cat, "valor": 60.00},
	})

	w := doJSON(t, r, http.MethodPost, "/relatorio?tipo=transacaoCategoria", token, gin.H{
		"dataInicio":  "2024-03-01",
		"dataFim":     "2024-03-31",
		"idCategoria": fmt.Sprint(cat),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", w.Code, w.Body.String())
	}
	assertPDF(t, w.Body.String())
}

func TestGenerateRelatorioGastosCategoria(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	catA := createCategoria(t, r, token, "Casa")
	catB := createCategoria(t, r, token, "Saúde")

	createTransacao(t, r, token, "Contas", "2024-04-02", models.TipoDespesa, []gin.H{
		{"idCategoria": catA, "valor": 300.00},
		{"idCategoria": catB, "valor": 150.00},
	})

	w := doJSON(t, r, http.MethodPost, "/relatorio?tipo=gastosCategoria", token, gin.H{
		"dataInicio": "2024-04-01",
		"dataFim":    "2024-04-30",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", w.Code, w.Body.String())
	}
	assertPDF(t, w.Body.String())
}

// pdfContentStreams inflates every flate-compressed stream object of a PDF.
func pdfContentStreams(t *testing.T, raw []byte) [][]byte {
	t.Helper()

	var out [][]byte
	rest := raw
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		seg := rest[i+len("stream"):]
		for len(seg) > 0 && (seg[0] == '\r' || seg[0] == '\n') {
			seg = seg[1:]
		}
		j := bytes.Index(seg, []byte("endstream"))
		if j < 0 {
			break
		}
		if r, err := zlib.NewReader(bytes.NewReader(seg[:j])); err == nil {
			if inflated, err := io.ReadAll(r); err == nil {
				out = append(out, inflated)
			}
		}
		rest = seg[j:]
	}
	if len(out) == 0 {
		t.Fatal("no compressed streams found in PDF")
	}
	return out
}

// Core PDF fonts are cp1252, so "Relatório" must reach the page as the
// single byte 0xF3 for 'ó', never as the raw UTF-8 pair 0xC3 0xB3.
func TestGenerateRelatorioEncodesAccents(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	cat := createCategoria(t, r, token, "Educação")

	createTransacao(t, r, token, "Mensalidade do colégio", "2024-06-03", models.TipoDespesa, []gin.H{
		{"idCategoria": cat, "valor": 980.00},
	})

	w := doJSON(t, r, http.MethodPost, "/relatorio?tipo=transacoes", token, gin.H{
		"dataInicio":    "2024-06-01",
		"dataFim":       "2024-06-30",
		"tipoTransacao": "1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", w.Code, w.Body.String())
	}

	raw, err := base64.StdEncoding.DecodeString(w.Body.String())
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}

	var sawLatin1 bool
	for _, stream := range pdfContentStreams(t, raw) {
		if bytes.Contains(stream, []byte{0xC3, 0xB3}) || bytes.Contains(stream, []byte{0xC3, 0xA9}) {
			t.Fatal("content stream carries raw UTF-8 bytes, accents will render garbled")
		}
		// 0xF3 'ó' (Relatório, colégio), 0xE7 'ç' (Educação, Descrição)
		if bytes.Contains(stream, []byte{0xF3}) && bytes.Contains(stream, []byte{0xE7}) {
			sawLatin1 = true
		}
	}
	if !sawLatin1 {
		t.Error("no cp1252-encoded accented text found in any content stream")
	}
}

// dataFim is inclusive: a transaction dated exactly on dataFim must not
// make the report fail nor be filtered out, so same-day ranges work.
func TestGenerateRelatorioSingleDayPeriod(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	cat := createCategoria(t, r, token, "Diversos")

	createTransacao(t, r, token, "Único dia", "2024-05-10", models.TipoDespesa, []gin.H{
		{"idCategoria": cat, "valor": 25.00},
	})

	w := doJSON(t, r, http.MethodPost, "/relatorio?tipo=transacoes", token, gin.H{
		"dataInicio":    "2024-05-10",
		"dataFim":       "2024-05-10",
		"tipoTransacao": "1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("single-day report status = %d, body %s", w.Code, w.Body.String())
	}
	assertPDF(t, w.Body.String())
}
