package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fincontrol/internal/config"
	"fincontrol/internal/database"
	"fincontrol/internal/router"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// setupAPI builds a full router over a fresh in-memory database.
func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: testJWTSecret, ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 4}, // keep tests fast
	}
	return router.SetupRouter(cfg, db), db
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of the success envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	if envelope.Code != 0 {
		t.Fatalf("response code = %d, want 0 (body %s)", envelope.Code, w.Body.String())
	}
	return envelope.Data
}

// registerAndLogin creates a user through the API and returns its token.
func registerAndLogin(t *testing.T, r *gin.Engine, nome, email string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/usuarios/register", "", gin.H{
		"nome":  nome,
		"email": email,
		"senha": "senha-segura-123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": email,
		"senha": "senha-segura-123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	data := decodeData(t, w)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("login returned empty token")
	}
	return token
}

// createCategoria creates a category and returns its ID.
func createCategoria(t *testing.T, r *gin.Engine, token, nome string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/categorias", token, gin.H{"nome": nome})
	if w.Code != http.StatusOK {
		t.Fatalf("create categoria status = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	categoria, _ := data["categoria"].(map[string]interface{})
	id, _ := categoria["id"].(float64)
	if id == 0 {
		t.Fatalf("create categoria returned no id: %s", w.Body.String())
	}
	return uint(id)
}

// createTransacao posts a transaction with the given splits and returns its ID.
func createTransacao(t *testing.T, r *gin.Engine, token, descricao, data, tipo string, splits []gin.H) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/transacoes", token, gin.H{
		"transacao": gin.H{
			"descricao": descricao,
			"data":      data,
			"tipo":      tipo,
		},
		"categorias": splits,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create transacao status = %d, body %s", w.Code, w.Body.String())
	}
	payload := decodeData(t, w)
	transacao, _ := payload["transacao"].(map[string]interface{})
	id, _ := transacao["id"].(float64)
	if id == 0 {
		t.Fatalf("create transacao returned no id: %s", w.Body.String())
	}
	return uint(id)
}
