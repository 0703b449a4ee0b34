package handler_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"fincontrol/internal/config"
	"fincontrol/internal/database"
	"fincontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// seedAdminAndLogin provisions the admin account and returns its token.
func seedAdminAndLogin(t *testing.T, r *gin.Engine, db *gorm.DB) string {
	t.Helper()

	cfg := config.AdminConfig{
		Nome:  "Admin User",
		Email: "admin@example.com",
		Senha: "admin-senha-123",
	}
	if err := database.SeedAdmin(db, cfg, 4); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": cfg.Email,
		"senha": cfg.Senha,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("admin login returned empty token")
	}
	return token
}

func TestAdminRoutesForbiddenForRegularUser(t *testing.T) {
	r, _ := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")

	paths := []string{
		"/admin/usuarios",
		"/admin/categorias",
		"/admin/transacoes",
		"/admin/categoria-transacoes",
		"/admin/logs",
	}
	for _, path := range paths {
		w := doJSON(t, r, http.MethodGet, path, token, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", path, w.Code)
		}
	}
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	_, db := setupAPI(t)

	cfg := config.AdminConfig{Email: "admin@example.com", Senha: "admin-senha-123"}
	if err := database.SeedAdmin(db, cfg, 4); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := database.SeedAdmin(db, cfg, 4); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", cfg.Email).Count(&count)
	if count != 1 {
		t.Fatalf("admin user count = %d, want 1", count)
	}

	var admin models.User
	db.First(&admin, "email = ?", cfg.Email)
	if !admin.IsAdmin {
		t.Error("seeded user is not an admin")
	}
	if admin.SenhaHash == cfg.Senha || !strings.HasPrefix(admin.SenhaHash, "$2") {
		t.Error("admin password is not stored as a bcrypt hash")
	}
}

func TestAdminListingsSpanAllUsers(t *testing.T) {
	r, db := setupAPI(t)
	adminToken := seedAdminAndLogin(t, r, db)

	tokenA := registerAndLogin(t, r, "Alice", "alice@example.com")
	tokenB := registerAndLogin(t, r, "Bruno", "bruno@example.com")
	catA := createCategoria(t, r, tokenA, "Casa")
	catB := createCategoria(t, r, tokenB, "Carro")
	createTransacao(t, r, tokenA, "Contas", "2024-01-10", models.TipoDespesa, []gin.H{
		{"idCategoria": catA, "valor": 80.00},
	})
	createTransacao(t, r, tokenB, "Combustível", "2024-01-11", models.TipoDespesa, []gin.H{
		{"idCategoria": catB, "valor": 120.00},
	})

	w := doJSON(t, r, http.MethodGet, "/admin/usuarios", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list usuarios status = %d, body %s", w.Code, w.Body.String())
	}
	var usuarios []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &usuarios); err != nil {
		t.Fatalf("decode usuarios: %v", err)
	}
	if len(usuarios) != 3 { // admin + two regular users
		t.Errorf("got %d users, want 3", len(usuarios))
	}
	// the password hash must never reach the wire
	if strings.Contains(w.Body.String(), "$2") || strings.Contains(w.Body.String(), "senha") {
		t.Errorf("usuarios payload leaks credentials: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/admin/categorias", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list categorias status = %d", w.Code)
	}
	var categorias []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &categorias); err != nil {
		t.Fatalf("decode categorias: %v", err)
	}
	if len(categorias) != 2 {
		t.Errorf("got %d categories, want 2 (both users)", len(categorias))
	}

	w = doJSON(t, r, http.MethodGet, "/admin/transacoes", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list transacoes status = %d", w.Code)
	}
	var transacoes []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &transacoes); err != nil {
		t.Fatalf("decode transacoes: %v", err)
	}
	if len(transacoes) != 2 {
		t.Errorf("got %d transactions, want 2 (both users)", len(transacoes))
	}

	w = doJSON(t, r, http.MethodGet, "/admin/categoria-transacoes", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list links status = %d", w.Code)
	}
	var links []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &links); err != nil {
		t.Fatalf("decode links: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("got %d links, want 2", len(links))
	}
}

func TestAuditTruncatesLargeBodies(t *testing.T) {
	r, db := setupAPI(t)
	token := registerAndLogin(t, r, "Maria", "maria@example.com")

	// ~5KB payload, far past the audit cap; the request itself is rejected
	// but the trail still gets the truncated body
	doJSON(t, r, http.MethodPost, "/categorias", token, gin.H{
		"nome": strings.Repeat("x", 5000),
	})

	var entry models.AuditLog
	if err := db.Where("path = ?", "/categorias").Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("load audit entry: %v", err)
	}
	prefix := "POST /categorias "
	if !strings.HasPrefix(entry.Action, prefix+`{"nome":"xxx`) {
		t.Errorf("action lost the body: %.60q", entry.Action)
	}
	if len(entry.Action) > len(prefix)+2000 {
		t.Errorf("action length = %d, want at most %d", len(entry.Action), len(prefix)+2000)
	}
}

func TestAdminLogsRecordAuthenticatedRequests(t *testing.T) {
	r, db := setupAPI(t)
	adminToken := seedAdminAndLogin(t, r, db)

	token := registerAndLogin(t, r, "Maria", "maria@example.com")
	createCategoria(t, r, token, "Rastreada")

	w := doJSON(t, r, http.MethodGet, "/admin/logs", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list logs status = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	total, _ := data["total"].(float64)
	if total < 1 {
		t.Errorf("audit total = %v, want at least 1 entry", total)
	}
	items, _ := data["items"].([]interface{})
	if len(items) == 0 {
		t.Fatal("audit items are empty")
	}
	first, _ := items[0].(map[string]interface{})
	if first["method"] == "" || first["path"] == "" {
		t.Errorf("audit entry missing method/path: %v", first)
	}
}
