package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Auth.Secret = "test-secret-at-least-32-bytes-long!"
	cfg.Auth.AdminEmail = "admin@example.com"
	cfg.Auth.AdminPassword = "secret123"
	cfg.Storage.DSN = "file:" + filepath.Join(t.TempDir(), "di.db") + "?cache=shared&_fk=1"
	return cfg
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	container, err := NewContainer(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if err := container.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	return container
}

func TestContainerBootstrapSeedsAdmin(t *testing.T) {
	container := newTestContainer(t)

	admin, err := container.Users().FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if admin == nil {
		t.Fatal("expected the admin account to be seeded")
	}
	if !admin.IsAdmin() {
		t.Errorf("expected the admin role, got %q", admin.Role)
	}

	// Bootstrap is idempotent.
	if err := container.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
}

func TestContainerWiresCachedLayers(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()

	item, err := container.Items().Create(ctx, "Groceries", budget.Expense)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := container.Items().FetchByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got.Name != "Groceries" {
		t.Errorf("expected the created item, got %+v", got)
	}
}

func TestContainerHandlerServes(t *testing.T) {
	container := newTestContainer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	container.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
}

func TestContainerRejectsMissingSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Secret = ""

	if _, err := NewContainer(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a missing token secret")
	}
}
