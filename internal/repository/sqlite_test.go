package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/store"
	"github.com/shopspring/decimal"
)

func openEncrypted(t *testing.T, path, key string) (*db.DB, store.Store) {
	t.Helper()
	database, err := db.Open(path, key)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		t.Fatalf("RunMigrations: %v", err)
	}
	return database, store.NewSQLite(database)
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "billbook.db")

	database, st := openEncrypted(t, path, "secret")
	r := openRepo(t, st)

	c := domain.NewClient("Acme Ltd", "a@acme.com")
	if err := r.Clients.Add(ctx, c); err != nil {
		t.Fatalf("add client: %v", err)
	}
	inv := savedInvoice(c)
	if err := r.Invoices.Add(ctx, inv); err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if err := r.Settings.SetTheme(ctx, domain.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	database.Close()

	database, st = openEncrypted(t, path, "secret")
	defer database.Close()
	reopened := openRepo(t, st)

	clients := mustList(reopened.Clients.List(ctx))
	if len(clients) != 1 || clients[0].Name != "Acme Ltd" || !clients[0].CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("clients after reopen = %+v", clients)
	}
	loaded, err := reopened.Invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if !loaded.Total.Equal(decimal.NewFromInt(1100)) || loaded.ClientSnapshot.Name != "Acme Ltd" {
		t.Errorf("invoice after reopen = %+v", loaded)
	}
	if theme, _ := reopened.Settings.Theme(ctx); theme != domain.ThemeDark {
		t.Errorf("theme after reopen = %s, want dark", theme)
	}
}

func TestEncryptedStoreRejectsWrongKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "billbook.db")

	database, st := openEncrypted(t, path, "secret")
	r := openRepo(t, st)
	if err := r.Clients.Add(ctx, domain.NewClient("Acme Ltd", "a@acme.com")); err != nil {
		t.Fatalf("add client: %v", err)
	}
	database.Close()

	if wrong, err := db.Open(path, "guess"); err == nil {
		wrong.Close()
		t.Fatal("expected the wrong key to be rejected")
	}
}
