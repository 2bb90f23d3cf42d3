package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/store"
	"github.com/shopspring/decimal"
)

var fixedTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// sequentialIDs returns id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func openRepo(t *testing.T, st store.Store) *Repo {
	t.Helper()
	r, err := Open(context.Background(), st,
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(sequentialIDs()),
		WithDefaultCompany(domain.CompanyInfo{Name: "Default Co"}),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func savedInvoice(client *domain.Client) *domain.Invoice {
	inv := &domain.Invoice{
		InvoiceNumber: "INV-000001",
		Date:          "2026-03-01",
		DueDate:       "2026-03-15",
		Items: []domain.LineItem{
			{ID: "li-1", Description: "Design", Quantity: 2, Rate: decimal.NewFromInt(500)},
		},
		TaxRate: decimal.NewFromInt(10),
	}
	inv.SetClient(client)
	inv.SetTotals(decimal.NewFromInt(1000), decimal.NewFromInt(100), decimal.NewFromInt(1100))
	return inv
}

// failingStore fails every Set once armed
type failingStore struct {
	*store.Memory
	fail bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestAddClientAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := domain.NewClient("Acme", "a@acme.com")
	if err := r.Clients.Add(ctx, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if !c.CreatedAt.Equal(fixedTime) {
		t.Fatalf("expected CreatedAt %v, got %v", fixedTime, c.CreatedAt)
	}

	clients, _ := r.Clients.List(ctx)
	if len(clients) != 1 || clients[0].ID != c.ID || clients[0].Name != "Acme" {
		t.Fatalf("client not listed: %+v", clients)
	}
}

func TestAddClientUsesUUIDByDefault(t *testing.T) {
	ctx := context.Background()
	r, err := Open(ctx, store.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	a := domain.NewClient("A", "a@example.com")
	b := domain.NewClient("B", "b@example.com")
	_ = r.Clients.Add(ctx, a)
	_ = r.Clients.Add(ctx, b)

	if len(a.ID) != 36 || a.ID == b.ID {
		t.Fatalf("expected distinct uuids, got %q and %q", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}
}

func TestAddClientRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r := openRepo(t, st)

	if err := r.Clients.Add(ctx, domain.NewClient("", "a@acme.com")); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, ok, _ := st.Get(ctx, "clients"); ok {
		t.Fatalf("invalid client should not be persisted")
	}
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r := openRepo(t, st)

	svc := domain.NewService("Logo", decimal.NewFromInt(1500))
	if err := r.Services.Add(ctx, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, ok, _ := st.Get(ctx, "services")
	if !ok {
		t.Fatalf("services not persisted on add")
	}
	var stored []domain.Service
	if err := json.Unmarshal(raw, &stored); err != nil || len(stored) != 1 {
		t.Fatalf("unexpected stored services %s (%v)", raw, err)
	}

	if err := r.Services.Delete(ctx, svc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _, _ = st.Get(ctx, "services")
	if string(raw) != "[]" {
		t.Fatalf("expected empty array after delete, got %s", raw)
	}
}

func TestUpdateEmptyPatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r := openRepo(t, st)

	c := domain.NewClient("Acme", "a@acme.com")
	c.Phone = "555"
	_ = r.Clients.Add(ctx, c)

	before, _, _ := st.Get(ctx, "clients")

	got, err := r.Clients.Update(ctx, c.ID, domain.ClientPatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *c {
		t.Fatalf("record changed: %+v -> %+v", c, got)
	}

	after, _, _ := st.Get(ctx, "clients")
	if !bytes.Equal(before, after) {
		t.Fatalf("stored bytes changed:\n%s\n%s", before, after)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := domain.NewClient("Acme", "a@acme.com")
	c.Address = "1 Road"
	_ = r.Clients.Add(ctx, c)

	phone := "555-1234"
	got, err := r.Clients.Update(ctx, c.ID, domain.ClientPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phone != phone || got.Address != "1 Road" || got.Name != "Acme" {
		t.Fatalf("shallow merge lost fields: %+v", got)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("CreatedAt changed on update")
	}
}

func TestUpdateInvalidPatchRollsBack(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := domain.NewClient("Acme", "a@acme.com")
	_ = r.Clients.Add(ctx, c)

	bad := "nope"
	if _, err := r.Clients.Update(ctx, c.ID, domain.ClientPatch{Email: &bad}); err == nil {
		t.Fatalf("expected validation error")
	}

	got, _ := r.Clients.Get(ctx, c.ID)
	if got.Email != "a@acme.com" {
		t.Fatalf("invalid patch was kept: %+v", got)
	}
}

func TestNotFoundIsSignalled(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	name := "x"
	if _, err := r.Clients.Update(ctx, "missing", domain.ClientPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Update, got %v", err)
	}
	if err := r.Services.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Delete, got %v", err)
	}
	if _, err := r.Invoices.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r := openRepo(t, st)

	c := domain.NewClient("Acme Ltd", "a@acme.com")
	c.Address = "12 Long Street"
	_ = r.Clients.Add(ctx, c)

	s := domain.NewService("Hosting", decimal.RequireFromString("19.99"))
	s.Description = "Monthly"
	_ = r.Services.Add(ctx, s)

	inv := savedInvoice(c)
	if err := r.Invoices.Add(ctx, inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened := openRepo(t, st)

	for _, tc := range []struct {
		name string
		a, b any
	}{
		{"clients", mustList(r.Clients.List(ctx)), mustList(reopened.Clients.List(ctx))},
		{"services", mustList(r.Services.List(ctx)), mustList(reopened.Services.List(ctx))},
		{"invoices", mustList(r.Invoices.List(ctx)), mustList(reopened.Invoices.List(ctx))},
	} {
		want, _ := json.Marshal(tc.a)
		got, _ := json.Marshal(tc.b)
		if !bytes.Equal(want, got) {
			t.Fatalf("%s did not round trip:\nwant %s\ngot  %s", tc.name, want, got)
		}
	}

	loaded, _ := reopened.Invoices.Get(ctx, inv.ID)
	if !loaded.Total.Equal(decimal.NewFromInt(1100)) || loaded.ClientSnapshot.Name != "Acme Ltd" {
		t.Fatalf("invoice fields lost: %+v", loaded)
	}
}

func mustList[T any](items []T, err error) []T {
	if err != nil {
		panic(err)
	}
	return items
}

func TestDeletingClientKeepsInvoiceSnapshot(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := domain.NewClient("Acme", "a@acme.com")
	c.Address = "1 Road"
	_ = r.Clients.Add(ctx, c)

	inv := savedInvoice(c)
	_ = r.Invoices.Add(ctx, inv)

	newName := "Acme Renamed"
	_, _ = r.Clients.Update(ctx, c.ID, domain.ClientPatch{Name: &newName})
	if err := r.Clients.Delete(ctx, c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.Invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.ClientSnapshot{Name: "Acme", Email: "a@acme.com", Address: "1 Road"}
	if got.ClientSnapshot != want {
		t.Fatalf("snapshot changed: %+v", got.ClientSnapshot)
	}
	if got.ClientID != c.ID {
		t.Fatalf("client reference should be kept, got %q", got.ClientID)
	}
}

func TestInvoiceAddDefaultsUnpaidAndStatusUpdate(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := &domain.Client{ID: "c1", Name: "Acme", Email: "a@acme.com"}
	inv := savedInvoice(c)
	_ = r.Invoices.Add(ctx, inv)

	if inv.Status != domain.InvoiceStatusUnpaid {
		t.Fatalf("expected Unpaid, got %q", inv.Status)
	}

	paid := domain.InvoiceStatusPaid
	got, err := r.Invoices.Update(ctx, inv.ID, domain.InvoicePatch{Status: &paid})
	if err != nil || got.Status != domain.InvoiceStatusPaid {
		t.Fatalf("status update failed: %v %+v", err, got)
	}

	bogus := domain.InvoiceStatus("Overdue")
	if _, err := r.Invoices.Update(ctx, inv.ID, domain.InvoicePatch{Status: &bogus}); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestFailedWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Memory: store.NewMemory()}
	r := openRepo(t, st)

	c := domain.NewClient("Acme", "a@acme.com")
	_ = r.Clients.Add(ctx, c)

	st.fail = true

	if err := r.Clients.Add(ctx, domain.NewClient("Beta", "b@beta.com")); err == nil {
		t.Fatalf("expected write error")
	}
	name := "Changed"
	if _, err := r.Clients.Update(ctx, c.ID, domain.ClientPatch{Name: &name}); err == nil {
		t.Fatalf("expected write error")
	}
	if err := r.Clients.Delete(ctx, c.ID); err == nil {
		t.Fatalf("expected write error")
	}

	clients, _ := r.Clients.List(ctx)
	if len(clients) != 1 || clients[0].Name != "Acme" {
		t.Fatalf("memory diverged from store: %+v", clients)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	c := &domain.Client{ID: "c1", Name: "Acme", Email: "a@acme.com"}
	_ = r.Invoices.Add(ctx, savedInvoice(c))

	list, _ := r.Invoices.List(ctx)
	list[0].Items[0].Quantity = 99
	list[0].Notes = "mutated"

	again, _ := r.Invoices.List(ctx)
	if again[0].Items[0].Quantity != 2 || again[0].Notes != "" {
		t.Fatalf("List exposed internal state: %+v", again[0])
	}
}

func TestOpenMissingKeysLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	clients, _ := r.Clients.List(ctx)
	if clients == nil || len(clients) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", clients)
	}

	info, err := r.Settings.Company(ctx)
	if err != nil || info.Name != "Default Co" {
		t.Fatalf("expected default company, got %+v (%v)", info, err)
	}

	draft, err := r.Settings.Draft(ctx)
	if err != nil || draft != nil {
		t.Fatalf("expected no draft, got %+v (%v)", draft, err)
	}
}

func TestOpenCorruptDataFailsLoudly(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{"clients", "services", "invoices", "company", "invoice_draft", "theme"} {
		t.Run(key, func(t *testing.T) {
			st := store.NewMemory()
			_ = st.Set(ctx, key, []byte(`{not json`))

			_, err := Open(ctx, st)
			if !errors.Is(err, ErrCorruptData) {
				t.Fatalf("expected ErrCorruptData, got %v", err)
			}
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r, err := Open(ctx, st, WithKeys(DefaultKeys("bb_")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_ = r.Clients.Add(ctx, domain.NewClient("Acme", "a@acme.com"))
	if _, ok, _ := st.Get(ctx, "bb_clients"); !ok {
		t.Fatalf("expected prefixed key")
	}
}

func TestThemeAcceptsBareLiteral(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_ = st.Set(ctx, "theme", []byte("dark"))
	r := openRepo(t, st)

	theme, err := r.Settings.Theme(ctx)
	if err != nil || theme != domain.ThemeDark {
		t.Fatalf("expected dark, got %q (%v)", theme, err)
	}

	next, err := r.Settings.ToggleTheme(ctx)
	if err != nil || next != domain.ThemeLight {
		t.Fatalf("expected light after toggle, got %q (%v)", next, err)
	}

	raw, _, _ := st.Get(ctx, "theme")
	if string(raw) != `"light"` {
		t.Fatalf("expected JSON string, got %s", raw)
	}
}

func TestCompanyIsReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	_ = r.Settings.SetCompany(ctx, domain.CompanyInfo{Name: "First", Email: "f@first.com", Website: "first.io"})
	if err := r.Settings.SetCompany(ctx, domain.CompanyInfo{Name: "Second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := r.Settings.Company(ctx)
	if got != (domain.CompanyInfo{Name: "Second"}) {
		t.Fatalf("expected wholesale replacement, got %+v", got)
	}

	if err := r.Settings.SetCompany(ctx, domain.CompanyInfo{}); err == nil {
		t.Fatalf("expected error for nameless company")
	}
}

func TestDraftSaveAndClear(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, store.NewMemory())

	draft := &domain.Invoice{InvoiceNumber: "INV-1", Items: []domain.LineItem{{ID: "a", Quantity: 1}}}
	if err := r.Settings.SaveDraft(ctx, draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.Settings.Draft(ctx)
	if err != nil || got == nil || got.InvoiceNumber != "INV-1" || len(got.Items) != 1 {
		t.Fatalf("draft not restored: %+v (%v)", got, err)
	}

	if err := r.Settings.ClearDraft(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := r.Settings.Draft(ctx); got != nil {
		t.Fatalf("draft still present after clear")
	}
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	r := openRepo(t, st)

	c := domain.NewClient("Acme", "a@acme.com")
	_ = r.Clients.Add(ctx, c)
	_ = r.Invoices.Add(ctx, savedInvoice(c))
	_ = r.Settings.SetTheme(ctx, domain.ThemeDark)

	if err := r.ResetAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Clients.Count() != 0 || r.Invoices.Count() != 0 {
		t.Fatalf("collections not cleared")
	}
	keys, _ := st.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got keys %v", keys)
	}
}
