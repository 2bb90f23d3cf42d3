package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/store"
	"github.com/rs/zerolog"
)

// SettingsRepo reads and writes the singleton values directly against the store
type SettingsRepo struct {
	mu      sync.Mutex
	store   store.Store
	keys    Keys
	company domain.CompanyInfo
	log     zerolog.Logger
}

// Company returns the stored profile, or the default one when nothing is stored
func (r *SettingsRepo) Company(ctx context.Context) (domain.CompanyInfo, error) {
	var info domain.CompanyInfo
	ok, err := r.read(ctx, r.keys.Company, &info)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	if !ok {
		return r.company, nil
	}
	return info, nil
}

// SetCompany replaces the profile wholesale
func (r *SettingsRepo) SetCompany(ctx context.Context, info domain.CompanyInfo) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("invalid company: %w", err)
	}
	return r.write(ctx, r.keys.Company, info)
}

// Theme returns the stored theme, light when unset
func (r *SettingsRepo) Theme(ctx context.Context) (domain.Theme, error) {
	data, ok, err := r.store.Get(ctx, r.keys.Theme)
	if err != nil {
		return "", fmt.Errorf("failed to load theme: %w", err)
	}
	data = bytes.TrimSpace(data)
	if !ok || len(data) == 0 {
		return domain.ThemeLight, nil
	}

	// Accept both a JSON string and the bare literal
	raw := string(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		raw = s
	}

	theme, err := domain.ParseTheme(raw)
	if err != nil {
		return "", fmt.Errorf("%w: theme (key %q): %v", ErrCorruptData, r.keys.Theme, err)
	}
	return theme, nil
}

// SetTheme stores the theme preference
func (r *SettingsRepo) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	return r.write(ctx, r.keys.Theme, theme)
}

// ToggleTheme flips the stored theme and returns the new value
func (r *SettingsRepo) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	current, err := r.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := r.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Draft returns the in-progress invoice, or nil when there is none
func (r *SettingsRepo) Draft(ctx context.Context) (*domain.Invoice, error) {
	var draft domain.Invoice
	ok, err := r.read(ctx, r.keys.Draft, &draft)
	if err != nil || !ok {
		return nil, err
	}
	if draft.Items == nil {
		draft.Items = make([]domain.LineItem, 0)
	}
	return &draft, nil
}

// SaveDraft replaces the stored draft
func (r *SettingsRepo) SaveDraft(ctx context.Context, draft *domain.Invoice) error {
	return r.write(ctx, r.keys.Draft, draft)
}

// ClearDraft removes the stored draft
func (r *SettingsRepo) ClearDraft(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, r.keys.Draft); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

func (r *SettingsRepo) read(ctx context.Context, key string, v any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("stored value is not valid JSON")
		return false, fmt.Errorf("%w: key %q: %v", ErrCorruptData, key, err)
	}
	return true, nil
}

func (r *SettingsRepo) write(ctx context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	r.log.Debug().Str("key", key).Msg("persisted")
	return nil
}
