package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lingvocards/internal/database"
)

// Setting keys
const (
	SettingCSRFSecret = "csrf_secret"
)

// SettingsRepository stores small key/value settings that must survive restarts
type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key. A missing key yields "".
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	query := r.db.GetDialect().Upsert("settings",
		[]string{"setting_key", "setting_value"},
		[]string{"setting_key"},
		[]string{"setting_value"})
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetOrCreateSetting returns the stored value for key, storing generate()'s
// result first when there is none
func (r *SettingsRepository) GetOrCreateSetting(ctx context.Context, key string, generate func() (string, error)) (string, error) {
	value, err := r.GetSetting(ctx, key)
	if err != nil || value != "" {
		return value, err
	}

	value, err = generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate setting %s: %w", key, err)
	}

	insert := r.db.GetDialect().Upsert("settings", []string{"setting_key", "setting_value"}, []string{"setting_key"}, nil)
	if _, err := r.db.ExecContext(ctx, insert, key, value); err != nil {
		return "", fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	// another instance may have won the race
	return r.GetSetting(ctx, key)
}
