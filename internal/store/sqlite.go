package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vmsgate/pkg/models"
)

// connectorRecord is the persisted row. The full connector config is kept
// as one JSON document so Save is a single atomic row replace.
type connectorRecord struct {
	ID        string `gorm:"primaryKey"`
	Document  []byte
	UpdatedAt time.Time
}

func (connectorRecord) TableName() string { return "connectors" }

// SQLiteStore implements Store using SQLite with GORM.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // Suppress SQL logs
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&connectorRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*models.ConnectorConfig, error) {
	var rec connectorRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(id)
	}
	if err != nil {
		return nil, models.NewPersistenceError("failed to load connector", err)
	}
	var cfg models.ConnectorConfig
	if err := json.Unmarshal(rec.Document, &cfg); err != nil {
		return nil, models.NewPersistenceError("stored connector document is corrupt", err)
	}
	return &cfg, nil
}

func (s *SQLiteStore) Save(ctx context.Context, cfg *models.ConnectorConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return models.NewPersistenceError("failed to encode connector", err)
	}
	rec := connectorRecord{ID: cfg.ID, Document: doc, UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return models.NewPersistenceError("failed to save connector", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&connectorRecord{}, "id = ?", id)
	if result.Error != nil {
		return models.NewPersistenceError("failed to delete connector", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.ConnectorConfig, error) {
	var recs []connectorRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, models.NewPersistenceError("failed to list connectors", err)
	}
	out := make([]*models.ConnectorConfig, 0, len(recs))
	for _, rec := range recs {
		var cfg models.ConnectorConfig
		if err := json.Unmarshal(rec.Document, &cfg); err != nil {
			return nil, models.NewPersistenceError("stored connector document is corrupt", err)
		}
		out = append(out, &cfg)
	}
	return out, nil
}
