// Package gormstore implements entity repositories on a relational database
// through gorm. Records are stored as JSON payloads, one table for all
// entity types, scoped by owner.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/repository"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver indicates an unsupported database driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// Record is one stored entity record.
type Record struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"not null;index:idx_owner_type;uniqueIndex:idx_import_key"`
	EntityType string `gorm:"not null;index:idx_owner_type;uniqueIndex:idx_import_key"`
	Position   int    `gorm:"not null;default:0;uniqueIndex:idx_import_key"`
	SourceID   string
	// BatchID is NULL for records not written by an import, so they never
	// collide on idx_import_key.
	BatchID   *string `gorm:"uniqueIndex:idx_import_key"`
	Payload   string  `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName pins the table name.
func (Record) TableName() string {
	return "ledger_records"
}

// Open connects to the database and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

// Repository stores the records of one entity type for one owner.
type Repository struct {
	db         *gorm.DB
	userID     string
	entityType entity.Type
}

// NewRepository creates a repository scoped to userID and entityType.
func NewRepository(db *gorm.DB, userID string, entityType entity.Type) *Repository {
	return &Repository{db: db, userID: userID, entityType: entityType}
}

// NewSet creates one repository per entity type for userID.
func NewSet(db *gorm.DB, userID string) repository.Set {
	set := make(repository.Set)
	for _, t := range entity.AllTypes() {
		set[t] = NewRepository(db, userID, t)
	}
	return set
}

// List returns the owner's records in insertion order.
func (r *Repository) List(ctx context.Context) ([]json.RawMessage, error) {
	var rows []Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_type = ?", r.userID, string(r.entityType)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.entityType, err)
	}

	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, json.RawMessage(row.Payload))
	}
	return out, nil
}

// Create inserts record. When key carries a batch the insert is conditional
// on batch, type and position, and a repeated key yields
// repository.ErrAlreadyImported.
func (r *Repository) Create(ctx context.Context, key repository.ImportKey, record json.RawMessage) error {
	if !json.Valid(record) {
		return fmt.Errorf("creating %s: record is not valid JSON", r.entityType)
	}

	row := Record{
		UserID:     r.userID,
		EntityType: string(r.entityType),
		Position:   key.Position,
		SourceID:   key.SourceID,
		Payload:    string(record),
	}

	if !key.Conditional() {
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("creating %s: %w", r.entityType, err)
		}
		return nil
	}

	batch := key.BatchID.String()
	row.BatchID = &batch

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("creating %s: %w", r.entityType, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrAlreadyImported
	}
	return nil
}

// Count returns the number of records the owner has for the entity type.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Record{}).
		Where("user_id = ? AND entity_type = ?", r.userID, string(r.entityType)).
		Count(&n).Error
	return n, err
}
