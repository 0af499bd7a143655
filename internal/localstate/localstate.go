// Package localstate persists a terminal's store snapshot and device-local session
// values in a SQLite file, so a restart can render before the backend answers.
package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/georgemunganga/tablepos/internal/store"
)

// snapshotKey is the single row holding the whole store.
const snapshotKey = "pos-store"

// SessionKey names a device-local value. These never hold order or bill truth.
type SessionKey string

const (
	KeyActiveTable        SessionKey = "active_table"
	KeyCustomerPhone      SessionKey = "customer_phone"
	KeySubscriptionStatus SessionKey = "subscription_status"
	KeyStaffToken         SessionKey = "staff_token"
)

type snapshotRecord struct {
	Key       string `gorm:"primaryKey"`
	Version   uint64
	Payload   []byte
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string { return "snapshots" }

type sessionValue struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (sessionValue) TableName() string { return "session_values" }

// Local is the durable store of one terminal. It is the only writer of its file.
type Local struct {
	db *gorm.DB

	mu          sync.Mutex
	lastVersion uint64
}

// Open opens (or creates) the SQLite database at dsn and migrates it.
func Open(dsn string) (*Local, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}, &sessionValue{}); err != nil {
		return nil, fmt.Errorf("migrate local db: %w", err)
	}
	return &Local{db: db}, nil
}

// Close releases the underlying connection.
func (l *Local) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSnapshot writes snap unless a newer version has already been written.
func (l *Local) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if snap.Version != 0 && snap.Version <= l.lastVersion {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := snapshotRecord{Key: snapshotKey, Version: snap.Version, Payload: payload, UpdatedAt: time.Now()}
	err = l.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	l.lastVersion = snap.Version
	return nil
}

// LoadSnapshot returns the saved snapshot; ok is false when none was saved yet.
func (l *Local) LoadSnapshot(ctx context.Context) (snap store.Snapshot, ok bool, err error) {
	var rec snapshotRecord
	err = l.db.WithContext(ctx).First(&rec, "key = ?", snapshotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Snapshot{}, false, nil
	}
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(rec.Payload, &snap); err != nil {
		return store.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	l.mu.Lock()
	if snap.Version > l.lastVersion {
		l.lastVersion = snap.Version
	}
	l.mu.Unlock()
	return snap, true, nil
}

// SetSession stores a device-local value.
func (l *Local) SetSession(ctx context.Context, key SessionKey, value string) error {
	v := sessionValue{Key: string(key), Value: value, UpdatedAt: time.Now()}
	if err := l.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&v).Error; err != nil {
		return fmt.Errorf("set session %s: %w", key, err)
	}
	return nil
}

// Session reads a device-local value.
func (l *Local) Session(ctx context.Context, key SessionKey) (string, bool, error) {
	var v sessionValue
	err := l.db.WithContext(ctx).First(&v, "key = ?", string(key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session %s: %w", key, err)
	}
	return v.Value, true, nil
}

// ClearSession removes a device-local value.
func (l *Local) ClearSession(ctx context.Context, key SessionKey) error {
	return l.db.WithContext(ctx).Delete(&sessionValue{}, "key = ?", string(key)).Error
}
