// Package gormledger is the Postgres-backed record store. Each slot is one
// row keyed by address bytes; create-exactly-once maps onto an insert with
// ON CONFLICT DO NOTHING, and every Execute runs in a serializable
// transaction so operations on shared addresses are totally ordered.
package gormledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"registryd/internal/addr"
	"registryd/internal/ledger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotModel struct {
	Address   []byte    `gorm:"type:bytea;primaryKey"`
	Value     []byte    `gorm:"type:bytea;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SlotModel) TableName() string {
	return "slots"
}

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to Postgres and ensures the slots table exists.
func Open(dsn string) (*Ledger, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(gdb)
}

func New(gdb *gorm.DB) (*Ledger, error) {
	if gdb == nil {
		return nil, errors.New("gorm db is required")
	}
	if err := gdb.AutoMigrate(&SlotModel{}); err != nil {
		return nil, fmt.Errorf("migrate slots: %w", err)
	}
	return &Ledger{db: gdb, now: time.Now}, nil
}

func (l *Ledger) Execute(ctx context.Context, op func(tx ledger.Tx) error) error {
	return l.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return op(&gormTx{db: gtx, now: l.now})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (l *Ledger) Read(ctx context.Context, a addr.Address) ([]byte, error) {
	var slot SlotModel
	err := l.db.WithContext(ctx).First(&slot, "address = ?", a[:]).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return slot.Value, nil
}

type gormTx struct {
	db  *gorm.DB
	now func() time.Time
}

func (tx *gormTx) CreateExclusive(a addr.Address, value []byte) error {
	now := tx.now().UTC()
	slot := SlotModel{
		Address:   append([]byte(nil), a[:]...),
		Value:     append([]byte(nil), value...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&slot)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrAddressOccupied
	}
	return nil
}

func (tx *gormTx) Get(a addr.Address) ([]byte, error) {
	var slot SlotModel
	err := tx.db.First(&slot, "address = ?", a[:]).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return slot.Value, nil
}

func (tx *gormTx) Put(a addr.Address, value []byte) error {
	res := tx.db.Model(&SlotModel{}).
		Where("address = ?", a[:]).
		Updates(map[string]any{
			"value":      append([]byte(nil), value...),
			"updated_at": tx.now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrNoRecord
	}
	return nil
}
