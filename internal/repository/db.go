package repository

import (
	"context"

	"gorm.io/gorm"

	"salescrm/internal/domain"
)

type txKey struct{}

// DB hands out the request's transaction when one is open, the pool otherwise.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Gorm() *gorm.DB { return d.db }

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a database transaction. Repositories built on
// the same DB pick the transaction up from ctx.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.db.WithContext(ctx)
}

// Models lists every persisted type, for AutoMigrate.
func Models() []any {
	return []any{
		&userModel{},
		&domain.RefreshToken{},
		&domain.Account{},
		&domain.Contact{},
		&domain.Lead{},
		&domain.Opportunity{},
		&domain.Activity{},
		&domain.Workflow{},
	}
}

func owned(db *gorm.DB, ownerID string) *gorm.DB {
	return db.Where("owner_id = ?", ownerID)
}

func uniq(ids []*string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == nil || *id == "" {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	return out
}
