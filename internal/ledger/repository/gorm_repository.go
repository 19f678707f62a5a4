package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// GormLedgerRepository implements LedgerRepository on a relational database.
// Each mutation runs in one transaction holding a row lock on the item.
type GormLedgerRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormLedgerRepository creates a new GORM ledger repository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db, now: time.Now}
}

// AutoMigrate creates or updates the catalog and ledger tables
func (r *GormLedgerRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockItem{}, &domain.LedgerEntry{})
}

func (r *GormLedgerRepository) CreateItem(ctx context.Context, item *domain.StockItem, entry *domain.LedgerEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.StockItem{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateItem, item.Name)
		}

		now := r.now()
		item.CreatedAt = now
		item.UpdatedAt = now
		if err := tx.Create(item).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", domain.ErrDuplicateItem, item.Name)
			}
			return err
		}

		entry.Timestamp = now
		return tx.Create(entry).Error
	})
	return translate(err)
}

func (r *GormLedgerRepository) ApplyUsage(ctx context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockItem(tx, entry.ItemName, &item); err != nil {
			return err
		}
		if !item.CanConsume(entry.Quantity) {
			return insufficient(item, entry.Quantity)
		}

		now := r.now()
		// The guard re-checks remaining in the same statement so a stale
		// read can never authorize usage.
		result := tx.Model(&domain.StockItem{}).
			Where("id = ? AND total_stock - used >= ?", item.ID, entry.Quantity).
			Updates(map[string]interface{}{
				"used":       gorm.Expr("used + ?", entry.Quantity),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return insufficient(item, entry.Quantity)
		}

		item.Used += entry.Quantity
		item.UpdatedAt = now
		entry.Timestamp = now
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *GormLedgerRepository) ApplyRestock(ctx context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockItem(tx, entry.ItemName, &item); err != nil {
			return err
		}
		if !item.CanRestock(entry.Quantity) {
			return overflow(item, entry.Quantity)
		}

		now := r.now()
		err := tx.Model(&domain.StockItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"total_stock": gorm.Expr("total_stock + ?", entry.Quantity),
				"updated_at":  now,
			}).Error
		if err != nil {
			return err
		}

		item.TotalStock += entry.Quantity
		item.UpdatedAt = now
		entry.Timestamp = now
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *GormLedgerRepository) FindItem(ctx context.Context, name string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
		}
		return nil, translate(err)
	}
	return &item, nil
}

func (r *GormLedgerRepository) ListItems(ctx context.Context) ([]domain.StockItem, error) {
	var items []domain.StockItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *GormLedgerRepository) ListEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

func (r *GormLedgerRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return translate(err)
	}
	return translate(sqlDB.PingContext(ctx))
}

// lockItem loads the item row with SELECT ... FOR UPDATE
func lockItem(tx *gorm.DB, name string, item *domain.StockItem) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
	}
	return err
}

func insufficient(item domain.StockItem, requested int) error {
	return fmt.Errorf("%w: %q has %d remaining, %d requested",
		domain.ErrInsufficientStock, item.Name, item.Remaining(), requested)
}

func overflow(item domain.StockItem, requested int) error {
	return fmt.Errorf("%w: restocking %q by %d would overflow total stock %d",
		domain.ErrInvalidQuantity, item.Name, requested, item.TotalStock)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// translate passes caller errors through and marks everything else as a storage fault
func translate(err error) error {
	if err == nil || domain.IsCallerError(err) {
		return err
	}
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
