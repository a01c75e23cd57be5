// Package ledger maintains the capacity/available invariant for every stock
// kind. Each operation runs in exactly one database transaction and either
// applies completely or leaves state untouched. Concurrent operations on the
// same stock serialize through a conditional update on the stock row (stored
// kinds) or a row lock (derived kinds); operations on different stocks do not
// contend.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/history"
	"assettrack-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Assignee is the tagged holder of an assignment.
type Assignee struct {
	Kind models.AssigneeKind
	ID   uint
	Name string
}

type CheckoutOptions struct {
	Notes            string
	ExpectedReturnAt *time.Time
}

// Checkout grants quantity units of the stock to the assignee and opens an
// assignment. Fails with ErrInsufficientStock, without mutating anything,
// when fewer than quantity units are available; two concurrent checkouts can
// never jointly exceed availability.
func Checkout(kind models.StockKind, stockID uint, assignee Assignee, quantity int, opts CheckoutOptions) (*models.Assignment, error) {
	ks, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stock kind %q", ErrValidation, kind)
	}
	if !assignee.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown assignee kind %q", ErrValidation, assignee.Kind)
	}
	if assignee.ID == 0 {
		return nil, fmt.Errorf("%w: assignee_id is required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if ks.singleton && quantity != 1 {
		return nil, fmt.Errorf("%w: assets are checked out one at a time", ErrValidation)
	}

	assignment := &models.Assignment{
		StockKind:        kind,
		StockID:          stockID,
		AssigneeKind:     assignee.Kind,
		AssigneeID:       assignee.ID,
		AssigneeName:     assignee.Name,
		Quantity:         quantity,
		Notes:            opts.Notes,
		ExpectedReturnAt: opts.ExpectedReturnAt,
		OpenedAt:         time.Now(),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		switch {
		case ks.singleton:
			if err := deployAsset(tx, stockID); err != nil {
				return err
			}
		case ks.derived:
			if err := reserveSeats(tx, stockID, quantity); err != nil {
				return err
			}
		default:
			if err := reserveUnits(tx, ks, stockID, quantity); err != nil {
				return err
			}
		}

		if err := tx.Create(assignment).Error; err != nil {
			return storageErr("create assignment", err)
		}

		if ks.singleton {
			return history.Record(tx, history.RecordOptions{
				AssetID:      stockID,
				Action:       models.AssetEventCheckout,
				AssigneeKind: assignee.Kind,
				AssigneeID:   assignee.ID,
				AssigneeName: assignee.Name,
				Notes:        opts.Notes,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Checkin closes an open assignment and returns its units to the stock. A
// second checkin of the same assignment fails with ErrAlreadyClosed and must
// never re-credit availability.
func Checkin(assignmentID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var a models.Assignment
		if err := tx.First(&a, "id = ?", assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return storageErr("load assignment", err)
		}

		// Conditional close: only one of any number of concurrent checkins
		// can flip closed_at from NULL.
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND closed_at IS NULL", assignmentID).
			Update("closed_at", time.Now())
		if res.Error != nil {
			return storageErr("close assignment", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClosed
		}

		ks := kinds[a.StockKind]
		switch {
		case ks.singleton:
			if err := recallAsset(tx, a.StockID); err != nil {
				return err
			}
			return history.Record(tx, history.RecordOptions{
				AssetID:      a.StockID,
				Action:       models.AssetEventCheckin,
				AssigneeKind: a.AssigneeKind,
				AssigneeID:   a.AssigneeID,
				AssigneeName: a.AssigneeName,
			})
		case ks.derived:
			// Availability is recomputed from open assignments; closing the
			// row above is the whole effect.
			return nil
		default:
			return releaseUnits(tx, ks, a.StockID, a.Quantity)
		}
	})
}

// AdjustCapacity changes a stock's total unit count, shifting availability by
// the same delta. Rejected with ErrCapacityBelowAssigned when the stock has
// more units checked out than the new capacity.
func AdjustCapacity(kind models.StockKind, stockID uint, newCapacity int) error {
	ks, ok := kinds[kind]
	if !ok {
		return fmt.Errorf("%w: unknown stock kind %q", ErrValidation, kind)
	}
	if ks.singleton {
		return fmt.Errorf("%w: asset capacity is fixed at 1", ErrValidation)
	}
	if newCapacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", ErrValidation)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if ks.derived {
			var lic models.License
			if err := lockRow(tx).First(&lic, "id = ?", stockID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrStockNotFound
				}
				return storageErr("lock license", err)
			}
			open, err := openQuantity(tx, kind, stockID)
			if err != nil {
				return err
			}
			if newCapacity < open {
				return ErrCapacityBelowAssigned
			}
			if err := tx.Model(&lic).Update("seats", newCapacity).Error; err != nil {
				return storageErr("update seats", err)
			}
			return nil
		}

		// Single-statement compare-and-set: column references on the right
		// hand side evaluate against the pre-update row, so the WHERE guard
		// and the new available value both use the old capacity.
		res := tx.Table(ks.table).
			Where("id = ? AND available + ? - capacity >= 0", stockID, newCapacity).
			Updates(map[string]interface{}{
				"capacity":  newCapacity,
				"available": gorm.Expr("available + ? - capacity", newCapacity),
			})
		if res.Error != nil {
			return storageErr("adjust capacity", res.Error)
		}
		if res.RowsAffected == 0 {
			return classifyMiss(tx, ks.table, stockID, ErrCapacityBelowAssigned)
		}
		return nil
	})
}

// OpenQuantity returns the total units held by open assignments of a stock.
func OpenQuantity(kind models.StockKind, stockID uint) (int, error) {
	return openQuantity(database.DB, kind, stockID)
}

func reserveUnits(tx *gorm.DB, ks kindSpec, stockID uint, quantity int) error {
	res := tx.Table(ks.table).
		Where("id = ? AND available >= ?", stockID, quantity).
		UpdateColumn("available", gorm.Expr("available - ?", quantity))
	if res.Error != nil {
		return storageErr("reserve units", res.Error)
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, ks.table, stockID, ErrInsufficientStock)
	}
	return nil
}

func releaseUnits(tx *gorm.DB, ks kindSpec, stockID uint, quantity int) error {
	// The guard keeps available <= capacity even if rows were tampered with
	// outside the ledger.
	res := tx.Table(ks.table).
		Where("id = ? AND available + ? <= capacity", stockID, quantity).
		UpdateColumn("available", gorm.Expr("available + ?", quantity))
	if res.Error != nil {
		return storageErr("release units", res.Error)
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, ks.table, stockID, storageErr("release units", errCounterDrift))
	}
	return nil
}

var errCounterDrift = errors.New("available counter out of range for checkin")

func reserveSeats(tx *gorm.DB, licenseID uint, quantity int) error {
	var lic models.License
	if err := lockRow(tx).First(&lic, "id = ?", licenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockNotFound
		}
		return storageErr("lock license", err)
	}
	open, err := openQuantity(tx, models.StockLicense, licenseID)
	if err != nil {
		return err
	}
	if lic.Seats-open < quantity {
		return ErrInsufficientStock
	}
	return nil
}

func deployAsset(tx *gorm.DB, assetID uint) error {
	res := tx.Model(&models.Asset{}).
		Where("id = ? AND status = ?", assetID, models.AssetStatusReady).
		Update("status", models.AssetStatusDeployed)
	if res.Error != nil {
		return storageErr("deploy asset", res.Error)
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, "assets", assetID, ErrInsufficientStock)
	}
	return nil
}

func recallAsset(tx *gorm.DB, assetID uint) error {
	res := tx.Model(&models.Asset{}).
		Where("id = ? AND status = ?", assetID, models.AssetStatusDeployed).
		Update("status", models.AssetStatusReady)
	if res.Error != nil {
		return storageErr("recall asset", res.Error)
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, "assets", assetID, storageErr("recall asset", errCounterDrift))
	}
	return nil
}

func openQuantity(tx *gorm.DB, kind models.StockKind, stockID uint) (int, error) {
	var total int
	err := tx.Model(&models.Assignment{}).
		Where("stock_kind = ? AND stock_id = ? AND closed_at IS NULL", kind, stockID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storageErr("sum open assignments", err)
	}
	return total, nil
}

// classifyMiss decides why a conditional update touched no row: the stock is
// gone (ErrStockNotFound) or the guard rejected it (reject).
func classifyMiss(tx *gorm.DB, table string, stockID uint, reject error) error {
	var n int64
	if err := tx.Table(table).Where("id = ?", stockID).Count(&n).Error; err != nil {
		return storageErr("check stock existence", err)
	}
	if n == 0 {
		return ErrStockNotFound
	}
	return reject
}

// lockRow adds FOR UPDATE on dialects that support it. The SQLite test
// database runs with a single connection, which serializes writers anyway.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
