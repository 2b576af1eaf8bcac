// Package postgres provides the GORM-based Unit of Work used by command
// handlers. Each UnitOfWork wraps at most one database transaction; the
// repositories it hands out run inside that transaction when one is active.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().Get(ctx, id)
//	...
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{})
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
// Command handlers receive the factory, never a unit of work, so every
// Handle call starts from a clean transaction state.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
//	if err != nil {
//	    log.Fatalf("open database: %v", err)
//	}
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create() // one per Handle call
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory wraps db. The pool is shared, transactions are not.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work. Instances must not be shared between
// goroutines.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one transaction and remembers which orders were
// written in it. Repositories obtained before Begin write straight to the
// pool; the ones obtained after Begin write inside the transaction.
//
// Tracked ids survive Commit so the caller can publish order-changed events
// for exactly the orders the transaction touched. Rollback forgets them.
//
// Example:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	repo := uow.OrderRepository()
//	o, err := repo.Get(ctx, orderID)
//	if err != nil {
//	    return err
//	}
//	if err := o.Cancel("out of stock", now); err != nil {
//	    return err
//	}
//	if err := repo.Update(ctx, o); err != nil {
//	    return err // errs.VersionIsInvalidError when another writer won
//	}
//	return uow.Commit(ctx)
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	tracked []kernel.UUID
}

// Begin starts a transaction bound to ctx. Calling it again while one is
// open is a no-op.
//
// Example:
//
//	if err := uow.Begin(ctx); err != nil {
//	    return fmt.Errorf("begin: %w", err)
//	}
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit returns gorm.ErrInvalidTransaction when no transaction is open.
// After a successful Commit the unit of work can Begin again.
//
// Example:
//
//	if err := uow.Commit(ctx); err != nil {
//	    return err
//	}
//	for _, id := range uow.Tracked() {
//	    logger.InfoContext(ctx, "order committed", "order_id", id)
//	}
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback returns gorm.ErrInvalidTransaction when no transaction is open,
// which is the normal case for a deferred rollback after Commit.
//
// Example:
//
//	defer func() { _ = uow.Rollback(ctx) }()
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.tracked = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// TrackAggregate is called by repositories for every written aggregate.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, _ any) {
	for _, existing := range uow.tracked {
		if existing.IsEqual(id) {
			return
		}
	}
	uow.tracked = append(uow.tracked, id)
}

// Tracked returns the ids of the orders written in this unit of work.
func (uow *GormUnitOfWork) Tracked() []kernel.UUID {
	return append([]kernel.UUID(nil), uow.tracked...)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
