package postgres_test

import (
	"context"
	"testing"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/translogrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/core/workflow"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides comprehensive integration testing
// for the GORM-based Unit of Work implementation with real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &translogrepo.TransitionLogDTO{})
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
// Truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, transition_logs").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository(), "First instance should provide order repository")
	suite.NotNil(uow1.TransitionLogRepository(), "First instance should provide transition log repository")
	suite.NotNil(uow2.OrderRepository(), "Second instance should provide order repository")
	suite.NotNil(uow2.TransitionLogRepository(), "Second instance should provide transition log repository")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for invalid transaction operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_StatusAndLogCommitTogether verifies the engine's atomicity
// boundary: a status update and its audit record either both persist or
// neither does.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_StatusAndLogCommitTogether() {
	ctx := context.Background()

	testOrder := createTestOrder()
	initialUow := suite.factory.Create()
	suite.Require().NoError(initialUow.OrderRepository().Add(ctx, testOrder))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	locked, err := uow.OrderRepository().GetForUpdate(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(locked.ChangeStatus(order.Paid))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, locked))

	entry := createTestLog(testOrder.ID(), order.Pending, order.Paid, "pay-1")
	suite.Require().NoError(uow.TransitionLogRepository().Add(ctx, entry))

	suite.Require().NoError(uow.Commit(ctx))

	// Both the new status and the audit row are visible afterwards.
	verifyUow := suite.factory.Create()

	retrievedOrder, err := verifyUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Paid, retrievedOrder.Status())

	entries, err := verifyUow.TransitionLogRepository().ListForOrder(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("mark_paid", entries[0].TransitionName())
}

// TestUnitOfWork_RollbackDiscardsStatusAndLog verifies rollback undoes both the
// status update and the audit record.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsStatusAndLog() {
	ctx := context.Background()

	testOrder := createTestOrder()
	initialUow := suite.factory.Create()
	suite.Require().NoError(initialUow.OrderRepository().Add(ctx, testOrder))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	locked, err := uow.OrderRepository().GetForUpdate(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(locked.ChangeStatus(order.Paid))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, locked))

	entry := createTestLog(testOrder.ID(), order.Pending, order.Paid, "pay-1")
	suite.Require().NoError(uow.TransitionLogRepository().Add(ctx, entry))

	suite.Require().NoError(uow.Rollback(ctx))

	verifyUow := suite.factory.Create()

	retrievedOrder, err := verifyUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Pending, retrievedOrder.Status(), "Status change should not survive rollback")

	entries, err := verifyUow.TransitionLogRepository().ListForOrder(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Empty(entries, "Audit record should not survive rollback")
}

// TestUnitOfWork_LockContentionAcrossInstances verifies a second unit of work
// fails fast when the per-order lock is already held.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_LockContentionAcrossInstances() {
	ctx := context.Background()

	testOrder := createTestOrder()
	initialUow := suite.factory.Create()
	suite.Require().NoError(initialUow.OrderRepository().Add(ctx, testOrder))

	uow1 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))

	_, err := uow1.OrderRepository().GetForUpdate(ctx, testOrder.ID())
	suite.Require().NoError(err)

	uow2 := suite.factory.Create()
	suite.Require().NoError(uow2.Begin(ctx))

	_, err = uow2.OrderRepository().GetForUpdate(ctx, testOrder.ID())
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, workflow.ErrLockContention)

	suite.Require().NoError(uow2.Rollback(ctx))
	suite.Require().NoError(uow1.Rollback(ctx))

	// With the first transaction gone the lock is available again.
	uow3 := suite.factory.Create()
	suite.Require().NoError(uow3.Begin(ctx))
	_, err = uow3.OrderRepository().GetForUpdate(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(uow3.Rollback(ctx))
}

// TestUnitOfWork_DuplicateIdempotencyKeyFailsTransaction verifies the unique
// (order, key) index rejects a duplicate inside an open transaction and the
// rollback keeps the store consistent.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DuplicateIdempotencyKeyFailsTransaction() {
	ctx := context.Background()

	testOrder := createTestOrder()
	initialUow := suite.factory.Create()
	suite.Require().NoError(initialUow.OrderRepository().Add(ctx, testOrder))

	first := createTestLog(testOrder.ID(), order.Pending, order.Paid, "pay-1")
	suite.Require().NoError(initialUow.TransitionLogRepository().Add(ctx, first))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	duplicate := createTestLog(testOrder.ID(), order.Pending, order.Paid, "pay-1")
	err := uow.TransitionLogRepository().Add(ctx, duplicate)
	suite.Require().Error(err, "Duplicate (order, key) pair should be rejected")

	suite.Require().NoError(uow.Rollback(ctx))

	entries, err := initialUow.TransitionLogRepository().ListForOrder(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Len(entries, 1, "Only the first record should remain")
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder()
	order2 := createTestOrder()

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	// Each transaction should only see its own changes
	_, err := uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")

	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	_, err = uow2.OrderRepository().Get(ctx, order2.ID())
	suite.Require().NoError(err, "UOW2 should see order2")

	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see order1")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	// Verify only order1 persisted
	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")

	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work correctly
// without explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder()

	// Add order without beginning transaction (should auto-commit)
	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	retrievedOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())

	// Verify with new unit of work instance
	newUow := suite.factory.Create()
	retrievedOrder, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())
}

// createTestOrder creates a valid order for testing purposes.
func createTestOrder() *order.Order {
	id := kernel.NewUUID()
	total, _ := kernel.NewMoney(4999, "EUR")
	testOrder, _ := order.NewOrder(id, "customer@example.com", total)
	return testOrder
}

// createTestLog creates a valid audit record for testing purposes.
func createTestLog(orderID kernel.UUID, from, to order.Status, key string) *order.TransitionLog {
	entry, _ := order.NewTransitionLog(
		kernel.NewUUID(),
		orderID,
		from,
		to,
		"ops@example.com",
		"",
		"mark_paid",
		[]string{workflow.EffectCapturePayment},
		key,
	)
	return entry
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
