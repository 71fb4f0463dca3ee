package translogrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/translogrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/workflow"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TransitionLogRepositoryIntegrationTestSuite provides integration tests for the
// append-only audit log repository using PostgreSQL containers.
type TransitionLogRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *translogrepo.GormTransitionLogRepository
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&translogrepo.TransitionLogDTO{}))
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE transition_logs").Error)
	suite.repository = translogrepo.NewGormTransitionLogRepository(suite.db)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestAdd_ValidEntry_RoundTrips() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	entry := suite.createEntry(orderID, order.Pending, order.Paid, "mark_paid", "pay-1")

	err := suite.repository.Add(ctx, entry)
	suite.Require().NoError(err)

	found, err := suite.repository.FindByIdempotencyKey(ctx, orderID, "pay-1")
	suite.Require().NoError(err)

	suite.Equal(entry.ID(), found.ID())
	suite.Equal(orderID, found.OrderID())
	suite.Equal(order.Pending, found.FromState())
	suite.Equal(order.Paid, found.ToState())
	suite.Equal("ops@example.com", found.Actor())
	suite.Equal("integration", found.Note())
	suite.Equal("mark_paid", found.TransitionName())
	suite.Equal([]string{workflow.EffectCapturePayment, workflow.EffectSendEmail}, found.Effects())
	suite.Equal("pay-1", found.IdempotencyKey())
	suite.WithinDuration(entry.CreatedAt(), found.CreatedAt(), time.Millisecond)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestAdd_DuplicateIdempotencyKey_Fails() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	first := suite.createEntry(orderID, order.Pending, order.Paid, "mark_paid", "pay-1")
	suite.Require().NoError(suite.repository.Add(ctx, first))

	// Same order, same key: the unique index must reject the second row.
	duplicate := suite.createEntry(orderID, order.Pending, order.Paid, "mark_paid", "pay-1")
	err := suite.repository.Add(ctx, duplicate)
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, gorm.ErrDuplicatedKey)

	suite.assertLogCount(1)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestAdd_SameKeyDifferentOrders_BothStored() {
	ctx := context.Background()

	first := suite.createEntry(kernel.NewUUID(), order.Pending, order.Paid, "mark_paid", "pay-1")
	second := suite.createEntry(kernel.NewUUID(), order.Pending, order.Paid, "mark_paid", "pay-1")

	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	suite.assertLogCount(2)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestAdd_EmptyKeys_NeverCollide() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	// Unkeyed transitions map to NULL and stay outside the unique index.
	first := suite.createEntry(orderID, order.Pending, order.Paid, "mark_paid", "")
	second := suite.createEntry(orderID, order.Paid, order.Shipped, "ship", "")

	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	suite.assertLogCount(2)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestListForOrder_ReturnsOldestFirst() {
	ctx := context.Background()
	orderID := kernel.NewUUID()

	base := time.Now().UTC().Add(-time.Hour)
	steps := []struct {
		from order.Status
		to   order.Status
		name string
	}{
		{order.Pending, order.Paid, "mark_paid"},
		{order.Paid, order.Shipped, "ship"},
		{order.Shipped, order.Fulfilled, "fulfill"},
	}

	for i, step := range steps {
		entry, err := order.RestoreTransitionLog(
			kernel.NewUUID(),
			orderID,
			step.from,
			step.to,
			"ops@example.com",
			"",
			step.name,
			nil,
			"",
			base.Add(time.Duration(i)*time.Minute),
		)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.repository.Add(ctx, entry))
	}

	// An entry for an unrelated order must not leak into the timeline.
	other := suite.createEntry(kernel.NewUUID(), order.Pending, order.Paid, "mark_paid", "")
	suite.Require().NoError(suite.repository.Add(ctx, other))

	entries, err := suite.repository.ListForOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 3)

	suite.Equal("mark_paid", entries[0].TransitionName())
	suite.Equal("ship", entries[1].TransitionName())
	suite.Equal("fulfill", entries[2].TransitionName())
	suite.True(entries[0].CreatedAt().Before(entries[1].CreatedAt()))
	suite.True(entries[1].CreatedAt().Before(entries[2].CreatedAt()))
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestListForOrder_NoEntries_ReturnsEmptySlice() {
	entries, err := suite.repository.ListForOrder(context.Background(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestFindByIdempotencyKey_Missing_ReturnsNotFoundError() {
	_, err := suite.repository.FindByIdempotencyKey(context.Background(), kernel.NewUUID(), "never-used")
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *TransitionLogRepositoryIntegrationTestSuite) TestFindByIdempotencyKey_EmptyKey_Rejected() {
	_, err := suite.repository.FindByIdempotencyKey(context.Background(), kernel.NewUUID(), "")
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

// createEntry builds a valid audit record for the given order and key.
func (suite *TransitionLogRepositoryIntegrationTestSuite) createEntry(
	orderID kernel.UUID,
	from order.Status,
	to order.Status,
	name string,
	key string,
) *order.TransitionLog {
	entry, err := order.NewTransitionLog(
		kernel.NewUUID(),
		orderID,
		from,
		to,
		"ops@example.com",
		"integration",
		name,
		[]string{workflow.EffectCapturePayment, workflow.EffectSendEmail},
		key,
	)
	suite.Require().NoError(err)
	return entry
}

// assertLogCount verifies the number of audit records in the database.
func (suite *TransitionLogRepositoryIntegrationTestSuite) assertLogCount(expected int) {
	var count int64
	err := suite.db.Model(&translogrepo.TransitionLogDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestTransitionLogRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TransitionLogRepositoryIntegrationTestSuite))
}
