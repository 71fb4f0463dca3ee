package cmd

import (
	"log/slog"

	httpin "orderflow/internal/adapters/in/http"
	kafkaout "orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/workflow"
	"orderflow/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot builds and owns the object graph: the registry with its
// built-in guards and effects (plus the Kafka webhook override when a broker
// is configured), the canonical transition table, the workflow service and
// the unit of work factory every handler shares.
type CompositionRoot struct {
	config           Config
	gormDB           *gorm.DB
	uowFactory       *postgres.GormUnitOfWorkFactory
	registry         *workflow.Registry
	workflowService  *workflow.TransitionService
	webhookPublisher *kafkaout.WebhookPublisher
	logger           *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := workflow.NewRegistry(logger)
	if err := workflow.RegisterBuiltins(registry, logger); err != nil {
		return nil, err
	}

	var publisher *kafkaout.WebhookPublisher
	if config.KafkaHost != "" {
		publisher = kafkaout.NewWebhookPublisher(
			[]string{config.KafkaHost}, config.KafkaOrderChangedTopic, logger)
		registry.ReplaceEffect(workflow.EffectEmitWebhook, publisher.PublishTransition)
	}

	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	workflowService, err := workflow.NewTransitionService(
		workflow.CanonicalTable(), registry, uowFactory, logger)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:           config,
		gormDB:           gormDB,
		uowFactory:       uowFactory,
		registry:         registry,
		workflowService:  workflowService,
		webhookPublisher: publisher,
		logger:           logger,
	}, nil
}

// Close releases resources held by outbound adapters.
func (c *CompositionRoot) Close() error {
	if c.webhookPublisher != nil {
		return c.webhookPublisher.Close()
	}
	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(
		c.workflowService,
		c.orderUoWFactory(),
		c.config.UseWorkflowEngine,
		c.logger,
	)
}

func (c *CompositionRoot) CreateBulkTransitionCommandHandler() commands.BulkTransitionCommandHandler {
	return commands.NewBulkTransitionCommandHandler(c.CreateTransitionOrderCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateGetOrderTimelineQueryHandler() queries.GetOrderTimelineQueryHandler {
	return queries.NewGetOrderTimelineQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStatusSummaryQueryHandler() queries.GetStatusSummaryQueryHandler {
	return queries.NewGetStatusSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateBulkTransitionCommandHandler(),
		c.CreateGetOrderTimelineQueryHandler(),
		c.CreateGetStatusSummaryQueryHandler(),
		c.workflowService,
		c.orderUoWFactory(),
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateGetStatusSummaryQueryHandler(), c.logger)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
