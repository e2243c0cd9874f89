package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/assistant"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// EventPublisher announces ledger changes to other processes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService orchestrates the ledger, the derived views and event
// publishing. Publishing is best effort: a saved transaction is never
// rolled back because the broker is unavailable.
type TransactionService struct {
	store     *ledger.Store
	publisher EventPublisher
	assistant *assistant.Assistant
	logger    *log.StructuredLogger
}

type Option func(*TransactionService)

func WithPublisher(p EventPublisher) Option {
	return func(s *TransactionService) { s.publisher = p }
}

func WithAssistant(a *assistant.Assistant) Option {
	return func(s *TransactionService) { s.assistant = a }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TransactionService) { s.logger = log.NewStructuredLogger(l) }
}

func NewTransactionService(store *ledger.Store, opts ...Option) *TransactionService {
	s := &TransactionService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.assistant == nil {
		s.assistant = assistant.New(nil, nil)
	}
	if s.logger == nil {
		s.logger = log.NewStructuredLogger(log.New(log.DefaultConfig()))
	}
	return s
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.All(ctx)
}

// Create stores tx and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Add(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.logger.LogTransactionCreated(ctx, saved.ID, saved.Description,
		saved.Amount.StringFixed(2), string(saved.Type), string(saved.Category))

	s.publish(ctx, amqp.NewCreatedEvent(saved))
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewDeletedEvent(id))
	return nil
}

func (s *TransactionService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewClearedEvent())
	return nil
}

func (s *TransactionService) Financials(ctx context.Context) (core.Financials, error) {
	txs, err := s.store.All(ctx)
	if err != nil {
		return core.Financials{}, err
	}
	return core.ComputeFinancials(txs), nil
}

func (s *TransactionService) Insights(ctx context.Context) ([]string, error) {
	txs, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return insights.Generate(txs), nil
}

func (s *TransactionService) Overview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	txs, err := s.store.All(ctx)
	if err != nil {
		return core.MonthOverview{}, err
	}
	return core.Overview(txs, year, month), nil
}

// Ask answers a free-text question about the current transactions.
func (s *TransactionService) Ask(ctx context.Context, query string) (assistant.Reply, error) {
	txs, err := s.store.All(ctx)
	if err != nil {
		return assistant.Reply{}, err
	}
	reply := s.assistant.Respond(query, txs)
	slog.DebugContext(ctx, "Assistant replied", log.FieldIntent, reply.Intent)
	return reply, nil
}

func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		s.logger.LogError(ctx, "Failed to publish transaction event", err,
			log.ComponentAMQP, log.OpPublish,
			log.LogFields{log.FieldEventKind: string(ev.Kind), log.FieldTransactionID: ev.ID})
	}
}
