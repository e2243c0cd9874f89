package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
)

// SyncWorker mirrors transaction events into a spreadsheet.
type SyncWorker struct {
	mirror sheets.TransactionMirror

	processed atomic.Int64
	failed    atomic.Int64
}

func NewSyncWorker(mirror sheets.TransactionMirror) *SyncWorker {
	return &SyncWorker{mirror: mirror}
}

// HandleEvent applies one event. Returning an error makes the consumer
// requeue the delivery, so every branch must be idempotent.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"event_kind", ev.Kind,
		"transaction_id", ev.ID,
		"timestamp", ev.Timestamp)

	var err error
	switch ev.Kind {
	case amqp.EventCreated:
		var ref string
		ref, err = w.mirror.AppendTransaction(ctx, *ev.Transaction)
		if err == nil {
			slog.InfoContext(ctx, "Transaction mirrored", "transaction_id", ev.ID, "sheets_ref", ref)
		}
	case amqp.EventDeleted:
		err = w.mirror.RemoveTransaction(ctx, ev.ID)
	case amqp.EventCleared:
		err = w.mirror.Reset(ctx)
	default:
		// unknown kinds cannot succeed on retry
		slog.WarnContext(ctx, "Ignoring unknown event kind", "event_kind", ev.Kind)
		return nil
	}

	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("mirror %s event: %w", ev.Kind, err)
	}
	w.processed.Add(1)
	return nil
}

// StartupCheck prepares the mirror and logs how many rows it holds.
func (w *SyncWorker) StartupCheck(ctx context.Context) error {
	if h, ok := w.mirror.(interface{ EnsureHeader(context.Context) error }); ok {
		if err := h.EnsureHeader(ctx); err != nil {
			return fmt.Errorf("prepare mirror: %w", err)
		}
	}
	if l, ok := w.mirror.(sheets.TransactionLister); ok {
		txs, err := l.ListTransactions(ctx)
		if err != nil {
			return fmt.Errorf("read mirror: %w", err)
		}
		slog.InfoContext(ctx, "Mirror startup check completed", "rows", len(txs))
	}
	return nil
}

// Stats returns the number of applied and failed events since start.
func (w *SyncWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
