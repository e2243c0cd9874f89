package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps an external copy of the ledger in step with
	// transaction events. Every method must be safe to replay.
	TransactionMirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		RemoveTransaction(ctx context.Context, id string) error
		Reset(ctx context.Context) error
	}

	// TransactionLister reads back the mirrored rows.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}
)
