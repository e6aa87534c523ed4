package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// RunInTx runs fn inside one transaction scope. Repository calls made with the context
	// passed to fn take part in the scope; the scope commits if fn returns nil and rolls back
	// otherwise. Nested calls join the outer scope.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
