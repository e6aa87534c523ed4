package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

type txKey struct{}

// Store is an in-process backing store shared by the memory repositories.
// A single lock serialises transaction scopes and standalone calls; a failed scope is
// rolled back by restoring the snapshot taken when it began.
type Store struct {
	mu sync.Mutex

	accounts     map[string]domain.Account
	accountOrder []string
	records      []domain.LedgerRecord
	codes        map[string]domain.AccessCode
	codeOrder    []string
	tickets      map[string]domain.SupportTicket
	ticketOrder  []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		codes:    make(map[string]domain.AccessCode),
		tickets:  make(map[string]domain.SupportTicket),
	}
}

var _ portsrepo.TransactionManager = (*Store)(nil)

type snapshot struct {
	accounts     map[string]domain.Account
	accountOrder []string
	records      int
	codes        map[string]domain.AccessCode
	codeOrder    []string
	tickets      map[string]domain.SupportTicket
	ticketOrder  []string
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		accounts:     cloneMap(s.accounts),
		accountOrder: append([]string(nil), s.accountOrder...),
		records:      len(s.records),
		codes:        cloneMap(s.codes),
		codeOrder:    append([]string(nil), s.codeOrder...),
		tickets:      cloneMap(s.tickets),
		ticketOrder:  append([]string(nil), s.ticketOrder...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.accountOrder = snap.accountOrder
	s.records = s.records[:snap.records]
	s.codes = snap.codes
	s.codeOrder = snap.codeOrder
	s.tickets = snap.tickets
	s.ticketOrder = snap.ticketOrder
}

// RunInTx runs fn with the store locked. If fn fails every change it made is undone.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// acquire locks the store unless ctx already belongs to one of its transaction scopes.
func (s *Store) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.inTx(ctx) {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return cloneMap(m)
}

func prepend(order []string, id string) []string {
	return append([]string{id}, order...)
}
