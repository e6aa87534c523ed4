package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

// AccessCodeRepository keeps access codes in a Store.
type AccessCodeRepository struct {
	store *Store
}

// NewAccessCodeRepository creates a new repository for access codes.
func NewAccessCodeRepository(store *Store) *AccessCodeRepository {
	return &AccessCodeRepository{store: store}
}

var _ portsrepo.AccessCodeRepositoryFacade = (*AccessCodeRepository)(nil)

func (r *AccessCodeRepository) SaveAccessCode(ctx context.Context, code domain.AccessCode) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.codes[code.Code]; exists {
		return fmt.Errorf("%w: access code %s already exists", apperrors.ErrDuplicate, code.Code)
	}
	r.store.codes[code.Code] = code
	r.store.codeOrder = prepend(r.store.codeOrder, code.Code)
	return nil
}

func (r *AccessCodeRepository) UpdateAccessCode(ctx context.Context, code domain.AccessCode) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.codes[code.Code]; !ok {
		return fmt.Errorf("%w: access code %s", apperrors.ErrNotFound, code.Code)
	}
	r.store.codes[code.Code] = code
	return nil
}

func (r *AccessCodeRepository) FindAccessCode(ctx context.Context, code string) (*domain.AccessCode, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.find(code)
}

func (r *AccessCodeRepository) FindAccessCodeForUpdate(ctx context.Context, code string) (*domain.AccessCode, error) {
	if !r.store.inTx(ctx) {
		return nil, fmt.Errorf("FindAccessCodeForUpdate requires a transaction scope")
	}
	return r.find(code)
}

func (r *AccessCodeRepository) find(code string) (*domain.AccessCode, error) {
	c, ok := r.store.codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: access code %s", apperrors.ErrNotFound, code)
	}
	return &c, nil
}

func (r *AccessCodeRepository) ListAccessCodes(ctx context.Context) ([]domain.AccessCode, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	codes := make([]domain.AccessCode, 0, len(r.store.codeOrder))
	for _, c := range r.store.codeOrder {
		codes = append(codes, r.store.codes[c])
	}
	return codes, nil
}
