package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// Register creates a loyalty account with zero balances. The user_id primary
// key rejects a second registration as ErrDuplicateAccount.
func (s *AccountServiceImpl) Register(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	acc := account.NewAccount(userID)
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetBalance retrieves the account snapshot, returns ErrAccountNotFound if missing
func (s *AccountServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, userID)
}
