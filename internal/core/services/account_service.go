package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
	"github.com/shopspring/decimal"
)

// accountService manages the chart of accounts. It never touches balances:
// those belong to the ledger engine.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	now := time.Now().UTC()

	level := 0
	if req.ParentCode != "" {
		parent, err := s.accountRepo.FindAccountByCode(ctx, req.ParentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrUnknownAccount, req.ParentCode)
			}
			return nil, fmt.Errorf("failed to resolve parent account %s: %w", req.ParentCode, err)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, req.ParentCode)
		}
		level = parent.Level + 1
	}

	account := domain.Account{
		Code:        req.Code,
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		ParentCode:  req.ParentCode,
		Level:       level,
		Description: req.Description,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("code", account.Code), slog.String("type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, codes)
}

func (s *accountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// DeactivateAccount soft-deletes an account. An account that has children or
// posted lines may never be removed, only deactivated; an account with no
// history at all is still only deactivated, keeping the chart append-only.
func (s *accountService) DeactivateAccount(ctx context.Context, code string, userID string) error {
	if _, err := s.accountRepo.FindAccountByCode(ctx, code); err != nil {
		return err
	}

	if err := s.accountRepo.DeactivateAccount(ctx, code, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("code", code))
		return err
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("code", code))
	return nil
}
