package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BankPage is a bank profile with its active loans.
type BankPage struct {
	Bank  *domain.Bank  `json:"bank"`
	Loans []domain.Loan `json:"loans"`
}

// BankService provides the public bank pages.
type BankService struct {
	DB *gorm.DB
}

// List returns active banks by display order with their active loans.
func (s *BankService) List(ctx context.Context) ([]domain.Bank, error) {
	tr := otel.Tracer("services/BankService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()
	return repo.ListActiveBanks(ctx, s.DB, true)
}

// Detail returns an active bank and its active loans, featured first.
func (s *BankService) Detail(ctx context.Context, slug string) (*BankPage, error) {
	tr := otel.Tracer("services/BankService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(attribute.String("bank.slug", slug)),
	)
	defer span.End()

	b, err := repo.GetActiveBankBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	loans, err := repo.ListActiveLoansByBank(ctx, s.DB, b.ID)
	if err != nil {
		return nil, err
	}
	return &BankPage{Bank: b, Loans: loans}, nil
}
