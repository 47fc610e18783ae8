// Package exchange provides a testify mock of the exchange session used by
// the service-level unit tests.
package exchange

import (
	"context"

	"github.com/stretchr/testify/mock"

	"biscabot/internal/domain"
)

// ExchangeAPI mocks one Biscoint account session.
type ExchangeAPI struct {
	mock.Mock
}

// NewExchangeAPI creates the mock and registers expectation checks on test cleanup.
func NewExchangeAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *ExchangeAPI {
	m := &ExchangeAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ExchangeAPI) Meta(ctx context.Context) (domain.ExchangeMeta, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ExchangeMeta), args.Error(1)
}

func (m *ExchangeAPI) Balance(ctx context.Context) (domain.BalanceSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BalanceSnapshot), args.Error(1)
}

func (m *ExchangeAPI) Offer(ctx context.Context, req domain.OfferRequest) (domain.Offer, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Offer), args.Error(1)
}

func (m *ExchangeAPI) Confirm(ctx context.Context, offerID string) (domain.Confirmation, error) {
	args := m.Called(ctx, offerID)
	return args.Get(0).(domain.Confirmation), args.Error(1)
}

func (m *ExchangeAPI) Trades(ctx context.Context, op domain.Side) ([]domain.Trade, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trade), args.Error(1)
}

func (m *ExchangeAPI) CanConfirm() bool {
	args := m.Called()
	return args.Bool(0)
}
