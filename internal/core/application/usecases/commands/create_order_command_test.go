package commands_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount int64, currency string) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(amount, currency)
	require.NoError(t, err)
	return m
}

func TestNewCreateOrderCommand_Success(t *testing.T) {
	orderID := kernel.NewUUID()
	total := mustMoney(t, 12999, "EUR")

	cmd, err := commands.NewCreateOrderCommand(orderID, "customer@example.com", total)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, orderID, cmd.OrderID())
	assert.Equal(t, "customer@example.com", cmd.Email())
	assert.True(t, total.IsEqual(cmd.Total()))
}

func TestNewCreateOrderCommand_ValidationErrors(t *testing.T) {
	validID := kernel.NewUUID()
	validTotal := mustMoney(t, 100, "EUR")

	tests := []struct {
		name    string
		orderID kernel.UUID
		email   string
		total   kernel.Money
		wantErr error
	}{
		{
			name:    "zero order id",
			orderID: kernel.UUID{},
			email:   "customer@example.com",
			total:   validTotal,
			wantErr: errs.ErrValueIsRequired,
		},
		{
			name:    "empty email",
			orderID: validID,
			email:   "",
			wantErr: commands.ErrEmailIsInvalid,
			total:   validTotal,
		},
		{
			name:    "email without at sign",
			orderID: validID,
			email:   "customer.example.com",
			total:   validTotal,
			wantErr: commands.ErrEmailIsInvalid,
		},
		{
			name:    "email without domain",
			orderID: validID,
			email:   "customer@",
			total:   validTotal,
			wantErr: commands.ErrEmailIsInvalid,
		},
		{
			name:    "unconstructed total",
			orderID: validID,
			email:   "customer@example.com",
			total:   kernel.Money{},
			wantErr: kernel.ErrMoneyIsNotConstructed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.NewCreateOrderCommand(tt.orderID, tt.email, tt.total)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateOrderCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.CreateOrderCommand

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}
