package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		val     string
		want    Category
		wantErr bool
	}{
		{val: "everyday", want: CategoryEveryday},
		{val: "Savings Account", want: CategorySavings},
		{val: "Investment Portfolio", want: CategoryInvestment},
		{val: "checking", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			got, err := ParseCategory(tt.val)
			if tt.wantErr {
				assert.EqualError(t, err, "Unknown account category: "+tt.val)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.want, got)
				assert.True(t, got.Valid())
			}
		})
	}
}

func TestTransaction_Total(t *testing.T) {
	outgoing := Transaction{Direction: Outgoing, Amount: decimal.NewFromInt(100), Fee: decimal.NewFromInt(12)}
	incoming := Transaction{Direction: Incoming, Amount: decimal.NewFromInt(100), Fee: decimal.Zero}
	assert.Equal(t, "-112", outgoing.Total().String())
	assert.Equal(t, "100", incoming.Total().String())
}
