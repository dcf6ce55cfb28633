package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shop-inventory/internal/apperr"
)

func TestParseScan(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ScannedLine
		wantErr bool
	}{
		{
			name:    "full payload",
			payload: "12|Desk lamp|2|P12I3",
			want:    ScannedLine{ProductID: 12, ProductName: "Desk lamp", Quantity: 2, Serial: "P12I3"},
		},
		{
			name:    "id only",
			payload: "7",
			want:    ScannedLine{ProductID: 7, Quantity: 1},
		},
		{
			name:    "missing serial",
			payload: "7|Chair|3",
			want:    ScannedLine{ProductID: 7, ProductName: "Chair", Quantity: 3},
		},
		{
			name:    "empty quantity defaults",
			payload: " 7 |Chair||P7I1 ",
			want:    ScannedLine{ProductID: 7, ProductName: "Chair", Quantity: 1, Serial: "P7I1"},
		},
		{name: "empty", payload: "  ", wantErr: true},
		{name: "non numeric id", payload: "abc|Chair|1", wantErr: true},
		{name: "zero id", payload: "0|Chair|1", wantErr: true},
		{name: "zero quantity", payload: "7|Chair|0", wantErr: true},
		{name: "negative quantity", payload: "7|Chair|-2", wantErr: true},
		{name: "non numeric quantity", payload: "7|Chair|two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScan(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaxAndTotals(t *testing.T) {
	total := decimal.RequireFromString("99.99")
	assert.Equal(t, "18.00", Tax(total, DefaultTaxRate).StringFixed(2))

	sale := Sale{
		TotalAmount: decimal.RequireFromString("10"),
		TaxAmount:   decimal.RequireFromString("1.80"),
		Items:       []SaleItem{{Quantity: 2}, {Quantity: 3}},
	}
	assert.Equal(t, "11.80", sale.GrandTotal().StringFixed(2))
	assert.Equal(t, 5, sale.ItemCount())
}

func TestReceiptNumber(t *testing.T) {
	r := NewReceiptNumber()
	assert.Regexp(t, `^SALE-[0-9a-f]{8}$`, r)
	assert.NotEqual(t, r, NewReceiptNumber())
}

func TestSaleItemSerials(t *testing.T) {
	assert.Nil(t, (&SaleItem{}).Serials())
	assert.Equal(t, []string{"P1I1", "P1I2"}, (&SaleItem{SerialNumber: "P1I1,P1I2"}).Serials())
}
