package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickH0dges/CS-445/internal/money"
)

func testRecord(ts, cashier string) Record {
	return Record{
		Timestamp:   ts,
		CashierID:   "0001",
		CashierName: cashier,
		PaymentType: PaymentCash,
		Subtotal:    money.MustParse("2.50"),
		Tax:         money.MustParse("0.21"),
		Total:       money.MustParse("2.71"),
		Lines: []Line{
			{SKU: "100001", Name: "Bottle Water", UnitPrice: money.MustParse("1.00"), Qty: 1},
			{SKU: "100002", Name: "Chips", UnitPrice: money.MustParse("1.50"), Qty: 1},
		},
	}
}

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "pos_transactions.csv"))
}

func TestAppend_CreatesFileWithHeaderOnce(t *testing.T) {
	l := openTemp(t)

	// Nothing on disk before the first append.
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, l.Append(testRecord("2024-03-01T09:30:00", "Admin")))
	require.NoError(t, l.Append(testRecord("2024-03-01T09:31:00", "Admin")))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,cashier_id,cashier_name,payment_type,card_txn,subtotal,tax,total,lines_json", lines[0])
}

func TestAppend_NeverRewritesPriorRows(t *testing.T) {
	l := openTemp(t)
	require.NoError(t, l.Append(testRecord("2024-03-01T09:30:00", "Admin")))

	before, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	require.NoError(t, l.Append(testRecord("2024-03-01T09:31:00", "Admin")))

	after, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after[:len(before)]), "existing bytes must be untouched")
	assert.Greater(t, len(after), len(before))
}

func TestAppend_RejectsUnknownPaymentType(t *testing.T) {
	l := openTemp(t)
	rec := testRecord("2024-03-01T09:30:00", "Admin")
	rec.PaymentType = "barter"
	require.Error(t, l.Append(rec))

	// Nothing was written.
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRoundTrip_OrderAndFields(t *testing.T) {
	l := openTemp(t)

	want := []Record{
		testRecord("2024-03-01T09:30:00", "Admin"),
		testRecord("2024-03-01T10:00:00", "Casey"),
		{
			Timestamp:     "2024-03-01T10:05:00",
			CashierID:     "0002",
			CashierName:   "Casey",
			PaymentType:   PaymentCard,
			CardReference: "TXN-4821",
			Subtotal:      money.MustParse("1.00"),
			Tax:           money.MustParse("0.08"),
			Total:         money.MustParse("1.08"),
			Lines:         []Line{{SKU: "100001", Name: "Bottle Water", UnitPrice: money.MustParse("1.00"), Qty: 1}},
		},
	}
	for _, rec := range want {
		require.NoError(t, l.Append(rec))
	}

	got, err := l.Records()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Timestamp, got[i].Timestamp, "record %d", i)
		assert.Equal(t, want[i].CashierID, got[i].CashierID)
		assert.Equal(t, want[i].CashierName, got[i].CashierName)
		assert.Equal(t, want[i].PaymentType, got[i].PaymentType)
		assert.Equal(t, want[i].CardReference, got[i].CardReference)
		assert.Equal(t, want[i].Subtotal.String(), got[i].Subtotal.String())
		assert.Equal(t, want[i].Tax.String(), got[i].Tax.String())
		assert.Equal(t, want[i].Total.String(), got[i].Total.String())
		require.Len(t, got[i].Lines, len(want[i].Lines))
		for j := range want[i].Lines {
			assert.Equal(t, want[i].Lines[j].SKU, got[i].Lines[j].SKU)
			assert.Equal(t, want[i].Lines[j].Name, got[i].Lines[j].Name)
			assert.Equal(t, want[i].Lines[j].UnitPrice.String(), got[i].Lines[j].UnitPrice.String())
			assert.Equal(t, want[i].Lines[j].Qty, got[i].Lines[j].Qty)
		}
	}
}

func TestIterate_NoData(t *testing.T) {
	l := openTemp(t)
	_, err := l.Iterate()
	assert.ErrorIs(t, err, ErrNoData)

	_, err = l.Records()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestIterate_Restartable(t *testing.T) {
	l := openTemp(t)
	require.NoError(t, l.Append(testRecord("2024-03-01T09:30:00", "Admin")))

	for pass := 0; pass < 2; pass++ {
		it, err := l.Iterate()
		require.NoError(t, err)
		count := 0
		for it.Next() {
			count++
		}
		require.NoError(t, it.Err())
		require.NoError(t, it.Close())
		assert.Equal(t, 1, count, "pass %d", pass)
	}
}

func TestIterate_RejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos_transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i\n"), 0o644))

	_, err := Open(path).Iterate()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestIterate_MalformedRowSurfacesError(t *testing.T) {
	l := openTemp(t)
	require.NoError(t, l.Append(testRecord("2024-03-01T09:30:00", "Admin")))

	// Corrupt the numeric column of a hand-appended row.
	f, err := os.OpenFile(l.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2024-03-01T09:31:00,0001,Admin,cash,,oops,0.00,0.00,[]\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	it, err := l.Iterate()
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next(), "first row is intact")
	assert.False(t, it.Next())
	assert.Error(t, it.Err())
}
