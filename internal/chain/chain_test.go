package chain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTxn = `{
	"type": "user_transaction",
	"version": "123",
	"timestamp": "1690000000000001",
	"success": true,
	"changes": [
		{"type": "write_resource", "address": "0xabc",
		 "data": {"type": "0x2fcf::vault::Vault<0x1::coin::A, 0x2::m::B>", "data": {"k": "v"}}},
		{"type": "write_table_item", "address": "0x1"}
	],
	"events": [
		{"guid": {"creation_number": "3", "account_address": "0x1"},
		 "sequence_number": 5, "type": "u64", "data": "7"}
	]
}`

func TestDecodeTransactionArray(t *testing.T) {
	txns, err := DecodeTransactions([]byte("[" + sampleTxn + "]"))
	require.NoError(t, err)
	require.Len(t, txns, 1)

	txn := txns[0]
	require.True(t, txn.IsUser())
	require.Equal(t, U64(123), txn.Version)
	require.Equal(t, time.Date(2023, 7, 22, 4, 26, 40, 1000, time.UTC), txn.Time())
	require.Len(t, txn.Changes, 2)
	require.Len(t, txn.Events, 1)

	res, ok := txn.Changes[0].Resource()
	require.True(t, ok)
	assert.JSONEq(t, `{"k":"v"}`, string(res.Data))

	_, ok = txn.Changes[1].Resource()
	require.False(t, ok)

	ev := txn.Events[0]
	require.Equal(t, U64(3), ev.GUID.CreationNumber)
	require.Equal(t, U64(5), ev.SequenceNumber)
}

func TestDecodeTransactionLines(t *testing.T) {
	line := `{"type":"block_metadata_transaction","version":"7","timestamp":"0"}`
	data := line + "\n\n" + `{"type":"user_transaction","version":"8","timestamp":"0"}` + "\n"

	txns, err := DecodeTransactions([]byte(data))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.False(t, txns[0].IsUser())
	require.Equal(t, U64(8), txns[1].Version)

	_, err = DecodeTransactions([]byte(`{"version":"x"}`))
	require.Error(t, err)

	txns, err = DecodeTransactions(nil)
	require.NoError(t, err)
	require.Empty(t, txns)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txns.json")
	require.NoError(t, os.WriteFile(path, []byte("["+sampleTxn+"]"), 0o644))

	txns, err := FileSource{Path: path}.Load()
	require.NoError(t, err)
	require.Len(t, txns, 1)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load()
	require.Error(t, err)
}

func TestParseStructTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
		want StructTag
	}{
		{
			name: "two generics",
			in:   "0x2fcf::vault::Vault<0x1::coin::A, 0x2::m::B>",
			ok:   true,
			want: StructTag{
				Address:           StandardizeAddress("0x2fcf"),
				Module:            "vault",
				Name:              "Vault",
				GenericTypeParams: []string{"0x1::coin::A", "0x2::m::B"},
			},
		},
		{
			name: "nested generics",
			in:   "0x1::market::Market<0x1::lp::LP<0x1::a::A, 0x1::b::B>,0x2::p::P>",
			ok:   true,
			want: StructTag{
				Address:           StandardizeAddress("0x1"),
				Module:            "market",
				Name:              "Market",
				GenericTypeParams: []string{"0x1::lp::LP<0x1::a::A, 0x1::b::B>", "0x2::p::P"},
			},
		},
		{
			name: "no generics",
			in:   "0x1::account::Account",
			ok:   true,
			want: StructTag{Address: StandardizeAddress("0x1"), Module: "account", Name: "Account"},
		},
		{name: "primitive", in: "u64"},
		{name: "vector", in: "vector<u8>"},
		{name: "unbalanced", in: "0x1::a::B<0x1::c::D"},
		{name: "empty param", in: "0x1::a::B<,C>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseStructTag(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestStructTagString(t *testing.T) {
	tag, ok := ParseStructTag("0x1::vault::Vault<A,B>")
	require.True(t, ok)
	require.Equal(t, StandardizeAddress("0x1")+"::vault::Vault<A, B>", tag.String())
}

func TestStandardizeAddress(t *testing.T) {
	want := "0x0000000000000000000000000000000000000000000000000000000000000abc"
	require.Equal(t, want, StandardizeAddress("0xABC"))
	require.Equal(t, want, StandardizeAddress("abc"))
	require.Equal(t, want, StandardizeAddress(want))
}

func TestU64(t *testing.T) {
	var v U64
	require.NoError(t, v.UnmarshalJSON([]byte(`"18446744073709551615"`)))
	require.Equal(t, U64(^uint64(0)), v)
	require.NoError(t, v.UnmarshalJSON([]byte(`42`)))
	require.Equal(t, U64(42), v)
	require.Error(t, v.UnmarshalJSON([]byte(`"-1"`)))
	require.Error(t, v.UnmarshalJSON([]byte(`"abc`)))

	raw, err := U64(9).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"9"`, string(raw))
}

func TestBatches(t *testing.T) {
	txns := make([]Transaction, 5)
	for i := range txns {
		txns[i].Version = U64(i)
	}
	got := Batches(txns, 2)
	require.Len(t, got, 3)
	require.Len(t, got[2], 1)
	require.Equal(t, U64(4), got[2][0].Version)

	require.Len(t, Batches(txns, 0), 1)
	require.Nil(t, Batches(nil, 3))
}
