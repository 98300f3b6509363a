package chain

import (
	"bufio"
	"bytes"
	"os"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// DecodeTransactions accepts either a JSON array of transactions or one
// transaction object per line.
func DecodeTransactions(data []byte) ([]Transaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var txns []Transaction
		if err := sonic.Unmarshal(trimmed, &txns); err != nil {
			return nil, errors.Wrap(err, "unmarshal transaction array")
		}
		return txns, nil
	}

	var txns []Transaction
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var txn Transaction
		if err := sonic.Unmarshal(raw, &txn); err != nil {
			return nil, errors.Wrapf(err, "unmarshal transaction at line %d", line)
		}
		txns = append(txns, txn)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan transactions")
	}
	return txns, nil
}

// FileSource reads transactions from a local file.
type FileSource struct {
	Path string
}

// Load reads and decodes every transaction in the file.
func (s FileSource) Load() ([]Transaction, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read transaction file").With("path", s.Path)
	}
	return DecodeTransactions(data)
}

// Batches splits txns into contiguous slices of at most size transactions.
func Batches(txns []Transaction, size int) [][]Transaction {
	if len(txns) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(txns)
	}
	out := make([][]Transaction, 0, (len(txns)+size-1)/size)
	for start := 0; start < len(txns); start += size {
		end := start + size
		if end > len(txns) {
			end = len(txns)
		}
		out = append(out, txns[start:end])
	}
	return out
}
