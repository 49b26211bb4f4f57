package domain

// Transaction represents an observed MultiversX transaction.
// Immutable once observed; Value is an arbitrary-precision integer
// encoded as a decimal string, Data is the raw payload (often base64
// of "function@arg1@arg2...").
type Transaction struct {
	Hash      string `json:"hash"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Value     string `json:"value"`
	Data      []byte `json:"data"`
	GasLimit  uint64 `json:"gas_limit"`
	GasPrice  uint64 `json:"gas_price"`
	Timestamp uint64 `json:"timestamp"`
}
