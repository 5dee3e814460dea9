// Package safe is a small client for the Safe Transaction Service API.
package safe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionServiceURLs contains the Safe Transaction Service URLs for different networks
var TransactionServiceURLs = map[uint64]string{
	1:        "https://safe-transaction-mainnet.safe.global",
	10:       "https://safe-transaction-optimism.safe.global",
	100:      "https://safe-transaction-gnosis-chain.safe.global",
	137:      "https://safe-transaction-polygon.safe.global",
	42161:    "https://safe-transaction-arbitrum.safe.global",
	11155111: "https://safe-transaction-sepolia.safe.global",
	8453:     "https://safe-transaction-base.safe.global",
	56:       "https://safe-transaction-bsc.safe.global",
	43114:    "https://safe-transaction-avalanche.safe.global",
	42220:    "https://safe-transaction-celo.safe.global",
}

// ErrNotFound is returned when the service does not know a transaction.
var ErrNotFound = errors.New("safe transaction not found")

// MultisigTransaction is the subset of a Safe multisig transaction the
// client reads.
type MultisigTransaction struct {
	Safe                  string         `json:"safe"`
	To                    string         `json:"to"`
	Value                 string         `json:"value"`
	Data                  *string        `json:"data"`
	Operation             int            `json:"operation"`
	Nonce                 int            `json:"nonce"`
	ExecutionDate         *time.Time     `json:"executionDate"`
	SubmissionDate        time.Time      `json:"submissionDate"`
	TransactionHash       *string        `json:"transactionHash"`
	SafeTxHash            string         `json:"safeTxHash"`
	IsExecuted            bool           `json:"isExecuted"`
	IsSuccessful          *bool          `json:"isSuccessful"`
	ConfirmationsRequired int            `json:"confirmationsRequired"`
	Confirmations         []Confirmation `json:"confirmations"`
}

// Confirmation represents a confirmation on a Safe transaction
type Confirmation struct {
	Owner          string    `json:"owner"`
	SubmissionDate time.Time `json:"submissionDate"`
	Signature      string    `json:"signature"`
	SignatureType  string    `json:"signatureType"`
}

// Client talks to one Safe Transaction Service deployment.
type Client struct {
	serviceURL string
	httpClient *http.Client
}

// NewClient creates a client for a chain with a known service URL.
func NewClient(chainID uint64) (*Client, error) {
	serviceURL, ok := TransactionServiceURLs[chainID]
	if !ok {
		return nil, fmt.Errorf("unsupported chain ID: %d", chainID)
	}
	return NewClientWithURL(serviceURL, nil), nil
}

// NewClientWithURL creates a client for an explicit service URL. A nil
// httpClient gets a 30s timeout default.
func NewClientWithURL(serviceURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		httpClient: httpClient,
	}
}

// ServiceURL returns the base URL the client queries.
func (c *Client) ServiceURL() string {
	return c.serviceURL
}

// GetTransaction retrieves a Safe transaction by its hash
func (c *Client) GetTransaction(ctx context.Context, safeTxHash common.Hash) (*MultisigTransaction, error) {
	url := fmt.Sprintf("%s/api/v1/multisig-transactions/%s/", c.serviceURL, safeTxHash.Hex())

	var tx MultisigTransaction
	if err := c.get(ctx, url, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// IsTransactionExecuted checks if a Safe transaction has been executed and
// returns the execution transaction hash when it has.
func (c *Client) IsTransactionExecuted(ctx context.Context, safeTxHash common.Hash) (bool, *common.Hash, error) {
	tx, err := c.GetTransaction(ctx, safeTxHash)
	if err != nil {
		return false, nil, err
	}

	if tx.IsExecuted && tx.TransactionHash != nil {
		ethTxHash := common.HexToHash(*tx.TransactionHash)
		return true, &ethTxHash, nil
	}

	return false, nil, nil
}

func (c *Client) get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
