package safe

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
	"github.com/trebuchet-org/lockgov/pkg/safe"
)

// ClientAdapter wraps the Safe Transaction Service client to implement SafeClient
type ClientAdapter struct {
	client *safe.Client
}

// NewClientAdapter builds the client from the [safe] settings. An explicit
// service URL wins over the chain ID lookup. Without either the adapter
// is still created and fails on use.
func NewClientAdapter(cfg *config.RuntimeConfig) *ClientAdapter {
	switch {
	case cfg.Safe.ServiceURL != "":
		return &ClientAdapter{client: safe.NewClientWithURL(cfg.Safe.ServiceURL, nil)}
	case cfg.Safe.ChainID != 0:
		client, err := safe.NewClient(cfg.Safe.ChainID)
		if err != nil {
			return &ClientAdapter{}
		}
		return &ClientAdapter{client: client}
	default:
		return &ClientAdapter{}
	}
}

// GetTransactionExecutionInfo checks if a Safe transaction is executed
func (c *ClientAdapter) GetTransactionExecutionInfo(ctx context.Context, safeTxHash string) (*models.SafeExecutionInfo, error) {
	if c.client == nil {
		return nil, fmt.Errorf("safe transaction service not configured: set safe.service_url or a supported safe.chain_id")
	}

	tx, err := c.client.GetTransaction(ctx, common.HexToHash(safeTxHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get safe transaction %s: %w", safeTxHash, err)
	}

	info := &models.SafeExecutionInfo{
		IsExecuted:            tx.IsExecuted,
		Confirmations:         len(tx.Confirmations),
		ConfirmationsRequired: tx.ConfirmationsRequired,
	}
	if tx.IsExecuted && tx.TransactionHash != nil {
		info.TxHash = common.HexToHash(*tx.TransactionHash).Hex()
	}
	for _, conf := range tx.Confirmations {
		info.ConfirmationDetails = append(info.ConfirmationDetails, models.Confirmation{
			Signer:    conf.Owner,
			Signature: conf.Signature,
		})
	}
	return info, nil
}

// Ensure the adapter implements the interface
var _ usecase.SafeClient = (*ClientAdapter)(nil)
