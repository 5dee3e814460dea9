package models

import "github.com/ethereum/go-ethereum/common"

// TokenAccount is a balance of one mint held by one owner.
type TokenAccount struct {
	Key    common.Address `json:"key" yaml:"key"`
	Mint   common.Address `json:"mint" yaml:"mint"`
	Owner  common.Address `json:"owner" yaml:"owner"`
	Amount uint64         `json:"amount" yaml:"amount"`
}
