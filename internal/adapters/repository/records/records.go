// Package records implements the typed unit-of-work view over a bucketed
// key/value transaction. Backends only provide the raw KV operations.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// Bucket names, one per record type
const (
	BucketGovernors          = "governors"
	BucketProposals          = "proposals"
	BucketProposalMetas      = "proposal_metas"
	BucketVotes              = "votes"
	BucketLockers            = "lockers"
	BucketWhitelistEntries   = "whitelist_entries"
	BucketEscrows            = "escrows"
	BucketRedeemers          = "redeemers"
	BucketBlacklist          = "blacklist"
	BucketTokenAccounts      = "token_accounts"
	BucketQueuedTransactions = "queued_transactions"
)

// Buckets lists every bucket a backend must provide.
var Buckets = []string{
	BucketGovernors,
	BucketProposals,
	BucketProposalMetas,
	BucketVotes,
	BucketLockers,
	BucketWhitelistEntries,
	BucketEscrows,
	BucketRedeemers,
	BucketBlacklist,
	BucketTokenAccounts,
	BucketQueuedTransactions,
}

// KV is the raw view of one backend transaction.
type KV interface {
	Get(bucket string, key []byte) ([]byte, bool, error)
	Put(bucket string, key, value []byte) error
	Delete(bucket string, key []byte) error
	ForEach(bucket string, fn func(key, value []byte) error) error
}

// Tx implements usecase.Tx by encoding records as JSON values keyed by
// their 20-byte record key.
type Tx struct {
	kv KV
}

// New wraps a backend transaction.
func New(kv KV) *Tx {
	return &Tx{kv: kv}
}

func get[T any](kv KV, bucket, kind string, key common.Address) (*T, error) {
	raw, ok, err := kv.Get(bucket, key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", kind, key.Hex(), err)
	}
	if !ok {
		return nil, domain.NotFoundErr{Kind: kind, Key: key.Hex()}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", kind, key.Hex(), err)
	}
	return &v, nil
}

func put[T any](kv KV, bucket, kind string, key common.Address, v *T) error {
	if key == (common.Address{}) {
		return fmt.Errorf("%w: %s has an empty key", domain.ErrInvalidAddress, kind)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", kind, key.Hex(), err)
	}
	return kv.Put(bucket, key.Bytes(), data)
}

func del(kv KV, bucket, kind string, key common.Address) error {
	if _, ok, err := kv.Get(bucket, key.Bytes()); err != nil {
		return err
	} else if !ok {
		return domain.NotFoundErr{Kind: kind, Key: key.Hex()}
	}
	return kv.Delete(bucket, key.Bytes())
}

// list decodes every record of bucket accepted by keep, ordered by key.
func list[T any](kv KV, bucket, kind string, keep func(*T) bool) ([]*T, error) {
	type entry struct {
		key []byte
		val *T
	}
	var entries []entry
	err := kv.ForEach(bucket, func(key, value []byte) error {
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("failed to decode %s %x: %w", kind, key, err)
		}
		if keep == nil || keep(&v) {
			entries = append(entries, entry{key: bytes.Clone(key), val: &v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	out := make([]*T, len(entries))
	for i, e := range entries {
		out[i] = e.val
	}
	return out, nil
}

func matches(filter, value common.Address) bool {
	return filter == (common.Address{}) || filter == value
}

// Governors

func (t *Tx) GetGovernor(key common.Address) (*models.Governor, error) {
	return get[models.Governor](t.kv, BucketGovernors, "governor", key)
}

func (t *Tx) SaveGovernor(g *models.Governor) error {
	return put(t.kv, BucketGovernors, "governor", g.Key, g)
}

func (t *Tx) ListGovernors() ([]*models.Governor, error) {
	return list[models.Governor](t.kv, BucketGovernors, "governor", nil)
}

// Proposals

func (t *Tx) GetProposal(key common.Address) (*models.Proposal, error) {
	return get[models.Proposal](t.kv, BucketProposals, "proposal", key)
}

func (t *Tx) SaveProposal(p *models.Proposal) error {
	return put(t.kv, BucketProposals, "proposal", p.Key, p)
}

// ListProposals returns matching proposals ordered by governor then index.
func (t *Tx) ListProposals(filter usecase.ProposalFilter) ([]*models.Proposal, error) {
	proposals, err := list(t.kv, BucketProposals, "proposal", func(p *models.Proposal) bool {
		return matches(filter.Governor, p.Governor) && matches(filter.Proposer, p.Proposer)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(proposals, func(i, j int) bool {
		if c := bytes.Compare(proposals[i].Governor.Bytes(), proposals[j].Governor.Bytes()); c != 0 {
			return c < 0
		}
		return proposals[i].Index < proposals[j].Index
	})
	return proposals, nil
}

func (t *Tx) GetProposalMeta(key common.Address) (*models.ProposalMeta, error) {
	return get[models.ProposalMeta](t.kv, BucketProposalMetas, "proposal meta", key)
}

func (t *Tx) SaveProposalMeta(m *models.ProposalMeta) error {
	return put(t.kv, BucketProposalMetas, "proposal meta", m.Key, m)
}

// Votes

func (t *Tx) GetVote(key common.Address) (*models.Vote, error) {
	return get[models.Vote](t.kv, BucketVotes, "vote", key)
}

func (t *Tx) SaveVote(v *models.Vote) error {
	return put(t.kv, BucketVotes, "vote", v.Key, v)
}

func (t *Tx) ListVotes(proposal common.Address) ([]*models.Vote, error) {
	return list(t.kv, BucketVotes, "vote", func(v *models.Vote) bool {
		return matches(proposal, v.Proposal)
	})
}

// Lockers

func (t *Tx) GetLocker(key common.Address) (*models.Locker, error) {
	return get[models.Locker](t.kv, BucketLockers, "locker", key)
}

func (t *Tx) SaveLocker(l *models.Locker) error {
	return put(t.kv, BucketLockers, "locker", l.Key, l)
}

func (t *Tx) ListLockers() ([]*models.Locker, error) {
	return list[models.Locker](t.kv, BucketLockers, "locker", nil)
}

func (t *Tx) GetWhitelistEntry(key common.Address) (*models.LockerWhitelistEntry, error) {
	return get[models.LockerWhitelistEntry](t.kv, BucketWhitelistEntries, "whitelist entry", key)
}

func (t *Tx) SaveWhitelistEntry(e *models.LockerWhitelistEntry) error {
	return put(t.kv, BucketWhitelistEntries, "whitelist entry", e.Key, e)
}

func (t *Tx) DeleteWhitelistEntry(key common.Address) error {
	return del(t.kv, BucketWhitelistEntries, "whitelist entry", key)
}

func (t *Tx) ListWhitelistEntries(locker common.Address) ([]*models.LockerWhitelistEntry, error) {
	return list(t.kv, BucketWhitelistEntries, "whitelist entry", func(e *models.LockerWhitelistEntry) bool {
		return matches(locker, e.Locker)
	})
}

// Escrows

func (t *Tx) GetEscrow(key common.Address) (*models.Escrow, error) {
	return get[models.Escrow](t.kv, BucketEscrows, "escrow", key)
}

func (t *Tx) SaveEscrow(e *models.Escrow) error {
	return put(t.kv, BucketEscrows, "escrow", e.Key, e)
}

func (t *Tx) ListEscrows(filter usecase.EscrowFilter) ([]*models.Escrow, error) {
	return list(t.kv, BucketEscrows, "escrow", func(e *models.Escrow) bool {
		return matches(filter.Locker, e.Locker) && matches(filter.Owner, e.Owner)
	})
}

// Redeemers

func (t *Tx) GetRedeemer(key common.Address) (*models.LockerRedeemer, error) {
	return get[models.LockerRedeemer](t.kv, BucketRedeemers, "redeemer", key)
}

func (t *Tx) SaveRedeemer(r *models.LockerRedeemer) error {
	return put(t.kv, BucketRedeemers, "redeemer", r.Key, r)
}

func (t *Tx) ListRedeemers(locker common.Address) ([]*models.LockerRedeemer, error) {
	return list(t.kv, BucketRedeemers, "redeemer", func(r *models.LockerRedeemer) bool {
		return matches(locker, r.Locker)
	})
}

func (t *Tx) GetBlacklist(key common.Address) (*models.Blacklist, error) {
	return get[models.Blacklist](t.kv, BucketBlacklist, "blacklist entry", key)
}

func (t *Tx) SaveBlacklist(b *models.Blacklist) error {
	return put(t.kv, BucketBlacklist, "blacklist entry", b.Key, b)
}

func (t *Tx) DeleteBlacklist(key common.Address) error {
	return del(t.kv, BucketBlacklist, "blacklist entry", key)
}

// Token accounts

func (t *Tx) GetTokenAccount(key common.Address) (*models.TokenAccount, error) {
	return get[models.TokenAccount](t.kv, BucketTokenAccounts, "token account", key)
}

func (t *Tx) SaveTokenAccount(a *models.TokenAccount) error {
	return put(t.kv, BucketTokenAccounts, "token account", a.Key, a)
}

func (t *Tx) ListTokenAccounts(owner common.Address) ([]*models.TokenAccount, error) {
	return list(t.kv, BucketTokenAccounts, "token account", func(a *models.TokenAccount) bool {
		return matches(owner, a.Owner)
	})
}

// Queued transactions

func (t *Tx) GetQueuedTransaction(key common.Address) (*models.QueuedTransaction, error) {
	return get[models.QueuedTransaction](t.kv, BucketQueuedTransactions, "queued transaction", key)
}

func (t *Tx) SaveQueuedTransaction(q *models.QueuedTransaction) error {
	return put(t.kv, BucketQueuedTransactions, "queued transaction", q.Key, q)
}

var _ usecase.Tx = (*Tx)(nil)
