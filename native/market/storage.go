package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	Snapshot() int
	RevertToSnapshot(id int) error
	DiscardSnapshot(id int)
}

var (
	marketplacePrefix = []byte("market/marketplace/")
	listingPrefix     = []byte("market/listing/")
	userPrefix        = []byte("market/user/")
	participantPrefix = []byte("market/participant/")
)

func recordKey(prefix []byte, parts ...solana.PublicKey) []byte {
	key := make([]byte, 0, len(prefix)+32*len(parts))
	key = append(key, prefix...)
	for _, part := range parts {
		key = append(key, part[:]...)
	}
	return key
}

type records struct {
	state engineState
}

func (r records) marketplace(addr solana.PublicKey) (*Marketplace, error) {
	var m Marketplace
	ok, err := r.state.KVGet(recordKey(marketplacePrefix, addr), &m)
	if err != nil {
		return nil, fmt.Errorf("market: load marketplace: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarketplaceNotFound, addr)
	}
	return &m, nil
}

func (r records) putMarketplace(addr solana.PublicKey, m *Marketplace) error {
	return r.state.KVPut(recordKey(marketplacePrefix, addr), m)
}

func (r records) listing(addr solana.PublicKey) (*Listing, error) {
	var l Listing
	ok, err := r.state.KVGet(recordKey(listingPrefix, addr), &l)
	if err != nil {
		return nil, fmt.Errorf("market: load listing: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, addr)
	}
	return &l, nil
}

func (r records) putListing(addr solana.PublicKey, l *Listing) error {
	return r.state.KVPut(recordKey(listingPrefix, addr), l)
}

func (r records) deleteListing(addr solana.PublicKey) error {
	return r.state.KVDelete(recordKey(listingPrefix, addr))
}

func (r records) user(addr solana.PublicKey) (*UserAccount, bool, error) {
	var u UserAccount
	ok, err := r.state.KVGet(recordKey(userPrefix, addr), &u)
	if err != nil {
		return nil, false, fmt.Errorf("market: load user: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (r records) putUser(addr solana.PublicKey, u *UserAccount) error {
	return r.state.KVPut(recordKey(userPrefix, addr), u)
}

func (r records) exists(prefix []byte, addr solana.PublicKey) (bool, error) {
	return r.state.KVGet(recordKey(prefix, addr), nil)
}

// markParticipant adds owner to the bidders of listing and reports whether
// owner had not bid on it before.
func (r records) markParticipant(listing, owner solana.PublicKey) (bool, error) {
	key := recordKey(participantPrefix, listing)
	var bidders []solana.PublicKey
	if _, err := r.state.KVGet(key, &bidders); err != nil {
		return false, fmt.Errorf("market: load bidders: %w", err)
	}
	for _, bidder := range bidders {
		if bidder == owner {
			return false, nil
		}
	}
	bidders = append(bidders, owner)
	return true, r.state.KVPut(key, bidders)
}

func (r records) deleteParticipants(listing solana.PublicKey) error {
	return r.state.KVDelete(recordKey(participantPrefix, listing))
}
