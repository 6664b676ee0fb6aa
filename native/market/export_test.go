package market

import "github.com/gagliardetto/solana-go"

// ParticipantKey exposes the bidder set key of a listing to external tests.
func ParticipantKey(listing solana.PublicKey) []byte {
	return recordKey(participantPrefix, listing)
}
