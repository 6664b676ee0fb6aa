package token

import "errors"

var (
	ErrMintExists            = errors.New("token: mint already exists")
	ErrMintNotFound          = errors.New("token: mint not found")
	ErrAccountExists         = errors.New("token: account already exists")
	ErrAccountNotFound       = errors.New("token: account not found")
	ErrInsufficientFunds     = errors.New("token: insufficient funds")
	ErrInsufficientLamports  = errors.New("token: insufficient lamports")
	ErrMissingSigner         = errors.New("token: missing signer")
	ErrOwnerMismatch         = errors.New("token: owner does not match")
	ErrInvalidProgramSigner  = errors.New("token: program signer seeds do not derive the owner")
	ErrMintMismatch          = errors.New("token: account mint does not match")
	ErrDecimalsMismatch      = errors.New("token: decimals do not match the mint")
	ErrNonZeroBalance        = errors.New("token: account still holds tokens")
	ErrProgrammableAsset     = errors.New("token: programmable asset requires a rules-enforced transfer")
	ErrNonTransferable       = errors.New("token: asset is non-transferable")
	ErrRuleSetMismatch       = errors.New("token: rule set does not match the asset")
	ErrInvalidRulesProgram   = errors.New("token: invalid authorization rules program")
	ErrMintAuthorityMismatch = errors.New("token: mint authority does not match")
	ErrArithmeticOverflow    = errors.New("token: arithmetic overflow")
)
