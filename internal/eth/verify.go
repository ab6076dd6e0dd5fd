// Package eth wraps the go-ethereum primitives used for challenge signature
// verification.
package eth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the expected byte length of a personal-sign signature.
const SignatureLength = 65

// ChallengeMessage is the exact text a wallet signs for a nonce. Kept in one
// place so issuance and verification can never drift apart.
func ChallengeMessage(nonce string) string {
	return "medichain authentication challenge: " + nonce
}

// RecoverAddress recovers the signer of an EIP-191 personal-sign message.
// The signature may carry a legacy V of 27/28 or a normalized 0/1.
func RecoverAddress(message string, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(signature))
	}

	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	digest := accounts.TextHash([]byte(message))
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature checks that the hex signature over message was produced by
// the claimed address. The comparison is case-insensitive. Malformed input
// yields false, never an error escalation.
func VerifySignature(message, signatureHex, address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}

	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return false
	}

	recovered, err := RecoverAddress(message, sig)
	if err != nil {
		return false
	}

	return strings.EqualFold(recovered.Hex(), address)
}
