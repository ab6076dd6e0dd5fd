// Package did builds did:ethr identifiers and their documents. Everything
// here is a pure function of the address; registry I/O lives in the chain
// adapters.
package did

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/medichain/medichain/core"
)

// Method is the DID method used by the platform.
const Method = "ethr"

// verificationKeyType matches the key material of an Ethereum account.
const verificationKeyType = "EcdsaSecp256k1RecoveryMethod2020"

// AddressDID derives the DID for an Ethereum address. Deterministic: the
// same address always yields the same DID string.
func AddressDID(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", core.ErrInvalidAddress
	}
	return fmt.Sprintf("did:%s:%s", Method, strings.ToLower(address)), nil
}

// Address extracts the Ethereum address from a did:ethr identifier.
func Address(didStr string) (string, error) {
	prefix := fmt.Sprintf("did:%s:", Method)
	if !strings.HasPrefix(didStr, prefix) {
		return "", fmt.Errorf("not a did:%s identifier: %q", Method, didStr)
	}
	addr := strings.TrimPrefix(didStr, prefix)
	if !common.IsHexAddress(addr) {
		return "", core.ErrInvalidAddress
	}
	return strings.ToLower(addr), nil
}

// NewDocument builds the initial document for a DID with a single
// verification method bound to the controlling address.
func NewDocument(didStr, address string) *core.DIDDocument {
	keyID := didStr + "#controller"
	return &core.DIDDocument{
		Context: []string{
			"https://www.w3.org/ns/did/v1",
			"https://w3id.org/security/suites/secp256k1recovery-2020/v2",
		},
		ID:         didStr,
		Controller: didStr,
		VerificationMethod: []core.VerificationMethod{
			{
				ID:                  keyID,
				Type:                verificationKeyType,
				Controller:          didStr,
				BlockchainAccountID: "eip155:1:" + common.HexToAddress(address).Hex(),
			},
		},
		Authentication: []string{keyID},
	}
}
