package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const didVerifierABI = `[
	{"type":"function","name":"checkSignature","stateMutability":"view","inputs":[{"name":"signer","type":"address"},{"name":"message","type":"bytes"},{"name":"signature","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]}
]`

// DIDVerifier is the typed client for the on-chain signature verification
// contract. It is an optional fast path; callers fall back to local ECDSA
// recovery when a call errors.
type DIDVerifier struct {
	client   *Client
	contract *bind.BoundContract
}

var didVerifierParsedABI = mustParseABI(didVerifierABI)

// NewDIDVerifier binds the DID verifier contract at address.
func NewDIDVerifier(client *Client, address common.Address) ports.SignatureChecker {
	return &DIDVerifier{
		client:   client,
		contract: client.bound(address, didVerifierParsedABI),
	}
}

// CheckSignature asks the verifier contract whether signature over message
// was produced by address.
func (v *DIDVerifier) CheckSignature(ctx context.Context, address string, message, signature []byte) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, core.ErrInvalidAddress
	}

	var out []interface{}
	if err := v.contract.Call(callOpts(ctx), &out, "checkSignature", common.HexToAddress(address), message, signature); err != nil {
		return false, fmt.Errorf("checkSignature: %w", err)
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}
