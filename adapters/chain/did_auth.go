package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const didAuthABI = `[
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"did","type":"string"},{"name":"role","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]}
]`

// Role identifiers follow the AccessControl convention of keccak-hashed
// names; they must match the constants compiled into the auth contract.
var roleIDs = map[core.Role]common.Hash{
	core.RoleProducer:        crypto.Keccak256Hash([]byte("PRODUCER_ROLE")),
	core.RoleConsumer:        crypto.Keccak256Hash([]byte("CONSUMER_ROLE")),
	core.RoleServiceProvider: crypto.Keccak256Hash([]byte("SERVICE_PROVIDER_ROLE")),
	core.RoleAdmin:           crypto.Keccak256Hash([]byte("ADMIN_ROLE")),
}

// DIDAuth is the typed client for the DID auth contract.
type DIDAuth struct {
	client   *Client
	contract *bind.BoundContract
}

var didAuthParsedABI = mustParseABI(didAuthABI)

// NewDIDAuth binds the DID auth contract at address.
func NewDIDAuth(client *Client, address common.Address) ports.AuthRegistry {
	return &DIDAuth{
		client:   client,
		contract: client.bound(address, didAuthParsedABI),
	}
}

// HasRole checks whether the DID holds the on-chain credential for role.
func (a *DIDAuth) HasRole(ctx context.Context, didStr string, role core.Role) (bool, error) {
	roleID, ok := roleIDs[role]
	if !ok {
		return false, fmt.Errorf("no contract role id for %q", role)
	}

	var out []interface{}
	if err := a.contract.Call(callOpts(ctx), &out, "hasRole", didStr, [32]byte(roleID)); err != nil {
		return false, fmt.Errorf("hasRole(%s): %w", role, err)
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}
