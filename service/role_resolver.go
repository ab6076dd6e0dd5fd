package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

// rolePrecedence is the fixed order of on-chain credential checks. The first
// granted role wins. ADMIN is checked first so operator DIDs are never
// downgraded to a data role.
var rolePrecedence = []core.Role{
	core.RoleAdmin,
	core.RoleProducer,
	core.RoleConsumer,
	core.RoleServiceProvider,
}

// RoleResolver classifies a DID into a role from its on-chain credentials.
type RoleResolver struct {
	auth ports.AuthRegistry
	log  zerolog.Logger
}

// NewRoleResolver creates a new role resolver
func NewRoleResolver(auth ports.AuthRegistry, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{
		auth: auth,
		log:  log.With().Str("component", "role_resolver").Logger(),
	}
}

// Resolve runs the credential checks in precedence order and returns the
// first granted role along with every check outcome. When no check grants a
// role, or every check errors, the result is core.DefaultRole. A failed
// check is recorded and logged rather than silently collapsed into a denial.
func (r *RoleResolver) Resolve(ctx context.Context, didStr string) (core.Role, []core.RoleCheck) {
	if didStr == "" {
		return core.DefaultRole, nil
	}

	checks := make([]core.RoleCheck, 0, len(rolePrecedence))
	for _, role := range rolePrecedence {
		granted, err := r.auth.HasRole(ctx, didStr, role)
		checks = append(checks, core.RoleCheck{Role: role, Granted: granted, Err: err})

		if err != nil {
			r.log.Warn().Err(err).
				Str("did", didStr).
				Str("role", string(role)).
				Msg("role check failed, continuing with next role")
			continue
		}
		if granted {
			return role, checks
		}
	}

	return core.DefaultRole, checks
}
