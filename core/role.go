package core

// Role is the coarse authorization category derived from on-chain credentials.
type Role string

const (
	RoleProducer        Role = "PRODUCER"
	RoleConsumer        Role = "CONSUMER"
	RoleServiceProvider Role = "SERVICE_PROVIDER"
	RoleAdmin           Role = "ADMIN"
)

// DefaultRole is assigned when no on-chain credential grants a role.
const DefaultRole = RoleConsumer

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProducer, RoleConsumer, RoleServiceProvider, RoleAdmin:
		return true
	}
	return false
}

// RoleCheck is the outcome of a single on-chain role check. Granted and Err
// are distinct on purpose: a failed check is not the same as a denial.
type RoleCheck struct {
	Role    Role
	Granted bool
	Err     error
}
