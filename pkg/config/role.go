package config

import "fmt"

// Role of a backend server within a shard.
type Role int

const (
	RolePrimary Role = iota
	RoleReplica
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	default:
		return "replica"
	}
}

// ParseRole maps the configuration spelling of a role onto a Role.
func ParseRole(role string) (Role, error) {
	switch role {
	case "primary":
		return RolePrimary, nil
	case "replica":
		return RoleReplica, nil
	default:
		return RoleReplica, fmt.Errorf("server role must be either 'primary' or 'replica', got: '%s'", role)
	}
}

// Matches reports whether r satisfies want. A nil want is a wildcard and
// matches any role.
func (r Role) Matches(want *Role) bool {
	if want == nil {
		return true
	}
	return r == *want
}

// RolesEqual compares two optional roles. A nil role matches any concrete
// role, in both directions: only two distinct concrete roles are unequal.
func RolesEqual(a *Role, b *Role) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// Address identifies one backend server uniquely.
type Address struct {
	ID            uint64
	Host          string
	Port          uint16
	Shard         int
	Role          Role
	ReplicaNumber int
}

func DefaultAddress() Address {
	return Address{
		ID:            0,
		Host:          "127.0.0.1",
		Port:          5432,
		Shard:         0,
		Role:          RoleReplica,
		ReplicaNumber: 0,
	}
}

// Name returns the display name of the address as reported by the admin
// console, e.g. in SHOW STATS and SHOW POOLS.
func (a Address) Name() string {
	switch a.Role {
	case RolePrimary:
		return fmt.Sprintf("shard_%d_primary", a.Shard)
	default:
		return fmt.Sprintf("shard_%d_replica_%d", a.Shard, a.ReplicaNumber)
	}
}
