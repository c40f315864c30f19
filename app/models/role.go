package models

import (
	"errors"
	"fmt"
)

// Role is an account's access class.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// DefaultRole is assigned at registration when none is given.
const DefaultRole = RoleVendor

var (
	ErrAlreadyVendor = errors.New("models: account is already a vendor")
	ErrNotVendor     = errors.New("models: account is not a vendor")
	ErrRoleLocked    = errors.New("models: role cannot change")
)

// ParseRole accepts the three known role names.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("models: unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// CanTransitionTo reports whether an existing account may move from r to
// next. Only customer → vendor and vendor → customer exist; admin is set
// at creation and never entered or left afterwards.
func (r Role) CanTransitionTo(next Role) bool {
	switch {
	case r == RoleCustomer && next == RoleVendor:
		return true
	case r == RoleVendor && next == RoleCustomer:
		return true
	}
	return false
}
