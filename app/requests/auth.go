// Package requests declares the JSON bodies the API accepts and their
// validation rules. Fields not declared here are dropped on decode.
package requests

import "github.com/shashiranjanraj/bazaar/app/models"

type Register struct {
	Name            string  `json:"name"            validate:"required,min=1,max=255"`
	Email           string  `json:"email"           validate:"required,email,max=255"`
	Password        string  `json:"password"        validate:"required,min=6,max=72"`
	Role            string  `json:"role"            validate:"omitempty,oneof=vendor customer admin"`
	BusinessName    *string `json:"businessName"    validate:"omitempty,min=1,max=255"`
	BusinessAddress *string `json:"businessAddress" validate:"omitempty,min=1,max=500"`
	PhoneNumber     *string `json:"phoneNumber"     validate:"omitempty,min=1,max=50"`
}

// RoleOrDefault returns the requested role, or models.DefaultRole when
// none or an unknown one is given.
func (r Register) RoleOrDefault() models.Role {
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return models.DefaultRole
	}
	return role
}

type Login struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
