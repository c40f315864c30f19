package requests

import "github.com/shashiranjanraj/bazaar/app/models"

type CreateVendor struct {
	BusinessName    string `json:"businessName"    validate:"required,min=1,max=255"`
	BusinessAddress string `json:"businessAddress" validate:"required,min=1,max=500"`
	PhoneNumber     string `json:"phoneNumber"     validate:"required,min=1,max=50"`
	IsActive        *bool  `json:"isActive"`
}

func (r CreateVendor) Profile() models.VendorProfile {
	return models.VendorProfile{
		BusinessName:    r.BusinessName,
		BusinessAddress: r.BusinessAddress,
		PhoneNumber:     r.PhoneNumber,
	}
}

// Active defaults to true when isActive is omitted.
func (r CreateVendor) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

type UpdateVendor struct {
	BusinessName    *string `json:"businessName"    validate:"omitempty,min=1,max=255"`
	BusinessAddress *string `json:"businessAddress" validate:"omitempty,min=1,max=500"`
	PhoneNumber     *string `json:"phoneNumber"     validate:"omitempty,min=1,max=50"`
}

func (r UpdateVendor) Patch() models.VendorProfilePatch {
	return models.VendorProfilePatch{
		BusinessName:    r.BusinessName,
		BusinessAddress: r.BusinessAddress,
		PhoneNumber:     r.PhoneNumber,
	}
}
