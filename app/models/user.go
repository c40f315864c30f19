package models

import "time"

// User is an account. Vendors are users whose Role is RoleVendor and who
// carry a business profile.
type User struct {
	ID              uint      `gorm:"primaryKey"                                json:"id"`
	Name            string    `gorm:"size:255;not null"                         json:"name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex"             json:"email"`
	PasswordHash    string    `gorm:"column:password_hash;size:255;not null"    json:"-"`
	Role            Role      `gorm:"size:20;not null;default:vendor;index"     json:"role"`
	IsActive        bool      `gorm:"not null;default:false"                    json:"isActive"`
	BusinessName    *string   `gorm:"size:255"                                  json:"businessName"`
	BusinessAddress *string   `gorm:"size:500"                                  json:"businessAddress"`
	PhoneNumber     *string   `gorm:"size:50"                                   json:"phoneNumber"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// VendorProfile is the business information a vendor carries.
type VendorProfile struct {
	BusinessName    string
	BusinessAddress string
	PhoneNumber     string
}

// VendorProfilePatch changes only the fields that are non-nil.
type VendorProfilePatch struct {
	BusinessName    *string
	BusinessAddress *string
	PhoneNumber     *string
}

// NewUser builds an account for registration. Vendors start active.
func NewUser(name, email, passwordHash string, role Role) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     role == RoleVendor,
	}
}

// IsVendor reports whether u currently holds the vendor role.
func (u *User) IsVendor() bool { return u.Role == RoleVendor }

// BecomeVendor moves a customer to vendor and attaches p.
func (u *User) BecomeVendor(p VendorProfile, active bool) error {
	if u.Role == RoleVendor {
		return ErrAlreadyVendor
	}
	if !u.Role.CanTransitionTo(RoleVendor) {
		return ErrRoleLocked
	}
	u.Role = RoleVendor
	u.IsActive = active
	u.BusinessName = &p.BusinessName
	u.BusinessAddress = &p.BusinessAddress
	u.PhoneNumber = &p.PhoneNumber
	return nil
}

// RevertToCustomer moves a vendor back to customer and clears the profile.
func (u *User) RevertToCustomer() error {
	if u.Role != RoleVendor {
		return ErrNotVendor
	}
	u.Role = RoleCustomer
	u.IsActive = false
	u.BusinessName = nil
	u.BusinessAddress = nil
	u.PhoneNumber = nil
	return nil
}

// ApplyProfilePatch updates a vendor's profile and marks it active.
func (u *User) ApplyProfilePatch(p VendorProfilePatch) error {
	if u.Role != RoleVendor {
		return ErrNotVendor
	}
	if p.BusinessName != nil {
		u.BusinessName = p.BusinessName
	}
	if p.BusinessAddress != nil {
		u.BusinessAddress = p.BusinessAddress
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = p.PhoneNumber
	}
	u.IsActive = true
	return nil
}
