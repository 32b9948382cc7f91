package domain

import (
	"strings"
	"time"
	"unicode"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCrew     Role = "CREW"
	RoleCustomer Role = "CUSTOMER"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleCrew, RoleCustomer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCrew, RoleCustomer:
		return true
	}
	return false
}

// IsTeam reports whether r authenticates by password.
func (r Role) IsTeam() bool {
	return r == RoleAdmin || r == RoleCrew
}

const (
	// GuestCustomerName is given to customers provisioned on first OTP login.
	GuestCustomerName = "Guest Customer"

	// SystemActor is the audit actor for actions without a session.
	SystemActor = "SYSTEM"

	phoneDigits = 10
)

// Identity is a principal record in the credential store.
type Identity struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Role               Role      `json:"role"`
	PasswordHash       string    `json:"-"`
	MustRotatePassword bool      `json:"mustRotatePassword"`
	WhatsApp           string    `json:"whatsapp,omitempty"`
	Pincode            string    `json:"pincode,omitempty"`
	City               string    `json:"city,omitempty"`
	State              string    `json:"state,omitempty"`
	Avatar             string    `json:"avatar,omitempty"`
	Salary             float64   `json:"salary"`
	JoinedDate         time.Time `json:"joinedDate"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Principal returns the credential-free snapshot carried in a session.
func (i *Identity) Principal() Principal {
	return Principal{
		ID:                 i.ID,
		Name:               i.Name,
		Phone:              i.Phone,
		Role:               i.Role,
		MustRotatePassword: i.MustRotatePassword,
	}
}

// Principal is the authenticated identity asserted by a session.
type Principal struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Role               Role   `json:"role"`
	MustRotatePassword bool   `json:"mustRotatePassword,omitempty"`
}

// NormalizePhone strips every non-digit and keeps the trailing ten digits so
// that "+91 98765-43210" and "9876543210" compare equal.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}

// ValidPhone reports whether p is exactly ten ASCII digits.
func ValidPhone(p string) bool {
	if len(p) != phoneDigits {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsObjectIDHex reports whether s looks like a 24-character hexadecimal id.
func IsObjectIDHex(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
