package domain

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

var (
	ErrEmptyEmail           = errors.New("email is required")
	ErrInvalidEmail         = errors.New("email must contain '@'")
	ErrEmptyName            = errors.New("name is required")
	ErrWeakPassword         = errors.New("password must be at least 6 characters")
	ErrInvalidRole          = errors.New("role must be one of user, shelter, admin")
	ErrInvalidHousing       = errors.New("housing type must be one of apartment, house_small, house_large")
	ErrInvalidExperience    = errors.New("experience must be one of none, some, expert")
	ErrInvalidAvailableTime = errors.New("available time must be between 0 and 24 hours")
)

const (
	MinPasswordLength    = 6
	DefaultAvailableTime = 5
	MaxAvailableTime     = 24
)

// HousingType describes where the adopter lives.
type HousingType string

const (
	HousingApartment  HousingType = "apartment"
	HousingHouseSmall HousingType = "house_small"
	HousingHouseLarge HousingType = "house_large"
)

func (h HousingType) Valid() bool {
	switch h {
	case HousingApartment, HousingHouseSmall, HousingHouseLarge:
		return true
	}
	return false
}

// Experience with pets.
type Experience string

const (
	ExperienceNone   Experience = "none"
	ExperienceSome   Experience = "some"
	ExperienceExpert Experience = "expert"
)

func (e Experience) Valid() bool {
	switch e {
	case ExperienceNone, ExperienceSome, ExperienceExpert:
		return true
	}
	return false
}

// LifestyleProfile is what the compatibility scorer knows about an adopter.
// HousingType may be empty until the user fills it in.
type LifestyleProfile struct {
	HousingType   HousingType
	AvailableTime int
	Experience    Experience
	HasChildren   bool
	HasOtherPets  bool
}

// DefaultProfile is assigned to new accounts.
func DefaultProfile() LifestyleProfile {
	return LifestyleProfile{AvailableTime: DefaultAvailableTime, Experience: ExperienceNone}
}

// Validate checks the enumerations and ranges.
func (p LifestyleProfile) Validate() error {
	if p.HousingType != "" && !p.HousingType.Valid() {
		return ErrInvalidHousing
	}
	if !p.Experience.Valid() {
		return ErrInvalidExperience
	}
	if p.AvailableTime < 0 || p.AvailableTime > MaxAvailableTime {
		return ErrInvalidAvailableTime
	}
	return nil
}

// Matching converts the profile for the scorer.
func (p LifestyleProfile) Matching() matching.Profile {
	return matching.Profile{
		HousingType:   string(p.HousingType),
		AvailableTime: p.AvailableTime,
		Experience:    string(p.Experience),
		HasChildren:   p.HasChildren,
		HasOtherPets:  p.HasOtherPets,
	}
}

// User is an account: adopter, shelter or administrator.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         identity.Role
	Profile      LifestyleProfile
	Phone        string
	Address      string
}

// NewUser builds an account and hashes password.
func NewUser(id, email, name, password string, role identity.Role) (*User, error) {
	u := &User{ID: id, Profile: DefaultProfile()}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.Rename(name); err != nil {
		return nil, err
	}
	if role == "" {
		role = identity.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	u.Role = role
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateContact replaces phone and address.
func (u *User) UpdateContact(phone, address string) {
	u.Phone = strings.TrimSpace(phone)
	u.Address = strings.TrimSpace(address)
}

// UpdateProfile validates and replaces the lifestyle profile.
func (u *User) UpdateProfile(profile LifestyleProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	u.Profile = profile
	return nil
}

// Actor returns the identity this user acts as.
func (u *User) Actor() identity.Actor {
	return identity.Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
