package mapper

import (
	"time"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
)

// User is the HTTP representation of an account. The password hash never leaves the service.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	HousingType   string    `json:"housingType,omitempty"`
	AvailableTime int       `json:"availableTime"`
	Experience    string    `json:"experience"`
	HasChildren   bool      `json:"hasChildren"`
	HasOtherPets  bool      `json:"hasOtherPets"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Profile carries the optional lifestyle fields of register and profile payloads.
type Profile struct {
	HousingType   *string `json:"housingType,omitempty"`
	AvailableTime *int    `json:"availableTime,omitempty"`
	Experience    *string `json:"experience,omitempty"`
	HasChildren   *bool   `json:"hasChildren,omitempty"`
	HasOtherPets  *bool   `json:"hasOtherPets,omitempty"`
}

// Register is the sign-up payload.
type Register struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Profile
}

// Login is the credentials payload.
type Login struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfile is the PATCH /users/profile payload; absent fields stay untouched.
type UpdateProfile struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Profile
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// ToProfileInput copies lifestyle fields into the application input.
func ToProfileInput(p Profile) usertypes.ProfileInput {
	return usertypes.ProfileInput{
		HousingType:   p.HousingType,
		AvailableTime: p.AvailableTime,
		Experience:    p.Experience,
		HasChildren:   p.HasChildren,
		HasOtherPets:  p.HasOtherPets,
	}
}

// ToRegisterInput maps the sign-up payload.
func ToRegisterInput(payload Register) usertypes.RegisterInput {
	return usertypes.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
		Role:     payload.Role,
		Phone:    payload.Phone,
		Address:  payload.Address,
		Profile:  ToProfileInput(payload.Profile),
	}
}

// FromProjection converts an account into its transport representation.
func FromProjection(projection *usertypes.UserProjection) User {
	if projection == nil || projection.Entity == nil {
		return User{}
	}
	u := projection.Entity
	return User{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		Phone:         u.Phone,
		Address:       u.Address,
		HousingType:   string(u.Profile.HousingType),
		AvailableTime: u.Profile.AvailableTime,
		Experience:    string(u.Profile.Experience),
		HasChildren:   u.Profile.HasChildren,
		HasOtherPets:  u.Profile.HasOtherPets,
		CreatedAt:     projection.Metadata.CreatedAt,
		UpdatedAt:     projection.Metadata.UpdatedAt,
	}
}

func FromProjectionList(items []*usertypes.UserProjection) []User {
	result := make([]User, 0, len(items))
	for _, item := range items {
		result = append(result, FromProjection(item))
	}
	return result
}

// FromAuthResult wraps the token and the account.
func FromAuthResult(result *usertypes.AuthResult) AuthResponse {
	if result == nil {
		return AuthResponse{}
	}
	return AuthResponse{AccessToken: result.AccessToken, User: FromProjection(result.User)}
}
