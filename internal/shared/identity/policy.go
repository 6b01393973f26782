package identity

// Scope is the slice of adoption requests a caller may list.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwnRequests
	ScopeShelterRequests
	ScopeAll
)

// policy captures what a role is allowed to do. Ownership checks are applied
// on top of the flags where a shelter is involved.
type policy struct {
	decidesOwnShelter bool
	decidesAny        bool
	createsAnimals    bool
	managesUsers      bool
	listing           Scope
}

var policies = map[Role]policy{
	RoleUser: {
		listing: ScopeOwnRequests,
	},
	RoleShelter: {
		decidesOwnShelter: true,
		createsAnimals:    true,
		listing:           ScopeShelterRequests,
	},
	RoleAdmin: {
		decidesAny:     true,
		createsAnimals: true,
		managesUsers:   true,
		listing:        ScopeAll,
	},
}

func policyFor(role Role) policy {
	return policies[role]
}

// CanDecide reports whether actor may change the status of requests against
// an animal owned by shelterID.
func CanDecide(actor Actor, shelterID string) bool {
	p := policyFor(actor.Role)
	if p.decidesAny {
		return true
	}
	return p.decidesOwnShelter && shelterID != "" && actor.UserID == shelterID
}

// CanManageAnimal applies the same ownership rule to animal edits.
func CanManageAnimal(actor Actor, shelterID string) bool {
	return CanDecide(actor, shelterID)
}

// CanCreateAnimal reports whether actor may list new animals.
func CanCreateAnimal(actor Actor) bool {
	return policyFor(actor.Role).createsAnimals
}

// CanViewRequest reports whether actor may read a single request.
func CanViewRequest(actor Actor, requesterID, shelterID string) bool {
	if actor.UserID != "" && actor.UserID == requesterID {
		return true
	}
	return CanDecide(actor, shelterID)
}

// CanListShelter reports whether actor may list every request for shelterID.
func CanListShelter(actor Actor, shelterID string) bool {
	return CanDecide(actor, shelterID)
}

// CanManageUsers reports whether actor may read or delete other accounts.
func CanManageUsers(actor Actor) bool {
	return policyFor(actor.Role).managesUsers
}

// ListingScope returns the requests actor sees when listing without a filter.
func ListingScope(actor Actor) Scope {
	return policyFor(actor.Role).listing
}
