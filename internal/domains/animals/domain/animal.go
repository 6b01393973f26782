package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName        = errors.New("animal name is required")
	ErrEmptyBreed       = errors.New("animal breed is required")
	ErrEmptyShelter     = errors.New("animal must belong to a shelter")
	ErrInvalidSpecies   = errors.New("species must be one of cat, dog, bird, rabbit, other")
	ErrInvalidSize      = errors.New("size must be one of small, medium, large")
	ErrInvalidAge       = errors.New("age must be between 0 and 30")
	ErrInvalidEnergy    = errors.New("energy level must be between 0 and 10")
	ErrInvalidStatus    = errors.New("status must be one of available, pending, adopted")
	ErrEmptyDescription = errors.New("animal description is required")
)

const (
	MaxAge         = 30
	MaxEnergyLevel = 10
)

// Species of animals listed by shelters.
type Species string

const (
	SpeciesCat    Species = "cat"
	SpeciesDog    Species = "dog"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesCat, SpeciesDog, SpeciesBird, SpeciesRabbit, SpeciesOther:
		return true
	}
	return false
}

// Size buckets.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Status is the availability of an animal for adoption.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusAdopted:
		return true
	}
	return false
}

// Animal is a shelter listing.
type Animal struct {
	ID               string
	Name             string
	Species          Species
	Breed            string
	Age              int
	Size             Size
	EnergyLevel      int
	GoodWithChildren bool
	GoodWithPets     bool
	Description      string
	PhotoURLs        []string
	Status           Status
	ShelterID        string
}

// Attributes groups the descriptive fields required to list an animal.
type Attributes struct {
	Name             string
	Species          Species
	Breed            string
	Age              int
	Size             Size
	EnergyLevel      int
	GoodWithChildren bool
	GoodWithPets     bool
	Description      string
	PhotoURLs        []string
}

// NewAnimal builds an available animal owned by shelterID.
func NewAnimal(id, shelterID string, attrs Attributes) (*Animal, error) {
	if strings.TrimSpace(shelterID) == "" {
		return nil, ErrEmptyShelter
	}
	a := &Animal{
		ID:               id,
		ShelterID:        shelterID,
		Status:           StatusAvailable,
		GoodWithChildren: attrs.GoodWithChildren,
		GoodWithPets:     attrs.GoodWithPets,
	}
	if err := a.Rename(attrs.Name); err != nil {
		return nil, err
	}
	if err := a.SetBreed(attrs.Breed); err != nil {
		return nil, err
	}
	if err := a.SetSpecies(attrs.Species); err != nil {
		return nil, err
	}
	if err := a.SetSize(attrs.Size); err != nil {
		return nil, err
	}
	if err := a.SetAge(attrs.Age); err != nil {
		return nil, err
	}
	if err := a.SetEnergyLevel(attrs.EnergyLevel); err != nil {
		return nil, err
	}
	if err := a.Describe(attrs.Description); err != nil {
		return nil, err
	}
	a.ReplacePhotos(attrs.PhotoURLs)
	return a, nil
}

func (a *Animal) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	a.Name = name
	return nil
}

func (a *Animal) SetBreed(breed string) error {
	breed = strings.TrimSpace(breed)
	if breed == "" {
		return ErrEmptyBreed
	}
	a.Breed = breed
	return nil
}

func (a *Animal) SetSpecies(species Species) error {
	species = Species(strings.ToLower(strings.TrimSpace(string(species))))
	if !species.Valid() {
		return ErrInvalidSpecies
	}
	a.Species = species
	return nil
}

func (a *Animal) SetSize(size Size) error {
	size = Size(strings.ToLower(strings.TrimSpace(string(size))))
	if !size.Valid() {
		return ErrInvalidSize
	}
	a.Size = size
	return nil
}

func (a *Animal) SetAge(age int) error {
	if age < 0 || age > MaxAge {
		return ErrInvalidAge
	}
	a.Age = age
	return nil
}

func (a *Animal) SetEnergyLevel(level int) error {
	if level < 0 || level > MaxEnergyLevel {
		return ErrInvalidEnergy
	}
	a.EnergyLevel = level
	return nil
}

func (a *Animal) Describe(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	a.Description = description
	return nil
}

// ReplacePhotos drops blank entries and keeps order.
func (a *Animal) ReplacePhotos(urls []string) {
	photos := make([]string, 0, len(urls))
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			photos = append(photos, url)
		}
	}
	a.PhotoURLs = photos
}

// UpdateStatus sets the availability. Adoption flows go through the
// repository compare-and-set instead.
func (a *Animal) UpdateStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	a.Status = status
	return nil
}

// ImageURL is the primary photo, or empty.
func (a *Animal) ImageURL() string {
	if len(a.PhotoURLs) == 0 {
		return ""
	}
	return a.PhotoURLs[0]
}

// Clone returns a deep copy.
func (a *Animal) Clone() *Animal {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PhotoURLs = append([]string(nil), a.PhotoURLs...)
	return &clone
}
