// Package seed loads demo shelters, an adopter and sample animals.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	animalports "github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

type account struct {
	email, name string
	role        identity.Role
}

type animal struct {
	shelter     int
	name        string
	species     string
	breed       string
	age         int
	size        string
	energy      int
	children    bool
	pets        bool
	description string
	photo       string
}

var accounts = []account{
	{email: "happypaws@shelter.com", name: "Happy Paws Shelter", role: identity.RoleShelter},
	{email: "furryfriends@shelter.com", name: "Furry Friends Rescue", role: identity.RoleShelter},
	{email: "adopter@example.com", name: "Demo Adopter", role: identity.RoleUser},
}

var animals = []animal{
	{0, "Max", "dog", "Golden Retriever", 3, "large", 9, true, true, "Max is a friendly and energetic Golden Retriever who loves to play fetch and go for long walks. Great with kids!", "https://images.unsplash.com/photo-1633722715463-d30f4f325e24?w=400"},
	{0, "Luna", "cat", "Siamese", 2, "small", 3, false, true, "Luna is a calm and affectionate Siamese cat. She enjoys quiet environments and loves to cuddle.", "https://images.unsplash.com/photo-1513360371669-4adf3dd7dff8?w=400"},
	{1, "Rocky", "dog", "German Shepherd", 5, "large", 8, true, false, "Rocky is a loyal and protective German Shepherd. Well-trained and great for active families.", "https://images.unsplash.com/photo-1568572933382-74d440642117?w=400"},
	{1, "Bella", "dog", "Labrador", 2, "large", 7, true, true, "Bella is a sweet Labrador who loves everyone she meets. Perfect family dog!", "https://images.unsplash.com/photo-1587300003388-59208cc962cb?w=400"},
	{0, "Whiskers", "cat", "Persian", 4, "small", 2, true, false, "Whiskers is a gentle Persian cat who enjoys a peaceful home. Very low maintenance.", "https://images.unsplash.com/photo-1574158622682-e40e69881006?w=400"},
	{1, "Charlie", "dog", "Beagle", 1, "medium", 9, true, true, "Charlie is a playful Beagle puppy full of energy. Loves to explore and play!", "https://images.unsplash.com/photo-1505628346881-b72b27e84530?w=400"},
	{0, "Mittens", "cat", "Tabby", 3, "small", 5, false, false, "Mittens is an independent tabby who likes her space but also enjoys attention on her terms.", "https://images.unsplash.com/photo-1529778873920-4da4926a72c2?w=400"},
	{1, "Buddy", "dog", "Poodle", 6, "medium", 6, true, true, "Buddy is a well-behaved Poodle who is great with children and other pets.", "https://images.unsplash.com/photo-1537151608828-ea2b11777ee8?w=400"},
}

// Result reports what a run created.
type Result struct {
	Accounts int
	Animals  int
}

// Run creates the demo data. Accounts that already exist are reused and
// their shelters' animals are not seeded twice.
func Run(ctx context.Context, users userports.Service, animalService animalports.Service, logger *slog.Logger) (*Result, error) {
	result := &Result{}
	actors := make([]identity.Actor, 0, len(accounts))
	fresh := make([]bool, 0, len(accounts))
	for _, acc := range accounts {
		auth, err := users.Register(ctx, usertypes.RegisterInput{
			Email:    acc.email,
			Password: DemoPassword,
			Name:     acc.name,
			Role:     string(acc.role),
		})
		created := true
		if errors.Is(err, userapp.ErrEmailTaken) {
			created = false
			auth, err = users.Login(ctx, usertypes.LoginInput{Email: acc.email, Password: DemoPassword})
		}
		if err != nil {
			return result, fmt.Errorf("seed account %s: %w", acc.email, err)
		}
		if created {
			result.Accounts++
		}
		actors = append(actors, auth.User.Entity.Actor())
		fresh = append(fresh, created)
	}
	logger.Info("seeded accounts", slog.Int("created", result.Accounts))

	for _, a := range animals {
		if !fresh[a.shelter] {
			continue
		}
		children, pets := a.children, a.pets
		if _, err := animalService.Create(ctx, animaltypes.CreateAnimalInput{
			Actor:            actors[a.shelter],
			Name:             a.name,
			Species:          a.species,
			Breed:            a.breed,
			Age:              a.age,
			Size:             a.size,
			EnergyLevel:      a.energy,
			GoodWithChildren: &children,
			GoodWithPets:     &pets,
			Description:      a.description,
			PhotoURLs:        []string{a.photo},
		}); err != nil {
			return result, fmt.Errorf("seed animal %s: %w", a.name, err)
		}
		result.Animals++
	}
	logger.Info("seeded animals", slog.Int("created", result.Animals))
	return result, nil
}
