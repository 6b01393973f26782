package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PendingRequestIndex enforces at most one pending request per (user, animal).
const PendingRequestIndex = "idx_adoption_requests_pending_unique"

// Run applies the schema for the bounded contexts. Adapters do not migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&animalRecord{},
		&adoptionRequestRecord{},
		&idempotencyRecord{},
		&userRecord{},
	); err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + PendingRequestIndex +
		` ON adoption_requests (user_id, animal_id) WHERE status = 'pending'`).Error
}

// Animal schema mirrors the animals Postgres adapter.
type animalRecord struct {
	ID               string         `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name             string         `gorm:"column:name;type:varchar(255);not null"`
	Species          string         `gorm:"column:species;type:varchar(16);index:idx_animals_status_species"`
	Breed            string         `gorm:"column:breed;type:varchar(255)"`
	Age              int            `gorm:"column:age"`
	Size             string         `gorm:"column:size;type:varchar(16)"`
	EnergyLevel      int            `gorm:"column:energy_level"`
	GoodWithChildren bool           `gorm:"column:good_with_children"`
	GoodWithPets     bool           `gorm:"column:good_with_pets"`
	Description      string         `gorm:"column:description;type:text"`
	PhotoURLs        pq.StringArray `gorm:"column:photo_urls;type:text[]"`
	Status           string         `gorm:"column:status;type:varchar(16);index:idx_animals_status_species"`
	ShelterID        string         `gorm:"column:shelter_id;type:varchar(64);index"`
	CreatedAt        time.Time      `gorm:"column:created_at;index"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (animalRecord) TableName() string { return "animals" }

// Adoption request schema mirrors the adoptions Postgres adapter.
type adoptionRequestRecord struct {
	ID                 string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID             string    `gorm:"column:user_id;type:varchar(64);index"`
	AnimalID           string    `gorm:"column:animal_id;type:varchar(64);index:idx_adoption_requests_animal_status"`
	Status             string    `gorm:"column:status;type:varchar(16);index:idx_adoption_requests_animal_status"`
	CompatibilityScore *float64  `gorm:"column:compatibility_score"`
	Message            string    `gorm:"column:message;type:text;not null;default:''"`
	ShelterNotes       string    `gorm:"column:shelter_notes;type:text;not null;default:''"`
	CreatedAt          time.Time `gorm:"column:created_at;index"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (adoptionRequestRecord) TableName() string { return "adoption_requests" }

// Idempotency schema mirrors the adoptions idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	RequestID   string    `gorm:"column:request_id;type:varchar(64);not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "adoption_idempotency_keys" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	Email         string    `gorm:"column:email;type:varchar(255);uniqueIndex"`
	PasswordHash  string    `gorm:"column:password_hash"`
	Name          string    `gorm:"column:name"`
	Role          string    `gorm:"column:role;type:varchar(16);index"`
	Phone         string    `gorm:"column:phone"`
	Address       string    `gorm:"column:address"`
	HousingType   string    `gorm:"column:housing_type;type:varchar(16)"`
	AvailableTime int       `gorm:"column:available_time"`
	Experience    string    `gorm:"column:experience;type:varchar(16)"`
	HasChildren   bool      `gorm:"column:has_children"`
	HasOtherPets  bool      `gorm:"column:has_other_pets"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }
