package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists animals in PostgreSQL using GORM. Calls made inside a
// platform transaction reuse it.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AnimalRecord maps the animal aggregate to the animals table.
type AnimalRecord struct {
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

func (AnimalRecord) TableName() string { return "animals" }

// Save inserts or updates an animal. Status is written on insert only.
func (r *Repository) Save(ctx context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if animal == nil {
		return nil, errors.New("animal is nil")
	}
	record := toRecord(animal)
	if err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":               record.Name,
				"species":            record.Species,
				"breed":              record.Breed,
				"age":                record.Age,
				"size":               record.Size,
				"energy_level":       record.EnergyLevel,
				"good_with_children": record.GoodWithChildren,
				"good_with_pets":     record.GoodWithPets,
				"description":        record.Description,
				"photo_urls":         record.PhotoURLs,
				"shelter_id":         record.ShelterID,
				"updated_at":         gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an animal by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record AnimalRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Delete removes an animal by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Delete(&AnimalRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns animals matching filter, oldest first.
func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, r.db).Model(&AnimalRecord{})
	if filter.Species != "" {
		query = query.Where("species = ?", string(filter.Species))
	}
	if filter.Size != "" {
		query = query.Where("size = ?", string(filter.Size))
	}
	if filter.ShelterID != "" {
		query = query.Where("shelter_id = ?", filter.ShelterID)
	}
	if filter.GoodWithChildren != nil {
		query = query.Where("good_with_children = ?", *filter.GoodWithChildren)
	}
	if filter.GoodWithPets != nil {
		query = query.Where("good_with_pets = ?", *filter.GoodWithPets)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status IN ?", statuses)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	var records []AnimalRecord
	if err := query.Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*projection.Projection[*domain.Animal], 0, len(records))
	for i := range records {
		out = append(out, records[i].toProjection())
	}
	return out, nil
}

// CompareAndSetStatus issues a conditional UPDATE so concurrent transitions
// cannot both succeed.
func (r *Repository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.Status) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if !next.Valid() {
		return domain.ErrInvalidStatus
	}
	conn := platformpostgres.Conn(ctx, r.db)
	query := conn.Model(&AnimalRecord{}).Where("id = ?", id)
	if expected != "" {
		query = query.Where("status = ?", string(expected))
	}
	result := query.Updates(map[string]any{
		"status":     string(next),
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := conn.Model(&AnimalRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrStaleStatus
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres animal repository not configured")
	}
	return nil
}

func toRecord(animal *domain.Animal) AnimalRecord {
	return AnimalRecord{
		ID:               animal.ID,
		Name:             animal.Name,
		Species:          string(animal.Species),
		Breed:            animal.Breed,
		Age:              animal.Age,
		Size:             string(animal.Size),
		EnergyLevel:      animal.EnergyLevel,
		GoodWithChildren: animal.GoodWithChildren,
		GoodWithPets:     animal.GoodWithPets,
		Description:      animal.Description,
		PhotoURLs:        pq.StringArray(append([]string(nil), animal.PhotoURLs...)),
		Status:           string(animal.Status),
		ShelterID:        animal.ShelterID,
	}
}

func (r AnimalRecord) toProjection() *projection.Projection[*domain.Animal] {
	animal := &domain.Animal{
		ID:               r.ID,
		Name:             r.Name,
		Species:          domain.Species(r.Species),
		Breed:            r.Breed,
		Age:              r.Age,
		Size:             domain.Size(r.Size),
		EnergyLevel:      r.EnergyLevel,
		GoodWithChildren: r.GoodWithChildren,
		GoodWithPets:     r.GoodWithPets,
		Description:      r.Description,
		PhotoURLs:        append([]string(nil), r.PhotoURLs...),
		Status:           domain.Status(r.Status),
		ShelterID:        r.ShelterID,
	}
	return projection.New(animal, r.CreatedAt, r.UpdatedAt)
}
