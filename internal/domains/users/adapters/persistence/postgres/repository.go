package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Create inserts a user; the unique email index reports duplicates.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update rewrites every mutable column of an existing user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	result := platformpostgres.Conn(ctx, r.db).Model(&userRecord{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":          record.Email,
			"password_hash":  record.PasswordHash,
			"name":           record.Name,
			"role":           record.Role,
			"phone":          record.Phone,
			"address":        record.Address,
			"housing_type":   record.HousingType,
			"available_time": record.AvailableTime,
			"experience":     record.Experience,
			"has_children":   record.HasChildren,
			"has_other_pets": record.HasOtherPets,
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.User], error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*projection.Projection[*domain.User], error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

// Delete removes a user by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", id).Delete(&userRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all users, oldest first.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := platformpostgres.Conn(ctx, r.db).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*projection.Projection[*domain.User], 0, len(records))
	for i := range records {
		users = append(users, records[i].toProjection())
	}
	return users, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := platformpostgres.Conn(ctx, r.db).Where(query, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:            user.ID,
		Email:         user.Email,
		PasswordHash:  user.PasswordHash,
		Name:          user.Name,
		Role:          string(user.Role),
		Phone:         user.Phone,
		Address:       user.Address,
		HousingType:   string(user.Profile.HousingType),
		AvailableTime: user.Profile.AvailableTime,
		Experience:    string(user.Profile.Experience),
		HasChildren:   user.Profile.HasChildren,
		HasOtherPets:  user.Profile.HasOtherPets,
	}
}

func (r userRecord) toProjection() *projection.Projection[*domain.User] {
	user := &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Role:         identity.Role(r.Role),
		Phone:        r.Phone,
		Address:      r.Address,
		Profile: domain.LifestyleProfile{
			HousingType:   domain.HousingType(r.HousingType),
			AvailableTime: r.AvailableTime,
			Experience:    domain.Experience(r.Experience),
			HasChildren:   r.HasChildren,
			HasOtherPets:  r.HasOtherPets,
		},
	}
	return projection.New(user, r.CreatedAt, r.UpdatedAt)
}
