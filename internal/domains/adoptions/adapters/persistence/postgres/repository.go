package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists adoption requests in PostgreSQL. Status changes are
// conditional UPDATEs and a partial unique index rejects a second pending
// request for the same user and animal.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type requestRecord struct {
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

func (requestRecord) TableName() string { return "adoption_requests" }

func (r *Repository) Create(ctx context.Context, request *domain.Request) (*projection.Projection[*domain.Request], error) {
	if request == nil {
		return nil, errors.New("adoption request is nil")
	}
	return r.insert(ctx, toRecord(request))
}

// Restore inserts snapshot with its stored timestamps; GORM only stamps
// zero CreatedAt/UpdatedAt values.
func (r *Repository) Restore(ctx context.Context, snapshot *projection.Projection[*domain.Request]) error {
	if snapshot == nil || snapshot.Entity == nil {
		return errors.New("adoption request is nil")
	}
	record := toRecord(snapshot.Entity)
	record.CreatedAt = snapshot.Metadata.CreatedAt
	record.UpdatedAt = snapshot.Metadata.UpdatedAt
	_, err := r.insert(ctx, record)
	return err
}

func (r *Repository) insert(ctx context.Context, record requestRecord) (*projection.Projection[*domain.Request], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicatePending
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Request], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record requestRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) Transition(ctx context.Context, id string, from, to domain.Status, notes string) (*projection.Projection[*domain.Request], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := platformpostgres.Conn(ctx, r.db).Model(&requestRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":        string(to),
			"shelter_notes": notes,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicatePending
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.staleOrMissing(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) RejectPendingForAnimal(ctx context.Context, animalID, exceptID, notes string) ([]string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var ids []string
	if err := conn.Model(&requestRecord{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("animal_id = ? AND status = ? AND id <> ?", animalID, string(domain.StatusPending), exceptID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	if err := conn.Model(&requestRecord{}).
		Where("id IN ? AND status = ?", ids, string(domain.StatusPending)).
		Updates(map[string]any{
			"status":        string(domain.StatusRejected),
			"shelter_notes": notes,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) CountPendingForAnimal(ctx context.Context, animalID string) (int, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := platformpostgres.Conn(ctx, r.db).Model(&requestRecord{}).
		Where("animal_id = ? AND status = ?", animalID, string(domain.StatusPending)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository) HasPending(ctx context.Context, userID, animalID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := platformpostgres.Conn(ctx, r.db).Model(&requestRecord{}).
		Where("user_id = ? AND animal_id = ? AND status = ?", userID, animalID, string(domain.StatusPending)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) DeletePending(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Delete(&requestRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*projection.Projection[*domain.Request], error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *Repository) ListByAnimals(ctx context.Context, animalIDs []string) ([]*projection.Projection[*domain.Request], error) {
	if len(animalIDs) == 0 {
		return []*projection.Projection[*domain.Request]{}, nil
	}
	return r.find(ctx, "animal_id IN ?", animalIDs)
}

func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Request], error) {
	return r.find(ctx, "1 = 1")
}

func (r *Repository) find(ctx context.Context, query string, args ...any) ([]*projection.Projection[*domain.Request], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []requestRecord
	if err := platformpostgres.Conn(ctx, r.db).
		Where(query, args...).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*projection.Projection[*domain.Request], 0, len(records))
	for i := range records {
		out = append(out, records[i].toProjection())
	}
	return out, nil
}

func (r *Repository) staleOrMissing(ctx context.Context, id string) error {
	var count int64
	if err := platformpostgres.Conn(ctx, r.db).Model(&requestRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrStaleStatus
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres adoption request repository not configured")
	}
	return nil
}

func toRecord(request *domain.Request) requestRecord {
	return requestRecord{
		ID:                 request.ID,
		UserID:             request.UserID,
		AnimalID:           request.AnimalID,
		Status:             string(request.Status),
		CompatibilityScore: request.CompatibilityScore,
		Message:            request.Message,
		ShelterNotes:       request.ShelterNotes,
	}
}

func (r requestRecord) toProjection() *projection.Projection[*domain.Request] {
	request := &domain.Request{
		ID:                 r.ID,
		UserID:             r.UserID,
		AnimalID:           r.AnimalID,
		Status:             domain.Status(r.Status),
		CompatibilityScore: r.CompatibilityScore,
		Message:            r.Message,
		ShelterNotes:       r.ShelterNotes,
	}
	return projection.New(request, r.CreatedAt, r.UpdatedAt)
}
