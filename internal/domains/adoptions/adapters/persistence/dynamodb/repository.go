package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	defaultRequestsTableName = "adoption_requests"
	defaultLocksTableName    = "adoption_locks"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists adoption requests in DynamoDB.
//
// Table requirements:
//   - requests table PK: id (string)
//   - locks table PK: pk (string)
//
// A lock item "pending#<user>#<animal>" exists while the pair has a pending
// request. Every write that creates, leaves or re-enters pending moves the
// lock in the same TransactWriteItems call as the request.
type Repository struct {
	ddb           dynamo.API
	requestsTable string
	locksTable    string
	now           func() time.Time
}

func NewRepository(ddb dynamo.API) *Repository {
	return &Repository{
		ddb:           ddb,
		requestsTable: dynamo.TableName("ADOPTION_REQUESTS_TABLE", defaultRequestsTableName),
		locksTable:    dynamo.TableName("ADOPTION_LOCKS_TABLE", defaultLocksTableName),
		now:           time.Now,
	}
}

// WithTables overrides the table names; empty values keep the current ones.
func (r *Repository) WithTables(requests, locks string) *Repository {
	if requests != "" {
		r.requestsTable = requests
	}
	if locks != "" {
		r.locksTable = locks
	}
	return r
}

type requestItem struct {
	ID                 string   `dynamodbav:"id"`
	UserID             string   `dynamodbav:"user_id"`
	AnimalID           string   `dynamodbav:"animal_id"`
	Status             string   `dynamodbav:"status"`
	CompatibilityScore *float64 `dynamodbav:"compatibility_score,omitempty"`
	Message            string   `dynamodbav:"message"`
	ShelterNotes       string   `dynamodbav:"shelter_notes"`
	CreatedAt          string   `dynamodbav:"created_at"`
	UpdatedAt          string   `dynamodbav:"updated_at"`
}

type lockItem struct {
	PK        string `dynamodbav:"pk"`
	RequestID string `dynamodbav:"request_id"`
	CreatedAt string `dynamodbav:"created_at"`
}

func lockKey(userID, animalID string) string {
	return "pending#" + userID + "#" + animalID
}

func (r *Repository) Create(ctx context.Context, request *domain.Request) (*projection.Projection[*domain.Request], error) {
	if request == nil {
		return nil, errors.New("adoption request is nil")
	}
	now := dynamo.FormatTime(r.now())
	return r.put(ctx, request, now, now)
}

// Restore writes snapshot back with its original timestamps.
func (r *Repository) Restore(ctx context.Context, snapshot *projection.Projection[*domain.Request]) error {
	if snapshot == nil || snapshot.Entity == nil {
		return errors.New("adoption request is nil")
	}
	_, err := r.put(ctx, snapshot.Entity,
		dynamo.FormatTime(snapshot.Metadata.CreatedAt),
		dynamo.FormatTime(snapshot.Metadata.UpdatedAt))
	return err
}

func (r *Repository) put(ctx context.Context, request *domain.Request, createdAt, updatedAt string) (*projection.Projection[*domain.Request], error) {
	item := requestItem{
		ID:                 request.ID,
		UserID:             request.UserID,
		AnimalID:           request.AnimalID,
		Status:             string(request.Status),
		CompatibilityScore: request.CompatibilityScore,
		Message:            request.Message,
		ShelterNotes:       request.ShelterNotes,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, err
	}
	writes := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                aws.String(r.requestsTable),
			Item:                     av,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		},
	}}
	if request.Status == domain.StatusPending {
		lock, err := r.lockPut(request.UserID, request.AnimalID, request.ID, updatedAt)
		if err != nil {
			return nil, err
		}
		writes = append(writes, lock)
	}
	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		switch {
		case dynamo.ConditionFailedAt(err, 1):
			return nil, ports.ErrDuplicatePending
		case dynamo.ConditionFailedAt(err, 0):
			return nil, fmt.Errorf("adoption request %s already exists", request.ID)
		}
		return nil, err
	}
	return item.toProjection(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Request], error) {
	item, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.toProjection(), nil
}

// Transition conditions the update on the prior status. Leaving pending
// releases the lock; re-entering pending claims it again.
func (r *Repository) Transition(ctx context.Context, id string, from, to domain.Status, notes string) (*projection.Projection[*domain.Request], error) {
	current, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != string(from) {
		return nil, ports.ErrStaleStatus
	}
	now := dynamo.FormatTime(r.now())
	writes := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName:           aws.String(r.requestsTable),
			Key:                 dynamo.Key("id", id),
			UpdateExpression:    aws.String("SET #status = :to, #notes = :notes, #updated_at = :now"),
			ConditionExpression: aws.String("attribute_exists(#id) AND #status = :from"),
			ExpressionAttributeNames: map[string]string{
				"#id":         "id",
				"#status":     "status",
				"#notes":      "shelter_notes",
				"#updated_at": "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":to":    dynamo.S(string(to)),
				":from":  dynamo.S(string(from)),
				":notes": dynamo.S(notes),
				":now":   dynamo.S(now),
			},
		},
	}}
	switch {
	case from == domain.StatusPending && to != domain.StatusPending:
		writes = append(writes, r.lockDelete(current.UserID, current.AnimalID))
	case from != domain.StatusPending && to == domain.StatusPending:
		lock, err := r.lockPut(current.UserID, current.AnimalID, id, now)
		if err != nil {
			return nil, err
		}
		writes = append(writes, lock)
	}
	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		switch {
		case dynamo.ConditionFailedAt(err, 0):
			return nil, r.staleOrMissing(ctx, id)
		case dynamo.ConditionFailedAt(err, 1):
			return nil, ports.ErrDuplicatePending
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// RejectPendingForAnimal transitions each competitor on its own. Requests
// that already left pending are skipped.
func (r *Repository) RejectPendingForAnimal(ctx context.Context, animalID, exceptID, notes string) ([]string, error) {
	pending, err := r.scan(ctx, "#animal = :animal AND #status = :pending", map[string]string{
		"#animal": "animal_id",
		"#status": "status",
	}, map[string]types.AttributeValue{
		":animal":  dynamo.S(animalID),
		":pending": dynamo.S(string(domain.StatusPending)),
	})
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, item := range pending {
		if item.ID == exceptID {
			continue
		}
		if _, err := r.Transition(ctx, item.ID, domain.StatusPending, domain.StatusRejected, notes); err != nil {
			if errors.Is(err, ports.ErrStaleStatus) || errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ids = append(ids, item.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Repository) CountPendingForAnimal(ctx context.Context, animalID string) (int, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(r.requestsTable),
		ConsistentRead:           aws.Bool(true),
		Select:                   types.SelectCount,
		FilterExpression:         aws.String("#animal = :animal AND #status = :pending"),
		ExpressionAttributeNames: map[string]string{"#animal": "animal_id", "#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":animal":  dynamo.S(animalID),
			":pending": dynamo.S(string(domain.StatusPending)),
		},
	}
	total := 0
	paginator := dynamodb.NewScanPaginator(r.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(page.Count)
	}
	return total, nil
}

// HasPending reads the lock item.
func (r *Repository) HasPending(ctx context.Context, userID, animalID string) (bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.locksTable),
		Key:            dynamo.Key("pk", lockKey(userID, animalID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	return len(out.Item) > 0, nil
}

func (r *Repository) DeletePending(ctx context.Context, id string) error {
	current, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != string(domain.StatusPending) {
		return ports.ErrStaleStatus
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:                 aws.String(r.requestsTable),
				Key:                       dynamo.Key("id", id),
				ConditionExpression:       aws.String("attribute_exists(#id) AND #status = :pending"),
				ExpressionAttributeNames:  map[string]string{"#id": "id", "#status": "status"},
				ExpressionAttributeValues: map[string]types.AttributeValue{":pending": dynamo.S(string(domain.StatusPending))},
			},
		},
		r.lockDelete(current.UserID, current.AnimalID),
	}})
	if dynamo.ConditionFailedAt(err, 0) {
		return r.staleOrMissing(ctx, id)
	}
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*projection.Projection[*domain.Request], error) {
	items, err := r.scan(ctx, "#user = :user", map[string]string{"#user": "user_id"},
		map[string]types.AttributeValue{":user": dynamo.S(userID)})
	if err != nil {
		return nil, err
	}
	return toProjections(items), nil
}

// ListByAnimals scans once per batch of dynamo.MaxInOperands ids and merges
// the batches oldest first.
func (r *Repository) ListByAnimals(ctx context.Context, animalIDs []string) ([]*projection.Projection[*domain.Request], error) {
	var items []requestItem
	for _, batch := range dynamo.Chunk(animalIDs, dynamo.MaxInOperands) {
		expr, values := dynamo.In("#animal", "animal", batch)
		found, err := r.scan(ctx, expr, map[string]string{"#animal": "animal_id"}, values)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	sortOldestFirst(items)
	return toProjections(items), nil
}

func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Request], error) {
	items, err := r.scan(ctx, "", nil, nil)
	if err != nil {
		return nil, err
	}
	return toProjections(items), nil
}

func (r *Repository) get(ctx context.Context, id string) (*requestItem, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.requestsTable),
		Key:            dynamo.Key("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrNotFound
	}
	var item requestItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) scan(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue) ([]requestItem, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.requestsTable), ConsistentRead: aws.Bool(true)}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}
	var items []requestItem
	paginator := dynamodb.NewScanPaginator(r.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []requestItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	sortOldestFirst(items)
	return items, nil
}

func sortOldestFirst(items []requestItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].ID < items[j].ID
		}
		return dynamo.ParseTime(items[i].CreatedAt).Before(dynamo.ParseTime(items[j].CreatedAt))
	})
}

func (r *Repository) staleOrMissing(ctx context.Context, id string) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}
	return ports.ErrStaleStatus
}

func (r *Repository) lockPut(userID, animalID, requestID, now string) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(lockItem{PK: lockKey(userID, animalID), RequestID: requestID, CreatedAt: now})
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.locksTable),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "pk"},
	}}, nil
}

func (r *Repository) lockDelete(userID, animalID string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.locksTable),
		Key:       dynamo.Key("pk", lockKey(userID, animalID)),
	}}
}

func toProjections(items []requestItem) []*projection.Projection[*domain.Request] {
	out := make([]*projection.Projection[*domain.Request], 0, len(items))
	for i := range items {
		out = append(out, items[i].toProjection())
	}
	return out
}

func (it requestItem) toProjection() *projection.Projection[*domain.Request] {
	var score *float64
	if it.CompatibilityScore != nil {
		v := *it.CompatibilityScore
		score = &v
	}
	request := &domain.Request{
		ID:                 it.ID,
		UserID:             it.UserID,
		AnimalID:           it.AnimalID,
		Status:             domain.Status(it.Status),
		CompatibilityScore: score,
		Message:            it.Message,
		ShelterNotes:       it.ShelterNotes,
	}
	return projection.New(request, dynamo.ParseTime(it.CreatedAt), dynamo.ParseTime(it.UpdatedAt))
}
