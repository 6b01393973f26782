package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	defaultUsersTableName = "users"

	kindUser  = "user"
	kindEmail = "email"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in a single DynamoDB table (PK: pk).
//
// Each account is stored as "user#<id>" next to an "email#<address>" marker
// that enforces unique emails; both are written in one transaction.
type Repository struct {
	ddb       dynamo.API
	tableName string
	now       func() time.Time
}

func NewRepository(ddb dynamo.API) *Repository {
	return &Repository{
		ddb:       ddb,
		tableName: dynamo.TableName("USERS_TABLE", defaultUsersTableName),
		now:       time.Now,
	}
}

// WithTable overrides the table name.
func (r *Repository) WithTable(name string) *Repository {
	if name != "" {
		r.tableName = name
	}
	return r
}

type userItem struct {
	PK            string `dynamodbav:"pk"`
	Kind          string `dynamodbav:"kind"`
	ID            string `dynamodbav:"id"`
	Email         string `dynamodbav:"email"`
	PasswordHash  string `dynamodbav:"password_hash"`
	Name          string `dynamodbav:"name"`
	Role          string `dynamodbav:"role"`
	Phone         string `dynamodbav:"phone"`
	Address       string `dynamodbav:"address"`
	HousingType   string `dynamodbav:"housing_type"`
	AvailableTime int    `dynamodbav:"available_time"`
	Experience    string `dynamodbav:"experience"`
	HasChildren   bool   `dynamodbav:"has_children"`
	HasOtherPets  bool   `dynamodbav:"has_other_pets"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
}

type emailItem struct {
	PK     string `dynamodbav:"pk"`
	Kind   string `dynamodbav:"kind"`
	UserID string `dynamodbav:"user_id"`
}

func userKey(id string) string     { return "user#" + id }
func emailKey(email string) string { return "email#" + email }

func (r *Repository) Create(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	now := dynamo.FormatTime(r.now())
	item := toItem(user, now, now)
	userAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, err
	}
	marker, err := r.emailPut(user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     userAV,
			ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
			ExpressionAttributeNames: map[string]string{"#pk": "pk"},
		}},
		marker,
	}})
	if err != nil {
		if dynamo.ConditionFailedAt(err, 1) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return item.toProjection(), nil
}

// Update rewrites the account and moves the email marker when the address changed.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	current, err := r.getItem(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	item := toItem(user, current.CreatedAt, dynamo.FormatTime(r.now()))
	userAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, err
	}
	writes := []types.TransactWriteItem{{Put: &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     userAV,
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "pk"},
	}}}
	if current.Email != user.Email {
		marker, err := r.emailPut(user.Email, user.ID)
		if err != nil {
			return nil, err
		}
		writes = append(writes, marker, r.emailDelete(current.Email))
	}
	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		switch {
		case dynamo.ConditionFailedAt(err, 0):
			return nil, ports.ErrNotFound
		case dynamo.ConditionFailedAt(err, 1):
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return item.toProjection(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.User], error) {
	item, err := r.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.toProjection(), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*projection.Projection[*domain.User], error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            dynamo.Key("pk", emailKey(domain.NormalizeEmail(email))),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrNotFound
	}
	var marker emailItem
	if err := attributevalue.UnmarshalMap(out.Item, &marker); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, marker.UserID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	current, err := r.getItem(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: []types.TransactWriteItem{
		{Delete: &types.Delete{
			TableName:                aws.String(r.tableName),
			Key:                      dynamo.Key("pk", userKey(id)),
			ConditionExpression:      aws.String("attribute_exists(#pk)"),
			ExpressionAttributeNames: map[string]string{"#pk": "pk"},
		}},
		r.emailDelete(current.Email),
	}})
	if dynamo.ConditionFailedAt(err, 0) {
		return ports.ErrNotFound
	}
	return err
}

// List scans user items, oldest first.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.User], error) {
	paginator := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		ConsistentRead:            aws.Bool(true),
		FilterExpression:          aws.String("#kind = :kind"),
		ExpressionAttributeNames:  map[string]string{"#kind": "kind"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":kind": dynamo.S(kindUser)},
	})
	var items []userItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []userItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].ID < items[j].ID
		}
		return dynamo.ParseTime(items[i].CreatedAt).Before(dynamo.ParseTime(items[j].CreatedAt))
	})
	out := make([]*projection.Projection[*domain.User], 0, len(items))
	for i := range items {
		out = append(out, items[i].toProjection())
	}
	return out, nil
}

func (r *Repository) getItem(ctx context.Context, id string) (*userItem, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            dynamo.Key("pk", userKey(id)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrNotFound
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) emailPut(email, userID string) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(emailItem{PK: emailKey(email), Kind: kindEmail, UserID: userID})
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "pk"},
	}}, nil
}

func (r *Repository) emailDelete(email string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.tableName),
		Key:       dynamo.Key("pk", emailKey(email)),
	}}
}

func toItem(user *domain.User, createdAt, updatedAt string) userItem {
	return userItem{
		PK:            userKey(user.ID),
		Kind:          kindUser,
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
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

func (it userItem) toProjection() *projection.Projection[*domain.User] {
	user := &domain.User{
		ID:           it.ID,
		Email:        it.Email,
		PasswordHash: it.PasswordHash,
		Name:         it.Name,
		Role:         identity.Role(it.Role),
		Phone:        it.Phone,
		Address:      it.Address,
		Profile: domain.LifestyleProfile{
			HousingType:   domain.HousingType(it.HousingType),
			AvailableTime: it.AvailableTime,
			Experience:    domain.Experience(it.Experience),
			HasChildren:   it.HasChildren,
			HasOtherPets:  it.HasOtherPets,
		},
	}
	return projection.New(user, dynamo.ParseTime(it.CreatedAt), dynamo.ParseTime(it.UpdatedAt))
}
