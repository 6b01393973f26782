package dynamodb

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const defaultAnimalsTableName = "animals"

var _ ports.Repository = (*Repository)(nil)

// Repository persists animals in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
type Repository struct {
	ddb       dynamo.API
	tableName string
	now       func() time.Time
}

func NewRepository(ddb dynamo.API) *Repository {
	return &Repository{
		ddb:       ddb,
		tableName: dynamo.TableName("ANIMALS_TABLE", defaultAnimalsTableName),
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

type animalItem struct {
	ID               string   `dynamodbav:"id"`
	Name             string   `dynamodbav:"name"`
	Species          string   `dynamodbav:"species"`
	Breed            string   `dynamodbav:"breed"`
	Age              int      `dynamodbav:"age"`
	Size             string   `dynamodbav:"size"`
	EnergyLevel      int      `dynamodbav:"energy_level"`
	GoodWithChildren bool     `dynamodbav:"good_with_children"`
	GoodWithPets     bool     `dynamodbav:"good_with_pets"`
	Description      string   `dynamodbav:"description"`
	PhotoURLs        []string `dynamodbav:"photo_urls"`
	Status           string   `dynamodbav:"status"`
	ShelterID        string   `dynamodbav:"shelter_id"`
	CreatedAt        string   `dynamodbav:"created_at"`
	UpdatedAt        string   `dynamodbav:"updated_at"`
}

// Save upserts descriptive attributes in one UpdateItem. Status and
// created_at are only written when the item is new.
func (r *Repository) Save(ctx context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error) {
	if animal == nil {
		return nil, errors.New("animal is nil")
	}
	photos, err := attributevalue.Marshal(append([]string{}, animal.PhotoURLs...))
	if err != nil {
		return nil, err
	}
	now := dynamo.FormatTime(r.now())
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       dynamo.Key("id", animal.ID),
		UpdateExpression: aws.String("SET #name = :name, #species = :species, #breed = :breed, #age = :age, " +
			"#size = :size, #energy = :energy, #gwc = :gwc, #gwp = :gwp, #desc = :desc, #photos = :photos, " +
			"#shelter = :shelter, #updated_at = :now, " +
			"#status = if_not_exists(#status, :status), #created_at = if_not_exists(#created_at, :now)"),
		ExpressionAttributeNames: map[string]string{
			"#name":       "name",
			"#species":    "species",
			"#breed":      "breed",
			"#age":        "age",
			"#size":       "size",
			"#energy":     "energy_level",
			"#gwc":        "good_with_children",
			"#gwp":        "good_with_pets",
			"#desc":       "description",
			"#photos":     "photo_urls",
			"#shelter":    "shelter_id",
			"#status":     "status",
			"#created_at": "created_at",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":    dynamo.S(animal.Name),
			":species": dynamo.S(string(animal.Species)),
			":breed":   dynamo.S(animal.Breed),
			":age":     dynamo.N(int64(animal.Age)),
			":size":    dynamo.S(string(animal.Size)),
			":energy":  dynamo.N(int64(animal.EnergyLevel)),
			":gwc":     &types.AttributeValueMemberBOOL{Value: animal.GoodWithChildren},
			":gwp":     &types.AttributeValueMemberBOOL{Value: animal.GoodWithPets},
			":desc":    dynamo.S(animal.Description),
			":photos":  photos,
			":shelter": dynamo.S(animal.ShelterID),
			":status":  dynamo.S(string(animal.Status)),
			":now":     dynamo.S(now),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}
	return decode(out.Attributes)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Animal], error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            dynamo.Key("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrNotFound
	}
	return decode(out.Item)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      dynamo.Key("id", id),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if dynamo.IsConditionFailed(err) {
		return ports.ErrNotFound
	}
	return err
}

// List scans the table with the filters built from filter. IN lists longer
// than dynamo.MaxInOperands are split across several scans whose results are
// merged oldest first.
func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Animal], error) {
	out := []*projection.Projection[*domain.Animal]{}
	seen := map[string]struct{}{}
	for _, f := range buildFilters(filter) {
		input := &dynamodb.ScanInput{TableName: aws.String(r.tableName), ConsistentRead: aws.Bool(true)}
		if f.expr != "" {
			input.FilterExpression = aws.String(f.expr)
			input.ExpressionAttributeNames = f.names
			input.ExpressionAttributeValues = f.values
		}
		paginator := dynamodb.NewScanPaginator(r.ddb, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, item := range page.Items {
				decoded, err := decode(item)
				if err != nil {
					return nil, err
				}
				if _, dup := seen[decoded.Entity.ID]; dup {
					continue
				}
				seen[decoded.Entity.ID] = struct{}{}
				out = append(out, decoded)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metadata.CreatedAt.Equal(out[j].Metadata.CreatedAt) {
			return out[i].Entity.ID < out[j].Entity.ID
		}
		return out[i].Metadata.CreatedAt.Before(out[j].Metadata.CreatedAt)
	})
	return out, nil
}

// CompareAndSetStatus relies on a ConditionExpression on the prior status.
func (r *Repository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.Status) error {
	if !next.Valid() {
		return domain.ErrInvalidStatus
	}
	condition := "attribute_exists(#id)"
	values := map[string]types.AttributeValue{
		":next": dynamo.S(string(next)),
		":now":  dynamo.S(dynamo.FormatTime(r.now())),
	}
	if expected != "" {
		condition += " AND #status = :expected"
		values[":expected"] = dynamo.S(string(expected))
	}
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       dynamo.Key("id", id),
		UpdateExpression:          aws.String("SET #status = :next, #updated_at = :now"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  map[string]string{"#id": "id", "#status": "status", "#updated_at": "updated_at"},
		ExpressionAttributeValues: values,
	})
	if err == nil {
		return nil
	}
	if !dynamo.IsConditionFailed(err) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return ports.ErrStaleStatus
}

type scanFilter struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

// buildFilters returns one filter per combination of status and id batches.
// An empty filter yields a single unfiltered scan.
func buildFilters(filter ports.Filter) []scanFilter {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	eq := func(attr, placeholder string, value types.AttributeValue) {
		names["#"+placeholder] = attr
		values[":"+placeholder] = value
		clauses = append(clauses, "#"+placeholder+" = :"+placeholder)
	}
	if filter.Species != "" {
		eq("species", "species", dynamo.S(string(filter.Species)))
	}
	if filter.Size != "" {
		eq("size", "size", dynamo.S(string(filter.Size)))
	}
	if filter.ShelterID != "" {
		eq("shelter_id", "shelter", dynamo.S(filter.ShelterID))
	}
	if filter.GoodWithChildren != nil {
		eq("good_with_children", "gwc", &types.AttributeValueMemberBOOL{Value: *filter.GoodWithChildren})
	}
	if filter.GoodWithPets != nil {
		eq("good_with_pets", "gwp", &types.AttributeValueMemberBOOL{Value: *filter.GoodWithPets})
	}

	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	statusBatches := dynamo.Chunk(statuses, dynamo.MaxInOperands)
	if len(statusBatches) == 0 {
		statusBatches = [][]string{nil}
	}
	idBatches := dynamo.Chunk(filter.IDs, dynamo.MaxInOperands)
	if len(idBatches) == 0 {
		idBatches = [][]string{nil}
	}

	var filters []scanFilter
	for _, statusBatch := range statusBatches {
		for _, idBatch := range idBatches {
			f := scanFilter{
				names:  dynamo.MergeNames(names),
				values: make(map[string]types.AttributeValue, len(values)+len(statusBatch)+len(idBatch)),
			}
			for k, v := range values {
				f.values[k] = v
			}
			batchClauses := append([]string{}, clauses...)
			if len(statusBatch) > 0 {
				expr, bound := dynamo.In("#status", "status", statusBatch)
				f.names["#status"] = "status"
				for k, v := range bound {
					f.values[k] = v
				}
				batchClauses = append(batchClauses, expr)
			}
			if len(idBatch) > 0 {
				expr, bound := dynamo.In("#id", "id", idBatch)
				f.names["#id"] = "id"
				for k, v := range bound {
					f.values[k] = v
				}
				batchClauses = append(batchClauses, expr)
			}
			if len(batchClauses) == 0 {
				return []scanFilter{{}}
			}
			f.expr = strings.Join(batchClauses, " AND ")
			filters = append(filters, f)
		}
	}
	return filters
}

func decode(item map[string]types.AttributeValue) (*projection.Projection[*domain.Animal], error) {
	var it animalItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, err
	}
	animal := &domain.Animal{
		ID:               it.ID,
		Name:             it.Name,
		Species:          domain.Species(it.Species),
		Breed:            it.Breed,
		Age:              it.Age,
		Size:             domain.Size(it.Size),
		EnergyLevel:      it.EnergyLevel,
		GoodWithChildren: it.GoodWithChildren,
		GoodWithPets:     it.GoodWithPets,
		Description:      it.Description,
		PhotoURLs:        append([]string{}, it.PhotoURLs...),
		Status:           domain.Status(it.Status),
		ShelterID:        it.ShelterID,
	}
	return projection.New(animal, dynamo.ParseTime(it.CreatedAt), dynamo.ParseTime(it.UpdatedAt)), nil
}
