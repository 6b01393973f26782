package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// fakeDynamo applies Put and Delete transaction items to a map keyed by pk
// and honours attribute_not_exists / attribute_exists conditions.
type fakeDynamo struct {
	items        map[string]map[string]types.AttributeValue
	transactions []*dynamodb.TransactWriteItemsInput
}

var _ dynamo.API = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func pkOf(item map[string]types.AttributeValue) string {
	if s, ok := item["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		if kind, ok := item["kind"].(*types.AttributeValueMemberS); ok && kind.Value == kindUser {
			out = append(out, item)
		}
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transactions = append(f.transactions, in)
	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, write := range in.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		var pk, condition string
		switch {
		case write.Put != nil:
			pk, condition = pkOf(write.Put.Item), aws.ToString(write.Put.ConditionExpression)
		case write.Delete != nil:
			pk, condition = pkOf(write.Delete.Key), aws.ToString(write.Delete.ConditionExpression)
		}
		_, exists := f.items[pk]
		if (condition == "attribute_not_exists(#pk)" && exists) || (condition == "attribute_exists(#pk)" && !exists) {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}
	for _, write := range in.TransactItems {
		switch {
		case write.Put != nil:
			f.items[pkOf(write.Put.Item)] = write.Put.Item
		case write.Delete != nil:
			delete(f.items, pkOf(write.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func newUser(t *testing.T, id, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(id, email, "Name "+id, "secret1", identity.RoleUser)
	require.NoError(t, err)
	return user
}

func TestRepository_CreateAndEmailMarker(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewRepository(fake).WithTable("users-test")

	_, err := repo.Create(context.Background(), newUser(t, "u-1", "ann@example.com"))
	require.NoError(t, err)
	assert.Contains(t, fake.items, "user#u-1")
	assert.Contains(t, fake.items, "email#ann@example.com")
	assert.Equal(t, "users-test", aws.ToString(fake.transactions[0].TransactItems[0].Put.TableName))

	_, err = repo.Create(context.Background(), newUser(t, "u-2", "ann@example.com"))
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	found, err := repo.GetByEmail(context.Background(), "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.Entity.ID)
	assert.True(t, found.Entity.CheckPassword("secret1"))
}

func TestRepository_UpdateMovesMarker(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewRepository(fake)
	user := newUser(t, "u-1", "ann@example.com")
	_, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), newUser(t, "u-2", "ben@example.com"))
	require.NoError(t, err)

	require.NoError(t, user.SetEmail("ann.b@example.com"))
	updated, err := repo.Update(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "ann.b@example.com", updated.Entity.Email)
	assert.NotContains(t, fake.items, "email#ann@example.com")
	assert.Contains(t, fake.items, "email#ann.b@example.com")

	require.NoError(t, user.SetEmail("ben@example.com"))
	_, err = repo.Update(context.Background(), user)
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	_, err = repo.Update(context.Background(), newUser(t, "ghost", "ghost@example.com"))
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteAndList(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewRepository(fake)
	_, err := repo.Create(context.Background(), newUser(t, "u-1", "ann@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), newUser(t, "u-2", "ben@example.com"))
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(context.Background(), "u-1"))
	assert.NotContains(t, fake.items, "email#ann@example.com")
	require.ErrorIs(t, repo.Delete(context.Background(), "u-1"), ports.ErrNotFound)

	_, err = repo.GetByEmail(context.Background(), "ann@example.com")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
