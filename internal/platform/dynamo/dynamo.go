// Package dynamo builds DynamoDB clients and holds helpers shared by the
// document-store adapters.
package dynamo

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by the adapters.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// Settings configures the client. Zero values fall back to local-friendly defaults.
type Settings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// SettingsFromEnv reads AWS_REGION, DYNAMODB_ENDPOINT and the static credentials.
//
// Local DynamoDB does not validate credentials, but the AWS SDK requires them,
// so AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY default to "local".
func SettingsFromEnv() Settings {
	return Settings{
		Region:          getenvDefault("AWS_REGION", "us-east-1"),
		Endpoint:        os.Getenv("DYNAMODB_ENDPOINT"),
		AccessKeyID:     getenvDefault("AWS_ACCESS_KEY_ID", "local"),
		SecretAccessKey: getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
	}
}

// NewConfig loads an aws.Config for settings.
func NewConfig(ctx context.Context, settings Settings) (aws.Config, error) {
	if settings.Region == "" {
		settings.Region = "us-east-1"
	}
	creds := credentials.NewStaticCredentialsProvider(
		defaultString(settings.AccessKeyID, "local"),
		defaultString(settings.SecretAccessKey, "local"),
		"",
	)
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(creds),
	}
	if endpoint := settings.Endpoint; endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// Connect creates a DynamoDB client for settings.
func Connect(ctx context.Context, settings Settings) (*dynamodb.Client, error) {
	cfg, err := NewConfig(ctx, settings)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// TableName returns the env override for key or def.
func TableName(key, def string) string {
	return getenvDefault(key, def)
}

// IsConditionFailed reports whether err is a failed ConditionExpression.
func IsConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

// CancellationCodes returns the per-item reason codes of a cancelled
// transaction, or nil when err is not one.
func CancellationCodes(err error) []string {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	codes := make([]string, len(tce.CancellationReasons))
	for i, reason := range tce.CancellationReasons {
		codes[i] = aws.ToString(reason.Code)
	}
	return codes
}

// ConditionFailedAt reports whether the transaction item at index failed its condition.
func ConditionFailedAt(err error, index int) bool {
	codes := CancellationCodes(err)
	return index < len(codes) && codes[index] == "ConditionalCheckFailed"
}

// Key builds a single string partition key.
func Key(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

// S wraps a string attribute value.
func S(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

// N wraps a numeric attribute value.
func N(value int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)}
}

// FormatTime renders timestamps the way every table stores them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime reverses FormatTime; malformed values yield the zero time.
func ParseTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, value)
	return t
}

// MaxInOperands is the most values a single IN comparator accepts.
const MaxInOperands = 100

// Chunk splits values into consecutive batches of at most size elements.
// Duplicates are dropped so batches never overlap.
func Chunk(values []string, size int) [][]string {
	if size <= 0 {
		size = MaxInOperands
	}
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	var batches [][]string
	for len(unique) > 0 {
		n := min(size, len(unique))
		batches = append(batches, unique[:n:n])
		unique = unique[n:]
	}
	return batches
}

// In renders "name IN (:prefix0, :prefix1, ...)" and the matching values.
// Callers keep len(values) within MaxInOperands.
func In(name, prefix string, values []string) (string, map[string]types.AttributeValue) {
	placeholders := make([]string, 0, len(values))
	bound := make(map[string]types.AttributeValue, len(values))
	for i, v := range values {
		key := ":" + prefix + strconv.Itoa(i)
		placeholders = append(placeholders, key)
		bound[key] = S(v)
	}
	return name + " IN (" + strings.Join(placeholders, ", ") + ")", bound
}

// MergeNames combines expression attribute name maps.
func MergeNames(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultString(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
