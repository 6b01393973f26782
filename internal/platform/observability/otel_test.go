package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResource_CarriesAdoptionDeploymentAttributes(t *testing.T) {
	settings := Settings{
		ServiceName:    "pet-adoption-worker",
		Environment:    "staging",
		StorageBackend: "dynamodb",
		Workflows:      "temporal",
	}.withDefaults()

	res, err := newResource(context.Background(), settings)
	require.NoError(t, err)

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "pet-adoption-worker", got["service.name"])
	assert.Equal(t, ServiceNamespace, got["service.namespace"])
	assert.Equal(t, "staging", got["deployment.environment"])
	assert.Equal(t, "dynamodb", got["adoption.storage_backend"])
	assert.Equal(t, "temporal", got["adoption.workflows"])
}

func TestSettingsDefaults(t *testing.T) {
	settings := Settings{}.withDefaults()
	assert.Equal(t, ServiceNamespace, settings.ServiceName)
	assert.Equal(t, "local", settings.Environment)
	assert.Equal(t, "inline", settings.Workflows)

	for _, kv := range settings.attributes() {
		assert.NotEqual(t, attribute.Key("adoption.storage_backend"), kv.Key)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestInstruments_NilSafe(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("internal.adoptions.application"))
	assert.NotNil(t, instruments.Meter("internal.adoptions.application"))
}
