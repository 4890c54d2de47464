package mainconfig

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/talentseek/b2beelanding/internal/config"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

func TestLoadAWSConfigEndpointOverride(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:           "eu-west-2",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-2", awsCfg.Region)
	require.NotNil(t, awsCfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *awsCfg.BaseEndpoint)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestOpenDatabaseRequiresURL(t *testing.T) {
	_, _, err := OpenDatabase(context.Background(), "  ")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	assert.Nil(t, NewRedisClient(&appconfig.Config{}))

	mr := miniredis.RunT(t)
	client := NewRedisClient(&appconfig.Config{RedisAddr: mr.Addr()})
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewNotifyQueue(t *testing.T) {
	queue, memory := NewNotifyQueue(&appconfig.Config{}, aws.Config{})
	assert.True(t, memory)
	assert.IsType(t, &notify.MemoryQueue{}, queue)

	queue, memory = NewNotifyQueue(&appconfig.Config{NotifyQueueURL: "http://localhost:4566/000000000000/notify"}, aws.Config{Region: "eu-west-2"})
	assert.False(t, memory)
	assert.IsType(t, &notify.SQSQueue{}, queue)
}

func TestNewEmailSender(t *testing.T) {
	logger := logging.Discard()
	assert.Nil(t, NewEmailSender(&appconfig.Config{EmailProvider: "sendgrid"}, aws.Config{}, logger))
	assert.NotNil(t, NewEmailSender(&appconfig.Config{EmailProvider: "stub"}, aws.Config{}, logger))
	assert.NotNil(t, NewEmailSender(&appconfig.Config{EmailProvider: "ses", EmailFromAddress: "noreply@b2bee.ai"}, aws.Config{Region: "eu-west-2"}, logger))
}
