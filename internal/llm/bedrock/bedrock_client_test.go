package bedrock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/config"
	"freightx/internal/domain"
	"freightx/internal/llm/bedrock"
)

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBedrockClient_Complete_Success(t *testing.T) {
	fake := &fakeInvoker{body: `{"content":[{"type":"text","text":"{\"incoterm\":\"DAP\"}"}],"stop_reason":"end_turn"}`}
	c := bedrock.NewClientWithAPI(fake, &config.LLMProviderConfig{DefaultModel: "anthropic.test"})

	out, err := c.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"incoterm":"DAP"}`, out)
	assert.Equal(t, "anthropic.test", aws.ToString(fake.input.ModelId))

	var req map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.input.Body, &req))
	assert.Equal(t, "bedrock-2023-05-31", req["anthropic_version"])
	assert.Equal(t, float64(1024), req["max_tokens"])
}

func TestBedrockClient_Complete_Throttled(t *testing.T) {
	fake := &fakeInvoker{err: &types.ThrottlingException{Message: aws.String("slow down")}}
	c := bedrock.NewClientWithAPI(fake, &config.LLMProviderConfig{})

	_, err := c.Complete(context.Background(), "prompt")

	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestBedrockClient_Complete_OtherError(t *testing.T) {
	fake := &fakeInvoker{err: errors.New("access denied")}
	c := bedrock.NewClientWithAPI(fake, &config.LLMProviderConfig{})

	_, err := c.Complete(context.Background(), "prompt")

	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestBedrockClient_Complete_EmptyContent(t *testing.T) {
	fake := &fakeInvoker{body: `{"content":[]}`}
	c := bedrock.NewClientWithAPI(fake, &config.LLMProviderConfig{})

	_, err := c.Complete(context.Background(), "prompt")

	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}
