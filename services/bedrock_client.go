package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"macrolog/apperror"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	defaultBedrockModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"
	bedrockMaxTokens      = 2048
	bedrockTemperature    = 0.2
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient is the AIClient backed by the Bedrock Converse API.
type BedrockClient struct {
	brc     bedrockRuntimeClient
	modelID string
}

func NewBedrockClient(brc bedrockRuntimeClient, modelID string) *BedrockClient {
	if modelID == "" {
		modelID = defaultBedrockModelID
	}
	return &BedrockClient{brc: brc, modelID: modelID}
}

func (c *BedrockClient) Complete(ctx context.Context, system, user string) (string, error) {
	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System:  []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: user}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(bedrockMaxTokens),
			Temperature: aws.Float32(bedrockTemperature),
		},
	}
	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		var throttled *types.ThrottlingException
		var quota *types.ServiceQuotaExceededException
		switch {
		case errors.As(err, &throttled), errors.As(err, &quota):
			return "", apperror.RateLimited()
		}
		return "", apperror.Upstream("Bedrock", err)
	}

	if out.StopReason == types.StopReasonMaxTokens {
		slog.Warn("bedrock reply truncated", "model_id", c.modelID)
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", apperror.Upstream("Bedrock", fmt.Errorf("unexpected output type %T", out.Output))
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", apperror.Upstream("Bedrock", fmt.Errorf("empty completion"))
	}
	return sb.String(), nil
}
