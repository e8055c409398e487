package services

import (
	"context"
	"errors"
	"testing"

	"macrolog/apperror"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConverse struct {
	out *bedrockruntime.ConverseOutput
	err error
	in  *bedrockruntime.ConverseInput
}

func (m *mockConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.in = in
	return m.out, m.err
}

func textReply(parts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, p := range parts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output:     &types.ConverseOutputMemberMessage{Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks}},
		StopReason: types.StopReasonEndTurn,
	}
}

func TestBedrockClient_Complete(t *testing.T) {
	m := &mockConverse{out: textReply(`{"foods":`, `[]}`)}
	got, err := NewBedrockClient(m, "").Complete(context.Background(), "system prompt", "a banana")
	require.NoError(t, err)
	assert.Equal(t, `{"foods":[]}`, got)

	require.NotNil(t, m.in)
	assert.Equal(t, defaultBedrockModelID, aws.ToString(m.in.ModelId))
	require.Len(t, m.in.System, 1)
	assert.Equal(t, "system prompt", m.in.System[0].(*types.SystemContentBlockMemberText).Value)
	require.Len(t, m.in.Messages, 1)
	assert.Equal(t, types.ConversationRoleUser, m.in.Messages[0].Role)
}

func TestBedrockClient_Errors(t *testing.T) {
	tests := []struct {
		name string
		mock *mockConverse
		want error
	}{
		{"throttled", &mockConverse{err: &types.ThrottlingException{Message: aws.String("too many")}}, apperror.ErrRateLimited},
		{"quota", &mockConverse{err: &types.ServiceQuotaExceededException{Message: aws.String("quota")}}, apperror.ErrRateLimited},
		{"other", &mockConverse{err: errors.New("dial tcp: timeout")}, apperror.ErrUpstream},
		{"empty", &mockConverse{out: textReply("  ")}, apperror.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBedrockClient(tt.mock, "model").Complete(context.Background(), "s", "u")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
