package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(context.Context, []core.Message) (string, error) {
	return m.text, m.err
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static {{ not rendered")
	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "static {{ not rendered", got)
}

func TestInstruction_Template(t *testing.T) {
	inst := NewInstructionFromTemplate("You are {{.name | upper}}.", map[string]any{"name": "critic"})
	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "You are CRITIC.", got)
}

func TestInstruction_NewInstructionFromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(_ context.Context, history []core.Message) (string, error) {
		if len(history) > 0 {
			return "continue", nil
		}
		return "start", nil
	})
	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "start", got)

	got, err = inst.Resolve(context.Background(), []core.Message{core.NewTextMessage(core.RoleUser, "hi", "user")})
	require.NoError(t, err)
	assert.Equal(t, "continue", got)
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	expectedErr := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: expectedErr})
	_, err := inst.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, expectedErr)
}
