package chatmodel_test

import (
	"testing"

	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	conv := chatmodel.New("be brief", "hello")
	require.Len(t, conv, 2)
	assert.Equal(t, chatmodel.RoleSystem, conv[0].Role)
	assert.Equal(t, "be brief", conv[0].Content)
	assert.Equal(t, chatmodel.RoleUser, conv[1].Role)

	conv = chatmodel.New("", "hello")
	require.Len(t, conv, 1)
	assert.Equal(t, chatmodel.RoleUser, conv[0].Role)
}

func TestAppendDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := chatmodel.New("sys", "first")
	snapshot := base

	grown := base.Append(chatmodel.RoleAssistant, "reply")
	grown = grown.Append(chatmodel.RoleTool, "result")

	require.Len(t, grown, 4)
	assert.Equal(t, chatmodel.RoleTool, grown[3].Role)

	// earlier snapshot is unaffected
	require.Len(t, snapshot, 2)
	assert.Equal(t, "first", snapshot[1].Content)
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	for _, r := range []chatmodel.Role{
		chatmodel.RoleSystem, chatmodel.RoleUser, chatmodel.RoleAssistant, chatmodel.RoleTool,
	} {
		assert.True(t, chatmodel.ValidRole(r))
	}
	assert.False(t, chatmodel.ValidRole("moderator"))
}
