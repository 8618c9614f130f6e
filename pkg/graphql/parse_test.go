package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleQuery(t *testing.T) {
	body := []byte(`{"query":"query GetUser($id: ID!) { user(id: $id) { id name email } }","variables":{"id":"1"}}`)
	res, err := ParseRequestBody(body)
	require.NoError(t, err)
	require.Len(t, res.Operations, 1)
	op := res.Operations[0]
	assert.Equal(t, "query", op.Type)
	assert.Equal(t, "GetUser", op.Name)
	assert.ElementsMatch(t, []string{"user"}, op.Fields)
	assert.True(t, op.HasVariables)
}

func TestParseBatchedOperations(t *testing.T) {
	body := []byte(`[{"query":"mutation M1 { createUser(name: \"a\") { id } }"},{"query":"query M2 { users { id } }"}]`)
	res, err := ParseRequestBody(body)
	require.NoError(t, err)
	assert.True(t, res.IsBatched)
	require.Len(t, res.Operations, 2)
	assert.Equal(t, "mutation", res.Operations[0].Type)
	assert.Equal(t, 1, res.Operations[1].BatchIndex)
}

func TestParseEmptyBodyIsError(t *testing.T) {
	_, err := ParseRequestBody([]byte(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseNonGraphQLBody(t *testing.T) {
	_, err := ParseRequestBody([]byte(`{"foo":"bar"}`))
	assert.True(t, IsNotGraphQL(err))
}

func TestIsGraphQLBody(t *testing.T) {
	assert.True(t, IsGraphQLBody([]byte(`{"query":"{ me { id } }"}`)))
	assert.False(t, IsGraphQLBody([]byte(`{"name":"x"}`)))
}
