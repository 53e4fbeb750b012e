package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringAbsentVsNull(t *testing.T) {
	var absent StudentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X"}`), &absent))
	assert.False(t, absent.ProctorID.Set)

	var null StudentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"proctorId":null}`), &null))
	assert.True(t, null.ProctorID.Set)
	assert.Empty(t, null.ProctorID.Value)

	var empty StudentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"proctorId":""}`), &empty))
	assert.True(t, empty.ProctorID.Set)
	assert.Empty(t, empty.ProctorID.Value)

	var set StudentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"proctorId":"p-1"}`), &set))
	assert.True(t, set.ProctorID.Set)
	assert.Equal(t, "p-1", set.ProctorID.Value)
}

func TestStudentJSONHidesPasswordHash(t *testing.T) {
	raw, err := json.Marshal(Student{ID: "s1", Name: "S", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.Contains(t, string(raw), `"_id":"s1"`)
}
