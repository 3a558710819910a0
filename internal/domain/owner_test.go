package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "user:u1", Owner{UserID: "u1", DeviceID: "d1"}.Key())
	assert.Equal(t, "device:d1", Owner{DeviceID: "d1"}.Key())
	assert.Equal(t, "", Owner{}.Key())

	assert.True(t, Owner{}.IsZero())
	assert.True(t, Owner{UserID: "u1"}.Authenticated())
	assert.False(t, Owner{DeviceID: "d1"}.Authenticated())
}
