package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	type doc struct {
		Timeout Duration `json:"timeout"`
	}

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"15s"}`), &d))
	assert.Equal(t, 15*time.Second, d.Timeout.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":1000000000}`), &d))
	assert.Equal(t, time.Second, d.Timeout.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"timeout":"bogus"}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"timeout":true}`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{30 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"30s"`, string(b))
}
