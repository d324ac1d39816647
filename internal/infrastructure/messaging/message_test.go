package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePayloadRoundTrip(t *testing.T) {
	msg, err := NewMessage("job-1", "eval_job", "int-1", &EvalJobMessage{
		InteractionID: "int-1",
		Reason:        "created",
	})
	require.NoError(t, err)

	msg.SetMetadata("request_id", "req-42")
	assert.Equal(t, "req-42", msg.GetMetadata("request_id"))
	assert.Equal(t, "", msg.GetMetadata("missing"))

	var payload EvalJobMessage
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "int-1", payload.InteractionID)
	assert.Equal(t, "created", payload.Reason)
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:stream:eval:jobs", StreamEvalJobs.DLQStream())
	assert.Equal(t, "dlq:stream:content:ingest", StreamContentIngest.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        10 * time.Second,
		Multiplier: 2,
	}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	// 超过上限后封顶
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(10))
}
