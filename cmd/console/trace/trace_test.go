package trace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboundIncrementsWithinRequest(t *testing.T) {
	ctx, span := Start(context.Background(), "req-1")

	assert.Equal(t, "0", span.Current())

	reqID, spanID := Outbound(ctx)
	assert.Equal(t, "req-1", reqID)
	assert.Equal(t, "1", spanID)

	_, spanID = Outbound(ctx)
	assert.Equal(t, "2", spanID)
	assert.Equal(t, "2", FromContext(ctx).Current())
}

func TestOutboundIsSafeForConcurrentCalls(t *testing.T) {
	ctx, span := Start(context.Background(), "req-2")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Outbound(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, "50", span.Current())
}

func TestOutboundWithoutSpanFallsBack(t *testing.T) {
	reqID, spanID := Outbound(context.Background())

	assert.Len(t, reqID, 32)
	assert.Equal(t, "1", spanID)
	assert.Nil(t, FromContext(context.Background()))
}

func TestStartGeneratesRequestID(t *testing.T) {
	_, span := Start(context.Background(), "")
	require.NotNil(t, span)
	assert.Len(t, span.RequestID, 32)
}

func TestSessionBinding(t *testing.T) {
	var missing *Span
	assert.Empty(t, missing.SessionID())
	assert.Equal(t, "0", missing.Current())

	_, span := Start(context.Background(), "req-3")
	assert.Empty(t, span.SessionID())

	span.BindSession("sess-1")
	assert.Equal(t, "sess-1", span.SessionID())
}
