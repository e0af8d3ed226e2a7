package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t", RequestID: "r"})
	ctx = WithRequestData(ctx, &RequestData{Subject: "u1", Role: "ADMIN"})

	assert.Equal(t, "t", GetTraceData(ctx).TraceID)
	assert.Equal(t, "ADMIN", GetRequestData(ctx).Role)
	assert.Nil(t, GetRequestData(context.Background()))
}
