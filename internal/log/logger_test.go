// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconfigure_WritesComponentAndService(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "test-svc"})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	l := WithComponent("playback")
	l.Info().Str(FieldState, "playing").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "test-svc", entry["service"])
	require.Equal(t, "playback", entry[FieldComponent])
	require.Equal(t, "playing", entry[FieldState])
	require.Equal(t, "hello", entry["message"])
}

func TestContextWithImpressionID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		id   string
		want string
	}{
		{name: "nil context", ctx: nil, id: "imp-1", want: "imp-1"},
		{name: "background context", ctx: context.Background(), id: "imp-2", want: "imp-2"},
		{name: "empty id", ctx: context.Background(), id: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithImpressionID(tt.ctx, tt.id)
			require.Equal(t, tt.want, ImpressionIDFromContext(ctx))
		})
	}
}

func TestWithContext_AddsImpressionID(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	ctx := ContextWithImpressionID(context.Background(), "imp-42")
	l := WithContext(ctx, Base())
	l.Info().Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "imp-42", entry[FieldImpressionID])
}

func TestFromContext_FallsBackToBase(t *testing.T) {
	require.NotNil(t, FromContext(nil))
	require.NotNil(t, FromContext(context.Background()))
}
