package main

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatchConfig(t *testing.T) {
	config := NewWatchConfig()

	assert.Equal(t, 500, config.DebounceTime)
	assert.Equal(t, "table", config.Format)
	assert.Empty(t, config.Output)
	assert.Equal(t, 0, config.Ceiling)
}

func TestValidateWatchConfig(t *testing.T) {
	tests := []struct {
		name          string
		config        *WatchConfig
		expectedError string
	}{
		{
			name:   "default config",
			config: NewWatchConfig(),
		},
		{
			name: "zero debounce",
			config: &WatchConfig{
				DebounceTime: 0,
				Format:       "table",
			},
		},
		{
			name: "negative debounce",
			config: &WatchConfig{
				DebounceTime: -100,
				Format:       "table",
			},
			expectedError: "debounce time cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDebounceFileEventsCoalesces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan FileEvent)
	output := make(chan FileEvent, 10)

	go debounceFileEvents(ctx, input, output, 50*time.Millisecond)

	// A rapid burst of writes to the same file should produce a single
	// debounced event.
	for i := 0; i < 3; i++ {
		input <- FileEvent{Path: "/tmp/model.txt", Op: fsnotify.Write, Time: time.Now()}
	}

	select {
	case event := <-output:
		assert.Equal(t, "/tmp/model.txt", event.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced event")
	}

	select {
	case event := <-output:
		t.Fatalf("expected a single debounced event, got a second one: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebounceFileEventsStopsOnClose(t *testing.T) {
	ctx := context.Background()

	input := make(chan FileEvent)
	output := make(chan FileEvent, 1)
	done := make(chan struct{})

	go func() {
		debounceFileEvents(ctx, input, output, 10*time.Millisecond)
		close(done)
	}()

	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer did not stop after input closed")
	}
}

func TestGetWatchConfigFromFlags(t *testing.T) {
	cmd := watchCmd
	require.NoError(t, cmd.Flags().Set("debounce", "250"))
	require.NoError(t, cmd.Flags().Set("format", "csv"))
	defer func() {
		_ = cmd.Flags().Set("debounce", "500")
		_ = cmd.Flags().Set("format", "table")
	}()

	config := getWatchConfigFromFlags(cmd)

	assert.Equal(t, 250, config.DebounceTime)
	assert.Equal(t, "csv", config.Format)
}
