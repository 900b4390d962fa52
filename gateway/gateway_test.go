package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/danyill/oscd-subscriber-lb-siemens/edit"
	"github.com/danyill/oscd-subscriber-lb-siemens/message"
	"github.com/danyill/oscd-subscriber-lb-siemens/testutil"
)

func TestNewValidation(t *testing.T) {
	bus := testutil.NewBus()

	tests := []struct {
		name    string
		bus     Publisher
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			bus:     bus,
			cfg:     Config{Listen: ":8080", EventsSubject: "scl.edits"},
			wantErr: false,
		},
		{
			name:    "nil bus",
			bus:     nil,
			cfg:     Config{Listen: ":8080"},
			wantErr: true,
		},
		{
			name:    "missing listen address",
			bus:     bus,
			cfg:     Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.bus, tt.cfg, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	g, err := New(testutil.NewBus(), Config{Listen: ":8080"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "/edits", g.config.Path)
	assert.Equal(t, float64(100), g.config.EventRate)
	assert.Equal(t, 200, g.config.EventBurst)
}

func TestForwardValidEvent(t *testing.T) {
	bus := testutil.NewBus()
	g, err := New(bus, Config{Listen: ":8080", EventsSubject: "scl.edits"}, nil, nil)
	require.NoError(t, err)

	attr := "value"
	ev := message.NewEditEvent("host", []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: 3,
			Attrs:   map[string]*string{"desc": &attr},
		}},
	})
	data, err := ev.Encode()
	require.NoError(t, err)

	limiter := rate.NewLimiter(rate.Inf, 0)
	g.forward(context.Background(), limiter, data)

	require.Equal(t, 1, bus.MessageCount("scl.edits"))
	assert.Equal(t, data, bus.Messages("scl.edits")[0])

	health := g.Health()
	assert.Equal(t, int64(1), health.EventsForwarded)
	assert.Equal(t, int64(0), health.EventsDropped)
}

func TestForwardRejectsMalformedFrame(t *testing.T) {
	bus := testutil.NewBus()
	g, err := New(bus, Config{Listen: ":8080", EventsSubject: "scl.edits"}, nil, nil)
	require.NoError(t, err)

	limiter := rate.NewLimiter(rate.Inf, 0)
	g.forward(context.Background(), limiter, []byte("not json"))

	assert.Equal(t, 0, bus.MessageCount("scl.edits"))
	assert.Equal(t, int64(1), g.Health().EventsDropped)
}

func TestForwardRateLimits(t *testing.T) {
	bus := testutil.NewBus()
	g, err := New(bus, Config{Listen: ":8080", EventsSubject: "scl.edits"}, nil, nil)
	require.NoError(t, err)

	ev := message.NewEditEvent("host", nil)
	data, err := ev.Encode()
	require.NoError(t, err)

	// Burst of 2, no refill within the test.
	limiter := rate.NewLimiter(rate.Limit(0.001), 2)
	for i := 0; i < 5; i++ {
		g.forward(context.Background(), limiter, data)
	}

	assert.Equal(t, 2, bus.MessageCount("scl.edits"))
	assert.Equal(t, int64(3), g.Health().EventsDropped)
}

func TestStopBeforeStart(t *testing.T) {
	g, err := New(testutil.NewBus(), Config{Listen: ":8080"}, nil, nil)
	require.NoError(t, err)

	assert.NoError(t, g.Stop(0))
	assert.False(t, g.Health().Healthy)
}
