package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/route"
)

func TestConfig_WithDefaults(t *testing.T) {
	c := Config{}.WithDefaults()

	assert.Equal(t, DefaultNodeWidth, c.DefaultNodeWidth)
	assert.Equal(t, DefaultNodeHeight, c.DefaultNodeHeight)
	assert.Equal(t, DefaultNodeSpacing, c.NodeSpacing)
	assert.Equal(t, DefaultTurningSlotSpacing, c.TurningSlotSpacing)
	assert.Equal(t, DefaultLevelSpacing, c.LevelSpacing)
	assert.Equal(t, DefaultMargin, c.Margin)
	assert.Equal(t, DefaultComponentPadding, c.ComponentPadding)
	assert.Equal(t, route.KindPolyline, c.LinkStrategy)
	assert.Equal(t, DefaultNodeWidth, c.VirtualNodeWidth)
	require.NotNil(t, c.Logger)
	require.NotNil(t, c.NodeKey)
	assert.Equal(t, "a-b", c.LinkKey(InputRelation{SourceID: "a", TargetID: "b"}))
	assert.True(t, c.routeOptions().LinkMerge)
}

func TestConfig_WithDefaultsKeepsValues(t *testing.T) {
	c := Config{
		Transverse:       true,
		NodeSpacing:      10,
		Margin:           Margin{Left: 1},
		DisableLinkMerge: true,
	}.WithDefaults()

	assert.Equal(t, 10.0, c.NodeSpacing)
	assert.Equal(t, Margin{Left: 1}, c.Margin)
	assert.Equal(t, 0.1, c.VirtualNodeWidth)
	assert.False(t, c.routeOptions().LinkMerge)

	again := c.WithDefaults()
	assert.Equal(t, c.Margin, again.Margin)
	assert.Equal(t, c.VirtualNodeWidth, again.VirtualNodeWidth)
	assert.Same(t, c.Logger, again.Logger)
}

func TestConfig_NoMargin(t *testing.T) {
	c := Config{NoMargin: true, Margin: Margin{Top: 5}}.WithDefaults()
	assert.True(t, c.Margin.IsZero())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code errors.Code
	}{
		{"defaults", Config{}, ""},
		{"straight", Config{LinkStrategy: route.KindStraight}, ""},
		{"unknown strategy", Config{LinkStrategy: "bezier"}, errors.ErrCodeInvalidStrategy},
		{"custom without factory", Config{LinkStrategy: route.KindCustom}, errors.ErrCodeInvalidConfig},
		{"negative margin", Config{Margin: Margin{Left: -1}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.WithDefaults().Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}
