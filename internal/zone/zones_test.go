package zone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

func TestAll_ReturnsAllZones(t *testing.T) {
	zones := zone.All()
	require.Len(t, zones, zone.Count)

	seen := make(map[string]bool)
	for _, z := range zones {
		assert.NotEmpty(t, z.Name)
		assert.False(t, seen[z.Name], "duplicate zone name: %s", z.Name)
		seen[z.Name] = true

		// All zones are within greater Mumbai.
		assert.InDelta(t, 19.0, z.Lat, 0.5, "zone %s latitude", z.Name)
		assert.InDelta(t, 72.85, z.Lon, 0.2, "zone %s longitude", z.Name)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	zones := zone.All()
	zones[0].Name = "mutated"

	fresh := zone.All()
	assert.NotEqual(t, "mutated", fresh[0].Name)
}

func TestByName(t *testing.T) {
	z, ok := zone.ByName("Dadar")
	require.True(t, ok)
	assert.Equal(t, "Dadar", z.Name)
	assert.InDelta(t, 19.0178, z.Lat, 0.0001)

	_, ok = zone.ByName("Atlantis")
	assert.False(t, ok)
}
