package dashboard

import (
	"testing"

	"riskboard/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *risk.Snapshot {
	t.Helper()
	d := testDashboard(t)
	s, err := d.engine.Compute(risk.Params{Confidence: 95, Window: 3})
	require.NoError(t, err)
	return s
}

func TestRenderChart(t *testing.T) {
	s := testSnapshot(t)

	for _, name := range []string{"portfolio", "distribution", "var", "es", "volatility"} {
		t.Run(name, func(t *testing.T) {
			img, err := RenderChart(name, s)
			require.NoError(t, err)
			require.NotEmpty(t, img)
			// PNG signature.
			assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
		})
	}
}

func TestRenderChartUnknownName(t *testing.T) {
	s := testSnapshot(t)
	_, err := RenderChart("bogus", s)
	assert.Error(t, err)
}
