package godville

import (
	"context"
	"net/http"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	c := New(BaseURLEn, httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))

	httpmock.RegisterResponder("GET", BaseURLEn+"/Zeus",
		httpmock.NewStringResponder(200, `{"godname":"Zeus","name":"Hercules","motto":"Onward","level":54,
			"gender":"male","arena_won":3,"temple_completed_at":"2019-05-01T10:00:00+03:00",
			"pet":{"pet_name":"Rex","pet_class":"dragon","pet_level":4}}`))
	httpmock.RegisterResponder("GET", BaseURLEn+"/Nobody", httpmock.NewStringResponder(404, "not found"))

	p, err := c.Profile(context.Background(), "Zeus", "")
	require.NoError(t, err)
	assert.Equal(t, "**Zeus** y su **Hercules**\n*Onward*", p.Header())

	lines := p.Lines()
	assert.Equal(t, "Nivel del héroe: 54", lines[0])
	assert.Contains(t, lines, "Victorias en la arena: 3")
	assert.Contains(t, lines, "Templo terminado: 01.05.2019 07:00:00")
	assert.Contains(t, lines, "    Nivel: 4")
	assert.NotContains(t, lines, "Derrotas en la arena: 0")

	_, err = c.Profile(context.Background(), "Nobody", "")
	assert.ErrorIs(t, err, ErrGodNotFound)
}

func TestFightTypeName(t *testing.T) {
	p := &Profile{FightType: "dungeon"}
	if got := p.FightTypeName(); got != "Mazmorra" {
		t.Errorf("FightTypeName() = %v, want Mazmorra", got)
	}
}
