package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardUnmarshalJSON(t *testing.T) {
	var c Card
	require.NoError(t, c.UnmarshalJSON([]byte(`"Ah"`)))
	assert.Equal(t, "Ah", c.String())
	assert.Equal(t, int32(14), c.RankValue())

	require.NoError(t, c.UnmarshalJSON([]byte(`"2c"`)))
	assert.Equal(t, "2c", c.String())
}

func TestCardUnmarshalRejectsCorruptInput(t *testing.T) {
	// empty, missing suit, too long, bad rank, bad suit, unquoted,
	// truncated, nothing at all
	inputs := []string{`""`, `"A"`, `"Ah2"`, `"Xh"`, `"Az"`, `Ah`, `"`, ``}
	for _, in := range inputs {
		var c Card
		err := c.UnmarshalJSON([]byte(in))
		assert.Error(t, err, "input %q must not decode", in)
	}
}

func TestCardMarshalRoundTrip(t *testing.T) {
	for _, name := range []string{"As", "Th", "2c", "9d", "Kh"} {
		card := NewCard(name)
		data, err := card.MarshalJSON()
		require.NoError(t, err)

		var decoded Card
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, card, decoded)
	}
}
