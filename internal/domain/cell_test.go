package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRoundTrip(t *testing.T) {
	tests := []struct {
		code string
		want Cell
	}{
		{"0", EmptyCell()},
		{"b", BorderCell()},
		{"e", DecorativeCell()},
		{"sul", CatalystCell()},
		{"o", ElementCell("", Old)},
		{"A", ElementCell("A", Fresh)},
		{"As", ElementCell("A", Spoilt)},
		{"Ao", ElementCell("A", Old)},
		{"Al", LockedCell("A")},
		{"7", ElementCell("7", Fresh)},
		{"12s", ElementCell("12", Spoilt)},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCell(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, got.Code())
		})
	}
}

func TestParseCellTrimsSpace(t *testing.T) {
	got, err := ParseCell(" As ")
	require.NoError(t, err)
	assert.Equal(t, ElementCell("A", Spoilt), got)
}

func TestParseCellRejects(t *testing.T) {
	for _, code := range []string{"", "!", "A!", "bs", "os", "sulss", "toolongkind"} {
		t.Run(code, func(t *testing.T) {
			_, err := ParseCell(code)
			assert.Error(t, err)
		})
	}
}

func TestMaterialIgnoresDecayStage(t *testing.T) {
	for _, c := range []Cell{ElementCell("A", Fresh), ElementCell("A", Spoilt), ElementCell("A", Old)} {
		k, ok := c.Material()
		assert.True(t, ok)
		assert.Equal(t, Kind("A"), k)
	}
	for _, c := range []Cell{ElementCell("", Old), LockedCell("A"), CatalystCell(), BorderCell(), EmptyCell()} {
		_, ok := c.Material()
		assert.False(t, ok, "cell %s", c)
	}
}

func TestCellJSONUsesCodes(t *testing.T) {
	g := Grid{{ElementCell("A", Spoilt), CatalystCell()}, {LockedCell("B"), EmptyCell()}}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[["As","sul"],["Bl","0"]]`, string(data))

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, back)
}
