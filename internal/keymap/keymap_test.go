package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_NoDuplicateChords(t *testing.T) {
	table, err := Table(Default())
	require.NoError(t, err)
	assert.Len(t, table, len(Default()))
}

func TestDefault_ExpectedBindings(t *testing.T) {
	table, err := Table(Default())
	require.NoError(t, err)

	assert.Equal(t, PlayPause, table[Chord{Key: "k"}])
	assert.Equal(t, ToggleMute, table[Chord{Key: "m"}])
	assert.Equal(t, SeekBack, table[Chord{Key: "left"}])
	assert.Equal(t, SeekForward, table[Chord{Key: "right"}])
	assert.Equal(t, SeekBackLarge, table[Chord{Key: "j"}])
	assert.Equal(t, SeekForwardLarge, table[Chord{Key: "l"}])
	assert.Equal(t, VolumeUp, table[Chord{Key: "up"}])
	assert.Equal(t, VolumeDown, table[Chord{Key: "down"}])
	assert.Equal(t, NextTrack, table[Chord{Key: "n", Shift: true}])
	assert.Equal(t, PrevTrack, table[Chord{Key: "p", Shift: true}])
	for d := '0'; d <= '9'; d++ {
		assert.Equal(t, PercentJump, table[Chord{Key: string(d)}], "digit %c", d)
	}

	// Bare n/p must not be bound; they have to stay typeable.
	_, ok := table[Chord{Key: "n"}]
	assert.False(t, ok)
	_, ok = table[Chord{Key: "p"}]
	assert.False(t, ok)
}

func TestTable_RejectsDuplicates(t *testing.T) {
	_, err := Table([]Binding{
		{Action: PlayPause, Key: "k"},
		{Action: ToggleMute, Key: "K"}, // same chord after normalization
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTable_ShiftDistinguishesChords(t *testing.T) {
	table, err := Table([]Binding{
		{Action: NextTrack, Key: "n", Shift: true},
		{Action: PlayPause, Key: "n"},
	})
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"K":          "k",
		"ArrowLeft":  "left",
		"ARROWUP":    "up",
		" ":          "space",
		"Esc":        "escape",
		"Enter":      "return",
		"left":       "left",
		"7":          "7",
		"unknownkey": "unknownkey",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestFromCode(t *testing.T) {
	for code, want := range map[string]string{
		"KeyK":       "k",
		"Digit0":     "0",
		"Digit9":     "9",
		"ArrowLeft":  "left",
		"ArrowDown":  "down",
		"Space":      "space",
		"F5":         "f5",
	} {
		got, err := FromCode(code)
		require.NoError(t, err, "FromCode(%q)", code)
		assert.Equal(t, want, got)
	}

	_, err := FromCode("MediaPlayPause")
	assert.Error(t, err)
}

func TestActionByName(t *testing.T) {
	a, ok := ActionByName("play-pause")
	require.True(t, ok)
	assert.Equal(t, PlayPause, a)

	_, ok = ActionByName("warp-ten")
	assert.False(t, ok)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "seek-back-large", SeekBackLarge.String())
	assert.Equal(t, "unknown", Action(99).String())
}
