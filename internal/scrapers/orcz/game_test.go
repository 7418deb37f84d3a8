package orcz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGameFromName(t *testing.T) {
	testCases := []struct {
		name     string
		expected Game
	}{
		{name: "bl", expected: Borderlands},
		{name: "BL2", expected: Borderlands2},
		{name: " blps ", expected: BorderlandsPreSequel},
		{name: "bl3", expected: Borderlands3},
		{name: "borderlands 3", expected: Borderlands3},
		{name: "Borderlands: The Pre-Sequel", expected: BorderlandsPreSequel},
	}

	for _, test := range testCases {
		game, err := GameFromName(test.name)
		require.NoError(t, err)
		require.Equal(t, test.expected, game)
	}
}

func TestGameFromNameSuggestion(t *testing.T) {
	_, err := GameFromName("bl3s")
	require.ErrorContains(t, err, `did you mean "bl3"?`)

	_, err = GameFromName("zzzzzzzzzz")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "did you mean")
}

func TestGameFlags(t *testing.T) {
	for _, g := range Games {
		require.Equal(t, g == Borderlands3, g.PlatformUnified(), g.String())
		require.NotEmpty(t, g.PageUrl())
	}
	require.Equal(t, DialectNumeric, Borderlands3.Dialect())
	require.Equal(t, DialectWritten, Borderlands2.Dialect())
}
