package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  são   PAULO ", "São Paulo"},
		{"flamengo", "Flamengo"},
		{"RB bragantino", "RB Bragantino"},
		{"VASCO DA GAMA", "Vasco da Gama"},
		{"atlético mineiro", "Atlético Mineiro"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), tc.in)
	}
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "gremio", FoldKey("Grêmio"))
	assert.Equal(t, "sao paulo", FoldKey("  São   Paulo"))
	assert.Equal(t, "atletico-mg", FoldKey("Atlético-MG"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "analise-flamengo-x-palmeiras", Slugify("Análise: Flamengo x Palmeiras"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"clasico": true, "clasico-2": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := UniqueSlug(context.Background(), "clasico", exists)
	require.NoError(t, err)
	assert.Equal(t, "clasico-3", got)

	got, err = UniqueSlug(context.Background(), "rodada-1", exists)
	require.NoError(t, err)
	assert.Equal(t, "rodada-1", got)

	boom := errors.New("db down")
	_, err = UniqueSlug(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
