package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capitals() []Point {
	return []Point{
		{Ordinal: 0, Lat: -8.04666, Lon: -34.8771}, // Recife
		{Ordinal: 1, Lat: -23.5329, Lon: -46.6395}, // São Paulo
		{Ordinal: 2, Lat: -8.11298, Lon: -35.015},  // Jaboatão dos Guararapes
		{Ordinal: 3, Lat: -22.9129, Lon: -43.2003}, // Rio de Janeiro
		{Ordinal: 4, Lat: -7.11509, Lon: -34.8641}, // João Pessoa
	}
}

func TestNewIndex(t *testing.T) {
	ix := NewIndex(capitals())
	require.NotNil(t, ix)
	assert.Equal(t, 5, ix.Size())

	empty := NewIndex(nil)
	assert.Equal(t, 0, empty.Size())
	assert.Nil(t, empty.Candidates(-90, -180, 90, 180))
}

func TestCandidates_Box(t *testing.T) {
	ix := NewIndex(capitals())

	// Greater Recife
	got := ix.Candidates(-8.2, -35.1, -8.0, -34.8)
	assert.Equal(t, []int{0, 2}, got)

	// North-east coast
	got = ix.Candidates(-8.2, -35.1, -7.0, -34.8)
	assert.Equal(t, []int{0, 2, 4}, got)

	// Whole country, ascending ordinals
	got = ix.Candidates(-34, -74, 6, -34)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestCandidates_Empty(t *testing.T) {
	ix := NewIndex(capitals())
	assert.Empty(t, ix.Candidates(0, 0, 1, 1))
}

func TestCandidates_Inverted(t *testing.T) {
	ix := NewIndex(capitals())
	assert.Nil(t, ix.Candidates(-8.0, -34.8, -8.2, -35.1))
}

func TestCandidates_ZeroAreaBox(t *testing.T) {
	ix := NewIndex(capitals())
	got := ix.Candidates(-8.04666, -34.8771, -8.04666, -34.8771)
	assert.Contains(t, got, 0)
}

func TestCandidates_NilIndex(t *testing.T) {
	var ix *Index
	assert.Nil(t, ix.Candidates(-90, -180, 90, 180))
}

func TestHaversine(t *testing.T) {
	// Recife to João Pessoa is roughly 104 km.
	d := Haversine(-8.04666, -34.8771, -7.11509, -34.8641)
	assert.InDelta(t, 103_600, d, 1_000)

	assert.Zero(t, Haversine(-8, -34, -8, -34))
}

func TestDiagonalKm(t *testing.T) {
	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.2, DiagonalKm(0, 0, 1, 0), 0.5)
}
