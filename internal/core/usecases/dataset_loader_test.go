package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/core/usecases"
)

// --- Mock DatasetProvider ---

type mockProvider struct {
	fetchFn func(ctx context.Context) ([]byte, error)
	calls   int
}

func (m *mockProvider) Fetch(ctx context.Context) ([]byte, error) {
	m.calls++
	return m.fetchFn(ctx)
}

func csvProvider(s string) *mockProvider {
	return &mockProvider{fetchFn: func(context.Context) ([]byte, error) { return []byte(s), nil }}
}

const municipiosCSV = `codigo_ibge,nome,latitude,longitude,capital,codigo_uf,siafi_id,ddd,fuso_horario
2611606,Recife,-8.04666,-34.8771,1,26,2531,81,America/Recife
3550308,São Paulo,-23.5329,-46.6395,1,35,7107,11,America/Sao_Paulo
2607901,Jaboatão dos Guararapes,-8.11298,-35.015,0,26,2457,81,America/Recife
`

func TestLoadDataset(t *testing.T) {
	ds, err := usecases.LoadDataset(context.Background(), csvProvider(municipiosCSV))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	rows := ds.Municipalities()
	assert.Equal(t, domain.Municipality{Name: "Recife", RegionCode: 26, Latitude: -8.04666, Longitude: -34.8771}, rows[0])
	assert.Equal(t, "São Paulo", rows[1].Name)
	assert.Equal(t, 35, rows[1].RegionCode)

	inView := ds.Within(domain.Bounds{
		NorthEast: domain.GeoPoint{Lat: -8.0, Lng: -34.8},
		SouthWest: domain.GeoPoint{Lat: -8.2, Lng: -35.1},
	})
	require.Len(t, inView, 2)
	assert.Equal(t, "Recife", inView[0].Name)
	assert.Equal(t, "Jaboatão dos Guararapes", inView[1].Name)
}

func TestLoadDataset_DownloadFailed(t *testing.T) {
	provider := &mockProvider{fetchFn: func(context.Context) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}

	ds, err := usecases.LoadDataset(context.Background(), provider)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	require.NotNil(t, ds)
	assert.True(t, ds.Empty())
}

func TestLoadDataset_DownloadFailedKeepsWrappedSentinel(t *testing.T) {
	provider := &mockProvider{fetchFn: func(context.Context) ([]byte, error) {
		return nil, errors.Join(domain.ErrDownloadFailed, errors.New("HTTP 500"))
	}}

	_, err := usecases.LoadDataset(context.Background(), provider)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
}

func TestLoadDataset_SchemaMismatch(t *testing.T) {
	ds, err := usecases.LoadDataset(context.Background(), csvProvider("codigo_ibge,nome,lat,lon,codigo_uf\n1,A,1,1,26\n"))
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.True(t, ds.Empty())
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "longitude")
}

func TestLoadDataset_EmptyBody(t *testing.T) {
	ds, err := usecases.LoadDataset(context.Background(), csvProvider(""))
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.True(t, ds.Empty())
}

func TestParseMunicipalities_DropsIncompleteRows(t *testing.T) {
	in := "nome,latitude,longitude,codigo_uf\n" +
		"Recife,-8.04666,-34.8771,26\n" +
		",-8.0,-34.0,26\n" + // no name
		"Olinda,,-34.8545,26\n" + // no latitude
		"Paulista,-7.9408,abc,26\n" + // bad longitude
		"Igarassu,-7.83,-34.90,\n" + // no region
		"Goiana,-7.56,-35.0,26.5\n" + // fractional region
		"Cabo,NaN,-35.0,26\n" + // NaN
		"Abreu e Lima,-7.9007,-34.8984,26.0\n"

	rows, dropped, err := usecases.ParseMunicipalities(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 6, dropped)
	require.Len(t, rows, 2)
	assert.Equal(t, "Recife", rows[0].Name)
	assert.Equal(t, "Abreu e Lima", rows[1].Name)
	assert.Equal(t, 26, rows[1].RegionCode)
}

func TestParseMunicipalities_HeaderVariants(t *testing.T) {
	in := "\ufeffnome , latitude,longitude,codigo_uf,extra\n" +
		"Recife,-8.04666,-34.8771,26,x\n" +
		"Short,-8.0\n"

	rows, dropped, err := usecases.ParseMunicipalities(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, rows, 1)
	assert.Equal(t, "Recife", rows[0].Name)
}

func TestParseMunicipalities_ColumnOrder(t *testing.T) {
	in := "codigo_uf,longitude,nome,latitude\n35,-46.6395,São Paulo,-23.5329\n"

	rows, _, err := usecases.ParseMunicipalities(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Municipality{Name: "São Paulo", RegionCode: 35, Latitude: -23.5329, Longitude: -46.6395}, rows[0])
}
