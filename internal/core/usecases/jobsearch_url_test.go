package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobbmapper/jobbmapper-api/internal/core/usecases"
)

const base = usecases.DefaultJobSearchBaseURL

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"dev":            "dev",
		"dev Acme":       "dev%20Acme",
		"São Paulo":      "S%C3%A3o%20Paulo",
		"Recife,Olinda":  "Recife%2COlinda",
		"a/b":            "a/b",
		"a&b=c":          "a%26b%3Dc",
		"c++":            "c%2B%2B",
		"-._~":           "-._~",
		"Jaboatão":       "Jaboat%C3%A3o",
		"100%":           "100%25",
		"home_office":    "home_office",
		"Espírito Santo": "Esp%C3%ADrito%20Santo",
	}
	for in, want := range tests {
		assert.Equal(t, want, usecases.Quote(in), "Quote(%q)", in)
	}
}

func TestSplitSort(t *testing.T) {
	tests := []struct {
		in           string
		field, order string
		ok           bool
	}{
		{"date_desc", "date", "desc", true},
		{"publishedDate_asc", "publishedDate", "asc", true},
		{"a_b_c", "a", "b_c", true},
		{" date_desc ", "date", "desc", true},
		{"", "", "", false},
		{"date", "date", "", false},
		{"_desc", "", "desc", true},
		{"date_", "date", "", true},
		{"_", "", "", true},
	}
	for _, tt := range tests {
		field, order, ok := usecases.SplitSort(tt.in)
		assert.Equal(t, tt.ok, ok, "SplitSort(%q)", tt.in)
		assert.Equal(t, tt.field, field, "SplitSort(%q) field", tt.in)
		assert.Equal(t, tt.order, order, "SplitSort(%q) order", tt.in)
	}
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "dev Acme", usecases.SearchTerm("dev", "Acme"))
	assert.Equal(t, "dev", usecases.SearchTerm("dev", ""))
	assert.Equal(t, "Acme", usecases.SearchTerm("", "Acme"))
	assert.Equal(t, "Acme", usecases.SearchTerm("  ", " Acme "))
	assert.Equal(t, "", usecases.SearchTerm("", ""))
}

func TestComposeURL_Minimal(t *testing.T) {
	got := usecases.ComposeURL(base, usecases.URLParams{Region: "Pernambuco", Cities: []string{"Recife"}})
	assert.Equal(t, base+"state=Pernambuco&city[]=Recife", got)
}

func TestComposeURL_ParameterOrder(t *testing.T) {
	got := usecases.ComposeURL(base, usecases.URLParams{
		Term:           "dev",
		Company:        "Acme",
		Sort:           "date_desc",
		Region:         "São Paulo",
		Cities:         []string{"São Paulo", "Osasco"},
		PWD:            true,
		WorkplaceTypes: []string{"remote", "on-site"},
	})
	want := base + "term=dev%20Acme" +
		"&sortBy=date&sortOrder=desc" +
		"&state=S%C3%A3o%20Paulo" +
		"&city[]=S%C3%A3o%20Paulo%2COsasco" +
		"&pwd=true" +
		"&workplaceTypes[]=remote,on-site"
	assert.Equal(t, want, got)
}

func TestComposeURL_SortWithEmptySide(t *testing.T) {
	got := usecases.ComposeURL(base, usecases.URLParams{
		Sort:   "date_",
		Region: "Pernambuco",
		Cities: []string{"Recife"},
	})
	assert.Equal(t, base+"sortBy=date&sortOrder=&state=Pernambuco&city[]=Recife", got)
}

func TestComposeURL_OmitsEmptyOptionals(t *testing.T) {
	got := usecases.ComposeURL(base, usecases.URLParams{
		Sort:   "newest",
		Region: "Pernambuco",
		Cities: []string{"Recife"},
	})
	assert.Equal(t, base+"state=Pernambuco&city[]=Recife", got)
	assert.NotContains(t, got, "term=")
	assert.NotContains(t, got, "sortBy")
	assert.NotContains(t, got, "pwd")
	assert.NotContains(t, got, "workplaceTypes")
	assert.NotContains(t, got, "&&")
}

func TestComposeURL_UnknownRegion(t *testing.T) {
	got := usecases.ComposeURL(base, usecases.URLParams{Region: "Estado Desconhecido", Cities: []string{"X"}})
	assert.Equal(t, base+"state=Estado%20Desconhecido&city[]=X", got)
}
