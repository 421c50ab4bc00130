package domain

import "fmt"

// UnknownRegion is returned when a region code is outside the IBGE state table.
const UnknownRegion = "Estado Desconhecido"

// regionAbbreviations maps two-digit IBGE state codes to state abbreviations.
var regionAbbreviations = map[string]string{
	"11": "RO", "12": "AC", "13": "AM", "14": "RR", "15": "PA", "16": "AP", "17": "TO",
	"21": "MA", "22": "PI", "23": "CE", "24": "RN", "25": "PB", "26": "PE", "27": "AL",
	"28": "SE", "29": "BA", "31": "MG", "32": "ES", "33": "RJ", "35": "SP", "41": "PR",
	"42": "SC", "43": "RS", "50": "MS", "51": "MT", "52": "GO", "53": "DF",
}

// regionNames maps state abbreviations to the names the job board filters on.
var regionNames = map[string]string{
	"AC": "Acre", "AL": "Alagoas", "AP": "Amapá", "AM": "Amazonas", "BA": "Bahia",
	"CE": "Ceará", "DF": "Distrito Federal", "ES": "Espírito Santo", "GO": "Goiás",
	"MA": "Maranhão", "MT": "Mato Grosso", "MS": "Mato Grosso do Sul", "MG": "Minas Gerais",
	"PA": "Pará", "PB": "Paraíba", "PR": "Paraná", "PE": "Pernambuco", "PI": "Piauí",
	"RJ": "Rio de Janeiro", "RN": "Rio Grande do Norte", "RS": "Rio Grande do Sul",
	"RO": "Rondônia", "RR": "Roraima", "SC": "Santa Catarina", "SP": "São Paulo",
	"SE": "Sergipe", "TO": "Tocantins",
}

// Region is one entry of the state table.
type Region struct {
	Code         string `json:"code"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

// NormalizeRegionCode renders a numeric region code as the two-digit key
// used by the state table.
func NormalizeRegionCode(code int) string {
	return fmt.Sprintf("%02d", code)
}

// RegionAbbreviation returns the state abbreviation for code.
func RegionAbbreviation(code int) (string, bool) {
	abbr, ok := regionAbbreviations[NormalizeRegionCode(code)]
	return abbr, ok
}

// ResolveRegion returns the full state name for code, or UnknownRegion.
// It never fails.
func ResolveRegion(code int) string {
	abbr, ok := RegionAbbreviation(code)
	if !ok {
		return UnknownRegion
	}
	if name, ok := regionNames[abbr]; ok {
		return name
	}
	return abbr
}

// Regions lists every known state ordered by code.
func Regions() []Region {
	out := make([]Region, 0, len(regionAbbreviations))
	for code := 11; code <= 53; code++ {
		key := NormalizeRegionCode(code)
		abbr, ok := regionAbbreviations[key]
		if !ok {
			continue
		}
		out = append(out, Region{Code: key, Abbreviation: abbr, Name: regionNames[abbr]})
	}
	return out
}
