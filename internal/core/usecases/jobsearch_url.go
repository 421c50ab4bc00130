package usecases

import (
	"strings"
)

// DefaultJobSearchBaseURL is the job board search page. Parameters are
// appended directly to the path, joined with "&".
const DefaultJobSearchBaseURL = "https://portal.gupy.io/job-search/"

// URLParams are the inputs of a job-search URL.
type URLParams struct {
	Term           string
	Company        string
	Sort           string
	Region         string
	Cities         []string
	PWD            bool
	WorkplaceTypes []string
}

// ComposeURL builds the job-search URL. Parameters always appear in the order
// term, sortBy/sortOrder, state, city[], pwd, workplaceTypes[]; omitted
// optional parameters leave no empty pair behind.
func ComposeURL(base string, p URLParams) string {
	params := make([]string, 0, 7)

	if term := SearchTerm(p.Term, p.Company); term != "" {
		params = append(params, "term="+Quote(term))
	}
	if field, order, ok := SplitSort(p.Sort); ok {
		params = append(params, "sortBy="+Quote(field), "sortOrder="+Quote(order))
	}
	params = append(params, "state="+Quote(p.Region))
	params = append(params, "city[]="+Quote(strings.Join(p.Cities, ",")))
	if p.PWD {
		params = append(params, "pwd=true")
	}
	if len(p.WorkplaceTypes) > 0 {
		tags := make([]string, len(p.WorkplaceTypes))
		for i, t := range p.WorkplaceTypes {
			tags[i] = Quote(t)
		}
		params = append(params, "workplaceTypes[]="+strings.Join(tags, ","))
	}

	return base + strings.Join(params, "&")
}

// SearchTerm joins the free-text term and company name with a space.
func SearchTerm(term, company string) string {
	return strings.TrimSpace(strings.TrimSpace(term) + " " + strings.TrimSpace(company))
}

// SplitSort splits a "field_direction" sort value at the first underscore.
// Values without a separator are rejected; an empty side is kept as is, so
// "date_" yields sortBy=date&sortOrder=.
func SplitSort(sort string) (field, order string, ok bool) {
	return strings.Cut(strings.TrimSpace(sort), "_")
}

const upperHex = "0123456789ABCDEF"

// Quote percent-encodes s. Letters, digits, "-", ".", "_", "~" and "/" are
// kept; every other byte of the UTF-8 encoding becomes %XX, so a space is
// "%20" rather than "+".
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~', c == '/':
		return true
	}
	return false
}
