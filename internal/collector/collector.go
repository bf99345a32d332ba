// Package collector implements the city input form: draft state, validation and hand-off.
package collector

import (
	"github.com/kjstillabower/city-weather/internal/observability"
	"github.com/kjstillabower/city-weather/internal/query"
	"github.com/kjstillabower/city-weather/internal/validation"
)

// Form is the local state of the input view.
type Form struct {
	Draft string
	Err   string
}

// NewForm returns a form whose draft starts from the previously stored city.
func NewForm(current query.CityQuery) *Form {
	return &Form{Draft: current.String()}
}

// Submit validates the draft. On failure it sets Err and returns false without
// calling update. On success it clears Err, passes the trimmed city to update
// exactly once and returns true; the caller then navigates to the display view.
func (f *Form) Submit(update func(query.CityQuery)) bool {
	city, err := validation.ValidateCity(f.Draft)
	if err != nil {
		f.Err = validation.Message(err)
		observability.ValidationFailuresTotal.Inc()
		return false
	}
	f.Err = ""
	update(query.CityQuery(city))
	return true
}
