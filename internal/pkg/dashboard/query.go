package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// Series selects the daily metric plotted in the daily panel.
type Series string

const (
	SeriesDailyNewCases Series = "daily_new_cases"
	SeriesDailyMA       Series = "daily_ma"
)

// DefaultCountry is preselected when the dataset contains it.
const DefaultCountry = "Canada"

var ErrUnknownCountry = errors.New("unknown country")

// Query is one redraw request: selected countries, an inclusive date range and the series toggle.
type Query struct {
	Countries []string
	Start     time.Time
	End       time.Time
	Series    Series
}

// QueryParams is the raw form of a Query as it arrives from a request.
type QueryParams struct {
	Countries []string `validate:"dive,required,max=128"`
	Start     string   `validate:"omitempty,datetime=2006-01-02"`
	End       string   `validate:"omitempty,datetime=2006-01-02"`
	Series    string   `validate:"omitempty,oneof=daily_new_cases daily_ma"`
}

var validate = validator.New()

// ParseSeries accepts the two toggle values, and "daily_cases" as used by older links.
func ParseSeries(s string) (Series, error) {
	switch s {
	case string(SeriesDailyNewCases), "daily_cases":
		return SeriesDailyNewCases, nil
	case string(SeriesDailyMA):
		return SeriesDailyMA, nil
	}
	return "", fmt.Errorf("unsupported series %q", s)
}

// DefaultQuery selects the default country over the full date range with daily new cases.
func DefaultQuery(t *dataset.Table) Query {
	q := Query{
		Start:  t.MinDate(),
		End:    t.MaxDate(),
		Series: SeriesDailyNewCases,
	}
	if t.HasCountry(DefaultCountry) {
		q.Countries = []string{DefaultCountry}
	} else if countries := t.Countries(); len(countries) > 0 {
		q.Countries = []string{countries[0]}
	}
	return q
}

// Resolve validates raw parameters against the table and fills missing values from
// DefaultQuery. A nil Countries slice means "not given" and falls back to the default
// selection; an empty non-nil slice is an explicit empty selection.
func (p QueryParams) Resolve(t *dataset.Table) (Query, error) {
	if p.Series == "daily_cases" {
		p.Series = string(SeriesDailyNewCases)
	}
	if err := validate.Struct(p); err != nil {
		return Query{}, describeValidation(err)
	}

	q := DefaultQuery(t)
	if p.Countries != nil {
		q.Countries = make([]string, 0, len(p.Countries))
		seen := make(map[string]struct{}, len(p.Countries))
		for _, c := range p.Countries {
			if _, dup := seen[c]; dup {
				continue
			}
			if !t.HasCountry(c) {
				return Query{}, fmt.Errorf("%w: %s", ErrUnknownCountry, c)
			}
			seen[c] = struct{}{}
			q.Countries = append(q.Countries, c)
		}
	}

	var err error
	if p.Start != "" {
		if q.Start, err = dataset.ParseDate(p.Start); err != nil {
			return Query{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if p.End != "" {
		if q.End, err = dataset.ParseDate(p.End); err != nil {
			return Query{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if p.Series != "" {
		if q.Series, err = ParseSeries(p.Series); err != nil {
			return Query{}, err
		}
	}
	return q, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "datetime":
		return fmt.Errorf("%s must be a YYYY-MM-DD date", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid (%s)", fe.Namespace(), fe.Tag())
	}
}
