package report

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"delivery-report-service/internal/timewindow"

	"github.com/go-playground/validator/v10"
)

type Shape string

const (
	ShapeDriver   Shape = "driver"
	ShapeMerchant Shape = "merchant"
)

const (
	DefaultPage  = 1
	DefaultLimit = 1000
	MaxLimit     = 100000
)

// Filter is the per-request report filter.
type Filter struct {
	MerchantID *int64            `json:"merchantId,omitempty"`
	CourierID  *int64            `json:"courierId,omitempty"`
	Search     string            `json:"search,omitempty"`
	CreatedAt  *timewindow.Range `json:"createdAt,omitempty"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Shape      Shape             `json:"reportType"`
}

type filterParams struct {
	Page       int    `validate:"min=1"`
	Limit      int    `validate:"min=1,max=100000"`
	ReportType string `validate:"omitempty,oneof=driver merchant"`
	MerchantID *int64 `validate:"omitempty,min=1"`
	CourierID  *int64 `validate:"omitempty,min=1"`
}

var validate = validator.New()

// BuildFilter turns raw query parameters into a Filter. A non-empty fixed shape
// overrides the reportType parameter.
func BuildFilter(values url.Values, fixed Shape) (Filter, error) {
	params := filterParams{Page: DefaultPage, Limit: DefaultLimit}

	var err error
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if params.Page, err = strconv.Atoi(raw); err != nil {
			return Filter{}, fmt.Errorf("%w: page must be a number", ErrInvalidFilter)
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		if params.Limit, err = strconv.Atoi(raw); err != nil {
			return Filter{}, fmt.Errorf("%w: limit must be a number", ErrInvalidFilter)
		}
	}
	if params.MerchantID, err = parseOptionalID(values, "merchantId"); err != nil {
		return Filter{}, err
	}
	if params.CourierID, err = parseOptionalID(values, "courierId", "driverId"); err != nil {
		return Filter{}, err
	}
	params.ReportType = strings.ToLower(strings.TrimSpace(values.Get("reportType")))

	if err := validate.Struct(params); err != nil {
		return Filter{}, fmt.Errorf("%w: %s", ErrInvalidFilter, describeValidation(err))
	}
	if params.Page-1 > math.MaxInt32/params.Limit {
		return Filter{}, fmt.Errorf("%w: page is out of range", ErrInvalidFilter)
	}

	shape := fixed
	if shape == "" {
		shape = Shape(params.ReportType)
	}
	if shape == "" {
		shape = ShapeMerchant
	}

	createdAt, err := parseInstantRange(values.Get("startDate"), values.Get("endDate"))
	if err != nil {
		return Filter{}, err
	}

	return Filter{
		MerchantID: params.MerchantID,
		CourierID:  params.CourierID,
		Search:     strings.TrimSpace(values.Get("search")),
		CreatedAt:  createdAt,
		Page:       params.Page,
		Limit:      params.Limit,
		Shape:      shape,
	}, nil
}

func (f Filter) Skip() int {
	return (f.Page - 1) * f.Limit
}

// Query is the paginated store query for this filter.
func (f Filter) Query() RecordQuery {
	q := f.AllQuery()
	q.Skip = f.Skip()
	q.Take = f.Limit
	return q
}

// AllQuery matches the same population as Query without pagination.
func (f Filter) AllQuery() RecordQuery {
	return RecordQuery{
		MerchantID: f.MerchantID,
		CourierID:  f.CourierID,
		Search:     f.Search,
		CreatedAt:  f.CreatedAt,
	}
}

const localDateTimeLayout = "2006-01-02T15:04:05"

// ParseInstant accepts an RFC3339 instant, a zone-less ISO date-time or a bare
// YYYY-MM-DD date. Zone-less values are taken as UTC. No business-timezone
// projection is applied.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(localDateTimeLayout, value); err == nil {
		return parsed, nil
	}
	parsed, err := timewindow.ParseCivilDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func parseInstantRange(startRaw string, endRaw string) (*timewindow.Range, error) {
	startRaw = strings.TrimSpace(startRaw)
	endRaw = strings.TrimSpace(endRaw)
	if startRaw == "" && endRaw == "" {
		return nil, nil
	}

	out := &timewindow.Range{}
	if startRaw != "" {
		from, err := ParseInstant(startRaw)
		if err != nil {
			return nil, err
		}
		out.From = &from
	}
	if endRaw != "" {
		to, err := ParseInstant(endRaw)
		if err != nil {
			return nil, err
		}
		out.To = &to
	}
	if out.From != nil && out.To != nil && out.From.After(*out.To) {
		return nil, fmt.Errorf("%w: startDate must be before endDate", ErrInvalidFilter)
	}
	return out, nil
}

func parseOptionalID(values url.Values, keys ...string) (*int64, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, key)
		}
		return &id, nil
	}
	return nil, nil
}

func describeValidation(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}
