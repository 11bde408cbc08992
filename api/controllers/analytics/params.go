package analytics

import (
	"net/http"
	"time"

	"github.com/angelmondragon/packfinderz-ops/api/validators"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

type operationsQuery struct {
	Preset         string `json:"preset" validate:"omitempty,oneof=7d 30d 60d 90d"`
	From           string `json:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To             string `json:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	TrendDays      int    `json:"trend_days" validate:"omitempty,min=7,max=90"`
	SLATargetHours int    `json:"sla_target_hours" validate:"omitempty,min=1,max=720"`
}

func parseOperationsQuery(r *http.Request) (operationsQuery, error) {
	q := operationsQuery{
		Preset: validators.QueryString(r, "preset"),
		From:   validators.QueryString(r, "from"),
		To:     validators.QueryString(r, "to"),
	}
	var err error
	if q.TrendDays, err = validators.QueryInt(r, "trend_days"); err != nil {
		return operationsQuery{}, err
	}
	if q.SLATargetHours, err = validators.QueryInt(r, "sla_target_hours"); err != nil {
		return operationsQuery{}, err
	}
	if err := validators.ValidateStruct(&q); err != nil {
		return operationsQuery{}, err
	}
	return q, nil
}

// resolveRange turns the explicit from/to pair or a preset into a UTC window ending now.
func (q operationsQuery) resolveRange(now time.Time, defaultDays int) (time.Time, time.Time, error) {
	if q.From != "" || q.To != "" {
		if q.From == "" || q.To == "" {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
		}
		start, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid from timestamp")
		}
		end, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid to timestamp")
		}
		start = start.UTC()
		end = end.UTC()
		if end.Before(start) {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
		}
		return start, end, nil
	}

	duration, ok := presetDuration(q.Preset, defaultDays)
	if !ok {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid preset")
	}

	end := now
	start := end.Add(-duration)
	return start, end, nil
}

func presetDuration(value string, defaultDays int) (time.Duration, bool) {
	day := 24 * time.Hour
	switch value {
	case "":
		if defaultDays <= 0 {
			defaultDays = 30
		}
		return time.Duration(defaultDays) * day, true
	case "7d":
		return 7 * day, true
	case "30d":
		return 30 * day, true
	case "60d":
		return 60 * day, true
	case "90d":
		return 90 * day, true
	default:
		return 0, false
	}
}
