package controllers

import (
	"net/http"
	"time"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	reportsvc "github.com/atelierhq/atelier-backend/internal/reports"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

func DashboardSummary(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func SalesReport(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Sales(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func MaterialCostReport(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.MaterialCost(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func parseReportRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if parsed, err := validators.ParseQueryDate(r, "from"); err != nil {
		return from, to, err
	} else if parsed != nil {
		from = *parsed
	}
	if parsed, err := validators.ParseQueryDate(r, "to"); err != nil {
		return from, to, err
	} else if parsed != nil {
		to = *parsed
	}
	return from, to, nil
}
