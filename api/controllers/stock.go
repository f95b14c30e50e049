package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/api/middleware"
	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	ledgersvc "github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

type manualAdjustRequest struct {
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	Reason       string          `json:"reason" validate:"required"`
	ReasonDetail string          `json:"reason_detail,omitempty"`
}

// ManualStockAdjust handles operator-initiated corrections for one product or
// raw material, identified by the route it is mounted under.
func ManualStockAdjust(svc ledgersvc.Service, target enums.StockTargetType, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload manualAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParseAdjustmentReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason"))
			return
		}

		adjustment, err := svc.ManualAdjust(r.Context(), ledgersvc.ManualAdjustInput{
			Target:       target,
			TargetID:     id,
			Quantity:     payload.Quantity,
			Reason:       reason,
			ReasonDetail: payload.ReasonDetail,
			Actor:        middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, adjustment)
	}
}

// StockHistory lists the adjustment ledger for one product or raw material.
func StockHistory(svc ledgersvc.Service, target enums.StockTargetType, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), target, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
