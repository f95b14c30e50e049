package controllers

import (
	"net/http"

	"github.com/atelierhq/atelier-backend/api/middleware"
	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	purchasesvc "github.com/atelierhq/atelier-backend/internal/purchases"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

func RecordPurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload purchasesvc.RecordPurchaseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Actor = middleware.ActorFromContext(r.Context())

		purchase, err := svc.Record(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

func GetPurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func ListPurchases(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input purchasesvc.ListPurchasesInput

		materialID, err := validators.ParseQueryUUID(r, "raw_material_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.RawMaterialID = materialID

		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SupplierID = supplierID

		if input.From, err = validators.ParseQueryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.To, err = validators.ParseQueryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Pagination = page

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
