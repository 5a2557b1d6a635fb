package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/form"
	"github.com/eugenenazirov/offer-desk/internal/offer"
	"github.com/eugenenazirov/offer-desk/internal/table"
)

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var draft offer.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	sheet, err := h.newSheet(draft)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	defer sheet.Close()

	estimate, err := sheet.Calculate()
	if err != nil && !errors.Is(err, calculator.ErrModeInfeasible) {
		writeCalculationError(w, err, estimate.Message)
		return
	}

	resp := calculateResponse{
		Estimate:          estimate,
		Unit1ValueVisible: draft.Unit1ValueVisible(),
		Unit2ValueVisible: draft.Unit2ValueVisible(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	var draft offer.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	sheet, err := h.newSheet(draft)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	defer sheet.Close()

	sub, err := sheet.Submission()
	if err != nil {
		switch {
		case errors.Is(err, form.ErrValidationFailed):
			writeValidationError(w, err)
		case errors.Is(err, calculator.ErrModeInfeasible):
			writeError(w, http.StatusUnprocessableEntity, "Mode infeasible", sheet.Message(), "Switch the shipping mode or reduce the shipment")
		default:
			writeCalculationError(w, err, sheet.Message())
		}
		return
	}

	record, err := h.backend.SubmitOffer(r.Context(), sub)
	if err != nil {
		h.writeBackendError(w, "submit offer", err)
		return
	}

	h.logger.Info("offer submitted",
		zap.String("offer_id", string(record.ID)),
		zap.String("mode", sub.Mode),
		zap.Int("pallet_count", sub.PalletCount),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleListOffers(w http.ResponseWriter, r *http.Request) {
	var (
		records    []offer.Record
		vocabulary offer.Vocabulary
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		records, err = h.backend.Offers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		vocabulary, err = h.backend.Vocabulary(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.writeBackendError(w, "list offers", err)
		return
	}

	model := table.NewModel(table.WithLocale(h.locale))
	model.RegenerateFilterOptions(vocabulary)
	if err := applyTableQuery(model, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid table query", err.Error())
		return
	}

	resp := listOffersResponse{
		Offers:  model.Apply(records),
		Total:   len(records),
		Columns: model.Columns(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleColumns(w http.ResponseWriter, r *http.Request) {
	vocabulary, err := h.backend.Vocabulary(r.Context())
	if err != nil {
		h.writeBackendError(w, "fetch vocabulary", err)
		return
	}

	model := table.NewModel(table.WithLocale(h.locale))
	model.RegenerateFilterOptions(vocabulary)
	writeJSON(w, http.StatusOK, columnsResponse{Columns: model.Columns()})
}

func (h *Handler) newSheet(draft offer.Draft) (*offer.Sheet, error) {
	dims, err := h.storage.Lookup()
	if err != nil {
		return nil, fmt.Errorf("load dimensions: %w", err)
	}
	return offer.NewSheet(h.calculator, dims, draft), nil
}

// applyTableQuery reads sort=<column>:<order> and repeatable filter=<column>:<v1>,<v2>.
func applyTableQuery(model *table.Model, query url.Values) error {
	if raw := query.Get("sort"); raw != "" {
		name, rawOrder, ok := strings.Cut(raw, ":")
		if !ok {
			rawOrder = string(table.SortAscending)
		}
		order, err := table.ParseSortOrder(rawOrder)
		if err != nil {
			return fmt.Errorf("sort %q: %w", raw, err)
		}
		if err := model.SetSort(strings.TrimSpace(name), order); err != nil {
			return err
		}
	}

	for _, raw := range query["filter"] {
		name, rawValues, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("filter %q: want <column>:<values>", raw)
		}
		var values []string
		for _, v := range strings.Split(rawValues, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if err := model.SetFilter(strings.TrimSpace(name), values); err != nil {
			return err
		}
	}
	return nil
}

func writeCalculationError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, calculator.ErrInvalidPackageType):
		writeError(w, http.StatusUnprocessableEntity, "Invalid package type", message, "Choose a package type from the dimension table")
	case errors.Is(err, calculator.ErrInvalidDimension):
		writeError(w, http.StatusUnprocessableEntity, "Invalid dimension", message)
	default:
		writeInternalError(w, err)
	}
}

type calculateResponse struct {
	offer.Estimate
	Unit1ValueVisible bool `json:"unit1ValueVisible"`
	Unit2ValueVisible bool `json:"unit2ValueVisible"`
}

type listOffersResponse struct {
	Offers  []offer.Record     `json:"offers"`
	Total   int                `json:"total"`
	Columns []table.ColumnView `json:"columns"`
}

type columnsResponse struct {
	Columns []table.ColumnView `json:"columns"`
}
