package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
	"github.com/crofflehub/settlement/internal/core/service"
)

type HTTPHandler struct {
	pricing   *service.PricingEngine
	deduction *service.DeductionEngine
}

func NewHTTPHandler(pricing *service.PricingEngine, deduction *service.DeductionEngine) *HTTPHandler {
	return &HTTPHandler{pricing: pricing, deduction: deduction}
}

type CheckoutItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
}

type CheckoutSenior struct {
	ID             string          `json:"id"`
	IDNumber       string          `json:"id_number"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type CheckoutOtherDiscount struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	IDNumber      string          `json:"id_number,omitempty"`
	Justification string          `json:"justification,omitempty"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem         `json:"items"`
	SeniorDiscounts []CheckoutSenior       `json:"senior_discounts"`
	OtherDiscount   *CheckoutOtherDiscount `json:"other_discount"`
	TotalDiners     int                    `json:"total_diners"`
}

type CheckoutResponse struct {
	GrossSubtotal        decimal.Decimal `json:"gross_subtotal"`
	NetAmount            decimal.Decimal `json:"net_amount"`
	StandardVAT          decimal.Decimal `json:"standard_vat"`
	VATExemption         decimal.Decimal `json:"vat_exemption"`
	AdjustedVAT          decimal.Decimal `json:"adjusted_vat"`
	SeniorDiscountAmount decimal.Decimal `json:"senior_discount_amount"`
	OtherDiscountAmount  decimal.Decimal `json:"other_discount_amount"`
	TotalDiscountAmount  decimal.Decimal `json:"total_discount_amount"`
	FinalTotal           decimal.Decimal `json:"final_total"`
	VatableSales         decimal.Decimal `json:"vatable_sales"`
	VATExemptSales       decimal.Decimal `json:"vat_exempt_sales"`
	ZeroRatedSales       decimal.Decimal `json:"zero_rated_sales"`
	NumberOfSeniors      int             `json:"number_of_seniors"`
	TotalDiners          int             `json:"total_diners"`
}

type DeductItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	StoreID     string `json:"store_id"`
}

type DeductRequest struct {
	TransactionID string       `json:"transaction_id"`
	Items         []DeductItem `json:"items"`
}

type DeductResponse struct {
	Success  bool     `json:"success"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Checkout computes the monetary breakdown for a finalized cart. An
// invalid cart yields the all-zero result, which maps to 422 so the
// caller cannot mistake it for a chargeable total.
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Category:    item.Category,
		})
	}
	seniors := make([]domain.SeniorDiscount, 0, len(req.SeniorDiscounts))
	for _, s := range req.SeniorDiscounts {
		seniors = append(seniors, domain.SeniorDiscount{
			ID:             s.ID,
			IDNumber:       s.IDNumber,
			Name:           s.Name,
			DiscountAmount: s.DiscountAmount,
		})
	}
	var other *domain.OtherDiscount
	if req.OtherDiscount != nil {
		other = &domain.OtherDiscount{
			Type:          domain.DiscountType(req.OtherDiscount.Type),
			Amount:        req.OtherDiscount.Amount,
			IDNumber:      req.OtherDiscount.IDNumber,
			Justification: req.OtherDiscount.Justification,
		}
	}

	calc := h.pricing.ComputeTotals(items, seniors, other, req.TotalDiners)
	if calc.IsEmpty() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "cart cannot be charged"})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{
		GrossSubtotal:        calc.GrossSubtotal,
		NetAmount:            calc.NetAmount,
		StandardVAT:          calc.StandardVAT,
		VATExemption:         calc.VATExemption,
		AdjustedVAT:          calc.AdjustedVAT,
		SeniorDiscountAmount: calc.SeniorDiscountAmount,
		OtherDiscountAmount:  calc.OtherDiscountAmount,
		TotalDiscountAmount:  calc.TotalDiscountAmount,
		FinalTotal:           calc.FinalTotal,
		VatableSales:         calc.VatableSales,
		VATExemptSales:       calc.VATExemptSales,
		ZeroRatedSales:       calc.ZeroRatedSales,
		NumberOfSeniors:      calc.NumberOfSeniors,
		TotalDiners:          calc.TotalDiners,
	})
}

// Deduct runs inventory deduction for an already-paid transaction. The
// response is 200 whenever the request parses: deduction failures are
// reported in the body for back-office reconciliation, never as a
// blocking status, because the customer has already been charged.
func (h *HTTPHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DeductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.TransactionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing transaction_id"})
		return
	}

	items := make([]service.TransactionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.TransactionItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			StoreID:     item.StoreID,
		})
	}

	result := h.deduction.DeductTransactionItems(r.Context(), req.TransactionID, items)
	writeJSON(w, http.StatusOK, DeductResponse{
		Success:  result.Success,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
