// Package report renders downloadable group statements.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/phpdave11/gofpdf"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/ledger"
	"github.com/mmynk/paysplit/internal/middleware"
	"github.com/mmynk/paysplit/internal/models"
)

// Prefix is where the report routes are mounted.
const Prefix = "/api/v1/reports"

const statementPath = "/groups/{groupId}/statement.pdf"

// maxRows caps the expense table so a huge group still renders.
const maxRows = 500

// Store is the slice of persistence the report needs.
type Store interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Handler serves group statements as PDF.
type Handler struct {
	store    Store
	currency string
}

func NewHandler(store Store, currency string) *Handler {
	return &Handler{store: store, currency: currency}
}

// Routes mounts the report routes under Prefix, wrapped in mw. One of mw
// must put the caller identity in the request context.
func (h *Handler) Routes(r *mux.Router, mw ...mux.MiddlewareFunc) {
	sub := r.PathPrefix(Prefix).Subrouter()
	sub.Use(mw...)
	sub.HandleFunc(statementPath, h.GroupStatement).Methods(http.MethodGet)
}

// GroupStatement writes the PDF statement of a group the caller belongs to.
func (h *Handler) GroupStatement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := mux.Vars(r)["groupId"]
	group, err := h.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !group.HasMember(userID) {
		writeError(w, apperr.PermissionDenied("not a member of group %s", groupID))
		return
	}

	users, err := h.store.GetUsersByIDs(r.Context(), group.Members)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := Statement(group, users, h.currency, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Statement generated", "group_id", group.ID, "user_id", userID, "bytes", len(body))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.pdf"`, shortID(group.ID)))
	w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		slog.Error("Statement failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Statement renders the group's member balances and expense list.
func Statement(group *models.Group, users map[string]*models.User, currency string, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	name := func(id string) string {
		if u, ok := users[id]; ok {
			return tr(u.Username)
		}
		return shortID(id)
	}

	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(group.Name))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	if group.Description != "" {
		pdf.Cell(0, 6, tr(group.Description))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("%d members, %d expenses, amounts in %s", len(group.Members), len(group.Expenses), currency))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Balances")
	pdf.Ln(9)

	balW := []float64{120, 62}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(balW[0], 8, "MEMBER", "1", 0, "L", true, 0, "")
	pdf.CellFormat(balW[1], 8, "BALANCE", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, b := range ledger.GroupBalances(group) {
		pdf.CellFormat(balW[0], 8, name(b.MemberID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(balW[1], 8, b.Balance.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Expenses")
	pdf.Ln(9)

	colW := []float64{24, 80, 40, 38}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "PAID BY", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	if len(group.Expenses) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No expenses yet", "1", 1, "C", false, 0, "")
	}
	for i, e := range group.Expenses {
		if i >= maxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, fmt.Sprintf("%d more expenses not shown", len(group.Expenses)-maxRows), "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		date := time.Unix(e.CreatedAt, 0).UTC().Format("2006-01-02")
		pdf.CellFormat(colW[0], 8, date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, trimTo(tr(e.Description), 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 8, name(e.PayerID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, e.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated by PaySplit on "+now.UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
