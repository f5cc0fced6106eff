package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/middleware/trace"
	"budget/internal/session"
	"budget/internal/tracker"
)

type (
	moneyJSON struct {
		Amount  string `json:"amount"`
		Display string `json:"display"`
	}

	itemJSON struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      moneyJSON `json:"amount"`
	}

	dayJSON struct {
		Key   string     `json:"key"`
		Total moneyJSON  `json:"total"`
		Items []itemJSON `json:"items"`
	}

	identityJSON struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	sessionJSON struct {
		State    string        `json:"state"`
		Identity *identityJSON `json:"identity,omitempty"`
		Label    string        `json:"label"`
		Subtitle string        `json:"subtitle"`
	}

	viewJSON struct {
		Year       int         `json:"year"`
		Month      int         `json:"month"`
		MonthID    string      `json:"month_id"`
		MonthName  string      `json:"month_name"`
		MonthNames []string    `json:"month_names"`
		Income     moneyJSON   `json:"income"`
		Expenses   moneyJSON   `json:"expenses"`
		Balance    moneyJSON   `json:"balance"`
		Days       []dayJSON   `json:"days"`
		Session    sessionJSON `json:"session"`
	}

	// mutationJSON answers every state change. Warning is set when the change
	// was applied but could not be saved.
	mutationJSON struct {
		View    *viewJSON    `json:"view,omitempty"`
		Item    *itemJSON    `json:"item,omitempty"`
		Session *sessionJSON `json:"session,omitempty"`
		Warning string       `json:"warning,omitempty"`
	}

	errorJSON struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id,omitempty"`
	}
)

func (s *Server) money(m core.Money) moneyJSON {
	return moneyJSON{Amount: m.String(), Display: m.Format(s.currency)}
}

func (s *Server) item(it core.ExpenseItem) itemJSON {
	return itemJSON{ID: it.ID, Description: it.Description, Amount: s.money(it.Amount)}
}

func (s *Server) days(in []ledger.DaySummary) []dayJSON {
	out := make([]dayJSON, len(in))
	for i, d := range in {
		items := make([]itemJSON, len(d.Items))
		for j, it := range d.Items {
			items[j] = s.item(it)
		}
		out[i] = dayJSON{Key: d.Key, Total: s.money(d.Total), Items: items}
	}
	return out
}

func (s *Server) view(v tracker.View) *viewJSON {
	m := v.Summary.Month
	return &viewJSON{
		Year:       v.Year,
		Month:      v.MonthIndex + 1,
		MonthID:    m.ID,
		MonthName:  m.Name,
		MonthNames: v.MonthNames,
		Income:     s.money(m.Income),
		Expenses:   s.money(v.Summary.Expenses),
		Balance:    s.money(v.Summary.Balance),
		Days:       s.days(v.Summary.Days),
		Session:    sessionView(v.State, v.Identity),
	}
}

// sessionView renders the display label: the signed in name and email, or
// the guest placeholders.
func sessionView(state session.State, id *core.Identity) sessionJSON {
	out := sessionJSON{State: state.String(), Label: "Guest User", Subtitle: "Free Account"}
	if id != nil {
		out.Identity = &identityJSON{Name: id.Name, Email: id.Email}
		out.Label = id.Name
		out.Subtitle = id.Email
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with msg and the request id, so a failure can be found
// in the logs.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg, RequestID: trace.GetRequestID(r.Context())})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownMonth):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// isWarning reports whether err only says the applied change was not saved.
func isWarning(err error) bool {
	return err != nil && errors.Is(err, core.ErrPersistence)
}
