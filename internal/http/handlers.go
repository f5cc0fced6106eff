package http

import (
	"net/http"

	"budget/internal/core"
	"budget/internal/log"
)

// handleView selects the requested year and month, when given, and renders
// the active month.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpSelect, err)
		return
	}

	var warning error
	if params.Year != 0 {
		if err := s.tracker.SelectYear(r.Context(), params.Year); err != nil {
			if !isWarning(err) {
				s.fail(w, r, log.OpSelect, err)
				return
			}
			warning = err
		}
	}
	if params.Month != 0 {
		if err := s.tracker.SelectMonth(params.Month - 1); err != nil {
			s.fail(w, r, log.OpSelect, err)
			return
		}
	}
	s.respondView(w, r, http.StatusOK, warning, nil)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	body, err := ParseRequestBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	delta, err := core.ParseDecimal(body.Get("amount"))
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	_, err = s.tracker.UpdateIncome(r.Context(), delta)
	if err != nil && !isWarning(err) {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.respondView(w, r, http.StatusOK, err, nil)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	body, err := ParseRequestBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := core.ParseAmount(body.Get("amount"))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	item, err := s.tracker.AddExpense(r.Context(), body.Get("day"), body.Get("description"), amount)
	if err != nil && !isWarning(err) {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	added := s.item(item)
	s.respondView(w, r, http.StatusCreated, err, &added)
}

// handleRemoveExpense reads day and id from the query string. Unknown ids
// are not an error.
func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, id := sanitizeInput(q.Get("day")), sanitizeInput(q.Get("id"))
	if day == "" || id == "" {
		s.fail(w, r, log.OpDelete, core.ErrMissingField)
		return
	}
	err := s.tracker.RemoveExpense(r.Context(), day, id)
	if err != nil && !isWarning(err) {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.respondView(w, r, http.StatusOK, err, nil)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	state, id := s.tracker.Session()
	out := sessionView(state, id)
	writeJSON(w, http.StatusOK, mutationJSON{Session: &out})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	body, err := ParseRequestBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpSignUp, err)
		return
	}
	_, err = s.tracker.SignUp(r.Context(), body.Get("name"), body.Get("email"), body.Raw("password"))
	s.respondSession(w, r, http.StatusCreated, log.OpSignUp, err)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	body, err := ParseRequestBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpSignIn, err)
		return
	}
	_, err = s.tracker.SignIn(r.Context(), body.Get("email"), body.Raw("password"))
	s.respondSession(w, r, http.StatusOK, log.OpSignIn, err)
}

func (s *Server) handleProviderSignIn(w http.ResponseWriter, r *http.Request) {
	_, err := s.tracker.SignInWithProvider(r.Context())
	s.respondSession(w, r, http.StatusOK, log.OpSignIn, err)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	err := s.tracker.SignOut(r.Context())
	s.respondSession(w, r, http.StatusOK, log.OpSignOut, err)
}

// respondSession writes the session after an auth operation. A persistence
// warning still answers with status.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, op string, err error) {
	if err != nil && !isWarning(err) {
		s.fail(w, r, op, err)
		return
	}
	state, id := s.tracker.Session()
	out := sessionView(state, id)
	resp := mutationJSON{Session: &out}
	if err != nil {
		resp.Warning = err.Error()
	}
	writeJSON(w, status, resp)
}

// respondView renders the active month after a change. warning is a
// persistence error for a change that was applied in memory.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, status int, warning error, item *itemJSON) {
	v, err := s.tracker.View()
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	resp := mutationJSON{View: s.view(v), Item: item}
	if warning != nil {
		resp.Warning = warning.Error()
		log.FromContext(r.Context()).WarnContext(r.Context(), "Change applied but not saved",
			log.FieldError, warning.Error())
	}
	writeJSON(w, status, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, log.ComponentHTTP, op, nil)
		writeError(w, r, status, "internal error")
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		log.FieldOperation, op, log.FieldStatusCode, status, log.FieldError, err.Error())
	writeError(w, r, status, err.Error())
}
