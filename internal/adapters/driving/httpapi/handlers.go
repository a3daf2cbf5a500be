package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/services"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

const (
	sessionState = "state"
	sessionOwner = "owner"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	state, err := services.GenerateState()
	if err != nil {
		writeError(w, r, fmt.Errorf("generate state: %w", err))
		return
	}
	consentURL, err := s.oauth.AuthorizationURL(state)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A decode failure on a stale cookie still yields a fresh session.
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values[sessionState] = state
	sess.Values[sessionOwner] = s.mirror.OwnerFor(principalFrom(r))
	if err := sess.Save(r, w); err != nil {
		writeError(w, r, fmt.Errorf("save session: %w", err))
		return
	}
	http.Redirect(w, r, consentURL, http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		writeProblem(w, r, http.StatusBadRequest, "Authorization Denied",
			denied+": "+q.Get("error_description"))
		return
	}

	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		writeError(w, r, domain.NewOAuthError(domain.ErrInvalidCallback, "unreadable session", err))
		return
	}
	expected, _ := sess.Values[sessionState].(string)
	owner, _ := sess.Values[sessionOwner].(string)
	got := q.Get("state")
	if expected == "" || owner == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		writeError(w, r, domain.NewOAuthError(domain.ErrInvalidCallback, "state mismatch", nil))
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, r, domain.NewOAuthError(domain.ErrInvalidCallback, "missing code", nil))
		return
	}

	// The state is single use.
	delete(sess.Values, sessionState)
	delete(sess.Values, sessionOwner)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		logger.Warn("Failed to clear oauth session: %v", err)
	}

	token, err := s.oauth.CompleteAuthorization(r.Context(), code, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConnectionView(owner, token, time.Now()))
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.oauth.Revoke(r.Context(), s.mirror.OwnerFor(principalFrom(r))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	token, err := s.mirror.Connection(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConnectionView(s.mirror.OwnerFor(p), token, time.Now()))
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.mirror.ListInvoices(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := time.Now()
	views := make([]invoiceView, 0, len(invoices))
	for i := range invoices {
		views = append(views, toInvoiceView(&invoices[i], now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": views})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.mirror.GetInvoice(r.Context(), principalFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": toInvoiceView(inv, time.Now())})
}

func (s *Server) handleRefreshInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.mirror.RefreshInvoice(r.Context(), principalFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": toInvoiceView(inv, time.Now())})
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pdf, err := s.mirror.DownloadInvoicePDF(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+id+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.mirror.ListContacts(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]contactView, 0, len(contacts))
	for i := range contacts {
		views = append(views, toContactView(&contacts[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": views})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.mirror.ListProjects(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for i := range projects {
		views = append(views, toProjectView(&projects[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": views})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	kind := domain.ResourceInvoices
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind = domain.ResourceKind(raw)
		if !kind.IsValid() {
			writeError(w, r, fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidInput, raw))
			return
		}
	}
	stats, err := s.mirror.SyncResource(r.Context(), principalFrom(r), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	if err := s.mirror.ClearCache(r.Context(), principalFrom(r), all); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkRequest struct {
	ContactID string `json:"contact_id"`
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	if req.ContactID == "" {
		writeError(w, r, fmt.Errorf("%w: contact_id is required", domain.ErrInvalidInput))
		return
	}
	if err := s.mirror.Link(r.Context(), principalFrom(r), mux.Vars(r)["principal"], req.ContactID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	if err := s.mirror.Unlink(r.Context(), principalFrom(r), mux.Vars(r)["principal"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
