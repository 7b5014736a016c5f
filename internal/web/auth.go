package web

import (
	"net/http"

	"cinestream/internal/authview"
	"cinestream/internal/movieapi"
	"cinestream/internal/session"
)

type authPage struct {
	Mode       string
	Register   bool
	ToggleMode string
	Username   string
	Alert      string
}

func newAuthPage(v *authview.View, username, alert string) authPage {
	mode := v.Mode
	flipped := *v
	other := flipped.Toggle()
	return authPage{
		Mode:       mode.String(),
		Register:   mode == authview.Register,
		ToggleMode: other.String(),
		Username:   username,
		Alert:      alert,
	}
}

func (s *Server) handleAuthPage(w http.ResponseWriter, r *http.Request) {
	v := authview.New(s.api, authview.ParseMode(r.URL.Query().Get("mode")), s.log)
	s.render(w, http.StatusOK, "auth", newAuthPage(v, "", ""))
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := authview.New(s.api, authview.ParseMode(r.PostFormValue("mode")), s.log)
	creds := movieapi.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	store := &session.ResponseStore{Manager: s.sessions, Writer: w}
	res := v.Submit(r.Context(), store, creds)
	if res.Authenticated {
		s.shells.Get(store.Claims.SessionID, store.Claims.Credential, s.now())
		http.Redirect(w, r, catalogPath, http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "auth", newAuthPage(v, creds.Username, res.Alert))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.sessions.CredentialFromRequest(r); err == nil {
		s.shells.Remove(claims.SessionID)
	}
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
