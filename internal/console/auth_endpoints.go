package console

import (
	"net/http"
	"strings"

	"github.com/cppe-issia/console/sdk/authx"
	"github.com/gorilla/mux"
)

type authEndpoints struct {
	*BaseEndpoints
}

// NewAuthEndpoints returns the login, logout and session state endpoints.
func NewAuthEndpoints(base *BaseEndpoints) Endpoints {
	return &authEndpoints{BaseEndpoints: base}
}

func (a *authEndpoints) Register(router *mux.Router) {
	router.HandleFunc(LoginRoute, a.loginPage).Methods(http.MethodGet)
	router.HandleFunc(LoginRoute, a.login).Methods(http.MethodPost)
	router.HandleFunc("/admin/logout", a.logout).Methods(http.MethodPost)
	router.HandleFunc("/admin/session", a.sessionState).Methods(http.MethodGet)
}

func (a *authEndpoints) loginPage(w http.ResponseWriter, r *http.Request) {
	from := safeReturnPath(r.URL.Query().Get("from"))
	if a.Session.State().User != nil {
		http.Redirect(w, r, from, http.StatusFound)
		return
	}
	a.renderPage(
		w,
		http.StatusOK,
		"login",
		pageData{Title: "Connexion", From: from},
	)
}

func (a *authEndpoints) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderPage(
			w,
			http.StatusBadRequest,
			"login",
			pageData{Title: "Connexion", Message: "Requête invalide."},
		)
		return
	}
	from := safeReturnPath(r.PostForm.Get("from"))
	creds := authx.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	result := a.Session.Login(r.Context(), creds)
	if !result.Success {
		a.renderPage(
			w,
			http.StatusUnauthorized,
			"login",
			pageData{
				Title:   "Connexion",
				Message: result.Message,
				From:    from,
				Email:   creds.Email,
			},
		)
		return
	}
	http.Redirect(w, r, from, http.StatusFound)
}

func (a *authEndpoints) logout(w http.ResponseWriter, r *http.Request) {
	a.Session.Logout(r.Context())
	http.Redirect(w, r, LoginRoute, http.StatusFound)
}

func (a *authEndpoints) sessionState(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.Session.State())
}
