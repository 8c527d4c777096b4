package console

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cppe-issia/console/sdk/authx"
	"github.com/cppe-issia/console/sdk/backoffice"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/gorilla/mux"
)

type adminEndpoints struct {
	*BaseEndpoints
	client backoffice.APIClient
}

// NewAdminEndpoints returns the protected back-office pages. Every page is
// backed by calls through client.
func NewAdminEndpoints(
	base *BaseEndpoints,
	client backoffice.APIClient,
) Endpoints {
	return &adminEndpoints{
		BaseEndpoints: base,
		client:        client,
	}
}

func (a *adminEndpoints) Register(router *mux.Router) {
	router.Handle(
		"/admin",
		http.RedirectHandler(LandingRoute, http.StatusFound),
	).Methods(http.MethodGet)

	// Any authenticated user
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(a.Guard.Protect())
	admin.HandleFunc("/dashboard", a.dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/actualites", a.news).Methods(http.MethodGet)
	admin.HandleFunc("/inscriptions", a.enrollments).Methods(http.MethodGet)
	admin.HandleFunc(
		"/inscriptions/export/excel",
		a.exportEnrollments,
	).Methods(http.MethodGet)
	admin.HandleFunc(
		"/inscriptions/{id:[0-9]+}/pdf",
		a.enrollmentPDF,
	).Methods(http.MethodGet)
	admin.HandleFunc("/messages", a.messages).Methods(http.MethodGet)

	// Super-admins only
	router.Handle(
		"/admin/utilisateurs",
		a.Guard.Protect(authx.RoleSuperAdmin)(http.HandlerFunc(a.users)),
	).Methods(http.MethodGet)
}

func (a *adminEndpoints) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.client.Dashboard().Stats(r.Context())
	if err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	a.renderPage(
		w,
		http.StatusOK,
		"dashboard",
		pageData{Title: "Tableau de bord", Stats: stats},
	)
}

func (a *adminEndpoints) news(w http.ResponseWriter, r *http.Request) {
	list, err := a.client.News().AdminList(r.Context(), listOptions(r, "statut"))
	if err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	rows := make([][]string, len(list.Items))
	for i, news := range list.Items {
		rows[i] = []string{
			news.Title,
			news.Type,
			string(news.Status),
			news.Author,
			news.PublicationDate,
		}
	}
	a.renderPage(
		w,
		http.StatusOK,
		"table",
		pageData{
			Title:   "Actualités",
			Columns: []string{"Titre", "Type", "Statut", "Auteur", "Publication"},
			Rows:    rows,
		},
	)
}

func (a *adminEndpoints) enrollments(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r, "statut", "section")
	list, err := a.client.Enrollments().List(r.Context(), opts)
	if err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	rows := make([][]string, len(list.Items))
	for i, enrollment := range list.Items {
		rows[i] = []string{
			enrollment.ChildLastName + " " + enrollment.ChildFirstNames,
			enrollment.Section,
			string(enrollment.Status),
			string(enrollment.PaymentStatus),
			fmt.Sprintf("/admin/inscriptions/%d/pdf", enrollment.ID),
		}
	}
	exportURL := "/admin/inscriptions/export/excel"
	if r.URL.RawQuery != "" {
		exportURL += "?" + r.URL.RawQuery
	}
	a.renderPage(
		w,
		http.StatusOK,
		"table",
		pageData{
			Title:   "Inscriptions",
			Actions: []link{{Label: "Exporter (Excel)", Href: exportURL}},
			Columns: []string{"Enfant", "Section", "Statut", "Paiement", "Fiche PDF"},
			Rows:    rows,
		},
	)
}

func (a *adminEndpoints) exportEnrollments(
	w http.ResponseWriter,
	r *http.Request,
) {
	buf := &bytes.Buffer{}
	if err := a.client.Enrollments().ExportExcel(
		r.Context(),
		listOptions(r, "statut", "section"),
		buf,
	); err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	a.serveDownload(
		w,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("inscriptions-%s.xlsx", time.Now().Format("2006-01-02")),
		buf,
	)
}

func (a *adminEndpoints) enrollmentPDF(w http.ResponseWriter, r *http.Request) {
	// The route only matches digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	buf := &bytes.Buffer{}
	if err := a.client.Enrollments().ExportPDF(r.Context(), id, buf); err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	a.serveDownload(
		w,
		"application/pdf",
		fmt.Sprintf("inscription-%d.pdf", id),
		buf,
	)
}

func (a *adminEndpoints) messages(w http.ResponseWriter, r *http.Request) {
	list, err := a.client.Messages().List(r.Context(), listOptions(r, "lu"))
	if err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	rows := make([][]string, len(list.Items))
	for i, message := range list.Items {
		read := "Non lu"
		if message.Read {
			read = "Lu"
		}
		rows[i] = []string{message.Name, message.Email, message.Subject, read}
	}
	a.renderPage(
		w,
		http.StatusOK,
		"table",
		pageData{
			Title:   "Messages",
			Columns: []string{"Nom", "Email", "Sujet", "Statut"},
			Rows:    rows,
		},
	)
}

func (a *adminEndpoints) users(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.client.Users().List(r.Context())
	if err != nil {
		a.serveAPIError(w, r, err)
		return
	}
	rows := make([][]string, len(accounts))
	for i, account := range accounts {
		active := "Inactif"
		if account.Active {
			active = "Actif"
		}
		rows[i] = []string{
			account.Name,
			account.Email,
			fmt.Sprintf("%v", account.Roles),
			active,
		}
	}
	a.renderPage(
		w,
		http.StatusOK,
		"table",
		pageData{
			Title:   "Utilisateurs",
			Columns: []string{"Nom", "Email", "Rôles", "Statut"},
			Rows:    rows,
		},
	)
}

func (a *adminEndpoints) serveDownload(
	w http.ResponseWriter,
	contentType string,
	fileName string,
	buf *bytes.Buffer,
) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fileName),
	)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		a.Logger.WithError(err).Error("error writing download")
	}
}

// listOptions builds ListOptions from the request's query string, passing
// through the named filters.
func listOptions(r *http.Request, filters ...string) *meta.ListOptions {
	query := r.URL.Query()
	opts := &meta.ListOptions{
		Search:  query.Get("search"),
		Filters: map[string]string{},
	}
	opts.Page, _ = strconv.Atoi(query.Get("page"))
	for _, filter := range filters {
		if value := query.Get(filter); value != "" {
			opts.Filters[filter] = value
		}
	}
	return opts
}
