package console

import (
	"html/template"
	"net/http"

	"github.com/cppe-issia/console/sdk/authx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}} | CPPE d'Issia</title>
</head>
<body>
<header>
<strong>CPPE d'Issia - Administration</strong>
{{with .User}}
<nav>
<a href="/admin/dashboard">Tableau de bord</a>
<a href="/admin/actualites">Actualités</a>
<a href="/admin/inscriptions">Inscriptions</a>
<a href="/admin/messages">Messages</a>
{{if .HasAnyRole "super-admin"}}<a href="/admin/utilisateurs">Utilisateurs</a>{{end}}
</nav>
<form method="post" action="/admin/logout">
<span>{{.Name}}</span>
<button type="submit">Déconnexion</button>
</form>
{{end}}
</header>
<main>
<h1>{{.Title}}</h1>
{{with .Message}}<p class="message">{{.}}</p>{{end}}
{{end}}

{{define "footer"}}</main>
</body>
</html>
{{end}}

{{define "loading"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="1">
<title>Chargement | CPPE d'Issia</title>
</head>
<body><p>Chargement...</p></body>
</html>
{{end}}

{{define "login"}}{{template "header" .}}
<form method="post" action="/admin/login">
<input type="hidden" name="from" value="{{.From}}">
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
<label>Mot de passe <input type="password" name="password" required></label>
<button type="submit">Se connecter</button>
</form>
{{template "footer" .}}{{end}}

{{define "dashboard"}}{{template "header" .}}
{{with .Stats}}
<dl>
<dt>Inscriptions</dt><dd>{{.EnrollmentsTotal}}</dd>
<dt>Inscriptions en attente</dt><dd>{{.EnrollmentsPending}}</dd>
<dt>Inscriptions ce mois</dt><dd>{{.EnrollmentsThisMonth}}</dd>
<dt>Actualités publiées</dt><dd>{{.NewsPublished}}</dd>
<dt>Brouillons</dt><dd>{{.NewsDrafts}}</dd>
<dt>Messages non lus</dt><dd>{{.UnreadMessages}}</dd>
<dt>Photos de la galerie</dt><dd>{{.GalleryPhotos}}</dd>
</dl>
{{end}}
{{template "footer" .}}{{end}}

{{define "table"}}{{template "header" .}}
{{with .Actions}}<p>{{range .}}<a href="{{.Href}}">{{.Label}}</a> {{end}}</p>{{end}}
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Columns}}">Aucune donnée disponible.</td></tr>
{{end}}
</tbody>
</table>
{{template "footer" .}}{{end}}

{{define "error"}}{{template "header" .}}
<p><a href="/admin/dashboard">Retour au tableau de bord</a></p>
{{template "footer" .}}{{end}}
`

var templates = template.Must(template.New("console").Parse(pageTemplates))

// link is a navigation link rendered above a table.
type link struct {
	Label string
	Href  string
}

// pageData is what every page template is rendered with.
type pageData struct {
	Title   string
	User    *authx.User
	Message string

	// login
	From  string
	Email string

	// dashboard
	Stats interface{}

	// table
	Actions []link
	Columns []string
	Rows    [][]string
}

// renderer writes HTML pages.
type renderer struct {
	logger logrus.FieldLogger
}

func (p *renderer) render(
	w http.ResponseWriter,
	statusCode int,
	name string,
	data interface{},
) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		p.logger.WithError(errors.Wrapf(err, "error rendering %s", name)).Error(
			"error writing page",
		)
	}
}
