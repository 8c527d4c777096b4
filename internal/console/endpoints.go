package console

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cppe-issia/console/internal/session"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Endpoints is the interface for components that register console routes.
type Endpoints interface {
	Register(router *mux.Router)
}

// Session is the interface for the component that owns the operator's
// session.
type Session interface {
	SessionState
	Login(context.Context, authx.Credentials) session.LoginResult
	Logout(context.Context)
}

// BaseEndpoints holds what every group of console endpoints shares.
type BaseEndpoints struct {
	Guard   *Guard
	Session Session
	Logger  logrus.FieldLogger
}

func (b *BaseEndpoints) renderer() *renderer {
	return &renderer{logger: b.Logger}
}

func (b *BaseEndpoints) renderPage(
	w http.ResponseWriter,
	statusCode int,
	name string,
	data pageData,
) {
	if data.User == nil {
		data.User = b.Session.State().User
	}
	b.renderer().render(w, statusCode, name, data)
}

// serveAPIError turns an error from the CPPE API into a response. A 401 has
// already invalidated the session by the time it arrives here, so the
// operator is sent to the login screen. The same applies to a request that
// was aborted because another request's 401 invalidated the session.
func (b *BaseEndpoints) serveAPIError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	logger := b.Logger.WithField("path", r.URL.Path)
	if meta.IsAuthentication(err) ||
		(errors.Is(err, context.Canceled) && b.Session.State().User == nil) {
		logger.Info("session ended; redirecting to login")
		http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
		return
	}
	statusCode := http.StatusBadGateway
	message := "Le serveur est momentanément indisponible."
	switch errors.Cause(err).(type) {
	case *meta.ErrAuthorization:
		statusCode = http.StatusForbidden
		message = "Accès refusé."
	case *meta.ErrNotFound:
		statusCode = http.StatusNotFound
		message = "Ressource introuvable."
	}
	if apiMessage := meta.MessageFrom(err); apiMessage != "" &&
		statusCode != http.StatusBadGateway {
		message = apiMessage
	}
	logger.WithError(err).WithField("status", meta.StatusCode(err)).Warn(
		"error calling API",
	)
	b.renderPage(w, statusCode, "error", pageData{Title: "Erreur", Message: message})
}

func (b *BaseEndpoints) writeJSON(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		b.Logger.WithError(
			errors.Wrap(err, "error writing response body"),
		).Error("error writing JSON response")
	}
}

// withLocation records the path of the console page being served in the
// request context. API calls made on its behalf carry it to the HTTP client
// core.
func withLocation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(
			w,
			r.WithContext(meta.ContextWithLocation(r.Context(), r.URL.Path)),
		)
	})
}
