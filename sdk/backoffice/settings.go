package backoffice

import (
	"context"
	"net/http"
	"net/url"
)

// Setting is a "paramètre": a key/value pair of site-wide configuration such
// as the director's welcome message or the school's phone number.
type Setting struct {
	Key   string `json:"cle"`
	Value string `json:"valeur"`
	Label string `json:"label,omitempty"`
	Group string `json:"groupe,omitempty"`
}

// SettingsClient is the specialized client for site-wide settings.
type SettingsClient interface {
	List(context.Context) ([]Setting, error)
	Get(context.Context, string) (Setting, error)
	AdminList(context.Context) ([]Setting, error)
	Update(ctx context.Context, key string, value string) error
}

type settingsClient struct {
	resourceClient
}

func (s *settingsClient) List(ctx context.Context) ([]Setting, error) {
	settings := []Setting{}
	_, err := s.list(ctx, "parametres", nil, &settings)
	return settings, err
}

func (s *settingsClient) Get(ctx context.Context, key string) (Setting, error) {
	setting := Setting{}
	_, err := s.do(
		ctx,
		http.MethodGet,
		"parametres/"+url.PathEscape(key),
		nil,
		&setting,
	)
	return setting, err
}

func (s *settingsClient) AdminList(ctx context.Context) ([]Setting, error) {
	settings := []Setting{}
	_, err := s.list(ctx, "admin/parametres", nil, &settings)
	return settings, err
}

func (s *settingsClient) Update(
	ctx context.Context,
	key string,
	value string,
) error {
	_, err := s.do(
		ctx,
		http.MethodPut,
		"admin/parametres/"+url.PathEscape(key),
		struct {
			Value string `json:"valeur"`
		}{value},
		nil,
	)
	return err
}
