package backoffice

import (
	"context"

	"github.com/cppe-issia/console/sdk/meta"
)

// Media is an image in the gallery.
type Media struct {
	meta.ObjectMeta
	Name         string `json:"nom"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"url_thumb,omitempty"`
}

// MediaList is an ordered and paginated list of Media.
type MediaList struct {
	meta.ListMeta
	Items []Media
}

// MediaClient is the specialized client for managing the gallery.
type MediaClient interface {
	List(context.Context, *meta.ListOptions) (MediaList, error)
	// Upload adds one or more files to the gallery. Each Upload's FieldName
	// defaults to "fichiers[]".
	Upload(context.Context, ...Upload) ([]Media, error)
	Delete(context.Context, int64) error
}

type mediaClient struct {
	resourceClient
}

func (m *mediaClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (MediaList, error) {
	list := MediaList{}
	var err error
	list.ListMeta, err = m.list(ctx, "admin/medias", opts, &list.Items)
	return list, err
}

func (m *mediaClient) Upload(
	ctx context.Context,
	uploads ...Upload,
) ([]Media, error) {
	for i := range uploads {
		if uploads[i].FieldName == "" {
			uploads[i].FieldName = "fichiers[]"
		}
	}
	media := []Media{}
	err := m.doMultipart(ctx, "admin/medias", nil, uploads, &media)
	return media, err
}

func (m *mediaClient) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, idPath("admin/medias/%d", id))
}
