package backoffice

import (
	"context"
	"net/http"

	"github.com/cppe-issia/console/sdk/meta"
)

// NewsStatus represents the publication status of a News item.
type NewsStatus string

const (
	// NewsStatusDraft represents a News item not yet visible on the public
	// site.
	NewsStatusDraft NewsStatus = "brouillon"
	// NewsStatusPublished represents a News item visible on the public site.
	NewsStatusPublished NewsStatus = "publie"
)

// News is an "actualité": an article or flash announcement published on the
// public site.
type News struct {
	meta.ObjectMeta
	Title   string `json:"titre"`
	Type    string `json:"type,omitempty"`
	Content string `json:"contenu,omitempty"`
	Section string `json:"section,omitempty"`
	// Status is the publication status. It is changed with UpdateStatus.
	Status          NewsStatus `json:"statut,omitempty"`
	Author          string     `json:"auteur,omitempty"`
	PublicationDate string     `json:"date_publication,omitempty"`
	ActivityDate    string     `json:"date_activite,omitempty"`
	MediaCount      int        `json:"media_count,omitempty"`
}

// NewsList is an ordered and paginated list of News.
type NewsList struct {
	meta.ListMeta
	Items []News
}

// NewsClient is the specialized client for managing News.
type NewsClient interface {
	// List returns published News, as shown on the public site.
	List(context.Context, *meta.ListOptions) (NewsList, error)
	// Get returns a single published News item.
	Get(context.Context, int64) (News, error)
	// AdminList returns News in every status. A "statut" filter narrows it.
	AdminList(context.Context, *meta.ListOptions) (NewsList, error)
	Create(context.Context, News) (News, error)
	Update(context.Context, int64, News) (News, error)
	Delete(context.Context, int64) error
	// UpdateStatus publishes or unpublishes a News item.
	UpdateStatus(context.Context, int64, NewsStatus) error
}

type newsClient struct {
	resourceClient
}

func (n *newsClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (NewsList, error) {
	list := NewsList{}
	var err error
	list.ListMeta, err = n.list(ctx, "actualites", opts, &list.Items)
	return list, err
}

func (n *newsClient) Get(ctx context.Context, id int64) (News, error) {
	news := News{}
	_, err := n.do(ctx, http.MethodGet, idPath("actualites/%d", id), nil, &news)
	return news, err
}

func (n *newsClient) AdminList(
	ctx context.Context,
	opts *meta.ListOptions,
) (NewsList, error) {
	list := NewsList{}
	var err error
	list.ListMeta, err = n.list(ctx, "admin/actualites", opts, &list.Items)
	return list, err
}

func (n *newsClient) Create(ctx context.Context, news News) (News, error) {
	created := News{}
	_, err := n.do(ctx, http.MethodPost, "admin/actualites", news, &created)
	return created, err
}

func (n *newsClient) Update(
	ctx context.Context,
	id int64,
	news News,
) (News, error) {
	updated := News{}
	_, err := n.do(
		ctx,
		http.MethodPut,
		idPath("admin/actualites/%d", id),
		news,
		&updated,
	)
	return updated, err
}

func (n *newsClient) Delete(ctx context.Context, id int64) error {
	return n.delete(ctx, idPath("admin/actualites/%d", id))
}

func (n *newsClient) UpdateStatus(
	ctx context.Context,
	id int64,
	status NewsStatus,
) error {
	_, err := n.do(
		ctx,
		http.MethodPatch,
		idPath("admin/actualites/%d/statut", id),
		struct {
			Status NewsStatus `json:"statut"`
		}{status},
		nil,
	)
	return err
}
