package backoffice

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cppe-issia/console/sdk/meta"
)

// Activity is a school activity with its photo gallery.
type Activity struct {
	meta.ObjectMeta
	Title        string `json:"titre"`
	Slug         string `json:"slug,omitempty"`
	Section      string `json:"section,omitempty"`
	Description  string `json:"description,omitempty"`
	ActivityDate string `json:"date_activite,omitempty"`
	Published    bool   `json:"publie"`
	MainPhoto    string `json:"photo_principale,omitempty"`
	PhotoCount   int    `json:"nb_photos,omitempty"`
}

// ActivityList is an ordered and paginated list of Activities.
type ActivityList struct {
	meta.ListMeta
	Items []Activity
}

// ActivityForm is what Create and Update send. Photos are uploaded alongside
// the descriptive fields.
type ActivityForm struct {
	Title        string
	Section      string
	Description  string
	ActivityDate string
	Published    bool
	Photos       []Upload
}

func (a ActivityForm) fields() map[string]string {
	fields := map[string]string{
		"titre":  a.Title,
		"publie": boolField(a.Published),
	}
	if a.Section != "" {
		fields["section"] = a.Section
	}
	if a.Description != "" {
		fields["description"] = a.Description
	}
	if a.ActivityDate != "" {
		fields["date_activite"] = a.ActivityDate
	}
	return fields
}

// ActivitiesClient is the specialized client for managing Activities.
type ActivitiesClient interface {
	List(context.Context, *meta.ListOptions) (ActivityList, error)
	// GetBySlug returns a single public Activity.
	GetBySlug(context.Context, string) (Activity, error)
	AdminList(context.Context, *meta.ListOptions) (ActivityList, error)
	Create(context.Context, ActivityForm) (Activity, error)
	Update(context.Context, int64, ActivityForm) (Activity, error)
	Delete(context.Context, int64) error
}

type activitiesClient struct {
	resourceClient
}

func (a *activitiesClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (ActivityList, error) {
	list := ActivityList{}
	var err error
	list.ListMeta, err = a.list(ctx, "activites", opts, &list.Items)
	return list, err
}

func (a *activitiesClient) GetBySlug(
	ctx context.Context,
	slug string,
) (Activity, error) {
	activity := Activity{}
	_, err := a.do(
		ctx,
		http.MethodGet,
		"activites/"+url.PathEscape(slug),
		nil,
		&activity,
	)
	return activity, err
}

func (a *activitiesClient) AdminList(
	ctx context.Context,
	opts *meta.ListOptions,
) (ActivityList, error) {
	list := ActivityList{}
	var err error
	list.ListMeta, err = a.list(ctx, "admin/activites", opts, &list.Items)
	return list, err
}

func (a *activitiesClient) Create(
	ctx context.Context,
	form ActivityForm,
) (Activity, error) {
	activity := Activity{}
	err := a.doMultipart(
		ctx,
		"admin/activites",
		form.fields(),
		form.Photos,
		&activity,
	)
	return activity, err
}

// Update uses POST rather than PUT because the API only parses multipart
// bodies on POST.
func (a *activitiesClient) Update(
	ctx context.Context,
	id int64,
	form ActivityForm,
) (Activity, error) {
	activity := Activity{}
	err := a.doMultipart(
		ctx,
		idPath("admin/activites/%d", id),
		form.fields(),
		form.Photos,
		&activity,
	)
	return activity, err
}

func (a *activitiesClient) Delete(ctx context.Context, id int64) error {
	return a.delete(ctx, idPath("admin/activites/%d", id))
}
