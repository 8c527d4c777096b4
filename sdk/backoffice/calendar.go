package backoffice

import (
	"context"
	"net/http"

	"github.com/cppe-issia/console/sdk/meta"
)

// CalendarEvent is an entry in the school calendar, e.g. a holiday period.
type CalendarEvent struct {
	meta.ObjectMeta
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"date_debut"`
	EndDate     string `json:"date_fin,omitempty"`
	SchoolYear  string `json:"annee_scolaire,omitempty"`
}

// CalendarEventList is an ordered and paginated list of CalendarEvents.
type CalendarEventList struct {
	meta.ListMeta
	Items []CalendarEvent
}

// CalendarClient is the specialized client for managing the school calendar.
type CalendarClient interface {
	List(context.Context, *meta.ListOptions) (CalendarEventList, error)
	AdminList(context.Context, *meta.ListOptions) (CalendarEventList, error)
	Create(context.Context, CalendarEvent) (CalendarEvent, error)
	Update(context.Context, int64, CalendarEvent) (CalendarEvent, error)
	Delete(context.Context, int64) error
}

type calendarClient struct {
	resourceClient
}

func (c *calendarClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (CalendarEventList, error) {
	list := CalendarEventList{}
	var err error
	list.ListMeta, err = c.list(ctx, "calendrier", opts, &list.Items)
	return list, err
}

func (c *calendarClient) AdminList(
	ctx context.Context,
	opts *meta.ListOptions,
) (CalendarEventList, error) {
	list := CalendarEventList{}
	var err error
	list.ListMeta, err = c.list(ctx, "admin/calendrier", opts, &list.Items)
	return list, err
}

func (c *calendarClient) Create(
	ctx context.Context,
	event CalendarEvent,
) (CalendarEvent, error) {
	created := CalendarEvent{}
	_, err := c.do(ctx, http.MethodPost, "admin/calendrier", event, &created)
	return created, err
}

func (c *calendarClient) Update(
	ctx context.Context,
	id int64,
	event CalendarEvent,
) (CalendarEvent, error) {
	updated := CalendarEvent{}
	_, err := c.do(
		ctx,
		http.MethodPut,
		idPath("admin/calendrier/%d", id),
		event,
		&updated,
	)
	return updated, err
}

func (c *calendarClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("admin/calendrier/%d", id))
}
