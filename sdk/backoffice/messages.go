package backoffice

import (
	"context"
	"net/http"

	"github.com/cppe-issia/console/sdk/meta"
)

// Message is a message sent through the public contact form.
type Message struct {
	meta.ObjectMeta
	Name    string `json:"nom"`
	Email   string `json:"email"`
	Phone   string `json:"telephone,omitempty"`
	Subject string `json:"sujet"`
	Body    string `json:"message"`
	Read    bool   `json:"lu"`
}

// MessageList is an ordered and paginated list of Messages.
type MessageList struct {
	meta.ListMeta
	Items []Message
}

// MessagesClient is the specialized client for the contact inbox.
type MessagesClient interface {
	List(context.Context, *meta.ListOptions) (MessageList, error)
	Get(context.Context, int64) (Message, error)
	MarkRead(context.Context, int64) error
	Delete(context.Context, int64) error
}

type messagesClient struct {
	resourceClient
}

func (m *messagesClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (MessageList, error) {
	list := MessageList{}
	var err error
	list.ListMeta, err = m.list(ctx, "admin/messages", opts, &list.Items)
	return list, err
}

func (m *messagesClient) Get(ctx context.Context, id int64) (Message, error) {
	message := Message{}
	_, err := m.do(
		ctx,
		http.MethodGet,
		idPath("admin/messages/%d", id),
		nil,
		&message,
	)
	return message, err
}

func (m *messagesClient) MarkRead(ctx context.Context, id int64) error {
	_, err := m.do(
		ctx,
		http.MethodPatch,
		idPath("admin/messages/%d/lu", id),
		nil,
		nil,
	)
	return err
}

func (m *messagesClient) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, idPath("admin/messages/%d", id))
}
