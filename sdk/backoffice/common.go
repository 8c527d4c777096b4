// Package backoffice provides specialized clients for the CPPE API's public
// and administrative resources. Every client issues its calls through the
// shared restmachinery.BaseClient and so carries the bearer token and is
// subject to session invalidation on a 401.
package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cppe-issia/console/sdk/internal/restmachinery"
	"github.com/cppe-issia/console/sdk/meta"
	"github.com/pkg/errors"
)

// Upload is a file attached to a multipart request.
type Upload struct {
	// FieldName is the form field the file is attached under, e.g. "photos[]".
	FieldName string
	// FileName is the name reported to the API.
	FileName string
	// Content is read to the end when the request is built.
	Content io.Reader
}

// resourceClient holds the request plumbing shared by every specialized
// client in this package.
type resourceClient struct {
	*restmachinery.BaseClient
}

// list retrieves a collection. The API returns either a bare array under
// "data" or a paginator object whose own "data" holds the array.
func (r resourceClient) list(
	ctx context.Context,
	path string,
	opts *meta.ListOptions,
	items interface{},
) (meta.ListMeta, error) {
	envelope := meta.Envelope{}
	if err := r.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        path,
			QueryParams: opts.QueryParams(),
			RespObj:     &envelope,
		},
	); err != nil {
		return meta.ListMeta{}, err
	}
	listMeta, err := decodeList(envelope.Data, items)
	if err != nil {
		return meta.ListMeta{}, errors.Wrapf(err, "error decoding %s", path)
	}
	if envelope.Meta != nil {
		listMeta = *envelope.Meta
	}
	return listMeta, nil
}

func decodeList(data json.RawMessage, items interface{}) (meta.ListMeta, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return meta.ListMeta{}, nil
	}
	if data[0] == '[' {
		return meta.ListMeta{}, json.Unmarshal(data, items)
	}
	page := struct {
		meta.ListMeta
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(data, &page); err != nil {
		return meta.ListMeta{}, err
	}
	if len(page.Data) > 0 {
		if err := json.Unmarshal(page.Data, items); err != nil {
			return meta.ListMeta{}, err
		}
	}
	return page.ListMeta, nil
}

// do issues a request whose optional JSON body is reqBody and decodes the
// envelope's data into respObj if respObj is non-nil. It returns the
// envelope's message.
func (r resourceClient) do(
	ctx context.Context,
	method string,
	path string,
	reqBody interface{},
	respObj interface{},
) (string, error) {
	envelope := meta.Envelope{}
	if err := r.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     method,
			Path:       path,
			ReqBodyObj: reqBody,
			RespObj:    &envelope,
		},
	); err != nil {
		return "", err
	}
	if respObj != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, respObj); err != nil {
			return "", errors.Wrapf(err, "error decoding %s", path)
		}
	}
	return envelope.Message, nil
}

// doMultipart is like do but sends fields and uploads as
// multipart/form-data.
func (r resourceClient) doMultipart(
	ctx context.Context,
	path string,
	fields map[string]string,
	uploads []Upload,
	respObj interface{},
) error {
	body, contentType, err := multipartBody(fields, uploads)
	if err != nil {
		return err
	}
	envelope := meta.Envelope{}
	if err := r.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        path,
			ReqBodyObj:  body,
			ContentType: contentType,
			RespObj:     &envelope,
		},
	); err != nil {
		return err
	}
	if respObj != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, respObj); err != nil {
			return errors.Wrapf(err, "error decoding %s", path)
		}
	}
	return nil
}

// download streams a binary response body to w.
func (r resourceClient) download(
	ctx context.Context,
	path string,
	accept string,
	queryParams map[string]string,
	w io.Writer,
) error {
	return r.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        path,
			QueryParams: queryParams,
			Headers:     map[string]string{"Accept": accept},
			RespWriter:  w,
		},
	)
}

func (r resourceClient) delete(ctx context.Context, path string) error {
	_, err := r.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func multipartBody(
	fields map[string]string,
	uploads []Upload,
) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", errors.Wrapf(err, "error writing form field %s", name)
		}
	}
	for _, upload := range uploads {
		part, err := w.CreateFormFile(upload.FieldName, upload.FileName)
		if err != nil {
			return nil, "", errors.Wrapf(
				err,
				"error creating form file %s",
				upload.FileName,
			)
		}
		if _, err := io.Copy(part, upload.Content); err != nil {
			return nil, "", errors.Wrapf(err, "error reading %s", upload.FileName)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "error closing multipart body")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
