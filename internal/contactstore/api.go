package contactstore

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// Contacts registers the /contacts routes on a huma API.
type Contacts struct {
	Store        *Inmem
	ErrorHandler func(context.Context, error)
}

type handler[I, O any] = func(context.Context, *I) (*O, error)

func handlerWithErrorHandler[I, O any](h handler[I, O], do func(context.Context, error)) handler[I, O] {
	if do == nil {
		return h
	}
	return func(ctx context.Context, i *I) (*O, error) {
		o, err := h(ctx, i)
		if err != nil {
			do(ctx, err)
		}
		return o, err
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

func opStatus(code int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.DefaultStatus = code }
}

// Register adds every contact operation to api.
func (h *Contacts) Register(api huma.API) {
	huma.Get(api, "/contacts",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
	huma.Post(api, "/contacts",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
	huma.Get(api, "/contacts/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
	huma.Put(api, "/contacts/{id}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
	huma.Delete(api, "/contacts/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

// ListInput mirrors json-server's paging and filter parameters.
type ListInput struct {
	Page      int    `query:"_page" minimum:"0" doc:"1-based page; omit for every match"`
	Limit     int    `query:"_limit" minimum:"0" doc:"page size, defaults to 10 when paging"`
	Search    string `query:"q" doc:"case-insensitive substring of name, email, phone or address"`
	Favourite string `query:"favourite" doc:"filter on the favourite flag, true or false"`
}

// ListOutput is one page plus the total match count header.
type ListOutput struct {
	TotalCount string `header:"X-Total-Count"`
	Body       []schema.Contact
}

func (h *Contacts) list(_ context.Context, input *ListInput) (*ListOutput, error) {
	params := schema.ListParams{Page: input.Page, Limit: input.Limit, Search: input.Search}

	var keep func(schema.Contact) bool
	switch input.Favourite {
	case "":
	case "true":
		params.FavouritesOnly = true
	case "false":
		keep = func(c schema.Contact) bool { return !c.Favourite }
	default:
		return nil, huma.Error422UnprocessableEntity("favourite must be true or false")
	}

	page := h.Store.list(params, keep)
	return &ListOutput{TotalCount: strconv.Itoa(page.Total), Body: page.Items}, nil
}

// ContactOutput carries a single contact.
type ContactOutput struct {
	Body schema.Contact
}

// IDInput addresses a single contact.
type IDInput struct {
	ID string `path:"id" doc:"ID of the contact"`
}

func (h *Contacts) get(ctx context.Context, input *IDInput) (*ContactOutput, error) {
	c, err := h.Store.Get(ctx, input.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactOutput{Body: c}, nil
}

// CreateInput is the body of a create request.
type CreateInput struct {
	Body schema.ContactFields
}

func (h *Contacts) create(ctx context.Context, input *CreateInput) (*ContactOutput, error) {
	c, err := h.Store.Create(ctx, input.Body)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactOutput{Body: c}, nil
}

// PutInput replaces every field of a contact.
type PutInput struct {
	ID   string `path:"id" doc:"ID of the contact to replace"`
	Body schema.ContactFields
}

func (h *Contacts) put(ctx context.Context, input *PutInput) (*ContactOutput, error) {
	c, err := h.Store.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactOutput{Body: c}, nil
}

func (h *Contacts) del(ctx context.Context, input *IDInput) (*struct{}, error) {
	if err := h.Store.Delete(ctx, input.ID); err != nil {
		return nil, storeError(err)
	}
	return nil, nil
}

// storeError maps store errors onto HTTP errors.
func storeError(err error) error {
	if errors.Is(err, contract.ErrNotFound) {
		return huma.Error404NotFound("id not found", err)
	}
	return err
}
