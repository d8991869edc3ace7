package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"portfolio/internal/contact"
	"portfolio/internal/engine"
	"portfolio/internal/repo"
	"portfolio/internal/site"
)

func registerContact(api huma.API, d handlerDeps) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-contact",
		Method:        http.MethodPost,
		Path:          "/api/contact",
		Summary:       "Submit the contact form",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body ContactRequest `json:"body"`
	}) (*struct {
		Body ContactResponse `json:"body"`
	}, error) {
		addr := clientAddr(ctx)
		if !d.limiter.allow(addr, d.now()) {
			d.metrics.observe(resultRateLimited)
			d.logger.Info("contact rate limited", "remote_addr", addr)
			return nil, newAPIError(http.StatusTooManyRequests, "rate_limited", "too many messages, try again later", nil)
		}
		m, err := d.engine.ReceiveMessage(ctx, engine.ReceiveOptions{
			Name:       input.Body.Name,
			Email:      input.Body.Email,
			Message:    input.Body.Message,
			RemoteAddr: addr,
			UserAgent:  userAgent(ctx),
		})
		if err != nil {
			var ve *contact.ValidationError
			var tl engine.TooLongError
			if errors.As(err, &ve) || errors.As(err, &tl) {
				d.metrics.observe(resultInvalid)
			} else {
				d.metrics.observe(resultError)
				d.logger.Error("store contact message", "err", err)
			}
			return nil, handleError(err)
		}
		d.metrics.observe(resultStored)
		d.logger.Info("contact message stored", "id", m.ID, "remote_addr", addr)
		return &struct {
			Body ContactResponse `json:"body"`
		}{Body: ContactResponse{ID: m.ID, Status: "received"}}, nil
	})
}

func registerContent(api huma.API, d handlerDeps) {
	content := d.engine.Config.Site

	huma.Register(api, huma.Operation{
		OperationID: "get-content",
		Method:      http.MethodGet,
		Path:        "/api/content",
		Summary:     "Site content",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body site.Content `json:"body"`
	}, error) {
		return &struct {
			Body site.Content `json:"body"`
		}{Body: content}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-sections",
		Method:      http.MethodGet,
		Path:        "/api/sections",
		Summary:     "Page sections in order",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body SectionListResponse `json:"body"`
	}, error) {
		return &struct {
			Body SectionListResponse `json:"body"`
		}{Body: SectionListResponse{Items: site.Sections(content)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/api/projects",
		Summary:     "Projects, optionally filtered by category",
	}, func(ctx context.Context, input *struct {
		Filter string `query:"filter"`
	}) (*struct {
		Body ProjectListResponse `json:"body"`
	}, error) {
		filter := input.Filter
		if filter == "" {
			filter = site.FilterAll
		}
		items := site.FilterProjects(content.Projects, filter)
		if items == nil {
			items = []site.Project{}
		}
		return &struct {
			Body ProjectListResponse `json:"body"`
		}{Body: ProjectListResponse{Filter: filter, Filters: content.ProjectFilters, Items: items}}, nil
	})
}

func registerInbox(api huma.API, d handlerDeps) {
	huma.Register(api, huma.Operation{
		OperationID: "list-inbox",
		Method:      http.MethodGet,
		Path:        "/api/inbox",
		Summary:     "List received messages",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Limit  int  `query:"limit" minimum:"0"`
		Unread bool `query:"unread"`
	}) (*struct {
		Body MessageListResponse `json:"body"`
	}, error) {
		if _, err := actorIDFromContext(ctx); err != nil {
			return nil, err
		}
		items, err := d.engine.Repo.ListMessages(ctx, repo.ListFilter{Limit: input.Limit, UnreadOnly: input.Unread})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MessageListResponse `json:"body"`
		}{Body: MessageListResponse{Items: mapMessages(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "inbox-stats",
		Method:      http.MethodGet,
		Path:        "/api/inbox/stats",
		Summary:     "Inbox counters",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body InboxStatsResponse `json:"body"`
	}, error) {
		if _, err := actorIDFromContext(ctx); err != nil {
			return nil, err
		}
		total, unread, err := d.engine.Repo.CountMessages(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body InboxStatsResponse `json:"body"`
		}{Body: InboxStatsResponse{Total: total, Unread: unread}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-message",
		Method:      http.MethodGet,
		Path:        "/api/inbox/{id}",
		Summary:     "Read a message and mark it read",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MessageResponse `json:"body"`
	}, error) {
		actor, herr := actorIDFromContext(ctx)
		if herr != nil {
			return nil, herr
		}
		m, err := d.engine.ReadMessage(ctx, input.ID, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MessageResponse `json:"body"`
		}{Body: messageResponse(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-message",
		Method:        http.MethodDelete,
		Path:          "/api/inbox/{id}",
		Summary:       "Delete a message",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		actor, herr := actorIDFromContext(ctx)
		if herr != nil {
			return nil, herr
		}
		if err := d.engine.DeleteMessage(ctx, input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		d.logger.Info("message deleted", "id", input.ID, "actor", actor)
		return &struct{}{}, nil
	})
}
