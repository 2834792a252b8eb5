package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
)

// actionPayload is the JSON body of action create/update. Step is only sent on create.
type actionPayload struct {
	Step        domain.StepID `json:"etapa,omitempty"`
	Option      string        `json:"opcao"`
	Type        string        `json:"acao_tipo"`
	Content     string        `json:"conteudo"`
	AwaitsReply bool          `json:"aguarda_resposta,omitempty"`
}

// Actions fetches every action, with attachment contents.
func (c *Client) Actions(ctx context.Context) ([]domain.Action, error) {
	var raw []any
	if err := c.get(ctx, "/api/acoes", "/api/acoes?incluirArquivos=true", &raw); err != nil {
		return nil, err
	}
	var out []domain.Action
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}
	return out, nil
}

// CreateAction creates a, then adds the step its option leads to in the flow document to the
// "anything else?" list. The option must be routed in the flow document.
func (c *Client) CreateAction(ctx context.Context, a domain.Action, files []domain.Upload) (domain.Action, error) {
	if err := a.Validate(true); err != nil {
		return domain.Action{}, err
	}
	if err := domain.ValidateUploads(files); err != nil {
		return domain.Action{}, err
	}

	created, err := c.saveAction(ctx, http.MethodPost, "/api/acoes", "/api/acoes", a, files, true)
	if err != nil {
		return domain.Action{}, err
	}

	flow, err := c.Flow(ctx)
	if err != nil {
		return created, fmt.Errorf("action created but flow sync failed: %w", err)
	}
	target, ok := flow.Routes.Target(a.Step, a.Option)
	if !ok {
		return created, fmt.Errorf("action created but flow sync failed: %w: option %s of %s is not routed",
			domain.ErrDanglingOption, a.Option, a.Step)
	}
	list := domain.AddUnique(flow.List(domain.FlowListMoreInfo), string(target))
	if err := c.PatchFlowList(ctx, domain.FlowListMoreInfo, list); err != nil {
		return created, fmt.Errorf("action created but flow sync failed: %w", err)
	}
	return created, nil
}

// UpdateAction updates a. Files, when given, replace the stored attachments.
func (c *Client) UpdateAction(ctx context.Context, a domain.Action, files []domain.Upload) (domain.Action, error) {
	if a.ID == "" {
		return domain.Action{}, fmt.Errorf("%w: id is required", domain.ErrInvalidAction)
	}
	if err := a.Validate(false); err != nil {
		return domain.Action{}, err
	}
	if err := domain.ValidateUploads(files); err != nil {
		return domain.Action{}, err
	}
	path := "/api/acoes/" + url.PathEscape(a.ID)
	return c.saveAction(ctx, http.MethodPut, "/api/acoes/{id}", path, a, files, false)
}

// DeleteAction deletes a and removes the step its option leads to from the "anything else?" list.
// An option no longer routed in the flow leaves the list untouched.
func (c *Client) DeleteAction(ctx context.Context, a domain.Action) error {
	if a.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidAction)
	}
	path := "/api/acoes/" + url.PathEscape(a.ID)
	if err := c.do(ctx, request{method: http.MethodDelete, route: "/api/acoes/{id}", path: path}, nil); err != nil {
		return err
	}

	flow, err := c.Flow(ctx)
	if err != nil {
		return fmt.Errorf("action deleted but flow sync failed: %w", err)
	}
	target, ok := flow.Routes.Target(a.Step, a.Option)
	if !ok {
		return nil
	}
	list := domain.RemoveAll(flow.List(domain.FlowListMoreInfo), string(target))
	if err := c.PatchFlowList(ctx, domain.FlowListMoreInfo, list); err != nil {
		return fmt.Errorf("action deleted but flow sync failed: %w", err)
	}
	return nil
}

// saveAction sends multipart when a file action is created or its files are replaced, JSON otherwise.
func (c *Client) saveAction(ctx context.Context, method, route, path string, a domain.Action, files []domain.Upload, creating bool) (domain.Action, error) {
	var (
		r   request
		err error
	)
	if a.Type == domain.ActionTypeFile && (creating || len(files) > 0) {
		r, err = multipartRequest(method, route, path, a, files, creating)
	} else {
		payload := actionPayload{
			Option:      a.Option,
			Type:        a.Type,
			Content:     a.Content,
			AwaitsReply: a.AwaitsReply,
		}
		if creating {
			payload.Step = a.Step
		}
		r, err = jsonRequest(method, route, path, payload)
	}
	if err != nil {
		return domain.Action{}, err
	}

	var raw any
	if err := c.do(ctx, r, &raw); err != nil {
		return domain.Action{}, err
	}

	// The backend answers with the stored action or with a bare acknowledgement.
	saved := a
	if m, ok := raw.(map[string]any); ok && m["id"] != nil {
		if err := decode(m, &saved); err != nil {
			return domain.Action{}, fmt.Errorf("failed to decode saved action: %w", err)
		}
	}
	return saved, nil
}

func multipartRequest(method, route, path string, a domain.Action, files []domain.Upload, creating bool) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{}
	if creating {
		fields = append(fields, [2]string{"etapa", string(a.Step)})
	}
	fields = append(fields,
		[2]string{"opcao", a.Option},
		[2]string{"acao_tipo", a.Type},
		[2]string{"conteudo", a.Content},
	)
	if a.AwaitsReply {
		fields = append(fields, [2]string{"aguarda_resposta", "true"})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return request{}, fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="arquivos"; filename="%s"`, escapeQuotes(f.Name)))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("failed to add file %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return request{}, fmt.Errorf("failed to add file %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("failed to finish form: %w", err)
	}

	return request{
		method:      method,
		route:       route,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
