package ports

import (
	"context"

	"github.com/painelbot/atendente/pkg/domain"
)

// MenuService reads and writes menu steps.
type MenuService interface {
	// Menus returns every step keyed by id.
	Menus(ctx context.Context) (domain.StepMap, error)

	// UpdateMenu replaces title, description and the whole option list of one step.
	UpdateMenu(ctx context.Context, step domain.Step) error

	// CreateMenu creates a new step.
	CreateMenu(ctx context.Context, step domain.Step) error
}

// FlowService reads and patches the flow document.
type FlowService interface {
	Flow(ctx context.Context) (domain.FlowConfig, error)
	PatchFlowList(ctx context.Context, field string, values []string) error
}

// MessageService manages canned system messages.
type MessageService interface {
	Messages(ctx context.Context) ([]domain.Message, error)
	UpdateMessage(ctx context.Context, id, content string) error
}

// DestinationService manages transfer destinations.
type DestinationService interface {
	Destinations(ctx context.Context) ([]domain.Destination, error)
	Destination(ctx context.Context, id string) (domain.Destination, error)
	UpdateDestination(ctx context.Context, id, number string) error
}

// ActionService manages automated actions and their attachments.
type ActionService interface {
	Actions(ctx context.Context) ([]domain.Action, error)
	CreateAction(ctx context.Context, a domain.Action, files []domain.Upload) (domain.Action, error)
	UpdateAction(ctx context.Context, a domain.Action, files []domain.Upload) (domain.Action, error)
	DeleteAction(ctx context.Context, a domain.Action) error
}

// InstanceService manages WhatsApp instances.
type InstanceService interface {
	Instances(ctx context.Context) ([]domain.Instance, error)
	CreateInstance(ctx context.Context, in domain.NewInstance) error
	Connect(ctx context.Context, name string) (domain.ConnectState, error)
	Logout(ctx context.Context, id string) error
	DeleteInstance(ctx context.Context, name string) error
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (token string, err error)
}
