package rendercmd

import (
	"errors"

	"github.com/tothom/drupier-demo/internal/commands"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the render command handlers produced by RegisterRenderCommands.
type HandlerSet struct {
	Render *RenderBlockHandler
}

// RegisterRenderCommands builds the render handlers and registers them with reg when non-nil.
func RegisterRenderCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...commands.HandlerOption[RenderBlockCommand]) (*HandlerSet, error) {
	if deps.Pipeline == nil {
		return nil, errors.New("render command registration: pipeline is nil")
	}

	logger := commands.CommandLogger(provider, "render")
	handler := NewRenderBlockHandler(deps, logger, opts...)

	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Render: handler}, nil
}
