package themescmd

import (
	"errors"

	"github.com/tothom/drupier-demo/internal/commands"
	"github.com/tothom/drupier-demo/internal/themes"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the theme command handlers produced by RegisterThemeCommands.
type HandlerSet struct {
	Register *RegisterThemeHandler
	Discover *DiscoverThemesHandler
}

// RegisterThemeCommands builds the theme handlers and registers them with reg when non-nil.
func RegisterThemeCommands(reg CommandRegistry, service themes.Service, invalidator TagInvalidator, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("themes command registration: service is nil")
	}

	logger := commands.CommandLogger(provider, "themes")
	set := &HandlerSet{
		Register: NewRegisterThemeHandler(service, invalidator, logger),
		Discover: NewDiscoverThemesHandler(service, invalidator, logger),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Register); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Discover); err != nil {
			return nil, err
		}
	}
	return set, nil
}
