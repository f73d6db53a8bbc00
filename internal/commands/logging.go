package commands

import (
	"strings"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const commandModuleRoot = "drupier.commands"

// CommandLogger returns a module-scoped logger for command handlers tagged
// with the command module name.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
