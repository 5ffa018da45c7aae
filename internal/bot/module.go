package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrCommandMismatch is returned when a module declares a slash command it
// cannot handle, or handles one it never declares.
var ErrCommandMismatch = errors.New("module commands and handlers do not match")

// InteractionHandler answers one slash command through the Responder.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is passed to discordgo's AddHandler as is, so it must match one
// of discordgo's handler signatures, e.g.
// func(s *discordgo.Session, e *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands every module in Init.
type ModuleDependencies struct {
	// Session is open, so Session.State.User identifies the bot.
	Session *discordgo.Session
	Config  *Config
}

// Module is a feature the bot loads at startup.
type Module interface {
	// Name identifies the module in logs and must be unique.
	Name() string

	// Commands are registered with Discord after Init.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps every name in Commands to its handler.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers are added to the session after Init.
	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error
	Shutdown() error
}

// ConfigurableModule is implemented by modules with their own configuration.
// LoadConfig runs before the Discord session is opened, so a bad environment
// fails startup without connecting.
type ConfigurableModule interface {
	LoadConfig() error
}

// checkCommands verifies that mod handles exactly the commands it declares.
func checkCommands(mod Module) error {
	handlers := mod.CommandHandlers()

	declared := make(map[string]struct{}, len(handlers))
	for _, cmd := range mod.Commands() {
		declared[cmd.Name] = struct{}{}
		if _, ok := handlers[cmd.Name]; !ok {
			return fmt.Errorf("%w: %s declares /%s without a handler",
				ErrCommandMismatch, mod.Name(), cmd.Name)
		}
	}
	for name := range handlers {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("%w: %s handles undeclared /%s",
				ErrCommandMismatch, mod.Name(), name)
		}
	}
	return nil
}
