package themes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// Service exposes theme registration and path lookup.
type Service interface {
	// RegisterTheme stores a new theme. Registering a known theme again from
	// the same directory with a different version upgrades the record.
	RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error)
	GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetThemeByName(ctx context.Context, name string) (*Theme, error)
	ListThemes(ctx context.Context) ([]*Theme, error)
	ThemePath(ctx context.Context, name string) (string, error)
	Discover(ctx context.Context, baseDir string) ([]*Theme, error)
}

var (
	ErrThemeRepositoryRequired = errors.New("themes: theme repository required")

	ErrThemeNameRequired    = errors.New("themes: name required")
	ErrThemeVersionRequired = errors.New("themes: version required")
	ErrThemePathRequired    = errors.New("themes: theme path required")
	ErrThemeInvalid         = errors.New("themes: invalid theme")
	ErrThemeExists          = errors.New("themes: theme already exists")
	ErrThemeNotFound        = errors.New("themes: theme not found")
)

var themeNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithThemeIDGenerator overrides the default ID generator.
func WithThemeIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBasePath lets ThemePath fall back to <base>/<name> for themes that
// were never registered but are present on disk.
func WithBasePath(base string) ServiceOption {
	return func(s *service) {
		s.basePath = strings.TrimSpace(base)
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Or(logger)
	}
}

type service struct {
	themes   ThemeRepository
	id       IDGenerator
	now      func() time.Time
	basePath string
	logger   interfaces.Logger
}

var _ interfaces.ThemePathResolver = (*service)(nil)

// NewService constructs a theme service instance.
func NewService(themeRepo ThemeRepository, opts ...ServiceOption) Service {
	if themeRepo == nil {
		panic(ErrThemeRepositoryRequired)
	}

	s := &service{
		themes: themeRepo,
		id:     uuid.New,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Version = strings.TrimSpace(input.Version)
	input.ThemePath = strings.TrimSpace(input.ThemePath)
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	themePath := filepath.Clean(input.ThemePath)
	now := s.now().UTC()

	existing, err := s.themes.FindByName(ctx, input.Name)
	switch {
	case err == nil:
		// The same directory shipping a new version is an upgrade; anything
		// else is a name clash.
		if existing.ThemePath != themePath || existing.Version == input.Version {
			return nil, ErrThemeExists
		}
		return s.upgrade(ctx, existing, input, now)
	case !errors.Is(err, ErrThemeNotFound):
		return nil, err
	}

	created, err := s.themes.Insert(ctx, &Theme{
		ID:          s.id(),
		Name:        input.Name,
		Description: cloneString(input.Description),
		Version:     input.Version,
		Author:      cloneString(input.Author),
		ThemePath:   themePath,
		Metadata:    cloneMetadata(input.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("themes.registered",
		"theme", created.Name,
		"version", created.Version,
		"theme_path", created.ThemePath,
	)
	return cloneTheme(created), nil
}

func (s *service) upgrade(ctx context.Context, existing *Theme, input RegisterThemeInput, now time.Time) (*Theme, error) {
	previous := existing.Version

	next := cloneTheme(existing)
	next.Version = input.Version
	next.Description = cloneString(input.Description)
	next.Author = cloneString(input.Author)
	next.Metadata = cloneMetadata(input.Metadata)
	next.UpdatedAt = now

	updated, err := s.themes.Replace(ctx, next)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("themes.upgraded",
		"theme", updated.Name,
		"from_version", previous,
		"version", updated.Version,
	)
	return cloneTheme(updated), nil
}

func (s *service) GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error) {
	if id == uuid.Nil {
		return nil, ErrThemeNotFound
	}
	theme, err := s.themes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneTheme(theme), nil
}

// GetThemeByName returns *NotFoundError (which matches ErrThemeNotFound)
// when the theme is not registered.
func (s *service) GetThemeByName(ctx context.Context, name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &NotFoundError{}
	}
	theme, err := s.themes.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return cloneTheme(theme), nil
}

func (s *service) ListThemes(ctx context.Context) ([]*Theme, error) {
	records, err := s.themes.All(ctx)
	if err != nil {
		return nil, err
	}
	return cloneThemeSlice(records), nil
}

// ThemePath resolves the installation directory of name.
func (s *service) ThemePath(ctx context.Context, name string) (string, error) {
	theme, err := s.GetThemeByName(ctx, name)
	if err == nil {
		return theme.ThemePath, nil
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || s.basePath == "" || strings.TrimSpace(name) == "" {
		return "", err
	}

	candidate := filepath.Join(s.basePath, strings.TrimSpace(name))
	if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
		s.logger.WithContext(ctx).Debug("themes.path.base_fallback", "theme", name, "theme_path", candidate)
		return candidate, nil
	}
	return "", err
}

func validateRegisterInput(input RegisterThemeInput) error {
	switch {
	case input.Name == "":
		return ErrThemeNameRequired
	case input.Version == "":
		return ErrThemeVersionRequired
	case input.ThemePath == "":
		return ErrThemePathRequired
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.Length(1, 128), validation.Match(themeNamePattern)),
		validation.Field(&input.Version, validation.Length(1, 64)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrThemeInvalid, err)
	}
	return nil
}
