package engine

import (
	"context"
	"log/slog"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

const (
	MaxCharge = 100
	// BloomThreshold is the charge needed to start a bloom.
	BloomThreshold = 60
	// DefaultStickerDropRate is the chance a completed bloom grants a sticker.
	DefaultStickerDropRate = 0.15
	// MaxTextLength bounds notes, reflections and support messages (in characters).
	MaxTextLength = 280
)

// Service runs the reward and progression rules against a store. It holds no
// game state between calls.
type Service struct {
	store           storage.Store
	clock           Clock
	rng             Rand
	log             *slog.Logger
	stickerDropRate float64
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithRand(r Rand) Option {
	return func(s *Service) { s.rng = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStickerDropRate overrides the bloom sticker chance (0..1).
func WithStickerDropRate(p float64) Option {
	return func(s *Service) { s.stickerDropRate = p }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		clock:           RealClock{},
		rng:             globalRand{},
		log:             slog.New(slog.DiscardHandler),
		stickerDropRate: DefaultStickerDropRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() storage.Store { return s.store }

// Today is the current civil date according to the service clock.
func (s *Service) Today() string {
	return LocalDate(s.clock.Now())
}

// resolveDate defaults an empty date to today and validates the rest.
func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	t, err := ParseDate(date)
	if err != nil {
		return "", ValidationError{Field: "date", Reason: err.Error()}
	}
	return t.Format(DateLayout), nil
}

func requireCompanion(ctx context.Context, r storage.Repos) (*storage.Companion, error) {
	c, err := r.Companion.GetCompanion(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFoundError{Entity: "companion"}
	}
	return c, nil
}

func checkText(field string, text *string, required bool) error {
	if text == nil || *text == "" {
		if required {
			return ValidationError{Field: field, Reason: "must not be empty"}
		}
		return nil
	}
	if n := len([]rune(*text)); n > MaxTextLength {
		return ValidationError{Field: field, Reason: "longer than 280 characters"}
	}
	return nil
}
