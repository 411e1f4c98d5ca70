package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/2beens/gymcoach/internal/gym/program"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid input")
)

type RegisterParams struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Gender   program.Gender `json:"gender"`
	Goal     program.Goal   `json:"goal"`
	Level    program.Level  `json:"level"`
}

func (p RegisterParams) validate() error {
	switch {
	case strings.TrimSpace(p.Username) == "":
		return fmt.Errorf("%w: username empty", ErrInvalidInput)
	case p.Password == "":
		return fmt.Errorf("%w: password empty", ErrInvalidInput)
	case !p.Gender.IsValid():
		return fmt.Errorf("%w: gender [%s]", ErrInvalidInput, p.Gender)
	case !p.Goal.IsValid():
		return fmt.Errorf("%w: goal [%s]", ErrInvalidInput, p.Goal)
	case !p.Level.IsValid():
		return fmt.Errorf("%w: level [%s]", ErrInvalidInput, p.Level)
	}
	return nil
}

type Service struct {
	store   storage.Store
	metrics *metrics.Manager

	// injectable for tests, bcrypt is slow on purpose
	HashPasswordFunc func(password string) (string, error)
	NowFunc          func() time.Time
}

func NewService(store storage.Store, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:            store,
		metrics:          metricsManager,
		HashPasswordFunc: pkg.HashPassword,
		NowFunc:          time.Now,
	}
}

// Register creates the user with a freshly generated program and seed weights.
// An existing username is never overwritten.
func (s *Service) Register(ctx context.Context, params RegisterParams) (_ *storage.UserRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", params.Username))

	if err := params.validate(); err != nil {
		return nil, err
	}

	db := s.store.Load(ctx)
	if _, exists := db[params.Username]; exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.HashPasswordFunc(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := program.Generate(params.Gender, params.Goal, params.Level)
	record := &storage.UserRecord{
		Password: passwordHash,
		Profile: storage.Profile{
			Gender: string(params.Gender),
			Goal:   string(params.Goal),
			Level:  string(params.Level),
			Joined: s.NowFunc().Format(storage.DateLayout),
		},
		Program: p,
		Weights: program.SeedWeights(p, params.Gender),
		History: []storage.SessionLog{},
	}
	db[params.Username] = record

	if err := s.store.Save(ctx, db); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterRegistrations.Inc()
	}
	log.Debugf("user registered: %s [%s, %s, %s]", params.Username, params.Gender, params.Goal, params.Level)

	return record, nil
}

// Authenticate checks the credentials. Unknown users and wrong passwords
// are reported the same way. Plaintext passwords written by older clients
// still match.
func (s *Service) Authenticate(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.authenticate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.countLogin(err)
	}()

	if username == "" || password == "" {
		return ErrInvalidCredentials
	}

	record, err := s.store.Load(ctx).Get(username)
	if err != nil {
		return ErrInvalidCredentials
	}

	if pkg.IsPasswordHash(record.Password) {
		if !pkg.CheckPasswordHash(password, record.Password) {
			return ErrInvalidCredentials
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(record.Password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) Get(ctx context.Context, username string) (*storage.UserRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.get")
	defer span.End()
	return s.store.Load(ctx).Get(username)
}

type ProfileUpdate struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

func (s *Service) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (_ *storage.UserRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if update.Weight < 0 || update.Height < 0 || math.IsNaN(update.Weight) || math.IsNaN(update.Height) {
		return nil, fmt.Errorf("%w: weight and height must not be negative", ErrInvalidInput)
	}

	db := s.store.Load(ctx)
	record, err := db.Get(username)
	if err != nil {
		return nil, err
	}

	record.Profile.Weight = update.Weight
	record.Profile.Height = update.Height
	if err := s.store.Save(ctx, db); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) countLogin(err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	s.metrics.CounterLogins.WithLabelValues(result).Inc()
}
