// internal/app/gcal/syncer.go

// Package gcal mirrors upcoming events of a user's joined organizations into
// the user's Google Calendar. Each platform event maps to at most one
// calendar event per user; the mapping is recorded on the event row so a
// sweep never inserts duplicates.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	caltokenstore "github.com/dalemusser/campushub/internal/app/store/caltokens"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNotConnected is returned when the user has no stored calendar grant.
var ErrNotConnected = errors.New("google calendar is not connected")

type Syncer struct {
	tokens *caltokenstore.Store
	joined *joinedorgstore.Store
	events *eventstore.Store
	oauth  *oauth2.Config
	log    *zap.Logger
}

func NewSyncer(tokens *caltokenstore.Store, joined *joinedorgstore.Store, events *eventstore.Store, oauth *oauth2.Config, logger *zap.Logger) *Syncer {
	return &Syncer{tokens: tokens, joined: joined, events: events, oauth: oauth, log: logger}
}

// persistingSource wraps the oauth2 refresh flow and writes refreshed tokens
// back to the store, so the stored row always holds a usable credential.
type persistingSource struct {
	ctx    context.Context
	userID primitive.ObjectID
	tokens *caltokenstore.Store
	src    oauth2.TokenSource
	last   string
	log    *zap.Logger
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := p.tokens.UpdateToken(p.ctx, p.userID, tok); err != nil {
			p.log.Warn("gcal: persist refreshed token", zap.Error(err))
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

func (s *Syncer) service(ctx context.Context, userID primitive.ObjectID) (*calendar.Service, error) {
	rec, err := s.tokens.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotConnected
	}
	tok := &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Expiry:       rec.Expiry,
	}
	src := &persistingSource{
		ctx:    ctx,
		userID: userID,
		tokens: s.tokens,
		src:    s.oauth.TokenSource(ctx, tok),
		last:   tok.AccessToken,
		log:    s.log,
	}
	return calendar.NewService(ctx, option.WithTokenSource(src))
}

// SyncUser pushes upcoming events of the user's joined organizations to the
// user's primary calendar, skipping events already mirrored. Returns the
// number of calendar events created.
func (s *Syncer) SyncUser(ctx context.Context, userID primitive.ObjectID) (int, error) {
	svc, err := s.service(ctx, userID)
	if err != nil {
		return 0, err
	}

	memberships, err := s.joined.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(memberships) == 0 {
		return 0, nil
	}
	orgIDs := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrganizationID)
	}

	upcoming, err := s.events.ListUpcomingByOrgs(ctx, orgIDs, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	uid := userID.Hex()
	synced := 0
	for _, ev := range upcoming {
		if _, done := ev.GoogleEventIDs[uid]; done {
			continue
		}
		created, err := svc.Events.Insert("primary", &calendar.Event{
			Summary:     ev.Title,
			Description: ev.Description,
			Location:    ev.Location,
			Start:       &calendar.EventDateTime{DateTime: ev.StartsAt.Format(time.RFC3339)},
			End:         &calendar.EventDateTime{DateTime: ev.EndsAt.Format(time.RFC3339)},
		}).Context(ctx).Do()
		if err != nil {
			return synced, fmt.Errorf("insert calendar event: %w", err)
		}
		if err := s.events.SetGoogleEventID(ctx, ev.ID, userID, created.Id); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

// SyncAll sweeps every stored grant. One user's failure never blocks the
// rest; failures are logged and the sweep continues.
func (s *Syncer) SyncAll(ctx context.Context) {
	toks, err := s.tokens.All(ctx)
	if err != nil {
		s.log.Error("gcal: list calendar grants", zap.Error(err))
		return
	}
	for _, tok := range toks {
		if ctx.Err() != nil {
			return
		}
		n, err := s.SyncUser(ctx, tok.UserID)
		if err != nil {
			s.log.Warn("gcal: sync user",
				zap.String("user_id", tok.UserID.Hex()),
				zap.Error(err))
			continue
		}
		if n > 0 {
			s.log.Info("gcal: synced events",
				zap.String("user_id", tok.UserID.Hex()),
				zap.Int("created", n))
		}
	}
}
