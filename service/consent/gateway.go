// Package consent serves the public terms page a pending client opens from the shared link
// and activates the membership when the terms are accepted.
package consent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/metrics"
	"github.com/KAsare1/Gymhub-server/service/notifications"
	"go.uber.org/zap"
)

const (
	defaultGymName = "Fitness Center"
	pollInterval   = 200 * time.Millisecond
)

type Store interface {
	FindClientByID(ctx context.Context, id string) (*models.Client, error)
	FindUser(ctx context.Context, id string) (*models.User, error)
	AcceptTerms(ctx context.Context, id string, at time.Time) (bool, error)
	AdmissionReceipt(ctx context.Context, clientID string) (*models.Receipt, error)
}

type Issuer interface {
	IssueBestEffort(ctx context.Context, rcpt *models.Receipt) *string
}

type Notifier interface {
	ReceiptIssued(ctx context.Context, notice notification.ReceiptNotice)
	ConsentAccepted(ctx context.Context, client *models.Client)
}

// Context is what the terms page needs to render.
type Context struct {
	GymName       string   `json:"gymName"`
	ClientName    string   `json:"clientName"`
	TermsAccepted bool     `json:"termsAccepted"`
	TermsText     []string `json:"termsText"`
}

// Acceptance is the outcome of accepting the terms. The membership is active regardless of
// the receipt: ReceiptURL is nil with Pending unset when the PDF could not be produced, and
// nil with Pending set when another request is still producing it.
type Acceptance struct {
	ReceiptURL *string
	Replayed   bool
	Pending    bool
}

type Gateway struct {
	store      Store
	issuer     Issuer
	notifier   Notifier
	replayWait time.Duration
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// NewGateway builds a gateway. replayWait bounds how long a repeated acceptance waits for
// the receipt PDF another request is producing.
func NewGateway(store Store, issuer Issuer, notifier Notifier, replayWait time.Duration, logger *zap.Logger) *Gateway {
	return &Gateway{
		store:      store,
		issuer:     issuer,
		notifier:   notifier,
		replayWait: replayWait,
		now:        time.Now,
		logger:     logger.With(zap.String("component", "consent-gateway")),
		inflight:   make(map[string]chan struct{}),
	}
}

func TermsText(gymName string) []string {
	return []string{
		"1. Health & Safety: I confirm that I am physically fit to engage in exercise. I understand that the gym is not responsible for any injuries sustained due to lifting heavy weights without supervision.",
		"2. Equipment Use: I agree to use equipment properly and return weights to their racks after use.",
		"3. Conduct: I will maintain respectful behavior towards staff and other members.",
		fmt.Sprintf("4. Liability Waiver: I hereby waive %s from any liability for injuries or accidents occurring on the premises.", gymName),
		"5. Membership: Membership fees are non-refundable.",
	}
}

func (g *Gateway) GetConsentContext(ctx context.Context, clientID string) (*Context, error) {
	c, err := g.store.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	gymName := defaultGymName
	if owner, err := g.store.FindUser(ctx, c.OwnerID); err == nil && owner.GymName != nil && *owner.GymName != "" {
		gymName = *owner.GymName
	}
	return &Context{
		GymName:       gymName,
		ClientName:    c.Name,
		TermsAccepted: c.TermsAccepted,
		TermsText:     TermsText(gymName),
	}, nil
}

// AcceptConsent activates a pending client and produces the admission receipt PDF.
//
// The terms flag is flipped with a conditional update before the pipeline runs, so only
// one caller ever renders and uploads. Every other caller gets the admission receipt's URL
// back, waiting up to replayWait while the first caller is still producing it. A pipeline
// failure leaves the client active and yields a nil URL.
func (g *Gateway) AcceptConsent(ctx context.Context, clientID string) (*Acceptance, error) {
	c, err := g.store.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	log := g.logger.With(zap.String("client_id", c.ID), zap.String("tenant_id", c.OwnerID))

	if c.TermsAccepted {
		var since time.Time
		if c.TermsAcceptedAt != nil {
			since = *c.TermsAcceptedAt
		}
		return g.replay(ctx, c.ID, since)
	}

	release, leader := g.claim(c.ID)
	if !leader {
		return g.replay(ctx, c.ID, g.now())
	}
	defer release()

	now := g.now()
	flipped, err := g.store.AcceptTerms(ctx, c.ID, now)
	if err != nil {
		return nil, err
	}
	if !flipped {
		log.Info("consent already recorded by a concurrent request")
		release()
		return g.replay(ctx, c.ID, now)
	}
	metrics.ConsentsAccepted.Inc()
	c.TermsAccepted = true
	c.TermsAcceptedAt = &now
	c.IsActive = 1

	rcpt, err := g.store.AdmissionReceipt(ctx, c.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			log.Error("admission receipt missing for accepted client")
			return nil, fmt.Errorf("client %s: %w", c.ID, utils.ErrReceiptMissing)
		}
		return nil, err
	}

	url := g.issuer.IssueBestEffort(ctx, rcpt)
	if url != nil {
		g.notifier.ReceiptIssued(ctx, notification.NewReceiptNotice(c, g.gymName(ctx, c.OwnerID), *url))
	}
	g.notifier.ConsentAccepted(ctx, c)

	log.Info("consent accepted", zap.String("receipt_id", rcpt.ID), zap.Bool("artifact", url != nil))
	return &Acceptance{ReceiptURL: url}, nil
}

// claim marks clientID as being accepted by this process. The second result is false when
// another request already holds the claim. release is safe to call more than once.
func (g *Gateway) claim(clientID string) (release func(), leader bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[clientID]; ok {
		return func() {}, false
	}
	done := make(chan struct{})
	g.inflight[clientID] = done

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, clientID)
			g.mu.Unlock()
			close(done)
		})
	}, true
}

func (g *Gateway) inflightFor(clientID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight[clientID]
}

// replay answers a repeated acceptance with the admission receipt. While the URL is still
// null it waits for the request producing it: on the in-process claim when there is one,
// otherwise by polling the store until replayWait has passed since the terms were accepted.
func (g *Gateway) replay(ctx context.Context, clientID string, since time.Time) (*Acceptance, error) {
	rcpt, err := g.store.AdmissionReceipt(ctx, clientID)
	if errors.Is(err, utils.ErrNotFound) {
		return &Acceptance{Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if rcpt.ReceiptURL != nil {
		return &Acceptance{ReceiptURL: rcpt.ReceiptURL, Replayed: true}, nil
	}

	pending := &Acceptance{Replayed: true, Pending: true}
	if done := g.inflightFor(clientID); done != nil {
		timer := time.NewTimer(g.replayWait)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			return pending, nil
		case <-ctx.Done():
			return pending, nil
		}
		return g.current(ctx, clientID)
	}

	remaining := since.Add(g.replayWait).Sub(g.now())
	if remaining <= 0 {
		return &Acceptance{Replayed: true}, nil
	}
	deadline := time.NewTimer(remaining)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			result, err := g.current(ctx, clientID)
			if err != nil || result.ReceiptURL != nil {
				return result, err
			}
		case <-deadline.C:
			return g.current(ctx, clientID)
		case <-ctx.Done():
			return pending, nil
		}
	}
}

func (g *Gateway) current(ctx context.Context, clientID string) (*Acceptance, error) {
	rcpt, err := g.store.AdmissionReceipt(ctx, clientID)
	if errors.Is(err, utils.ErrNotFound) {
		return &Acceptance{Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Acceptance{ReceiptURL: rcpt.ReceiptURL, Replayed: true}, nil
}

// gymName is the name a client sees in messages: gym name, then owner name, then "Gym Hub".
func (g *Gateway) gymName(ctx context.Context, ownerID string) string {
	owner, err := g.store.FindUser(ctx, ownerID)
	if err != nil {
		return "Gym Hub"
	}
	if owner.GymName != nil && *owner.GymName != "" {
		return *owner.GymName
	}
	if owner.Name != "" {
		return owner.Name
	}
	return "Gym Hub"
}
