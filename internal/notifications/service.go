package notifications

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrNoRecipients = errors.New("no recipients to send to")

// TemplateInput carries the editable template fields.
type TemplateInput struct {
	Name    string `json:"name" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
	Type    string `json:"type" binding:"omitempty,oneof=newsletter notification"`
}

type SubscribeInput struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// Preview is a template rendered for one recipient.
type Preview struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Service struct {
	templates     TemplateRepository
	subscribers   SubscriberRepository
	notifications NotificationRepository
	mailer        Mailer
	concurrency   int
	now           func() time.Time
}

func NewService(t TemplateRepository, s SubscriberRepository, n NotificationRepository, m Mailer, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		templates:     t,
		subscribers:   s,
		notifications: n,
		mailer:        m,
		concurrency:   concurrency,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// NewMemoryService wires in-memory repositories, for dev mode and tests.
func NewMemoryService(m Mailer, concurrency int) *Service {
	return NewService(NewMemoryTemplateRepository(), NewMemorySubscriberRepository(), NewMemoryNotificationRepository(), m, concurrency)
}

func (s *Service) ListTemplates(ctx context.Context) ([]Template, error) {
	return s.templates.List(ctx)
}

func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return s.templates.Get(ctx, id)
}

func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput) (*Template, error) {
	now := s.now()
	t := &Template{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	applyTemplate(t, in)
	if err := response.Validator().Struct(t); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id string, in TemplateInput) (*Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTemplate(t, in)
	t.UpdatedAt = s.now()
	if err := response.Validator().Struct(t); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func applyTemplate(t *Template, in TemplateInput) {
	t.Name = strings.TrimSpace(in.Name)
	t.Subject = strings.TrimSpace(in.Subject)
	t.Body = in.Body
	t.Type = in.Type
	if t.Type == "" {
		t.Type = TypeNotification
	}
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}

// PreviewTemplate renders the template for a sample recipient.
func (s *Service) PreviewTemplate(ctx context.Context, id string, r Recipient) (*Preview, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := RenderMarkdown(t.Body)
	if err != nil {
		return nil, err
	}
	return &Preview{Subject: Personalize(t.Subject, r, false), HTML: Personalize(body, r, true)}, nil
}

// Subscribe adds or reactivates a subscriber. created is false when the
// address was already an active subscriber.
func (s *Service) Subscribe(ctx context.Context, in SubscribeInput) (sub *Subscriber, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.subscribers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Active {
			return existing, false, nil
		}
		existing.Active = true
		existing.SubscribedAt = s.now()
		if in.Name != "" {
			existing.Name = strings.TrimSpace(in.Name)
		}
		if err := s.subscribers.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}
	sub = &Subscriber{ID: uuid.NewString(), Email: email, Name: strings.TrimSpace(in.Name), Active: true, SubscribedAt: s.now()}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// lost a race with a concurrent subscribe
			existing, gerr := s.subscribers.GetByEmail(ctx, email)
			if gerr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return sub, true, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	sub, err := s.subscribers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if !sub.Active {
		return nil
	}
	sub.Active = false
	return s.subscribers.Update(ctx, sub)
}

func (s *Service) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	return s.subscribers.List(ctx, false)
}

func (s *Service) DeleteSubscriber(ctx context.Context, id string) error {
	return s.subscribers.Delete(ctx, id)
}

func (s *Service) ListNotifications(ctx context.Context) ([]Notification, error) {
	return s.notifications.List(ctx)
}

// Send mails the template to recipients, or to every active subscriber when
// none are given. Individual failures are counted and do not stop the batch.
func (s *Service) Send(ctx context.Context, templateID string, recipients []Recipient, sentBy string) (*Notification, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		subs, err := s.subscribers.List(ctx, true)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			recipients = append(recipients, Recipient{Email: sub.Email, Name: sub.Name})
		}
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	// every entry is checked before duplicates collapse, so a blank email
	// rejects the request
	normalized := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
		if err := response.Validator().Struct(r); err != nil {
			return nil, err
		}
		normalized = append(normalized, r)
	}
	recipients = dedupe(normalized)
	body, err := RenderMarkdown(t.Body)
	if err != nil {
		return nil, err
	}

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, r := range recipients {
		g.Go(func() error {
			msg := Message{To: r.Email, Subject: Personalize(t.Subject, r, false), HTML: Personalize(body, r, true)}
			if err := s.mailer.Send(gctx, msg); err != nil {
				failed.Add(1)
				metrics.EmailsSent.WithLabelValues("failed").Inc()
				logger.Warnf("send %q to %s: %v", t.Name, r.Email, err)
				return nil
			}
			sent.Add(1)
			metrics.EmailsSent.WithLabelValues("sent").Inc()
			return nil
		})
	}
	_ = g.Wait()

	n := &Notification{
		ID:         uuid.NewString(),
		TemplateID: t.ID,
		Subject:    t.Subject,
		Recipients: len(recipients),
		Sent:       int(sent.Load()),
		Failed:     int(failed.Load()),
		SentBy:     sentBy,
		CreatedAt:  s.now(),
	}
	switch {
	case n.Failed == 0:
		n.Status = StatusSent
	case n.Sent == 0:
		n.Status = StatusFailed
	default:
		n.Status = StatusPartial
	}
	// record even when the request was canceled mid-batch
	if err := s.notifications.Create(context.WithoutCancel(ctx), n); err != nil {
		return nil, err
	}
	logger.Infof("template %q sent: %d ok, %d failed", t.Name, n.Sent, n.Failed)
	return n, nil
}

func dedupe(rs []Recipient) []Recipient {
	seen := make(map[string]bool, len(rs))
	out := make([]Recipient, 0, len(rs))
	for _, r := range rs {
		if seen[r.Email] {
			continue
		}
		seen[r.Email] = true
		out = append(out, r)
	}
	return out
}
