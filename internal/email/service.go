package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"fitclass/internal/logger"
	"fitclass/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
	retryDelay     = 5 * time.Second
)

// Email types, also used as metric labels.
const (
	TypeSeatConfirmed = "seat_confirmed"
	TypeWaitlisted    = "waitlisted"
	TypeDemoted       = "demoted"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

type Service struct {
	redis *redis.Client
	cfg   Config
	send  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config, redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}), cfg)
}

func NewWithClient(client *redis.Client, cfg Config) *Service {
	return &Service{
		redis: client,
		cfg:   cfg,
		send:  smtp.SendMail,
	}
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to queue email to %s: %w", job.To, err)
	}
	return nil
}

func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	if err := s.enqueue(ctx, job); err != nil {
		logger.Error("email not queued", "type", emailType, "to", to, "error", err)
		metrics.RecordEmail(emailType, "queue_failed")
		return err
	}

	logger.Info("email queued", "type", emailType, "to", to)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email job", "error", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Warn("email send failed", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			if err := s.enqueue(context.WithoutCancel(ctx), job); err != nil {
				logger.Error("email requeue failed", "to", job.To, "error", err)
			}
			return
		}

		metrics.RecordEmail(job.Type, "failed")
		s.saveFailed(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Info("email sent", "type", job.Type, "to", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return s.send(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(ctx context.Context, job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedQueueKey, string(data))
	logger.Error("email moved to failed queue", "to", job.To, "tries", job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

// Ping checks the queue backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

const whenLayout = "Jan 2, 2006 at 3:04 PM"

func (s *Service) SendSeatConfirmed(ctx context.Context, to, name, className string, when time.Time) error {
	subject := "Seat confirmed - " + className
	body := fmt.Sprintf(`Hi %s,

You have a seat in %s on %s.

See you at the gym!

- %s`, name, className, when.Format(whenLayout), s.cfg.FromName)

	return s.Send(ctx, TypeSeatConfirmed, to, name, subject, body)
}

func (s *Service) SendWaitlisted(ctx context.Context, to, name, className string, when time.Time) error {
	subject := "Waitlisted - " + className
	body := fmt.Sprintf(`Hi %s,

%s on %s is full, so you are on the waitlist.
We will e-mail you as soon as a seat frees up.

- %s`, name, className, when.Format(whenLayout), s.cfg.FromName)

	return s.Send(ctx, TypeWaitlisted, to, name, subject, body)
}

func (s *Service) SendDemoted(ctx context.Context, to, name, className string, when time.Time) error {
	subject := "Moved to the waitlist - " + className
	body := fmt.Sprintf(`Hi %s,

The capacity of %s on %s was reduced and your seat moved back to the waitlist.
You keep your place in the queue and will be notified if a seat frees up.

- %s`, name, className, when.Format(whenLayout), s.cfg.FromName)

	return s.Send(ctx, TypeDemoted, to, name, subject, body)
}
