package worker

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/mail"
	"Admission/internal/pkg/queue"
	"Admission/internal/pkg/util"
	"context"
	"fmt"
	log "log/slog"

	"golang.org/x/sync/errgroup"
)

type MailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// EmailWorker 消费 email 队列，发送咨询确认邮件与招生老师提醒
type EmailWorker struct {
	sender  MailSender
	homeURL string
}

func NewEmailWorker(sender MailSender, homeURL string) *EmailWorker {
	return &EmailWorker{sender: sender, homeURL: homeURL}
}

func (w *EmailWorker) Handle(ctx context.Context, job *queue.Job) error {
	if err := checkJobName(job, consts.JobSendConsultationEmail); err != nil {
		log.ErrorContext(ctx, "Failed to process job", "queue", job.Queue, "name", job.Name, "err", err)
		return err
	}

	var payload dto.ConsultationEmailJob
	if err := job.Decode(&payload); err != nil {
		return err
	}
	if err := util.ValidateDTO(&payload); err != nil {
		log.ErrorContext(ctx, "Failed to process job", "queue", job.Queue, "err", err)
		return fmt.Errorf("invalid email job %s: %w", job.ID, err)
	}

	if err := w.SendConsultationEmails(ctx, &payload); err != nil {
		log.ErrorContext(ctx, "Failed to process job", "queue", job.Queue, "attempt", job.Attempts+1, "err", err)
		return err
	}
	return nil
}

// SendConsultationEmails 学生确认信与每位老师的提醒并发发送，任一失败则整批失败
func (w *EmailWorker) SendConsultationEmails(ctx context.Context, payload *dto.ConsultationEmailJob) error {
	messages := make([]mail.Message, 0, len(payload.AdvisorEmails)+1)

	confirm, err := mail.ConsultationConfirmed(payload.Student, w.homeURL)
	if err != nil {
		return err
	}
	messages = append(messages, confirm)

	for _, email := range payload.AdvisorEmails {
		alert, err := mail.AdvisorAlert(email, payload.Student)
		if err != nil {
			return err
		}
		messages = append(messages, alert)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, msg := range messages {
		g.Go(func() error {
			return w.sender.Send(gCtx, msg)
		})
	}
	return g.Wait()
}
