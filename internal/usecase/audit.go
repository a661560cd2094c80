package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// AuditPublisher интерфейс для публикации аудита (RabbitMQ)
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// NoopPublisher используется, когда RabbitMQ не настроен
type NoopPublisher struct{}

func (NoopPublisher) PublishAuditMessage(context.Context, *entity.AuditMessage) error {
	return nil
}

// auditor отправляет сообщения асинхронно, после commit транзакции.
// Ошибка отправки не влияет на результат операции.
type auditor struct {
	publisher AuditPublisher
	clock     Clock
	log       logrus.FieldLogger
	wg        sync.WaitGroup
}

func newAuditor(publisher AuditPublisher, clock Clock, log logrus.FieldLogger) *auditor {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &auditor{publisher: publisher, clock: clock, log: log}
}

func (a *auditor) send(action entity.ActionType, entityType entity.EntityType, id int64, oldValues, newValues map[string]any) {
	msg := &entity.AuditMessage{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		OldValues:  oldValues,
		NewValues:  newValues,
		Timestamp:  a.clock.Now(),
	}
	if action == entity.ActionUpdate {
		msg.Changes = diff(oldValues, newValues)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		log := a.log.WithFields(logrus.Fields{
			"action":      action,
			"entity_type": entityType,
			"entity_id":   id,
		})
		if err := a.publisher.PublishAuditMessage(ctx, msg); err != nil {
			log.WithError(err).Warn("audit publish failed")
			auditPublished.WithLabelValues("error").Inc()
			return
		}
		auditPublished.WithLabelValues("ok").Inc()
		log.Debug("audit published")
	}()
}

// wait дожидается отправки всех сообщений
func (a *auditor) wait() {
	a.wg.Wait()
}

func diff(oldValues, newValues map[string]any) map[string]any {
	changes := make(map[string]any)
	for k, nv := range newValues {
		if ov := oldValues[k]; ov != nv {
			changes[k] = map[string]any{"old": ov, "new": nv}
		}
	}
	return changes
}

func personValues(p *entity.Person) map[string]any {
	return map[string]any{
		"last_name":   p.LastName,
		"first_name":  p.FirstName,
		"national_id": p.NationalID,
	}
}

func taskValues(t *entity.Task) map[string]any {
	values := map[string]any{
		"description": t.Description,
		"created_at":  t.CreatedAt.UTC().Format(time.RFC3339),
		"done":        t.Done,
		"due_date":    nil,
		"person_id":   nil,
	}
	if t.DueDate != nil {
		values["due_date"] = t.DueDate.Format(time.DateOnly)
	}
	if t.Person != nil {
		values["person_id"] = t.Person.ID
	}
	return values
}
