package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/St1cky1/roster/internal/entity"
	"github.com/St1cky1/roster/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	consumerTag    = "audit_worker"
	reconnectDelay = 5 * time.Second
)

// Consumer - источник сообщений (client.RabbitMQClient)
type Consumer interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, func() error, error)
}

// AuditWorker читает очередь аудита и сохраняет записи в entity_audit
type AuditWorker struct {
	consumer   Consumer
	tx         repository.TxManager
	auditRepo  repository.IAuditRepository
	log        logrus.FieldLogger
	retryDelay time.Duration
}

func NewAuditWorker(consumer Consumer, tx repository.TxManager, auditRepo repository.IAuditRepository, log logrus.FieldLogger) *AuditWorker {
	return &AuditWorker{
		consumer:   consumer,
		tx:         tx,
		auditRepo:  auditRepo,
		log:        log.WithField("component", "audit_worker"),
		retryDelay: reconnectDelay,
	}
}

// Start блокирует до отмены ctx, переподключаясь при обрыве канала
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info("audit worker started")
	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			w.log.Info("audit worker stopped")
			return
		}
		w.log.WithError(err).Warnf("audit worker reconnecting in %s", w.retryDelay)

		select {
		case <-ctx.Done():
			w.log.Info("audit worker stopped")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	msgs, closeFn, err := w.consumer.Consume(consumerTag)
	if err != nil {
		return err
	}
	defer closeFn()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	log := w.log.WithField("message_id", msg.MessageId)

	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		log.WithError(err).Error("malformed audit message dropped")
		_ = msg.Nack(false, false) // Не возвращаем в очередь
		return
	}

	// 2. Конвертируем в Audit
	audit, err := convertToAudit(&auditMsg)
	if err != nil {
		log.WithError(err).Error("audit message conversion failed")
		_ = msg.Nack(false, false)
		return
	}
	if audit.MessageID == "" {
		audit.MessageID = msg.MessageId
	}

	// 3. Сохраняем в БД
	err = w.tx.WithinTx(ctx, func(ctx context.Context, q repository.DBTX) error {
		return w.auditRepo.Create(ctx, q, audit)
	})
	if err != nil {
		log.WithError(err).Error("audit save failed, requeue")
		_ = msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 4. Подтверждаем обработку
	_ = msg.Ack(false)
	log.WithFields(logrus.Fields{
		"action":      audit.Action,
		"entity_type": audit.EntityType,
		"entity_id":   audit.EntityID,
	}).Debug("audit saved")
}

func convertToAudit(msg *entity.AuditMessage) (*entity.Audit, error) {
	oldValues, err := marshalOptional(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := marshalOptional(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := marshalOptional(msg.Changes)
	if err != nil {
		return nil, err
	}

	return &entity.Audit{
		MessageID:  msg.ID,
		Action:     msg.Action,
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  msg.Timestamp,
	}, nil
}

// Конвертируем map[string]any в JSON строку, nil остается nil
func marshalOptional(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
