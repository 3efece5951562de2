package model

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartwallet-core/pkg/crypto_util"
)

var ErrEmptyOutboxPayload = errors.New("outbox payload must not be empty")

// CreateOutboxMessage writes an outbox row inside the caller's DB
// transaction. The dedup key is derived from topic and payload so that a
// replayed write is a no-op instead of a duplicate event.
func CreateOutboxMessage(tx *gorm.DB, topic string, key string, payload interface{}) error {
	if payload == nil {
		return ErrEmptyOutboxPayload
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := OutboxMessage{
		Topic:    topic,
		Key:      key,
		DedupKey: crypto_util.CalculateBlake3(append([]byte(topic+"|"), body...)),
		Payload:  body,
		Status:   "PENDING",
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(&msg).Error
}
