package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification represents a message to an applicant. Delivery
// happens through external channels, the platform only records the
// dispatch and its outcome.
type Notification struct {
	DefaultModel
	Recipient   Applicant `json:"-"`
	RecipientID uuid.UUID
	Channel     NotificationChannel
	Template    string
	Content     string
	Status      NotificationStatus `gorm:"default:pending"`
	SentAt      *time.Time
}

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelKakao NotificationChannel = "kakao"
	NotificationChannelPush  NotificationChannel = "push"
)

// Valid reports whether the channel is a known delivery channel.
func (c NotificationChannel) Valid() bool {
	switch c {
	case NotificationChannelEmail, NotificationChannelSMS, NotificationChannelKakao, NotificationChannelPush:
		return true
	}

	return false
}

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

var ErrNotificationChannelInvalid = errors.New("the notification channel is not supported")

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	_ = n.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Applicant{}, "id = ?", n.RecipientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no applicant with this ID", ErrResourceNotFound)
		}
		return err
	}

	return nil
}

func (n *Notification) BeforeSave(_ *gorm.DB) error {
	if n.Status == "" {
		n.Status = NotificationStatusPending
	}

	if !n.Channel.Valid() {
		return fmt.Errorf("%w: %s: %s", ErrValidation, ErrNotificationChannelInvalid, n.Channel)
	}

	return nil
}

// Export returns all notifications on this instance for export.
func (Notification) Export() (json.RawMessage, error) {
	var notifications []Notification
	err := DB.Where(&Notification{}).Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&notifications)
}
