package models_test

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voucherhub/backend/internal/models"
)

func (suite *TestSuiteStandard) createTestAuditLog(log models.AuditLog) models.AuditLog {
	err := models.DB.Create(&log).Error
	if err != nil {
		suite.Assert().FailNow("AuditLog could not be saved", "Error: %s, AuditLog: %#v", err, log)
	}

	return log
}

func (suite *TestSuiteStandard) TestAuditLogDefaults() {
	log := suite.createTestAuditLog(models.AuditLog{
		ActorID:    uuid.New(),
		Action:     "issue_voucher",
		TargetType: "voucher",
		TargetID:   uuid.New(),
	})

	assert.NotEqual(suite.T(), uuid.Nil, log.ID)
	assert.False(suite.T(), log.Timestamp.IsZero())
}

func (suite *TestSuiteStandard) TestAuditLogImmutable() {
	log := suite.createTestAuditLog(models.AuditLog{
		ActorID:    uuid.New(),
		Action:     "issue_voucher",
		TargetType: "voucher",
		TargetID:   uuid.New(),
	})

	err := models.DB.Model(&log).Select("Action").Updates(models.AuditLog{Action: "tampered"}).Error
	assert.ErrorIs(suite.T(), err, models.ErrAuditLogImmutable)

	err = models.DB.Delete(&log).Error
	assert.ErrorIs(suite.T(), err, models.ErrAuditLogImmutable)

	// The record is untouched
	var stored models.AuditLog
	err = models.DB.First(&stored, "id = ?", log.ID).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), "issue_voucher", stored.Action)
}
