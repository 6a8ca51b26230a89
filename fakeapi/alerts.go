package fakeapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/the-monkeys/fraud_support/constants"
)

func (s *Server) registerAlertRoutes(routes *gin.RouterGroup) {
	routes.POST("/trigger", s.triggerAlerts)
	routes.POST("/golden-hour", s.goldenHourAlert)
	routes.POST("/bank-freeze", s.bankFreezeAlert)
	routes.GET("/:id/status", s.alertStatus)
}

// channelsFor lists the alert channels that apply to a complaint, in firing order.
func (s *Server) channelsFor(cmp complaint) []string {
	now := s.now()
	var channels []string
	if !cmp.TransactionDate.IsZero() && now.Sub(cmp.TransactionDate) <= goldenHour {
		channels = append(channels, constants.AlertGoldenHour)
	}
	if cmp.AmountLost >= highAmount {
		channels = append(channels, constants.AlertHighAmount)
	}
	if cmp.AccusedAccount != "" {
		channels = append(channels, constants.AlertBankFreeze)
	}
	channels = append(channels, constants.AlertI4CSync, constants.AlertPoliceStation, constants.AlertDistrictCyberCell)
	if s.patternDetected(cmp) {
		channels = append(channels, constants.AlertPattern)
	}
	return channels
}

// patternDetected reports whether at least two other recent complaints name the same
// accused account.
func (s *Server) patternDetected(cmp complaint) bool {
	if cmp.AccusedAccount == "" {
		return false
	}
	since := s.now().Add(-patternWindow)
	similar := s.store.filterComplaints(func(other *complaint) bool {
		return other.ID != cmp.ID && other.AccusedAccount == cmp.AccusedAccount && !other.CreatedAt.Before(since)
	})
	return len(similar) >= patternMinCases
}

// fire sends one channel and applies its side effects when it succeeds.
func (s *Server) fire(cmp complaint, channel string) bool {
	if !s.deliver(channel) {
		s.log.Warnw("alert channel failed", "complaint_id", cmp.ComplaintID, "alert_type", channel)
		return false
	}

	var entry *activity
	switch channel {
	case constants.AlertGoldenHour:
		entry = &activity{ActionType: constants.ActionBankNotified, Description: "Golden hour alert sent to authorities", Remarks: "Urgent - Within 1 hour of fraud"}
	case constants.AlertHighAmount:
		entry = &activity{ActionType: constants.ActionComplaintRegistered, Description: "High amount alert sent to senior officials", Remarks: fmt.Sprintf("Amount: %.2f", cmp.AmountLost)}
	case constants.AlertBankFreeze:
		_, _ = s.store.updateComplaint(cmp.ComplaintID, func(c *complaint) error {
			c.IsFundsFrozen = true
			return nil
		})
		entry = &activity{ActionType: constants.ActionFundsFrozen, Description: "Bank freeze request sent", Remarks: "Bank: " + cmp.AccusedBank}
	case constants.AlertI4CSync:
		entry = &activity{ActionType: constants.ActionComplaintRegistered, Description: "Case synced with I4C/CFCFRMS", Remarks: "National cybercrime database updated"}
	case constants.AlertPattern:
		_, _ = s.store.updateComplaint(cmp.ComplaintID, func(c *complaint) error {
			c.IsPriority = true
			return nil
		})
	}

	if entry != nil {
		entry.ComplaintID = cmp.ID
		entry.CreatedAt = s.now()
		entry.CreatedBy = "system"
		s.store.addActivity(*entry)
	}
	return true
}

func (s *Server) triggerAlerts(c *gin.Context) {
	cmp, ok := s.bindAlertComplaint(c)
	if !ok {
		return
	}

	channels := s.channelsFor(cmp)
	results := make([]alertResult, 0, len(channels))
	successful := 0
	for _, ch := range channels {
		sent := s.fire(cmp, ch)
		outcome := "failed"
		if sent {
			outcome = "sent successfully"
			successful++
		}
		results = append(results, alertResult{
			AlertType: ch,
			Status:    sent,
			Message:   fmt.Sprintf("Alert '%s' %s", ch, outcome),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint_id": cmp.ComplaintID,
		"alerts":       results,
		"summary": gin.H{
			"total_alerts": len(results),
			"successful":   successful,
			"failed":       len(results) - successful,
		},
	})
}

func (s *Server) goldenHourAlert(c *gin.Context) {
	cmp, ok := s.bindAlertComplaint(c)
	if !ok {
		return
	}

	sent := s.fire(cmp, constants.AlertGoldenHour)
	message := "Golden hour alert sent to all authorities"
	if !sent {
		message = "Failed to send alert"
	}
	c.JSON(http.StatusOK, gin.H{
		"complaint_id": cmp.ComplaintID,
		"alert_type":   constants.AlertGoldenHour,
		"status":       alertOutcome(sent),
		"message":      message,
	})
}

func (s *Server) bankFreezeAlert(c *gin.Context) {
	cmp, ok := s.bindAlertComplaint(c)
	if !ok {
		return
	}
	if cmp.AccusedAccount == "" || cmp.AccusedBank == "" {
		abortDetail(c, http.StatusBadRequest, "Accused account information missing")
		return
	}

	sent := s.fire(cmp, constants.AlertBankFreeze)
	message := "Bank freeze request sent"
	if !sent {
		message = "Failed to send freeze request"
	}
	c.JSON(http.StatusOK, gin.H{
		"complaint_id": cmp.ComplaintID,
		"alert_type":   constants.AlertBankFreeze,
		"status":       alertOutcome(sent),
		"bank":         cmp.AccusedBank,
		"account":      maskAccount(cmp.AccusedAccount),
		"message":      message,
	})
}

func (s *Server) alertStatus(c *gin.Context) {
	id := c.Param("id")
	cmp, ok := s.store.complaint(id)
	if !ok {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"complaint_id":    id,
		"is_funds_frozen": cmp.IsFundsFrozen,
		"is_priority":     cmp.IsPriority,
		"fir_registered":  cmp.FIRNumber != "",
		"status":          cmp.Status,
	})
}

func (s *Server) bindAlertComplaint(c *gin.Context) (complaint, bool) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return complaint{}, false
	}
	cmp, ok := s.store.complaint(req.ComplaintID)
	if !ok {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return complaint{}, false
	}
	return cmp, true
}

func alertOutcome(sent bool) string {
	if sent {
		return constants.AlertSent
	}
	return constants.AlertFailed
}

// maskAccount keeps the last four digits.
func maskAccount(account string) string {
	if len(account) < 4 {
		return "****"
	}
	return account[len(account)-4:] + "****"
}
