package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/the-monkeys/fraud_support/constants"
)

func (s *Server) registerComplaintRoutes(routes *gin.RouterGroup) {
	routes.POST("", s.createComplaint)
	routes.GET("", s.listComplaints)
	routes.POST("/contact-officer", s.contactOfficer)
	routes.GET("/:id", s.getComplaint)
	routes.PATCH("/:id", s.updateComplaint)
	routes.GET("/:id/activity", s.complaintActivity)
}

func (s *Server) createComplaint(c *gin.Context) {
	var req complaintCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if detail := validateCreate(req); detail != "" {
		abortDetail(c, http.StatusUnprocessableEntity, detail)
		return
	}

	now := s.now()
	txDate := now
	if req.TransactionDate != nil {
		txDate = req.TransactionDate.UTC()
	}

	created := s.store.createComplaint(complaint{
		VictimPhone:     req.VictimPhone,
		VictimName:      req.VictimName,
		FraudType:       req.FraudType,
		AmountLost:      req.AmountLost,
		AccusedAccount:  req.AccusedAccount,
		AccusedBank:     req.AccusedBank,
		TransactionID:   req.TransactionID,
		TransactionDate: txDate,
		District:        req.District,
		Description:     req.Description,
		Status:          constants.StatusPending,
	}, now)

	s.store.addActivity(activity{
		ComplaintID: created.ID,
		ActionType:  constants.ActionComplaintRegistered,
		Description: "Complaint registered",
		Remarks:     fmt.Sprintf("Fraud type %s, amount %.2f", created.FraudType, created.AmountLost),
		CreatedAt:   now,
		CreatedBy:   "system",
	})
	s.log.Debugw("complaint registered", "complaint_id", created.ComplaintID, "district", created.District)

	c.JSON(http.StatusOK, s.response(created))
}

func validateCreate(req complaintCreate) string {
	required := map[string]string{
		"victim_phone": req.VictimPhone,
		"victim_name":  req.VictimName,
		"fraud_type":   req.FraudType,
		"district":     req.District,
		"description":  req.Description,
	}
	for _, field := range []string{"victim_phone", "victim_name", "fraud_type", "district", "description"} {
		if strings.TrimSpace(required[field]) == "" {
			return field + " is required"
		}
	}
	if !slices.Contains(constants.FraudTypes, req.FraudType) {
		return "Invalid fraud type: " + req.FraudType
	}
	if req.AmountLost < 0 {
		return "amount_lost must not be negative"
	}
	return ""
}

func (s *Server) getComplaint(c *gin.Context) {
	cmp, ok := s.store.complaint(c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	}
	c.JSON(http.StatusOK, s.response(cmp))
}

func (s *Server) listComplaints(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !slices.Contains(constants.CaseStatuses, status) {
		abortDetail(c, http.StatusBadRequest, "Invalid status: "+status)
		return
	}
	district := c.Query("district")
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	matches := s.store.filterComplaints(func(cmp *complaint) bool {
		return (status == "" || cmp.Status == status) && (district == "" || cmp.District == district)
	})

	page := make([]complaintResponse, 0, limit)
	for _, cmp := range paginate(matches, limit, offset) {
		page = append(page, s.response(cmp))
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      len(matches),
		"limit":      limit,
		"offset":     offset,
		"complaints": page,
	})
}

var errInvalidStatus = errors.New("invalid status")

func (s *Server) updateComplaint(c *gin.Context) {
	var req complaintUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	now := s.now()
	var logs []activity
	updated, err := s.store.updateComplaint(c.Param("id"), func(cmp *complaint) error {
		if req.Status != nil && *req.Status != "" {
			if !slices.Contains(constants.CaseStatuses, *req.Status) {
				return errInvalidStatus
			}
			if *req.Status != cmp.Status {
				if action, ok := statusActions[*req.Status]; ok {
					logs = append(logs, activity{ActionType: action, Description: "Status changed to " + *req.Status})
				}
				cmp.Status = *req.Status
			}
		}
		if req.FIRNumber != nil && *req.FIRNumber != "" {
			cmp.FIRNumber = *req.FIRNumber
			logs = append(logs, activity{ActionType: constants.ActionFIRFiled, Description: "FIR registered", Remarks: "FIR " + cmp.FIRNumber})
		}
		if req.AmountRecovered != nil {
			recovered := *req.AmountRecovered
			cmp.AmountRecovered = &recovered
			logs = append(logs, activity{
				ActionType:  constants.ActionRecoveryInitiated,
				Description: "Recovery updated",
				Remarks:     fmt.Sprintf("Amount recovered %.2f", recovered),
			})
		}
		if cmp.OfficerID == 0 && (cmp.Status != constants.StatusPending || cmp.FIRNumber != "") {
			cmp.OfficerID = s.officerID
		}
		return nil
	})
	switch {
	case errors.Is(err, errNotFound):
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	case errors.Is(err, errInvalidStatus):
		abortDetail(c, http.StatusBadRequest, "Invalid status: "+*req.Status)
		return
	}

	for _, a := range logs {
		a.ComplaintID = updated.ID
		a.CreatedAt = now
		a.CreatedBy = "officer"
		s.store.addActivity(a)
	}
	c.JSON(http.StatusOK, s.response(updated))
}

var statusActions = map[string]string{
	constants.StatusBankActionTaken: constants.ActionBankNotified,
	constants.StatusRefunded:        constants.ActionRefundProcessed,
	constants.StatusClosed:          constants.ActionCaseClosed,
}

func (s *Server) complaintActivity(c *gin.Context) {
	id := c.Param("id")
	cmp, ok := s.store.complaint(id)
	if !ok {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	}

	entries := s.store.activitiesFor(cmp.ID)
	out := make([]activityResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, activityResponse{
			ID:          a.ID,
			ActionType:  a.ActionType,
			Description: a.Description,
			Remarks:     a.Remarks,
			CreatedAt:   backendTime(a.CreatedAt),
			CreatedBy:   a.CreatedBy,
		})
	}
	c.JSON(http.StatusOK, gin.H{"complaint_id": id, "activities": out})
}

func (s *Server) contactOfficer(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	switch {
	case strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "":
		abortDetail(c, http.StatusUnprocessableEntity, "subject and message are required")
		return
	case !slices.Contains([]string{constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh}, req.Priority):
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid priority: "+req.Priority)
		return
	case !slices.Contains([]string{constants.ContactEmail, constants.ContactPhone, constants.ContactSMS}, req.ContactMethod):
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid contact method: "+req.ContactMethod)
		return
	}

	cmp, ok := s.store.complaint(req.ComplaintID)
	if !ok {
		abortDetail(c, http.StatusNotFound, "Complaint not found")
		return
	}

	resp := gin.H{
		"success":   true,
		"message":   "Your message has been sent to the investigating officer",
		"ticket_id": "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
	}
	details := s.response(cmp)
	if details.OfficerName != "" {
		if req.ContactMethod == constants.ContactEmail {
			resp["officer_contact"] = details.OfficerEmail
		} else {
			resp["officer_contact"] = details.OfficerPhone
		}
	}
	c.JSON(http.StatusOK, resp)
}

// pagination reads limit (1..500, default 50) and offset (>= 0). It writes a 422 and
// reports false on invalid input.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = 50, 0
	var err error
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 || limit > maxPageLimit {
			abortDetail(c, http.StatusUnprocessableEntity, "limit must be between 1 and 500")
			return 0, 0, false
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil || offset < 0 {
			abortDetail(c, http.StatusUnprocessableEntity, "offset must be non-negative")
			return 0, 0, false
		}
	}
	return limit, offset, true
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
