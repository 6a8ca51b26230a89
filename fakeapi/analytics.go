package fakeapi

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/types"
)

func (s *Server) registerAnalyticsRoutes(routes *gin.RouterGroup) {
	routes.GET("/summary", s.analyticsSummary)
	routes.GET("/by-status", s.casesByStatus)
	routes.GET("/fraud-types", s.fraudTypeStats)
	routes.GET("/by-district", s.districtStats)
	routes.GET("/priority-cases", s.priorityCases)
}

type window struct {
	start, end time.Time
	// reportEnd is the day echoed back as end_date.
	reportEnd time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.start) && !t.After(w.end)
}

func (w window) period(district string) period {
	return period{StartDate: backendDate(w.start), EndDate: backendDate(w.reportEnd), District: district}
}

// dateWindow reads start_date/end_date. The end date is inclusive and defaults to now; the
// start defaults to 30 days before the end.
func (s *Server) dateWindow(c *gin.Context) (window, bool) {
	var w window
	if raw := c.Query("end_date"); raw != "" {
		d, err := time.Parse(types.DateLayout, raw)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return w, false
		}
		w.reportEnd = d
		w.end = d.Add(24*time.Hour - time.Nanosecond)
	} else {
		w.end = s.now().UTC()
		w.reportEnd = w.end
	}

	if raw := c.Query("start_date"); raw != "" {
		d, err := time.Parse(types.DateLayout, raw)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return w, false
		}
		w.start = d
	} else {
		w.start = w.reportEnd.AddDate(0, 0, -analyticsWindow)
	}
	return w, true
}

func recoveryRate(recovered, lost float64) string {
	if lost == 0 {
		lost = 1
	}
	return fmt.Sprintf("%.2f%%", recovered/lost*100)
}

func recoveredAmount(c complaint) float64 {
	if c.AmountRecovered == nil {
		return 0
	}
	return *c.AmountRecovered
}

func (s *Server) analyticsSummary(c *gin.Context) {
	w, ok := s.dateWindow(c)
	if !ok {
		return
	}
	district := c.Query("district")

	cases := s.store.filterComplaints(func(cmp *complaint) bool {
		return w.contains(cmp.CreatedAt) && (district == "" || cmp.District == district)
	})

	var lost, recovered float64
	resolved, pending := 0, 0
	for _, cmp := range cases {
		lost += cmp.AmountLost
		recovered += recoveredAmount(cmp)
		switch cmp.Status {
		case constants.StatusRefunded:
			resolved++
		case constants.StatusPending:
			pending++
		}
	}

	scope := district
	if scope == "" {
		scope = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"total_cases":     len(cases),
		"total_lost":      lost,
		"total_recovered": recovered,
		"resolved":        resolved,
		"pending":         pending,
		"recovery_rate":   recoveryRate(recovered, lost),
		"period":          w.period(scope),
	})
}

func (s *Server) casesByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		abortDetail(c, http.StatusUnprocessableEntity, "status is required")
		return
	}
	if !slices.Contains(constants.CaseStatuses, status) {
		abortDetail(c, http.StatusBadRequest, "Invalid status: "+status)
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	matches := s.store.filterComplaints(func(cmp *complaint) bool { return cmp.Status == status })
	cases := make([]gin.H, 0, limit)
	for _, cmp := range paginate(matches, limit, offset) {
		cases = append(cases, gin.H{
			"complaint_id":     cmp.ComplaintID,
			"fraud_type":       cmp.FraudType,
			"amount_lost":      cmp.AmountLost,
			"amount_recovered": recoveredAmount(cmp),
			"created_at":       backendTime(cmp.CreatedAt),
			"is_priority":      cmp.IsPriority,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"limit":  limit,
		"offset": offset,
		"total":  len(matches),
		"cases":  cases,
	})
}

type groupStats struct {
	key       string
	count     int
	lost      float64
	recovered float64
}

// groupBy aggregates complaints in the window, ordered by case count then key.
func (s *Server) groupBy(w window, key func(complaint) string) []groupStats {
	groups := map[string]*groupStats{}
	for _, cmp := range s.store.filterComplaints(func(cmp *complaint) bool { return w.contains(cmp.CreatedAt) }) {
		k := key(cmp)
		g, ok := groups[k]
		if !ok {
			g = &groupStats{key: k}
			groups[k] = g
		}
		g.count++
		g.lost += cmp.AmountLost
		g.recovered += recoveredAmount(cmp)
	}

	out := make([]groupStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func (s *Server) fraudTypeStats(c *gin.Context) {
	w, ok := s.dateWindow(c)
	if !ok {
		return
	}

	stats := make([]gin.H, 0)
	for _, g := range s.groupBy(w, func(cmp complaint) string { return cmp.FraudType }) {
		stats = append(stats, gin.H{
			"fraud_type":     g.key,
			"count":          g.count,
			"total_amount":   g.lost,
			"average_amount": g.lost / float64(g.count),
		})
	}
	c.JSON(http.StatusOK, gin.H{"period": w.period(""), "fraud_types": stats})
}

func (s *Server) districtStats(c *gin.Context) {
	w, ok := s.dateWindow(c)
	if !ok {
		return
	}

	stats := make([]gin.H, 0)
	for _, g := range s.groupBy(w, func(cmp complaint) string { return cmp.District }) {
		stats = append(stats, gin.H{
			"district":        g.key,
			"cases":           g.count,
			"total_lost":      g.lost,
			"total_recovered": g.recovered,
			"recovery_rate":   recoveryRate(g.recovered, g.lost),
		})
	}
	c.JSON(http.StatusOK, gin.H{"period": w.period(""), "districts": stats})
}

func (s *Server) priorityCases(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	matches := s.store.filterComplaints(func(cmp *complaint) bool { return cmp.IsPriority })
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	cases := make([]gin.H, 0, limit)
	for _, cmp := range paginate(matches, limit, offset) {
		var account *string
		if cmp.AccusedAccount != "" {
			masked := maskAccount(cmp.AccusedAccount)
			account = &masked
		}
		cases = append(cases, gin.H{
			"complaint_id":    cmp.ComplaintID,
			"fraud_type":      cmp.FraudType,
			"amount_lost":     cmp.AmountLost,
			"accused_account": account,
			"accused_bank":    cmp.AccusedBank,
			"created_at":      backendTime(cmp.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"total":          len(matches),
		"limit":          limit,
		"offset":         offset,
		"priority_cases": cases,
	})
}
