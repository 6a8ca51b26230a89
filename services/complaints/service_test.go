package complaints_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/fakeapi/fakeapitest"
	"github.com/the-monkeys/fraud_support/services/complaints"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) *complaints.Service {
	t.Helper()
	_, srv := fakeapitest.NewServer(t)
	return complaints.NewService(apiclient.New(srv.URL), zaptest.NewLogger(t).Sugar())
}

func sampleComplaint() complaints.ComplaintCreate {
	return complaints.ComplaintCreate{
		VictimPhone: "9123456780",
		VictimName:  "A. Das",
		FraudType:   constants.FraudInvestment,
		AmountLost:  48500.75,
		District:    "Cuttack",
		Description: "Crypto investment group on messaging app",
	}
}

func TestCreateAndGetComplaint(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.CreateComplaint(ctx, sampleComplaint())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ComplaintID)
	assert.Equal(t, 48500.75, created.AmountLost)
	assert.Equal(t, constants.StatusPending, created.Status)
	assert.WithinDuration(t, time.Now(), created.CreatedAt.Time, time.Minute)

	first, err := svc.GetComplaint(ctx, created.ComplaintID)
	require.NoError(t, err)
	second, err := svc.GetComplaint(ctx, created.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, created.ComplaintID, first.ComplaintID)
}

func TestGetComplaintNotFound(t *testing.T) {
	svc := setup(t)

	_, err := svc.GetComplaint(context.Background(), "CF2024NOTHERE000")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, "Complaint not found", apiclient.Message(err, ""))
}

func TestCreateComplaintValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(c *complaints.ComplaintCreate)
		field string
	}{
		{"missing phone", func(c *complaints.ComplaintCreate) { c.VictimPhone = "" }, "victim_phone"},
		{"blank name", func(c *complaints.ComplaintCreate) { c.VictimName = "   " }, "victim_name"},
		{"missing fraud type", func(c *complaints.ComplaintCreate) { c.FraudType = "" }, "fraud_type"},
		{"missing district", func(c *complaints.ComplaintCreate) { c.District = "" }, "district"},
		{"missing description", func(c *complaints.ComplaintCreate) { c.Description = "" }, "description"},
		{"negative amount", func(c *complaints.ComplaintCreate) { c.AmountLost = -10 }, "amount_lost"},
	}

	// No server: validation must fail before any request is made.
	svc := complaints.NewService(apiclient.New("http://127.0.0.1:1"), zaptest.NewLogger(t).Sugar())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleComplaint()
			tt.edit(&c)

			_, err := svc.CreateComplaint(context.Background(), c)
			require.Error(t, err)
			assert.ErrorIs(t, err, apiclient.ErrValidation)
			assert.NotErrorIs(t, err, apiclient.ErrConnectivity)

			var verr *apiclient.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateComplaintServerRejectsFraudType(t *testing.T) {
	svc := setup(t)
	c := sampleComplaint()
	c.FraudType = "LOTTERY"

	_, err := svc.CreateComplaint(context.Background(), c)
	require.Error(t, err)
	var herr *apiclient.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusUnprocessableEntity, herr.StatusCode)
}

func TestListComplaintsQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter complaints.ListFilter
		want   url.Values
	}{
		{"no filter", complaints.ListFilter{}, url.Values{}},
		{"status only", complaints.ListFilter{Status: constants.StatusPending}, url.Values{"status": {"PENDING"}}},
		{"district and paging", complaints.ListFilter{District: "Puri", Limit: 10, Offset: 20},
			url.Values{"district": {"Puri"}, "limit": {"10"}, "offset": {"20"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got url.Values
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"total":0,"limit":50,"offset":0,"complaints":[]}`))
			}))
			defer srv.Close()

			svc := complaints.NewService(apiclient.New(srv.URL), zaptest.NewLogger(t).Sugar())
			list, err := svc.ListComplaints(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Empty(t, list.Complaints)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListComplaintsAgainstStub(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	for _, district := range []string{"Cuttack", "Cuttack", "Puri"} {
		c := sampleComplaint()
		c.District = district
		_, err := svc.CreateComplaint(ctx, c)
		require.NoError(t, err)
	}

	list, err := svc.ListComplaints(ctx, complaints.ListFilter{District: "Cuttack", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.Limit)
	assert.Len(t, list.Complaints, 1)

	_, err = svc.ListComplaints(ctx, complaints.ListFilter{Limit: 1000})
	assert.ErrorIs(t, err, apiclient.ErrHTTP)
}

func TestUpdateComplaintAndActivity(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.CreateComplaint(ctx, sampleComplaint())
	require.NoError(t, err)

	fir := "FIR/CTC/2024/118"
	updated, err := svc.UpdateComplaint(ctx, created.ComplaintID, complaints.ComplaintUpdate{FIRNumber: &fir})
	require.NoError(t, err)
	assert.Equal(t, fir, updated.FIRNumber)
	assert.Equal(t, constants.StatusPending, updated.Status)
	assert.NotEmpty(t, updated.OfficerName)

	closed := constants.StatusClosed
	updated, err = svc.UpdateComplaint(ctx, created.ComplaintID, complaints.ComplaintUpdate{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusClosed, updated.Status)
	assert.Equal(t, fir, updated.FIRNumber)

	fetched, err := svc.GetComplaint(ctx, created.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusClosed, fetched.Status)

	log, err := svc.GetComplaintActivity(ctx, created.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, created.ComplaintID, log.ComplaintID)
	require.Len(t, log.Activities, 3)
	assert.Equal(t, constants.ActionComplaintRegistered, log.Activities[len(log.Activities)-1].ActionType)

	bogus := "ARCHIVED"
	_, err = svc.UpdateComplaint(ctx, created.ComplaintID, complaints.ComplaintUpdate{Status: &bogus})
	var herr *apiclient.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusBadRequest, herr.StatusCode)
}

func TestComplaintListRecords(t *testing.T) {
	list := &complaints.ComplaintList{Complaints: []complaints.Complaint{{
		ComplaintID: "CF2024ABCDEF0123",
		FraudType:   constants.FraudPhishing,
		AmountLost:  1500,
		Status:      constants.StatusInProcess,
		IsPriority:  true,
	}}}

	rows := list.Records()
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(list.Header()))
	assert.Equal(t, []string{"CF2024ABCDEF0123", "PHISHING", "1500.00", "IN_PROCESS"}, rows[0][:4])
	assert.Equal(t, "true", rows[0][5])
}
