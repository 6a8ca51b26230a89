package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/fakeapi"
	"github.com/the-monkeys/fraud_support/fakeapi/fakeapitest"
	"github.com/the-monkeys/fraud_support/services/alerts"
	"github.com/the-monkeys/fraud_support/services/complaints"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	stub       *fakeapi.Server
	alerts     *alerts.Service
	complaints *complaints.Service
}

func setup(t *testing.T, opts ...fakeapi.Option) fixture {
	t.Helper()
	stub, srv := fakeapitest.NewServer(t, opts...)
	client := apiclient.New(srv.URL)
	log := zaptest.NewLogger(t).Sugar()
	return fixture{
		stub:       stub,
		alerts:     alerts.NewService(client, log),
		complaints: complaints.NewService(client, log),
	}
}

func (f fixture) register(t *testing.T, edit func(c *complaints.ComplaintCreate)) string {
	t.Helper()
	c := complaints.ComplaintCreate{
		VictimPhone: "9437001122",
		VictimName:  "S. Nayak",
		FraudType:   constants.FraudUPIScam,
		AmountLost:  9999,
		District:    "Puri",
		Description: "Collect request approved by mistake",
	}
	if edit != nil {
		edit(&c)
	}
	created, err := f.complaints.CreateComplaint(context.Background(), c)
	require.NoError(t, err)
	return created.ComplaintID
}

func TestTriggerAllAlerts(t *testing.T) {
	f := setup(t)
	recent := time.Now().Add(-10 * time.Minute)
	id := f.register(t, func(c *complaints.ComplaintCreate) {
		c.AmountLost = 250000
		c.AccusedAccount = "302010009876"
		c.AccusedBank = "Axis"
		c.TransactionDate = &recent
	})

	resp, err := f.alerts.TriggerAllAlerts(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ComplaintID)
	assert.True(t, resp.Consistent())
	assert.True(t, resp.AllSucceeded())
	assert.Empty(t, resp.Failed())
	assert.Equal(t, 6, resp.Summary.TotalAlerts)

	status, err := f.alerts.GetAlertStatus(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, status.IsFundsFrozen)
	assert.False(t, status.IsPriority)
	assert.Equal(t, constants.StatusPending, status.Status)
}

func TestTriggerAllAlertsEveryChannelFails(t *testing.T) {
	f := setup(t, fakeapi.WithFailingChannels(
		constants.AlertI4CSync, constants.AlertPoliceStation, constants.AlertDistrictCyberCell,
	))
	old := time.Now().Add(-48 * time.Hour)
	id := f.register(t, func(c *complaints.ComplaintCreate) { c.TransactionDate = &old })

	resp, err := f.alerts.TriggerAllAlerts(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, resp.Consistent())
	assert.False(t, resp.AllSucceeded())
	assert.Equal(t, resp.Summary.TotalAlerts, resp.Summary.Failed)
	assert.Len(t, resp.Failed(), 3)
}

func TestTriggerAllAlertsUnknownComplaint(t *testing.T) {
	f := setup(t)
	_, err := f.alerts.TriggerAllAlerts(context.Background(), "CF2024MISSING000")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestBankFreezeAlert(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := f.register(t, func(c *complaints.ComplaintCreate) {
		c.AccusedAccount = "000111222333"
		c.AccusedBank = "PNB"
	})

	resp, err := f.alerts.SendBankFreezeAlert(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.Sent())
	assert.Equal(t, "PNB", resp.Bank)
	assert.Equal(t, "2333****", resp.Account)

	f.stub.SetFailingChannels(constants.AlertBankFreeze)
	resp, err = f.alerts.SendBankFreezeAlert(ctx, id)
	require.NoError(t, err)
	assert.False(t, resp.Sent())
	assert.Equal(t, constants.AlertFailed, resp.Status)
}

func TestBankFreezeAlertWithoutAccount(t *testing.T) {
	f := setup(t)
	id := f.register(t, nil)

	_, err := f.alerts.SendBankFreezeAlert(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "Accused account information missing", apiclient.Message(err, ""))
}

func TestGoldenHourAlert(t *testing.T) {
	f := setup(t)
	id := f.register(t, nil)

	resp, err := f.alerts.SendGoldenHourAlert(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, resp.Sent())
	assert.Equal(t, constants.AlertGoldenHour, resp.AlertType)
	assert.Empty(t, resp.Bank)
}

func TestConsistent(t *testing.T) {
	tests := []struct {
		name string
		resp alerts.TriggerAlertsResponse
		want bool
	}{
		{
			name: "matching",
			resp: alerts.TriggerAlertsResponse{
				Alerts:  []alerts.ChannelResult{{Status: true}, {Status: false}},
				Summary: alerts.Summary{TotalAlerts: 2, Successful: 1, Failed: 1},
			},
			want: true,
		},
		{
			name: "empty",
			resp: alerts.TriggerAlertsResponse{},
			want: true,
		},
		{
			name: "miscounted",
			resp: alerts.TriggerAlertsResponse{
				Alerts:  []alerts.ChannelResult{{Status: true}, {Status: true}},
				Summary: alerts.Summary{TotalAlerts: 2, Successful: 1, Failed: 1},
			},
			want: false,
		},
		{
			name: "wrong total",
			resp: alerts.TriggerAlertsResponse{
				Alerts:  []alerts.ChannelResult{{Status: true}},
				Summary: alerts.Summary{TotalAlerts: 2, Successful: 1, Failed: 1},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Consistent())
		})
	}
}
