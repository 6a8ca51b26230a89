package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/the-monkeys/fraud_support/api"
	"github.com/the-monkeys/fraud_support/async"
	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/export"
	"github.com/the-monkeys/fraud_support/services/analytics"
	"github.com/the-monkeys/fraud_support/services/complaints"
	"github.com/the-monkeys/fraud_support/services/contact"
	"github.com/the-monkeys/fraud_support/types"
)

type command struct {
	summary string
	args    string
	nargs   int
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, fs *pflag.FlagSet, out *printer) error
}

var commands = map[string]command{
	"login": {
		summary: "log in with phone and password",
		args:    "--phone <phone> --password <password> [--role police|bank|victim]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("phone", "", "registered phone number")
			fs.String("password", "", "account password")
			fs.String("role", constants.RolePolice, "portal role")
		},
		run: login,
	},
	"otp-request": {
		summary: "send a one-time code to a complaint's victim",
		args:    "<complaint-id> --phone <phone>",
		nargs:   1,
		flags:   func(fs *pflag.FlagSet) { fs.String("phone", "", "victim phone number") },
		run:     otpRequest,
	},
	"otp-verify": {
		summary: "exchange a one-time code for a session",
		args:    "<complaint-id> --phone <phone> --code <otp>",
		nargs:   1,
		flags: func(fs *pflag.FlagSet) {
			fs.String("phone", "", "victim phone number")
			fs.String("code", "", "one-time code")
		},
		run: otpVerify,
	},
	"whoami": {summary: "show the logged-in user", run: whoami},
	"logout": {summary: "end the session", run: logout},
	"complaint-get": {
		summary: "show one complaint",
		args:    "<complaint-id>",
		nargs:   1,
		run:     complaintGet,
	},
	"complaint-list": {
		summary: "list complaints",
		args:    "[--status S] [--district D] [--limit N] [--offset N]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("status", "", "filter by status")
			fs.String("district", "", "filter by district")
			fs.Int("limit", 0, "page size")
			fs.Int("offset", 0, "page offset")
		},
		run: complaintList,
	},
	"complaint-create": {
		summary: "register a complaint",
		args:    "--phone P --name N --fraud-type T --amount A --district D --description TEXT",
		flags: func(fs *pflag.FlagSet) {
			fs.String("phone", "", "victim phone number")
			fs.String("name", "", "victim name")
			fs.String("fraud-type", "", "fraud type, e.g. UPI_SCAM")
			fs.Float64("amount", 0, "amount lost")
			fs.String("district", "", "district")
			fs.String("description", "", "what happened")
			fs.String("accused-account", "", "account the money went to")
			fs.String("accused-bank", "", "bank of the accused account")
			fs.String("transaction-id", "", "transaction reference")
			fs.String("transaction-date", "", "transaction time, RFC 3339")
		},
		run: complaintCreate,
	},
	"complaint-update": {
		summary: "update status, FIR number or recovered amount",
		args:    "<complaint-id> [--status S] [--fir F] [--recovered A]",
		nargs:   1,
		flags: func(fs *pflag.FlagSet) {
			fs.String("status", "", "new status")
			fs.String("fir", "", "FIR number")
			fs.Float64("recovered", 0, "amount recovered")
		},
		run: complaintUpdate,
	},
	"activity": {
		summary: "show a complaint's activity log",
		args:    "<complaint-id>",
		nargs:   1,
		run:     activity,
	},
	"alerts-trigger": {
		summary: "fire every applicable alert channel",
		args:    "<complaint-id>",
		nargs:   1,
		run:     alertsTrigger,
	},
	"alerts-golden-hour": {
		summary: "send the golden hour alert",
		args:    "<complaint-id>",
		nargs:   1,
		run:     alertsGoldenHour,
	},
	"alerts-bank-freeze": {
		summary: "ask the accused's bank to freeze the account",
		args:    "<complaint-id>",
		nargs:   1,
		run:     alertsBankFreeze,
	},
	"alerts-status": {
		summary: "show freeze and priority flags",
		args:    "<complaint-id>",
		nargs:   1,
		run:     alertsStatus,
	},
	"dashboard": {
		summary: "summary, fraud type, district and priority views",
		args:    "[--start YYYY-MM-DD] [--end YYYY-MM-DD] [--district D]",
		flags: func(fs *pflag.FlagSet) {
			dateFlags(fs)
			fs.String("district", "", "limit the summary to one district")
		},
		run: dashboard,
	},
	"cases-by-status": {
		summary: "list cases in one status",
		args:    "--status S [--limit N] [--offset N]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("status", "", "case status")
			pageFlags(fs)
		},
		run: casesByStatus,
	},
	"priority-cases": {
		summary: "list the priority queue",
		args:    "[--limit N] [--offset N]",
		flags:   pageFlags,
		run:     priorityCases,
	},
	"contact": {
		summary: "message the investigating officer",
		args:    "<complaint-id> --subject S --message M [--priority P] [--method M]",
		nargs:   1,
		flags: func(fs *pflag.FlagSet) {
			fs.String("subject", "", "subject line")
			fs.String("message", "", "message body")
			fs.String("priority", constants.PriorityMedium, "low, medium or high")
			fs.String("method", constants.ContactEmail, "email, phone or sms")
		},
		run: contactOfficer,
	},
	"officer": {
		summary: "show the officer handling a complaint",
		args:    "<complaint-id>",
		nargs:   1,
		run:     officer,
	},
}

func dateFlags(fs *pflag.FlagSet) {
	fs.String("start", "", "start date, YYYY-MM-DD")
	fs.String("end", "", "end date, YYYY-MM-DD")
}

func pageFlags(fs *pflag.FlagSet) {
	fs.Int("limit", types.DefaultPageLimit, "page size")
	fs.Int("offset", 0, "page offset")
}

func str(fs *pflag.FlagSet, name string) string {
	v, _ := fs.GetString(name)
	return v
}

func num(fs *pflag.FlagSet, name string) int {
	v, _ := fs.GetInt(name)
	return v
}

func amount(fs *pflag.FlagSet, name string) float64 {
	v, _ := fs.GetFloat64(name)
	return v
}

func page(fs *pflag.FlagSet) types.Page {
	return types.Page{Limit: num(fs, "limit"), Offset: num(fs, "offset")}
}

func dateRange(fs *pflag.FlagSet) (types.DateRange, error) {
	var r types.DateRange
	var err error
	if s := str(fs, "start"); s != "" {
		if r.Start, err = types.ParseDate(s); err != nil {
			return r, fmt.Errorf("--start: %w", err)
		}
	}
	if s := str(fs, "end"); s != "" {
		if r.End, err = types.ParseDate(s); err != nil {
			return r, fmt.Errorf("--end: %w", err)
		}
	}
	return r, nil
}

func login(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Auth.Login(ctx, str(fs, "phone"), str(fs, "password"), str(fs, "role"))
	if err != nil {
		return err
	}
	return out.record(resp.User, fields{
		{"User ID", fmt.Sprint(resp.User.ID)},
		{"Name", resp.User.FullName},
		{"Phone", resp.User.PhoneNumber},
		{"Role", resp.Role},
	})
}

func otpRequest(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Auth.RequestOTP(ctx, str(fs, "phone"), fs.Arg(0))
	if err != nil {
		return err
	}
	return out.record(resp, fields{
		{"Message", resp.Message},
		{"Sent To", resp.Phone},
		{"Expires In", fmt.Sprintf("%ds", resp.ExpiresIn)},
	})
}

func otpVerify(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Auth.VerifyOTP(ctx, str(fs, "phone"), fs.Arg(0), str(fs, "code"))
	if err != nil {
		return err
	}
	return out.record(map[string]string{"complaint_id": resp.ComplaintID}, fields{
		{"Complaint", resp.ComplaintID},
		{"Access", "granted"},
	})
}

func whoami(ctx context.Context, _ *pflag.FlagSet, out *printer) error {
	u, err := api.MustFromContext(ctx).Auth.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	return out.record(u, fields{
		{"User ID", fmt.Sprint(u.ID)},
		{"Name", u.FullName},
		{"Phone", u.PhoneNumber},
		{"Role", u.Role},
	})
}

func logout(ctx context.Context, _ *pflag.FlagSet, out *printer) error {
	if err := api.MustFromContext(ctx).Auth.Logout(ctx); err != nil {
		return err
	}
	return out.record(map[string]bool{"logged_out": true}, fields{{"Session", "cleared"}})
}

func complaintFields(c *complaints.Complaint) fields {
	recovered := "0.00"
	if c.AmountRecovered != nil {
		recovered = money(*c.AmountRecovered)
	}
	return fields{
		{"Complaint ID", c.ComplaintID},
		{"Status", c.Status},
		{"Fraud Type", c.FraudType},
		{"Amount Lost", money(c.AmountLost)},
		{"Amount Recovered", recovered},
		{"District", c.District},
		{"FIR", c.FIRNumber},
		{"Filed", c.CreatedAt.Format(time.RFC3339)},
		{"Priority", yesNo(c.IsPriority)},
		{"Funds Frozen", yesNo(c.IsFundsFrozen)},
	}
}

func complaintGet(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	c, err := api.MustFromContext(ctx).Complaints.GetComplaint(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return out.record(c, complaintFields(c))
}

func complaintList(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	list, err := api.MustFromContext(ctx).Complaints.ListComplaints(ctx, complaints.ListFilter{
		Status:   str(fs, "status"),
		District: str(fs, "district"),
		Limit:    num(fs, "limit"),
		Offset:   num(fs, "offset"),
	})
	if err != nil {
		return err
	}
	return out.list(list)
}

func complaintCreate(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	data := complaints.ComplaintCreate{
		VictimPhone:    str(fs, "phone"),
		VictimName:     str(fs, "name"),
		FraudType:      str(fs, "fraud-type"),
		AmountLost:     amount(fs, "amount"),
		AccusedAccount: str(fs, "accused-account"),
		AccusedBank:    str(fs, "accused-bank"),
		TransactionID:  str(fs, "transaction-id"),
		District:       str(fs, "district"),
		Description:    str(fs, "description"),
	}
	if raw := str(fs, "transaction-date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("--transaction-date: %w", err)
		}
		data.TransactionDate = &t
	}

	c, err := api.MustFromContext(ctx).Complaints.CreateComplaint(ctx, data)
	if err != nil {
		return err
	}
	return out.record(c, complaintFields(c))
}

func complaintUpdate(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	var update complaints.ComplaintUpdate
	if fs.Changed("status") {
		s := str(fs, "status")
		update.Status = &s
	}
	if fs.Changed("fir") {
		f := str(fs, "fir")
		update.FIRNumber = &f
	}
	if fs.Changed("recovered") {
		r := amount(fs, "recovered")
		update.AmountRecovered = &r
	}

	c, err := api.MustFromContext(ctx).Complaints.UpdateComplaint(ctx, fs.Arg(0), update)
	if err != nil {
		return err
	}
	return out.record(c, complaintFields(c))
}

func activity(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	list, err := api.MustFromContext(ctx).Complaints.GetComplaintActivity(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return out.list(list)
}

func alertsTrigger(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Alerts.TriggerAllAlerts(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	f := fields{}
	for _, a := range resp.Alerts {
		outcome := "sent"
		if !a.Status {
			outcome = "FAILED"
		}
		f = append(f, [2]string{a.AlertType, outcome})
	}
	f = append(f, [2]string{"summary", fmt.Sprintf("%d of %d sent", resp.Summary.Successful, resp.Summary.TotalAlerts)})
	return out.record(resp, f)
}

func alertsGoldenHour(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Alerts.SendGoldenHourAlert(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return out.record(resp, fields{{"Alert", resp.AlertType}, {"Status", resp.Status}, {"Message", resp.Message}})
}

func alertsBankFreeze(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Alerts.SendBankFreezeAlert(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return out.record(resp, fields{
		{"Alert", resp.AlertType},
		{"Status", resp.Status},
		{"Bank", resp.Bank},
		{"Account", resp.Account},
		{"Message", resp.Message},
	})
}

func alertsStatus(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	s, err := api.MustFromContext(ctx).Alerts.GetAlertStatus(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return out.record(s, fields{
		{"Complaint ID", s.ComplaintID},
		{"Status", s.Status},
		{"Funds Frozen", yesNo(s.IsFundsFrozen)},
		{"Priority", yesNo(s.IsPriority)},
		{"FIR Registered", yesNo(s.FIRRegistered)},
	})
}

// dashboard loads the four analytics views concurrently. Each view reports its own
// failure; one failing view does not hide the others.
func dashboard(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	r, err := dateRange(fs)
	if err != nil {
		return err
	}
	svc := api.MustFromContext(ctx).Analytics

	summary := async.Go(ctx, func(ctx context.Context) (*analytics.AnalyticsSummary, error) {
		return svc.GetAnalyticsSummary(ctx, analytics.SummaryQuery{DateRange: r, District: str(fs, "district")})
	})
	byType := async.Go(ctx, func(ctx context.Context) (*analytics.FraudTypeAnalytics, error) {
		return svc.GetFraudTypeStats(ctx, r)
	})
	byDistrict := async.Go(ctx, func(ctx context.Context) (*analytics.DistrictAnalytics, error) {
		return svc.GetDistrictStats(ctx, r)
	})
	priority := async.Go(ctx, func(ctx context.Context) (*analytics.PriorityCases, error) {
		return svc.GetPriorityCases(ctx, types.Page{Limit: 10})
	})

	if out.format == export.FormatJSON {
		view := map[string]any{}
		addView(ctx, view, "summary", summary)
		addView(ctx, view, "fraud_types", byType)
		addView(ctx, view, "districts", byDistrict)
		addView(ctx, view, "priority_cases", priority)
		return out.record(view, nil)
	}

	var failed int
	out.section("Summary")
	if res := summary.Wait(ctx); res.Err != nil {
		failed++
		reportView(out, res.Err)
	} else {
		s := res.Data
		if err := out.record(s, fields{
			{"Period", s.Period.StartDate.String() + " to " + s.Period.EndDate.String()},
			{"Total Cases", fmt.Sprint(s.TotalCases)},
			{"Total Lost", money(s.TotalLost)},
			{"Total Recovered", money(s.TotalRecovered)},
			{"Resolved", fmt.Sprint(s.Resolved)},
			{"Pending", fmt.Sprint(s.Pending)},
			{"Recovery Rate", s.RecoveryRate},
		}); err != nil {
			return err
		}
	}

	out.section("Fraud Types")
	failed += listView(ctx, out, byType)
	out.section("Districts")
	failed += listView(ctx, out, byDistrict)
	out.section("Priority Cases")
	failed += listView(ctx, out, priority)

	if failed == 4 {
		return errors.New("dashboard: every view failed")
	}
	return nil
}

func addView[T any](ctx context.Context, view map[string]any, key string, call *async.Call[T]) {
	res := call.Wait(ctx)
	if res.Err != nil {
		view[key] = map[string]string{"error": errorText(res.Err)}
		return
	}
	view[key] = res.Data
}

func listView[T export.Table](ctx context.Context, out *printer, call *async.Call[T]) int {
	res := call.Wait(ctx)
	if res.Err != nil {
		reportView(out, res.Err)
		return 1
	}
	if err := out.list(res.Data); err != nil {
		reportView(out, err)
		return 1
	}
	return 0
}

func reportView(out *printer, err error) {
	fmt.Fprintf(out.w, "unavailable: %s\n", errorText(err))
}

func casesByStatus(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	cases, err := api.MustFromContext(ctx).Analytics.GetCasesByStatus(ctx, str(fs, "status"), page(fs))
	if err != nil {
		return err
	}
	return out.list(cases)
}

func priorityCases(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	cases, err := api.MustFromContext(ctx).Analytics.GetPriorityCases(ctx, page(fs))
	if err != nil {
		return err
	}
	return out.list(cases)
}

func contactOfficer(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	resp, err := api.MustFromContext(ctx).Contact.SendContactRequest(ctx, contact.ContactRequest{
		ComplaintID:   fs.Arg(0),
		Subject:       str(fs, "subject"),
		Message:       str(fs, "message"),
		Priority:      str(fs, "priority"),
		ContactMethod: str(fs, "method"),
	})
	if err != nil {
		return err
	}
	officerContact := resp.OfficerContact
	if officerContact == "" {
		officerContact = "N/A"
	}
	return out.record(resp, fields{
		{"Ticket", resp.TicketID},
		{"Message", resp.Message},
		{"Officer Contact", officerContact},
	})
}

func officer(ctx context.Context, fs *pflag.FlagSet, out *printer) error {
	d, err := api.MustFromContext(ctx).Contact.GetOfficerDetails(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	shown := d.WithPlaceholders()
	return out.record(d, fields{
		{"Officer", shown.OfficerName},
		{"Phone", shown.OfficerPhone},
		{"Email", shown.OfficerEmail},
		{"Station", shown.Station},
	})
}
