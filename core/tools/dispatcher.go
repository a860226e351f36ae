package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/donext/calls-core/core/hebrew"
	"github.com/donext/calls-core/core/ledger"
	"github.com/donext/calls-core/internal/utils"
)

// User-facing phrases. These are spoken to the caller by the engine, so
// they stay in the caller's language.
const (
	msgNoCampaignAccess     = "אין לי גישה לנתוני הקמפיין כרגע. נסה שוב מאוחר יותר."
	msgNoCampaignAccessAlt  = "מצטער, אין לי גישה לנתוני הקמפיין כרגע."
	msgNeedCallerName       = "אני צריך את השם המלא שלך כדי לבדוק את נתוני התרומה."
	msgStatsFundraiserOnly  = "מצטער, נתוני מתרים זמינים רק למתרים במערכת. אוכל לבדוק עבורך את נתוני התרומות שלך כתורם."
	msgDonorsFundraiserOnly = "מצטער, רשימת התורמים זמינה רק למתרים במערכת."
	msgAddFundraiserOnly    = "מצטער, רק מתרים יכולים להוסיף תרומות במערכת."
	msgNoCallerPhone        = "מצטער, לא מצאתי את מספר הטלפון שלך במערכת."
	msgNeedAmount           = "אני צריך לדעת את סכום התרומה כדי להמשיך."
	msgNeedDonorName        = "אני צריך את שם התורם המלא כדי לרשום את התרומה."
	msgCampaignTotalFailed  = "לא הצלחתי לקבל את נתוני הקמפיין כרגע"
	msgDonorNotFound        = "לא מצאתי נתונים על השם הזה במערכת"
	msgStatsNotFound        = "לא מצאתי נתוני מתרים עבורך במערכת"
	msgDonorsNotFound       = "לא מצאתי תורמים עבורך במערכת"
	msgUnknownTool          = "מצטער, לא זיהיתי את הבקשה. אתה יכול לבקש ממני לבדוק נתוני קמפיין, נתוני תורם או להוסיף תרומה."
	msgTransientFailure     = "יש לי בעיה זמנית בחיבור למערכת. נסה שוב בעוד רגע."
	msgSomethingWentWrong   = "משהו לא עבד כמו שצריך. אתה יכול לנסות שוב?"
	msgUnknownError         = "שגיאה לא ידועה"
)

// Dispatcher executes tool calls against the ledger under the session's
// role. Every path produces a Result; failures of any kind become a
// payload the engine can speak, never a dispatch error.
type Dispatcher struct {
	ledger Ledger
}

func NewDispatcher(ledger Ledger) *Dispatcher {
	return &Dispatcher{ledger: ledger}
}

// Dispatch runs the named tool. A refusal (missing input, role gate) is
// a normal Result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, sess Session, call Call) (result Result) {
	ctx, span := tracer.Start(ctx, "tool "+call.Name)
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.invocation_id", call.InvocationID),
		attribute.String("session.role", sess.Role.String()),
	)

	logger.InfoContext(ctx, "executing tool",
		"tool", call.Name, "invocation_id", call.InvocationID, "role", sess.Role)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("tool %s panicked: %v", call.Name, r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "tool execution panicked", "tool", call.Name, "panic", r)
			result = Result{Output: msgSomethingWentWrong}
		}
	}()

	switch call.Name {
	case NameCampaignTotal:
		return d.campaignTotal(ctx, sess, call)
	case NameDonorTotal:
		return d.donorTotal(ctx, sess, call)
	case NameFundraiserStats:
		return d.fundraiserStats(ctx, sess)
	case NameFundraiserDonors:
		return d.fundraiserDonors(ctx, sess)
	case NameAddDonation:
		return d.addDonation(ctx, sess, call)
	case NameEndCall:
		return Result{Output: encode(struct {
			Success bool `json:"success"`
		}{Success: true}), EndCall: true}
	default:
		logger.WarnContext(ctx, "unknown tool requested", "tool", call.Name)
		return Result{Output: msgUnknownTool}
	}
}

func (d *Dispatcher) campaignTotal(ctx context.Context, sess Session, call Call) Result {
	var args campaignTotalArgs
	decodeArgs(call.Arguments, &args)

	campaignID := args.CampaignID
	if campaignID == 0 {
		campaignID = sess.CampaignID
	}
	if campaignID == 0 {
		return errResult(msgNoCampaignAccess)
	}

	total, err := d.ledger.CampaignTotal(ctx, campaignID)
	if err != nil {
		if isBackendReported(err) {
			return encodeResult(lookupFailure{Error: msgCampaignTotalFailed})
		}
		return transientFailure(ctx, "campaign_total", err)
	}

	donations := int(total.TotalDonations)
	id := total.CampaignID.String()
	if id == "" || id == "null" {
		id = fmt.Sprintf("%d", campaignID)
	}

	result := campaignTotalResult{
		Success:                 true,
		CampaignID:              id,
		TotalDonations:          donations,
		TotalDonationsFormatted: hebrew.FormatAmount(donations),
		TotalDonationsSpoken:    hebrew.AmountSpokenInt(donations),
		ActiveDonorsCount:       total.ActiveDonorsCount,
		TargetAmount:            total.TargetAmount.String(),
		TargetAmountFormatted:   total.TargetAmount.String(),
		TargetAmountSpoken:      total.TargetAmount.String(),
		Message: fmt.Sprintf("נתוני קמפיין %s: נאספו %s מ-%d תורמים",
			id, hebrew.AmountSpokenInt(donations), total.ActiveDonorsCount),
	}

	if target, ok := total.TargetAmount.Int(); ok {
		result.TargetAmountFormatted = hebrew.FormatAmount(target)
		result.TargetAmountSpoken = hebrew.AmountSpokenInt(target)
		remaining := target - donations
		result.AmountRemaining = &remaining
		result.AmountRemainingFormatted = hebrew.FormatAmount(remaining)
		result.AmountRemainingSpoken = hebrew.AmountSpokenInt(remaining)
		if target > 0 {
			progress := math.Round(float64(donations)/float64(target)*1000) / 10
			result.ProgressPercentage = &progress
		}
		result.Message += fmt.Sprintf(" מתוך יעד של %s", hebrew.AmountSpokenInt(target))
	}

	return encodeResult(result)
}

func (d *Dispatcher) donorTotal(ctx context.Context, sess Session, call Call) Result {
	var args donorTotalArgs
	decodeArgs(call.Arguments, &args)

	donorName := args.DonorName
	if donorName == "" {
		donorName = sess.FullName
	}
	campaignID := args.CampaignID
	if campaignID == 0 {
		campaignID = sess.CampaignID
	}

	if donorName == "" {
		return errResult(msgNeedCallerName)
	}
	if campaignID == 0 {
		return errResult(msgNoCampaignAccessAlt)
	}

	total, err := d.ledger.DonorTotal(ctx, donorName, campaignID)
	if err != nil {
		if isBackendReported(err) {
			return encodeResult(lookupFailure{DonorName: donorName, Error: msgDonorNotFound})
		}
		return transientFailure(ctx, "donor_total", err)
	}

	donation := int(total.TotalDonation)
	result := donorTotalResult{
		Success:                true,
		DonorName:              donorName,
		TotalDonation:          donation,
		TotalDonationFormatted: hebrew.FormatAmount(donation),
		TotalDonationSpoken:    hebrew.AmountSpokenInt(donation),
		HasDonations:           donation > 0,
	}
	if donation > 0 {
		result.Message = fmt.Sprintf("נתוני התרומה של %s: %s", donorName, hebrew.AmountSpokenInt(donation))
	} else {
		result.Message = fmt.Sprintf("%s עדיין לא תרם", donorName)
	}
	return encodeResult(result)
}

func (d *Dispatcher) fundraiserStats(ctx context.Context, sess Session) Result {
	if !sess.Role.CanFundraise() {
		logger.InfoContext(ctx, "tool refused by role gate", "tool", NameFundraiserStats, "role", sess.Role)
		return errResult(msgStatsFundraiserOnly)
	}
	if sess.CallerPhone == "" {
		return errResult(msgNoCallerPhone)
	}

	stats, err := d.ledger.FundraiserStats(ctx, sess.CallerPhone, "")
	if err != nil {
		if isBackendReported(err) {
			return encodeResult(lookupFailure{Error: msgStatsNotFound})
		}
		return transientFailure(ctx, "fundraiser_stats", err)
	}

	if len(stats.FoundFundraisers) > 0 {
		record := stats.FoundFundraisers[0]
		raised := int(record.TotalDonationsAmount)
		expected := int(record.TotalExpected)

		result := fundraiserStatsResult{
			Success:              true,
			FundraiserName:       record.FundraiserName,
			CampaignID:           record.CampaignID.String(),
			TotalRaised:          raised,
			TotalRaisedFormatted: hebrew.FormatAmount(raised),
			TotalRaisedSpoken:    hebrew.AmountSpokenInt(raised),
			DonorsWithDonations:  utils.Ptr(record.DonorsWithDonations),
			TotalDonors:          utils.Ptr(record.TotalDonors),
			TotalExpected:        utils.Ptr(expected),
			HasPersonalTarget:    utils.Ptr(expected > 0),
			Message: fmt.Sprintf("נתוני המתרים %s: גייסת %s מ-%d תורמים פעילים מתוך %d תורמים סך הכל",
				record.FundraiserName, hebrew.AmountSpokenInt(raised),
				record.DonorsWithDonations, record.TotalDonors),
		}
		if expected > 0 {
			result.TotalExpectedSpoken = hebrew.AmountSpokenInt(expected)
			progress := math.Round(float64(raised)/float64(expected)*1000) / 10
			result.ProgressPercentage = &progress
			result.Message += fmt.Sprintf(", יעד אישי: %s", hebrew.AmountSpokenInt(expected))
		} else {
			result.TotalExpectedSpoken = "ללא יעד אישי"
		}
		return encodeResult(result)
	}

	// Older ledger deployments return a flat shape.
	raised := int(stats.TotalRaised)
	return encodeResult(fundraiserStatsResult{
		Success:              true,
		TotalRaised:          raised,
		TotalRaisedFormatted: hebrew.FormatAmount(raised),
		TotalRaisedSpoken:    hebrew.AmountSpokenInt(raised),
		DonorsCount:          utils.Ptr(stats.DonorsCount),
		Message: fmt.Sprintf("נתוני המתרים: גייסת %s מ-%d תורמים",
			hebrew.AmountSpokenInt(raised), stats.DonorsCount),
	})
}

func (d *Dispatcher) fundraiserDonors(ctx context.Context, sess Session) Result {
	if !sess.Role.CanFundraise() {
		logger.InfoContext(ctx, "tool refused by role gate", "tool", NameFundraiserDonors, "role", sess.Role)
		return errResult(msgDonorsFundraiserOnly)
	}
	if sess.CallerPhone == "" {
		return errResult(msgNoCallerPhone)
	}
	if sess.CampaignID == 0 {
		return errResult(msgNoCampaignAccessAlt)
	}

	donors, err := d.ledger.FundraiserDonors(ctx, sess.CampaignID, sess.CallerPhone)
	if err != nil {
		if isBackendReported(err) {
			return encodeResult(lookupFailure{Error: msgDonorsNotFound})
		}
		return transientFailure(ctx, "fundraiser_donors", err)
	}

	entries := make([]donorEntry, 0, len(donors.Donors))
	for i, donor := range donors.Donors {
		entries = append(entries, donorEntry{
			Index:    i + 1,
			DonorID:  donor.DonorID.String(),
			FullName: donor.FullName,
			Phone:    donor.Phone,
			City:     donor.City,
		})
	}

	return encodeResult(fundraiserDonorsResult{
		Success:        true,
		FundraiserName: donors.FundraiserName,
		TotalDonors:    donors.TotalDonors,
		Donors:         entries,
		Message:        fmt.Sprintf("רשימת התורמים של %s: %d תורמים", donors.FundraiserName, donors.TotalDonors),
	})
}

func (d *Dispatcher) addDonation(ctx context.Context, sess Session, call Call) Result {
	if !sess.Role.CanFundraise() {
		logger.InfoContext(ctx, "tool refused by role gate", "tool", NameAddDonation, "role", sess.Role)
		return errResult(msgAddFundraiserOnly)
	}

	var args addDonationArgs
	decodeArgs(call.Arguments, &args)

	if args.Amount.String() == "" || args.Amount.String() == "0" {
		return errResult(msgNeedAmount)
	}
	if args.DonorName == "" {
		return errResult(msgNeedDonorName)
	}

	campaignID := args.CampaignID
	if campaignID == 0 {
		campaignID = sess.CampaignID
	}
	fundraiserPhone := args.FundraiserPhone
	if fundraiserPhone == "" {
		fundraiserPhone = sess.CallerPhone
	}
	payments := args.NumberOfPayments
	if payments == 0 {
		payments = 1
	}

	donation := ledger.Donation{
		CampaignID:       campaignID,
		Amount:           args.Amount,
		DonorName:        args.DonorName,
		FundraiserPhone:  fundraiserPhone,
		NumberOfPayments: payments,
		HasPaymentMethod: true,
	}
	if args.IsUnlimited != nil {
		donation.IsUnlimited = *args.IsUnlimited
	}
	if args.HasPaymentMethod != nil {
		donation.HasPaymentMethod = *args.HasPaymentMethod
	}

	receipt, err := d.ledger.AddDonation(ctx, donation)
	if err != nil {
		var apiErr *ledger.APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = msgUnknownError
			}
			return encodeResult(addDonationResult{
				Success:   false,
				DonorName: args.DonorName,
				Amount:    args.Amount.String(),
				Error:     fmt.Sprintf("לא הצלחתי לרשום את התרומה. %s", message),
			})
		}
		return transientFailure(ctx, "add_donation", err)
	}

	if id, ok := receipt.DonationID.Int(); ok {
		logger.InfoContext(ctx, "donation recorded", "donation_id", id, "donor", args.DonorName)
	} else {
		logger.WarnContext(ctx, "donation accepted without an id", "donor", args.DonorName)
	}

	spoken := hebrew.AmountSpoken(args.Amount.String())
	return encodeResult(addDonationResult{
		Success:         true,
		DonorName:       args.DonorName,
		Amount:          args.Amount.String(),
		AmountFormatted: args.Amount.String() + " שקלים",
		AmountSpoken:    spoken,
		Message:         fmt.Sprintf("התרומה נרשמה בהצלחה: %s על שם %s", spoken, args.DonorName),
	})
}

// decodeArgs tolerates malformed argument payloads; a tool missing a
// required argument reports that itself.
func decodeArgs(raw string, out any) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Warn("failed to decode tool arguments, treating as empty", "error", err)
	}
}

func isBackendReported(err error) bool {
	var apiErr *ledger.APIError
	return errors.As(err, &apiErr)
}

func transientFailure(ctx context.Context, tool string, err error) Result {
	logger.ErrorContext(ctx, "tool backend call failed", "tool", tool, "error", err)
	return Result{Output: msgTransientFailure}
}

func errResult(message string) Result {
	return Result{Output: encode(errorResult{Error: message})}
}

func encodeResult[T any](result T) Result {
	return Result{Output: encode(result)}
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return msgSomethingWentWrong
	}
	return string(b)
}
