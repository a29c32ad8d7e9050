// Package verifier decides whether a Telegram user belongs to every
// registered channel.
//
// Each verification reads the channel list once and issues one getChatMember
// lookup per channel, sequentially and paced by a rate limiter. A channel
// counts as joined only for an allow-set of member statuses; anything else,
// including transport errors and malformed envelopes, classifies the channel
// as missing (fail closed per channel) without aborting the remaining
// checks.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
	"github.com/pulsescalp/channel-gate/internal/platform/config"
	"github.com/pulsescalp/channel-gate/internal/platform/observability"
	db "github.com/pulsescalp/channel-gate/internal/storage"
)

// Member statuses accepted by the gate. "restricted" additionally requires
// the explicit is_member flag on the response.
const (
	statusCreator       = "creator"
	statusAdministrator = "administrator"
	statusMember        = "member"
	statusRestricted    = "restricted"
)

// MembershipAPI is the slice of the bot API the verifier needs. It is
// satisfied by *tgbotapi.BotAPI.
type MembershipAPI interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Detail is the per-channel diagnostic record of one verification.
type Detail struct {
	Status   string          `json:"status,omitempty"`
	IsMember bool            `json:"isMember"`
	OK       bool            `json:"ok"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Check is the aggregated result of one verification. OK holds the channels
// the user is confirmed a member of, Missing everything else, including
// channels whose lookup could not be completed.
type Check struct {
	OK      []db.Channel      `json:"ok"`
	Missing []db.Channel      `json:"missing"`
	Details map[string]Detail `json:"details"`
}

// Passed reports the overall gate decision.
func (c Check) Passed() bool {
	return len(c.Missing) == 0
}

type Verifier struct {
	store   *db.Store
	api     MembershipAPI
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	logger  *zerolog.Logger
}

func New(cfg *config.Config, store *db.Store, api MembershipAPI, logger *zerolog.Logger) *Verifier {
	return &Verifier{
		store:   store,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(cfg.LookupRPS), cfg.LookupBurst),
		retries: cfg.LookupRetries,
		backoff: cfg.LookupRetryBackoff,
		logger:  logger,
	}
}

// Verify checks the user against every registered channel. With zero
// configured channels it returns an all-empty result: no configuration
// means no membership requirement. The only error paths are a store read
// failure and context cancellation; individual lookup failures are data,
// not errors.
func (v *Verifier) Verify(ctx context.Context, userID int64) (Check, error) {
	start := time.Now()

	channels, err := v.store.GetChannels(ctx)
	if err != nil {
		return Check{}, err
	}

	check := Check{
		OK:      []db.Channel{},
		Missing: []db.Channel{},
		Details: map[string]Detail{},
	}

	for _, ch := range channels {
		if err := v.limiter.Wait(ctx); err != nil {
			return Check{}, err
		}

		detail := v.lookup(ctx, ch.ID, userID)
		check.Details[ch.ID] = detail

		if detail.IsMember {
			check.OK = append(check.OK, ch)
			observability.MembershipLookups.WithLabelValues(observability.OutcomeMember).Inc()

			continue
		}

		check.Missing = append(check.Missing, ch)

		if detail.Error != "" {
			observability.MembershipLookups.WithLabelValues(observability.OutcomeError).Inc()
		} else {
			observability.MembershipLookups.WithLabelValues(observability.OutcomeNotMember).Inc()
		}
	}

	observability.VerificationDuration.Observe(time.Since(start).Seconds())

	result := observability.ResultFail
	if check.Passed() {
		result = observability.ResultPass
	}

	if len(channels) > 0 {
		observability.Verifications.WithLabelValues(result).Inc()
	}

	v.logger.Debug().
		Int64("user_id", userID).
		Int("channels", len(channels)).
		Int("missing", len(check.Missing)).
		Msg("membership verification completed")

	return check, nil
}

// lookup runs one getChatMember call, retrying transport-level failures up
// to the configured budget. A well-formed rejection from the API (e.g. user
// not found, bot not in channel) is a definitive answer and is never
// retried.
func (v *Verifier) lookup(ctx context.Context, channelID string, userID int64) Detail {
	params := tgbotapi.Params{}
	params.AddNonEmpty("chat_id", channelID)
	params.AddNonZero64("user_id", userID)

	var (
		resp *tgbotapi.APIResponse
		err  error
	)

	for attempt := 0; ; attempt++ {
		resp, err = v.api.MakeRequest("getChatMember", params)
		if err == nil || isAPIError(err) || attempt >= v.retries {
			break
		}

		v.logger.Warn().Err(err).Str("channel_id", channelID).Int("attempt", attempt+1).
			Msg("membership lookup transport failure, retrying")

		select {
		case <-ctx.Done():
			return Detail{Error: ctx.Err().Error()}
		case <-time.After(v.backoff):
		}
	}

	if err != nil {
		detail := Detail{Error: err.Error()}
		if resp != nil {
			detail.Raw = resp.Result
		}

		return detail
	}

	if resp == nil {
		return Detail{Error: apperrors.ErrEmptyResponse.Error()}
	}

	if !resp.Ok {
		return Detail{Error: apperrors.ErrLookupFailed.Error(), Raw: resp.Result}
	}

	var member struct {
		Status   string `json:"status"`
		IsMember bool   `json:"is_member"`
	}

	if err := json.Unmarshal(resp.Result, &member); err != nil {
		return Detail{Error: err.Error(), Raw: resp.Result}
	}

	isMember := classifyStatus(member.Status, member.IsMember)

	return Detail{
		Status:   member.Status,
		IsMember: isMember,
		OK:       isMember,
		Raw:      resp.Result,
	}
}

// classifyStatus applies the membership allow-set.
func classifyStatus(status string, isMember bool) bool {
	switch status {
	case statusCreator, statusAdministrator, statusMember:
		return true
	case statusRestricted:
		return isMember
	default:
		return false
	}
}

func isAPIError(err error) bool {
	var tgErr *tgbotapi.Error

	return errors.As(err, &tgErr)
}
