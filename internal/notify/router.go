package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"caisse/internal/model"
	"caisse/internal/outbox"

	"go.uber.org/zap"
)

// Route sends events matching Event to Channels. Event may be an exact type,
// a "prefix.*" or "*.suffix" pattern, or "*". Channels may contain {requester} and {actor}.
type Route struct {
	Event    string   `mapstructure:"event" json:"event"`
	Channels []string `mapstructure:"channels" json:"channels"`
}

// DefaultRoutes send everything to finance, rejections back to the requester and refused
// cash payments back to the finance user who attempted them.
func DefaultRoutes(financeChannel string) []Route {
	return []Route{
		{Event: "funding.*", Channels: []string{financeChannel}},
		{Event: "payment_request.*", Channels: []string{financeChannel}},
		{Event: "order.*", Channels: []string{financeChannel}},
		{Event: "payment.*", Channels: []string{financeChannel}},
		{Event: "*.rejected", Channels: []string{UserChannel("{requester}")}},
		{Event: "funding.approved", Channels: []string{UserChannel("{requester}")}},
		{Event: "funding.issue_reported", Channels: []string{UserChannel("{requester}")}},
		{Event: "payment.refused_insufficient_funds", Channels: []string{UserChannel("{actor}")}},
	}
}

// UserChannel is the private channel of one user.
func UserChannel(username string) string {
	return "user:" + username
}

// event is the part of an outbox payload the router reads.
type event struct {
	Type      string                 `json:"type"`
	Aggregate string                 `json:"aggregate"`
	Reference string                 `json:"reference"`
	Actor     string                 `json:"actor"`
	Data      map[string]interface{} `json:"data"`
	At        time.Time              `json:"occurred_at"`
}

type Router struct {
	routes   []Route
	notifier Notifier
	logger   *zap.Logger
}

func NewRouter(routes []Route, notifier Notifier, logger *zap.Logger) *Router {
	return &Router{routes: routes, notifier: notifier, logger: logger}
}

// Channels resolves the target channels of an event, without duplicates.
func (r *Router) Channels(eventType, requester, actor string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, route := range r.routes {
		if !matches(route.Event, eventType) {
			continue
		}
		for _, ch := range route.Channels {
			ch = strings.NewReplacer("{requester}", requester, "{actor}", actor).Replace(ch)
			if ch == "" || strings.HasSuffix(ch, ":") {
				continue
			}
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}
			out = append(out, ch)
		}
	}
	sort.Strings(out)
	return out
}

func matches(pattern, eventType string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(eventType, strings.TrimPrefix(pattern, "*"))
	default:
		return pattern == eventType
	}
}

// Handle is the outbox handler for the notify topic.
func (r *Router) Handle(ctx context.Context, row *model.OutboxEvent) error {
	var ev event
	if err := json.Unmarshal([]byte(row.Payload), &ev); err != nil {
		return fmt.Errorf("notify %s: %w", row.ID, errors.Join(outbox.ErrInvalidEvent, err))
	}

	requester, _ := ev.Data["requested_by"].(string)
	channels := r.Channels(ev.Type, requester, ev.Actor)
	if len(channels) == 0 {
		r.logger.Debug("no channel for event", zap.String("event", ev.Type))
		return nil
	}

	var errs []error
	for _, ch := range channels {
		err := r.notifier.Notify(ctx, Notification{
			Channel:  ch,
			EntityID: ev.Reference,
			Event:    ev.Type,
			Payload:  ev.Data,
			At:       ev.At,
		})
		if err != nil {
			r.logger.Warn("notification not delivered",
				zap.String("channel", ch),
				zap.String("event", ev.Type),
				zap.String("entity_id", ev.Reference),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send delivers a single message outside the routing table, e.g. operator alerts.
func (r *Router) Send(ctx context.Context, channel, entityID, eventType string, payload map[string]interface{}) error {
	return r.notifier.Notify(ctx, Notification{
		Channel:  channel,
		EntityID: entityID,
		Event:    eventType,
		Payload:  payload,
		At:       time.Now().UTC(),
	})
}

// OperatorAlerts sends failures of background work to the operator channel.
type OperatorAlerts struct {
	Router  *Router
	Channel string
}

func (a OperatorAlerts) Alert(ctx context.Context, entityID, reason string) error {
	return a.Router.Send(ctx, a.Channel, entityID, "sync.failed", map[string]interface{}{"reason": reason})
}
