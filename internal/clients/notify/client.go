package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/infra/httpclient"
)

// Client talks to the notifications collaborator service. Every method maps
// to one templated email; failures are for the caller to log and swallow,
// notifications never gate a state change.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) send(ctx context.Context, template string, payload map[string]any) error {
	body := map[string]any{
		"template": template,
		"data":     payload,
	}
	if err := httpclient.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/notifications/email", body, nil); err != nil {
		return fmt.Errorf("send %s notification: %w", template, err)
	}
	return nil
}

func (c *Client) ClaimCreated(ctx context.Context, respondentID, claimID, serviceTitle string) error {
	return c.send(ctx, "claim_created", map[string]any{
		"user_id":       respondentID,
		"claim_id":      claimID,
		"service_title": serviceTitle,
	})
}

func (c *Client) ClaimReceived(ctx context.Context, claimantID, claimID, serviceTitle string) error {
	return c.send(ctx, "claim_received", map[string]any{
		"user_id":       claimantID,
		"claim_id":      claimID,
		"service_title": serviceTitle,
	})
}

// ClaimAwaitingModeration lands in the moderation team's shared inbox, not a
// user's mailbox, so it carries no recipient.
func (c *Client) ClaimAwaitingModeration(ctx context.Context, claimID, serviceTitle string) error {
	return c.send(ctx, "claim_awaiting_moderation", map[string]any{
		"claim_id":      claimID,
		"service_title": serviceTitle,
	})
}

func (c *Client) ClaimObservations(ctx context.Context, claimantID, claimID, observations string) error {
	return c.send(ctx, "claim_observations", map[string]any{
		"user_id":      claimantID,
		"claim_id":     claimID,
		"observations": observations,
	})
}

func (c *Client) ClaimClarification(ctx context.Context, moderatorID, claimID string) error {
	return c.send(ctx, "claim_clarification", map[string]any{
		"user_id":  moderatorID,
		"claim_id": claimID,
	})
}

func (c *Client) RespondentObservations(ctx context.Context, moderatorID, claimID string) error {
	return c.send(ctx, "claim_respondent_observations", map[string]any{
		"user_id":  moderatorID,
		"claim_id": claimID,
	})
}

func (c *Client) ClaimResolved(ctx context.Context, userID, claimID, resolutionType string) error {
	return c.send(ctx, "claim_resolved", map[string]any{
		"user_id":         userID,
		"claim_id":        claimID,
		"resolution_type": resolutionType,
	})
}

func (c *Client) ClaimCancelled(ctx context.Context, userID, claimID string) error {
	return c.send(ctx, "claim_cancelled", map[string]any{
		"user_id":  userID,
		"claim_id": claimID,
	})
}

func (c *Client) ComplianceAssigned(ctx context.Context, userID, complianceID, instructions string, deadline time.Time) error {
	return c.send(ctx, "compliance_assigned", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"instructions":  instructions,
		"deadline":      deadline.Format(time.RFC3339),
	})
}

func (c *Client) ComplianceSubmitted(ctx context.Context, counterpartyID, complianceID string) error {
	return c.send(ctx, "compliance_submitted", map[string]any{
		"user_id":       counterpartyID,
		"compliance_id": complianceID,
	})
}

func (c *Client) PeerReviewResult(ctx context.Context, userID, complianceID string, approved bool, reason string) error {
	return c.send(ctx, "compliance_peer_review", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"approved":      approved,
		"reason":        reason,
	})
}

func (c *Client) ModeratorReviewResult(ctx context.Context, userID, complianceID, decision string, notes string) error {
	return c.send(ctx, "compliance_moderator_review", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"decision":      decision,
		"notes":         notes,
	})
}

func (c *Client) DeadlineReminder(ctx context.Context, userID, complianceID string, deadline time.Time) error {
	return c.send(ctx, "compliance_deadline_reminder", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"deadline":      deadline.Format(time.RFC3339),
	})
}

func (c *Client) EscalationWarning(ctx context.Context, userID, complianceID string, warningLevel int, newDeadline time.Time) error {
	return c.send(ctx, "compliance_escalation_warning", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"warning_level": warningLevel,
		"deadline":      newDeadline.Format(time.RFC3339),
	})
}

func (c *Client) ComplianceEscalated(ctx context.Context, userID, complianceID string) error {
	return c.send(ctx, "compliance_escalated", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
	})
}

func (c *Client) NonComplianceNotice(ctx context.Context, userID, complianceID string, warningLevel int) error {
	return c.send(ctx, "non_compliance_notice", map[string]any{
		"user_id":       userID,
		"compliance_id": complianceID,
		"warning_level": warningLevel,
	})
}
