package domain

import (
	"strings"
	"time"
)

// Lifecycle transitions. Each one checks the source state before touching any
// field, so a failed transition leaves the item exactly as it was.
//
//	DRAFT -> PENDING_APPROVAL -> APPROVED -> PUBLISHED -> ARCHIVED
//	                          \-> REJECTED -> DRAFT

func (c *ContentItem) require(action string, from Status) error {
	if c.Status != from {
		return &InvalidTransitionError{Action: action, From: from, Actual: c.Status}
	}
	return nil
}

// SubmitForApproval issues token to approver and moves DRAFT -> PENDING_APPROVAL.
func (c *ContentItem) SubmitForApproval(token, approver string, now time.Time) error {
	if err := c.require("submit for approval", StatusDraft); err != nil {
		return err
	}
	c.Status = StatusPendingApproval
	c.ApprovalToken = &token
	c.SentForApprovalTo = approver
	c.SentForApprovalAt = &now
	c.RejectionReason = nil
	c.UpdatedAt = now
	return nil
}

// Approve moves PENDING_APPROVAL -> APPROVED and schedules the item.
func (c *ContentItem) Approve(by string, scheduledFor, now time.Time) error {
	if err := c.require("approve", StatusPendingApproval); err != nil {
		return err
	}
	c.Status = StatusApproved
	c.ApprovedBy = &by
	c.ScheduledFor = &scheduledFor
	if c.ApprovedAt == nil {
		c.ApprovedAt = &now
	}
	c.UpdatedAt = now
	return nil
}

// Reject moves PENDING_APPROVAL -> REJECTED, keeping the reviewer's reason.
func (c *ContentItem) Reject(reason string, now time.Time) error {
	if err := c.require("reject", StatusPendingApproval); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "no reason given"
	}
	c.Status = StatusRejected
	c.RejectionReason = &reason
	c.UpdatedAt = now
	return nil
}

// Revise re-opens a rejected item for editing.
func (c *ContentItem) Revise(now time.Time) error {
	if err := c.require("revise", StatusRejected); err != nil {
		return err
	}
	c.Status = StatusDraft
	c.RevisionCount++
	c.UpdatedAt = now
	return nil
}

// Publish moves APPROVED -> PUBLISHED. PublishedAt is written once.
func (c *ContentItem) Publish(now time.Time) error {
	if err := c.require("publish", StatusApproved); err != nil {
		return err
	}
	c.Status = StatusPublished
	if c.PublishedAt == nil {
		c.PublishedAt = &now
	}
	c.UpdatedAt = now
	return nil
}

// Archive moves PUBLISHED -> ARCHIVED; PublishedAt is preserved.
func (c *ContentItem) Archive(now time.Time) error {
	if err := c.require("archive", StatusPublished); err != nil {
		return err
	}
	c.Status = StatusArchived
	c.UpdatedAt = now
	return nil
}

// ApprovalTokenUsable reports whether the approval token may still drive a transition.
func (c *ContentItem) ApprovalTokenUsable() bool {
	return c.ApprovalToken != nil && c.Status == StatusPendingApproval
}

// Due reports whether the item should be picked up by a publication run at now.
func (c *ContentItem) Due(now time.Time) bool {
	return c.Status == StatusApproved && c.ScheduledFor != nil && !c.ScheduledFor.After(now)
}
