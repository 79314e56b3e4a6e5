// Package notifications delivers push notifications for pipeline milestones
// via ntfy. Per-event preferences in the notifications config section gate
// the chattier events; errors and review routing default on.
package notifications
