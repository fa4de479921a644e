package console

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/notifier"
)

// CommandKind names a console command.
type CommandKind string

const (
	CmdSetFacet     CommandKind = "set-facet"
	CmdRefresh      CommandKind = "refresh"
	CmdUpdateStatus CommandKind = "update-status"
	CmdPushEvent    CommandKind = "push-event"
)

// Command is one operator or push-channel input.
type Command struct {
	Kind CommandKind

	// set-facet
	Facet string // "department", "urgency" or "status"
	Value string

	// update-status
	ComplaintID string
	Status      complaint.Status
	Reason      string

	// push-event
	Event string
}

// EffectKind names a side effect the caller should surface.
type EffectKind string

const (
	EffectRefresh      EffectKind = "refresh"
	EffectPromptReason EffectKind = "prompt-reason"
	EffectReportError  EffectKind = "report-error"
)

// Effect is a UI-free description of what the command caused.
type Effect struct {
	Kind    EffectKind
	Message string
}

// Dispatch runs one command against the view and returns the effects it
// produced. It never blocks on UI: when a reject needs a reason and no
// prompter is configured, it returns a prompt-reason effect instead of
// sending anything upstream.
func (c *Console) Dispatch(ctx context.Context, cmd Command) ([]Effect, error) {
	switch cmd.Kind {
	case CmdSetFacet:
		return c.dispatchSetFacet(cmd)

	case CmdRefresh:
		if err := c.Refresh(ctx); err != nil {
			return []Effect{{Kind: EffectReportError, Message: err.Error()}}, err
		}
		return nil, nil

	case CmdUpdateStatus:
		if cmd.Status == complaint.StatusRejected && cmd.Reason == "" && c.prompt == nil {
			return []Effect{{Kind: EffectPromptReason, Message: cmd.ComplaintID}}, nil
		}
		if err := c.UpdateStatus(ctx, cmd.ComplaintID, cmd.Status, cmd.Reason); err != nil {
			return []Effect{{Kind: EffectReportError, Message: err.Error()}}, err
		}
		return []Effect{{Kind: EffectRefresh}}, nil

	case CmdPushEvent:
		if cmd.Event == notifier.EventNewComplaint {
			c.trigger()
			return []Effect{{Kind: EffectRefresh}}, nil
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

func (c *Console) dispatchSetFacet(cmd Command) ([]Effect, error) {
	switch cmd.Facet {
	case "department":
		if err := c.SetDepartment(cmd.Value); err != nil {
			return []Effect{{Kind: EffectReportError, Message: err.Error()}}, err
		}
		return nil, nil
	case "urgency":
		c.SetUrgency(cmd.Value)
		return nil, nil
	case "status":
		c.SetStatus(cmd.Value)
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown facet %q", cmd.Facet)
	}
}
