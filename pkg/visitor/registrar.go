package visitor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/notify"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
)

// Notification sent to the administrator for a new visitor
const (
	NewUserSubject  = "New User"
	NewUserTemplate = "mail/new_user"
)

// Registrar records visitors and notifies the administrator of new ones
type Registrar struct {
	visitors store.VisitorsStore
	notifier notify.Notifier
	admin    string
	audit    *audit.Logger
}

// NewRegistrar creates a Registrar. An empty admin disables notification.
func NewRegistrar(visitors store.VisitorsStore, notifier notify.Notifier, admin string, auditLogger *audit.Logger) *Registrar {
	return &Registrar{
		visitors: visitors,
		notifier: notifier,
		admin:    admin,
		audit:    auditLogger,
	}
}

// Register resolves name to a stored visitor, creating it if absent. The
// insert is committed before the administrator is notified.
func (r *Registrar) Register(ctx context.Context, name string) (Outcome, *model.Visitor, error) {
	v, created, err := r.visitors.EnsureVisitor(ctx, name)
	if errors.Is(err, store.ErrVisitorExists) {
		// lost the insert race against another submission
		v, err = r.visitors.FindVisitorByName(ctx, name)
		if err == nil && v == nil {
			err = fmt.Errorf("visitor %q exists but could not be read", name)
		}
		created = false
	}
	if err != nil {
		return OutcomeNew, nil, fmt.Errorf("register visitor: %w", err)
	}

	clientIP := audit.ClientIP(ctx)

	if !created {
		r.audit.Log(ctx, audit.VisitorRecognizeEvent{
			VisitorID: v.ID,
			Username:  v.Username,
			ClientIP:  clientIP,
		})
		return OutcomeKnown, v, nil
	}

	r.audit.Log(ctx, audit.VisitorCreateEvent{
		VisitorID: v.ID,
		Username:  v.Username,
		ClientIP:  clientIP,
	})
	r.notifyAdmin(ctx, v)

	return OutcomeNew, v, nil
}

func (r *Registrar) notifyAdmin(ctx context.Context, v *model.Visitor) {
	if r.admin == "" || r.notifier == nil {
		return
	}

	err := r.notifier.Notify(ctx, r.admin, NewUserSubject, NewUserTemplate, map[string]any{"User": v})

	event := audit.NotifyEvent{
		Recipient: r.admin,
		Template:  NewUserTemplate,
		Username:  v.Username,
		Success:   err == nil,
	}
	if err != nil {
		log.Printf("Failed to notify %s of new visitor %q: %v", r.admin, v.Username, err)
		event.ErrorMessage = err.Error()
	}
	r.audit.Log(ctx, event)
}
