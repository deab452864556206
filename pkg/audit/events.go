package audit

import (
	"fmt"
	"strconv"
)

// VisitorCreateEvent is emitted when a submitted name is stored for the
// first time
type VisitorCreateEvent struct {
	VisitorID int64
	Username  string
	ClientIP  string
}

func (e VisitorCreateEvent) MessageID() string {
	return "visitor-create"
}

func (e VisitorCreateEvent) Message() string {
	return fmt.Sprintf("new visitor %s registered", e.Username)
}

func (e VisitorCreateEvent) Severity() Severity {
	return SeverityNotice
}

func (e VisitorCreateEvent) Facility() int {
	return FacilityUser
}

func (e VisitorCreateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDVisitor: {
			"id":       strconv.FormatInt(e.VisitorID, 10),
			"username": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "create",
			"result":    "success",
		},
	}
}

// VisitorRecognizeEvent is emitted when a submitted name is already stored
type VisitorRecognizeEvent struct {
	VisitorID int64
	Username  string
	ClientIP  string
}

func (e VisitorRecognizeEvent) MessageID() string {
	return "visitor-recognize"
}

func (e VisitorRecognizeEvent) Message() string {
	return fmt.Sprintf("known visitor %s returned", e.Username)
}

func (e VisitorRecognizeEvent) Severity() Severity {
	return SeverityInfo
}

func (e VisitorRecognizeEvent) Facility() int {
	return FacilityUser
}

func (e VisitorRecognizeEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDVisitor: {
			"id":       strconv.FormatInt(e.VisitorID, 10),
			"username": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "recognize",
			"result":    "success",
		},
	}
}

// NotifyEvent records an attempt to send a notification email
type NotifyEvent struct {
	Recipient    string
	Template     string
	Username     string
	Success      bool
	ErrorMessage string
}

func (e NotifyEvent) MessageID() string {
	return "notify"
}

func (e NotifyEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("sent %s to %s for %s", e.Template, e.Recipient, e.Username)
	}
	msg := fmt.Sprintf("failed to send %s to %s for %s", e.Template, e.Recipient, e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e NotifyEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e NotifyEvent) Facility() int {
	return FacilityMail
}

func (e NotifyEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDMail: {
			"recipient": e.Recipient,
			"template":  e.Template,
		},
		SDIDVisitor: {
			"username": e.Username,
		},
		SDIDAction: {
			"operation": "notify",
			"result":    result,
		},
	}
}
