// Package notify sends notification emails.
//
// A notification is rendered from a template family under mail/: the
// markdown template is executed with text/template and used as the plain
// text body, and the same output is converted to HTML with goldmark for
// the alternative part. Messages are delivered over SMTP with go-mail.
//
// Delivery is best-effort: there is no queue and no retry. Failures of
// the SMTP exchange are reported wrapped in ErrTransport so callers can
// log them and carry on.
package notify
