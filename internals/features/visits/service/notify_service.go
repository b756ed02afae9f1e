package service

import (
	"fmt"
	"html"
	"log"
	"strings"

	"visitorku_backend/internals/configs"
	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/helpers/civiltime"
	"visitorku_backend/internals/helpers/mailer"
)

// NotifyService mails the front office (and, for staff visits, the named
// staff member) when a registration lands. It runs after the record is
// saved, so every failure here is logged and swallowed.
type NotifyService struct {
	mail mailer.Mailer
}

func NewNotifyService(mail mailer.Mailer) *NotifyService {
	return &NotifyService{mail: mail}
}

// NotifyStaff implements Notifier. staffEmail is empty unless the visitor
// picked the meeting-school-staff purpose.
func (n *NotifyService) NotifyStaff(rec reconcile.Record, staffEmail string) {
	recipients := recipientList(staffEmail)
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Visitor registered: %s", rec.VisitorName)
	body := buildNotifyBody(rec)

	var attachments []mailer.Attachment
	if rec.PictureURL != nil {
		att, err := mailer.FetchAttachment(*rec.PictureURL, "visitor-photo.webp")
		if err != nil {
			log.Printf("[WARN] notify: photo attachment skipped: %v", err)
		} else {
			attachments = append(attachments, *att)
		}
	}

	for _, to := range recipients {
		if err := n.mail.SendMail(to, subject, body, attachments); err != nil {
			log.Printf("[ERROR] notify %s: %v", to, err)
		}
	}
}

func recipientList(staffEmail string) []string {
	var out []string
	if e := strings.TrimSpace(configs.StaffNotifyEmail); e != "" {
		out = append(out, e)
	}
	if e := strings.TrimSpace(staffEmail); e != "" && !contains(out, e) {
		out = append(out, e)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func buildNotifyBody(rec reconcile.Record) string {
	var b strings.Builder
	b.WriteString("<h2>New visitor registration</h2>")
	b.WriteString("<table cellpadding=\"4\">")
	row := func(label, value string) {
		fmt.Fprintf(&b, "<tr><td><b>%s</b></td><td>%s</td></tr>", label, html.EscapeString(value))
	}
	row("Name", rec.VisitorName)
	row("Phone", rec.PhoneNumber)
	row("People", fmt.Sprintf("%d", rec.NumberOfPeople))
	row("Purpose", rec.Purpose)
	row("From", formatAddress(rec))
	row("Arrived", formatStored(rec.StartTime))
	if rec.EndTime != nil {
		row("Expected out", formatStored(*rec.EndTime))
	}
	b.WriteString("</table>")
	return b.String()
}

func formatAddress(rec reconcile.Record) string {
	parts := []string{}
	for _, p := range []string{rec.Address.City, rec.Address.State, rec.Address.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatStored renders a stored civil string as IST wall time for the mail.
func formatStored(stored string) string {
	t, err := civiltime.FromStored(stored)
	if err != nil {
		return stored
	}
	return t.In(civiltime.IST).Format("02 Jan 2006, 15:04")
}
