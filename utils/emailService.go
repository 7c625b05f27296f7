package utils

import (
	"fmt"
	"html"
	"time"

	"learnhub/config"
	"learnhub/models"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// emailTransport delivers a rendered message. Tests replace it.
var emailTransport = sendgridTransport

func sendgridTransport(to []string, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SendgridAPIKey == "" {
		log.Debug().Strs("to", to).Str("subject", subject).Msg("email disabled, SENDGRID_API_KEY not set")
		return nil
	}

	from := mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender)
	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/html", htmlBody))

	client := sendgrid.NewSendClient(cfg.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendEmail sends one HTML email to every address in to.
func SendEmail(to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if err := emailTransport(to, subject, htmlBody); err != nil {
		log.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("Error sending email")
		return err
	}
	log.Debug().Strs("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A8A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2563EB; color: #FFFFFF; text-decoration: none; border-radius: 4px; }
			.info-box { background: #EFF6FF; padding: 15px; border-radius: 4px; border-left: 4px solid #2563EB; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LEARNHUB</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d LearnHub. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent, time.Now().Year())
}

// --- Triggers ---

// SendWelcomeEmail runs in the background.
func SendWelcomeEmail(user *models.User) {
	subject := "Welcome to LearnHub"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> account has been created.</p>
	`, html.EscapeString(user.Name), user.Role)
	if !user.IsActive() {
		body += `<div class="info-box">An administrator will review your account before you can sign in.</div>`
	}

	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// SendAccountStatusEmail runs in the background.
func SendAccountStatusEmail(user *models.User) {
	subject := "Your LearnHub account is " + user.Status
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account status is now <strong>%s</strong>.</p>
	`, html.EscapeString(user.Name), user.Status)

	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Account Update", body))
}

// SendEnrollmentEmail runs in the background.
func SendEnrollmentEmail(user *models.User, course *models.Course) {
	subject := "Course Enrollment Confirmation"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have enrolled in:</p>
		<div class="info-box"><strong>%s</strong></div>
	`, html.EscapeString(user.Name), html.EscapeString(course.Title))
	if !course.IsFree() {
		body += `<p>Course content unlocks once your payment is confirmed.</p>`
	}

	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Enrollment Successful!", body))
}

// SendContactEmail tells an admin about a new contact message.
func SendContactEmail(admin *models.User, contact *models.Contact) error {
	subject := "New contact message: " + contact.Subject
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> (%s) sent a message through the contact form.</p>
		<div class="info-box"><strong>%s</strong><br>%s</div>
	`, html.EscapeString(admin.Name), html.EscapeString(contact.Name), html.EscapeString(contact.Email),
		html.EscapeString(contact.Subject), html.EscapeString(contact.Message))

	return SendEmail([]string{admin.Email}, subject, getEmailTemplate("New Contact Message", body))
}

// SendWebinarRegistrationEmail runs in the background.
func SendWebinarRegistrationEmail(user *models.User, webinar *models.Webinar) {
	subject := "Registered: " + webinar.Title
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are registered for <strong>%s</strong>.</p>
		<div class="info-box">Starts %s (%d minutes)</div>
		<a href="%s" class="btn">Join link</a>
	`, html.EscapeString(user.Name), html.EscapeString(webinar.Title),
		webinar.StartTime.UTC().Format(time.RFC1123), webinar.Duration, html.EscapeString(webinar.Link))

	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Registration Confirmed", body))
}

// SendWebinarReminderEmail reminds one attendee of an upcoming webinar.
func SendWebinarReminderEmail(user *models.User, webinar *models.Webinar) error {
	subject := "Reminder: " + webinar.Title
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> starts soon.</p>
		<div class="info-box">Starts %s (%d minutes)</div>
		<a href="%s" class="btn">Join link</a>
	`, html.EscapeString(user.Name), html.EscapeString(webinar.Title),
		webinar.StartTime.UTC().Format(time.RFC1123), webinar.Duration, html.EscapeString(webinar.Link))

	return SendEmail([]string{user.Email}, subject, getEmailTemplate("Webinar Reminder", body))
}
