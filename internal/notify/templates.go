package notify

import (
	"fmt"
	"html"
)

type message struct {
	Subject string
	HTML    string
	Text    string
}

func purchaseConfirmation(name, product, downloadURL string) message {
	n := html.EscapeString(name)
	p := html.EscapeString(product)

	var access, accessText string
	if downloadURL != "" {
		u := html.EscapeString(downloadURL)
		access = fmt.Sprintf(`
      <div style="margin: 25px 0; padding: 20px; background-color: #f8f9fa; border-radius: 5px; text-align: center; border: 1px solid #dee2e6;">
        <h3 style="margin-top: 0; color: #333;">Download Your Boilerplate</h3>
        <p style="color: #555; margin-bottom: 20px;">Click the button below to access the download page. Your download should start automatically.</p>
        <a href="%s" style="display: inline-block; background-color: #28a745; color: white; padding: 12px 25px; text-decoration: none; border-radius: 4px; font-weight: bold; font-size: 16px;">Download %s</a>
        <p style="margin-top: 20px; font-size: 0.9em; color: #6c757d;">This secure download link is unique to you and will expire in 7 days.</p>
      </div>
      <p style="color: #555;">Once downloaded, unzip the file and follow the instructions in the README to get started.</p>`, u, p)
		accessText = fmt.Sprintf("Download %s: %s\nThis secure download link is unique to you and will expire in 7 days.\n", product, downloadURL)
	} else {
		access = `
      <p style="color: #555;">You should receive access shortly. If you have any questions, please reply to this email.</p>`
		accessText = "You should receive access shortly. If you have any questions, please reply to this email.\n"
	}

	return message{
		Subject: fmt.Sprintf("Your purchase of %s is confirmed!", product),
		HTML: fmt.Sprintf(`
    <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
      <h2 style="color: #333;">Thank you for your purchase, %s!</h2>
      <p style="color: #555;">We're excited to confirm your purchase of <strong>%s</strong>.</p>
      %s
      <p style="color: #555; margin-top: 30px;">If you have any questions or need assistance, feel free to reply to this email.</p>
      <p style="color: #555; margin-top: 20px;">Best regards,<br>The Nuxtz Team</p>
    </div>`, n, p, access),
		Text: fmt.Sprintf("Thank you for your purchase, %s!\n\nWe're excited to confirm your purchase of %s.\n\n%s\nBest regards,\nThe Nuxtz Team\n", name, product, accessText),
	}
}

func waitlistConfirmation(email string) message {
	return message{
		Subject: "You've been added to our waitlist!",
		HTML: fmt.Sprintf(`
    <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
      <h2>You're on the list!</h2>
      <p>Thank you for joining our waitlist. We've registered <strong>%s</strong> and will notify you as soon as we have availability.</p>
      <p>Best regards,<br>The Nuxtz Team</p>
    </div>`, html.EscapeString(email)),
		Text: fmt.Sprintf("You're on the list!\n\nThank you for joining our waitlist. We've registered %s and will notify you as soon as we have availability.\n\nBest regards,\nThe Nuxtz Team\n", email),
	}
}
