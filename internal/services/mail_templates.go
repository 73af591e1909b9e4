package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/arnold/blueprint-api/internal/models"
)

var blueprintHTML = template.Must(template.New("blueprint").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #6366f1 0%, #8b5cf6 100%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
      <h1 style="color: white; margin: 0; font-size: 28px;">🎉 Your {{.Year}} Success Blueprint is Ready!</h1>
    </div>
    <div style="background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px;">
      <p style="font-size: 18px; margin-top: 0;">Hi {{.UserName}},</p>
      <p>Congratulations! Your personalized {{.Year}} Success Blueprint has been generated and is ready for download.</p>
      <div style="background: white; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #6366f1;">
        <h2 style="margin-top: 0; color: #6366f1;">What's Included:</h2>
        <ul style="padding-left: 20px;">
          <li>📄 Premium PDF with your complete plan</li>
          <li>📝 Notion template for progress tracking</li>
          <li>✅ All your goals, actions, and habits organized</li>
        </ul>
      </div>
      {{- if .PDF}}
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.PDF}}" style="display: inline-block; background: #6366f1; color: white; padding: 15px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 10px;">Download PDF</a>
      </div>
      {{- end}}
      {{- if .Notion}}
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.Notion}}" style="display: inline-block; background: #8b5cf6; color: white; padding: 15px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 10px;">Download Notion Template</a>
      </div>
      {{- end}}
      <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">If you have any questions or need support, please don't hesitate to reach out to us.</p>
      <p style="margin-top: 30px;">Here's to making {{.Year}} your best year yet! 🚀</p>
      <p style="margin-top: 20px;">Best regards,<br>The {{.Year}} Success Blueprint Team</p>
    </div>
  </body>
</html>
`))

type blueprintView struct {
	UserName string
	Year     int
	PDF      string
	Notion   string
}

func BlueprintSubject(year int) string {
	return fmt.Sprintf("Your %d Success Blueprint is Ready! 🎉", year)
}

// RenderBlueprintReady builds the subject and both bodies.
func RenderBlueprintReady(req models.SendEmailRequest) (Message, error) {
	view := blueprintView{UserName: req.UserName, Year: req.Year}
	if req.DownloadLinks != nil {
		view.PDF = req.DownloadLinks.PDF
		view.Notion = req.DownloadLinks.Notion
	}

	var html bytes.Buffer
	if err := blueprintHTML.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}

	return Message{
		To:      req.To,
		Subject: BlueprintSubject(req.Year),
		HTML:    html.String(),
		Text:    blueprintText(view),
	}, nil
}

func blueprintText(v blueprintView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Your %d Success Blueprint is Ready!\n\n", v.Year)
	fmt.Fprintf(&b, "Hi %s,\n\n", v.UserName)
	fmt.Fprintf(&b, "Congratulations! Your personalized %d Success Blueprint has been generated and is ready for download.\n\n", v.Year)
	b.WriteString("What's Included:\n")
	b.WriteString("- Premium PDF with your complete plan\n")
	b.WriteString("- Notion template for progress tracking\n")
	b.WriteString("- All your goals, actions, and habits organized\n\n")
	if v.PDF != "" {
		fmt.Fprintf(&b, "Download PDF: %s\n\n", v.PDF)
	}
	if v.Notion != "" {
		fmt.Fprintf(&b, "Download Notion Template: %s\n\n", v.Notion)
	}
	b.WriteString("If you have any questions or need support, please don't hesitate to reach out to us.\n\n")
	fmt.Fprintf(&b, "Here's to making %d your best year yet! 🚀\n\n", v.Year)
	b.WriteString("Best regards,\n")
	fmt.Fprintf(&b, "The %d Success Blueprint Team\n", v.Year)
	return b.String()
}
