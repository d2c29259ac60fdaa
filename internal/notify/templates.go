package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/macspp/lead-intake/internal/leads"
)

// Business identifies the company the lead emails are sent on behalf of.
type Business struct {
	Name       string
	Phone      string
	OwnerEmail string
}

type emailView struct {
	Lead     *leads.Submission
	Project  string
	Business Business
}

var ownerEmailTemplate = template.Must(template.New("owner").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Lead.Name}}</p>
<p><strong>Email:</strong> {{.Lead.Email}}</p>
<p><strong>Phone:</strong> {{.Lead.Phone}}</p>
<p><strong>City:</strong> {{.Lead.City}}</p>
<p><strong>Project Type:</strong> {{.Project}}</p>
{{- if .Lead.Message}}
<p><strong>Message:</strong><br/>{{.Lead.Message}}</p>
{{- end}}
{{- if .Lead.UTMSource}}
<p><strong>Source:</strong> {{.Lead.UTMSource}}{{with .Lead.UTMMedium}} / {{.}}{{end}}{{with .Lead.UTMCampaign}} / {{.}}{{end}}</p>
{{- end}}
<hr/>
<p><small>Submitted from {{.Business.Name}} website</small></p>
`))

var customerEmailTemplate = template.Must(template.New("customer").Parse(`
<h2>Thank You for Your Quote Request!</h2>
<p>Hi {{.Lead.Name}},</p>
<p>We've received your request for a quote on your <strong>{{.Project}}</strong> project in {{.Lead.City}}.</p>
<p>Our team will review your information and contact you within 24 hours to discuss your project and provide a free, no-obligation estimate.</p>
<p><strong>What happens next?</strong></p>
<ul>
  <li>We'll call you at {{.Lead.Phone}} to schedule a convenient time</li>
  <li>We'll visit your property to assess the project</li>
  <li>You'll receive a detailed quote within 48 hours of our visit</li>
</ul>
{{- if .Business.Phone}}
<p>If you have any urgent questions, feel free to call us at <strong>{{.Business.Phone}}</strong>.</p>
{{- end}}
<p>Best regards,<br/>
The {{.Business.Name}} Team</p>
<hr/>
<p><small>{{.Business.Name}}{{with .Business.Phone}} | {{.}}{{end}}{{with .Business.OwnerEmail}} | {{.}}{{end}}</small></p>
`))

func renderHTML(tmpl *template.Template, sub *leads.Submission, business Business) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, emailView{Lead: sub, Project: sub.ProjectType.Label(), Business: business}); err != nil {
		return "", fmt.Errorf("notify: render %s email: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func ownerText(sub *leads.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	fmt.Fprintf(&b, "City: %s\n", sub.City)
	fmt.Fprintf(&b, "Project Type: %s\n", sub.ProjectType.Label())
	if sub.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", sub.Message)
	}
	return b.String()
}

func customerText(sub *leads.Submission, business Business) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", sub.Name)
	fmt.Fprintf(&b, "We've received your request for a quote on your %s project in %s.\n", sub.ProjectType.Label(), sub.City)
	b.WriteString("Our team will contact you within 24 hours to schedule a free estimate.\n")
	if business.Phone != "" {
		fmt.Fprintf(&b, "Questions? Call us at %s.\n", business.Phone)
	}
	fmt.Fprintf(&b, "\n%s\n", business.Name)
	return b.String()
}
