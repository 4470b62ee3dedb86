package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

// EscalationMailParams feeds the escalation notification template.
type EscalationMailParams struct {
	DisplayName     string
	DaysSince       string // preformatted, e.g. "3.2"
	LastCheckInDate string // "2006-01-02", empty when unknown
	BrandingName    string
}

var (
	escalationTemplate = template.New("escalation")

	//go:embed templates/escalation.html
	escalationTemplateRaw string
)

func init() {
	if _, err := escalationTemplate.Parse(escalationTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

// RenderEscalation produces the HTML body for a missed-check-in alert.
func RenderEscalation(p EscalationMailParams) (string, error) {
	return render(escalationTemplate, p)
}

// EscalationSubject produces the subject line for a missed-check-in alert.
func EscalationSubject(displayName string) string {
	if displayName == "" {
		displayName = "A person you know"
	}
	return fmt.Sprintf("%s may need attention", displayName)
}
