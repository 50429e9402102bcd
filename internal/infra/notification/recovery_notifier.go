// Package notification renders outbound messages and hands them to the event publisher.
package notification

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"energyfit/config"
	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/service"
	"energyfit/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const defaultRecoverySubject = "Instruções de recuperação de senha - EnergyFit"

var recoveryHTML = htmltemplate.Must(htmltemplate.New("recovery.html").Parse(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
  <div style="background-color: #000; color: #fff; padding: 20px; text-align: center;">
    <h1>EnergyFit</h1>
  </div>
  <div style="padding: 20px; border: 1px solid #ddd;">
    <h2 style="color: #000;">Olá, {{.Name}}!</h2>
    <p>Recebemos sua solicitação de recuperação de senha.</p>
    <p>Siga os passos:</p>
    <ol>
      <li>Acesse: <a href="{{.ResetURL}}" target="_blank">{{.ResetURL}}</a></li>
      <li>Informe o token: {{.Token}}</li>
      <li>Informe a nova senha</li>
    </ol>
    <hr>
    <p style="font-size: 12px; color: #777;">Este é um e-mail automático.</p>
  </div>
</div>`))

var recoveryText = texttemplate.Must(texttemplate.New("recovery.txt").Parse(`Olá, {{.Name}}!

Recebemos sua solicitação de recuperação de senha.
1. Acesse: {{.ResetURL}}
2. Informe o token: {{.Token}}
3. Informe a nova senha

Este é um e-mail automático.
`))

type recoveryData struct {
	Name     string
	ResetURL string
	Token    string
}

// RecoveryNotifierParams holds dependencies for the recovery notifier, injected by Fx
type RecoveryNotifierParams struct {
	fx.In

	Config    *config.Config
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

type recoveryNotifier struct {
	publisher service.EventPublisher
	logger    *slog.Logger
	from      string
	subject   string
	resetURL  string
}

// NewRecoveryNotifier builds the RecoveryNotifier that emails recovery instructions.
func NewRecoveryNotifier(params RecoveryNotifierParams) service.RecoveryNotifier {
	notifier := &recoveryNotifier{
		publisher: params.Publisher,
		logger:    params.Logger,
		subject:   defaultRecoverySubject,
	}
	if params.Config.Mail != nil {
		notifier.from = params.Config.Mail.From
		if params.Config.Mail.Subject != "" {
			notifier.subject = params.Config.Mail.Subject
		}
	}
	if params.Config.Auth != nil {
		notifier.resetURL = params.Config.Auth.RecoveryBaseURL
	}

	return notifier
}

// SendRecoveryInstructions renders the message and publishes it as an EmailEvent.
func (n *recoveryNotifier) SendRecoveryInstructions(ctx context.Context, email, name, token string) error {
	data := recoveryData{Name: name, ResetURL: n.resetURL, Token: token}

	var html bytes.Buffer
	if err := recoveryHTML.Execute(&html, data); err != nil {
		return errors.Wrap(err, "failed to render recovery html")
	}

	var text bytes.Buffer
	if err := recoveryText.Execute(&text, data); err != nil {
		return errors.Wrap(err, "failed to render recovery text")
	}

	event := &service.EmailEvent{
		MessageID: uuid.NewString(),
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		To:        email,
		From:      n.from,
		Subject:   n.subject,
		Text:      text.String(),
		HTML:      html.String(),
	}

	if err := n.publisher.PublishEmailEvent(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish recovery email")
	}

	deliverycontext.GetLoggerOrDefault(ctx, n.logger).InfoContext(ctx, "Recovery instructions dispatched",
		slog.String("email", email),
		slog.String("message_id", event.MessageID),
	)

	return nil
}
