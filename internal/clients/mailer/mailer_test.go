package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("Sua Análise de Portfólio", "# Resumo\n\n**Diversificação** adequada.\n\n- PETR4\n- MXRF11\n")
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>Sua Análise de Portfólio</h2>")
	assert.Contains(t, html, "<h1>Resumo</h1>")
	assert.Contains(t, html, "<strong>Diversificação</strong>")
	assert.Contains(t, html, "<li>PETR4</li>")
}

func TestRenderHTML_EscapesRawHTML(t *testing.T) {
	html, err := RenderHTML("x", "<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestHeadingFor(t *testing.T) {
	assert.Equal(t, "Sua Análise de Portfólio", headingFor("Sua Análise de Portfólio - Invest-AI"))
	assert.Equal(t, "Your Portfolio Analysis", headingFor("Your Portfolio Analysis - Invest-AI"))
	assert.Equal(t, "Plain", headingFor("Plain"))
}

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(Config{Host: "smtp.example.com", Port: 587, Sender: "bot@example.com", Password: "x"}, zerolog.Nop())

	var sent *mail.Msg
	n.send = func(_ context.Context, m *mail.Msg) error {
		sent = m
		return nil
	}

	require.NoError(t, n.Send(context.Background(), "ana@example.com", "Sua Análise de Portfólio - Invest-AI", "**ok**"))
	require.NotNil(t, sent)
	rcpts, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, rcpts)
}

func TestSMTPNotifier_SendErrors(t *testing.T) {
	n := NewSMTPNotifier(Config{Host: "smtp.example.com", Port: 587, Sender: "bot@example.com"}, zerolog.Nop())
	n.send = func(context.Context, *mail.Msg) error { return errors.New("connection refused") }

	err := n.Send(context.Background(), "ana@example.com", "s", "b")
	assert.Error(t, err)

	err = n.Send(context.Background(), "not an address", "s", "b")
	assert.Error(t, err)
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, NewNoopNotifier(zerolog.Nop()).Send(context.Background(), "a@b.c", "s", "b"))
}
