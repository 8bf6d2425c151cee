package notification

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/engine/manager"
	"Go2FlavorSpectra/internal/model"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailNotifier_Validation(t *testing.T) {
	_, err := NewEmailNotifier(config.SMTPConfig{From: "a@b", To: "c@d"})
	assert.ErrorContains(t, err, "host")

	_, err = NewEmailNotifier(config.SMTPConfig{Host: "mail", To: "c@d"})
	assert.ErrorContains(t, err, "sender")

	_, err = NewEmailNotifier(config.SMTPConfig{Host: "mail", From: "a@b", To: " , "})
	assert.ErrorContains(t, err, "recipient")
}

func TestEmailNotifier_Send(t *testing.T) {
	n, err := NewEmailNotifier(config.SMTPConfig{Host: "mail.example.org", From: "bot@example.org", To: "a@example.org, b@example.org"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	var gotMsg string
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Equal(t, "bot@example.org", from)
		return nil
	}

	require.NoError(t, n.Send("hello", "<p>body</p>"))
	assert.Equal(t, "mail.example.org:25", gotAddr)
	assert.Equal(t, []string{"a@example.org", "b@example.org"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "To: a@example.org, b@example.org\r\n"))
	assert.Contains(t, gotMsg, "Subject: hello\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\n<p>body</p>"))

	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.ErrorContains(t, n.Send("hello", "x"), "failed to send email: refused")
}

type captureNotifier struct {
	subject, body string
}

func (c *captureNotifier) Send(subject, body string) error {
	c.subject, c.body = subject, body
	return nil
}

func TestSendReport(t *testing.T) {
	r := &manager.Report{
		Root:           "results",
		Variant:        model.VariantCombined,
		RunsSeen:       3,
		RunsAggregated: 2,
		Samples:        40,
		Skipped:        []manager.SkippedRun{{Run: model.RunID{Test: "t", Flavor: "reno"}, Kind: model.KindMalformedInput}},
	}
	c := &captureNotifier{}
	require.NoError(t, SendReport(c, r))
	assert.Equal(t, "FlavorSpectra aggregation: 40 samples, 1 of 3 runs skipped", c.subject)
	assert.Contains(t, c.body, "<code>malformed_input</code>: 1")

	assert.Equal(t, "FlavorSpectra aggregation: 5 samples from 1 runs", Subject(&manager.Report{Samples: 5, RunsAggregated: 1}))
	assert.Equal(t, "FlavorSpectra aggregation produced no samples (0 runs skipped)", Subject(&manager.Report{Empty: true}))
}
