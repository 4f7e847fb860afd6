package notifications

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newTestNotifier(t *testing.T) (*SMTPNotifier, *[]sentMail) {
	t.Helper()
	n, err := NewSMTPNotifier("smtp.example:2525", "user", "pass", "helpdesk@example.com", "admin@example.com")
	require.NoError(t, err)

	var sent []sentMail
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: msg})
		return nil
	}
	return n, &sent
}

func TestNewSMTPNotifier_MissingPort(t *testing.T) {
	_, err := NewSMTPNotifier("no-port", "u", "p", "from@x.com", "admin@x.com")
	require.Error(t, err)
}

func TestTicketCreated_GoesToAdmin(t *testing.T) {
	n, sent := newTestNotifier(t)

	ticket := &models.Ticket{ID: 7, Title: "Broken printer", Priority: models.PriorityHigh}
	owner := &models.User{Email: "a@x.com"}

	require.NoError(t, n.TicketCreated(context.Background(), ticket, owner))
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, "smtp.example:2525", m.addr)
	assert.Equal(t, []string{"admin@example.com"}, m.to)
	assert.Contains(t, string(m.msg), "Subject: New ticket #7")
	assert.Contains(t, string(m.msg), "Broken printer")
}

func TestTicketUpdated_GoesToOwner(t *testing.T) {
	n, sent := newTestNotifier(t)

	ticket := &models.Ticket{ID: 7, Title: "Broken printer", Status: models.StatusClosed}
	owner := &models.User{Email: "a@x.com", FullName: "Alice"}

	require.NoError(t, n.TicketUpdated(context.Background(), ticket, owner))
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, []string{"a@x.com"}, m.to)

	body := string(m.msg)
	assert.Contains(t, body, "Hello Alice,")
	assert.Contains(t, body, "closed")
}

func TestSend_FailurePropagates(t *testing.T) {
	n, _ := newTestNotifier(t)
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("relay refused")
	}

	err := n.TicketCreated(context.Background(), &models.Ticket{ID: 1}, &models.User{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "relay refused"))
}
