package natsbus

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

// loopback delivers published messages straight to the subscribed handler
type loopback struct {
	handler nats.MsgHandler
	subject string
}

func (l *loopback) Publish(subject string, data []byte) error {
	if l.handler != nil {
		l.handler(&nats.Msg{Subject: subject, Data: data})
	}
	return nil
}

func (l *loopback) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	l.subject = subject
	l.handler = cb
	return nil, nil
}

type BusSuite struct {
	suite.Suite
	conn  *loopback
	local *events.Recorder
	event model.TableEvent
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func (s *BusSuite) SetupTest() {
	s.conn = &loopback{}
	s.local = &events.Recorder{}
	s.event = model.TableEvent{
		Type:      model.EventRoundDealt,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		TableID:   "t1",
		PlayerID:  "p1",
		Action:    model.ActionBet,
		Round:     1,
		Phase:     model.PhaseActing,
	}
}

func (s *BusSuite) TestSubject() {
	s.Equal("bj.table.abc", Subject("abc"))
}

func (s *BusSuite) TestRelaysEventsFromOtherInstances() {
	receiver := New(s.conn, "instance-b", s.local, testutil.NopLogger())
	s.Require().NoError(receiver.Start())
	s.Equal("bj.table.*", s.conn.subject)

	sender := New(s.conn, "instance-a", events.Nop{}, testutil.NopLogger())
	sender.Publish(context.Background(), s.event)

	got := s.local.Events()
	s.Require().Len(got, 1)
	s.Equal(s.event.Type, got[0].Type)
	s.Equal(s.event.TableID, got[0].TableID)
	s.Equal(s.event.Round, got[0].Round)
	s.True(s.event.Timestamp.Equal(got[0].Timestamp))
}

func (s *BusSuite) TestIgnoresOwnEvents() {
	bus := New(s.conn, "instance-a", s.local, testutil.NopLogger())
	s.Require().NoError(bus.Start())

	bus.Publish(context.Background(), s.event)

	s.Empty(s.local.Events())
}

func (s *BusSuite) TestDropsMalformedAndMismatchedMessages() {
	bus := New(s.conn, "instance-b", s.local, testutil.NopLogger())
	s.Require().NoError(bus.Start())

	s.conn.handler(&nats.Msg{Subject: "bj.table.t1", Data: []byte("not json")})
	s.conn.handler(&nats.Msg{Subject: "bj.table.t2", Data: []byte(`{"origin":"x","event":{"TableID":"t1"}}`)})

	s.Empty(s.local.Events())
}

func (s *BusSuite) TestStopWithoutStart() {
	bus := New(s.conn, "instance-a", s.local, testutil.NopLogger())
	s.NoError(bus.Stop())
}
