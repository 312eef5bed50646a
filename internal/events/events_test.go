package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	got []Event
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	e := New(TopicIBStatus, "approved", "ib-1", map[string]string{"status": "approved"})

	assert.NoError(t, Multi{a, NoopPublisher{}, b}.Publish(context.Background(), e))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Equal(t, "ib-1", b.got[0].IBRequestID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("broker down")
	a, b := &recordingPublisher{err: boom}, &recordingPublisher{}

	err := Multi{a, b}.Publish(context.Background(), New(TopicWithdrawals, "created", "ib-2", nil))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.got, 1)
}
