package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/queue"
	"github.com/iliyamo/crm-service/internal/service/servicetest"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), "65a0000000000000000000ff")
	assert.Equal(t, "65a0000000000000000000ff", ActorFrom(ctx))
	assert.Empty(t, ActorFrom(context.Background()))
}

func TestUnresponsiveBrokerDoesNotStallWrites(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	pub := queue.NewAMQPPublisher("amqp://guest:guest@" + ln.Addr().String() + "/")
	svc := NewCustomerService(servicetest.NewCustomers(), servicetest.NewInteractions(), pub)

	start := time.Now()
	c, err := svc.Create(context.Background(), model.CustomerInput{Name: ptr("Acme")})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Less(t, elapsed, publishTimeout+time.Second)
}
