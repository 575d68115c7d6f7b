package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/myshop/pkg/event"
)

type stockAlert struct {
	ProductID uint
	Stock     int
}

func TestFireDispatchesInRegistrationOrder(t *testing.T) {
	t.Cleanup(event.Flush)

	var got []int
	event.Listen("order.test", func(interface{}) { got = append(got, 1) })
	event.Listen("order.test", func(interface{}) { got = append(got, 2) })

	event.Fire("order.test", nil)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("dispatch order = %v, want [1 2]", got)
	}
}

func TestOnIgnoresMismatchedPayloads(t *testing.T) {
	t.Cleanup(event.Flush)

	var calls int
	event.On("typed.test", func(a stockAlert) {
		calls++
		if a.ProductID != 7 {
			t.Errorf("product_id = %d, want 7", a.ProductID)
		}
	})

	event.Fire("typed.test", "not an alert")
	event.Fire("typed.test", stockAlert{ProductID: 7, Stock: 2})

	if calls != 1 {
		t.Errorf("typed handler ran %d times, want 1", calls)
	}
}

func TestFlushDrainsAsyncHandlers(t *testing.T) {
	var done atomic.Int32
	event.Listen("async.test", func(interface{}) {
		time.Sleep(20 * time.Millisecond)
		done.Add(1)
	})

	event.FireAsync("async.test", nil)
	event.FireAsync("async.test", nil)
	event.Flush()

	if n := done.Load(); n != 2 {
		t.Errorf("handlers completed before Flush returned = %d, want 2", n)
	}
	event.Fire("async.test", nil)
	if n := done.Load(); n != 2 {
		t.Error("Flush did not remove listeners")
	}
}
