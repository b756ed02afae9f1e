// internals/features/visits/controller/stream_controller.go
package controller

import (
	"bufio"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"visitorku_backend/internals/features/visits/reconcile"
)

const streamKeepalive = 15 * time.Second

// StreamController pushes change-feed events to the dashboard over SSE.
// EventSource reconnects on its own, so a dropped stream (server write
// timeout, proxy hiccup) just costs the client a refresh.
type StreamController struct {
	Feed reconcile.Feed
}

func NewStreamController(feed reconcile.Feed) *StreamController {
	return &StreamController{Feed: feed}
}

// GET /api/a/visitor-registrations/stream
func (ctl *StreamController) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx: do not buffer the stream

	events, cancel := ctl.Feed.Subscribe()
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		keepalive := time.NewTicker(streamKeepalive)
		defer keepalive.Stop()

		for {
			select {
			case <-done:
				return
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case ev, ok := <-events:
				if !ok {
					return
				}
				payload, err := sonic.Marshal(ev)
				if err != nil {
					log.Printf("[ERROR] sse marshal: %v", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
