package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
)

// Events streams change notifications as server-sent events so the renderer
// refreshes without polling.
func Events(c *gin.Context) {
	ch, cancel := getServices().Notifier.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
