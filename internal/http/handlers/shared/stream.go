package shared

import (
	"io"
	"time"

	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHeartbeat = 25 * time.Second

// StreamChannel 订阅频道并以 SSE 推送消息，客户端断开后退出。
func StreamChannel(c *gin.Context, broker realtime.Broker, channel string, heartbeat time.Duration) {
	if broker == nil {
		RespondError(c, response.CodeInternal, "error.realtime_unavailable", nil)
		return
	}
	ctx := c.Request.Context()
	sub, err := broker.Subscribe(ctx, channel)
	if err != nil {
		RespondError(c, response.CodeInternal, "error.realtime_unavailable", err)
		return
	}
	defer sub.Close()

	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	clientID := uuid.NewString()
	log := RequestLog(c)
	log.Debugw("realtime_stream_open", "channel", channel, "client_id", clientID)
	defer log.Debugw("realtime_stream_closed", "channel", channel, "client_id", clientID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"client_id": clientID, "channel": channel})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(msg.Event, string(msg.Data))
			return true
		case now := <-ticker.C:
			c.SSEvent("heartbeat", now.Unix())
			return true
		}
	})
}
