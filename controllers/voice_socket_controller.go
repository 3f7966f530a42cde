package controllers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zyncchat-api/services"
)

const (
	eventVoiceMessage = "voiceMessage"
	eventAIReply      = "aiReply"
	socketReplyFailed = "AI service failed. Please try again."

	socketReadLimit = 64 << 10
	socketPongWait  = 60 * time.Second
)

// VoiceReplier answers a transcribed utterance.
type VoiceReplier interface {
	Reply(ctx context.Context, text string) (string, error)
}

type socketFrame struct {
	Event string `json:"event"`
	Text  string `json:"text"`
}

type VoiceSocketController struct {
	replier  VoiceReplier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewVoiceSocketController(replier VoiceReplier, allowedOrigins []string, logger *zap.Logger) *VoiceSocketController {
	return &VoiceSocketController{
		replier: replier,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

var _ VoiceReplier = (*services.AIService)(nil)

// Serve upgrades GET /socket and answers voiceMessage frames until the
// client disconnects.
func (vs *VoiceSocketController) Serve(c *gin.Context) {
	conn, err := vs.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		vs.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(socketReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	ctx := c.Request.Context()
	vs.logger.Info("voice socket connected", zap.String("remote", c.ClientIP()))

	for {
		var frame socketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				vs.logger.Warn("voice socket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))

		if frame.Event != eventVoiceMessage {
			continue
		}

		reply, err := vs.replier.Reply(ctx, frame.Text)
		if err != nil {
			vs.logger.Warn("voice reply failed", zap.Error(err))
			reply = socketReplyFailed
		}
		if err := conn.WriteJSON(socketFrame{Event: eventAIReply, Text: reply}); err != nil {
			vs.logger.Warn("voice socket write failed", zap.Error(err))
			return
		}
	}
}
