package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"symptom-checker-go/internal/middleware"
	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/service"
	"symptom-checker-go/internal/session"
	"symptom-checker-go/pkg/log"
	"symptom-checker-go/pkg/token"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// SessionHandler 负责表单会话令牌的签发与 WebSocket 实时表单。
type SessionHandler struct {
	symptomService service.SymptomService
	auditService   service.AuditService
	jwtManager     *token.JWTManager
	limiter        *middleware.Limiter
}

// NewSessionHandler 创建一个新的 SessionHandler。limiter 为 nil 时不限流。
func NewSessionHandler(symptomService service.SymptomService, auditService service.AuditService, jwtManager *token.JWTManager, limiter *middleware.Limiter) *SessionHandler {
	return &SessionHandler{
		symptomService: symptomService,
		auditService:   auditService,
		jwtManager:     jwtManager,
		limiter:        limiter,
	}
}

// IssueToken 为一个新的匿名表单会话签发令牌。
func (h *SessionHandler) IssueToken(c *gin.Context) {
	tokenString, sessionID, err := h.jwtManager.GenerateSessionToken()
	if err != nil {
		log.Error("签发会话令牌失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to start a session", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"token":     tokenString,
			"sessionId": sessionID,
			"expiresIn": int(h.jwtManager.TTL().Seconds()),
		},
	})
}

// submitMessage 是客户端发来的一次提交。
type submitMessage struct {
	Symptoms string `json:"symptoms"`
}

// statusMessage 是推送给客户端的状态变化。
type statusMessage struct {
	Status session.Status   `json:"status"`
	State  *model.FormState `json:"state,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// wsConn 保证同一连接上的写操作串行，读循环与提交协程会同时写。
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) writeJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(v)
}

// Handle 处理 GET /api/v1/symptom-checker/ws/:token。
// 每条入站消息是一次提交；会话处于 pending 时的新提交会被拒绝。
func (h *SessionHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "Invalid or expired session token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}
	sess := session.New(claims.SessionID)
	clientIP := c.ClientIP()
	// 推理调用不随连接关闭而取消
	runCtx := context.WithoutCancel(c.Request.Context())
	var wg sync.WaitGroup
	defer wg.Wait()

	log.Infof("表单会话已建立: %s", sess.ID)
	status, state := sess.Snapshot()
	_ = ws.writeJSON(statusMessage{Status: status, State: &state})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			break
		}

		var msg submitMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = ws.writeJSON(statusMessage{Status: session.StatusIdle, Error: "Invalid message"})
			continue
		}

		// 与 HTTP 提交共用同一个按 IP 的计数窗口
		if _, limited := h.limiter.Take(runCtx, clientIP); limited {
			_ = ws.writeJSON(statusMessage{Status: session.StatusIdle, Error: middleware.RateLimitMessage})
			continue
		}

		symptoms := msg.Symptoms
		var sub service.Submission
		done, err := sess.Submit(runCtx, func(ctx context.Context) model.FormState {
			_ = ws.writeJSON(statusMessage{Status: session.StatusPending})
			sub = h.symptomService.Submit(ctx, symptoms)
			return sub.State
		}, func(state model.FormState) {
			// 在会话锁内推送 idle，下一次提交的 pending 一定排在它之后
			if err := ws.writeJSON(statusMessage{Status: session.StatusIdle, State: &state}); err != nil {
				log.Warnf("推送检查结果失败: session=%s, err=%v", sess.ID, err)
			}
		})
		if err != nil {
			_ = ws.writeJSON(statusMessage{Status: session.StatusPending, Error: session.BusyMessage})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-done
			h.auditService.Record(runCtx, sess.ID, "websocket", symptoms, sub)
		}()
	}
	log.Infof("表单会话已关闭: %s", sess.ID)
}
