package http

import (
	"encoding/json"
	"net/http"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler feeds the presenter: view commands come in, state, cue and timer events go out.
type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type scorePayload struct {
	TeamID string `json:"teamId"`
	Delta  int    `json:"delta"`
}

type quickScorePayload struct {
	Kind app.ScoreKind `json:"kind"`
}

type teamPayload struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
}

type cuePayload struct {
	Effect domain.SoundEffect `json:"effect"`
}

type confirmPayload struct {
	Confirm bool `json:"confirm"`
}

type systemThemePayload struct {
	Dark bool `json:"dark"`
}

type addQuestionPayload struct {
	domain.QuestionDraft
	ID *int `json:"id,omitempty"`
}

type editQuestionPayload struct {
	OldID    int             `json:"oldId"`
	Question domain.Question `json:"question"`
}

type questionIDPayload struct {
	ID int `json:"id"`
}

type roundsPayload struct {
	EnableRounds bool           `json:"enableRounds"`
	Rounds       []domain.Round `json:"rounds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.service.Subscribe(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev.Payload}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if reply, err := h.handle(r, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		} else if reply != nil {
			send <- *reply
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

type unsupportedError string

func (e unsupportedError) Error() string { return string(e) }

// handle applies one command. State changes reach the client through the event stream;
// the returned reply, if any, answers the command itself.
func (h *WSHandler) handle(r *http.Request, in inboundMessage) (*outboundMessage[any], error) {
	ctx := r.Context()
	decode := func(v any) error {
		if err := json.Unmarshal(in.Payload, v); err != nil {
			return unsupportedError("invalid " + in.Type + " payload")
		}
		return nil
	}

	switch in.Type {
	case "action":
		var a app.Action
		if err := decode(&a); err != nil {
			return nil, err
		}
		if a.Kind == app.ActionOpen {
			view, err := h.service.OpenQuestion(ctx, a.QuestionID, a.Override)
			if err != nil {
				return nil, err
			}
			return &outboundMessage[any]{Type: "question", Payload: view}, nil
		}
		_, err := h.service.Act(ctx, a)
		return nil, err
	case "score":
		var p scorePayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		_, err := h.service.UpdateScore(ctx, p.TeamID, p.Delta)
		return nil, err
	case "quickScore":
		var p quickScorePayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		_, err := h.service.QuickScore(ctx, p.Kind)
		return nil, err
	case "activeTeam":
		var p teamPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, h.service.SetActiveTeam(ctx, p.TeamID)
	case "addTeam":
		var p teamPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		_, err := h.service.AddTeam(ctx, p.Name)
		return nil, err
	case "deleteTeam":
		var p teamPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, h.service.DeleteTeam(ctx, p.TeamID)
	case "config":
		var patch app.ConfigPatch
		if err := decode(&patch); err != nil {
			return nil, err
		}
		_, err := h.service.UpdateConfig(ctx, patch)
		return nil, err
	case "cue":
		var p cuePayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		h.service.PlayCue(p.Effect)
		return nil, nil
	case "resetProgress":
		var p confirmPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, h.service.ResetProgress(ctx, app.ConfirmFunc(func(string) bool { return p.Confirm }))
	case "addQuestion":
		var p addQuestionPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		q, err := h.service.AddQuestion(ctx, p.QuestionDraft, p.ID)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "questionSaved", Payload: q}, nil
	case "editQuestion":
		var p editQuestionPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		if err := h.service.EditQuestion(ctx, p.OldID, p.Question); err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "questionSaved", Payload: p.Question}, nil
	case "updateQuestion":
		var q domain.Question
		if err := decode(&q); err != nil {
			return nil, err
		}
		if err := h.service.UpdateQuestion(ctx, q); err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "questionSaved", Payload: q}, nil
	case "deleteQuestion":
		var p questionIDPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, h.service.DeleteQuestion(ctx, p.ID)
	case "setBranding":
		var b domain.Branding
		if err := decode(&b); err != nil {
			return nil, err
		}
		_, err := h.service.SetBranding(ctx, b)
		return nil, err
	case "setRounds":
		var p roundsPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		_, err := h.service.SetRounds(ctx, p.EnableRounds, p.Rounds)
		return nil, err
	case "setTimer":
		var t domain.TimerConfig
		if err := decode(&t); err != nil {
			return nil, err
		}
		_, err := h.service.SetTimerConfig(ctx, t)
		return nil, err
	case "setScoring":
		var sc domain.ScoringConfig
		if err := decode(&sc); err != nil {
			return nil, err
		}
		_, err := h.service.SetScoringConfig(ctx, sc)
		return nil, err
	case "setTheme":
		var t domain.ThemeConfig
		if err := decode(&t); err != nil {
			return nil, err
		}
		_, err := h.service.SetThemeConfig(ctx, t)
		return nil, err
	case "setSounds":
		var sc domain.SoundConfig
		if err := decode(&sc); err != nil {
			return nil, err
		}
		_, err := h.service.SetSoundConfig(ctx, sc)
		return nil, err
	case "setFonts":
		var f domain.FontConfig
		if err := decode(&f); err != nil {
			return nil, err
		}
		_, err := h.service.SetFontConfig(ctx, f)
		return nil, err
	case "reset":
		var p confirmPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return nil, h.service.Reset(ctx, app.ConfirmFunc(func(string) bool { return p.Confirm }))
	case "reload":
		h.service.Reload(ctx)
		return nil, nil
	case "systemTheme":
		var p systemThemePayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		h.service.SetSystemDark(p.Dark)
		return nil, nil
	}
	return nil, unsupportedError("unsupported message type")
}
